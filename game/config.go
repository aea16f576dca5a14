package game

import "fmt"

// Variant selects the rule set. SecondShipment adds gold containers and
// tighter per-tier holding limits.
type Variant string

const (
	FirstShipment  Variant = "container"
	SecondShipment Variant = "container-second-shipment"
)

// GameConfig carries everything initialization needs. It is immutable once a
// game is created and travels with search clones, so no rule ever reads
// ambient global state.
type GameConfig struct {
	Variant Variant
	Players int
	Seed    int64
	// AllowOverdraft permits transiently negative balances while replaying
	// historical game records. New games must leave it false.
	AllowOverdraft bool
}

// Validate rejects configurations the rules cannot support.
func (c GameConfig) Validate() error {
	switch c.Variant {
	case FirstShipment, SecondShipment:
	default:
		return fmt.Errorf("unknown variant %q", c.Variant)
	}
	if c.Players < 3 || c.Players > MaxPlayers {
		return fmt.Errorf("player count %d out of range 3..%d", c.Players, MaxPlayers)
	}
	return nil
}

const (
	MaxPlayers    = 5
	MaxMachines   = 4
	MaxWarehouses = 5
	MaxLoans      = 2
	MaxShipGoods  = 5

	StartingCash  = 20
	CostToProduce = 1
	LoanAmount    = 10
	LoanInterest  = 1

	// Endgame values of goods stranded outside the island.
	ShipGoodValue      = 3
	WarehouseGoodValue = 2
)

// Purchase prices, indexed by the slot being filled. The first machine and
// warehouse come with the starting setup, so index 0 is never bought.
var (
	MachinePrices   = [MaxMachines]int{0, 6, 9, 12}
	WarehousePrices = [MaxWarehouses]int{0, 4, 5, 6, 7}
)

// Sale price tiers for factory and warehouse storage.
var (
	FactoryGoodPrices   = [4]int{1, 2, 3, 4}
	WarehouseGoodPrices = [5]int{2, 3, 4, 5, 6}
)

// containerSupply is the per-color pool size by player count.
var containerSupply = map[int]int{3: 12, 4: 16, 5: 20}

// Second-shipment holding caps: how many goods one price tier may hold,
// keyed by the number of machines (factory) or warehouses (warehouse) owned.
var (
	factoryTierLimits   = [MaxMachines + 1]int{0, 2, 2, 3, 3}
	warehouseTierLimits = [MaxWarehouses + 1]int{0, 1, 2, 2, 3, 4}
)

// factoryTierLimit returns how many goods a single factory price tier may
// hold for a player owning the given number of machines.
func factoryTierLimit(variant Variant, machines int) int {
	if variant == SecondShipment {
		return factoryTierLimits[machines]
	}
	// The base game only caps total factory storage, not single tiers.
	return 2 * machines
}

func warehouseTierLimit(variant Variant, warehouses int) int {
	if variant == SecondShipment {
		return warehouseTierLimits[warehouses]
	}
	return warehouses
}
