package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds every heuristic constant the valuation strategies blend.
// The values are configuration, not code: a self-play harness can sweep them
// without recompiling.
type Tuning struct {
	// Virtual-cash penalties applied at end of turn for assets bought but
	// left idle. Scored in whole dollars, stored on the account times 100.
	BlankMachinePenalty    float64 `yaml:"blank_machine_penalty"`
	BlankWarehousePenalty  float64 `yaml:"blank_warehouse_penalty"`
	UnderProductionPenalty float64 `yaml:"under_production_penalty"`
	UnderPurchasePenalty   float64 `yaml:"under_purchase_penalty"`
	PassPenalty            float64 `yaml:"pass_penalty"`

	// Stored-goods valuation.
	FactoryGoodsPriceMultiplier   float64 `yaml:"factory_goods_price_multiplier"`
	WarehouseGoodsPriceMultiplier float64 `yaml:"warehouse_goods_price_multiplier"`
	OffPricePenalty               float64 `yaml:"off_price_penalty"`
	StandardContainerValue        int     `yaml:"standard_container_value"`

	// Working-capital shaping.
	CapitalTarget        int     `yaml:"capital_target"`
	FixedAssetMultiplier float64 `yaml:"fixed_asset_multiplier"`

	// Fixed-asset earning power per remaining turn, indexed by how many
	// machines of the same color (or warehouses of the same tier) are
	// already in play.
	MachineWeightsV4   [NumTradeColors]float64 `yaml:"machine_weights_v4"`
	WarehouseWeightsV4 [MaxWarehouses]float64  `yaml:"warehouse_weights_v4"`
	MachineWeightsV5   [NumTradeColors]float64 `yaml:"machine_weights_v5"`
	WarehouseWeightsV5 [MaxWarehouses]float64  `yaml:"warehouse_weights_v5"`

	// Fraction of turns a machine actually gets to produce.
	ProductionDutyCycle float64 `yaml:"production_duty_cycle"`

	// Island-goods estimates used before real card values dominate.
	UniformIslandGood float64                 `yaml:"uniform_island_good"`
	PreestIslandGoods [NumTradeColors]float64 `yaml:"preest_island_goods"`

	// Per-good floor on the worth of a lot at auction, early game.
	FairAuctionValue float64 `yaml:"fair_auction_value"`

	// Game-length horizons: estimated turns remaining is divided by these
	// to produce the 0..1 game stage.
	GameLengthV4 float64 `yaml:"game_length_v4"`
	GameLengthV5 float64 `yaml:"game_length_v5"`
}

// DefaultTuning returns the shipped constants.
func DefaultTuning() Tuning {
	return Tuning{
		BlankMachinePenalty:    -2.0,
		BlankWarehousePenalty:  -2.0,
		UnderProductionPenalty: -1.5,
		UnderPurchasePenalty:   -2.0,
		PassPenalty:            -2.5,

		FactoryGoodsPriceMultiplier:   0.17,
		WarehouseGoodsPriceMultiplier: 0.4,
		OffPricePenalty:               -0.1,
		StandardContainerValue:        5,

		CapitalTarget:        25,
		FixedAssetMultiplier: 1.5,

		MachineWeightsV4:   [NumTradeColors]float64{1.4, 1.4, 1.0, 0.6, 0.4},
		WarehouseWeightsV4: [MaxWarehouses]float64{1.0, 1.4, 1.4, 0.3, 0.2},
		MachineWeightsV5:   [NumTradeColors]float64{1.0, 1.2, 1.1, 0.9, 0.5},
		WarehouseWeightsV5: [MaxWarehouses]float64{0.5, 0.4, 0.3, 0.15, 0.1},

		ProductionDutyCycle: 0.5,

		UniformIslandGood: 5.5,
		PreestIslandGoods: [NumTradeColors]float64{6.5, 3.0, 3.0, 4.0, 6.5},

		FairAuctionValue: 3.5,

		GameLengthV4: 16,
		GameLengthV5: 25,
	}
}

// LoadTuning reads a tuning overlay from a yaml file. Fields absent from the
// file keep their defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parsing tuning file %s: %w", path, err)
	}
	return t, nil
}
