package game

import "fmt"

// ShipPlace locates a player's ship.
type ShipPlace int

const (
	AtSea ShipPlace = iota
	AtDock
	AtAuction
	AtIsland // parked after a completed auction
)

// Ship is a player's single ship: where it is and what it carries. The owner
// is the index of the holding Account, never a back-pointer.
type Ship struct {
	Place ShipPlace
	Dock  int // owner of the dock when Place == AtDock, else NoPlayer
	Hold  []Color
}

// Machine is one production machine slot.
type Machine struct {
	Color    Color
	Produced bool // produced this turn
}

// Loan is one of a player's two loan slots. A zero Amount means the slot is
// empty. Pending is set between drawing a loan card and the funding decision.
type Loan struct {
	Amount         int
	Funder         int // Bank or a player index
	UnpaidInterest bool
	Pending        bool
}

func (l Loan) Active() bool { return l.Amount > 0 && !l.Pending }

// RepaymentAmount is the cash needed to retire the loan now.
func (l Loan) RepaymentAmount() int {
	amount := l.Amount
	if l.UnpaidInterest {
		amount += LoanInterest
	}
	return amount
}

// bidFlags groups the per-player state of an in-flight auction or loan
// sub-auction. It is snapshotted wholesale into undo capsules.
type bidFlags struct {
	RequestingBid  bool // this player started the auction / loan request
	CannotRebid    bool
	BidReceived    bool
	RequestingLoan bool
	WillFundLoan   bool
	DeclinedFund   bool
	Funder         bool // selected as funder of the pending loan
	BidAmount      int
	LoanBid        int // committed stake in a loan sub-auction
}

// CashFlow accumulates per-activity cash movement. The valuation engine and
// statistics read it; no rule depends on it.
type CashFlow struct {
	MachineIn    int
	MachineOut   int
	WarehouseIn  int
	WarehouseOut int
	ShipIn       int
	ShipOut      int
	InterestIn   int
	InterestOut  int
	IslandOut    int
	LoansMade    int
	TotalLoaned  int
}

// Account is one player's board: cash, assets, goods and loan bookkeeping.
type Account struct {
	Cash int

	Machines   []Machine
	Warehouses int

	// Goods multisets per price tier. Order within a tier carries no meaning.
	FactoryGoods [len(FactoryGoodPrices)][]Color
	DockGoods    [len(WarehouseGoodPrices)][]Color

	Ship   Ship
	Island []Color

	Loans      [MaxLoans]Loan
	LoansTaken int

	Bid bidFlags

	// Per-turn bookkeeping.
	DeclinedLoan bool // refused a loan offer this turn
	TookLoan     bool // a fresh loan blocks same-turn repayment

	Flow        CashFlow
	PassCount   int
	VirtualCash int // penalty ledger in hundredths, valuation only

	// Running cost of the goods on the ship and the move number of the last
	// change, read by the valuation engine.
	ShipCost    int
	ShipChanged int
}

func newAccount() *Account {
	return &Account{Ship: Ship{Place: AtSea, Dock: NoPlayer}}
}

func (a *Account) copyFrom(src *Account) {
	hold := append([]Color(nil), src.Ship.Hold...)
	island := append([]Color(nil), src.Island...)
	machines := append([]Machine(nil), src.Machines...)
	*a = *src
	a.Ship.Hold = hold
	a.Island = island
	a.Machines = machines
	for i := range src.FactoryGoods {
		a.FactoryGoods[i] = append([]Color(nil), src.FactoryGoods[i]...)
	}
	for i := range src.DockGoods {
		a.DockGoods[i] = append([]Color(nil), src.DockGoods[i]...)
	}
}

// ActiveMachines counts owned machines.
func (a *Account) ActiveMachines() int { return len(a.Machines) }

// FactoryCapacity is the total number of goods the factory storage may hold.
func (a *Account) FactoryCapacity() int { return 2 * len(a.Machines) }

func (a *Account) FactoryStored() int {
	n := 0
	for _, tier := range a.FactoryGoods {
		n += len(tier)
	}
	return n
}

func (a *Account) DockStored() int {
	n := 0
	for _, tier := range a.DockGoods {
		n += len(tier)
	}
	return n
}

// CanPlaceFactoryGood reports whether one more good fits at the given tier.
func (a *Account) CanPlaceFactoryGood(tier int, variant Variant) bool {
	if a.FactoryStored() >= a.FactoryCapacity() {
		return false
	}
	return len(a.FactoryGoods[tier]) < factoryTierLimit(variant, len(a.Machines))
}

func (a *Account) CanPlaceDockGood(tier int, variant Variant) bool {
	if a.DockStored() >= a.Warehouses {
		return false
	}
	return len(a.DockGoods[tier]) < warehouseTierLimit(variant, a.Warehouses)
}

// MachineFor returns the index of an unproduced machine of the color, or -1.
func (a *Account) MachineFor(c Color) int {
	for i, m := range a.Machines {
		if m.Color == c && !m.Produced {
			return i
		}
	}
	return -1
}

func (a *Account) SomeMachineProduced() bool {
	for _, m := range a.Machines {
		if m.Produced {
			return true
		}
	}
	return false
}

func (a *Account) clearProduced() {
	for i := range a.Machines {
		a.Machines[i].Produced = false
	}
}

// EmptyLoanSlot returns the first free loan slot index, or -1.
func (a *Account) EmptyLoanSlot() int {
	for i := range a.Loans {
		if a.Loans[i].Amount == 0 && !a.Loans[i].Pending {
			return i
		}
	}
	return -1
}

// PendingLoanSlot returns the slot awaiting funding, or -1.
func (a *Account) PendingLoanSlot() int {
	for i := range a.Loans {
		if a.Loans[i].Pending {
			return i
		}
	}
	return -1
}

// UnpaidStatus packs the unpaid-interest flags for digesting and tests.
func (a *Account) UnpaidStatus() int {
	s := 0
	for i := range a.Loans {
		if a.Loans[i].UnpaidInterest {
			s |= 1 << i
		}
	}
	return s
}

// TotalLoanAmount sums outstanding principal.
func (a *Account) TotalLoanAmount() int {
	n := 0
	for i := range a.Loans {
		if a.Loans[i].Active() {
			n += a.Loans[i].Amount
		}
	}
	return n
}

// rackStats scans a rack for gold and the number of distinct ordinary colors.
func rackStats(tiers []([]Color)) (hasGold bool, distinct int) {
	var seen [NumColors]bool
	for _, tier := range tiers {
		for _, c := range tier {
			if c == Gold {
				hasGold = true
			} else if !seen[c] {
				seen[c] = true
				distinct++
			}
		}
	}
	return hasGold, distinct
}

func (a *Account) factoryRack() [][]Color { return a.FactoryGoods[:] }
func (a *Account) dockRack() [][]Color    { return a.DockGoods[:] }

func (a *Account) FactoryHasGold() bool {
	gold, _ := rackStats(a.factoryRack())
	return gold
}

func (a *Account) DockHasGold() bool {
	gold, _ := rackStats(a.dockRack())
	return gold
}

// CanTradeFactoryForGold checks the luxury-trade precondition on the factory
// rack: no gold present and at least two distinct colors to give up.
func (a *Account) CanTradeFactoryForGold() bool {
	gold, distinct := rackStats(a.factoryRack())
	return !gold && distinct >= 2
}

func (a *Account) CanTradeDockForGold() bool {
	gold, distinct := rackStats(a.dockRack())
	return !gold && distinct >= 2
}

// removeColor deletes one token of color c from a tier, preserving the rest.
func removeColor(tier []Color, c Color) ([]Color, bool) {
	for i, v := range tier {
		if v == c {
			tier[i] = tier[len(tier)-1]
			return tier[:len(tier)-1], true
		}
	}
	return tier, false
}

func (a *Account) String() string {
	return fmt.Sprintf("account{cash %d, machines %d, warehouses %d, loans %d}",
		a.Cash, len(a.Machines), a.Warehouses, a.LoansTaken)
}
