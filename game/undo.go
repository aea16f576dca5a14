package game

import "fmt"

// goodsMove records one container hop so it can be reversed exactly.
type goodsMove struct {
	from, to Cell
	color    Color
}

// playerSnap is one account's scalar state. Goods racks are excluded; they
// are restored structurally by reversing the recorded hops.
type playerSnap struct {
	cash        int
	warehouses  int
	machines    []Machine
	shipPlace   ShipPlace
	shipDock    int
	loans       [MaxLoans]Loan
	loansTaken  int
	bid         bidFlags
	declined    bool
	tookLoan    bool
	flow        CashFlow
	passCount   int
	virtualCash int
	shipCost    int
	shipChanged int
}

// capsule is the undo record for one executed move: every scalar the move
// could touch plus the container hops it made. Restoring a capsule reverses
// the hops and reinstates the scalars, yielding a digest-identical position.
type capsule struct {
	state      BoardState
	turn       int
	moveNumber int

	bank            int
	supply          [NumColors]int
	machineSupply   [NumTradeColors]int
	warehouseSupply int
	loanDeck        int

	secondAction        bool
	hasProduced         bool
	repricedFactory     bool
	repricedWarehouse   bool
	boughtMachine       bool
	boughtWarehouse     bool
	boughtDockGoods     bool
	producedLuxury      bool
	mustPayLoan         bool
	producedCount       int
	boughtGoodsCount    int
	playerSource        int
	loadedShipFrom      int
	loadedWarehouseFrom int
	movedToSeaFrom      int

	luxuryActive bool
	luxuryColor  Color
	luxuryRack   Rack

	pendingDone DoneCode
	pendingFrom int

	sales        int
	shipLoads    int
	lastSaleMove int
	resigned     int

	loanStack    []loanFrame
	auctionStash []savedBid

	players []playerSnap
	goods   []goodsMove
}

func (g *Game) snapshot() *capsule {
	c := &capsule{
		state:      g.State,
		turn:       g.Turn,
		moveNumber: g.MoveNumber,

		bank:            g.Bank,
		supply:          g.Supply,
		machineSupply:   g.MachineSupply,
		warehouseSupply: g.WarehouseSupply,
		loanDeck:        g.LoanDeck,

		secondAction:        g.SecondAction,
		hasProduced:         g.HasProduced,
		repricedFactory:     g.RepricedFactory,
		repricedWarehouse:   g.RepricedWarehouse,
		boughtMachine:       g.BoughtMachine,
		boughtWarehouse:     g.BoughtWarehouse,
		boughtDockGoods:     g.BoughtDockGoods,
		producedLuxury:      g.ProducedLuxury,
		mustPayLoan:         g.MustPayLoan,
		producedCount:       g.ProducedCount,
		boughtGoodsCount:    g.BoughtGoodsCount,
		playerSource:        g.PlayerSource,
		loadedShipFrom:      g.LoadedShipFrom,
		loadedWarehouseFrom: g.LoadedWarehouseFrom,
		movedToSeaFrom:      g.MovedToSeaFrom,

		luxuryActive: g.luxuryActive,
		luxuryColor:  g.luxuryColor,
		luxuryRack:   g.luxuryRack,

		pendingDone: g.pendingDone,
		pendingFrom: g.pendingFrom,

		sales:        g.Sales,
		shipLoads:    g.ShipLoads,
		lastSaleMove: g.LastSaleMove,
		resigned:     g.Resigned,
	}
	c.loanStack = make([]loanFrame, len(g.loanStack))
	for i := range g.loanStack {
		c.loanStack[i] = g.loanStack[i].clone()
	}
	c.auctionStash = append([]savedBid(nil), g.auctionStash...)
	c.players = make([]playerSnap, len(g.Accounts))
	for i, a := range g.Accounts {
		c.players[i] = playerSnap{
			cash:        a.Cash,
			warehouses:  a.Warehouses,
			machines:    append([]Machine(nil), a.Machines...),
			shipPlace:   a.Ship.Place,
			shipDock:    a.Ship.Dock,
			loans:       a.Loans,
			loansTaken:  a.LoansTaken,
			bid:         a.Bid,
			declined:    a.DeclinedLoan,
			tookLoan:    a.TookLoan,
			flow:        a.Flow,
			passCount:   a.PassCount,
			virtualCash: a.VirtualCash,
			shipCost:    a.ShipCost,
			shipChanged: a.ShipChanged,
		}
	}
	return c
}

func (g *Game) restore(c *capsule) {
	// Reverse the container hops, newest first. Counter racks are restored
	// with the scalars below, so only slice racks move here.
	for i := len(c.goods) - 1; i >= 0; i-- {
		mv := c.goods[i]
		g.takeFromSlice(mv.to, mv.color)
		g.putOnSlice(mv.from, mv.color)
	}

	g.State = c.state
	g.Turn = c.turn
	g.MoveNumber = c.moveNumber

	g.Bank = c.bank
	g.Supply = c.supply
	g.MachineSupply = c.machineSupply
	g.WarehouseSupply = c.warehouseSupply
	g.LoanDeck = c.loanDeck

	g.SecondAction = c.secondAction
	g.HasProduced = c.hasProduced
	g.RepricedFactory = c.repricedFactory
	g.RepricedWarehouse = c.repricedWarehouse
	g.BoughtMachine = c.boughtMachine
	g.BoughtWarehouse = c.boughtWarehouse
	g.BoughtDockGoods = c.boughtDockGoods
	g.ProducedLuxury = c.producedLuxury
	g.MustPayLoan = c.mustPayLoan
	g.ProducedCount = c.producedCount
	g.BoughtGoodsCount = c.boughtGoodsCount
	g.PlayerSource = c.playerSource
	g.LoadedShipFrom = c.loadedShipFrom
	g.LoadedWarehouseFrom = c.loadedWarehouseFrom
	g.MovedToSeaFrom = c.movedToSeaFrom

	g.luxuryActive = c.luxuryActive
	g.luxuryColor = c.luxuryColor
	g.luxuryRack = c.luxuryRack

	g.pendingDone = c.pendingDone
	g.pendingFrom = c.pendingFrom

	g.Sales = c.sales
	g.ShipLoads = c.shipLoads
	g.LastSaleMove = c.lastSaleMove
	g.Resigned = c.resigned

	g.loanStack = c.loanStack
	g.auctionStash = c.auctionStash

	for i, a := range g.Accounts {
		p := c.players[i]
		a.Cash = p.cash
		a.Warehouses = p.warehouses
		a.Machines = p.machines
		a.Ship.Place = p.shipPlace
		a.Ship.Dock = p.shipDock
		a.Loans = p.loans
		a.LoansTaken = p.loansTaken
		a.Bid = p.bid
		a.DeclinedLoan = p.declined
		a.TookLoan = p.tookLoan
		a.Flow = p.flow
		a.PassCount = p.passCount
		a.VirtualCash = p.virtualCash
		a.ShipCost = p.shipCost
		a.ShipChanged = p.shipChanged
	}
}

// sliceRack returns the goods slice a cell addresses, or nil for the counter
// racks whose contents are plain scalars.
func (g *Game) sliceRack(cell Cell) *[]Color {
	switch cell.Rack {
	case FactoryRack:
		return &g.Accounts[cell.Owner].FactoryGoods[cell.Index]
	case DockRack:
		return &g.Accounts[cell.Owner].DockGoods[cell.Index]
	case ShipRack:
		return &g.Accounts[cell.Owner].Ship.Hold
	case IslandRack:
		return &g.Accounts[cell.Owner].Island
	case SupplyRack:
		return nil
	}
	panic(fmt.Sprintf("cell %v does not hold containers", cell))
}

func (g *Game) putOnSlice(cell Cell, c Color) {
	if rack := g.sliceRack(cell); rack != nil {
		*rack = append(*rack, c)
	}
}

func (g *Game) takeFromSlice(cell Cell, c Color) {
	rack := g.sliceRack(cell)
	if rack == nil {
		return
	}
	out, ok := removeColor(*rack, c)
	if !ok {
		panic(fmt.Sprintf("no %v container at %v", c, cell))
	}
	*rack = out
}

// moveGood transfers one container between cells and records the hop on the
// capsule being built.
func (g *Game) moveGood(from, to Cell, c Color) {
	switch from.Rack {
	case SupplyRack:
		if g.Supply[c] == 0 {
			panic(fmt.Sprintf("supply pool for %v is empty", c))
		}
		g.Supply[c]--
	default:
		g.takeFromSlice(from, c)
	}
	switch to.Rack {
	case SupplyRack:
		g.Supply[c]++
	default:
		g.putOnSlice(to, c)
	}
	if g.rec != nil {
		g.rec.goods = append(g.rec.goods, goodsMove{from: from, to: to, color: c})
	}
}

// Unexecute reverses the most recent Execute of this move, restoring the
// exact prior position. Capsules are single-use.
func (g *Game) Unexecute(m *Move) {
	if m.undo == nil {
		panic(fmt.Sprintf("move %v has no undo capsule", m))
	}
	g.restore(m.undo)
	m.undo = nil
}
