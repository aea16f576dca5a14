package game

import "fmt"

// shipMooring marks a cell index that addresses a ship berth rather than a
// goods tier, so dock cells can serve both purposes.
const shipMooring = -1

// Execute applies a legal move and attaches the undo capsule Unexecute
// consumes. Moves must come from LegalMoves; anything else is a programming
// error and panics.
func (g *Game) Execute(m *Move) {
	if m.undo != nil {
		panic(fmt.Sprintf("move %v executed twice", m))
	}
	if m.Player != g.Turn {
		panic(fmt.Sprintf("move %v out of turn, p%d to act", m, g.Turn))
	}
	u := g.snapshot()
	m.undo = u
	g.rec = u
	defer func() { g.rec = nil }()

	switch m.Kind {
	case MoveTransfer:
		g.executeTransfer(m)
	case MovePass:
		g.Accounts[m.Player].PassCount++
		g.SecondAction = true
		g.finishAction()
	case MoveBid:
		g.executeBid(m)
	case MoveAccept:
		g.acceptBid(m)
	case MoveBuy:
		g.buyOwnLot(m)
	case MoveFund:
		bd := g.Accounts[m.Player]
		bd.Bid.WillFundLoan = true
		bd.Bid.BidAmount = LoanAmount
		g.afterFundDecision()
	case MoveDecline:
		g.Accounts[m.Player].Bid.DeclinedFund = true
		g.afterFundDecision()
	case MoveAcceptLoan:
		g.acceptLoan(m)
	case MoveDeclineLoan:
		g.withdrawLoan(m)
	case MoveDone:
		g.doDone()
	default:
		panic(fmt.Sprintf("unknown move kind %d", m.Kind))
	}
}

func (g *Game) executeTransfer(m *Move) {
	switch {
	case m.From.Rack == LoanDeckRack:
		g.requestLoan(m)
	case m.From.Rack == LoanRack:
		g.repayLoan(m)
	case m.From.Rack == MachineSupplyRack:
		g.buyMachine(m)
	case m.From.Rack == WarehouseSupplyRack:
		g.buyWarehouse(m)
	case m.Color == NoColor:
		g.moveShip(m)
	case m.From.Rack == SupplyRack && m.Color == Gold:
		g.placeLuxuryGold(m)
	case m.From.Rack == SupplyRack:
		g.produce(m)
	case m.To.Rack == SupplyRack:
		g.giveUpForGold(m)
	case m.From.Rack == FactoryRack && m.To.Rack == DockRack:
		g.buyDockGoods(m)
	case m.From.Rack == DockRack && m.To.Rack == ShipRack:
		g.loadShip(m)
	case m.From.Rack == m.To.Rack && m.From.Owner == m.To.Owner:
		g.reprice(m)
	default:
		panic(fmt.Sprintf("illegal transfer %v in state %v", m, g.State))
	}
}

// produce runs one machine: the fee is paid once per turn to the previous
// player in seating order, then one container of the machine's color comes
// from the supply onto the factory tier.
func (g *Game) produce(m *Move) {
	bd := g.Accounts[m.Player]
	idx := bd.MachineFor(m.Color)
	if idx < 0 {
		panic(fmt.Sprintf("p%d has no idle %v machine", m.Player, m.Color))
	}
	if !g.HasProduced {
		g.transfer(CostToProduce, m.Player, g.prevIndex(m.Player), false)
		g.HasProduced = true
	}
	bd.Machines[idx].Produced = true
	g.ProducedCount++
	g.moveGood(m.From, m.To, m.Color)
	g.State = LoadFactoryGoods
	g.pendingDone = DoneProduce
}

// giveUpForGold returns one ordinary good to the supply as half of a luxury
// trade. The second good must differ in color and come from the same rack
// class, after which the gold is placed.
func (g *Game) giveUpForGold(m *Move) {
	if !g.luxuryActive {
		g.luxuryActive = true
		g.luxuryColor = m.Color
		g.luxuryRack = m.From.Rack
		g.State = TradeContainer
	} else {
		if g.State != TradeContainer || m.Color == g.luxuryColor || m.From.Rack != g.luxuryRack {
			panic(fmt.Sprintf("move %v does not complete the luxury trade", m))
		}
		g.State = LoadLuxury
	}
	g.moveGood(m.From, m.To, m.Color)
}

func (g *Game) placeLuxuryGold(m *Move) {
	if !g.luxuryActive || g.State != LoadLuxury || m.To.Rack != g.luxuryRack {
		panic(fmt.Sprintf("move %v without a luxury trade in progress", m))
	}
	g.moveGood(m.From, m.To, Gold)
	g.luxuryActive = false
	g.ProducedLuxury = true
	g.State = Confirm
	g.pendingDone = DoneProduceLuxury
}

func (g *Game) buyMachine(m *Move) {
	bd := g.Accounts[m.Player]
	price := MachinePrices[len(bd.Machines)]
	bd.Flow.MachineOut += price
	g.transferToBank(price, m.Player, false)
	g.MachineSupply[m.Color]--
	bd.Machines = append(bd.Machines, Machine{Color: m.Color})
	g.BoughtMachine = true
	g.State = Confirm
	g.pendingDone = DoneNothing
}

func (g *Game) buyWarehouse(m *Move) {
	bd := g.Accounts[m.Player]
	price := WarehousePrices[bd.Warehouses]
	bd.Flow.WarehouseOut += price
	g.transferToBank(price, m.Player, false)
	g.WarehouseSupply--
	bd.Warehouses++
	g.BoughtWarehouse = true
	g.State = Confirm
	g.pendingDone = DoneNothing
}

// buyDockGoods buys one factory good from another player onto the dock. All
// goods of the episode must come from the same seller.
func (g *Game) buyDockGoods(m *Move) {
	seller := m.From.Owner
	price := FactoryGoodPrices[m.From.Index]
	g.Accounts[m.Player].Flow.WarehouseOut += price
	g.Accounts[seller].Flow.WarehouseIn += price
	g.transfer(price, m.Player, seller, false)
	g.moveGood(m.From, m.To, m.Color)
	g.PlayerSource = seller
	g.BoughtDockGoods = true
	g.BoughtGoodsCount++
	g.Sales++
	g.LastSaleMove = g.MoveNumber
	g.State = LoadWarehouseGoods
	g.pendingDone = DoneLoadWarehouse
}

// loadShip buys one good off the dock the ship is moored at.
func (g *Game) loadShip(m *Move) {
	bd := g.Accounts[m.Player]
	seller := m.From.Owner
	price := WarehouseGoodPrices[m.From.Index]
	bd.Flow.ShipOut += price
	g.Accounts[seller].Flow.ShipIn += price
	g.transfer(price, m.Player, seller, false)
	g.moveGood(m.From, Cell{Rack: ShipRack, Owner: m.Player}, m.Color)
	bd.ShipCost += price
	bd.ShipChanged = g.MoveNumber
	g.ShipLoads++
	g.Sales++
	g.LastSaleMove = g.MoveNumber
	g.State = LoadShip
	g.pendingDone = DoneLoadShip
	g.pendingFrom = seller
}

func (g *Game) reprice(m *Move) {
	g.moveGood(m.From, m.To, m.Color)
	g.pendingDone = DoneReprice
}

func (g *Game) moveShip(m *Move) {
	bd := g.Accounts[m.Player]
	ship := &bd.Ship
	switch m.To.Rack {
	case SeaRack:
		if ship.Place == AtDock {
			g.MovedToSeaFrom = ship.Dock
		}
		ship.Place, ship.Dock = AtSea, NoPlayer
		bd.ShipChanged = g.MoveNumber
		g.State = Confirm
		g.pendingDone = DoneMoveShip
	case DockRack:
		ship.Place, ship.Dock = AtDock, m.To.Owner
		bd.ShipChanged = g.MoveNumber
		g.State = LoadShip1
		g.pendingDone = DoneMoveShip
	case AuctionRack:
		if len(ship.Hold) == 0 {
			panic(fmt.Sprintf("p%d cannot auction an empty ship", m.Player))
		}
		ship.Place, ship.Dock = AtAuction, NoPlayer
		g.State = Confirm
		g.pendingDone = DoneStartAuction
	default:
		panic(fmt.Sprintf("illegal ship destination %v", m.To))
	}
}

// requestLoan opens a loan interlude: the current context is pushed so the
// funding round can borrow every player's bid flags, and play rotates to the
// funding decisions.
func (g *Game) requestLoan(m *Move) {
	bd := g.Accounts[m.Player]
	slot := bd.EmptyLoanSlot()
	if slot < 0 || g.LoanDeck == 0 {
		panic(fmt.Sprintf("p%d cannot take another loan", m.Player))
	}
	g.LoanDeck--
	bd.Loans[slot] = Loan{Amount: LoanAmount, Funder: Bank, Pending: true}
	g.loanStack = append(g.loanStack, loanFrame{
		state: g.State,
		slot:  slot,
		bids:  g.stashBids(),
	})
	g.clearBidFlags()
	bd.Bid.RequestingLoan = true
	g.State = FundLoan
	g.Turn = g.nextIndex(m.Player)
}

// repayLoan retires a loan in place; it costs no action and leaves the state
// unchanged.
func (g *Game) repayLoan(m *Move) {
	bd := g.Accounts[m.Player]
	slot := m.From.Index
	loan := bd.Loans[slot]
	if !loan.Active() {
		panic(fmt.Sprintf("p%d has no active loan in slot %d", m.Player, slot))
	}
	amount := loan.RepaymentAmount()
	if loan.Funder == Bank {
		g.transferToBank(amount, m.Player, false)
	} else {
		g.transfer(amount, m.Player, loan.Funder, false)
		g.Accounts[loan.Funder].Flow.TotalLoaned -= loan.Amount
	}
	bd.Loans[slot] = Loan{}
	bd.LoansTaken--
	g.LoanDeck++
}

// afterFundDecision rotates to the next undecided player, or resolves the
// funding round when everyone has answered.
func (g *Game) afterFundDecision() {
	req := g.loanRequester()
	next := g.nextWhere(g.Turn, func(p int) bool {
		if p == req {
			return false
		}
		b := g.Accounts[p].Bid
		return !b.WillFundLoan && !b.DeclinedFund
	})
	if next != NoPlayer {
		g.Turn = next
		return
	}

	var willing []int
	for i, a := range g.Accounts {
		if a.Bid.WillFundLoan {
			willing = append(willing, i)
		}
	}
	switch len(willing) {
	case 0:
		g.State = AcceptLoan
		g.Turn = req
	case 1:
		g.selectFunder(willing[0])
		g.State = AcceptLoan
		g.Turn = req
	default:
		// Competing funders stake for the loan in a sealed round.
		for i, a := range g.Accounts {
			a.Bid.CannotRebid = !a.Bid.WillFundLoan || i == req
		}
		g.State = Financeer
		g.Turn = g.nextWhere(req, func(p int) bool {
			return !g.Accounts[p].Bid.CannotRebid
		})
	}
}

func (g *Game) executeBid(m *Move) {
	bd := g.Accounts[m.Player]
	switch g.State {
	case Auction:
		bd.Bid.BidAmount = m.Amount
		bd.Bid.BidReceived = true
		g.afterAuctionBid()
	case Rebid:
		g.afterRebid(m)
	case Financeer:
		if m.Amount < LoanAmount {
			panic(fmt.Sprintf("financeer stake %d below the loan amount", m.Amount))
		}
		bd.Bid.LoanBid = m.Amount
		g.afterFinanceerBid()
	default:
		panic(fmt.Sprintf("bid in state %v", g.State))
	}
}

// afterAuctionBid advances the sealed first round; once every bidder is in,
// a unique high bid goes to the auctioneer's decision and a tie opens a
// rebid round restricted to the tied players.
func (g *Game) afterAuctionBid() {
	auc := g.auctioneer()
	next := g.nextWhere(g.Turn, func(p int) bool {
		return p != auc && !g.Accounts[p].Bid.BidReceived
	})
	if next != NoPlayer {
		g.Turn = next
		return
	}

	high := g.highBid()
	tied := 0
	for i, a := range g.Accounts {
		if i != auc && a.Bid.BidAmount == high {
			tied++
		}
	}
	if high > 0 && tied > 1 {
		for i, a := range g.Accounts {
			a.Bid.CannotRebid = i == auc || a.Bid.BidAmount != high
		}
		g.State = Rebid
		g.Turn = g.nextWhere(auc, func(p int) bool {
			return !g.Accounts[p].Bid.CannotRebid
		})
		return
	}
	g.State = AcceptBid
	g.Turn = auc
}

// afterRebid runs the open outcry among the tied bidders: a bid that fails
// to beat the standing high retires the bidder, and the round ends when one
// bidder remains.
func (g *Game) afterRebid(m *Move) {
	bd := g.Accounts[m.Player]
	high := g.highBid()
	bd.Bid.BidAmount = m.Amount
	if m.Amount <= high {
		bd.Bid.CannotRebid = true
	}

	auc := g.auctioneer()
	active := 0
	for i, a := range g.Accounts {
		if i != auc && !a.Bid.CannotRebid {
			active++
		}
	}
	if active <= 1 {
		g.State = AcceptBid
		g.Turn = auc
		return
	}
	g.Turn = g.nextWhere(g.Turn, func(p int) bool {
		return !g.Accounts[p].Bid.CannotRebid
	})
}

// auctionWinner picks the bidder whose bid the auctioneer may accept: the
// high holder, preferring one still eligible to raise, then seating order
// after the auctioneer. NoPlayer when nobody bid anything.
func (g *Game) auctionWinner() int {
	auc := g.auctioneer()
	high := g.highBid()
	if high <= 0 {
		return NoPlayer
	}
	winner := NoPlayer
	for p := g.nextIndex(auc); p != auc; p = g.nextIndex(p) {
		a := g.Accounts[p]
		if a.Bid.BidAmount != high {
			continue
		}
		if !a.Bid.CannotRebid {
			return p
		}
		if winner == NoPlayer {
			winner = p
		}
	}
	return winner
}

func (g *Game) afterFinanceerBid() {
	next := g.nextWhere(g.Turn, func(p int) bool {
		b := g.Accounts[p].Bid
		return !b.CannotRebid && b.LoanBid == 0
	})
	if next != NoPlayer {
		g.Turn = next
		return
	}
	// Highest stake wins, earlier seat after the requester breaks ties.
	req := g.loanRequester()
	winner, best := NoPlayer, 0
	for p := g.nextIndex(req); p != req; p = g.nextIndex(p) {
		if lb := g.Accounts[p].Bid.LoanBid; lb > best {
			winner, best = p, lb
		}
	}
	g.selectFunder(winner)
	g.State = AcceptLoan
	g.Turn = req
}

// acceptBid closes the auction in the buyer's favor: the buyer pays the bid
// to the auctioneer, the bank matches it, and the cargo lands on the buyer's
// island.
func (g *Game) acceptBid(m *Move) {
	buyer := m.Target
	bid := g.Accounts[buyer].Bid.BidAmount
	g.transfer(bid, buyer, m.Player, false)
	g.transferFromBank(bid, m.Player)
	g.Accounts[buyer].Flow.IslandOut += bid
	g.Accounts[m.Player].Flow.ShipIn += 2 * bid
	g.deliverCargo(m.Player, buyer)
}

// buyOwnLot lets the auctioneer keep the cargo for the high bid, paid to the
// bank.
func (g *Game) buyOwnLot(m *Move) {
	high := g.highBid()
	if high < 0 {
		high = 0
	}
	g.transferToBank(high, m.Player, false)
	g.Accounts[m.Player].Flow.IslandOut += high
	g.deliverCargo(m.Player, m.Player)
}

// deliverCargo moves the whole hold to the island, parks the ship and forces
// the auction to consume the rest of the turn.
func (g *Game) deliverCargo(seller, buyer int) {
	bd := g.Accounts[seller]
	hold := append([]Color(nil), bd.Ship.Hold...)
	from := Cell{Rack: ShipRack, Owner: seller}
	to := Cell{Rack: IslandRack, Owner: buyer}
	for _, c := range hold {
		g.moveGood(from, to, c)
	}
	bd.Ship.Place, bd.Ship.Dock = AtIsland, NoPlayer
	bd.ShipCost = 0
	bd.ShipChanged = g.MoveNumber
	g.Sales++
	g.LastSaleMove = g.MoveNumber
	g.SecondAction = true
	g.State = ConfirmAuction
	g.pendingDone = DoneFinishAuction
}

// acceptLoan resolves the interlude: the chosen funder (or the bank) pays
// out, the interrupted context resumes, and a forced loan immediately covers
// the interest bill that triggered it.
func (g *Game) acceptLoan(m *Move) {
	bd := g.Accounts[m.Player]
	frame := g.popLoanFrame()
	loan := &bd.Loans[frame.slot]
	loan.Pending = false
	loan.Funder = m.Target

	payout := LoanAmount
	if m.Target != Bank {
		// A financeer winner pays out the stake they committed.
		if lb := g.Accounts[m.Target].Bid.LoanBid; lb > 0 {
			payout = lb
		}
	}
	if m.Target == Bank {
		g.transferFromBank(payout, m.Player)
	} else {
		g.transfer(payout, m.Target, m.Player, false)
		f := g.Accounts[m.Target]
		f.Flow.LoansMade++
		f.Flow.TotalLoaned += LoanAmount
	}
	bd.LoansTaken++

	g.restoreBids(frame.bids)
	bd.TookLoan = true
	g.resumeFrame(frame)
}

// withdrawLoan abandons the request; the card goes back and the player may
// not ask again this turn.
func (g *Game) withdrawLoan(m *Move) {
	bd := g.Accounts[m.Player]
	frame := g.popLoanFrame()
	bd.Loans[frame.slot] = Loan{}
	g.LoanDeck++
	g.restoreBids(frame.bids)
	bd.DeclinedLoan = true
	g.resumeFrame(frame)
}

func (g *Game) popLoanFrame() loanFrame {
	n := len(g.loanStack)
	if n == 0 {
		panic("no loan interlude to resolve")
	}
	frame := g.loanStack[n-1]
	g.loanStack = g.loanStack[:n-1]
	return frame
}

func (g *Game) resumeFrame(frame loanFrame) {
	if frame.state == TakeLoan {
		g.payInterest(g.Turn, true)
		g.MustPayLoan = false
		g.State = Play1
		return
	}
	g.State = frame.state
}

// doDone finalizes the current action episode according to its
// classification.
func (g *Game) doDone() {
	code := g.pendingDone
	g.pendingDone = DoneNothing
	switch code {
	case DoneProduce:
		g.RepricedFactory = true
		g.State = RepriceFactory
	case DoneLoadWarehouse:
		g.LoadedWarehouseFrom = g.PlayerSource
		g.RepricedWarehouse = true
		g.State = RepriceWarehouse
	case DoneLoadShip:
		g.LoadedShipFrom = g.pendingFrom
		g.finishAction()
	case DoneStartAuction:
		g.startAuction()
	case DoneFinishAuction:
		if g.auctionStash != nil {
			g.restoreBids(g.auctionStash)
			g.auctionStash = nil
		} else {
			g.clearBidFlags()
		}
		g.finishAction()
	case DoneNothing, DoneMoveShip, DoneReprice, DoneProduceLuxury:
		g.finishAction()
	default:
		panic(fmt.Sprintf("done code %v in state %v", code, g.State))
	}
}

// startAuction stashes everyone's bid flags, marks the auctioneer and opens
// the sealed round with the next player.
func (g *Game) startAuction() {
	auc := g.Turn
	g.auctionStash = g.stashBids()
	g.clearBidFlags()
	g.Accounts[auc].Bid.RequestingBid = true
	g.State = Auction
	g.Turn = g.nextIndex(auc)
}
