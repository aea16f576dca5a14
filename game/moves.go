package game

import "fmt"

func supplyCell(c Color) Cell { return Cell{Rack: SupplyRack, Owner: NoPlayer, Index: int(c)} }
func factoryCell(p, tier int) Cell {
	return Cell{Rack: FactoryRack, Owner: p, Index: tier}
}
func dockCell(p, tier int) Cell { return Cell{Rack: DockRack, Owner: p, Index: tier} }
func shipCell(p int) Cell       { return Cell{Rack: ShipRack, Owner: p} }
func seaCell(p int) Cell        { return Cell{Rack: SeaRack, Owner: p} }
func auctionCell(p int) Cell    { return Cell{Rack: AuctionRack, Owner: p} }
func moorCell(p int) Cell       { return Cell{Rack: DockRack, Owner: p, Index: shipMooring} }
func loanDeckCell() Cell        { return Cell{Rack: LoanDeckRack, Owner: NoPlayer} }
func loanCell(p, slot int) Cell { return Cell{Rack: LoanRack, Owner: p, Index: slot} }

func machineSupplyCell(c Color) Cell {
	return Cell{Rack: MachineSupplyRack, Owner: NoPlayer, Index: int(c)}
}
func machineCell(p, slot int) Cell { return Cell{Rack: MachineRack, Owner: p, Index: slot} }
func warehouseSupplyCell() Cell    { return Cell{Rack: WarehouseSupplyRack, Owner: NoPlayer} }
func warehouseCell(p, slot int) Cell {
	return Cell{Rack: WarehouseRack, Owner: p, Index: slot}
}

// LegalMoves enumerates every move the acting player may make in the current
// state. The result is never empty before Gameover.
func (g *Game) LegalMoves() []*Move {
	p := g.Turn
	var moves []*Move
	switch g.State {
	case Play1, Play2:
		moves = g.playMoves(p)
	case Confirm, ConfirmAuction:
		moves = append(moves, DoneMove(p))
	case LoadFactoryGoods:
		moves = g.produceMoves(p)
		moves = append(moves, DoneMove(p))
	case LoadWarehouseGoods:
		moves = g.buyDockMoves(p, g.PlayerSource)
		moves = append(moves, DoneMove(p))
	case LoadShip1:
		moves = g.loadShipMoves(p)
		moves = append(moves, g.loanRequestMoves(p)...)
		if len(moves) == 0 {
			moves = append(moves, DoneMove(p))
		}
	case LoadShip:
		moves = g.loadShipMoves(p)
		moves = append(moves, g.loanRequestMoves(p)...)
		moves = append(moves, DoneMove(p))
	case TradeContainer:
		moves = g.tradeSecondMoves(p)
	case LoadLuxury:
		moves = g.placeGoldMoves(p)
	case RepriceFactory:
		moves = g.repriceMoves(p, FactoryRack)
		moves = append(moves, DoneMove(p))
	case RepriceWarehouse:
		moves = g.repriceMoves(p, DockRack)
		moves = append(moves, DoneMove(p))
	case Auction:
		moves = g.auctionBidMoves(p, 0)
		moves = append(moves, g.loanRequestMoves(p)...)
	case Rebid:
		moves = g.auctionBidMoves(p, g.Accounts[p].Bid.BidAmount)
		moves = append(moves, g.loanRequestMoves(p)...)
	case AcceptBid:
		moves = g.acceptBidMoves(p)
	case FundLoan:
		if g.Accounts[p].Cash >= LoanAmount {
			moves = append(moves, &Move{Kind: MoveFund, Player: p})
		}
		moves = append(moves, &Move{Kind: MoveDecline, Player: p})
	case Financeer:
		moves = g.financeerMoves(p)
	case AcceptLoan:
		moves = g.acceptLoanMoves(p)
	case TakeLoan:
		moves = g.loanRequestMoves(p)
		if len(moves) == 0 {
			panic(fmt.Sprintf("p%d forced to borrow with no loan available", p))
		}
	case Gameover, Puzzle:
		return nil
	default:
		panic(fmt.Sprintf("no move generator for state %v", g.State))
	}
	return moves
}

// LegalMovesFrom narrows the legal moves to the transfers taking from one
// cell: the menu left once a player has picked up a piece.
func (g *Game) LegalMovesFrom(from Cell) []*Move {
	var moves []*Move
	for _, m := range g.LegalMoves() {
		if m.Kind == MoveTransfer && m.From == from {
			moves = append(moves, m)
		}
	}
	return moves
}

// playMoves builds the full free-action menu.
func (g *Game) playMoves(p int) []*Move {
	bd := g.Accounts[p]
	var moves []*Move

	if !g.HasProduced && bd.Cash >= CostToProduce {
		moves = append(moves, g.produceMoves(p)...)
	}
	moves = append(moves, g.luxuryStartMoves(p)...)
	moves = append(moves, g.buyMachineMoves(p)...)
	moves = append(moves, g.buyWarehouseMoves(p)...)
	if !g.BoughtDockGoods {
		for seller := range g.Accounts {
			if seller == p || seller == g.LoadedWarehouseFrom {
				continue
			}
			moves = append(moves, g.buyDockMoves(p, seller)...)
		}
	}
	moves = append(moves, g.shipMoves(p)...)
	moves = append(moves, g.loanRequestMoves(p)...)
	moves = append(moves, g.repayMoves(p)...)

	// Passing is suppressed while the ship is loaded or stuck in island
	// parking, unless nothing else is possible.
	suppress := len(bd.Ship.Hold) > 0 || bd.Ship.Place == AtIsland
	if !suppress || len(moves) == 0 {
		moves = append(moves, PassMove(p))
	}
	return moves
}

// produceMoves enumerates one move per idle machine color and destination
// tier. The fee affordability check belongs to the caller.
func (g *Game) produceMoves(p int) []*Move {
	bd := g.Accounts[p]
	var moves []*Move
	var seen [NumColors]bool
	for _, m := range bd.Machines {
		if m.Produced || seen[m.Color] || g.Supply[m.Color] == 0 {
			continue
		}
		seen[m.Color] = true
		for tier := range bd.FactoryGoods {
			if !bd.CanPlaceFactoryGood(tier, g.Config.Variant) {
				continue
			}
			moves = append(moves,
				TransferMove(p, supplyCell(m.Color), factoryCell(p, tier), m.Color))
		}
	}
	return moves
}

// luxuryStartMoves opens a gold trade: give up the first of two
// different-colored goods from the factory or dock rack.
func (g *Game) luxuryStartMoves(p int) []*Move {
	if !g.secondShipment() || g.ProducedLuxury || g.Supply[Gold] == 0 {
		return nil
	}
	bd := g.Accounts[p]
	var moves []*Move
	if bd.CanTradeFactoryForGold() {
		moves = append(moves, g.giveUpMoves(p, FactoryRack, NoColor)...)
	}
	if bd.CanTradeDockForGold() {
		moves = append(moves, g.giveUpMoves(p, DockRack, NoColor)...)
	}
	return moves
}

// giveUpMoves enumerates distinct ordinary colors in one rack class headed
// back to the supply, skipping the excluded color of a half-done trade.
func (g *Game) giveUpMoves(p int, rack Rack, exclude Color) []*Move {
	bd := g.Accounts[p]
	tiers := bd.factoryRack()
	cell := factoryCell
	if rack == DockRack {
		tiers = bd.dockRack()
		cell = dockCell
	}
	var moves []*Move
	var seen [NumColors]bool
	for tier, goods := range tiers {
		for _, c := range goods {
			if c == Gold || c == exclude || seen[c] {
				continue
			}
			seen[c] = true
			moves = append(moves, TransferMove(p, cell(p, tier), supplyCell(c), c))
		}
	}
	return moves
}

func (g *Game) tradeSecondMoves(p int) []*Move {
	return g.giveUpMoves(p, g.luxuryRack, g.luxuryColor)
}

// placeGoldMoves finishes the trade: the gold lands on any legal tier of the
// rack class the goods came from.
func (g *Game) placeGoldMoves(p int) []*Move {
	bd := g.Accounts[p]
	var moves []*Move
	if g.luxuryRack == FactoryRack {
		for tier := range bd.FactoryGoods {
			if bd.CanPlaceFactoryGood(tier, g.Config.Variant) {
				moves = append(moves,
					TransferMove(p, supplyCell(Gold), factoryCell(p, tier), Gold))
			}
		}
	} else {
		for tier := range bd.DockGoods {
			if bd.CanPlaceDockGood(tier, g.Config.Variant) {
				moves = append(moves,
					TransferMove(p, supplyCell(Gold), dockCell(p, tier), Gold))
			}
		}
	}
	return moves
}

func (g *Game) buyMachineMoves(p int) []*Move {
	bd := g.Accounts[p]
	if g.BoughtMachine || len(bd.Machines) >= MaxMachines {
		return nil
	}
	price := MachinePrices[len(bd.Machines)]
	if bd.Cash < price {
		return nil
	}
	var moves []*Move
	for c := Color(0); c < NumTradeColors; c++ {
		if g.MachineSupply[c] == 0 {
			continue
		}
		moves = append(moves,
			TransferMove(p, machineSupplyCell(c), machineCell(p, len(bd.Machines)), c))
	}
	return moves
}

func (g *Game) buyWarehouseMoves(p int) []*Move {
	bd := g.Accounts[p]
	if g.BoughtWarehouse || bd.Warehouses >= MaxWarehouses || g.WarehouseSupply == 0 {
		return nil
	}
	if bd.Cash < WarehousePrices[bd.Warehouses] {
		return nil
	}
	return []*Move{
		TransferMove(p, warehouseSupplyCell(), warehouseCell(p, bd.Warehouses), NoColor),
	}
}

// buyDockMoves enumerates purchases from one seller's factory onto the
// buyer's dock, one move per distinct (color, source tier, target tier).
func (g *Game) buyDockMoves(p, seller int) []*Move {
	if seller == NoPlayer || seller == p {
		return nil
	}
	bd := g.Accounts[p]
	src := g.Accounts[seller]
	var moves []*Move
	for tier, goods := range src.FactoryGoods {
		price := FactoryGoodPrices[tier]
		if bd.Cash < price {
			continue
		}
		var seen [NumColors]bool
		for _, c := range goods {
			if seen[c] {
				continue
			}
			seen[c] = true
			if c == Gold && bd.DockHasGold() {
				continue
			}
			for d := range bd.DockGoods {
				if !bd.CanPlaceDockGood(d, g.Config.Variant) {
					continue
				}
				moves = append(moves,
					TransferMove(p, factoryCell(seller, tier), dockCell(p, d), c))
			}
		}
	}
	return moves
}

// shipMoves enumerates sailing options for the player's ship.
func (g *Game) shipMoves(p int) []*Move {
	bd := g.Accounts[p]
	var moves []*Move
	switch bd.Ship.Place {
	case AtDock, AtIsland:
		moves = append(moves,
			TransferMove(p, moorCell(bd.Ship.Dock), seaCell(p), NoColor))
	case AtSea:
		if len(bd.Ship.Hold) < MaxShipGoods {
			for dock := range g.Accounts {
				if dock == p || dock == g.MovedToSeaFrom || dock == g.LoadedShipFrom {
					continue
				}
				if !g.dockAffordable(p, dock) {
					continue
				}
				moves = append(moves,
					TransferMove(p, seaCell(p), moorCell(dock), NoColor))
			}
		}
		if len(bd.Ship.Hold) > 0 {
			moves = append(moves,
				TransferMove(p, seaCell(p), auctionCell(p), NoColor))
		}
	}
	return moves
}

// dockAffordable reports whether the dock holds at least one good the buyer
// can pay for, so docking cannot strand the mandatory first load.
func (g *Game) dockAffordable(p, dock int) bool {
	cash := g.Accounts[p].Cash
	for tier, goods := range g.Accounts[dock].DockGoods {
		if len(goods) > 0 && cash >= WarehouseGoodPrices[tier] {
			return true
		}
	}
	return false
}

func (g *Game) loadShipMoves(p int) []*Move {
	bd := g.Accounts[p]
	if bd.Ship.Place != AtDock || len(bd.Ship.Hold) >= MaxShipGoods {
		return nil
	}
	seller := bd.Ship.Dock
	var moves []*Move
	for tier, goods := range g.Accounts[seller].DockGoods {
		if bd.Cash < WarehouseGoodPrices[tier] {
			continue
		}
		var seen [NumColors]bool
		for _, c := range goods {
			if seen[c] {
				continue
			}
			seen[c] = true
			moves = append(moves,
				TransferMove(p, dockCell(seller, tier), shipCell(p), c))
		}
	}
	return moves
}

// repriceMoves lets the player re-tier goods in one rack class, one move per
// distinct (color, from, to).
func (g *Game) repriceMoves(p int, rack Rack) []*Move {
	bd := g.Accounts[p]
	tiers := bd.factoryRack()
	cell := factoryCell
	canPlace := bd.CanPlaceFactoryGood
	if rack == DockRack {
		tiers = bd.dockRack()
		cell = dockCell
		canPlace = bd.CanPlaceDockGood
	}
	var moves []*Move
	for from, goods := range tiers {
		var seen [NumColors]bool
		for _, c := range goods {
			if seen[c] {
				continue
			}
			seen[c] = true
			for to := range tiers {
				if to == from || !canPlace(to, g.Config.Variant) {
					continue
				}
				moves = append(moves, TransferMove(p, cell(p, from), cell(p, to), c))
			}
		}
	}
	return moves
}

// maxAuctionBid caps bids at the traditional ceiling of 20 or available cash.
func (g *Game) maxAuctionBid(p int) int {
	cash := g.Accounts[p].Cash
	if cash > 20 {
		return 20
	}
	return cash
}

func (g *Game) auctionBidMoves(p, min int) []*Move {
	var moves []*Move
	for b := min; b <= g.maxAuctionBid(p); b++ {
		moves = append(moves, BidMove(p, b))
	}
	if len(moves) == 0 {
		moves = append(moves, BidMove(p, g.Accounts[p].Bid.BidAmount))
	}
	return moves
}

func (g *Game) acceptBidMoves(p int) []*Move {
	var moves []*Move
	if w := g.auctionWinner(); w != NoPlayer {
		moves = append(moves, &Move{Kind: MoveAccept, Player: p, Target: w})
	}
	high := g.highBid()
	if high < 0 {
		high = 0
	}
	if g.Accounts[p].Cash >= high {
		moves = append(moves, &Move{Kind: MoveBuy, Player: p})
	}
	return moves
}

func (g *Game) financeerMoves(p int) []*Move {
	cash := g.Accounts[p].Cash
	max := cash
	if max > 2*LoanAmount {
		max = 2 * LoanAmount
	}
	var moves []*Move
	for b := LoanAmount; b <= max; b++ {
		moves = append(moves, BidMove(p, b))
	}
	if len(moves) == 0 {
		moves = append(moves, BidMove(p, LoanAmount))
	}
	return moves
}

func (g *Game) acceptLoanMoves(p int) []*Move {
	moves := []*Move{{Kind: MoveAcceptLoan, Player: p, Target: Bank}}
	if f := g.selectedFunder(); f != NoPlayer {
		moves = append(moves, &Move{Kind: MoveAcceptLoan, Player: p, Target: f})
	}
	if !g.MustPayLoan {
		moves = append(moves, &Move{Kind: MoveDeclineLoan, Player: p})
	}
	return moves
}

// loanRequestMoves offers to open a loan; requesting costs no action.
func (g *Game) loanRequestMoves(p int) []*Move {
	bd := g.Accounts[p]
	if g.LoanDeck == 0 || bd.DeclinedLoan {
		return nil
	}
	slot := bd.EmptyLoanSlot()
	if slot < 0 {
		return nil
	}
	return []*Move{TransferMove(p, loanDeckCell(), loanCell(p, slot), NoColor)}
}

// repayMoves offers loan repayment; barred the turn a loan was taken and
// while interest is in arrears.
func (g *Game) repayMoves(p int) []*Move {
	bd := g.Accounts[p]
	if bd.TookLoan || bd.UnpaidStatus() != 0 {
		return nil
	}
	var moves []*Move
	for slot := range bd.Loans {
		loan := bd.Loans[slot]
		if loan.Active() && bd.Cash >= loan.RepaymentAmount() {
			moves = append(moves, TransferMove(p, loanCell(p, slot), loanDeckCell(), NoColor))
		}
	}
	return moves
}
