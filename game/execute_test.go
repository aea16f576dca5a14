package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// pickMove finds exactly the legal move a scenario calls for.
func pickMove(t *testing.T, g *Game, desc string, pred func(*Move) bool) *Move {
	t.Helper()
	for _, m := range g.LegalMoves() {
		if pred(m) {
			return m
		}
	}
	require.FailNowf(t, "missing legal move", "no legal move for %q in state %v", desc, g.State)
	return nil
}

func doMove(t *testing.T, g *Game, desc string, pred func(*Move) bool) *Move {
	t.Helper()
	m := pickMove(t, g, desc, pred)
	g.Execute(m)
	return m
}

func doDone(t *testing.T, g *Game) {
	t.Helper()
	doMove(t, g, "done", func(m *Move) bool { return m.Kind == MoveDone })
}

func doBid(t *testing.T, g *Game, amount int) {
	t.Helper()
	doMove(t, g, "bid", func(m *Move) bool {
		return m.Kind == MoveBid && m.Amount == amount
	})
}

func isProduce(m *Move) bool {
	return m.Kind == MoveTransfer && m.From.Rack == SupplyRack && m.To.Rack == FactoryRack
}

func TestProducePaysFeeToPreviousPlayer(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 63432234)
	color := g.Accounts[0].Machines[0].Color
	supply := g.Supply[color]

	doMove(t, g, "produce", isProduce)

	require.Equal(t, StartingCash-CostToProduce, g.Accounts[0].Cash,
		"producer pays the fee")
	require.Equal(t, StartingCash+CostToProduce, g.Accounts[3].Cash,
		"fee goes to the player on the right")
	require.True(t, g.HasProduced, "fee is charged once per turn")
	require.Equal(t, supply-1, g.Supply[color], "container comes from the pool")
	require.Equal(t, 2, g.Accounts[0].FactoryStored(), "new good joins the starting good")
	require.Equal(t, LoadFactoryGoods, g.State, "production episode continues")
	require.Equal(t, 500, g.CashInPlay(), "fee conserves cash")

	doDone(t, g)
	require.Equal(t, RepriceFactory, g.State, "producer may reprice the factory")
	doDone(t, g)
	require.Equal(t, Play2, g.State, "production consumed the first action")
	require.True(t, g.SecondAction, "second action pending")

	doMove(t, g, "pass", func(m *Move) bool { return m.Kind == MovePass })
	require.Equal(t, 1, g.Turn, "turn passes after the second action")
	require.Equal(t, Play1, g.State, "next player starts fresh")
}

func TestBuyFactoryGoods(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 11)
	g.Accounts[1].FactoryGoods[0] = append(g.Accounts[1].FactoryGoods[0], Black)
	g.Supply[Black]--

	doMove(t, g, "buy factory good", func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == FactoryRack &&
			m.From.Owner == 1 && m.To.Rack == DockRack && m.To.Owner == 0 &&
			m.Color == Black
	})

	require.Equal(t, StartingCash-FactoryGoodPrices[0], g.Accounts[0].Cash,
		"buyer pays the tier price")
	require.Equal(t, StartingCash+FactoryGoodPrices[0], g.Accounts[1].Cash,
		"seller collects the tier price")
	require.Equal(t, 1, g.Accounts[0].DockStored(), "good lands on the buyer's dock")
	require.Equal(t, LoadWarehouseGoods, g.State, "purchase episode continues")
	require.True(t, g.BoughtDockGoods, "purchase recorded for the turn")
	require.Equal(t, 1, g.Sales, "goods sale counts toward the endgame clock")

	doDone(t, g)
	require.Equal(t, RepriceWarehouse, g.State, "buyer may reprice the warehouse")
	require.Equal(t, 1, g.LoadedWarehouseFrom, "seller locked for the turn")
	doDone(t, g)
	require.Equal(t, Play2, g.State, "purchase consumed the first action")
}

func TestShipDocksAndLoads(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 12)
	g.Accounts[1].DockGoods[0] = append(g.Accounts[1].DockGoods[0], White)
	g.Supply[White]--

	doMove(t, g, "sail to dock", func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == SeaRack &&
			m.To.Rack == DockRack && m.To.Owner == 1 && m.To.Index == shipMooring
	})
	require.Equal(t, AtDock, g.Accounts[0].Ship.Place, "ship moored")
	require.Equal(t, 1, g.Accounts[0].Ship.Dock, "ship moored at the seller")
	require.Equal(t, LoadShip1, g.State, "docked ship must load")

	doMove(t, g, "load ship", func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == DockRack &&
			m.From.Owner == 1 && m.To.Rack == ShipRack && m.Color == White
	})
	require.Equal(t, StartingCash-WarehouseGoodPrices[0], g.Accounts[0].Cash,
		"shipper pays the dock price")
	require.Equal(t, StartingCash+WarehouseGoodPrices[0], g.Accounts[1].Cash,
		"dock owner collects the price")
	require.Equal(t, []Color{White}, g.Accounts[0].Ship.Hold, "good loaded")
	require.Equal(t, WarehouseGoodPrices[0], g.Accounts[0].ShipCost,
		"hold cost tracked for valuation")
	require.Equal(t, LoadShip, g.State, "further loading optional")

	doDone(t, g)
	require.Equal(t, 1, g.LoadedShipFrom, "dock locked for the turn")
	require.Equal(t, Play2, g.State, "shipping consumed the first action")
	require.Equal(t, 500, g.CashInPlay(), "loading conserves cash")
}

func TestAuctionRebidAndDelivery(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 13)
	g.Accounts[0].Ship.Hold = []Color{Black, White}
	g.Supply[Black]--
	g.Supply[White]--

	doMove(t, g, "sail to auction", func(m *Move) bool {
		return m.Kind == MoveTransfer && m.To.Rack == AuctionRack
	})
	require.Equal(t, Confirm, g.State, "auction start wants confirmation")
	doDone(t, g)

	require.Equal(t, Auction, g.State, "sealed bidding opens")
	require.True(t, g.Accounts[0].Bid.RequestingBid, "auctioneer marked")
	require.Equal(t, 1, g.Turn, "bidding starts left of the auctioneer")

	doBid(t, g, 5) // p1
	doBid(t, g, 8) // p2
	doBid(t, g, 8) // p3

	require.Equal(t, Rebid, g.State, "tied high bids force a rebid round")
	require.Equal(t, 2, g.Turn, "first tied bidder rebids first")
	require.True(t, g.Accounts[1].Bid.CannotRebid, "low bidder is out")

	doBid(t, g, 10) // p2 raises
	require.Equal(t, 3, g.Turn, "other tied bidder answers")
	doBid(t, g, 8) // p3 stands pat, dropping out

	require.Equal(t, AcceptBid, g.State, "one live bid remains")
	require.Equal(t, 0, g.Turn, "auctioneer decides")

	doMove(t, g, "accept bid", func(m *Move) bool {
		return m.Kind == MoveAccept && m.Target == 2
	})

	require.Equal(t, StartingCash-10, g.Accounts[2].Cash, "buyer pays the winning bid")
	require.Equal(t, StartingCash+20, g.Accounts[0].Cash,
		"auctioneer collects the bid plus the bank match")
	require.ElementsMatch(t, []Color{Black, White}, g.Accounts[2].Island,
		"cargo lands on the buyer's island")
	require.Empty(t, g.Accounts[0].Ship.Hold, "ship emptied")
	require.Equal(t, AtIsland, g.Accounts[0].Ship.Place, "ship parks at the island")
	require.Equal(t, 0, g.Accounts[0].ShipCost, "delivered hold no longer carries cost")
	require.Equal(t, ConfirmAuction, g.State, "delivery wants confirmation")

	doDone(t, g)
	require.Equal(t, 1, g.Turn, "auction consumed the whole turn")
	require.Equal(t, Play1, g.State, "next player starts fresh")
}

func TestAuctioneerBuysOwnLot(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 14)
	g.Accounts[0].Ship.Hold = []Color{Tan}
	g.Supply[Tan]--

	doMove(t, g, "sail to auction", func(m *Move) bool {
		return m.Kind == MoveTransfer && m.To.Rack == AuctionRack
	})
	doDone(t, g)
	doBid(t, g, 4) // p1
	doBid(t, g, 3) // p2

	require.Equal(t, AcceptBid, g.State, "sealed round resolved without a tie")
	bank := g.Bank
	doMove(t, g, "buy own lot", func(m *Move) bool { return m.Kind == MoveBuy })

	require.Equal(t, StartingCash-4, g.Accounts[0].Cash,
		"auctioneer matches the high bid")
	require.Equal(t, bank+4, g.Bank, "the match goes to the bank")
	require.Equal(t, []Color{Tan}, g.Accounts[0].Island, "cargo stays with the auctioneer")
	require.Equal(t, StartingCash, g.Accounts[1].Cash, "bidders pay nothing")
}

func TestBankLoanLifecycle(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 15)
	deck := g.LoanDeck

	doMove(t, g, "request loan", func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == LoanDeckRack
	})
	require.Equal(t, FundLoan, g.State, "table is polled for funders")
	require.Equal(t, deck-1, g.LoanDeck, "loan card drawn")
	require.True(t, g.Accounts[0].Loans[0].Pending, "loan pending until resolved")

	doMove(t, g, "p1 declines", func(m *Move) bool { return m.Kind == MoveDecline })
	doMove(t, g, "p2 declines", func(m *Move) bool { return m.Kind == MoveDecline })

	require.Equal(t, AcceptLoan, g.State, "borrower chooses the source")
	require.Equal(t, 0, g.Turn, "decision returns to the borrower")

	doMove(t, g, "take bank loan", func(m *Move) bool {
		return m.Kind == MoveAcceptLoan && m.Target == Bank
	})
	require.Equal(t, StartingCash+LoanAmount, g.Accounts[0].Cash, "bank pays the principal")
	require.Equal(t, 1, g.Accounts[0].LoansTaken, "loan on the books")
	require.True(t, g.Accounts[0].TookLoan, "no repayment on the same turn")
	require.Equal(t, Play1, g.State, "loan costs no action")
	require.Equal(t, 0, g.Turn, "borrower continues the turn")

	t.Run("repay next turn", func(t *testing.T) {
		// Round the table back to the borrower.
		for p := 0; p < 3; p++ {
			doMove(t, g, "pass", func(m *Move) bool { return m.Kind == MovePass })
		}
		require.Equal(t, 0, g.Turn, "back to the borrower")
		cash := g.Accounts[0].Cash

		doMove(t, g, "repay loan", func(m *Move) bool {
			return m.Kind == MoveTransfer && m.From.Rack == LoanRack
		})
		require.Equal(t, cash-LoanAmount, g.Accounts[0].Cash, "principal returned")
		require.Equal(t, 0, g.Accounts[0].LoansTaken, "loan retired")
		require.Equal(t, deck, g.LoanDeck, "loan card back in the deck")
		require.Equal(t, Play1, g.State, "repayment costs no action")
	})
}

func TestLoanWithdrawal(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 16)
	deck := g.LoanDeck

	doMove(t, g, "request loan", func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == LoanDeckRack
	})
	doMove(t, g, "p1 declines", func(m *Move) bool { return m.Kind == MoveDecline })
	doMove(t, g, "p2 declines", func(m *Move) bool { return m.Kind == MoveDecline })

	doMove(t, g, "withdraw request", func(m *Move) bool {
		return m.Kind == MoveDeclineLoan
	})
	require.Equal(t, StartingCash, g.Accounts[0].Cash, "no payout on withdrawal")
	require.Equal(t, 0, g.Accounts[0].LoansTaken, "no loan on the books")
	require.Equal(t, deck, g.LoanDeck, "loan card back in the deck")
	require.True(t, g.Accounts[0].DeclinedLoan, "no second request this turn")
	require.Equal(t, Play1, g.State, "withdrawal costs no action")
}

func TestFinanceerCompetition(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 17)

	doMove(t, g, "request loan", func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == LoanDeckRack
	})
	doMove(t, g, "p1 offers", func(m *Move) bool { return m.Kind == MoveFund })
	doMove(t, g, "p2 offers", func(m *Move) bool { return m.Kind == MoveFund })

	require.Equal(t, Financeer, g.State, "competing funders bid for the loan")
	require.Equal(t, 1, g.Turn, "stakes start left of the borrower")

	doBid(t, g, 12) // p1
	doBid(t, g, 15) // p2

	require.Equal(t, AcceptLoan, g.State, "stakes are in")
	doMove(t, g, "take the high stake", func(m *Move) bool {
		return m.Kind == MoveAcceptLoan && m.Target == 2
	})

	require.Equal(t, StartingCash+15, g.Accounts[0].Cash,
		"winning stake is the payout")
	require.Equal(t, StartingCash-15, g.Accounts[2].Cash, "funder fronts the stake")
	require.Equal(t, 2, g.Accounts[0].Loans[0].Funder, "interest flows to the funder")
	require.Equal(t, 1, g.Accounts[2].Flow.LoansMade, "funder credited with the loan")
	require.Equal(t, LoanAmount, g.Accounts[2].Flow.TotalLoaned,
		"only the principal counts toward the final score")
	require.Equal(t, StartingCash, g.Accounts[1].Cash, "losing funder pays nothing")
	require.Equal(t, 500, g.CashInPlay(), "loan conserves cash")
}

func TestForcedLoanCoversInterest(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 18)
	bd := g.Accounts[1]
	g.Bank += bd.Cash
	bd.Cash = 0
	bd.Loans[0] = Loan{Amount: LoanAmount, Funder: Bank}
	bd.LoansTaken = 1
	g.LoanDeck--

	doMove(t, g, "p0 passes", func(m *Move) bool { return m.Kind == MovePass })

	require.Equal(t, TakeLoan, g.State, "broke debtor is forced to borrow")
	require.Equal(t, 1, g.Turn, "the debtor acts")
	require.True(t, g.MustPayLoan, "interest bill pending")

	doMove(t, g, "forced request", func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == LoanDeckRack
	})
	doMove(t, g, "p2 declines", func(m *Move) bool { return m.Kind == MoveDecline })
	doMove(t, g, "p0 declines", func(m *Move) bool { return m.Kind == MoveDecline })

	require.Equal(t, AcceptLoan, g.State, "borrower confirms the source")
	for _, m := range g.LegalMoves() {
		require.NotEqual(t, MoveDeclineLoan, m.Kind,
			"a forced loan cannot be withdrawn")
	}

	doMove(t, g, "take bank loan", func(m *Move) bool {
		return m.Kind == MoveAcceptLoan && m.Target == Bank
	})

	require.Equal(t, LoanAmount-2*LoanInterest, bd.Cash,
		"payout lands and both loans are serviced at once")
	require.Equal(t, Play1, g.State, "turn proceeds normally")
	require.False(t, g.MustPayLoan, "interest bill settled")
	require.Equal(t, 2, bd.LoansTaken, "forced loan on the books")
}

func TestExecutePanics(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 19)

	t.Run("out of turn", func(t *testing.T) {
		require.Panics(t, func() { g.Execute(PassMove(1)) },
			"moves by the wrong player are a driver bug")
	})
	t.Run("double execute", func(t *testing.T) {
		m := PassMove(0)
		g.Execute(m)
		require.Panics(t, func() { g.Execute(m) },
			"a move carries one undo capsule only")
	})
}
