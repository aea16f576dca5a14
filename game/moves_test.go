package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func countMoves(moves []*Move, pred func(*Move) bool) int {
	n := 0
	for _, m := range moves {
		if pred(m) {
			n++
		}
	}
	return n
}

func TestOpeningMoveMenu(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 31)
	moves := g.LegalMoves()
	require.NotEmpty(t, moves, "the opening player has moves")

	for _, m := range moves {
		require.Equal(t, 0, m.Player, "every generated move belongs to the acting player")
	}

	require.Positive(t, countMoves(moves, isProduce), "production is available")
	require.Positive(t, countMoves(moves, func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == MachineSupplyRack
	}), "machine purchase is available")
	require.Positive(t, countMoves(moves, func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == WarehouseSupplyRack
	}), "warehouse purchase is available")
	require.Positive(t, countMoves(moves, func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == LoanDeckRack
	}), "a loan request is available")
	require.Equal(t, 1, countMoves(moves, func(m *Move) bool {
		return m.Kind == MovePass
	}), "exactly one pass")
	require.Zero(t, countMoves(moves, func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From.Rack == LoanRack
	}), "nothing to repay yet")
}

// Every generated move must execute and unwind cleanly from the position that
// generated it.
func TestLegalMovesAreExecutable(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 32)
	before := g.Digest()

	for _, m := range g.LegalMoves() {
		g.Execute(m)
		g.Unexecute(m)
		require.Equal(t, before, g.Digest(), "move %v round-trips", m)
	}
}

func TestLegalMovesFrom(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 38)
	color := g.Accounts[0].Machines[0].Color

	narrowed := g.LegalMovesFrom(supplyCell(color))
	require.NotEmpty(t, narrowed, "picking up a supply container leaves moves")
	for _, m := range narrowed {
		require.Equal(t, MoveTransfer, m.Kind, "narrowing keeps transfers only")
		require.Equal(t, supplyCell(color), m.From, "narrowing keeps the picked source")
	}

	want := countMoves(g.LegalMoves(), func(m *Move) bool {
		return m.Kind == MoveTransfer && m.From == supplyCell(color)
	})
	require.Len(t, narrowed, want, "narrowing drops nothing from the source")

	require.Empty(t, g.LegalMovesFrom(seaCell(2)),
		"an opponent's cell offers the acting player nothing")
}

func TestShipSkipsDockLoadedFromThisTurn(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 39)
	g.Accounts[1].DockGoods[0] = append(g.Accounts[1].DockGoods[0], White)
	g.Accounts[2].DockGoods[0] = append(g.Accounts[2].DockGoods[0], Tan)
	g.Supply[White]--
	g.Supply[Tan]--
	g.Accounts[0].Ship.Place = AtSea
	g.LoadedShipFrom = 1

	moves := g.LegalMoves()
	require.Zero(t, countMoves(moves, func(m *Move) bool {
		return m.Kind == MoveTransfer && m.To.Rack == DockRack &&
			m.To.Owner == 1 && m.To.Index == shipMooring
	}), "the dock already loaded from this turn is off limits")
	require.Positive(t, countMoves(moves, func(m *Move) bool {
		return m.Kind == MoveTransfer && m.To.Rack == DockRack &&
			m.To.Owner == 2 && m.To.Index == shipMooring
	}), "other stocked docks stay reachable")
}

func TestPassSuppressedWithLoadedShip(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 33)
	g.Accounts[0].Ship.Hold = []Color{Black}
	g.Supply[Black]--

	moves := g.LegalMoves()
	require.Zero(t, countMoves(moves, func(m *Move) bool { return m.Kind == MovePass }),
		"a loaded ship cannot idle")
	require.Positive(t, countMoves(moves, func(m *Move) bool {
		return m.Kind == MoveTransfer && m.To.Rack == AuctionRack
	}), "the loaded ship may sail to auction")
}

func TestAuctionBidRange(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 34)
	g.Accounts[0].Ship.Hold = []Color{White}
	g.Supply[White]--
	g.Bank += g.Accounts[1].Cash - 7
	g.Accounts[1].Cash = 7

	doMove(t, g, "sail to auction", func(m *Move) bool {
		return m.Kind == MoveTransfer && m.To.Rack == AuctionRack
	})
	doDone(t, g)
	require.Equal(t, Auction, g.State, "bidding opens")
	require.Equal(t, 1, g.Turn, "short-stacked player bids first")

	moves := g.LegalMoves()
	bids := countMoves(moves, func(m *Move) bool { return m.Kind == MoveBid })
	require.Equal(t, 8, bids, "bids span zero through the whole bankroll")
	for _, m := range moves {
		if m.Kind == MoveBid {
			require.LessOrEqual(t, m.Amount, 7, "no bid above cash on hand")
		}
	}
}

func TestRepeatGuards(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 35)

	doMove(t, g, "produce", isProduce)
	doDone(t, g)
	doDone(t, g)
	require.Equal(t, Play2, g.State, "second free action")

	require.Zero(t, countMoves(g.LegalMoves(), isProduce),
		"production happens once per turn")

	t.Run("locked warehouse seller", func(t *testing.T) {
		g := newTestGame(t, 4, FirstShipment, 36)
		g.Accounts[1].FactoryGoods[0] = append(g.Accounts[1].FactoryGoods[0], Orange)
		g.Supply[Orange]--

		doMove(t, g, "buy factory good", func(m *Move) bool {
			return m.Kind == MoveTransfer && m.From.Rack == FactoryRack && m.From.Owner == 1
		})
		doDone(t, g)
		doDone(t, g)
		require.Equal(t, Play2, g.State, "second free action")

		require.Zero(t, countMoves(g.LegalMoves(), func(m *Move) bool {
			return m.Kind == MoveTransfer && m.From.Rack == FactoryRack && m.From.Owner == 1
		}), "the same seller cannot be bought from twice in a turn")
	})
}

func TestNoMovesAfterGameover(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 37)
	g.Resign(2)
	require.Nil(t, g.LegalMoves(), "a finished game has no moves")
}
