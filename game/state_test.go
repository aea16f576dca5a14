package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, players int, variant Variant, seed int64) *Game {
	t.Helper()
	g, err := NewGame(GameConfig{Variant: variant, Players: players, Seed: seed})
	require.NoError(t, err, "fresh game should initialize")
	return g
}

func TestConfigValidate(t *testing.T) {
	t.Run("rejects bad player counts", func(t *testing.T) {
		_, err := NewGame(GameConfig{Variant: FirstShipment, Players: 2})
		require.Error(t, err, "two players is below the minimum")
		_, err = NewGame(GameConfig{Variant: FirstShipment, Players: 6})
		require.Error(t, err, "six players is above the maximum")
	})
	t.Run("rejects unknown variants", func(t *testing.T) {
		_, err := NewGame(GameConfig{Variant: "checkers", Players: 4})
		require.Error(t, err, "unknown variant should not initialize")
	})
}

func TestNewGameSetup(t *testing.T) {
	for _, players := range []int{3, 4, 5} {
		g := newTestGame(t, players, FirstShipment, 12345)

		t.Run("bank and cash", func(t *testing.T) {
			require.Equal(t, 500-StartingCash*players, g.Bank, "bank pays out starting cash")
			for i, a := range g.Accounts {
				require.Equal(t, StartingCash, a.Cash, "player %d starting cash", i)
			}
			require.Equal(t, 500, g.CashInPlay(), "all cash accounted for")
		})

		t.Run("starting assets", func(t *testing.T) {
			for i, a := range g.Accounts {
				require.Len(t, a.Machines, 1, "player %d starts with one machine", i)
				require.Equal(t, 1, a.Warehouses, "player %d starts with one warehouse", i)
				require.Len(t, a.FactoryGoods[1], 1,
					"player %d starts with one good at the second price tier", i)
				require.Equal(t, a.Machines[0].Color, a.FactoryGoods[1][0],
					"starting good matches the machine color")
				require.Equal(t, AtSea, a.Ship.Place, "ships start at sea")
				require.Empty(t, a.Ship.Hold, "ships start empty")
			}
		})

		t.Run("supply pools", func(t *testing.T) {
			dealt := 0
			for c := Color(0); c < NumTradeColors; c++ {
				dealt += containerSupply[players] - g.Supply[c]
			}
			require.Equal(t, players, dealt, "one container dealt per player")

			machines := 0
			for _, n := range g.MachineSupply {
				machines += n
			}
			require.Equal(t, players*NumTradeColors-players, machines,
				"one machine dealt per player")
			require.Equal(t, players*MaxWarehouses-players, g.WarehouseSupply,
				"one warehouse dealt per player")
			require.Equal(t, players*MaxLoans, g.LoanDeck, "loan deck full")
		})

		t.Run("opening state", func(t *testing.T) {
			require.Equal(t, Play1, g.State, "game opens on the first free action")
			require.Equal(t, 0, g.Turn, "seat zero moves first")
			require.False(t, g.IsTerminal(), "fresh game is not over")
			require.Equal(t, NoPlayer, g.Winner(), "no winner before the end")
		})
	}
}

func TestNewGameGoldSupply(t *testing.T) {
	g := newTestGame(t, 4, SecondShipment, 7)
	require.Equal(t, 8, g.Supply[Gold], "two gold per player in the expansion")

	g = newTestGame(t, 4, FirstShipment, 7)
	require.Equal(t, 0, g.Supply[Gold], "no gold in the base game")
}

func TestNewGameDeterminism(t *testing.T) {
	a := newTestGame(t, 4, FirstShipment, 63432234)
	b := newTestGame(t, 4, FirstShipment, 63432234)
	require.Equal(t, a.Digest(), b.Digest(), "same seed deals the same position")

	c := newTestGame(t, 4, FirstShipment, 63432235)
	require.NotEqual(t, a.Digest(), c.Digest(), "different seed deals a different position")
}

func TestCopyIsIndependent(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 99)
	c := g.Copy()
	require.Equal(t, g.Digest(), c.Digest(), "copy starts identical")

	c.Accounts[0].Cash += 5
	c.Supply[Black]--
	require.NotEqual(t, g.Digest(), c.Digest(), "mutating the copy diverges it")
	require.Equal(t, StartingCash, g.Accounts[0].Cash, "original cash untouched")
}

func TestGoalEnumeration(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 41)

	require.Equal(t, Permutations(5, 3), g.GoalSetCount(),
		"all ordered card deals enumerated")
	for p := 0; p < 3; p++ {
		require.Equal(t, Permutations(4, 2), g.PossibleGoalSets(p),
			"player %d sees deals consistent with the own card", p)
	}

	master := g.MasterGoalSetIndex()
	require.GreaterOrEqual(t, master, 0, "true deal appears in the enumeration")
	set := g.GoalSetAt(master)
	for p := 0; p < 3; p++ {
		require.Equal(t, g.MasterGoalCard(p), set[p], "master index matches the true deal")
	}

	seen := make(map[string]bool, g.GoalSetCount())
	for i := 0; i < g.GoalSetCount(); i++ {
		key := fmt.Sprint(g.GoalSetAt(i))
		require.False(t, seen[key], "deal %d enumerated twice", i)
		seen[key] = true
	}
}

func TestRankGoalSets(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 17)
	ranked := g.RankGoalSets()
	require.Len(t, ranked, g.GoalSetCount(), "every deal is ranked")

	seen := make(map[int]bool, len(ranked))
	for _, idx := range ranked {
		require.False(t, seen[idx], "deal %d ranked twice", idx)
		seen[idx] = true
	}
}

func TestScoreAndWinner(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 5)

	base := g.Score(0)
	g.Accounts[0].Cash += 7
	require.Equal(t, base+7, g.Score(0), "score tracks cash one for one")

	g.Accounts[0].Ship.Hold = append(g.Accounts[0].Ship.Hold, Black)
	require.Equal(t, base+7+ShipGoodValue, g.Score(0), "stranded ship goods score flat value")

	t.Run("resignation", func(t *testing.T) {
		g.Accounts[1].Cash += 100
		g.Resign(1)
		require.True(t, g.IsTerminal(), "resignation ends the game")
		w := g.Winner()
		require.NotEqual(t, 1, w, "resigned player cannot win")
	})
}

func TestPayInterest(t *testing.T) {
	t.Run("pays each funder", func(t *testing.T) {
		g := newTestGame(t, 3, FirstShipment, 8)
		bd := g.Accounts[0]
		bd.Loans[0] = Loan{Amount: LoanAmount, Funder: Bank}
		bd.Loans[1] = Loan{Amount: LoanAmount, Funder: 2}
		bd.LoansTaken = 2

		bank := g.Bank
		funder := g.Accounts[2].Cash
		ok := g.payInterest(0, false)
		require.True(t, ok, "player with cash pays on the spot")
		require.Equal(t, StartingCash-2*LoanInterest, bd.Cash, "one interest per loan")
		require.Equal(t, bank+LoanInterest, g.Bank, "bank loan interest goes to the bank")
		require.Equal(t, funder+LoanInterest, g.Accounts[2].Cash,
			"player loan interest goes to the funder")
		require.Equal(t, 500, g.CashInPlay(), "interest conserves cash")
	})

	t.Run("refuses while a forced loan is available", func(t *testing.T) {
		g := newTestGame(t, 3, FirstShipment, 8)
		bd := g.Accounts[0]
		bd.Cash = 0
		bd.Loans[0] = Loan{Amount: LoanAmount, Funder: Bank}
		bd.LoansTaken = 1

		require.False(t, g.payInterest(0, false), "broke player must borrow first")
	})

	t.Run("accrues when borrowing is exhausted", func(t *testing.T) {
		g := newTestGame(t, 3, FirstShipment, 8)
		bd := g.Accounts[0]
		bd.Cash = 0
		bd.Loans[0] = Loan{Amount: LoanAmount, Funder: Bank}
		bd.Loans[1] = Loan{Amount: LoanAmount, Funder: Bank}
		bd.LoansTaken = 2

		require.True(t, g.payInterest(0, false), "maxed-out borrower cannot refuse")
		require.Equal(t, LoanAmount+LoanInterest, bd.Loans[0].Amount,
			"unpaid interest rolls onto principal")
		require.True(t, bd.Loans[0].UnpaidInterest, "loan flagged unpaid")
	})
}
