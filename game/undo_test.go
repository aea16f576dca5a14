package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// Random playouts exercise nearly every executor path; unwinding the full
// trail must land on the exact starting position at every depth.
func TestUndoRoundTrip(t *testing.T) {
	for _, variant := range []Variant{FirstShipment, SecondShipment} {
		t.Run(string(variant), func(t *testing.T) {
			g := newTestGame(t, 3, variant, 4711)
			rng := rand.New(rand.NewSource(1))

			var trail []*Move
			var digests []uint64
			for step := 0; step < 300 && !g.IsTerminal(); step++ {
				digests = append(digests, g.Digest())
				legal := g.LegalMoves()
				require.NotEmpty(t, legal, "live game always has a move (state %v)", g.State)
				m := legal[rng.Intn(len(legal))]
				g.Execute(m)
				require.Equal(t, 500, g.CashInPlay(), "move %d conserves cash: %v", step, m)
				trail = append(trail, m)
			}

			for i := len(trail) - 1; i >= 0; i-- {
				g.Unexecute(trail[i])
				require.Equal(t, digests[i], g.Digest(),
					"undoing %v restores the position at depth %d", trail[i], i)
			}
			require.Equal(t, 500, g.CashInPlay(), "unwound game conserves cash")
		})
	}
}

func TestUndoSingleMove(t *testing.T) {
	g := newTestGame(t, 4, FirstShipment, 21)
	before := g.Digest()

	m := pickMove(t, g, "produce", isProduce)
	g.Execute(m)
	require.NotEqual(t, before, g.Digest(), "production changes the position")

	g.Unexecute(m)
	require.Equal(t, before, g.Digest(), "undo restores the position")
	require.Equal(t, StartingCash, g.Accounts[0].Cash, "fee refunded")
	require.Equal(t, StartingCash, g.Accounts[3].Cash, "fee clawed back")
	require.False(t, g.HasProduced, "turn flags restored")

	t.Run("move is executable again", func(t *testing.T) {
		g.Execute(m)
		require.Equal(t, StartingCash-CostToProduce, g.Accounts[0].Cash,
			"replay applies the same effect")
	})
}

func TestUndoWithoutCapsulePanics(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 22)
	require.Panics(t, func() { g.Unexecute(PassMove(0)) },
		"only executed moves can be unwound")
}
