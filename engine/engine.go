// Package engine runs complete self-play games over the core rules engine.
// It owns nothing rule-related: it enumerates legal moves, asks a Policy to
// pick one, executes it and logs the trajectory.
package engine

import (
	"math/rand"

	"containergame/game"
)

// MaxMoves aborts a runaway game; a real game ends far earlier.
const MaxMoves = 5000

// A Policy picks one of the legal moves for the acting player. The slice is
// never empty and the returned move must come from it.
type Policy interface {
	Pick(g *game.Game, legal []*game.Move, rng *rand.Rand) *game.Move
}
