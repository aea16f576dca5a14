package engine

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"containergame/game"
)

// Result is the outcome of one completed self-play game.
type Result struct {
	ID     uuid.UUID
	Winner int
	Moves  int
	Digest uint64
	Scores []int
}

// Local drives one game to completion on this process.
type Local struct {
	Game     *game.Game
	Policies []Policy
	rng      *rand.Rand
	id       uuid.UUID
}

// NewLocal wires a game to one policy per seat. The seed feeds only policy
// tie-breaking; the game's own seed came with its config.
func NewLocal(g *game.Game, policies []Policy, seed int64) (*Local, error) {
	if len(policies) != g.Config.Players {
		return nil, fmt.Errorf("%d policies for %d players", len(policies), g.Config.Players)
	}
	return &Local{
		Game:     g,
		Policies: policies,
		rng:      rand.New(rand.NewSource(seed)),
		id:       uuid.New(),
	}, nil
}

// Run plays until the game ends and returns the result. Every move is logged
// at debug level; the outcome at info level.
func (e *Local) Run() Result {
	g := e.Game
	log.Info().
		Stringer("game", e.id).
		Int64("seed", g.Config.Seed).
		Str("variant", string(g.Config.Variant)).
		Int("players", g.Config.Players).
		Msg("game start")

	moves := 0
	for !g.IsTerminal() && moves < MaxMoves {
		legal := g.LegalMoves()
		if len(legal) == 0 {
			panic(fmt.Sprintf("no legal moves in state %v", g.BoardPhase()))
		}
		m := e.Policies[g.Player()].Pick(g, legal, e.rng)
		log.Debug().
			Stringer("game", e.id).
			Int("move", g.MoveNumber).
			Stringer("state", g.BoardPhase()).
			Stringer("pick", m).
			Msg("move")
		g.Execute(m)
		moves++
	}

	res := Result{
		ID:     e.id,
		Winner: g.Winner(),
		Moves:  moves,
		Digest: g.Digest(),
		Scores: make([]int, g.Config.Players),
	}
	if g.IsTerminal() {
		for p := range res.Scores {
			res.Scores[p] = g.Score(p)
		}
	}
	log.Info().
		Stringer("game", e.id).
		Int("winner", res.Winner).
		Ints("scores", res.Scores).
		Int("moves", res.Moves).
		Uint64("digest", res.Digest).
		Msg("game over")
	return res
}
