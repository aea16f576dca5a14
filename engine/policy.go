package engine

import (
	"math"
	"math/rand"

	"containergame/game"
	"containergame/utils"
)

// Random picks uniformly among the legal moves.
type Random struct{}

func (Random) Pick(g *game.Game, legal []*game.Move, rng *rand.Rand) *game.Move {
	return legal[rng.Intn(len(legal))]
}

// Greedy is a one-ply policy: execute each candidate, score the resulting
// position for the mover, undo, keep the best. In bidding states it bids the
// amount the fair-bid solver suggests instead of scanning every amount.
type Greedy struct {
	Version game.Version
}

func (p Greedy) Pick(g *game.Game, legal []*game.Move, rng *rand.Rand) *game.Move {
	switch g.BoardPhase() {
	case game.Auction, game.Rebid:
		if m := nearestBid(legal, g.RobotBid(g.Player(), p.Version)); m != nil {
			return m
		}
	case game.Financeer:
		if m := nearestBid(legal, g.RobotLoanStake(g.Player())); m != nil {
			return m
		}
	}
	player := g.Player()
	best := legal[0]
	bestVal := math.Inf(-1)
	for _, m := range legal {
		g.Execute(m)
		v := g.Evaluate(player, p.Version)
		g.Unexecute(m)
		if v > bestVal {
			best, bestVal = m, v
		}
	}
	return best
}

// nearestBid returns the legal bid matching the wanted amount, or the
// closest one. Nil when the state offers no bid at all.
func nearestBid(legal []*game.Move, want int) *game.Move {
	var bids []*game.Move
	var amounts []int
	for _, m := range legal {
		if m.Kind == game.MoveBid {
			bids = append(bids, m)
			amounts = append(amounts, m.Amount)
		}
	}
	if len(bids) == 0 {
		return nil
	}
	if i := utils.FindIndex(amounts, want); i >= 0 {
		return bids[i]
	}
	best := 0
	for i, a := range amounts {
		if abs(a-want) < abs(amounts[best]-want) {
			best = i
		}
	}
	return bids[best]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
