// Package game implements the rules engine for a multi-player
// commodity-trading board game: production, warehousing, shipping, auctions,
// island scoring and a player-to-player loan market. The engine is
// deterministic and fully reversible so an external search driver can run
// thousands of speculative execute/unexecute cycles on a clone of the live
// state.
package game

// Color identifies a container color. Gold is the scarce luxury color; it is
// never produced directly, only obtained by trading two other colors.
type Color int

const (
	Black Color = iota
	White
	Tan
	Brown
	Orange
	Gold
)

// NoColor marks an absent color argument.
const NoColor = Color(-1)

// NumTradeColors counts the ordinary (non-gold) colors.
const NumTradeColors = 5

// NumColors includes gold.
const NumColors = 6

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	case Tan:
		return "tan"
	case Brown:
		return "brown"
	case Orange:
		return "orange"
	case Gold:
		return "gold"
	}
	return "unknown"
}

// Version selects one of the heuristic valuation strategies. The tuning
// constants they blend live in Tuning, not in code.
type Version int

const (
	V4 Version = 4
	V5 Version = 5
	V6 Version = 6
)

// Evaluate scores a position for one player. Positive means the player is
// ahead of the strongest opponent.
type Evaluate func(g *Game, player int) float64

// Bank is the funder index meaning "the bank" rather than a player.
const Bank = -1

// NoPlayer marks an unset player index in repeat guards and similar fields.
const NoPlayer = -1
