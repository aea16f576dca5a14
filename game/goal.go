package game

import (
	"math/rand"

	"golang.org/x/exp/slices"
)

// NumGoalCards is the size of the goal-card deck; each card is a distinct
// price ranking of the ordinary colors.
const NumGoalCards = 5

// goalCardOrder lists, per card, the colors in descending price position.
// Position 0 is the "10" column, position 1 the "10 or 5" column, then 6, 4
// and 2.
var goalCardOrder = [NumGoalCards][NumTradeColors]Color{
	{Black, Brown, Orange, Tan, White},
	{Brown, Orange, Tan, White, Black},
	{Orange, Tan, White, Black, Brown},
	{Tan, White, Black, Brown, Orange},
	{White, Black, Brown, Orange, Tan},
}

// Column values when the island holds all five colors, and when it does not.
var (
	goalValuesComplete   = [NumTradeColors]int{10, 10, 6, 4, 2}
	goalValuesIncomplete = [NumTradeColors]int{10, 5, 6, 4, 2}
)

// GoalSet is one hypothesis of every player's goal card. Index by player to
// get the card index.
type GoalSet []int

func (s GoalSet) equal(o GoalSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Permutations counts ordered selections of k items from n.
func Permutations(n, k int) int {
	p := 1
	for i := 0; i < k; i++ {
		p *= n - i
	}
	return p
}

// numberedPermutation decodes index idx into the idx-th ordered selection of
// players cards from the deck. Deterministic, so every clone enumerates the
// same sets in the same order.
func numberedPermutation(idx, players int) GoalSet {
	list := make([]int, NumGoalCards)
	for i := range list {
		list[i] = i
	}
	set := make(GoalSet, players)
	div := NumGoalCards
	for pos := 0; pos < players; pos++ {
		sel := idx % div
		idx /= div
		div--
		list[pos], list[pos+sel] = list[pos+sel], list[pos]
		set[pos] = list[pos]
	}
	return set
}

// rankedGoalSet pairs a hypothesis with its plausibility score for sorting.
type rankedGoalSet struct {
	set GoalSet
	sum int
}

// goalData holds the hidden assignment and the enumeration used to infer it.
type goalData struct {
	players int
	master  GoalSet
	all     []rankedGoalSet
	// perPlayer[i] indexes into all: the hypotheses consistent with player
	// i's own card.
	perPlayer [][]int
}

func newGoalData(players int, rng *rand.Rand) *goalData {
	// Deal the true cards.
	deck := make([]int, NumGoalCards)
	for i := range deck {
		deck[i] = i
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	master := make(GoalSet, players)
	copy(master, deck[:players])

	d := &goalData{players: players, master: master}
	n := Permutations(NumGoalCards, players)
	d.all = make([]rankedGoalSet, n)
	for i := 0; i < n; i++ {
		d.all[i] = rankedGoalSet{set: numberedPermutation(i, players)}
	}
	d.perPlayer = make([][]int, players)
	for p := 0; p < players; p++ {
		for i := range d.all {
			if d.all[i].set[p] == master[p] {
				d.perPlayer[p] = append(d.perPlayer[p], i)
			}
		}
	}
	return d
}

func (d *goalData) copy() *goalData {
	c := &goalData{players: d.players}
	c.master = append(GoalSet(nil), d.master...)
	c.all = make([]rankedGoalSet, len(d.all))
	for i := range d.all {
		c.all[i] = rankedGoalSet{set: append(GoalSet(nil), d.all[i].set...), sum: d.all[i].sum}
	}
	c.perPlayer = make([][]int, len(d.perPlayer))
	for i := range d.perPlayer {
		c.perPlayer[i] = append([]int(nil), d.perPlayer[i]...)
	}
	return c
}

// card returns the card index the hypothesis assigns to a player.
func (d *goalData) card(set GoalSet, player int) int { return set[player] }

// masterIndex locates the true assignment inside the enumeration.
func (d *goalData) masterIndex() int {
	for i := range d.all {
		if d.all[i].set.equal(d.master) {
			return i
		}
	}
	return -1
}

// islandTally counts island goods per color.
func islandTally(island []Color) [NumColors]int {
	var t [NumColors]int
	for _, c := range island {
		t[c]++
	}
	return t
}

// noDrop marks an island where every color keeps its value.
const noDrop = Color(-1)

// dropColor picks the color that scores zero: the most numerous one. Ties
// keep the "10 or 5" column color as the drop except when gold is involved,
// which always wins a tie. In the second-shipment edition an island holding
// a single good drops nothing. added counts one hypothetical extra good of
// that color, NoColor for none.
func dropColor(card int, tally [NumColors]int, added Color, secondShipment bool) Color {
	order := goalCardOrder[card]
	fiveAndTen := order[1]
	drop := noDrop
	maxval := -1
	total := 0
	consider := func(c Color) {
		h := tally[c]
		total += h
		if c == added {
			h++
		}
		if h > maxval {
			drop, maxval = c, h
			return
		}
		if h == maxval && (c == Gold || drop != fiveAndTen) {
			drop = c
		}
	}
	for _, c := range order {
		consider(c)
	}
	consider(Gold)
	if total == 1 && secondShipment {
		return noDrop
	}
	return drop
}

// islandValueAdded scores one island against one goal card, optionally with
// a hypothetical extra good of color added (NoColor for none). The most
// numerous color scores nothing, every other ordinary color scores its card
// column (halved second column when a color is missing entirely), and gold
// scores twice the square of its count. The very first good placed on an
// empty island scores the top column regardless of color.
func islandValueAdded(card int, island []Color, added Color, secondShipment bool) int {
	tally := islandTally(island)
	complete := true
	for c := Color(0); c < NumTradeColors; c++ {
		if tally[c] == 0 && c != added {
			complete = false
			break
		}
	}
	values := goalValuesIncomplete
	if complete {
		values = goalValuesComplete
	}
	drop := dropColor(card, tally, added, secondShipment)
	sum := 0
	total := 0
	for pos, c := range goalCardOrder[card] {
		total += tally[c]
		if c != drop {
			h := tally[c]
			if c == added {
				h++
			}
			sum += h * values[pos]
		}
	}
	if added != NoColor && total == 0 {
		// First good on an empty island.
		if added == Gold {
			sum += 2
		} else {
			sum += values[0]
		}
	}
	if drop != Gold {
		h := tally[Gold]
		if added == Gold {
			h++
		}
		sum += 2 * h * h
	}
	return sum
}

func islandValue(card int, island []Color, secondShipment bool) int {
	return islandValueAdded(card, island, NoColor, secondShipment)
}

// IslandValue scores a player's island under the true goal assignment.
func (g *Game) IslandValue(player int) int {
	return islandValue(g.goals.card(g.goals.master, player), g.Accounts[player].Island, g.secondShipment())
}

// MasterGoalCard exposes the true card index dealt to a player. Only the
// scoring path and the player's own inference may use it.
func (g *Game) MasterGoalCard(player int) int { return g.goals.master[player] }

// GoalSetCount returns how many assignments the enumeration holds.
func (g *Game) GoalSetCount() int { return len(g.goals.all) }

// PossibleGoalSets returns the hypothesis count consistent with the player's
// own card.
func (g *Game) PossibleGoalSets(player int) int { return len(g.goals.perPlayer[player]) }

// RankGoalSets recomputes every hypothesis' plausibility (the summed island
// value it would concede to all players) and returns the enumeration indices
// in descending order. With rational players the true assignment tends to
// rise toward the top.
func (g *Game) RankGoalSets() []int {
	var values [MaxPlayers][NumGoalCards]int
	for p := range g.Accounts {
		for card := 0; card < NumGoalCards; card++ {
			values[p][card] = islandValue(card, g.Accounts[p].Island, g.secondShipment())
		}
	}
	for i := range g.goals.all {
		sum := 0
		for p, card := range g.goals.all[i].set {
			sum += values[p][card]
		}
		g.goals.all[i].sum = sum
	}
	order := make([]int, len(g.goals.all))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return g.goals.all[b].sum - g.goals.all[a].sum
	})
	return order
}

// GoalSetAt exposes one enumerated hypothesis.
func (g *Game) GoalSetAt(i int) GoalSet { return g.goals.all[i].set }

// MasterGoalSetIndex locates the true assignment in the enumeration.
func (g *Game) MasterGoalSetIndex() int { return g.goals.masterIndex() }
