package game

import "math"

// The valuation strategies below blend immediate cash against the earning
// power of machines, warehouses and goods in transit. V4 is the original
// frozen heuristic, V5 recalibrates it around a longer game-length estimate,
// and V6 is V5 with machine income derated by the production duty cycle.

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// turnsRemaining guesses how many turns are left from the two scarcest
// supply pools; the game ends soon after a second pool empties.
func (g *Game) turnsRemaining(v Version) float64 {
	limit := NumTradeColors
	if g.secondShipment() {
		limit = NumColors
	}
	least, second := g.Supply[0], g.Supply[1]
	if least > second {
		least, second = second, least
	}
	for c := 2; c < limit; c++ {
		h := g.Supply[c]
		if h <= least {
			second, least = least, h
		} else if h < second {
			second = h
		}
	}
	if v == V4 {
		return 2.0 * float64(least+second+1) / float64(g.Config.Players)
	}
	return 3.5 * float64(least+second) / float64(g.Config.Players)
}

// gameStage maps turnsRemaining onto 0..1, interpolating between opening and
// endgame heuristics. The V5 curve is squared to keep the opening behavior
// longer under its larger game-length divisor.
func (g *Game) gameStage(v Version) float64 {
	turns := g.turnsRemaining(v)
	if v == V4 {
		return 1 - clamp01(turns/g.Tun.GameLengthV4)
	}
	s := 1 - clamp01(turns/g.Tun.GameLengthV5)
	return s * s
}

// endgameFactor collapses from 1 to 0 across the last fifth of the game,
// devaluing income streams that will not have time to pay off.
func endgameFactor(stage float64) float64 {
	if stage < 0.8 {
		return 1.0
	}
	return (1 - stage) / 0.2
}

func (g *Game) machinesInPlay() int {
	n := 0
	for _, a := range g.Accounts {
		n += a.ActiveMachines()
	}
	return n
}

func (g *Game) warehousesInPlay() int {
	n := 0
	for _, a := range g.Accounts {
		n += a.Warehouses
	}
	return n
}

// machineRatio is the squared machine/warehouse balance across the whole
// table. Production capacity above buying capacity makes factory goods
// cheap, so machine income is divided by it and warehouse income multiplied.
func (g *Game) machineRatio() float64 {
	w := g.warehousesInPlay()
	if w == 0 {
		return 1
	}
	r := float64(g.machinesInPlay()) / float64(w)
	return r * r
}

// machinesSold counts how many machines of the color have left the supply.
func (g *Game) machinesSold(c Color) int {
	sold := g.Config.Players - g.MachineSupply[c]
	if sold < 0 {
		sold = 0
	}
	if sold >= NumTradeColors {
		sold = NumTradeColors - 1
	}
	return sold
}

// preestFor spreads the positional pre-estimates of a goal card across the
// colors it prices, so a good can be valued before the card is known.
func (g *Game) preestFor(card int) [NumTradeColors]float64 {
	var out [NumTradeColors]float64
	for i, c := range goalCardOrder[card] {
		out[c] = g.Tun.PreestIslandGoods[i]
	}
	return out
}

// realFor spreads the full-set column values of a goal card across colors.
func realFor(card int) [NumTradeColors]int {
	var out [NumTradeColors]int
	for i, c := range goalCardOrder[card] {
		out[c] = goalValuesComplete[i]
	}
	return out
}

// fixedIslandGoodsValue prices an island with flat per-color estimates plus
// the quadratic gold bonus, ignoring the goal card entirely.
func fixedIslandGoodsValue(preest [NumTradeColors]float64, island []Color) float64 {
	gold := 0
	v := 0.0
	for _, c := range island {
		if c == Gold {
			gold++
		} else {
			v += preest[c]
		}
	}
	return v + float64(2*gold*gold)
}

// unbalancedMost returns the color holding a strict majority position on the
// island, or NoColor when the tallest stacks tie. A lopsided island is about
// to forfeit that color to the discard rule.
func unbalancedMost(island []Color) Color {
	t := islandTally(island)
	best := NoColor
	unique := false
	maxHeight := 0
	for c := Color(0); c < NumColors; c++ {
		switch {
		case t[c] > maxHeight:
			maxHeight, best, unique = t[c], c, true
		case t[c] == maxHeight && t[c] > 0:
			unique = false
		}
	}
	if !unique {
		return NoColor
	}
	return best
}

// islandEstimate blends a flat pre-estimate of the island with its real
// scored value, shifting weight to the real value as the game progresses.
// While the real value is still zero the first few goods are granted close
// to full credit so the player starts deliveries at all.
func (g *Game) islandEstimate(v Version, card int, island []Color, stage float64) float64 {
	realV := islandValue(card, island, g.secondShipment())
	var preest [NumTradeColors]float64
	if v == V4 {
		for i := range preest {
			preest[i] = g.Tun.UniformIslandGood
		}
	} else {
		preest = g.preestFor(card)
	}
	fake := fixedIslandGoodsValue(preest, island)
	base := 0.0
	if realV == 0 {
		tot := 0.0
		for _, p := range preest {
			tot += p
		}
		base = math.Min(fake, 2*tot/NumTradeColors)
		fake -= base
	} else if u := unbalancedMost(island); u != NoColor && u < NumTradeColors {
		pre := preest[u]
		if v != V4 && realFor(card)[u] >= 5 {
			// Dumping more of an already dominant high column is ruinous.
			pre = -pre * 2
		}
		base += pre
	}
	return base + (1-stage)*fake + stage*float64(realV)
}

// scoreEstimate is the cheap score proxy used inside bid search: cash, the
// island blend, salvage value of goods in transit, and the loan ledger.
func (g *Game) scoreEstimate(player int, set GoalSet, v Version, stage float64) float64 {
	bd := g.Accounts[player]
	score := float64(bd.Cash)
	score += g.islandEstimate(v, set[player], bd.Island, stage)
	score += float64(ShipGoodValue * len(bd.Ship.Hold))
	score += float64(WarehouseGoodValue * bd.DockStored())
	score -= float64(bd.TotalLoanAmount())
	score += float64(bd.Flow.TotalLoaned)
	return score
}

// position is the player's score estimate relative to the strongest
// opponent. Bids are judged by whether they improve this differential.
func (g *Game) position(player int, set GoalSet, v Version, stage float64) float64 {
	own := g.scoreEstimate(player, set, v, stage)
	best := math.Inf(-1)
	for p := range g.Accounts {
		if p == player {
			continue
		}
		if s := g.scoreEstimate(p, set, v, stage); s > best {
			best = s
		}
	}
	return own - best
}

// goodValues caches, per color, the most any island would gain from one more
// good of that color. Valid only while no goods move.
type goodValues struct {
	g        *Game
	set      GoalSet
	omit     int // player excluded from the scan, NoPlayer for none
	baseline []int
	added    [NumColors]int
	known    [NumColors]bool
}

func (g *Game) newGoodValues(set GoalSet, omit int) *goodValues {
	gv := &goodValues{g: g, set: set, omit: omit}
	gv.baseline = make([]int, len(g.Accounts))
	ss := g.secondShipment()
	for p := range g.Accounts {
		gv.baseline[p] = islandValue(set[p], g.Accounts[p].Island, ss)
	}
	return gv
}

func (gv *goodValues) addedValue(c Color) int {
	if gv.known[c] {
		return gv.added[c]
	}
	g := gv.g
	ss := g.secondShipment()
	best := 0
	have := false
	for p := range g.Accounts {
		if p == gv.omit {
			continue
		}
		d := islandValueAdded(gv.set[p], g.Accounts[p].Island, c, ss) - gv.baseline[p]
		if !have || d > best {
			best, have = d, true
		}
	}
	gv.added[c], gv.known[c] = best, true
	return best
}

// Evaluate scores the position for a player with the full heuristic under
// the true goal assignment. Positive means ahead of the field.
func (g *Game) Evaluate(player int, v Version) float64 {
	return g.EvaluateUnder(player, g.goals.master, v)
}

// EvaluateUnder scores with an explicit goal-card hypothesis, which is what a
// player who cannot see the hidden cards has to work from.
func (g *Game) EvaluateUnder(player int, set GoalSet, v Version) float64 {
	if v == V4 {
		return g.scoreV4(player, set)
	}
	return g.scoreV5(player, set, v)
}

// EvaluatorFor adapts a strategy version to the Evaluate function type.
func EvaluatorFor(v Version) Evaluate {
	return func(g *Game, player int) float64 {
		return g.Evaluate(player, v)
	}
}

func (g *Game) scoreV4(player int, set GoalSet) float64 {
	bd := g.Accounts[player]
	t := &g.Tun
	turns := g.turnsRemaining(V4)
	stage := g.gameStage(V4)
	horizon := math.Sqrt(turns)
	endgame := endgameFactor(stage)
	ratio := g.machineRatio()
	gv := g.newGoodValues(set, NoPlayer)

	cash := bd.Cash
	loans := bd.LoansTaken
	loanRate := 2.0
	if cash >= LoanAmount {
		loanRate = 3.0
	}
	finalv := float64(cash)
	finalv -= float64(bd.TotalLoanAmount()) + float64(loans)*horizon*loanRate
	finalv += float64(bd.Flow.TotalLoaned) + horizon*2*float64(bd.Flow.LoansMade)
	finalv *= math.Sqrt(stage)

	working := cash + (MaxLoans-loans)*LoanAmount - loans
	if working < t.CapitalTarget {
		finalv -= float64(t.CapitalTarget-working) * (1 - stage)
	}

	fixedAssets := 0
	for i, m := range bd.Machines {
		finalv += t.MachineWeightsV4[g.machinesSold(m.Color)] * turns * endgame / ratio
		fixedAssets += MachinePrices[i]
	}
	for i := 0; i < bd.Warehouses; i++ {
		finalv += t.WarehouseWeightsV4[i] * horizon * endgame * ratio
		fixedAssets += WarehousePrices[i]
	}
	if fa := float64(fixedAssets) * t.FixedAssetMultiplier; fa > float64(working) {
		finalv -= (fa - float64(working)) * 2
	}

	for tier, goods := range bd.FactoryGoods {
		for _, c := range goods {
			vv := float64(gv.addedValue(c)) * t.FactoryGoodsPriceMultiplier * endgame / ratio
			if int(vv) != FactoryGoodPrices[tier] {
				vv += t.OffPricePenalty
			}
			finalv += 2 * vv
		}
	}
	for tier, goods := range bd.DockGoods {
		for _, c := range goods {
			vv := float64(gv.addedValue(c)) * t.WarehouseGoodsPriceMultiplier * endgame * ratio
			if endgame < 1 {
				vv = math.Max(vv, WarehouseGoodValue)
			}
			if int(vv) != WarehouseGoodPrices[tier] {
				vv += t.OffPricePenalty
			}
			finalv += vv
		}
	}

	if bd.Ship.Place == AtIsland {
		finalv -= 0.5
	}
	if n := len(bd.Ship.Hold); n > 0 {
		val := float64(g.valueAtAuctionV4(player, set, stage))
		if endgame < 1 {
			val = math.Max(float64(n*ShipGoodValue), val*endgame)
		}
		switch bd.Ship.Place {
		case AtAuction:
			val -= float64(n) * 0.25
		case AtSea:
			val -= float64(n) * 1.0
		case AtDock:
			val -= float64(n) * 1.75
		case AtIsland:
			val = 0
		}
		finalv += val
	}

	finalv += g.islandEstimate(V4, set[player], bd.Island, stage)
	return finalv
}

func (g *Game) scoreV5(player int, set GoalSet, v Version) float64 {
	bd := g.Accounts[player]
	t := &g.Tun
	turns := g.turnsRemaining(v)
	stage := g.gameStage(v)
	horizon := math.Sqrt(turns)
	endgame := endgameFactor(stage)
	ratio := g.machineRatio()
	gv := g.newGoodValues(set, player)

	// The ship loses apparent value every turn it is neither loaded nor
	// moved, a nudge to get cargo to auction.
	shipAge := g.MoveNumber - bd.ShipChanged
	if shipAge < 0 {
		shipAge = 0
	}
	maxAge := 3 * (g.Config.Players - 1)
	ageMult := 1.0
	if bd.Ship.Place != AtAuction {
		if shipAge > maxAge {
			shipAge = maxAge
		}
		ageMult = float64(maxAge-shipAge) / float64(maxAge)
	}
	finalv := (float64(bd.Cash) + float64(bd.ShipCost)*ageMult) * math.Sqrt(stage)

	loans := bd.LoansTaken
	finalv -= float64(bd.TotalLoanAmount()) + float64(loans)*horizon*2
	finalv += float64(bd.Flow.TotalLoaned) + horizon*2*float64(bd.Flow.LoansMade)
	finalv += float64(bd.PassCount) * t.PassPenalty
	finalv += float64(bd.VirtualCash) / 100

	working := g.EstimateAvailableCash(player, true)
	if working < t.CapitalTarget {
		finalv -= float64(t.CapitalTarget-working) * (1 - stage)
	}

	machineDuty := 1.0
	if v == V6 {
		machineDuty = t.ProductionDutyCycle
	}
	fixedAssets := 0
	for i, m := range bd.Machines {
		finalv += t.MachineWeightsV5[g.machinesSold(m.Color)] * turns * endgame * machineDuty / ratio
		fixedAssets += MachinePrices[i]
	}
	for i := 0; i < bd.Warehouses; i++ {
		finalv += t.WarehouseWeightsV5[i] * horizon * endgame * ratio
		fixedAssets += WarehousePrices[i]
	}
	if fa := float64(fixedAssets) * t.FixedAssetMultiplier; fa > float64(working) {
		finalv -= (fa - float64(working)) * 2
	}

	// Repeated colors in storage are discounted a little to favor diversity.
	var abundance [NumColors]int
	for tier, goods := range bd.FactoryGoods {
		for _, c := range goods {
			goodValue := gv.addedValue(c)
			if goodValue < t.StandardContainerValue {
				goodValue = t.StandardContainerValue
			}
			vv := (float64(goodValue) - float64(abundance[c])*0.6) * t.FactoryGoodsPriceMultiplier * endgame
			abundance[c]++
			if int(vv+0.5) != FactoryGoodPrices[tier] {
				vv += t.OffPricePenalty
			}
			finalv += vv
		}
	}
	abundance = [NumColors]int{}
	for tier, goods := range bd.DockGoods {
		for _, c := range goods {
			vv := (float64(gv.addedValue(c)) - float64(abundance[c])*0.1) * t.WarehouseGoodsPriceMultiplier * endgame
			if endgame < 1 {
				vv = math.Max(vv, WarehouseGoodValue)
			}
			if int(vv+0.5) != WarehouseGoodPrices[tier] {
				vv += t.OffPricePenalty
			}
			abundance[c]++
			finalv += vv
		}
	}

	if bd.Ship.Place == AtIsland {
		finalv -= 0.5
	}
	if n := len(bd.Ship.Hold); n > 0 {
		val := float64(g.valueAtAuctionV5(player, set, v, stage))
		switch bd.Ship.Place {
		case AtAuction:
			val -= float64(n) * 0.5
		case AtSea:
			val -= float64(n) * 1.0
		case AtDock:
			val -= float64(n) * 1.5
		case AtIsland:
			val = 0
		}
		finalv += val
	}

	finalv += g.islandEstimate(v, set[player], bd.Island, stage)
	return finalv
}

// EstimateAvailableCash is the loose spending power of a player: cash net of
// upcoming interest, plus quick money from auctioning the ship and, when
// includeLoans is set, the credit line still open.
func (g *Game) EstimateAvailableCash(player int, includeLoans bool) int {
	bd := g.Accounts[player]
	extra := 0.5 * float64(len(bd.Ship.Hold)) * g.Tun.UniformIslandGood
	if includeLoans {
		extra += float64((MaxLoans - bd.LoansTaken) * LoanAmount)
	}
	cash := bd.Cash - bd.LoansTaken*LoanInterest + int(extra)
	if cash < 0 {
		cash = 0
	}
	return cash
}

// testBid applies a hypothetical winning bid: the auctioneer's cargo lands on
// the buyer's island and the money moves as it would in acceptBid. The
// returned capsule restores the position exactly.
func (g *Game) testBid(auctioneer, buyer, amount int) *capsule {
	u := g.snapshot()
	g.rec = u
	seller := g.Accounts[auctioneer]
	island := Cell{Rack: IslandRack, Owner: buyer}
	for len(seller.Ship.Hold) > 0 {
		c := seller.Ship.Hold[len(seller.Ship.Hold)-1]
		g.moveGood(shipCell(auctioneer), island, c)
	}
	if amount != 0 {
		if buyer == auctioneer {
			g.transferToBank(amount, auctioneer, true)
		} else {
			g.transferFromBank(amount, auctioneer)
			g.transfer(amount, buyer, auctioneer, true)
		}
	}
	g.rec = nil
	return u
}

func (g *Game) scoreAfterBid(auctioneer, buyer, amount int, set GoalSet, v Version, stage float64) float64 {
	u := g.testBid(auctioneer, buyer, amount)
	val := g.position(buyer, set, v, stage)
	g.restore(u)
	return val
}

// fairBid is the highest bid that still leaves the buyer better off than not
// bidding. When even a zero bid loses ground the scan runs negative, pricing
// how much the buyer would need to be paid to want the lot.
func (g *Game) fairBid(auctioneer, buyer, maxBid int, set GoalSet, v Version, stage float64) int {
	baseline := g.position(buyer, set, v, stage)
	fair := -1
	for bid := 0; bid <= maxBid; bid++ {
		if g.scoreAfterBid(auctioneer, buyer, bid, set, v, stage) > baseline {
			fair = bid
		} else {
			break
		}
	}
	for fair < 0 {
		if g.scoreAfterBid(auctioneer, buyer, fair, set, v, stage) > baseline {
			break
		}
		fair--
	}
	return fair
}

// FairBid evaluates the running lot for a prospective buyer under the true
// goal assignment, capped at maxBid.
func (g *Game) FairBid(auctioneer, buyer, maxBid int, v Version) int {
	return g.fairBid(auctioneer, buyer, maxBid, g.goals.master, v, g.gameStage(v))
}

// ValueAtAuction estimates the proceeds of auctioning the player's cargo now.
func (g *Game) ValueAtAuction(auctioneer int, v Version) int {
	stage := g.gameStage(v)
	if v == V4 {
		return g.valueAtAuctionV4(auctioneer, g.goals.master, stage)
	}
	return g.valueAtAuctionV5(auctioneer, g.goals.master, v, stage)
}

// valueAtAuctionV4 runs the fair-bid scan for every seat and prices the lot
// at twice the second-highest bid, the standard outcome of the double-or-buy
// rule.
func (g *Game) valueAtAuctionV4(auctioneer int, set GoalSet, stage float64) int {
	high, second, highWinner := -1, -1, NoPlayer
	for buyer := range g.Accounts {
		bd := g.Accounts[buyer]
		cash := bd.Cash - bd.LoansTaken
		if bd.LoansTaken < MaxLoans {
			cash += LoanAmount - 1
		}
		if cash < 0 {
			cash = 0
		}
		fair := g.fairBid(auctioneer, buyer, cash, set, V4, stage)
		if fair > high {
			second, high, highWinner = high, fair, buyer
		} else if fair > second {
			second = fair
		}
	}
	if highWinner == auctioneer && high > second*2 {
		return high
	}
	if high > second {
		second++
	}
	return second * 2
}

func (g *Game) valueAtAuctionV5(auctioneer int, set GoalSet, v Version, stage float64) int {
	high, second, highWinner := -1, -1, NoPlayer
	for buyer := range g.Accounts {
		cash := g.EstimateAvailableCash(buyer, true)
		fair := int((1-stage)*g.minimumFairBid(cash, auctioneer) +
			stage*float64(g.fairBid(auctioneer, buyer, cash, set, v, stage)))
		if shortfall := (cash - fair) - g.Tun.CapitalTarget; shortfall < 0 {
			half := (fair + 1) / 2
			if fair+shortfall > half {
				fair += shortfall
			} else {
				fair = half
			}
		}
		if fair > high {
			second, high, highWinner = high, fair, buyer
		} else if fair > second {
			second = fair
		}
	}
	if highWinner == auctioneer {
		if high-second*2 > second*2 {
			return high - second*2
		}
		return second * 2
	}
	return second * 2
}

// minimumFairBid is a stage-independent floor on the lot's worth.
func (g *Game) minimumFairBid(cash, auctioneer int) float64 {
	v := g.Tun.FairAuctionValue * float64(len(g.Accounts[auctioneer].Ship.Hold))
	return math.Min(float64(cash), v)
}

// RobotBid picks one bid for the player in the running auction, balancing
// the fair value of the lot against what the competition can pay. The result
// lies within the legal bid range.
func (g *Game) RobotBid(player int, v Version) int {
	if v == V4 {
		return g.robotBidV4(player)
	}
	return g.robotBidV5(player, v)
}

func (g *Game) robotBidV4(player int) int {
	bd := g.Accounts[player]
	set := g.goals.master
	stage := g.gameStage(V4)
	requesting := g.auctioneer()
	minBid := bd.Bid.BidAmount

	available := bd.Cash
	if bd.LoansTaken == MaxLoans {
		available -= 2 * MaxLoans
	} else {
		available -= bd.LoansTaken
	}
	if available < minBid {
		available = minBid
	}
	fair := g.fairBid(requesting, player, available, set, V4, stage)
	if fair < minBid {
		fair = minBid
	}
	maxOther := -1000
	for p := range g.Accounts {
		if p == player {
			continue
		}
		obd := g.Accounts[p]
		cash := obd.Cash - (1 + obd.LoansTaken)
		if obd.LoansTaken == 0 {
			cash += LoanAmount
		}
		if cash < 0 {
			cash = 0
		}
		if of := g.fairBid(requesting, p, cash, set, V4, stage); of > maxOther {
			maxOther = of
		}
	}
	split := 1
	if minBid > 0 {
		split = 2
	}
	bid := (fair + maxOther + split) / 2
	if bid < minBid {
		bid = minBid
	}
	if bid > available {
		bid = available
	}
	if bid < 0 {
		bid = 0
	}
	working := available + LoanAmount*(MaxLoans-bd.LoansTaken) +
		int(float64(len(bd.Ship.Hold))*g.Tun.UniformIslandGood)
	if working-bid < g.Tun.CapitalTarget && bid > minBid {
		bid -= (bid - minBid) / 2
	}
	if most := g.maxAuctionBid(player); bid > most {
		bid = most
	}
	return bid
}

func (g *Game) robotBidV5(player int, v Version) int {
	bd := g.Accounts[player]
	set := g.goals.master
	stage := g.gameStage(v)
	requesting := g.auctioneer()
	minBid := bd.Bid.BidAmount

	available := g.EstimateAvailableCash(player, true)
	if available < minBid {
		available = minBid
	}
	fair := int((1-stage)*g.minimumFairBid(available, requesting) +
		stage*float64(g.fairBid(requesting, player, available, set, v, stage)))
	maxOther := -1000
	for p := range g.Accounts {
		if p == player {
			continue
		}
		cash := g.EstimateAvailableCash(p, true)
		of := int((1-stage)*g.minimumFairBid(cash, requesting) +
			stage*float64(g.fairBid(requesting, p, cash, set, v, stage)))
		if of > maxOther {
			maxOther = of
		}
	}
	var preferred int
	switch {
	case fair < maxOther:
		// Bid up the price and lose a little, more willingly early on.
		preferred = fair
	case fair == maxOther:
		preferred = fair + 1
	default:
		preferred = maxOther + 1 + int(float64(fair-maxOther)*stage)
	}
	bid := preferred
	if bid > bd.Cash {
		bid = bd.Cash
	}
	if bid < minBid {
		bid = minBid
	}
	if shortfall := (available - bid) - g.Tun.CapitalTarget; shortfall < 0 && bid > minBid {
		half := bid - (bid-minBid)/2
		short := bid + shortfall
		if short < half {
			short = half
		}
		if short > minBid {
			bid = short
		}
	}
	if bid < 0 {
		bid = 0
	}
	if most := g.maxAuctionBid(player); bid > most {
		bid = most
	}
	return bid
}

// RobotLoanStake picks a stake for a loan funding contest: the face amount,
// raised a little when the player is flush.
func (g *Game) RobotLoanStake(player int) int {
	bd := g.Accounts[player]
	head := (bd.Cash - bd.Bid.LoanBid - 5) / 10
	if head < 0 {
		head = 0
	}
	stake := LoanAmount + int(math.Sqrt(float64(head)))
	if limit := 2 * LoanAmount; stake > limit {
		stake = limit
	}
	if stake > bd.Cash {
		stake = bd.Cash
	}
	if stake < LoanAmount {
		stake = LoanAmount
	}
	return stake
}
