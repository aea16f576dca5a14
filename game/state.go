package game

import (
	"fmt"
	"math/rand"
)

// BoardState enumerates the phases of play. All state-dependent behavior is
// switch dispatch on this enum; there is no per-state type.
type BoardState int

const (
	Puzzle BoardState = iota // setup/edit, before the game proper
	Play1                    // first free action of the turn
	Play2                    // second free action
	Confirm
	ConfirmAuction
	LoadFactoryGoods   // producing more goods this action
	LoadWarehouseGoods // buying more factory goods this action
	LoadShip1          // docked, must load at least one good
	LoadShip           // docked, may stop loading
	LoadLuxury         // placing the gold received in a luxury trade
	TradeContainer     // returning the second good of a luxury trade
	RepriceFactory
	RepriceWarehouse
	Auction
	Rebid
	AcceptBid
	FundLoan
	Financeer // sub-auction among competing loan funders
	AcceptLoan
	TakeLoan // forced borrowing to cover interest
	Gameover
)

var boardStateNames = map[BoardState]string{
	Puzzle:             "puzzle",
	Play1:              "play1",
	Play2:              "play2",
	Confirm:            "confirm",
	ConfirmAuction:     "confirm-auction",
	LoadFactoryGoods:   "load-factory-goods",
	LoadWarehouseGoods: "load-warehouse-goods",
	LoadShip1:          "load-ship-first",
	LoadShip:           "load-ship",
	LoadLuxury:         "load-luxury",
	TradeContainer:     "trade-container",
	RepriceFactory:     "reprice-factory",
	RepriceWarehouse:   "reprice-warehouse",
	Auction:            "auction",
	Rebid:              "rebid",
	AcceptBid:          "accept-bid",
	FundLoan:           "fund-loan",
	Financeer:          "financeer",
	AcceptLoan:         "accept-loan",
	TakeLoan:           "take-loan",
	Gameover:           "gameover",
}

func (s BoardState) String() string {
	if n, ok := boardStateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state-%d", int(s))
}

// Game is the complete mutable state of one game instance or search clone.
// The executor and generator are its only writers; valuation is read-only.
type Game struct {
	Config GameConfig
	Tun    Tuning

	State      BoardState
	Turn       int
	MoveNumber int

	Bank            int
	Supply          [NumColors]int
	MachineSupply   [NumTradeColors]int
	WarehouseSupply int
	LoanDeck        int

	Accounts []*Account

	// Turn-scoped bookkeeping for the acting player.
	SecondAction        bool
	HasProduced         bool // production fee paid this turn
	RepricedFactory     bool
	RepricedWarehouse   bool
	BoughtMachine       bool
	BoughtWarehouse     bool
	BoughtDockGoods     bool
	ProducedLuxury      bool
	MustPayLoan         bool
	ProducedCount       int
	BoughtGoodsCount    int
	PlayerSource        int // locked seller for a factory-goods purchase episode
	LoadedShipFrom      int
	LoadedWarehouseFrom int
	MovedToSeaFrom      int

	// Luxury trade in progress.
	luxuryActive bool
	luxuryColor  Color
	luxuryRack   Rack

	// Classification of the current action episode for the next Done.
	pendingDone DoneCode
	pendingFrom int // player column for the ship done codes

	Sales        int
	ShipLoads    int
	LastSaleMove int

	// Interrupted contexts to resume after a loan interlude, innermost last.
	// A loan can be raised mid-auction to fund a bid, so this is a stack.
	loanStack []loanFrame

	// Bid flags as they stood before the running auction started.
	auctionStash []savedBid

	goals    *goalData
	Resigned int

	// Capsule being recorded by the executing move, nil outside Execute.
	rec *capsule
}

// NewGame deals a deterministic starting position from the config's seed.
func NewGame(cfg GameConfig) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		Config:              cfg,
		Tun:                 DefaultTuning(),
		State:               Puzzle,
		Bank:                startingBank,
		PlayerSource:        NoPlayer,
		LoadedShipFrom:      NoPlayer,
		LoadedWarehouseFrom: NoPlayer,
		MovedToSeaFrom:      NoPlayer,
		LastSaleMove:        0,
		Resigned:            NoPlayer,
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	supply := containerSupply[cfg.Players]
	for c := Color(0); c < NumTradeColors; c++ {
		g.Supply[c] = supply
	}
	if cfg.Variant == SecondShipment {
		g.Supply[Gold] = 2 * cfg.Players
	}
	for c := range g.MachineSupply {
		g.MachineSupply[c] = cfg.Players
	}
	g.WarehouseSupply = cfg.Players * MaxWarehouses
	g.LoanDeck = cfg.Players * MaxLoans

	// Machine colors are dealt from a shuffled run of the ordinary colors.
	machineColors := make([]Color, NumTradeColors)
	for i := range machineColors {
		machineColors[i] = Color(i)
	}
	rng.Shuffle(len(machineColors), func(i, j int) {
		machineColors[i], machineColors[j] = machineColors[j], machineColors[i]
	})

	g.Accounts = make([]*Account, cfg.Players)
	for i := range g.Accounts {
		a := newAccount()
		g.Accounts[i] = a
		g.Bank -= StartingCash
		a.Cash = StartingCash

		color := machineColors[i%NumTradeColors]
		g.MachineSupply[color]--
		a.Machines = append(a.Machines, Machine{Color: color})

		g.WarehouseSupply--
		a.Warehouses = 1

		// One starting good of the machine's color, priced at the second tier.
		g.Supply[color]--
		a.FactoryGoods[1] = append(a.FactoryGoods[1], color)
	}

	g.goals = newGoalData(cfg.Players, rng)
	g.State = Play1
	return g, nil
}

const startingBank = 500

// Copy deep-copies the game for search. The copy shares nothing mutable with
// the original.
func (g *Game) Copy() *Game {
	c := *g
	c.Accounts = make([]*Account, len(g.Accounts))
	for i, a := range g.Accounts {
		c.Accounts[i] = &Account{}
		c.Accounts[i].copyFrom(a)
	}
	c.loanStack = make([]loanFrame, len(g.loanStack))
	for i := range g.loanStack {
		c.loanStack[i] = g.loanStack[i].clone()
	}
	c.auctionStash = append([]savedBid(nil), g.auctionStash...)
	c.goals = g.goals.copy()
	c.rec = nil
	return &c
}

// Player returns the acting player index.
func (g *Game) Player() int { return g.Turn }

// BoardPhase returns the current state.
func (g *Game) BoardPhase() BoardState { return g.State }

// IsTerminal reports whether the game has ended.
func (g *Game) IsTerminal() bool { return g.State == Gameover }

// secondShipment reports whether the expansion rules are in force.
func (g *Game) secondShipment() bool { return g.Config.Variant == SecondShipment }

// nextIndex is the player after p in seating order.
func (g *Game) nextIndex(p int) int { return (p + 1) % g.Config.Players }

// prevIndex is the player before p in seating order.
func (g *Game) prevIndex(p int) int {
	return (p + g.Config.Players - 1) % g.Config.Players
}

// nextWhere scans the seating order after from for a player satisfying ok,
// or NoPlayer after a full lap.
func (g *Game) nextWhere(from int, ok func(int) bool) int {
	for p := g.nextIndex(from); p != from; p = g.nextIndex(p) {
		if ok(p) {
			return p
		}
	}
	return NoPlayer
}

// endTurn closes out the acting player's whole turn: idle-asset penalties,
// flag resets and the hand-off to the next player.
func (g *Game) endTurn() {
	bd := g.Accounts[g.Turn]
	g.MoveNumber++

	// Valuation-only penalties for assets bought but left unused.
	if g.BoughtMachine && !g.HasProduced {
		bd.VirtualCash += int(100 * g.Tun.BlankMachinePenalty)
	}
	if g.BoughtWarehouse && !g.BoughtDockGoods {
		bd.VirtualCash += int(100 * g.Tun.BlankWarehousePenalty)
	}
	if g.ProducedCount > 0 && g.ProducedCount != bd.ActiveMachines() {
		diff := g.ProducedCount - bd.ActiveMachines()
		if diff < 0 {
			diff = -diff
		}
		bd.VirtualCash += diff * int(100*g.Tun.UnderProductionPenalty)
	}
	if g.BoughtGoodsCount > 0 && g.BoughtGoodsCount != bd.Warehouses {
		diff := g.BoughtGoodsCount - bd.Warehouses
		if diff < 0 {
			diff = -diff
		}
		bd.VirtualCash += diff * int(100*g.Tun.UnderPurchasePenalty)
	}

	bd.clearProduced()
	bd.TookLoan = false
	bd.DeclinedLoan = false

	g.Turn = g.nextIndex(g.Turn)
	g.SecondAction = false
	g.HasProduced = false
	g.RepricedFactory = false
	g.RepricedWarehouse = false
	g.BoughtMachine = false
	g.BoughtWarehouse = false
	g.BoughtDockGoods = false
	g.ProducedLuxury = false
	g.MustPayLoan = false
	g.ProducedCount = 0
	g.BoughtGoodsCount = 0
	g.PlayerSource = NoPlayer
	g.LoadedShipFrom = NoPlayer
	g.LoadedWarehouseFrom = NoPlayer
	g.MovedToSeaFrom = NoPlayer
	g.luxuryActive = false
	g.State = Play1
}

// finishAction is called when one of the two free actions completes. After
// the second, the turn passes and the incoming player is billed interest.
func (g *Game) finishAction() {
	if g.SecondAction {
		g.endTurn()
		if g.gameOverNow() {
			g.setGameOver()
			return
		}
		g.collectInterest()
		return
	}
	g.SecondAction = true
	g.PlayerSource = NoPlayer
	g.State = Play2
}

// loanFrame remembers the context interrupted by a loan request so it can be
// resumed when the loan resolves.
type loanFrame struct {
	state BoardState
	slot  int
	bids  []savedBid
}

type savedBid struct {
	bid          bidFlags
	declinedLoan bool
	tookLoan     bool
}

func (f loanFrame) clone() loanFrame {
	f.bids = append([]savedBid(nil), f.bids...)
	return f
}

// collectInterest charges the incoming player's loan interest. A player who
// cannot cover it and could still borrow is forced into a loan first.
func (g *Game) collectInterest() {
	g.clearBidFlags()
	if !g.payInterest(g.Turn, false) {
		g.State = TakeLoan
		g.MustPayLoan = true
		return
	}
	g.MustPayLoan = false
}

// payInterest pays one interest per outstanding loan to its funder. With
// overdraft false it refuses (returns false) when the player cannot cover the
// bill and a forced loan is still possible; otherwise unpaid interest accrues
// onto principal.
func (g *Game) payInterest(player int, overdraft bool) bool {
	bd := g.Accounts[player]
	if !overdraft && bd.Cash < LoanInterest*bd.LoansTaken &&
		bd.LoansTaken < MaxLoans && g.LoanDeck > 0 {
		return false
	}
	for i := range bd.Loans {
		loan := &bd.Loans[i]
		if !loan.Active() {
			continue
		}
		if bd.Cash >= LoanInterest || overdraft {
			bd.Flow.InterestOut += LoanInterest
			if loan.Funder == Bank {
				g.transferToBank(LoanInterest, player, overdraft)
			} else {
				g.Accounts[loan.Funder].Flow.InterestIn += LoanInterest
				g.transfer(LoanInterest, player, loan.Funder, overdraft)
			}
			loan.UnpaidInterest = false
		} else {
			loan.Amount += LoanInterest
			if loan.Funder != Bank {
				g.Accounts[loan.Funder].Flow.InterestIn += LoanInterest
			}
			loan.UnpaidInterest = true
		}
	}
	return true
}

func (g *Game) clearBidFlags() {
	for _, a := range g.Accounts {
		a.Bid = bidFlags{}
		a.DeclinedLoan = false
		a.TookLoan = false
	}
}

// stashBids snapshots every player's bid and loan-round flags before a loan
// or auction interlude rewrites them.
func (g *Game) stashBids() []savedBid {
	saved := make([]savedBid, len(g.Accounts))
	for i, a := range g.Accounts {
		saved[i] = savedBid{bid: a.Bid, declinedLoan: a.DeclinedLoan, tookLoan: a.TookLoan}
	}
	return saved
}

func (g *Game) restoreBids(saved []savedBid) {
	for i, a := range g.Accounts {
		a.Bid = saved[i].bid
		a.DeclinedLoan = saved[i].declinedLoan
		a.TookLoan = saved[i].tookLoan
	}
}

// gameOverNow checks the two endgame triggers: a full round without any
// goods purchase, or two or more exhausted supply pools.
func (g *Game) gameOverNow() bool {
	if g.Resigned != NoPlayer {
		return true
	}
	if g.MoveNumber-g.LastSaleMove > g.Config.Players {
		return true
	}
	empty := 0
	for c := Color(0); c < NumTradeColors; c++ {
		if g.Supply[c] == 0 {
			empty++
		}
	}
	return empty >= 2
}

func (g *Game) setGameOver() {
	g.State = Gameover
}

// Score is the final score for a player: cash plus island value plus the
// endgame value of stranded goods, minus outstanding debt, plus money lent
// out.
func (g *Game) Score(player int) int {
	bd := g.Accounts[player]
	score := bd.Cash
	score += islandValue(g.goals.card(g.goals.master, player), bd.Island, g.secondShipment())
	score += ShipGoodValue * len(bd.Ship.Hold)
	score += WarehouseGoodValue * bd.DockStored()
	score -= bd.TotalLoanAmount()
	score += bd.Flow.TotalLoaned
	return score
}

// Winner returns the winning player, or NoPlayer before the game ends.
// A resigned player cannot win. Ties go to the earlier seat, matching the
// play order of the final round.
func (g *Game) Winner() int {
	if g.State != Gameover {
		return NoPlayer
	}
	best, bestScore := NoPlayer, 0
	for i := range g.Accounts {
		if i == g.Resigned {
			continue
		}
		s := g.Score(i)
		if best == NoPlayer || s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// Resign ends the game immediately with the player forfeiting.
func (g *Game) Resign(player int) {
	g.Resigned = player
	g.setGameOver()
}

// transfer moves cash between players. Negative balances are a ledger bug
// unless the game is replaying with overdraft enabled.
func (g *Game) transfer(amount, from, to int, overdraft bool) {
	src, dst := g.Accounts[from], g.Accounts[to]
	if !overdraft && !g.Config.AllowOverdraft && src.Cash < amount {
		panic(fmt.Sprintf("p%d cannot pay %d with cash %d", from, amount, src.Cash))
	}
	src.Cash -= amount
	dst.Cash += amount
}

func (g *Game) transferToBank(amount, from int, overdraft bool) {
	src := g.Accounts[from]
	if !overdraft && !g.Config.AllowOverdraft && src.Cash < amount {
		panic(fmt.Sprintf("p%d cannot pay %d to the bank with cash %d", from, amount, src.Cash))
	}
	src.Cash -= amount
	g.Bank += amount
}

func (g *Game) transferFromBank(amount, to int) {
	g.Accounts[to].Cash += amount
	g.Bank -= amount
}

// CashInPlay sums every balance including the bank; constant across all
// transfers by construction.
func (g *Game) CashInPlay() int {
	total := g.Bank
	for _, a := range g.Accounts {
		total += a.Cash
	}
	return total
}

// auctioneer returns the player whose ship is on the block (or whose loan is
// being auctioned), or NoPlayer.
func (g *Game) auctioneer() int {
	for i, a := range g.Accounts {
		if a.Bid.RequestingBid {
			return i
		}
	}
	return NoPlayer
}

func (g *Game) loanRequester() int {
	for i, a := range g.Accounts {
		if a.Bid.RequestingLoan {
			return i
		}
	}
	return NoPlayer
}

// highBid is only meaningful once every eligible bidder has bid.
func (g *Game) highBid() int {
	high := -1
	for _, a := range g.Accounts {
		if !a.Bid.RequestingBid && a.Bid.BidAmount > high {
			high = a.Bid.BidAmount
		}
	}
	return high
}

func (g *Game) selectFunder(player int) {
	for i, a := range g.Accounts {
		a.Bid.Funder = i == player
	}
}

func (g *Game) selectedFunder() int {
	for i, a := range g.Accounts {
		if a.Bid.Funder {
			return i
		}
	}
	return NoPlayer
}
