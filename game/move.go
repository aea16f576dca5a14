package game

import "fmt"

// Rack names a slot category on the board or a player mat.
type Rack int

const (
	SupplyRack          Rack = iota // shared container pools, Index = Color
	MachineSupplyRack               // shared machine pools, Index = Color
	WarehouseSupplyRack             // shared warehouse pool
	LoanDeckRack                    // shared loan cards
	MachineRack                     // player machine slots, Index = slot
	WarehouseRack                   // player warehouse slots, Index = slot
	FactoryRack                     // player factory storage, Index = price tier
	DockRack                        // player warehouse storage, Index = price tier
	ShipRack                        // player ship hold
	SeaRack                         // open sea
	AuctionRack                     // the auction block
	IslandRack                      // player island holdings
	LoanRack                        // player loan slots, Index = slot
)

func (r Rack) String() string {
	switch r {
	case SupplyRack:
		return "supply"
	case MachineSupplyRack:
		return "machine-supply"
	case WarehouseSupplyRack:
		return "warehouse-supply"
	case LoanDeckRack:
		return "loan-deck"
	case MachineRack:
		return "machines"
	case WarehouseRack:
		return "warehouses"
	case FactoryRack:
		return "factory"
	case DockRack:
		return "dock"
	case ShipRack:
		return "ship"
	case SeaRack:
		return "sea"
	case AuctionRack:
		return "auction-block"
	case IslandRack:
		return "island"
	case LoanRack:
		return "loans"
	}
	return "unknown"
}

// Cell addresses one slot: a rack, its owning player (NoPlayer for shared
// racks) and a rack-specific index.
type Cell struct {
	Rack  Rack
	Owner int
	Index int
}

func (c Cell) String() string {
	if c.Owner == NoPlayer {
		return fmt.Sprintf("%v[%d]", c.Rack, c.Index)
	}
	return fmt.Sprintf("p%d.%v[%d]", c.Owner, c.Rack, c.Index)
}

// MoveKind tags a Move.
type MoveKind int

const (
	MoveTransfer MoveKind = iota
	MovePass
	MoveBid
	MoveAccept      // auctioneer accepts a bidder's offer
	MoveBuy         // auctioneer buys the lot for the high bid
	MoveFund        // offer to fund a loan
	MoveDecline     // decline to fund a loan
	MoveAcceptLoan  // borrower accepts a funder (or the bank)
	MoveDeclineLoan // borrower withdraws the loan request
	MoveDone
)

// DoneCode classifies the action sequence a Done move finalizes. The ship
// codes carry the player column the ship left or loaded from, which feeds the
// once-per-turn repeat guards.
type DoneCode int

const (
	DoneNothing DoneCode = iota
	DoneStartAuction
	DoneProduce
	DoneLoadWarehouse
	DoneFinishAuction
	DoneProduceLuxury
	DoneReprice
	DoneMoveShip // + FromPlayer
	DoneLoadShip // + FromPlayer
)

func (d DoneCode) String() string {
	switch d {
	case DoneNothing:
		return "nothing"
	case DoneStartAuction:
		return "start-auction"
	case DoneProduce:
		return "produce"
	case DoneLoadWarehouse:
		return "load-warehouse"
	case DoneFinishAuction:
		return "finish-auction"
	case DoneProduceLuxury:
		return "produce-luxury"
	case DoneReprice:
		return "reprice"
	case DoneMoveShip:
		return "move-ship"
	case DoneLoadShip:
		return "load-ship"
	}
	return "unknown"
}

// Move is one atomic player action. Transfers move a single token between
// cells; the other kinds drive auctions, loans and turn finalization. After
// execution a move carries the undo capsule that Unexecute consumes.
type Move struct {
	Kind   MoveKind
	Player int

	// Transfer fields.
	From, To Cell
	Color    Color

	// Bid amount for MoveBid; accepted bidder/funder for MoveAccept and
	// MoveAcceptLoan (Bank means the bank funds the loan).
	Amount int
	Target int

	undo *capsule
}

func TransferMove(player int, from, to Cell, c Color) *Move {
	return &Move{Kind: MoveTransfer, Player: player, From: from, To: to, Color: c}
}

func PassMove(player int) *Move { return &Move{Kind: MovePass, Player: player} }

func BidMove(player, amount int) *Move {
	return &Move{Kind: MoveBid, Player: player, Amount: amount}
}

func DoneMove(player int) *Move { return &Move{Kind: MoveDone, Player: player} }

func (m *Move) String() string {
	switch m.Kind {
	case MoveTransfer:
		return fmt.Sprintf("p%d: %v %v -> %v", m.Player, m.Color, m.From, m.To)
	case MovePass:
		return fmt.Sprintf("p%d: pass", m.Player)
	case MoveBid:
		return fmt.Sprintf("p%d: bid %d", m.Player, m.Amount)
	case MoveAccept:
		return fmt.Sprintf("p%d: accept bid from p%d", m.Player, m.Target)
	case MoveBuy:
		return fmt.Sprintf("p%d: buy own lot", m.Player)
	case MoveFund:
		return fmt.Sprintf("p%d: fund loan", m.Player)
	case MoveDecline:
		return fmt.Sprintf("p%d: decline to fund", m.Player)
	case MoveAcceptLoan:
		if m.Target == Bank {
			return fmt.Sprintf("p%d: take bank loan", m.Player)
		}
		return fmt.Sprintf("p%d: take loan from p%d", m.Player, m.Target)
	case MoveDeclineLoan:
		return fmt.Sprintf("p%d: withdraw loan request", m.Player)
	case MoveDone:
		return fmt.Sprintf("p%d: done", m.Player)
	}
	return "unknown move"
}
