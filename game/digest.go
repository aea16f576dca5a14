package game

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
)

// digest feeds 64-bit words into an fnv-1a stream.
type digest struct {
	h   hash.Hash64
	buf [8]byte
}

func newDigest() *digest { return &digest{h: fnv.New64a()} }

func (d *digest) add(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	d.h.Write(d.buf[:])
}

func (d *digest) addInt(v int) { d.add(uint64(int64(v))) }

func (d *digest) addBool(b bool) {
	if b {
		d.add(1)
	} else {
		d.add(0)
	}
}

// addRack hashes a goods multiset as per-color counts, making insertion
// order irrelevant.
func (d *digest) addRack(goods []Color) {
	var counts [NumColors]int
	for _, c := range goods {
		counts[c]++
	}
	for _, n := range counts {
		d.addInt(n)
	}
}

func (d *digest) addFlow(f CashFlow) {
	d.addInt(f.MachineIn)
	d.addInt(f.MachineOut)
	d.addInt(f.WarehouseIn)
	d.addInt(f.WarehouseOut)
	d.addInt(f.ShipIn)
	d.addInt(f.ShipOut)
	d.addInt(f.InterestIn)
	d.addInt(f.InterestOut)
	d.addInt(f.IslandOut)
	d.addInt(f.LoansMade)
	d.addInt(f.TotalLoaned)
}

func (d *digest) addBid(b bidFlags) {
	d.addBool(b.RequestingBid)
	d.addBool(b.CannotRebid)
	d.addBool(b.BidReceived)
	d.addBool(b.RequestingLoan)
	d.addBool(b.WillFundLoan)
	d.addBool(b.DeclinedFund)
	d.addBool(b.Funder)
	d.addInt(b.BidAmount)
	d.addInt(b.LoanBid)
}

// Digest hashes every rule-relevant field of the position. Two states with
// equal digests play identically; the round-trip tests and the journal rely
// on that.
func (g *Game) Digest() uint64 {
	d := newDigest()
	d.addInt(int(g.State))
	d.addInt(g.Turn)
	d.addInt(g.MoveNumber)
	d.addInt(g.Bank)
	for _, n := range g.Supply {
		d.addInt(n)
	}
	for _, n := range g.MachineSupply {
		d.addInt(n)
	}
	d.addInt(g.WarehouseSupply)
	d.addInt(g.LoanDeck)

	d.addBool(g.SecondAction)
	d.addBool(g.HasProduced)
	d.addBool(g.RepricedFactory)
	d.addBool(g.RepricedWarehouse)
	d.addBool(g.BoughtMachine)
	d.addBool(g.BoughtWarehouse)
	d.addBool(g.BoughtDockGoods)
	d.addBool(g.ProducedLuxury)
	d.addBool(g.MustPayLoan)
	d.addInt(g.ProducedCount)
	d.addInt(g.BoughtGoodsCount)
	d.addInt(g.PlayerSource)
	d.addInt(g.LoadedShipFrom)
	d.addInt(g.LoadedWarehouseFrom)
	d.addInt(g.MovedToSeaFrom)

	d.addBool(g.luxuryActive)
	d.addInt(int(g.luxuryColor))
	d.addInt(int(g.luxuryRack))
	d.addInt(int(g.pendingDone))
	d.addInt(g.pendingFrom)

	d.addInt(g.Sales)
	d.addInt(g.ShipLoads)
	d.addInt(g.LastSaleMove)
	d.addInt(g.Resigned)
	d.addInt(g.goals.masterIndex())

	d.addInt(len(g.loanStack))
	for _, f := range g.loanStack {
		d.addInt(int(f.state))
		d.addInt(f.slot)
		for _, s := range f.bids {
			d.addBid(s.bid)
			d.addBool(s.declinedLoan)
			d.addBool(s.tookLoan)
		}
	}
	d.addInt(len(g.auctionStash))
	for _, s := range g.auctionStash {
		d.addBid(s.bid)
		d.addBool(s.declinedLoan)
		d.addBool(s.tookLoan)
	}

	for _, a := range g.Accounts {
		d.addInt(a.Cash)
		d.addInt(a.Warehouses)
		d.addInt(len(a.Machines))
		var machines, produced [NumTradeColors]int
		for _, m := range a.Machines {
			machines[m.Color]++
			if m.Produced {
				produced[m.Color]++
			}
		}
		for c := 0; c < NumTradeColors; c++ {
			d.addInt(machines[c])
			d.addInt(produced[c])
		}
		for _, tier := range a.FactoryGoods {
			d.addRack(tier)
		}
		for _, tier := range a.DockGoods {
			d.addRack(tier)
		}
		d.addInt(int(a.Ship.Place))
		d.addInt(a.Ship.Dock)
		d.addRack(a.Ship.Hold)
		d.addRack(a.Island)
		for _, l := range a.Loans {
			d.addInt(l.Amount)
			d.addInt(l.Funder)
			d.addBool(l.UnpaidInterest)
			d.addBool(l.Pending)
		}
		d.addInt(a.LoansTaken)
		d.addBid(a.Bid)
		d.addBool(a.DeclinedLoan)
		d.addBool(a.TookLoan)
		d.addInt(a.PassCount)
		d.addInt(a.VirtualCash)
		d.addInt(a.ShipCost)
		d.addInt(a.ShipChanged)
		d.addFlow(a.Flow)
	}
	return d.h.Sum64()
}
