package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Every cash-flow counter feeds valuation, so positions differing only in a
// counter must digest differently.
func TestDigestCoversCashFlow(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 71)
	base := g.Digest()

	cases := []struct {
		name string
		mut  func(*CashFlow)
	}{
		{"machine in", func(f *CashFlow) { f.MachineIn += 6 }},
		{"machine out", func(f *CashFlow) { f.MachineOut += 6 }},
		{"warehouse in", func(f *CashFlow) { f.WarehouseIn += 4 }},
		{"warehouse out", func(f *CashFlow) { f.WarehouseOut += 4 }},
		{"ship in", func(f *CashFlow) { f.ShipIn += 3 }},
		{"ship out", func(f *CashFlow) { f.ShipOut += 3 }},
		{"interest in", func(f *CashFlow) { f.InterestIn += LoanInterest }},
		{"interest out", func(f *CashFlow) { f.InterestOut += LoanInterest }},
		{"island out", func(f *CashFlow) { f.IslandOut += 5 }},
		{"loans made", func(f *CashFlow) { f.LoansMade++ }},
		{"total loaned", func(f *CashFlow) { f.TotalLoaned += LoanAmount }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := g.Copy()
			tc.mut(&c.Accounts[1].Flow)
			require.NotEqual(t, base, c.Digest(), "counter must reach the digest")
		})
	}
}

func TestDigestOrderIndependentRacks(t *testing.T) {
	g := newTestGame(t, 3, FirstShipment, 72)
	c := g.Copy()
	g.Accounts[0].Island = []Color{Black, White, Black}
	c.Accounts[0].Island = []Color{White, Black, Black}
	require.Equal(t, g.Digest(), c.Digest(),
		"a rack is a multiset, not a sequence")
}
