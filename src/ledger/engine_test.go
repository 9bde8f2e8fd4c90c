// backend/src/ledger/engine_test.go
package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradeledger/backend/src/models"
)

const tolerance = 1e-6

func TestMatchSellSingleLot(t *testing.T) {
	f := newFixture(t)

	buy := f.insertTrade(t, "2024-01-01", models.SideBuy, 100, 10, 10, 0)
	require.NoError(t, f.engine.MatchBuy(f.db, buy))

	sell := f.insertTrade(t, "2024-02-01", models.SideSell, 115, 10, 5, 5)
	records, unmatched, err := f.engine.MatchSell(f.db, sell)
	require.NoError(t, err)
	assert.Zero(t, unmatched)
	require.Len(t, records, 1)

	r := records[0]
	// (115 - 100) x 10 - 10 - 5 - 5 = 130
	assert.InDelta(t, 130.0, r.RealizedPnl, tolerance)
	assert.Equal(t, 10.0, r.MatchedQty)
	assert.Equal(t, buy.ID, r.BuyTradeID)
	assert.Equal(t, sell.ID, r.SellTradeID)
	assert.Equal(t, "2024-01-01", r.BuyDate)
	assert.Equal(t, "2024-02-01", r.SellDate)
	assert.Positive(t, r.ID)

	// The lot is fully consumed
	lots, err := f.lots.OpenLots(f.db, f.partition())
	require.NoError(t, err)
	assert.Empty(t, lots)
}

func TestMatchSellFIFOAcrossLots(t *testing.T) {
	f := newFixture(t)

	older := f.insertTrade(t, "2024-01-01", models.SideBuy, 100, 10, 0, 0)
	newer := f.insertTrade(t, "2024-01-15", models.SideBuy, 110, 10, 0, 0)
	require.NoError(t, f.engine.MatchBuy(f.db, older))
	require.NoError(t, f.engine.MatchBuy(f.db, newer))

	sell := f.insertTrade(t, "2024-02-01", models.SideSell, 120, 15, 0, 0)
	records, unmatched, err := f.engine.MatchSell(f.db, sell)
	require.NoError(t, err)
	assert.Zero(t, unmatched)
	require.Len(t, records, 2)

	// Oldest lot exhausted first, then the newer one partially
	assert.Equal(t, older.ID, records[0].BuyTradeID)
	assert.Equal(t, 10.0, records[0].MatchedQty)
	assert.InDelta(t, 200.0, records[0].RealizedPnl, tolerance) // (120-100) x 10

	assert.Equal(t, newer.ID, records[1].BuyTradeID)
	assert.Equal(t, 5.0, records[1].MatchedQty)
	assert.InDelta(t, 50.0, records[1].RealizedPnl, tolerance) // (120-110) x 5

	lots, err := f.lots.OpenLots(f.db, f.partition())
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, newer.ID, lots[0].TradeID)
	assert.Equal(t, 5.0, lots[0].RemainingQty)
}

func TestMatchSellOversell(t *testing.T) {
	f := newFixture(t)

	buy := f.insertTrade(t, "2024-01-01", models.SideBuy, 100, 5, 0, 0)
	require.NoError(t, f.engine.MatchBuy(f.db, buy))

	sell := f.insertTrade(t, "2024-02-01", models.SideSell, 120, 10, 8, 0)
	records, unmatched, err := f.engine.MatchSell(f.db, sell)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Only the covered 5 units match; the remainder is reported, not an error
	assert.Equal(t, 5.0, records[0].MatchedQty)
	assert.Equal(t, 5.0, unmatched)

	// Sell-side costs are prorated by matched/sell quantity, so the
	// unmatched half of the fee is never charged against realized P&L.
	assert.InDelta(t, 4.0, records[0].SellFee, tolerance)
	assert.InDelta(t, 96.0, records[0].RealizedPnl, tolerance) // (120-100) x 5 - 4
}

func TestMatchSellWithNoLots(t *testing.T) {
	f := newFixture(t)

	sell := f.insertTrade(t, "2024-02-01", models.SideSell, 120, 10, 0, 0)
	records, unmatched, err := f.engine.MatchSell(f.db, sell)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 10.0, unmatched)
}

func TestMatchSellFeeProration(t *testing.T) {
	f := newFixture(t)

	// Buy fee 30 over 30 units; two sells consume 10 and 20 units, so the
	// prorated buy-fee shares must sum back to 30 exactly.
	buy := f.insertTrade(t, "2024-01-01", models.SideBuy, 100, 30, 30, 0)
	require.NoError(t, f.engine.MatchBuy(f.db, buy))

	sellA := f.insertTrade(t, "2024-02-01", models.SideSell, 110, 10, 6, 3)
	recsA, _, err := f.engine.MatchSell(f.db, sellA)
	require.NoError(t, err)
	require.Len(t, recsA, 1)
	assert.InDelta(t, 10.0, recsA[0].BuyFee, tolerance) // 30 x 10/30

	sellB := f.insertTrade(t, "2024-03-01", models.SideSell, 110, 20, 6, 3)
	recsB, _, err := f.engine.MatchSell(f.db, sellB)
	require.NoError(t, err)
	require.Len(t, recsB, 1)
	assert.InDelta(t, 20.0, recsB[0].BuyFee, tolerance) // 30 x 20/30

	assert.InDelta(t, 30.0, recsA[0].BuyFee+recsB[0].BuyFee, tolerance)

	// Fully matched sells carry their full fee and tax
	assert.InDelta(t, 6.0, recsA[0].SellFee, tolerance)
	assert.InDelta(t, 3.0, recsA[0].SellTax, tolerance)
}

func TestMatchSellQuantityConservation(t *testing.T) {
	f := newFixture(t)

	for _, qty := range []float64{7, 11, 13} {
		buy := f.insertTrade(t, "2024-01-01", models.SideBuy, 100, qty, 0, 0)
		require.NoError(t, f.engine.MatchBuy(f.db, buy))
	}

	sell := f.insertTrade(t, "2024-02-01", models.SideSell, 105, 20, 0, 0)
	records, unmatched, err := f.engine.MatchSell(f.db, sell)
	require.NoError(t, err)

	var matched float64
	for _, r := range records {
		matched += r.MatchedQty
	}
	assert.InDelta(t, sell.Quantity, matched+unmatched, tolerance)

	// Remaining lot quantity dropped by exactly the matched amount
	lots, err := f.lots.OpenLots(f.db, f.partition())
	require.NoError(t, err)
	var remaining float64
	for _, l := range lots {
		remaining += l.RemainingQty
	}
	assert.InDelta(t, 31.0-matched, remaining, tolerance)
}

func TestMatchRejectsWrongSide(t *testing.T) {
	f := newFixture(t)

	buy := f.insertTrade(t, "2024-01-01", models.SideBuy, 100, 10, 0, 0)
	sell := f.insertTrade(t, "2024-02-01", models.SideSell, 110, 10, 0, 0)

	assert.Error(t, f.engine.MatchBuy(f.db, sell))
	_, _, err := f.engine.MatchSell(f.db, buy)
	assert.Error(t, err)
}
