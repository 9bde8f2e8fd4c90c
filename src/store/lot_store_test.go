// backend/src/store/lot_store_test.go
package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradeledger/backend/src/models"
)

func TestLotInsertFromBuyFreezesTradeValues(t *testing.T) {
	db := openTestDB(t)
	trades := NewTradeStore()
	lots := NewLotStore()

	buy := testTrade("alice", "2330", "2024-01-01", models.SideBuy, 500, 1000)
	buy.Fee = 20
	require.NoError(t, trades.Insert(db, buy))

	lot, err := lots.InsertFromBuy(db, buy)
	require.NoError(t, err)

	assert.Positive(t, lot.ID)
	assert.Equal(t, buy.ID, lot.TradeID)
	assert.Equal(t, 1000.0, lot.OriginalQty)
	assert.Equal(t, 1000.0, lot.RemainingQty)
	assert.Equal(t, 500.0, lot.Price)
	assert.Equal(t, 20.0, lot.Fee)
	assert.Equal(t, "2024-01-01", lot.TradeDate)
}

func TestLotConsume(t *testing.T) {
	db := openTestDB(t)
	trades := NewTradeStore()
	lots := NewLotStore()
	p := models.Partition{User: "alice", Symbol: "2330", AssetType: models.AssetTwStock}

	buy := testTrade("alice", "2330", "2024-01-01", models.SideBuy, 500, 1000)
	require.NoError(t, trades.Insert(db, buy))
	lot, err := lots.InsertFromBuy(db, buy)
	require.NoError(t, err)

	require.NoError(t, lots.Consume(db, lot.ID, 400))

	open, err := lots.OpenLots(db, p)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, 600.0, open[0].RemainingQty)
	assert.Equal(t, 1000.0, open[0].OriginalQty)

	// Fully consumed lots drop out of the FIFO queue
	require.NoError(t, lots.Consume(db, lot.ID, 600))
	open, err = lots.OpenLots(db, p)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestLotConsumeInvariantViolation(t *testing.T) {
	db := openTestDB(t)
	trades := NewTradeStore()
	lots := NewLotStore()

	buy := testTrade("alice", "2330", "2024-01-01", models.SideBuy, 500, 100)
	require.NoError(t, trades.Insert(db, buy))
	lot, err := lots.InsertFromBuy(db, buy)
	require.NoError(t, err)

	err = lots.Consume(db, lot.ID, 101)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	// The failed consume must not have mutated the lot
	open, err := lots.OpenLots(db, models.Partition{User: "alice", Symbol: "2330", AssetType: models.AssetTwStock})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, 100.0, open[0].RemainingQty)
}

func TestLotConsumeNotFound(t *testing.T) {
	db := openTestDB(t)
	lots := NewLotStore()

	err := lots.Consume(db, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenLotsFIFOOrder(t *testing.T) {
	db := openTestDB(t)
	trades := NewTradeStore()
	lots := NewLotStore()
	p := models.Partition{User: "alice", Symbol: "2330", AssetType: models.AssetTwStock}

	// Insert the newer buy first; the queue must still lead with the
	// older trade date.
	newer := testTrade("alice", "2330", "2024-02-01", models.SideBuy, 520, 100)
	require.NoError(t, trades.Insert(db, newer))
	_, err := lots.InsertFromBuy(db, newer)
	require.NoError(t, err)

	older := testTrade("alice", "2330", "2024-01-01", models.SideBuy, 500, 100)
	require.NoError(t, trades.Insert(db, older))
	_, err = lots.InsertFromBuy(db, older)
	require.NoError(t, err)

	open, err := lots.OpenLots(db, p)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "2024-01-01", open[0].TradeDate)
	assert.Equal(t, "2024-02-01", open[1].TradeDate)
}

func TestCountOpenPositions(t *testing.T) {
	db := openTestDB(t)
	trades := NewTradeStore()
	lots := NewLotStore()

	for _, symbol := range []string{"2330", "0050"} {
		buy := testTrade("alice", symbol, "2024-01-01", models.SideBuy, 100, 10)
		require.NoError(t, trades.Insert(db, buy))
		_, err := lots.InsertFromBuy(db, buy)
		require.NoError(t, err)
	}

	count, err := lots.CountOpenPositions(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = lots.CountOpenPositions(db, "bob")
	require.NoError(t, err)
	assert.Zero(t, count)
}
