// backend/src/store/broker_store_test.go
package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradeledger/backend/src/models"
)

func TestBrokerSeedAndGet(t *testing.T) {
	db := openTestDB(t)
	s := NewBrokerStore()
	require.NoError(t, s.Seed(db))

	broker, err := s.GetByID(db, "yuanta")
	require.NoError(t, err)
	assert.Equal(t, 0.6, broker.TwStockDiscount)
	assert.Equal(t, 20.0, broker.TwStockMinFee)
	require.NotNil(t, broker.UsStockFeeRate)
	assert.Equal(t, 0.001, *broker.UsStockFeeRate)

	// jihsun publishes no foreign-equity rate
	broker, err = s.GetByID(db, "jihsun")
	require.NoError(t, err)
	assert.Nil(t, broker.UsStockFeeRate)

	_, err = s.GetByID(db, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	// Seeding twice upserts rather than duplicating
	require.NoError(t, s.Seed(db))
	brokers, err := s.List(db)
	require.NoError(t, err)
	assert.Len(t, brokers, 14)
	assert.Equal(t, "cathay", brokers[0].ID) // sort_order ascending
}

func TestDefaultBroker(t *testing.T) {
	db := openTestDB(t)
	s := NewBrokerStore()
	require.NoError(t, s.Seed(db))

	// Unset default reads back empty
	id, broker, err := s.GetDefaultBroker(db, "alice")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Nil(t, broker)

	assert.ErrorIs(t, s.SetDefaultBroker(db, "alice", "nope"), ErrNotFound)

	require.NoError(t, s.SetDefaultBroker(db, "alice", "yuanta"))
	id, broker, err = s.GetDefaultBroker(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, "yuanta", id)
	require.NotNil(t, broker)

	// Changing the default overwrites the previous setting
	require.NoError(t, s.SetDefaultBroker(db, "alice", "fubon"))
	id, _, err = s.GetDefaultBroker(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, "fubon", id)
}

func TestSummarize(t *testing.T) {
	records := []models.PnLRecord{
		{RealizedPnl: 150, BuyFee: 10, SellFee: 5, SellTax: 5},
		{RealizedPnl: -25, BuyFee: 2, SellFee: 1, SellTax: 0},
		{RealizedPnl: 0, BuyFee: 1, SellFee: 1, SellTax: 1},
	}
	s := Summarize(records)
	assert.InDelta(t, 125.0, s.TotalPnl, 1e-6)
	assert.InDelta(t, 26.0, s.TotalFees, 1e-6)
	assert.Equal(t, 1, s.WinCount)
	assert.Equal(t, 1, s.LossCount)
	// The break-even record is excluded from the win rate
	assert.InDelta(t, 0.5, s.WinRate, 1e-6)

	assert.Zero(t, Summarize(nil).WinRate)
}
