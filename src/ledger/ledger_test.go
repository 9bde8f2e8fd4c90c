// backend/src/ledger/ledger_test.go
package ledger

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/username/tradeledger/backend/src/logger"
	"github.com/username/tradeledger/backend/src/models"
	"github.com/username/tradeledger/backend/src/store"
	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "db", "migrations", "000001_init.up.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	return db
}

type testFixture struct {
	db     *sql.DB
	trades *store.TradeStore
	lots   *store.LotStore
	pnl    *store.PnLStore
	engine *Engine
	coord  *Coordinator
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	trades := store.NewTradeStore()
	lots := store.NewLotStore()
	pnl := store.NewPnLStore()
	return &testFixture{
		db:     openTestDB(t),
		trades: trades,
		lots:   lots,
		pnl:    pnl,
		engine: NewEngine(trades, lots, pnl),
		coord:  NewCoordinator(trades, lots, pnl),
	}
}

// insertTrade stores a valid trade and returns it with its id assigned.
func (f *testFixture) insertTrade(t *testing.T, date string, side models.Side, price, qty, fee, tax float64) *models.Trade {
	t.Helper()
	trade := &models.Trade{
		User:      "alice",
		TradeDate: date,
		AssetType: models.AssetTwStock,
		Symbol:    "2330",
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Fee:       fee,
		Tax:       tax,
	}
	require.NoError(t, f.trades.Insert(f.db, trade))
	return trade
}

func (f *testFixture) partition() models.Partition {
	return models.Partition{User: "alice", Symbol: "2330", AssetType: models.AssetTwStock}
}
