// backend/src/store/store_test.go
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/username/tradeledger/backend/src/models"
	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory database with the full schema applied.
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

// testTrade returns a valid trade that callers tweak per case.
func testTrade(user, symbol, date string, side models.Side, price, qty float64) *models.Trade {
	return &models.Trade{
		User:      user,
		TradeDate: date,
		AssetType: models.AssetTwStock,
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Quantity:  qty,
	}
}
