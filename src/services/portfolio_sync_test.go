// backend/src/services/portfolio_sync_test.go
package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradeledger/backend/src/models"
)

func writeSnapshot(t *testing.T, dir, user string, data map[string]any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, user+".json"), raw, 0o644))
}

func readSnapshot(t *testing.T, dir, user string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(dir, user+".json"))
	require.NoError(t, err)
	var data map[string]any
	require.NoError(t, json.Unmarshal(raw, &data))
	return data
}

func snapshotWithEtf(qty, avg float64) map[string]any {
	return map[string]any{
		"股票": []any{
			map[string]any{"代號": "2330", "公司名稱": "台積電", "持有單位": 100.0},
		},
		"ETF": []any{
			map[string]any{"代號": "0050", "名稱": "元大台灣50", "持有單位": qty, "買入均價": avg},
		},
		"其它資產": []any{},
	}
}

func etfTrade(side models.Side, price, qty float64) *models.Trade {
	return &models.Trade{
		User: "alice", TradeDate: "2024-01-01", AssetType: models.AssetTwStock,
		Symbol: "0050", Side: side, Price: price, Quantity: qty,
	}
}

func TestApplyBuyUpdatesWeightedAverage(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "alice", snapshotWithEtf(100, 50))
	sync := NewFilePortfolioSync(dir)

	// 100 @ 50 + 100 @ 60 -> 200 @ 55
	require.NoError(t, sync.ApplyTrade("alice", etfTrade(models.SideBuy, 60, 100)))

	data := readSnapshot(t, dir, "alice")
	etf := data["ETF"].([]any)[0].(map[string]any)
	assert.Equal(t, 200.0, etf["持有單位"])
	assert.Equal(t, 55.0, etf["買入均價"])
	assert.NotEmpty(t, data["資料更新日期"])
}

func TestApplyBuyAppendsNewHolding(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "alice", snapshotWithEtf(100, 50))
	sync := NewFilePortfolioSync(dir)

	trade := &models.Trade{
		User: "alice", TradeDate: "2024-01-01", AssetType: models.AssetCrypto,
		Symbol: "BTC", Name: "Bitcoin", Side: models.SideBuy, Price: 60000, Quantity: 0.5,
	}
	require.NoError(t, sync.ApplyTrade("alice", trade))

	data := readSnapshot(t, dir, "alice")
	others := data["其它資產"].([]any)
	require.Len(t, others, 1)
	entry := others[0].(map[string]any)
	assert.Equal(t, "BTC", entry["代號"])
	assert.Equal(t, "Bitcoin", entry["名稱"])
	assert.Equal(t, 0.5, entry["持有單位"])
}

func TestApplySellDecrementsAndRemoves(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "alice", snapshotWithEtf(100, 50))
	sync := NewFilePortfolioSync(dir)

	require.NoError(t, sync.ApplyTrade("alice", etfTrade(models.SideSell, 55, 40)))
	data := readSnapshot(t, dir, "alice")
	etf := data["ETF"].([]any)[0].(map[string]any)
	assert.Equal(t, 60.0, etf["持有單位"])
	assert.Equal(t, 50.0, etf["買入均價"]) // average untouched by a sell

	// Selling the rest drops the holding entirely
	require.NoError(t, sync.ApplyTrade("alice", etfTrade(models.SideSell, 55, 60)))
	data = readSnapshot(t, dir, "alice")
	assert.Empty(t, data["ETF"].([]any))
}

func TestApplySellUnknownSymbolSkipped(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "alice", snapshotWithEtf(100, 50))
	sync := NewFilePortfolioSync(dir)

	trade := etfTrade(models.SideSell, 10, 5)
	trade.Symbol = "9999"
	require.NoError(t, sync.ApplyTrade("alice", trade))

	// Snapshot untouched
	data := readSnapshot(t, dir, "alice")
	etf := data["ETF"].([]any)[0].(map[string]any)
	assert.Equal(t, 100.0, etf["持有單位"])
}

func TestApplyTradeMissingSnapshot(t *testing.T) {
	sync := NewFilePortfolioSync(t.TempDir())
	// No snapshot file for the user is a no-op, not an error
	assert.NoError(t, sync.ApplyTrade("ghost", etfTrade(models.SideBuy, 50, 10)))
}

func TestReverseTradeUndoesBuy(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "alice", snapshotWithEtf(100, 50))
	sync := NewFilePortfolioSync(dir)

	trade := etfTrade(models.SideBuy, 60, 100)
	require.NoError(t, sync.ApplyTrade("alice", trade))
	require.NoError(t, sync.ReverseTrade("alice", trade))

	data := readSnapshot(t, dir, "alice")
	etf := data["ETF"].([]any)[0].(map[string]any)
	assert.Equal(t, 100.0, etf["持有單位"])
}

func TestLookupName(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "alice", snapshotWithEtf(100, 50))
	sync := NewFilePortfolioSync(dir)

	assert.Equal(t, "元大台灣50", sync.LookupName("alice", "0050"))
	// 股票 entries carry 公司名稱 instead of 名稱
	assert.Equal(t, "台積電", sync.LookupName("alice", "2330"))
	assert.Empty(t, sync.LookupName("alice", "9999"))
	assert.Empty(t, sync.LookupName("ghost", "0050"))
}
