// backend/src/services/portfolio_sync.go
package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/username/tradeledger/backend/src/logger"
	"github.com/username/tradeledger/backend/src/models"
	"github.com/username/tradeledger/backend/src/utils"
)

// Keys of the external portfolio snapshot schema. The dashboard owns this
// JSON format; the field names are fixed by it.
const (
	snapshotKeySymbol   = "代號"
	snapshotKeyName     = "名稱"
	snapshotKeyCompany  = "公司名稱"
	snapshotKeyUnits    = "持有單位"
	snapshotKeyAvgPrice = "買入均價"
	snapshotKeyUpdated  = "資料更新日期"
)

// Snapshot arrays that may contain tradeable holdings.
var snapshotHoldingArrays = []string{"ETF", "其它資產"}

// Snapshot arrays searched when resolving a display name.
var snapshotLookupArrays = []string{"股票", "ETF", "其它資產"}

// filePortfolioSync applies net holding deltas to per-user portfolio
// snapshot JSON files. A missing snapshot is skipped, never an error:
// ledger state is the source of truth and the snapshot is display-only.
type filePortfolioSync struct {
	dataDir string
}

// NewFilePortfolioSync returns a PortfolioSync over JSON files named
// <user>.json in dataDir.
func NewFilePortfolioSync(dataDir string) PortfolioSync {
	return &filePortfolioSync{dataDir: dataDir}
}

func (p *filePortfolioSync) snapshotPath(user string) string {
	return filepath.Join(p.dataDir, user+".json")
}

func (p *filePortfolioSync) load(user string) (map[string]any, error) {
	raw, err := os.ReadFile(p.snapshotPath(user))
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing portfolio snapshot for %s: %w", user, err)
	}
	return data, nil
}

func (p *filePortfolioSync) save(user string, data map[string]any) error {
	data[snapshotKeyUpdated] = time.Now().Format("2006-01-02")
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.snapshotPath(user), raw, 0o644)
}

type holdingRef struct {
	arrayKey string
	index    int
	entry    map[string]any
}

func findHolding(data map[string]any, symbol string, arrays []string) *holdingRef {
	for _, key := range arrays {
		arr, ok := data[key].([]any)
		if !ok {
			continue
		}
		for i, item := range arr {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if s, _ := entry[snapshotKeySymbol].(string); s == symbol {
				return &holdingRef{arrayKey: key, index: i, entry: entry}
			}
		}
	}
	return nil
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

// LookupName resolves a display name for a symbol from the snapshot.
// Returns empty when the snapshot or the symbol is absent.
func (p *filePortfolioSync) LookupName(user, symbol string) string {
	data, err := p.load(user)
	if err != nil {
		return ""
	}
	found := findHolding(data, symbol, snapshotLookupArrays)
	if found == nil {
		return ""
	}
	if name, _ := found.entry[snapshotKeyName].(string); name != "" {
		return name
	}
	name, _ := found.entry[snapshotKeyCompany].(string)
	return name
}

// ApplyTrade adds a buy to the snapshot (weighted-average price) or
// subtracts a sell (holding removed when quantity reaches zero).
func (p *filePortfolioSync) ApplyTrade(user string, trade *models.Trade) error {
	data, err := p.load(user)
	if err != nil {
		if os.IsNotExist(err) {
			logger.L.Warn("Portfolio snapshot not found, skipping sync", "user", user)
			return nil
		}
		return err
	}

	found := findHolding(data, trade.Symbol, snapshotHoldingArrays)

	switch trade.Side {
	case models.SideBuy:
		if found != nil {
			oldQty := asFloat(found.entry[snapshotKeyUnits])
			oldAvg := asFloat(found.entry[snapshotKeyAvgPrice])
			newQty := oldQty + trade.Quantity
			var newAvg float64
			if newQty > 0 {
				newAvg = (oldAvg*oldQty + trade.Price*trade.Quantity) / newQty
			}
			found.entry[snapshotKeyUnits] = newQty
			found.entry[snapshotKeyAvgPrice] = utils.RoundFloat(newAvg, 2)
		} else {
			name := trade.Name
			if name == "" {
				name = trade.Symbol
			}
			arr, _ := data["其它資產"].([]any)
			data["其它資產"] = append(arr, map[string]any{
				snapshotKeyName:     name,
				snapshotKeySymbol:   trade.Symbol,
				snapshotKeyAvgPrice: utils.RoundFloat(trade.Price, 2),
				snapshotKeyUnits:    trade.Quantity,
			})
		}
	case models.SideSell:
		if found == nil {
			logger.L.Warn("Sell for symbol absent from portfolio snapshot, skipping",
				"user", user, "symbol", trade.Symbol)
			return nil
		}
		newQty := asFloat(found.entry[snapshotKeyUnits]) - trade.Quantity
		if newQty <= 0 {
			arr := data[found.arrayKey].([]any)
			data[found.arrayKey] = append(arr[:found.index], arr[found.index+1:]...)
		} else {
			// Average price is unchanged by a sell
			found.entry[snapshotKeyUnits] = newQty
		}
	}

	return p.save(user, data)
}

// ReverseTrade undoes a deleted trade's effect by applying its opposite.
func (p *filePortfolioSync) ReverseTrade(user string, trade *models.Trade) error {
	reversed := *trade
	if trade.Side == models.SideBuy {
		reversed.Side = models.SideSell
	} else {
		reversed.Side = models.SideBuy
	}
	return p.ApplyTrade(user, &reversed)
}
