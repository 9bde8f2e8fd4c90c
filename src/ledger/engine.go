// backend/src/ledger/engine.go
package ledger

import (
	"fmt"

	"github.com/username/tradeledger/backend/src/logger"
	"github.com/username/tradeledger/backend/src/models"
	"github.com/username/tradeledger/backend/src/store"
)

// Engine performs FIFO lot matching for one partition at a time. All
// methods operate on a caller-owned transaction handle so a failed replay
// rolls back as a unit.
type Engine struct {
	trades *store.TradeStore
	lots   *store.LotStore
	pnl    *store.PnLStore
}

func NewEngine(trades *store.TradeStore, lots *store.LotStore, pnl *store.PnLStore) *Engine {
	return &Engine{trades: trades, lots: lots, pnl: pnl}
}

// MatchBuy records a buy trade's open lot. A buy never matches anything
// by itself; it only extends the FIFO queue.
func (e *Engine) MatchBuy(q store.Querier, trade *models.Trade) error {
	if trade.Side != models.SideBuy {
		return fmt.Errorf("match buy called with %s trade %d", trade.Side, trade.ID)
	}
	_, err := e.lots.InsertFromBuy(q, trade)
	return err
}

// MatchSell consumes the partition's open lots in FIFO order to satisfy a
// sell, emitting one P&L record per consumption step. Fees and taxes are
// prorated by matched quantity so that summing the shares over a fully
// consumed lot or fully matched sell reproduces the original totals.
//
// A sell exceeding all open lot quantity is not an error: the unmatched
// remainder produces no records and is returned for the caller to surface.
func (e *Engine) MatchSell(q store.Querier, trade *models.Trade) (records []models.PnLRecord, unmatchedQty float64, err error) {
	if trade.Side != models.SideSell {
		return nil, 0, fmt.Errorf("match sell called with %s trade %d", trade.Side, trade.ID)
	}

	lots, err := e.lots.OpenLots(q, trade.Partition())
	if err != nil {
		return nil, 0, err
	}

	remainingToSell := trade.Quantity

	for _, lot := range lots {
		if remainingToSell <= 0 {
			break
		}

		matchedQty := min(lot.RemainingQty, remainingToSell)

		// Prorate fees and taxes by matched quantity
		buyFee := lot.Fee * (matchedQty / lot.OriginalQty)
		sellFee := trade.Fee * (matchedQty / trade.Quantity)
		sellTax := trade.Tax * (matchedQty / trade.Quantity)

		realized := (trade.Price-lot.Price)*matchedQty - buyFee - sellFee - sellTax

		record := models.PnLRecord{
			User:        trade.User,
			SellTradeID: trade.ID,
			BuyTradeID:  lot.TradeID,
			Symbol:      trade.Symbol,
			AssetType:   trade.AssetType,
			MatchedQty:  matchedQty,
			BuyPrice:    lot.Price,
			SellPrice:   trade.Price,
			BuyFee:      buyFee,
			SellFee:     sellFee,
			SellTax:     sellTax,
			RealizedPnl: realized,
			BuyDate:     lot.TradeDate,
			SellDate:    trade.TradeDate,
		}
		if err := e.pnl.Insert(q, &record); err != nil {
			return nil, 0, err
		}

		if err := e.lots.Consume(q, lot.ID, matchedQty); err != nil {
			// An over-consumption here breaks the core correctness
			// guarantee; abort the whole transaction.
			logger.L.Error("FIFO lot consumption failed", "lotID", lot.ID, "matchedQty", matchedQty, "error", err)
			return nil, 0, err
		}

		records = append(records, record)
		remainingToSell -= matchedQty
	}

	if remainingToSell > 0 {
		logger.L.Warn("Sell exceeds recorded open lots, remainder left unmatched",
			"user", trade.User, "symbol", trade.Symbol, "tradeID", trade.ID,
			"unmatchedQty", remainingToSell)
		unmatchedQty = remainingToSell
	}

	return records, unmatchedQty, nil
}
