// backend/src/store/pnl_store.go
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/tradeledger/backend/src/models"
)

// PnLStore owns the realized-P&L ledger. Records are immutable once
// written; recalculation deletes and rebuilds them wholesale.
type PnLStore struct{}

func NewPnLStore() *PnLStore { return &PnLStore{} }

const pnlColumns = `id, user, sell_trade_id, buy_trade_id, symbol, asset_type, matched_qty,
	buy_price, sell_price, buy_fee, sell_fee, sell_tax, realized_pnl, buy_date, sell_date, created_at`

// PnLFilter narrows a P&L query.
type PnLFilter struct {
	Symbol    string // substring match
	AssetType models.AssetType
	DateFrom  string // on sell_date
	DateTo    string
}

// Insert appends one match record, assigning its id.
func (s *PnLStore) Insert(q Querier, r *models.PnLRecord) error {
	now := time.Now().UnixMilli()
	res, err := q.Exec(`
		INSERT INTO pnl_records (user, sell_trade_id, buy_trade_id, symbol, asset_type,
			matched_qty, buy_price, sell_price, buy_fee, sell_fee, sell_tax,
			realized_pnl, buy_date, sell_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.User, r.SellTradeID, r.BuyTradeID, r.Symbol, r.AssetType,
		r.MatchedQty, r.BuyPrice, r.SellPrice, r.BuyFee, r.SellFee, r.SellTax,
		r.RealizedPnl, r.BuyDate, r.SellDate, now)
	if err != nil {
		return fmt.Errorf("inserting pnl record: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	r.CreatedAt = now
	return nil
}

// DeleteForTrades removes every record referencing the given trades as
// either buy or sell side. Used by recalculation before replay.
func (s *PnLStore) DeleteForTrades(q Querier, tradeIDs []int64) error {
	if len(tradeIDs) == 0 {
		return nil
	}
	placeholders := "?" + strings.Repeat(",?", len(tradeIDs)-1)
	query := fmt.Sprintf(`DELETE FROM pnl_records WHERE sell_trade_id IN (%s) OR buy_trade_id IN (%s)`,
		placeholders, placeholders)
	args := make([]any, 0, 2*len(tradeIDs))
	for _, id := range tradeIDs {
		args = append(args, id)
	}
	for _, id := range tradeIDs {
		args = append(args, id)
	}
	if _, err := q.Exec(query, args...); err != nil {
		return fmt.Errorf("deleting pnl records: %w", err)
	}
	return nil
}

// Query returns a user's records matching the filter, most recent sell
// date first.
func (s *PnLStore) Query(q Querier, user string, f PnLFilter) ([]models.PnLRecord, error) {
	conditions := []string{"user = ?"}
	args := []any{user}

	if f.Symbol != "" {
		conditions = append(conditions, "symbol LIKE ?")
		args = append(args, "%"+f.Symbol+"%")
	}
	if f.AssetType != "" {
		conditions = append(conditions, "asset_type = ?")
		args = append(args, f.AssetType)
	}
	if f.DateFrom != "" {
		conditions = append(conditions, "sell_date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		conditions = append(conditions, "sell_date <= ?")
		args = append(args, f.DateTo)
	}
	where := strings.Join(conditions, " AND ")

	rows, err := q.Query(`SELECT `+pnlColumns+` FROM pnl_records WHERE `+where+` ORDER BY sell_date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying pnl records: %w", err)
	}
	defer rows.Close()

	var records []models.PnLRecord
	for rows.Next() {
		var r models.PnLRecord
		if err := rows.Scan(&r.ID, &r.User, &r.SellTradeID, &r.BuyTradeID, &r.Symbol, &r.AssetType,
			&r.MatchedQty, &r.BuyPrice, &r.SellPrice, &r.BuyFee, &r.SellFee, &r.SellTax,
			&r.RealizedPnl, &r.BuyDate, &r.SellDate, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Summarize aggregates a record set into the display summary. Win rate
// counts only closed matches with a non-zero result.
func Summarize(records []models.PnLRecord) models.PnLSummary {
	var s models.PnLSummary
	for _, r := range records {
		s.TotalPnl += r.RealizedPnl
		s.TotalFees += r.BuyFee + r.SellFee + r.SellTax
		if r.RealizedPnl > 0 {
			s.WinCount++
		} else if r.RealizedPnl < 0 {
			s.LossCount++
		}
	}
	if closed := s.WinCount + s.LossCount; closed > 0 {
		s.WinRate = float64(s.WinCount) / float64(closed)
	}
	return s
}
