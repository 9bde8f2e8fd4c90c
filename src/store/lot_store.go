// backend/src/store/lot_store.go
package store

import (
	"fmt"
	"strings"

	"github.com/username/tradeledger/backend/src/models"
)

// LotStore owns the open-lot state derived from buy trades. Lots are only
// ever created from a buy, consumed by FIFO matching, and deleted wholesale
// during recalculation.
type LotStore struct{}

func NewLotStore() *LotStore { return &LotStore{} }

// InsertFromBuy creates the lot for a buy trade: remaining quantity starts
// at the full trade quantity, and price, fee and trade date are frozen
// copies of the trade's values.
func (s *LotStore) InsertFromBuy(q Querier, t *models.Trade) (*models.OpenLot, error) {
	lot := &models.OpenLot{
		User:         t.User,
		TradeID:      t.ID,
		Symbol:       t.Symbol,
		AssetType:    t.AssetType,
		RemainingQty: t.Quantity,
		OriginalQty:  t.Quantity,
		Price:        t.Price,
		Fee:          t.Fee,
		TradeDate:    t.TradeDate,
	}
	res, err := q.Exec(`
		INSERT INTO open_lots (user, trade_id, symbol, asset_type, remaining_qty, original_qty, price, fee, trade_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lot.User, lot.TradeID, lot.Symbol, lot.AssetType,
		lot.RemainingQty, lot.OriginalQty, lot.Price, lot.Fee, lot.TradeDate)
	if err != nil {
		return nil, fmt.Errorf("inserting open lot for trade %d: %w", t.ID, err)
	}
	lot.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// OpenLots returns the partition's lots with remaining quantity, in
// canonical (trade_date, id) order. This ordering is the FIFO queue.
func (s *LotStore) OpenLots(q Querier, p models.Partition) ([]models.OpenLot, error) {
	rows, err := q.Query(`
		SELECT id, user, trade_id, symbol, asset_type, remaining_qty, original_qty, price, fee, trade_date
		FROM open_lots
		WHERE user = ? AND symbol = ? AND asset_type = ? AND remaining_qty > 0
		ORDER BY `+CanonicalOrder,
		p.User, p.Symbol, p.AssetType)
	if err != nil {
		return nil, fmt.Errorf("listing open lots: %w", err)
	}
	defer rows.Close()

	var lots []models.OpenLot
	for rows.Next() {
		var l models.OpenLot
		if err := rows.Scan(&l.ID, &l.User, &l.TradeID, &l.Symbol, &l.AssetType,
			&l.RemainingQty, &l.OriginalQty, &l.Price, &l.Fee, &l.TradeDate); err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

// Consume decrements a lot's remaining quantity. Consuming more than the
// remaining quantity returns ErrInvariantViolation: the matching engine
// computes matched quantity as min(remaining, unmatched sell), so this is
// a defensive check on the core correctness guarantee, not a normal error
// path.
func (s *LotStore) Consume(q Querier, lotID int64, qty float64) error {
	var remaining float64
	err := q.QueryRow(`SELECT remaining_qty FROM open_lots WHERE id = ?`, lotID).Scan(&remaining)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("lot %d: %w", lotID, ErrNotFound)
		}
		return err
	}
	if qty > remaining {
		return fmt.Errorf("%w: consuming %v from lot %d with remaining %v",
			ErrInvariantViolation, qty, lotID, remaining)
	}
	_, err = q.Exec(`UPDATE open_lots SET remaining_qty = ? WHERE id = ?`, remaining-qty, lotID)
	if err != nil {
		return fmt.Errorf("consuming lot %d: %w", lotID, err)
	}
	return nil
}

// DeleteForTrades removes every lot originating from the given trades.
// Used by recalculation before replay.
func (s *LotStore) DeleteForTrades(q Querier, tradeIDs []int64) error {
	if len(tradeIDs) == 0 {
		return nil
	}
	query := `DELETE FROM open_lots WHERE trade_id IN (?` + strings.Repeat(",?", len(tradeIDs)-1) + `)`
	args := make([]any, len(tradeIDs))
	for i, id := range tradeIDs {
		args[i] = id
	}
	if _, err := q.Exec(query, args...); err != nil {
		return fmt.Errorf("deleting open lots: %w", err)
	}
	return nil
}

// CountOpenPositions returns the number of distinct symbols a user still
// holds open lots for.
func (s *LotStore) CountOpenPositions(q Querier, user string) (int, error) {
	var count int
	err := q.QueryRow(`SELECT count(DISTINCT symbol) FROM open_lots WHERE user = ? AND remaining_qty > 0`, user).Scan(&count)
	return count, err
}
