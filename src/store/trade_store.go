// backend/src/store/trade_store.go
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/tradeledger/backend/src/models"
)

// TradeStore is the durable owner of trade records.
type TradeStore struct{}

func NewTradeStore() *TradeStore { return &TradeStore{} }

const tradeColumns = `id, user, trade_date, asset_type, symbol, COALESCE(name, ''), side,
	price, quantity, fee, tax, COALESCE(notes, ''), COALESCE(broker_id, ''), created_at, updated_at`

// TradeFilter narrows and pages a trade listing.
type TradeFilter struct {
	AssetType models.AssetType
	Symbol    string // substring match
	Side      models.Side
	DateFrom  string
	DateTo    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Insert validates and stores a trade, assigning its id and timestamps.
// A trade failing validation is rejected before any storage mutation.
func (s *TradeStore) Insert(q Querier, t *models.Trade) error {
	if err := t.Validate(); err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	res, err := q.Exec(`
		INSERT INTO trades (user, trade_date, asset_type, symbol, name, side, price, quantity, fee, tax, notes, broker_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.User, t.TradeDate, t.AssetType, t.Symbol, nullable(t.Name), t.Side,
		t.Price, t.Quantity, t.Fee, t.Tax, nullable(t.Notes), nullable(t.BrokerID), now, now)
	if err != nil {
		return fmt.Errorf("inserting trade: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading trade id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// GetByID returns the user's trade or ErrNotFound.
func (s *TradeStore) GetByID(q Querier, user string, id int64) (*models.Trade, error) {
	row := q.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE id = ? AND user = ?`, id, user)
	return scanTrade(row)
}

// Delete removes the user's trade or returns ErrNotFound.
func (s *TradeStore) Delete(q Querier, user string, id int64) error {
	res, err := q.Exec(`DELETE FROM trades WHERE id = ? AND user = ?`, id, user)
	if err != nil {
		return fmt.Errorf("deleting trade %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPartition returns every trade of one matching partition in canonical
// (trade_date, id) order, the processing order for recalculation replay.
func (s *TradeStore) ListPartition(q Querier, p models.Partition) ([]models.Trade, error) {
	rows, err := q.Query(`
		SELECT `+tradeColumns+` FROM trades
		WHERE user = ? AND symbol = ? AND asset_type = ?
		ORDER BY `+CanonicalOrder,
		p.User, p.Symbol, p.AssetType)
	if err != nil {
		return nil, fmt.Errorf("listing partition trades: %w", err)
	}
	defer rows.Close()
	return collectTrades(rows)
}

// Partitions returns the distinct matching partitions holding trades for a user.
func (s *TradeStore) Partitions(q Querier, user string) ([]models.Partition, error) {
	rows, err := q.Query(`
		SELECT DISTINCT symbol, asset_type FROM trades
		WHERE user = ? ORDER BY symbol ASC, asset_type ASC`, user)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}
	defer rows.Close()

	var partitions []models.Partition
	for rows.Next() {
		p := models.Partition{User: user}
		if err := rows.Scan(&p.Symbol, &p.AssetType); err != nil {
			return nil, err
		}
		partitions = append(partitions, p)
	}
	return partitions, rows.Err()
}

// CountForUser returns the user's total trade count.
func (s *TradeStore) CountForUser(q Querier, user string) (int, error) {
	var count int
	err := q.QueryRow(`SELECT count(*) FROM trades WHERE user = ?`, user).Scan(&count)
	return count, err
}

// allowed sort columns for listing, everything else falls back to trade_date
var allowedSortColumns = map[string]bool{
	"trade_date": true,
	"symbol":     true,
	"price":      true,
	"quantity":   true,
	"created_at": true,
}

// List returns a filtered, sorted, paginated trade page plus the total
// count matching the filter.
func (s *TradeStore) List(q Querier, user string, f TradeFilter) ([]models.Trade, int, error) {
	conditions := []string{"user = ?"}
	args := []any{user}

	if f.AssetType != "" {
		conditions = append(conditions, "asset_type = ?")
		args = append(args, f.AssetType)
	}
	if f.Symbol != "" {
		conditions = append(conditions, "symbol LIKE ?")
		args = append(args, "%"+f.Symbol+"%")
	}
	if f.Side != "" {
		conditions = append(conditions, "side = ?")
		args = append(args, f.Side)
	}
	if f.DateFrom != "" {
		conditions = append(conditions, "trade_date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		conditions = append(conditions, "trade_date <= ?")
		args = append(args, f.DateTo)
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := q.QueryRow(`SELECT count(*) FROM trades WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting trades: %w", err)
	}

	sortBy := f.SortBy
	if !allowedSortColumns[sortBy] {
		sortBy = "trade_date"
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		order = "ASC"
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 50
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT %s FROM trades WHERE %s ORDER BY %s %s, id DESC LIMIT ? OFFSET ?`,
		tradeColumns, where, sortBy, order)
	rows, err := q.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing trades: %w", err)
	}
	defer rows.Close()

	trades, err := collectTrades(rows)
	if err != nil {
		return nil, 0, err
	}
	return trades, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTradeInto(r rowScanner, t *models.Trade) error {
	return r.Scan(&t.ID, &t.User, &t.TradeDate, &t.AssetType, &t.Symbol, &t.Name, &t.Side,
		&t.Price, &t.Quantity, &t.Fee, &t.Tax, &t.Notes, &t.BrokerID, &t.CreatedAt, &t.UpdatedAt)
}

func scanTrade(row rowScanner) (*models.Trade, error) {
	var t models.Trade
	if err := scanTradeInto(row, &t); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func collectTrades(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.Trade, error) {
	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		if err := scanTradeInto(rows, &t); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
