// backend/src/store/broker_store.go
package store

import (
	"fmt"
	"time"

	"github.com/username/tradeledger/backend/src/models"
)

// BrokerStore reads the broker fee schedule and per-user broker settings.
type BrokerStore struct{}

func NewBrokerStore() *BrokerStore { return &BrokerStore{} }

const brokerColumns = `id, name, COALESCE(name_en, ''), tw_stock_discount, tw_stock_min_fee,
	us_stock_fee_rate, us_stock_min_fee, COALESCE(notes, ''), sort_order`

// GetByID returns the broker or ErrNotFound.
func (s *BrokerStore) GetByID(q Querier, id string) (*models.Broker, error) {
	row := q.QueryRow(`SELECT `+brokerColumns+` FROM brokers WHERE id = ?`, id)
	var b models.Broker
	err := row.Scan(&b.ID, &b.Name, &b.NameEn, &b.TwStockDiscount, &b.TwStockMinFee,
		&b.UsStockFeeRate, &b.UsStockMinFee, &b.Notes, &b.SortOrder)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List returns all brokers in display order.
func (s *BrokerStore) List(q Querier) ([]models.Broker, error) {
	rows, err := q.Query(`SELECT ` + brokerColumns + ` FROM brokers ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing brokers: %w", err)
	}
	defer rows.Close()

	var brokers []models.Broker
	for rows.Next() {
		var b models.Broker
		if err := rows.Scan(&b.ID, &b.Name, &b.NameEn, &b.TwStockDiscount, &b.TwStockMinFee,
			&b.UsStockFeeRate, &b.UsStockMinFee, &b.Notes, &b.SortOrder); err != nil {
			return nil, err
		}
		brokers = append(brokers, b)
	}
	return brokers, rows.Err()
}

// Seed upserts the built-in broker schedule. Run once at startup.
func (s *BrokerStore) Seed(q Querier) error {
	for _, b := range seedBrokers {
		_, err := q.Exec(`
			INSERT OR REPLACE INTO brokers (id, name, name_en, tw_stock_discount, tw_stock_min_fee, us_stock_fee_rate, us_stock_min_fee, notes, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.Name, b.NameEn, b.TwStockDiscount, b.TwStockMinFee,
			b.UsStockFeeRate, b.UsStockMinFee, b.Notes, b.SortOrder)
		if err != nil {
			return fmt.Errorf("seeding broker %s: %w", b.ID, err)
		}
	}
	return nil
}

// GetDefaultBroker returns the user's default broker id (empty when unset)
// and the broker row when it still exists.
func (s *BrokerStore) GetDefaultBroker(q Querier, user string) (string, *models.Broker, error) {
	var brokerID string
	err := q.QueryRow(`SELECT value FROM user_settings WHERE user = ? AND key = 'default_broker'`, user).Scan(&brokerID)
	if err != nil {
		if isNoRows(err) {
			return "", nil, nil
		}
		return "", nil, err
	}
	broker, err := s.GetByID(q, brokerID)
	if err != nil {
		if err == ErrNotFound {
			return brokerID, nil, nil
		}
		return "", nil, err
	}
	return brokerID, broker, nil
}

// SetDefaultBroker upserts the user's default broker. The broker must exist.
func (s *BrokerStore) SetDefaultBroker(q Querier, user, brokerID string) error {
	if _, err := s.GetByID(q, brokerID); err != nil {
		return err
	}
	_, err := q.Exec(`
		INSERT INTO user_settings (user, key, value, updated_at)
		VALUES (?, 'default_broker', ?, ?)
		ON CONFLICT(user, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		user, brokerID, time.Now().UnixMilli())
	return err
}
