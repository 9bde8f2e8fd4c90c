// backend/src/models/trade.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// ErrValidationFailed is the sentinel wrapped by every trade validation error.
var ErrValidationFailed = fmt.Errorf("validation failed")

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether the side is part of the closed enumeration.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// AssetType is the closed set of supported asset classes. The identifiers
// double as the wire and storage representation.
type AssetType string

const (
	AssetTwStock AssetType = "tw_stock" // domestic equity
	AssetUsStock AssetType = "us_stock" // foreign equity
	AssetCrypto  AssetType = "crypto"
	AssetFutures AssetType = "futures"
	AssetOptions AssetType = "options"
)

// Valid reports whether the asset type is part of the closed enumeration.
func (a AssetType) Valid() bool {
	switch a {
	case AssetTwStock, AssetUsStock, AssetCrypto, AssetFutures, AssetOptions:
		return true
	}
	return false
}

// AssetTypes lists every supported asset type, in display order.
func AssetTypes() []AssetType {
	return []AssetType{AssetTwStock, AssetUsStock, AssetCrypto, AssetFutures, AssetOptions}
}

// Trade is an immutable trade record. Once stored it is only ever removed,
// never partially edited; derived state (open lots, P&L records) is rebuilt
// from the trade history on every mutation.
type Trade struct {
	ID        int64     `json:"id,omitempty"`
	User      string    `json:"user"`
	TradeDate string    `json:"trade_date"` // YYYY-MM-DD, no time component
	AssetType AssetType `json:"asset_type"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	Side      Side      `json:"side"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Fee       float64   `json:"fee"`
	Tax       float64   `json:"tax"`
	Notes     string    `json:"notes,omitempty"`
	BrokerID  string    `json:"broker_id,omitempty"`
	CreatedAt int64     `json:"created_at,omitempty"` // unix millis, bookkeeping only
	UpdatedAt int64     `json:"updated_at,omitempty"`
}

// Partition identifies the (user, symbol, asset type) scope within which
// FIFO matching is computed. Matching never crosses partitions.
type Partition struct {
	User      string
	Symbol    string
	AssetType AssetType
}

// Partition returns the trade's matching partition.
func (t *Trade) Partition() Partition {
	return Partition{User: t.User, Symbol: t.Symbol, AssetType: t.AssetType}
}

// Validate enforces the trade schema invariants. It must pass before any
// storage mutation; a failing trade is rejected atomically.
func (t *Trade) Validate() error {
	if strings.TrimSpace(t.User) == "" {
		return fmt.Errorf("%w: user cannot be empty", ErrValidationFailed)
	}
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("%w: symbol cannot be empty", ErrValidationFailed)
	}
	if strings.TrimSpace(t.TradeDate) == "" {
		return fmt.Errorf("%w: trade_date cannot be empty", ErrValidationFailed)
	}
	if _, err := time.Parse("2006-01-02", t.TradeDate); err != nil {
		return fmt.Errorf("%w: trade_date %q is not a valid date (expected YYYY-MM-DD)", ErrValidationFailed, t.TradeDate)
	}
	if !t.AssetType.Valid() {
		return fmt.Errorf("%w: unknown asset type %q", ErrValidationFailed, t.AssetType)
	}
	if !t.Side.Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrValidationFailed, t.Side)
	}
	if t.Price <= 0 {
		return fmt.Errorf("%w: price must be positive, got %v", ErrValidationFailed, t.Price)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %v", ErrValidationFailed, t.Quantity)
	}
	if t.Fee < 0 {
		return fmt.Errorf("%w: fee cannot be negative, got %v", ErrValidationFailed, t.Fee)
	}
	if t.Tax < 0 {
		return fmt.Errorf("%w: tax cannot be negative, got %v", ErrValidationFailed, t.Tax)
	}
	return nil
}
