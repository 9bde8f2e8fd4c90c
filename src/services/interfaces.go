// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/username/tradeledger/backend/src/ledger"
	"github.com/username/tradeledger/backend/src/models"
	"github.com/username/tradeledger/backend/src/store"
)

// Cache settings for per-user P&L and stats payloads.
const (
	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute
)

// ErrParserUnavailable is returned when no natural-language trade parser
// is configured.
var ErrParserUnavailable = errors.New("trade parser not configured")

// TradeInput is a trade as submitted by a caller. Nil Fee/Tax mean
// "not supplied": when a broker is given and both are nil, the fee
// calculator fills them in.
type TradeInput struct {
	TradeDate string           `json:"tradeDate"`
	AssetType models.AssetType `json:"assetType"`
	Symbol    string           `json:"symbol"`
	Name      string           `json:"name,omitempty"`
	Side      models.Side      `json:"side"`
	Price     float64          `json:"price"`
	Quantity  float64          `json:"quantity"`
	Fee       *float64         `json:"fee,omitempty"`
	Tax       *float64         `json:"tax,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	BrokerID  string           `json:"brokerId,omitempty"`
}

// TradePage is one page of a filtered trade listing.
type TradePage struct {
	Trades []models.Trade `json:"trades"`
	Total  int            `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

// PnLResult is a filtered record set plus its summary.
type PnLResult struct {
	Records []models.PnLRecord `json:"records"`
	Summary models.PnLSummary  `json:"summary"`
}

// RecalcAllResult reports a whole-user rebuild.
type RecalcAllResult struct {
	RecalculatedPartitions int                  `json:"recalculated_partitions"`
	TotalRecords           int                  `json:"total_records"`
	Partitions             []ledger.RecalcResult `json:"partitions"`
}

// LedgerService is the core trade ledger orchestration: trade CRUD with
// fee auto-computation and whole-partition recalculation after every
// mutation.
type LedgerService interface {
	CreateTrade(user string, input TradeInput) (*models.Trade, error)
	DeleteTrade(user string, id int64) error
	ListTrades(user string, f store.TradeFilter) (*TradePage, error)
	GetPnL(user string, f store.PnLFilter) (*PnLResult, error)
	GetStats(user string) (*models.TradeStats, error)
	RecalculateAll(user string) (*RecalcAllResult, error)
	InvalidateUserCache(user string)
}

// TradeParser translates a natural-language trade description into a
// structured trade input. Implementations are external collaborators;
// the backend only defines the contract.
type TradeParser interface {
	ParseTrade(ctx context.Context, input string) (*TradeInput, error)
}

// PortfolioSync mirrors net holding changes into the denormalized
// per-user portfolio snapshot consumed by the dashboard. Best-effort:
// implementations report failures but ledger state never depends on them.
type PortfolioSync interface {
	ApplyTrade(user string, trade *models.Trade) error
	ReverseTrade(user string, trade *models.Trade) error
	LookupName(user, symbol string) string
}
