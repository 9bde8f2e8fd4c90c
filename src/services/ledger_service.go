// backend/src/services/ledger_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradeledger/backend/src/ledger"
	"github.com/username/tradeledger/backend/src/logger"
	"github.com/username/tradeledger/backend/src/models"
	"github.com/username/tradeledger/backend/src/processors"
	"github.com/username/tradeledger/backend/src/security/validation"
	"github.com/username/tradeledger/backend/src/store"
)

type ledgerServiceImpl struct {
	db          *sql.DB
	trades      *store.TradeStore
	lots        *store.LotStore
	pnl         *store.PnLStore
	brokers     *store.BrokerStore
	coordinator *ledger.Coordinator
	feeCalc     *processors.FeeCalculator
	portfolio   PortfolioSync
	reportCache *cache.Cache
}

// NewLedgerService wires the trade ledger around a database handle.
// portfolio may be nil when no snapshot sync is configured.
func NewLedgerService(db *sql.DB, portfolio PortfolioSync, reportCache *cache.Cache) LedgerService {
	trades := store.NewTradeStore()
	lots := store.NewLotStore()
	pnl := store.NewPnLStore()
	return &ledgerServiceImpl{
		db:          db,
		trades:      trades,
		lots:        lots,
		pnl:         pnl,
		brokers:     store.NewBrokerStore(),
		coordinator: ledger.NewCoordinator(trades, lots, pnl),
		feeCalc:     processors.NewFeeCalculator(),
		portfolio:   portfolio,
		reportCache: reportCache,
	}
}

// CreateTrade validates, prices, and stores a trade, then rebuilds the
// affected partition. The insert and the rebuild share one transaction.
func (s *ledgerServiceImpl) CreateTrade(user string, input TradeInput) (*models.Trade, error) {
	trade := &models.Trade{
		User:      user,
		TradeDate: strings.TrimSpace(input.TradeDate),
		AssetType: input.AssetType,
		Symbol:    strings.ToUpper(strings.TrimSpace(input.Symbol)),
		Name:      validation.SanitizeText(validation.StripUnprintable(input.Name)),
		Side:      input.Side,
		Price:     input.Price,
		Quantity:  input.Quantity,
		Notes:     validation.SanitizeText(validation.StripUnprintable(input.Notes)),
		BrokerID:  input.BrokerID,
	}
	if input.Fee != nil {
		trade.Fee = *input.Fee
	}
	if input.Tax != nil {
		trade.Tax = *input.Tax
	}
	if err := trade.Validate(); err != nil {
		return nil, err
	}

	// Auto-calculate fees when a broker is given and no manual fee/tax
	if input.BrokerID != "" && input.Fee == nil && input.Tax == nil {
		broker, err := s.brokers.GetByID(s.db, input.BrokerID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("looking up broker %s: %w", input.BrokerID, err)
		}
		calc := s.feeCalc.Calculate(broker, trade.AssetType, trade.Price, trade.Quantity, trade.Side, trade.Symbol)
		trade.Fee = calc.Fee
		trade.Tax = calc.Tax
	}

	// Resolve a display name from the portfolio snapshot when missing
	if trade.Name == "" && s.portfolio != nil {
		trade.Name = s.portfolio.LookupName(user, trade.Symbol)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.trades.Insert(tx, trade); err != nil {
		return nil, err
	}

	// Full partition rebuild handles out-of-order entry (e.g. a sell
	// recorded before its earlier buy is backfilled).
	result, err := s.coordinator.Recalculate(tx, trade.Partition())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing trade creation: %w", err)
	}

	logger.L.Info("Trade created", "user", user, "tradeID", trade.ID, "symbol", trade.Symbol,
		"side", trade.Side, "records", result.RecordCount, "unmatchedQty", result.UnmatchedQty)

	if s.portfolio != nil {
		if err := s.portfolio.ApplyTrade(user, trade); err != nil {
			logger.L.Warn("Portfolio snapshot sync failed", "user", user, "symbol", trade.Symbol, "error", err)
		}
	}
	s.InvalidateUserCache(user)

	return trade, nil
}

// DeleteTrade removes a trade and rebuilds its partition, cascading the
// deletion to the trade's open lot and any P&L records referencing it.
func (s *ledgerServiceImpl) DeleteTrade(user string, id int64) error {
	existing, err := s.trades.GetByID(s.db, user, id)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Cascade to the trade's derived rows explicitly; the rebuild below
	// only sweeps rows referencing trades that still exist.
	if err := s.pnl.DeleteForTrades(tx, []int64{id}); err != nil {
		return err
	}
	if err := s.lots.DeleteForTrades(tx, []int64{id}); err != nil {
		return err
	}
	if err := s.trades.Delete(tx, user, id); err != nil {
		return err
	}
	if _, err := s.coordinator.Recalculate(tx, existing.Partition()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing trade deletion: %w", err)
	}

	logger.L.Info("Trade deleted", "user", user, "tradeID", id, "symbol", existing.Symbol)

	if s.portfolio != nil {
		if err := s.portfolio.ReverseTrade(user, existing); err != nil {
			logger.L.Warn("Portfolio snapshot reverse failed", "user", user, "symbol", existing.Symbol, "error", err)
		}
	}
	s.InvalidateUserCache(user)

	return nil
}

func (s *ledgerServiceImpl) ListTrades(user string, f store.TradeFilter) (*TradePage, error) {
	trades, total, err := s.trades.List(s.db, user, f)
	if err != nil {
		return nil, err
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 50
	}
	return &TradePage{Trades: trades, Total: total, Page: page, Limit: limit}, nil
}

func (s *ledgerServiceImpl) GetPnL(user string, f store.PnLFilter) (*PnLResult, error) {
	unfiltered := f == (store.PnLFilter{})
	cacheKey := "pnl:" + user
	if unfiltered && s.reportCache != nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			return cached.(*PnLResult), nil
		}
	}

	records, err := s.pnl.Query(s.db, user, f)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.PnLRecord{}
	}
	result := &PnLResult{Records: records, Summary: store.Summarize(records)}

	if unfiltered && s.reportCache != nil {
		s.reportCache.Set(cacheKey, result, cache.DefaultExpiration)
	}
	return result, nil
}

func (s *ledgerServiceImpl) GetStats(user string) (*models.TradeStats, error) {
	cacheKey := "stats:" + user
	if s.reportCache != nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			return cached.(*models.TradeStats), nil
		}
	}

	records, err := s.pnl.Query(s.db, user, store.PnLFilter{})
	if err != nil {
		return nil, err
	}
	totalTrades, err := s.trades.CountForUser(s.db, user)
	if err != nil {
		return nil, err
	}
	openPositions, err := s.lots.CountOpenPositions(s.db, user)
	if err != nil {
		return nil, err
	}

	stats := &models.TradeStats{
		TotalTrades:       totalTrades,
		OpenPositionCount: openPositions,
		PnlByAssetType:    make(map[models.AssetType]float64),
	}

	var winSum, lossSum float64
	byMonth := make(map[string]float64)
	for _, r := range records {
		stats.TotalRealizedPnl += r.RealizedPnl
		stats.PnlByAssetType[r.AssetType] += r.RealizedPnl
		if len(r.SellDate) >= 7 {
			byMonth[r.SellDate[:7]] += r.RealizedPnl
		}
		if r.RealizedPnl > 0 {
			stats.WinCount++
			winSum += r.RealizedPnl
			if r.RealizedPnl > stats.LargestWin {
				stats.LargestWin = r.RealizedPnl
			}
		} else if r.RealizedPnl < 0 {
			stats.LossCount++
			lossSum += r.RealizedPnl
			if r.RealizedPnl < stats.LargestLoss {
				stats.LargestLoss = r.RealizedPnl
			}
		}
	}
	if closed := stats.WinCount + stats.LossCount; closed > 0 {
		stats.WinRate = float64(stats.WinCount) / float64(closed)
	}
	if stats.WinCount > 0 {
		stats.AvgWin = winSum / float64(stats.WinCount)
	}
	if stats.LossCount > 0 {
		stats.AvgLoss = lossSum / float64(stats.LossCount)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	stats.PnlByMonth = make([]models.MonthlyPnl, 0, len(months))
	for _, m := range months {
		stats.PnlByMonth = append(stats.PnlByMonth, models.MonthlyPnl{Month: m, Pnl: byMonth[m]})
	}

	if s.reportCache != nil {
		s.reportCache.Set(cacheKey, stats, cache.DefaultExpiration)
	}
	return stats, nil
}

// RecalculateAll rebuilds every partition for the user in one transaction.
func (s *ledgerServiceImpl) RecalculateAll(user string) (*RecalcAllResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	results, err := s.coordinator.RecalculateAll(tx, user)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing full recalculation: %w", err)
	}

	out := &RecalcAllResult{RecalculatedPartitions: len(results), Partitions: results}
	for _, r := range results {
		out.TotalRecords += r.RecordCount
	}
	s.InvalidateUserCache(user)

	logger.L.Info("Full recalculation finished", "user", user,
		"partitions", out.RecalculatedPartitions, "records", out.TotalRecords)
	return out, nil
}

func (s *ledgerServiceImpl) InvalidateUserCache(user string) {
	if s.reportCache == nil {
		return
	}
	s.reportCache.Delete("pnl:" + user)
	s.reportCache.Delete("stats:" + user)
}
