// backend/src/ledger/recalculate.go
package ledger

import (
	"fmt"
	"sync"

	"github.com/username/tradeledger/backend/src/models"
	"github.com/username/tradeledger/backend/src/store"
)

// RecalcResult reports one partition rebuild.
type RecalcResult struct {
	Partition    models.Partition `json:"partition"`
	TradeCount   int              `json:"trade_count"`
	RecordCount  int              `json:"record_count"`
	UnmatchedQty float64          `json:"unmatched_qty,omitempty"` // over-sold quantity left without lots
}

// Coordinator rebuilds derived ledger state. Trades can be entered out of
// chronological order or deleted, and incremental patching cannot
// correctly un-match in that case, so the coordinator always performs a
// full deterministic rebuild of the affected partition. The derived state
// is thereby a pure function of the trade history.
type Coordinator struct {
	trades *store.TradeStore
	lots   *store.LotStore
	pnl    *store.PnLStore
	engine *Engine

	// Serializes rebuilds of the same partition. Different partitions
	// touch disjoint rows and may proceed independently.
	mu             sync.Mutex
	partitionLocks map[models.Partition]*sync.Mutex
}

func NewCoordinator(trades *store.TradeStore, lots *store.LotStore, pnl *store.PnLStore) *Coordinator {
	return &Coordinator{
		trades:         trades,
		lots:           lots,
		pnl:            pnl,
		engine:         NewEngine(trades, lots, pnl),
		partitionLocks: make(map[models.Partition]*sync.Mutex),
	}
}

func (c *Coordinator) lockFor(p models.Partition) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.partitionLocks[p]
	if !ok {
		l = &sync.Mutex{}
		c.partitionLocks[p] = l
	}
	return l
}

// Recalculate rebuilds one partition's open lots and P&L records inside
// the caller's transaction:
//
//  1. load the partition's trades in canonical (trade_date, id) order,
//  2. delete every P&L record referencing those trades on either side and
//     every lot originating from them,
//  3. replay the trades strictly in canonical order.
//
// Replaying the same trade set always yields the same lots and records.
// The rebuild is always whole-partition; there is no partial path.
func (c *Coordinator) Recalculate(q store.Querier, p models.Partition) (*RecalcResult, error) {
	lock := c.lockFor(p)
	lock.Lock()
	defer lock.Unlock()

	return c.recalculateLocked(q, p)
}

func (c *Coordinator) recalculateLocked(q store.Querier, p models.Partition) (*RecalcResult, error) {
	trades, err := c.trades.ListPartition(q, p)
	if err != nil {
		return nil, fmt.Errorf("recalculate %s/%s: %w", p.Symbol, p.AssetType, err)
	}

	tradeIDs := make([]int64, len(trades))
	for i, t := range trades {
		tradeIDs[i] = t.ID
	}

	if err := c.pnl.DeleteForTrades(q, tradeIDs); err != nil {
		return nil, err
	}
	if err := c.lots.DeleteForTrades(q, tradeIDs); err != nil {
		return nil, err
	}

	result := &RecalcResult{Partition: p, TradeCount: len(trades)}
	for i := range trades {
		trade := &trades[i]
		switch trade.Side {
		case models.SideBuy:
			if err := c.engine.MatchBuy(q, trade); err != nil {
				return nil, err
			}
		case models.SideSell:
			records, unmatched, err := c.engine.MatchSell(q, trade)
			if err != nil {
				return nil, err
			}
			result.RecordCount += len(records)
			result.UnmatchedQty += unmatched
		}
	}
	return result, nil
}

// RecalculateAll rebuilds every partition holding trades for a user.
// Intended for disaster recovery and migrations.
func (c *Coordinator) RecalculateAll(q store.Querier, user string) ([]RecalcResult, error) {
	partitions, err := c.trades.Partitions(q, user)
	if err != nil {
		return nil, err
	}

	results := make([]RecalcResult, 0, len(partitions))
	for _, p := range partitions {
		lock := c.lockFor(p)
		lock.Lock()
		res, err := c.recalculateLocked(q, p)
		lock.Unlock()
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, nil
}
