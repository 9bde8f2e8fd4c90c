// backend/src/models/pnl.go
package models

// OpenLot is the unconsumed remainder of a single buy trade, available for
// future sell matching. Lots are derived state owned by the lot tracker:
// they are deleted and rebuilt by recalculation, never edited directly.
// Price, fee and trade date are frozen copies taken from the buy trade.
type OpenLot struct {
	ID           int64     `json:"id,omitempty"`
	User         string    `json:"user"`
	TradeID      int64     `json:"trade_id"`
	Symbol       string    `json:"symbol"`
	AssetType    AssetType `json:"asset_type"`
	RemainingQty float64   `json:"remaining_qty"` // 0 <= remaining <= original
	OriginalQty  float64   `json:"original_qty"`
	Price        float64   `json:"price"`
	Fee          float64   `json:"fee"`
	TradeDate    string    `json:"trade_date"`
}

// PnLRecord is one FIFO consumption step: exactly one sell trade matched
// against exactly one buy trade. Fee and tax fields hold the prorated
// shares of the original trades' totals, proportional to matched quantity.
type PnLRecord struct {
	ID          int64     `json:"id,omitempty"`
	User        string    `json:"user"`
	SellTradeID int64     `json:"sell_trade_id"`
	BuyTradeID  int64     `json:"buy_trade_id"`
	Symbol      string    `json:"symbol"`
	AssetType   AssetType `json:"asset_type"`
	MatchedQty  float64   `json:"matched_qty"`
	BuyPrice    float64   `json:"buy_price"`
	SellPrice   float64   `json:"sell_price"`
	BuyFee      float64   `json:"buy_fee"`
	SellFee     float64   `json:"sell_fee"`
	SellTax     float64   `json:"sell_tax"`
	RealizedPnl float64   `json:"realized_pnl"`
	BuyDate     string    `json:"buy_date"`
	SellDate    string    `json:"sell_date"`
	CreatedAt   int64     `json:"created_at,omitempty"`
}

// PnLSummary aggregates a set of P&L records for display.
type PnLSummary struct {
	TotalPnl  float64 `json:"totalPnl"`
	TotalFees float64 `json:"totalFees"` // buy fee + sell fee + sell tax across records
	WinCount  int     `json:"winCount"`
	LossCount int     `json:"lossCount"`
	WinRate   float64 `json:"winRate"`
}

// MonthlyPnl is realized P&L aggregated per calendar month (YYYY-MM).
type MonthlyPnl struct {
	Month string  `json:"month"`
	Pnl   float64 `json:"pnl"`
}

// TradeStats is the full per-user statistics payload.
type TradeStats struct {
	TotalRealizedPnl  float64               `json:"totalRealizedPnl"`
	TotalTrades       int                   `json:"totalTrades"`
	WinCount          int                   `json:"winCount"`
	LossCount         int                   `json:"lossCount"`
	WinRate           float64               `json:"winRate"`
	AvgWin            float64               `json:"avgWin"`
	AvgLoss           float64               `json:"avgLoss"`
	LargestWin        float64               `json:"largestWin"`
	LargestLoss       float64               `json:"largestLoss"`
	OpenPositionCount int                   `json:"openPositionCount"`
	PnlByAssetType    map[AssetType]float64 `json:"pnlByAssetType"`
	PnlByMonth        []MonthlyPnl          `json:"pnlByMonth"`
}
