// backend/src/models/broker.go
package models

// Broker is a row of the broker fee schedule. Domestic-equity commissions
// use a discount over the exchange base rate plus a minimum fee; foreign
// equity uses a flat rate. Nil foreign-equity fields mean the broker does
// not publish a rate and fees cannot be auto-computed.
type Broker struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	NameEn          string   `json:"name_en,omitempty"`
	TwStockDiscount float64  `json:"tw_stock_discount"`
	TwStockMinFee   float64  `json:"tw_stock_min_fee"`
	UsStockFeeRate  *float64 `json:"us_stock_fee_rate"`
	UsStockMinFee   *float64 `json:"us_stock_min_fee"`
	Notes           string   `json:"notes,omitempty"`
	SortOrder       int      `json:"sort_order"`
}
