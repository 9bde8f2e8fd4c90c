// backend/src/processors/fee_calculator.go
package processors

import (
	"math"
	"regexp"

	"github.com/username/tradeledger/backend/src/models"
	"github.com/username/tradeledger/backend/src/utils"
)

// Taiwan stock standard commission: 0.1425% of trade value (both sides).
// Securities transaction tax applies on sell only: 0.3% for stocks,
// 0.1% for ETFs.
const (
	twStockBaseRate = 0.001425
	twStockTaxRate  = 0.003
	twEtfTaxRate    = 0.001
)

// Four-digit codes starting with 00 are ETFs on the Taiwan exchange.
var twEtfSymbolPattern = regexp.MustCompile(`^00\d{2}`)

// FeeResult is the auto-computed cost pair for one trade. Zero values are
// also returned when fees cannot be computed (unknown broker, unsupported
// asset class), so callers treat zero as "not computed" rather than free.
type FeeResult struct {
	Fee float64 `json:"fee"`
	Tax float64 `json:"tax"`
}

// FeeCalculator maps a broker schedule and trade parameters to commission
// and tax. Pure computation, no storage access.
type FeeCalculator struct{}

func NewFeeCalculator() *FeeCalculator { return &FeeCalculator{} }

// Calculate returns the fee and tax for a trade. A nil broker yields
// zero/zero instead of an error.
func (c *FeeCalculator) Calculate(broker *models.Broker, assetType models.AssetType, price, quantity float64, side models.Side, symbol string) FeeResult {
	if broker == nil {
		return FeeResult{}
	}

	switch assetType {
	case models.AssetTwStock:
		return c.calculateTwStock(broker, price, quantity, side, twEtfSymbolPattern.MatchString(symbol))
	case models.AssetUsStock:
		return c.calculateUsStock(broker, price, quantity)
	default:
		// crypto, futures, options: no auto-calculation, caller supplies costs
		return FeeResult{}
	}
}

func (c *FeeCalculator) calculateTwStock(broker *models.Broker, price, quantity float64, side models.Side, isEtf bool) FeeResult {
	tradeValue := price * quantity

	// Commission = trade value x 0.1425% x broker discount, whole currency units
	fee := math.Round(tradeValue * twStockBaseRate * broker.TwStockDiscount)
	if fee < broker.TwStockMinFee {
		fee = broker.TwStockMinFee
	}

	// Tax: only on sell
	var tax float64
	if side == models.SideSell {
		taxRate := twStockTaxRate
		if isEtf {
			taxRate = twEtfTaxRate
		}
		tax = math.Round(tradeValue * taxRate)
	}

	return FeeResult{Fee: fee, Tax: tax}
}

func (c *FeeCalculator) calculateUsStock(broker *models.Broker, price, quantity float64) FeeResult {
	if broker.UsStockFeeRate == nil {
		return FeeResult{}
	}
	tradeValue := price * quantity
	fee := utils.RoundFloat(tradeValue*(*broker.UsStockFeeRate), 2)
	if broker.UsStockMinFee != nil && fee < *broker.UsStockMinFee {
		fee = *broker.UsStockMinFee
	}
	return FeeResult{Fee: fee}
}
