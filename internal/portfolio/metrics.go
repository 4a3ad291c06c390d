package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/wesleyshe/Claw-Street-Bets/internal/prices"
)

// Metrics is the derived valuation of one account at a price snapshot.
// Nothing here is ever stored; it is recomputed from ledger state on every
// evaluation. MaintenanceRatio is nil when the account holds no open risk.
type Metrics struct {
	Equity           decimal.Decimal  `json:"equity"`
	MarketValue      decimal.Decimal  `json:"market_value"`
	GrossNotional    decimal.Decimal  `json:"gross_notional"`
	UnrealizedPnL    decimal.Decimal  `json:"unrealized_pnl"`
	MaintenanceRatio *decimal.Decimal `json:"maintenance_ratio"`
}

// Compute values a portfolio against a snapshot. It fails if any held asset
// lacks a positive price: a valuation over an incomplete snapshot would let a
// trade or liquidation run blind on part of the book.
func Compute(pf Portfolio, positions []Position, snap prices.Snapshot) (Metrics, error) {
	var marketValue decimal.Decimal
	var grossNotional decimal.Decimal
	var unrealized decimal.Decimal

	for _, pos := range positions {
		price, err := snap.Price(pos.AssetID)
		if err != nil {
			return Metrics{}, err
		}
		marketValue = marketValue.Add(pos.Quantity.Mul(price))
		grossNotional = grossNotional.Add(pos.Quantity.Abs().Mul(price))
		unrealized = unrealized.Add(price.Sub(pos.AvgEntryPrice).Mul(pos.Quantity))
	}

	m := Metrics{
		Equity:        pf.Cash.Sub(pf.Borrowed).Add(marketValue),
		MarketValue:   marketValue,
		GrossNotional: grossNotional,
		UnrealizedPnL: unrealized,
	}
	if grossNotional.GreaterThan(decimal.Zero) {
		ratio := m.Equity.Div(grossNotional)
		m.MaintenanceRatio = &ratio
	}
	return m, nil
}
