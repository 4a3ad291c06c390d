package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy is the engine's rule surface. Changing these values changes
// rejection and liquidation behavior observably, so they are part of the
// public contract even though they carry no state.
type Policy struct {
	// MaxExposureMultiple caps gross notional at a multiple of equity.
	MaxExposureMultiple decimal.Decimal
	// MaintenanceThreshold is the equity/gross-notional ratio below which
	// every position is force-closed.
	MaintenanceThreshold decimal.Decimal
	// CooldownWindow is the minimum spacing between two trades per account.
	CooldownWindow time.Duration
	// StartingCash seeds a freshly registered portfolio.
	StartingCash decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		MaxExposureMultiple:  decimal.NewFromInt(3),
		MaintenanceThreshold: decimal.RequireFromString("0.25"),
		CooldownWindow:       60 * time.Second,
		StartingCash:         decimal.NewFromInt(10000),
	}
}

// ExposureExceeded reports whether gross notional is over the leverage cap
// for the given equity.
func (p Policy) ExposureExceeded(grossNotional, equity decimal.Decimal) bool {
	return grossNotional.GreaterThan(p.MaxExposureMultiple.Mul(equity))
}

// LiquidationRequired reports whether an account with open risk has breached
// the maintenance threshold. A nil ratio means no open risk.
func (p Policy) LiquidationRequired(maintenanceRatio *decimal.Decimal) bool {
	return maintenanceRatio != nil && maintenanceRatio.LessThan(p.MaintenanceThreshold)
}
