package trading

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wesleyshe/Claw-Street-Bets/internal/assets"
	"github.com/wesleyshe/Claw-Street-Bets/internal/types"
)

// RawOrder is the untrusted request shape as it arrives from a caller.
type RawOrder struct {
	AssetID   string
	Side      string
	Notional  *decimal.Decimal
	Quantity  *decimal.Decimal
	ClientRef string
}

// Order is a validated order. Exactly one of Notional/Quantity is set; the
// concrete fill quantity is resolved inside the engine once a price is known.
type Order struct {
	AssetID   string
	Side      types.Side
	Notional  *decimal.Decimal
	Quantity  *decimal.Decimal
	ClientRef string
}

// Trade is the immutable record of one fill.
type Trade struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	AssetID   string          `json:"asset_id"`
	Side      types.Side      `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Notional  decimal.Decimal `json:"notional"`
	ClientRef string          `json:"client_ref,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// LiquidationEvent records a forced close of every open position.
type LiquidationEvent struct {
	AccountID        string          `json:"account_id"`
	Equity           decimal.Decimal `json:"equity"`
	MaintenanceRatio decimal.Decimal `json:"maintenance_ratio"`
	Threshold        decimal.Decimal `json:"threshold"`
	At               time.Time       `json:"at"`
}

type Validator struct {
	registry *assets.Registry
}

func NewValidator(registry *assets.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate normalizes a raw order into a canonical one or rejects it with a
// structured validation error. Price is not available here, so size stays in
// whichever unit the caller expressed it in.
func (v *Validator) Validate(raw RawOrder) (Order, error) {
	assetID := strings.ToLower(strings.TrimSpace(raw.AssetID))
	if assetID == "" {
		return Order{}, validationErr(KindInvalidOrder, "asset is required", "provide one of the supported asset ids")
	}
	if !v.registry.Supported(assetID) {
		return Order{}, validationErr(KindUnknownAsset, fmt.Sprintf("unsupported asset %q", assetID), "see GET /v1/prices for the supported set")
	}

	side := types.Side(strings.ToLower(strings.TrimSpace(raw.Side)))
	if !side.Valid() {
		return Order{}, validationErr(KindInvalidOrder, fmt.Sprintf("invalid side %q", raw.Side), "side must be buy or sell")
	}

	if (raw.Notional == nil) == (raw.Quantity == nil) {
		return Order{}, validationErr(KindExactlyOneSizeField, "exactly one of usd_notional and qty must be set", "size the order in dollars or in units, not both")
	}
	if raw.Notional != nil && !raw.Notional.GreaterThan(decimal.Zero) {
		return Order{}, validationErr(KindInvalidOrder, "usd_notional must be positive", "")
	}
	if raw.Quantity != nil && !raw.Quantity.GreaterThan(decimal.Zero) {
		return Order{}, validationErr(KindInvalidOrder, "qty must be positive", "")
	}

	return Order{
		AssetID:   assetID,
		Side:      side,
		Notional:  raw.Notional,
		Quantity:  raw.Quantity,
		ClientRef: strings.TrimSpace(raw.ClientRef),
	}, nil
}
