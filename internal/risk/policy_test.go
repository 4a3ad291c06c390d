package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExposureExceededIsStrict(t *testing.T) {
	pol := DefaultPolicy()
	equity := decimal.NewFromInt(1000)

	assert.False(t, pol.ExposureExceeded(decimal.NewFromInt(3000), equity), "exactly 3x is allowed")
	assert.True(t, pol.ExposureExceeded(decimal.RequireFromString("3000.01"), equity))
	assert.False(t, pol.ExposureExceeded(decimal.Zero, equity))
}

func TestLiquidationRequired(t *testing.T) {
	pol := DefaultPolicy()

	assert.False(t, pol.LiquidationRequired(nil), "flat accounts never liquidate")

	at := decimal.RequireFromString("0.25")
	assert.False(t, pol.LiquidationRequired(&at), "threshold itself is safe")

	below := decimal.RequireFromString("0.2499")
	assert.True(t, pol.LiquidationRequired(&below))
}
