package trading

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyshe/Claw-Street-Bets/internal/portfolio"
	"github.com/wesleyshe/Claw-Street-Bets/internal/types"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyFillOpensPosition(t *testing.T) {
	pos, removed := applyFill(portfolio.Position{AssetID: "btc"}, types.SideBuy, d("2"), d("100"))
	require.False(t, removed)
	assert.True(t, pos.Quantity.Equal(d("2")))
	assert.True(t, pos.AvgEntryPrice.Equal(d("100")))
}

func TestApplyFillExtensionReweightsAverage(t *testing.T) {
	start := portfolio.Position{AssetID: "btc", Quantity: d("10"), AvgEntryPrice: d("100")}
	pos, removed := applyFill(start, types.SideBuy, d("10"), d("200"))
	require.False(t, removed)
	assert.True(t, pos.Quantity.Equal(d("20")))
	assert.True(t, pos.AvgEntryPrice.Equal(d("150")), "got %s", pos.AvgEntryPrice)
}

func TestApplyFillReductionKeepsAverage(t *testing.T) {
	start := portfolio.Position{AssetID: "btc", Quantity: d("50"), AvgEntryPrice: d("100")}
	pos, removed := applyFill(start, types.SideSell, d("20"), d("150"))
	require.False(t, removed)
	assert.True(t, pos.Quantity.Equal(d("30")))
	assert.True(t, pos.AvgEntryPrice.Equal(d("100")))
}

func TestApplyFillExactZeroRemoves(t *testing.T) {
	start := portfolio.Position{AssetID: "btc", Quantity: d("5"), AvgEntryPrice: d("100")}
	_, removed := applyFill(start, types.SideSell, d("5"), d("90"))
	assert.True(t, removed)
}

func TestApplyFillFlipRebasesEntry(t *testing.T) {
	start := portfolio.Position{AssetID: "btc", Quantity: d("5"), AvgEntryPrice: d("100")}
	pos, removed := applyFill(start, types.SideSell, d("8"), d("120"))
	require.False(t, removed)
	assert.True(t, pos.Quantity.Equal(d("-3")))
	assert.True(t, pos.AvgEntryPrice.Equal(d("120")))
}

func TestApplyFillShortReductionKeepsAverage(t *testing.T) {
	start := portfolio.Position{AssetID: "btc", Quantity: d("-10"), AvgEntryPrice: d("100")}
	pos, removed := applyFill(start, types.SideBuy, d("4"), d("80"))
	require.False(t, removed)
	assert.True(t, pos.Quantity.Equal(d("-6")))
	assert.True(t, pos.AvgEntryPrice.Equal(d("100")))
}

func TestSweepBorrowNetsDebtAgainstCash(t *testing.T) {
	pf := portfolio.Portfolio{Cash: d("300"), Borrowed: d("1000")}
	sweepBorrow(&pf)
	assert.True(t, pf.Cash.IsZero())
	assert.True(t, pf.Borrowed.Equal(d("700")))

	pf = portfolio.Portfolio{Cash: d("1000"), Borrowed: d("400")}
	sweepBorrow(&pf)
	assert.True(t, pf.Cash.Equal(d("600")))
	assert.True(t, pf.Borrowed.IsZero())
}
