package trading

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyshe/Claw-Street-Bets/internal/assets"
	"github.com/wesleyshe/Claw-Street-Bets/internal/types"
)

func testValidator() *Validator {
	return NewValidator(assets.Default())
}

func TestValidateNormalizesAssetAndSide(t *testing.T) {
	n := decimal.NewFromInt(100)
	ord, err := testValidator().Validate(RawOrder{AssetID: "  BTC ", Side: "Buy", Notional: &n})
	require.NoError(t, err)
	assert.Equal(t, "btc", ord.AssetID)
	assert.Equal(t, types.SideBuy, ord.Side)
}

func TestValidateUnknownAsset(t *testing.T) {
	n := decimal.NewFromInt(100)
	_, err := testValidator().Validate(RawOrder{AssetID: "shib", Side: "buy", Notional: &n})
	assert.Equal(t, KindUnknownAsset, errKind(t, err))
}

func TestValidateInvalidSide(t *testing.T) {
	n := decimal.NewFromInt(100)
	_, err := testValidator().Validate(RawOrder{AssetID: "btc", Side: "hold", Notional: &n})
	assert.Equal(t, KindInvalidOrder, errKind(t, err))
}

func TestValidateExactlyOneSizeField(t *testing.T) {
	n := decimal.NewFromInt(100)
	q := decimal.NewFromInt(1)

	_, err := testValidator().Validate(RawOrder{AssetID: "btc", Side: "buy"})
	assert.Equal(t, KindExactlyOneSizeField, errKind(t, err))

	_, err = testValidator().Validate(RawOrder{AssetID: "btc", Side: "buy", Notional: &n, Quantity: &q})
	assert.Equal(t, KindExactlyOneSizeField, errKind(t, err))
}

func TestValidateNonPositiveSize(t *testing.T) {
	zero := decimal.Zero
	neg := decimal.NewFromInt(-5)

	_, err := testValidator().Validate(RawOrder{AssetID: "btc", Side: "buy", Notional: &zero})
	assert.Equal(t, KindInvalidOrder, errKind(t, err))

	_, err = testValidator().Validate(RawOrder{AssetID: "btc", Side: "sell", Quantity: &neg})
	assert.Equal(t, KindInvalidOrder, errKind(t, err))
}

func TestValidationErrorsAreNotRetryable(t *testing.T) {
	_, err := testValidator().Validate(RawOrder{AssetID: "btc", Side: "buy"})
	te, ok := AsTradeError(err)
	require.True(t, ok)
	assert.False(t, te.Retryable())
	assert.Equal(t, 400, te.Status)
}
