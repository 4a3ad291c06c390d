package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	assert.True(t, reg.Supported("btc"))
	assert.False(t, reg.Supported("BTC"), "ids are lowercase, normalization happens upstream")
	assert.False(t, reg.Supported("shib"))

	a, ok := reg.Lookup("doge")
	require.True(t, ok)
	assert.Equal(t, "dogecoin", a.FeedID)
}

func TestListIsStable(t *testing.T) {
	reg := Default()
	first := reg.List()
	second := reg.List()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}
