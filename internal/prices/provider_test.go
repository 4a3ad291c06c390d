package prices

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyshe/Claw-Street-Bets/internal/assets"
)

func TestSnapshotPriceFailsClosed(t *testing.T) {
	snap := NewSnapshot(map[string]decimal.Decimal{
		"btc":  decimal.NewFromInt(100),
		"doge": decimal.Zero,
	}, time.Now())

	p, err := snap.Price("btc")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(100)))

	_, err = snap.Price("eth")
	assert.True(t, errors.Is(err, ErrMissingPrice))

	_, err = snap.Price("doge")
	assert.True(t, errors.Is(err, ErrMissingPrice), "a zero quote is as bad as no quote")
}

func TestFeedClientFetchesAndCaches(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Contains(t, r.URL.Query().Get("ids"), "bitcoin")
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":64000.5},"ethereum":{"usd":3100},"solana":{"usd":0}}`)
	}))
	defer srv.Close()

	c := NewFeedClient(srv.URL, assets.Default(), time.Minute, zerolog.Nop())

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	p, err := snap.Price("btc")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromFloat(64000.5)))

	_, err = snap.Price("sol")
	assert.Error(t, err, "non-positive feed values are dropped")

	// Second call inside the TTL is served from cache.
	_, err = c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFeedClientServesStaleThenFailsClosed(t *testing.T) {
	healthy := atomic.Bool{}
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"bitcoin":{"usd":100}}`)
	}))
	defer srv.Close()

	ttl := 50 * time.Millisecond
	c := NewFeedClient(srv.URL, assets.Default(), ttl, zerolog.Nop())

	_, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	healthy.Store(false)

	// Just past the TTL: the stale snapshot is still acceptable.
	time.Sleep(ttl + 10*time.Millisecond)
	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	_, err = snap.Price("btc")
	assert.NoError(t, err)

	// Past twice the TTL the client refuses to serve stale data.
	time.Sleep(2 * ttl)
	_, err = c.Snapshot(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestFeedClientErrorWithEmptyCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFeedClient(srv.URL, assets.Default(), time.Minute, zerolog.Nop())
	_, err := c.Snapshot(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(map[string]decimal.Decimal{"btc": decimal.NewFromInt(42)})
	snap, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	got, err := snap.Price("btc")
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(42)))
}
