package prices

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wesleyshe/Claw-Street-Bets/internal/assets"
)

// Provider supplies the engine with a resolved snapshot. Implementations own
// their refresh policy; the engine never re-fetches mid-transaction.
type Provider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// FeedClient pulls quotes from a simple-price style endpoint
// (GET {url}?ids=bitcoin,ethereum&vs_currencies=usd) and caches the result
// for a TTL. A stale cache is served while the feed is briefly down; past
// twice the TTL the client fails closed.
type FeedClient struct {
	http     *resty.Client
	registry *assets.Registry
	ttl      time.Duration
	log      zerolog.Logger

	mu     sync.RWMutex
	cached Snapshot
}

func NewFeedClient(baseURL string, registry *assets.Registry, ttl time.Duration, log zerolog.Logger) *FeedClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	return &FeedClient{
		http:     client,
		registry: registry,
		ttl:      ttl,
		log:      log,
	}
}

func (c *FeedClient) Snapshot(ctx context.Context) (Snapshot, error) {
	c.mu.RLock()
	cached := c.cached
	c.mu.RUnlock()
	now := time.Now().UTC()
	if !cached.Empty() && now.Sub(cached.TakenAt()) < c.ttl {
		return cached, nil
	}

	snap, err := c.fetch(ctx, now)
	if err != nil {
		if !cached.Empty() && now.Sub(cached.TakenAt()) < 2*c.ttl {
			c.log.Warn().Err(err).Msg("price feed fetch failed, serving stale snapshot")
			return cached, nil
		}
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.mu.Lock()
	c.cached = snap
	c.mu.Unlock()
	return snap, nil
}

func (c *FeedClient) fetch(ctx context.Context, now time.Time) (Snapshot, error) {
	list := c.registry.List()
	feedIDs := make([]string, 0, len(list))
	for _, a := range list {
		feedIDs = append(feedIDs, a.FeedID)
	}

	var payload map[string]map[string]float64
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(feedIDs, ",")).
		SetQueryParam("vs_currencies", "usd").
		SetResult(&payload).
		Get("")
	if err != nil {
		return Snapshot{}, err
	}
	if resp.IsError() {
		return Snapshot{}, fmt.Errorf("feed returned %s", resp.Status())
	}

	quotes := make(map[string]decimal.Decimal, len(list))
	for _, a := range list {
		entry, ok := payload[a.FeedID]
		if !ok {
			continue
		}
		usd, ok := entry["usd"]
		if !ok || usd <= 0 {
			continue
		}
		quotes[a.ID] = decimal.NewFromFloat(usd)
	}
	if len(quotes) == 0 {
		return Snapshot{}, fmt.Errorf("feed returned no usable quotes")
	}
	return NewSnapshot(quotes, now), nil
}

// StaticProvider serves a fixed snapshot. Used in tests and as the offline
// fallback when no feed URL is configured.
type StaticProvider struct {
	snap Snapshot
}

func NewStaticProvider(quotes map[string]decimal.Decimal) *StaticProvider {
	return &StaticProvider{snap: NewSnapshot(quotes, time.Now().UTC())}
}

func (p *StaticProvider) Snapshot(ctx context.Context) (Snapshot, error) {
	return p.snap, nil
}
