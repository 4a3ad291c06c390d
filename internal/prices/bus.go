package prices

import "sync"

// Tick is one published quote update.
type Tick struct {
	AssetID string `json:"asset_id"`
	PriceUSD string `json:"price_usd"`
	TS      int64  `json:"ts"`
}

// Bus fans ticks out to websocket subscribers. Slow subscribers drop ticks
// instead of blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan []Tick]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan []Tick]struct{})}
}

func (b *Bus) Subscribe() chan []Tick {
	ch := make(chan []Tick, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(ch chan []Tick) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(ticks []Tick) {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- ticks:
		default:
		}
	}
	b.mu.RUnlock()
}
