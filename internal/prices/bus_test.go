package prices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFansOut(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe()
	b := bus.Subscribe()
	defer bus.Unsubscribe(a)
	defer bus.Unsubscribe(b)

	ticks := []Tick{{AssetID: "btc", PriceUSD: "100", TS: 1}}
	bus.Publish(ticks)

	require.Len(t, <-a, 1)
	got := <-b
	require.Len(t, got, 1)
	assert.Equal(t, "btc", got[0].AssetID)
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	// The subscriber buffer holds 16 batches; everything beyond is dropped
	// rather than blocking the publisher.
	for i := 0; i < 40; i++ {
		bus.Publish([]Tick{{AssetID: "btc", PriceUSD: "1", TS: int64(i)}})
	}
	assert.Len(t, ch, 16)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)

	// Double unsubscribe is a no-op.
	bus.Unsubscribe(ch)
}
