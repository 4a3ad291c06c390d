package prices

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// StartPublisher refreshes the provider snapshot on an interval and pushes
// the quotes to the bus until the context is cancelled.
func StartPublisher(ctx context.Context, provider Provider, bus *Bus, interval time.Duration, log zerolog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			snap, err := provider.Snapshot(ctx)
			if err != nil {
				log.Debug().Err(err).Msg("quote publish skipped")
				continue
			}
			quotes := snap.Quotes()
			ticks := make([]Tick, 0, len(quotes))
			ts := snap.TakenAt().UnixMilli()
			for id, p := range quotes {
				ticks = append(ticks, Tick{AssetID: id, PriceUSD: p.String(), TS: ts})
			}
			sort.Slice(ticks, func(i, j int) bool { return ticks[i].AssetID < ticks[j].AssetID })
			bus.Publish(ticks)
		}
	}()
}
