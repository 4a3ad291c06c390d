package prices

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMissingPrice means one specific asset has no positive quote in the
// snapshot. ErrUnavailable means the feed itself could not be reached and
// the caller may retry.
var (
	ErrMissingPrice = errors.New("missing price")
	ErrUnavailable  = errors.New("price feed unavailable")
)

// Snapshot is an immutable view of the feed taken at one instant. The engine
// captures a snapshot once per order and uses it for the whole transaction so
// pre- and post-trade valuations see the same marks.
type Snapshot struct {
	quotes  map[string]decimal.Decimal
	takenAt time.Time
}

func NewSnapshot(quotes map[string]decimal.Decimal, takenAt time.Time) Snapshot {
	copied := make(map[string]decimal.Decimal, len(quotes))
	for id, p := range quotes {
		copied[id] = p
	}
	return Snapshot{quotes: copied, takenAt: takenAt}
}

// Price fails closed: an absent or non-positive quote is an error, never a
// zero value.
func (s Snapshot) Price(assetID string) (decimal.Decimal, error) {
	p, ok := s.quotes[assetID]
	if !ok || !p.GreaterThan(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrMissingPrice, assetID)
	}
	return p, nil
}

func (s Snapshot) TakenAt() time.Time {
	return s.takenAt
}

func (s Snapshot) Quotes() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.quotes))
	for id, p := range s.quotes {
		out[id] = p
	}
	return out
}

func (s Snapshot) Empty() bool {
	return len(s.quotes) == 0
}
