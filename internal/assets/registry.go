package assets

import "sort"

// Asset is one entry in the fixed allow-list of tradeable instruments.
type Asset struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	FeedID string `json:"feed_id"`
}

type Registry struct {
	byID map[string]Asset
}

func NewRegistry(list []Asset) *Registry {
	byID := make(map[string]Asset, len(list))
	for _, a := range list {
		byID[a.ID] = a
	}
	return &Registry{byID: byID}
}

// Default returns the registry of supported assets. The set is fixed at
// deploy time; unknown asset ids are rejected at order validation.
func Default() *Registry {
	return NewRegistry([]Asset{
		{ID: "btc", Symbol: "BTC", FeedID: "bitcoin"},
		{ID: "eth", Symbol: "ETH", FeedID: "ethereum"},
		{ID: "sol", Symbol: "SOL", FeedID: "solana"},
		{ID: "doge", Symbol: "DOGE", FeedID: "dogecoin"},
		{ID: "pepe", Symbol: "PEPE", FeedID: "pepe"},
	})
}

func (r *Registry) Lookup(id string) (Asset, bool) {
	a, ok := r.byID[id]
	return a, ok
}

func (r *Registry) Supported(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *Registry) List() []Asset {
	out := make([]Asset, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
