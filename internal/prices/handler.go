package prices

import (
	"net/http"

	"github.com/wesleyshe/Claw-Street-Bets/internal/assets"
	"github.com/wesleyshe/Claw-Street-Bets/internal/httputil"
)

type Handler struct {
	provider Provider
	registry *assets.Registry
	WS       *WSHandler
}

func NewHandler(provider Provider, registry *assets.Registry, ws *WSHandler) *Handler {
	return &Handler{provider: provider, registry: registry, WS: ws}
}

type quoteView struct {
	AssetID  string `json:"asset_id"`
	Symbol   string `json:"symbol"`
	PriceUSD string `json:"price_usd"`
}

// List returns the current snapshot for every supported asset that has a
// fresh quote.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.provider.Snapshot(r.Context())
	if err != nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.ErrorResponse{Error: "price feed unavailable", Hint: "retry with backoff"})
		return
	}
	quotes := snap.Quotes()
	out := make([]quoteView, 0, len(quotes))
	for _, a := range h.registry.List() {
		p, ok := quotes[a.ID]
		if !ok {
			continue
		}
		out = append(out, quoteView{AssetID: a.ID, Symbol: a.Symbol, PriceUSD: p.String()})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"quotes": out, "taken_at": snap.TakenAt().UnixMilli()})
}
