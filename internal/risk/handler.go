package risk

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wesleyshe/Claw-Street-Bets/internal/httputil"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type policyView struct {
	MaxExposureMultiple  string `json:"max_exposure_multiple"`
	MaintenanceThreshold string `json:"maintenance_threshold"`
	CooldownSeconds      int    `json:"cooldown_seconds"`
	StartingCash         string `json:"starting_cash"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	pol, err := h.store.Load(r.Context())
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to load risk config"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, policyView{
		MaxExposureMultiple:  pol.MaxExposureMultiple.String(),
		MaintenanceThreshold: pol.MaintenanceThreshold.String(),
		CooldownSeconds:      int(pol.CooldownWindow / time.Second),
		StartingCash:         pol.StartingCash.String(),
	})
}

// Update replaces the stored override. Guarded by the internal token at the
// router.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req policyView
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	pol := DefaultPolicy()
	if v, err := decimal.NewFromString(req.MaxExposureMultiple); err == nil && v.GreaterThan(decimal.Zero) {
		pol.MaxExposureMultiple = v
	}
	if v, err := decimal.NewFromString(req.MaintenanceThreshold); err == nil && v.GreaterThan(decimal.Zero) && v.LessThan(decimal.NewFromInt(1)) {
		pol.MaintenanceThreshold = v
	}
	if req.CooldownSeconds > 0 {
		pol.CooldownWindow = time.Duration(req.CooldownSeconds) * time.Second
	}
	if v, err := decimal.NewFromString(req.StartingCash); err == nil && v.GreaterThan(decimal.Zero) {
		pol.StartingCash = v
	}
	if err := h.store.Update(r.Context(), pol); err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "failed to update risk config"})
		return
	}
	h.Get(w, r)
}
