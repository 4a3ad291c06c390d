package trading

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wesleyshe/Claw-Street-Bets/internal/httputil"
)

type Handler struct {
	svc       *Service
	validator *Validator
}

func NewHandler(svc *Service, validator *Validator) *Handler {
	return &Handler{svc: svc, validator: validator}
}

type placeTradeRequest struct {
	Asset       string `json:"asset"`
	Side        string `json:"side"`
	USDNotional string `json:"usd_notional"`
	Qty         string `json:"qty"`
	ClientRef   string `json:"client_ref"`
}

type errorPayload struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Hint  string `json:"hint,omitempty"`
}

func writeTradeErr(w http.ResponseWriter, err error) {
	if te, ok := AsTradeError(err); ok {
		httputil.WriteJSON(w, te.Status, errorPayload{Error: te.Message, Kind: string(te.Kind), Hint: te.Hint})
		return
	}
	httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "internal error"})
}

func (h *Handler) Place(w http.ResponseWriter, r *http.Request, accountID string) {
	var req placeTradeRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}

	raw := RawOrder{AssetID: req.Asset, Side: req.Side, ClientRef: req.ClientRef}
	if req.USDNotional != "" {
		n, err := decimal.NewFromString(req.USDNotional)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid usd_notional"})
			return
		}
		raw.Notional = &n
	}
	if req.Qty != "" {
		q, err := decimal.NewFromString(req.Qty)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid qty"})
			return
		}
		raw.Quantity = &q
	}
	if raw.ClientRef == "" {
		raw.ClientRef = uuid.NewString()
	}

	ord, err := h.validator.Validate(raw)
	if err != nil {
		writeTradeErr(w, err)
		return
	}

	res, err := h.svc.ExecuteTrade(r.Context(), accountID, ord)
	if err != nil {
		writeTradeErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) Cooldown(w http.ResponseWriter, r *http.Request, accountID string) {
	status, err := h.svc.CheckCooldown(r.Context(), accountID, time.Now().UTC())
	if err != nil {
		writeTradeErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request, accountID string) {
	view, err := h.svc.PortfolioMetrics(r.Context(), accountID)
	if err != nil {
		writeTradeErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) Positions(w http.ResponseWriter, r *http.Request, accountID string) {
	positions, err := h.svc.Positions(r.Context(), accountID)
	if err != nil {
		writeTradeErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, positions)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request, accountID string) {
	var before *time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid before timestamp"})
			return
		}
		before = &t
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}
	trades, err := h.svc.TradeHistory(r.Context(), accountID, before, limit)
	if err != nil {
		writeTradeErr(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, trades)
}
