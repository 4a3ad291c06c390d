package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wesleyshe/Claw-Street-Bets/internal/auth"
	"github.com/wesleyshe/Claw-Street-Bets/internal/health"
	"github.com/wesleyshe/Claw-Street-Bets/internal/httputil"
	"github.com/wesleyshe/Claw-Street-Bets/internal/prices"
	"github.com/wesleyshe/Claw-Street-Bets/internal/risk"
	"github.com/wesleyshe/Claw-Street-Bets/internal/trading"
)

type RouterDeps struct {
	AuthHandler   *auth.Handler
	TradeHandler  *trading.Handler
	PricesHandler *prices.Handler
	RiskHandler   *risk.Handler
	HealthHandler *health.Handler
	AuthService   *auth.Service
	InternalToken string
	Registry      *prometheus.Registry
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(SecurityHeaders)
	r.Use(RateLimitMiddleware)

	r.Get("/health", d.HealthHandler.Live)
	r.Get("/health/ready", d.HealthHandler.Ready)
	if d.Registry != nil {
		r.Get("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}).ServeHTTP)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.AuthHandler.Register)
			r.Post("/login", d.AuthHandler.Login)
		})

		r.Get("/prices", d.PricesHandler.List)
		r.Get("/prices/ws", d.PricesHandler.WS.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))
			r.Get("/me", withAccount(d.AuthHandler.Me))
			r.Post("/trades", withAccount(d.TradeHandler.Place))
			r.Get("/trades", withAccount(d.TradeHandler.History))
			r.Get("/portfolio", withAccount(d.TradeHandler.Portfolio))
			r.Get("/positions", withAccount(d.TradeHandler.Positions))
			r.Get("/cooldown", withAccount(d.TradeHandler.Cooldown))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(InternalAuth(d.InternalToken))
			r.Get("/risk", d.RiskHandler.Get)
			r.Post("/risk", d.RiskHandler.Update)
		})
	})

	return r
}

// withAccount adapts account-scoped handlers to plain chi handlers.
func withAccount(h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := AccountID(r)
		if !ok {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
			return
		}
		h(w, r, accountID)
	}
}
