package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wesleyshe/Claw-Street-Bets/internal/httputil"
)

type Handler struct {
	pool      *pgxpool.Pool
	startedAt time.Time
}

func NewHandler(pool *pgxpool.Pool, startedAt time.Time) *Handler {
	start := startedAt.UTC()
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &Handler{pool: pool, startedAt: start}
}

type liveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	UptimeSec int64  `json:"uptime_sec"`
}

type readyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	UptimeSec int64  `json:"uptime_sec"`
	Database  dbStat `json:"database"`
}

type dbStat struct {
	Reachable bool   `json:"reachable"`
	PingMs    int64  `json:"ping_ms"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) uptime(now time.Time) int64 {
	d := now.Sub(h.startedAt)
	if d < 0 {
		return 0
	}
	return int64(d.Seconds())
}

// Live does not touch the database.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	httputil.WriteJSON(w, http.StatusOK, liveResponse{
		Status:    "ok",
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: h.uptime(now),
	})
}

// Ready pings the database and returns 503 when it is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	stat := dbStat{}
	pingCtx, cancel := context.WithTimeout(r.Context(), time.Second)
	started := time.Now()
	err := h.pool.Ping(pingCtx)
	cancel()
	stat.PingMs = time.Since(started).Milliseconds()
	status := "ok"
	httpStatus := http.StatusOK
	if err != nil {
		stat.Error = err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else {
		stat.Reachable = true
	}
	httputil.WriteJSON(w, httpStatus, readyResponse{
		Status:    status,
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: h.uptime(now),
		Database:  stat,
	})
}
