package trading

import (
	"context"
	"time"
)

// CooldownStatus is the pre-flight answer to "may this account trade now".
type CooldownStatus struct {
	Active      bool  `json:"active"`
	WaitSeconds int64 `json:"wait_seconds"`
}

// cooldownStatus measures the gap since the most recent trade against the
// policy window. The remaining wait is rounded up to whole seconds.
func cooldownStatus(lastTradeAt *time.Time, now time.Time, window time.Duration) CooldownStatus {
	if lastTradeAt == nil {
		return CooldownStatus{}
	}
	elapsed := now.Sub(*lastTradeAt)
	if elapsed >= window {
		return CooldownStatus{}
	}
	remainingMs := (window - elapsed).Milliseconds()
	return CooldownStatus{Active: true, WaitSeconds: (remainingMs + 999) / 1000}
}

// CheckCooldown is the read-only pre-flight check. The authoritative check
// runs again inside the trade transaction.
func (s *Service) CheckCooldown(ctx context.Context, accountID string, now time.Time) (CooldownStatus, error) {
	pol, err := s.policyStore.Load(ctx)
	if err != nil {
		return CooldownStatus{}, err
	}
	var lastTradeAt *time.Time
	err = s.pool.QueryRow(ctx,
		"select created_at from trades where account_id = $1 order by created_at desc limit 1",
		accountID).Scan(&lastTradeAt)
	if err != nil && !isNoRows(err) {
		return CooldownStatus{}, err
	}
	return cooldownStatus(lastTradeAt, now, pol.CooldownWindow), nil
}
