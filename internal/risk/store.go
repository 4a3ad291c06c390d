package risk

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store loads the policy from the single-row risk_config table, falling back
// to compiled defaults when the row is absent or a column holds junk.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Load(ctx context.Context) (Policy, error) {
	pol := DefaultPolicy()
	var (
		maxExposure  string
		maintenance  string
		cooldownSecs int
		startingCash string
	)
	err := s.pool.QueryRow(ctx, `
		select max_exposure_multiple, maintenance_threshold, cooldown_seconds, starting_cash
		from risk_config
		where id = 1
	`).Scan(&maxExposure, &maintenance, &cooldownSecs, &startingCash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pol, nil
		}
		return pol, err
	}

	if v, ok := parsePolicyDecimal(maxExposure); ok {
		pol.MaxExposureMultiple = v
	}
	if v, ok := parsePolicyDecimal(maintenance); ok && v.LessThan(decimal.NewFromInt(1)) {
		pol.MaintenanceThreshold = v
	}
	if cooldownSecs > 0 {
		pol.CooldownWindow = time.Duration(cooldownSecs) * time.Second
	}
	if v, ok := parsePolicyDecimal(startingCash); ok {
		pol.StartingCash = v
	}
	return pol, nil
}

func (s *Store) Update(ctx context.Context, pol Policy) error {
	_, err := s.pool.Exec(ctx, `
		insert into risk_config (id, max_exposure_multiple, maintenance_threshold, cooldown_seconds, starting_cash, updated_at)
		values (1, $1, $2, $3, $4, $5)
		on conflict (id) do update
		set max_exposure_multiple = excluded.max_exposure_multiple,
		    maintenance_threshold = excluded.maintenance_threshold,
		    cooldown_seconds = excluded.cooldown_seconds,
		    starting_cash = excluded.starting_cash,
		    updated_at = excluded.updated_at
	`, pol.MaxExposureMultiple.String(), pol.MaintenanceThreshold.String(), int(pol.CooldownWindow/time.Second), pol.StartingCash.String(), time.Now().UTC())
	return err
}

func parsePolicyDecimal(raw string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(raw)
	if err != nil || !v.GreaterThan(decimal.Zero) {
		return decimal.Zero, false
	}
	return v, true
}
