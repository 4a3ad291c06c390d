package trading

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wesleyshe/Claw-Street-Bets/internal/accounts"
	"github.com/wesleyshe/Claw-Street-Bets/internal/portfolio"
	"github.com/wesleyshe/Claw-Street-Bets/internal/types"
)

// Store holds the raw SQL the engine runs inside one order transaction.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (s *Store) GetAccount(ctx context.Context, tx pgx.Tx, accountID string) (accounts.Account, error) {
	var a accounts.Account
	err := tx.QueryRow(ctx,
		"select id, username, autonomous, bankrupt, last_action_at, created_at from accounts where id = $1",
		accountID).Scan(&a.ID, &a.Username, &a.Autonomous, &a.Bankrupt, &a.LastActionAt, &a.CreatedAt)
	return a, err
}

// GetPortfolioForUpdate locks the portfolio row for the rest of the
// transaction. This is the per-account serialization point: a second order
// for the same account blocks here until the first commits or aborts.
func (s *Store) GetPortfolioForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (portfolio.Portfolio, error) {
	var pf portfolio.Portfolio
	err := tx.QueryRow(ctx,
		"select account_id, cash, borrowed, updated_at from portfolios where account_id = $1 for update",
		accountID).Scan(&pf.AccountID, &pf.Cash, &pf.Borrowed, &pf.UpdatedAt)
	return pf, err
}

func (s *Store) ListPositions(ctx context.Context, tx pgx.Tx, accountID string) ([]portfolio.Position, error) {
	rows, err := tx.Query(ctx,
		"select account_id, asset_id, quantity, avg_entry_price, updated_at from positions where account_id = $1 order by asset_id",
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []portfolio.Position
	for rows.Next() {
		var p portfolio.Position
		if err := rows.Scan(&p.AccountID, &p.AssetID, &p.Quantity, &p.AvgEntryPrice, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) LastTradeAt(ctx context.Context, tx pgx.Tx, accountID string) (*time.Time, error) {
	var at time.Time
	err := tx.QueryRow(ctx,
		"select created_at from trades where account_id = $1 order by created_at desc limit 1",
		accountID).Scan(&at)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &at, nil
}

func (s *Store) UpsertPosition(ctx context.Context, tx pgx.Tx, p portfolio.Position) error {
	_, err := tx.Exec(ctx, `
		insert into positions (account_id, asset_id, quantity, avg_entry_price, updated_at)
		values ($1, $2, $3, $4, $5)
		on conflict (account_id, asset_id) do update
		set quantity = excluded.quantity, avg_entry_price = excluded.avg_entry_price, updated_at = excluded.updated_at
	`, p.AccountID, p.AssetID, p.Quantity, p.AvgEntryPrice, p.UpdatedAt)
	return err
}

func (s *Store) DeletePosition(ctx context.Context, tx pgx.Tx, accountID, assetID string) error {
	_, err := tx.Exec(ctx, "delete from positions where account_id = $1 and asset_id = $2", accountID, assetID)
	return err
}

func (s *Store) InsertTrade(ctx context.Context, tx pgx.Tx, t Trade) (string, error) {
	var id string
	err := tx.QueryRow(ctx,
		"insert into trades (account_id, asset_id, side, quantity, price, notional, client_ref, created_at) values ($1,$2,$3,$4,$5,$6,$7,$8) returning id",
		t.AccountID, t.AssetID, string(t.Side), t.Quantity, t.Price, t.Notional, nilIfEmpty(t.ClientRef), t.CreatedAt).Scan(&id)
	return id, err
}

func (s *Store) InsertLiquidation(ctx context.Context, tx pgx.Tx, ev LiquidationEvent) error {
	_, err := tx.Exec(ctx,
		"insert into liquidations (account_id, equity, maintenance_ratio, threshold, created_at) values ($1,$2,$3,$4,$5)",
		ev.AccountID, ev.Equity, ev.MaintenanceRatio, ev.Threshold, ev.At)
	return err
}

func (s *Store) InsertActivity(ctx context.Context, tx pgx.Tx, accountID string, kind types.ActivityKind, body string) error {
	_, err := tx.Exec(ctx,
		"insert into activity (account_id, kind, body, created_at) values ($1,$2,$3,$4)",
		accountID, string(kind), body, time.Now().UTC())
	return err
}

func (s *Store) UpdatePortfolio(ctx context.Context, tx pgx.Tx, pf portfolio.Portfolio) error {
	_, err := tx.Exec(ctx,
		"update portfolios set cash = $1, borrowed = $2, updated_at = $3 where account_id = $4",
		pf.Cash, pf.Borrowed, pf.UpdatedAt, pf.AccountID)
	return err
}

func (s *Store) UpdateAccountAfterTrade(ctx context.Context, tx pgx.Tx, accountID string, bankrupt bool, at time.Time) error {
	_, err := tx.Exec(ctx,
		"update accounts set bankrupt = bankrupt or $1, last_action_at = $2 where id = $3",
		bankrupt, at, accountID)
	return err
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
