package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnLifetime = time.Hour
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Migrate applies the idempotent schema bootstrap. Statements run in order;
// each is safe to re-run on startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create extension if not exists pgcrypto`,
		`create table if not exists accounts (
			id uuid primary key default gen_random_uuid(),
			username text not null unique,
			password_hash text not null,
			autonomous boolean not null default false,
			bankrupt boolean not null default false,
			last_action_at timestamptz not null default now(),
			created_at timestamptz not null default now()
		)`,
		`create table if not exists portfolios (
			account_id uuid primary key references accounts(id),
			cash numeric not null default 0,
			borrowed numeric not null default 0 check (borrowed >= 0),
			updated_at timestamptz not null default now()
		)`,
		`create table if not exists positions (
			account_id uuid not null references accounts(id),
			asset_id text not null,
			quantity numeric not null,
			avg_entry_price numeric not null check (avg_entry_price > 0),
			updated_at timestamptz not null default now(),
			primary key (account_id, asset_id)
		)`,
		`create table if not exists trades (
			id uuid primary key default gen_random_uuid(),
			account_id uuid not null references accounts(id),
			asset_id text not null,
			side text not null,
			quantity numeric not null,
			price numeric not null,
			notional numeric not null,
			client_ref text,
			created_at timestamptz not null default now()
		)`,
		`create index if not exists trades_account_created_idx on trades (account_id, created_at desc)`,
		`create table if not exists liquidations (
			id uuid primary key default gen_random_uuid(),
			account_id uuid not null references accounts(id),
			equity numeric not null,
			maintenance_ratio numeric not null,
			threshold numeric not null,
			created_at timestamptz not null default now()
		)`,
		`create table if not exists activity (
			id uuid primary key default gen_random_uuid(),
			account_id uuid not null references accounts(id),
			kind text not null,
			body text not null,
			created_at timestamptz not null default now()
		)`,
		`create table if not exists risk_config (
			id int primary key,
			max_exposure_multiple text not null,
			maintenance_threshold text not null,
			cooldown_seconds int not null,
			starting_cash text not null,
			updated_at timestamptz not null default now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
