package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Account is one participant in the shared economy. Bankrupt is terminal:
// once set, the engine rejects every further order.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Autonomous   bool      `json:"autonomous"`
	Bankrupt     bool      `json:"bankrupt"`
	LastActionAt time.Time `json:"last_action_at"`
	CreatedAt    time.Time `json:"created_at"`
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

var ErrNotFound = errors.New("account not found")

// Create registers an account inside the caller's transaction and seeds its
// portfolio with the starting cash.
func (s *Service) Create(ctx context.Context, tx pgx.Tx, username, passwordHash string, autonomous bool, startingCash decimal.Decimal) (string, error) {
	var id string
	now := time.Now().UTC()
	err := tx.QueryRow(ctx,
		"insert into accounts (username, password_hash, autonomous, bankrupt, last_action_at, created_at) values ($1, $2, $3, false, $4, $4) returning id",
		username, passwordHash, autonomous, now).Scan(&id)
	if err != nil {
		return "", err
	}
	_, err = tx.Exec(ctx,
		"insert into portfolios (account_id, cash, borrowed, updated_at) values ($1, $2, 0, $3)",
		id, startingCash, now)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) GetByID(ctx context.Context, accountID string) (Account, error) {
	var a Account
	err := s.pool.QueryRow(ctx,
		"select id, username, autonomous, bankrupt, last_action_at, created_at from accounts where id = $1",
		accountID).Scan(&a.ID, &a.Username, &a.Autonomous, &a.Bankrupt, &a.LastActionAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return a, ErrNotFound
		}
		return a, err
	}
	return a, nil
}

// ListAutonomous returns the accounts the agent scheduler may trade for.
// Bankrupt accounts are excluded; they are barred from trading permanently.
func (s *Service) ListAutonomous(ctx context.Context) ([]Account, error) {
	rows, err := s.pool.Query(ctx,
		"select id, username, autonomous, bankrupt, last_action_at, created_at from accounts where autonomous and not bankrupt order by created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Autonomous, &a.Bankrupt, &a.LastActionAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
