package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/wesleyshe/Claw-Street-Bets/internal/accounts"
	"github.com/wesleyshe/Claw-Street-Bets/internal/risk"
	"github.com/wesleyshe/Claw-Street-Bets/internal/types"
)

type Service struct {
	pool        *pgxpool.Pool
	issuer      string
	secret      []byte
	ttl         time.Duration
	accountSvc  *accounts.Service
	policyStore *risk.Store
}

func NewService(pool *pgxpool.Pool, issuer string, secret []byte, ttl time.Duration, accountSvc *accounts.Service, policyStore *risk.Store) *Service {
	return &Service{pool: pool, issuer: issuer, secret: secret, ttl: ttl, accountSvc: accountSvc, policyStore: policyStore}
}

var usernameRe = regexp.MustCompile(`^[a-z0-9_]{3,24}$`)

// Register creates the account and seeds its portfolio with the policy's
// starting cash, atomically.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernameRe.MatchString(username) {
		return "", errors.New("username must be 3-24 chars of a-z, 0-9 or _")
	}
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	pol, err := s.policyStore.Load(ctx)
	if err != nil {
		return "", err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	accountID, err := s.accountSvc.Create(ctx, tx, username, string(hash), false, pol.StartingCash)
	if err != nil {
		return "", errors.New("username already taken")
	}
	_, err = tx.Exec(ctx,
		"insert into activity (account_id, kind, body, created_at) values ($1, $2, $3, $4)",
		accountID, string(types.ActivityRegistered), "account registered with "+pol.StartingCash.StringFixed(2)+" USD", time.Now().UTC())
	if err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return accountID, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var accountID, hash string
	err := s.pool.QueryRow(ctx,
		"select id, password_hash from accounts where username = $1", username).Scan(&accountID, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errors.New("invalid credentials")
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}
	return s.signToken(accountID)
}

func (s *Service) signToken(accountID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ParseToken(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
