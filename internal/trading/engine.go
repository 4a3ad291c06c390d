package trading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wesleyshe/Claw-Street-Bets/internal/assets"
	"github.com/wesleyshe/Claw-Street-Bets/internal/metrics"
	"github.com/wesleyshe/Claw-Street-Bets/internal/portfolio"
	"github.com/wesleyshe/Claw-Street-Bets/internal/prices"
	"github.com/wesleyshe/Claw-Street-Bets/internal/risk"
	"github.com/wesleyshe/Claw-Street-Bets/internal/types"
)

// Service is the trade execution engine: it owns the order transaction and
// is the only writer of portfolios, positions and trades.
type Service struct {
	pool        *pgxpool.Pool
	store       *Store
	provider    prices.Provider
	policyStore *risk.Store
	registry    *assets.Registry
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

func NewService(pool *pgxpool.Pool, store *Store, provider prices.Provider, policyStore *risk.Store, registry *assets.Registry, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		pool:        pool,
		store:       store,
		provider:    provider,
		policyStore: policyStore,
		registry:    registry,
		metrics:     m,
		log:         log,
	}
}

// PortfolioView is the post-settlement snapshot returned with every trade.
type PortfolioView struct {
	Cash             decimal.Decimal  `json:"cash"`
	Borrowed         decimal.Decimal  `json:"borrowed"`
	Equity           decimal.Decimal  `json:"equity"`
	UnrealizedPnL    decimal.Decimal  `json:"unrealized_pnl"`
	GrossNotional    decimal.Decimal  `json:"gross_notional"`
	MaintenanceRatio *decimal.Decimal `json:"maintenance_ratio"`
}

type TradeResult struct {
	Trade                Trade         `json:"trade"`
	Portfolio            PortfolioView `json:"portfolio"`
	LiquidationTriggered bool          `json:"liquidation_triggered"`
	Bankrupt             bool          `json:"bankrupt"`
}

// ExecuteTrade runs one validated order end to end: price snapshot up front,
// then a single transaction covering cooldown, settlement, risk gates,
// liquidation and persistence. Any failure aborts with zero persisted side
// effects.
func (s *Service) ExecuteTrade(ctx context.Context, accountID string, ord Order) (TradeResult, error) {
	started := time.Now()
	res, err := s.executeTrade(ctx, accountID, ord)
	s.metrics.ExecDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		if te, ok := AsTradeError(err); ok {
			s.metrics.TradeRejections.WithLabelValues(string(te.Kind)).Inc()
		}
		return TradeResult{}, err
	}

	s.metrics.TradesExecuted.Inc()
	evt := s.log.Info().
		Str("account_id", accountID).
		Str("asset", res.Trade.AssetID).
		Str("side", string(res.Trade.Side)).
		Str("qty", res.Trade.Quantity.String()).
		Str("price", res.Trade.Price.String()).
		Str("notional", res.Trade.Notional.String())
	if res.LiquidationTriggered {
		evt = evt.Bool("liquidated", true).Bool("bankrupt", res.Bankrupt)
	}
	evt.Msg("trade committed")
	if res.LiquidationTriggered {
		s.metrics.Liquidations.Inc()
		if res.Bankrupt {
			s.metrics.Bankruptcies.Inc()
		}
	}
	return res, nil
}

func (s *Service) executeTrade(ctx context.Context, accountID string, ord Order) (TradeResult, error) {
	// The snapshot is captured once, before the transaction, and used for
	// every valuation in it. Re-fetching mid-flight would break the pre/post
	// comparison in the exposure gate.
	snap, err := s.provider.Snapshot(ctx)
	if err != nil {
		return TradeResult{}, infraErr(KindMarketUnavailable, "price feed unavailable", "retry with backoff")
	}
	if _, err := snap.Price(ord.AssetID); err != nil {
		return TradeResult{}, mapPriceError(err)
	}

	pol, err := s.policyStore.Load(ctx)
	if err != nil {
		return TradeResult{}, s.storageErr(err, "load risk policy")
	}

	now := time.Now().UTC()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return TradeResult{}, s.storageErr(err, "begin tx")
	}
	defer tx.Rollback(ctx)

	account, err := s.store.GetAccount(ctx, tx, accountID)
	if err != nil {
		if isNoRows(err) {
			return TradeResult{}, notFoundErr(KindAccountNotFound, "account not found", "")
		}
		return TradeResult{}, s.storageErr(err, "load account")
	}
	if account.Bankrupt {
		return TradeResult{}, policyErr(KindBankrupt, "account is bankrupt", "bankrupt accounts are permanently barred from trading")
	}

	pf, err := s.store.GetPortfolioForUpdate(ctx, tx, accountID)
	if err != nil {
		if isNoRows(err) {
			return TradeResult{}, notFoundErr(KindAccountNotFound, "portfolio not found", "")
		}
		return TradeResult{}, s.storageErr(err, "lock portfolio")
	}

	lastTradeAt, err := s.store.LastTradeAt(ctx, tx, accountID)
	if err != nil {
		return TradeResult{}, s.storageErr(err, "read last trade")
	}
	if cd := cooldownStatus(lastTradeAt, now, pol.CooldownWindow); cd.Active {
		return TradeResult{}, policyErr(KindCooldownActive,
			fmt.Sprintf("cooldown active, %ds remaining", cd.WaitSeconds),
			"wait for the cooldown window before trading again")
	}

	positions, err := s.store.ListPositions(ctx, tx, accountID)
	if err != nil {
		return TradeResult{}, s.storageErr(err, "list positions")
	}

	st := ledgerState{Portfolio: pf, Positions: positions}
	settled, err := settleOrder(st, ord, snap, pol, now)
	if err != nil {
		return TradeResult{}, err
	}

	for _, pos := range settled.Upserts {
		if err := s.store.UpsertPosition(ctx, tx, pos); err != nil {
			return TradeResult{}, s.storageErr(err, "upsert position")
		}
	}
	for _, assetID := range settled.Deletes {
		if err := s.store.DeletePosition(ctx, tx, accountID, assetID); err != nil {
			return TradeResult{}, s.storageErr(err, "delete position")
		}
	}

	tradeID, err := s.store.InsertTrade(ctx, tx, settled.Trade)
	if err != nil {
		return TradeResult{}, s.storageErr(err, "insert trade")
	}
	settled.Trade.ID = tradeID

	if err := s.store.InsertActivity(ctx, tx, accountID, types.ActivityTrade, s.fillText(settled.Trade)); err != nil {
		return TradeResult{}, s.storageErr(err, "insert activity")
	}

	if settled.Liquidated {
		if err := s.store.InsertLiquidation(ctx, tx, *settled.Liquidation); err != nil {
			return TradeResult{}, s.storageErr(err, "insert liquidation")
		}
		body := fmt.Sprintf("forced liquidation at maintenance ratio %s (threshold %s), resulting equity %s",
			settled.Liquidation.MaintenanceRatio.StringFixed(4),
			settled.Liquidation.Threshold.String(),
			settled.Liquidation.Equity.StringFixed(2))
		if settled.Bankrupt {
			body += "; account is bankrupt"
		}
		if err := s.store.InsertActivity(ctx, tx, accountID, types.ActivityLiquidation, body); err != nil {
			return TradeResult{}, s.storageErr(err, "insert liquidation activity")
		}
	}

	if err := s.store.UpdatePortfolio(ctx, tx, settled.Portfolio); err != nil {
		return TradeResult{}, s.storageErr(err, "update portfolio")
	}
	if err := s.store.UpdateAccountAfterTrade(ctx, tx, accountID, settled.Bankrupt, now); err != nil {
		return TradeResult{}, s.storageErr(err, "update account")
	}

	if err := tx.Commit(ctx); err != nil {
		return TradeResult{}, s.storageErr(err, "commit")
	}

	return TradeResult{
		Trade: settled.Trade,
		Portfolio: PortfolioView{
			Cash:             settled.Portfolio.Cash,
			Borrowed:         settled.Portfolio.Borrowed,
			Equity:           settled.Post.Equity,
			UnrealizedPnL:    settled.Post.UnrealizedPnL,
			GrossNotional:    settled.Post.GrossNotional,
			MaintenanceRatio: settled.Post.MaintenanceRatio,
		},
		LiquidationTriggered: settled.Liquidated,
		Bankrupt:             settled.Bankrupt,
	}, nil
}

func (s *Service) storageErr(err error, op string) *Error {
	s.log.Error().Err(err).Str("op", op).Msg("trade storage failure")
	return infraErr(KindStorage, "storage failure", "retry with backoff")
}

func (s *Service) fillText(t Trade) string {
	symbol := strings.ToUpper(t.AssetID)
	if a, ok := s.registry.Lookup(t.AssetID); ok {
		symbol = a.Symbol
	}
	return fmt.Sprintf("%s %s %s @ %s for %s USD",
		strings.ToUpper(string(t.Side)), t.Quantity.String(), symbol, t.Price.String(), t.Notional.StringFixed(2))
}

// PortfolioMetrics values an account's current holdings against a fresh
// snapshot. Read-only; used by the HTTP layer.
func (s *Service) PortfolioMetrics(ctx context.Context, accountID string) (PortfolioView, error) {
	snap, err := s.provider.Snapshot(ctx)
	if err != nil {
		return PortfolioView{}, infraErr(KindMarketUnavailable, "price feed unavailable", "retry with backoff")
	}

	var pf portfolio.Portfolio
	err = s.pool.QueryRow(ctx,
		"select account_id, cash, borrowed, updated_at from portfolios where account_id = $1",
		accountID).Scan(&pf.AccountID, &pf.Cash, &pf.Borrowed, &pf.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return PortfolioView{}, notFoundErr(KindAccountNotFound, "portfolio not found", "")
		}
		return PortfolioView{}, s.storageErr(err, "load portfolio")
	}

	positions, err := s.Positions(ctx, accountID)
	if err != nil {
		return PortfolioView{}, err
	}

	m, err := portfolio.Compute(pf, positions, snap)
	if err != nil {
		return PortfolioView{}, mapPriceError(err)
	}
	return PortfolioView{
		Cash:             pf.Cash,
		Borrowed:         pf.Borrowed,
		Equity:           m.Equity,
		UnrealizedPnL:    m.UnrealizedPnL,
		GrossNotional:    m.GrossNotional,
		MaintenanceRatio: m.MaintenanceRatio,
	}, nil
}

func (s *Service) Positions(ctx context.Context, accountID string) ([]portfolio.Position, error) {
	rows, err := s.pool.Query(ctx,
		"select account_id, asset_id, quantity, avg_entry_price, updated_at from positions where account_id = $1 order by asset_id",
		accountID)
	if err != nil {
		return nil, s.storageErr(err, "list positions")
	}
	defer rows.Close()
	out := make([]portfolio.Position, 0, 8)
	for rows.Next() {
		var p portfolio.Position
		if err := rows.Scan(&p.AccountID, &p.AssetID, &p.Quantity, &p.AvgEntryPrice, &p.UpdatedAt); err != nil {
			return nil, s.storageErr(err, "scan position")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr(err, "list positions")
	}
	return out, nil
}

// TradeHistory lists an account's fills, newest first.
func (s *Service) TradeHistory(ctx context.Context, accountID string, before *time.Time, limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx, `
		select id, account_id, asset_id, side, quantity, price, notional, coalesce(client_ref, ''), created_at
		from trades
		where account_id = $1
		  and ($2::timestamptz is null or created_at < $2)
		order by created_at desc
		limit $3
	`, accountID, before, limit)
	if err != nil {
		return nil, s.storageErr(err, "list trades")
	}
	defer rows.Close()
	out := make([]Trade, 0, limit)
	for rows.Next() {
		var t Trade
		var side string
		if err := rows.Scan(&t.ID, &t.AccountID, &t.AssetID, &side, &t.Quantity, &t.Price, &t.Notional, &t.ClientRef, &t.CreatedAt); err != nil {
			return nil, s.storageErr(err, "scan trade")
		}
		t.Side = types.Side(side)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr(err, "list trades")
	}
	return out, nil
}
