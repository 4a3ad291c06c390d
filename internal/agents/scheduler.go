package agents

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/wesleyshe/Claw-Street-Bets/internal/accounts"
	"github.com/wesleyshe/Claw-Street-Bets/internal/assets"
	"github.com/wesleyshe/Claw-Street-Bets/internal/trading"
	"github.com/wesleyshe/Claw-Street-Bets/internal/types"
)

// Scheduler drives autonomous accounts through the same order pipeline that
// human traders use. Every agent order goes through validation, cooldown and
// risk checks like any other order.
type Scheduler struct {
	engine   *trading.Service
	accounts *accounts.Service
	registry *assets.Registry
	interval time.Duration
	workers  int
	log      zerolog.Logger
}

func NewScheduler(engine *trading.Service, accountSvc *accounts.Service, registry *assets.Registry, interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		engine:   engine,
		accounts: accountSvc,
		registry: registry,
		interval: interval,
		workers:  4,
		log:      log.With().Str("component", "agents").Logger(),
	}
}

// Start runs the scheduler until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for {
		// Jitter the sleep so agents do not trade in lockstep with the
		// price refresh cycle.
		wait := s.interval + time.Duration(rng.Int63n(int64(s.interval/2)))
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		s.runOnce(ctx, rng)
	}
}

func (s *Scheduler) runOnce(ctx context.Context, rng *rand.Rand) {
	agents, err := s.accounts.ListAutonomous(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list autonomous accounts")
		return
	}
	if len(agents) == 0 {
		return
	}

	sem := make(chan struct{}, s.workers)
	for _, a := range agents {
		// Each agent acts with 40% probability per cycle.
		if rng.Float64() >= 0.4 {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case sem <- struct{}{}:
		}
		go func(acct accounts.Account, seed int64) {
			defer func() { <-sem }()
			s.tradeFor(ctx, acct, rand.New(rand.NewSource(seed)))
		}(a, rng.Int63())
	}
	for i := 0; i < s.workers; i++ {
		sem <- struct{}{}
	}
}

func (s *Scheduler) tradeFor(ctx context.Context, acct accounts.Account, rng *rand.Rand) {
	ord, ok := s.pickOrder(ctx, acct, rng)
	if !ok {
		return
	}
	res, err := s.engine.ExecuteTrade(ctx, acct.ID, ord)
	if err != nil {
		// Rejections are routine for agents: cooldowns and risk caps
		// apply to them like anyone else.
		s.log.Debug().Err(err).Str("account", acct.Username).Str("asset", ord.AssetID).Msg("agent order rejected")
		return
	}
	ev := s.log.Info().
		Str("account", acct.Username).
		Str("asset", ord.AssetID).
		Str("side", string(ord.Side)).
		Str("notional", res.Trade.Notional.StringFixed(2))
	if res.LiquidationTriggered {
		ev = ev.Bool("liquidated", true)
	}
	ev.Msg("agent trade")
}

// pickOrder makes a small random order: mostly notional buys, occasionally a
// partial sell of an existing position.
func (s *Scheduler) pickOrder(ctx context.Context, acct accounts.Account, rng *rand.Rand) (trading.Order, bool) {
	supported := s.registry.List()
	if len(supported) == 0 {
		return trading.Order{}, false
	}

	if rng.Float64() < 0.35 {
		positions, err := s.engine.Positions(ctx, acct.ID)
		if err != nil {
			s.log.Error().Err(err).Str("account", acct.Username).Msg("load positions")
			return trading.Order{}, false
		}
		if len(positions) > 0 {
			pos := positions[rng.Intn(len(positions))]
			if pos.Quantity.GreaterThan(decimal.Zero) {
				frac := decimal.NewFromFloat(0.25 + rng.Float64()*0.5)
				qty := pos.Quantity.Mul(frac).Round(8)
				if qty.GreaterThan(decimal.Zero) {
					return trading.Order{
						AssetID:   pos.AssetID,
						Side:      types.SideSell,
						Quantity:  &qty,
						ClientRef: "agent-" + uuid.NewString(),
					}, true
				}
			}
		}
	}

	asset := supported[rng.Intn(len(supported))]
	notional := decimal.NewFromInt(int64(50 + rng.Intn(450)))
	return trading.Order{
		AssetID:   asset.ID,
		Side:      types.SideBuy,
		Notional:  &notional,
		ClientRef: "agent-" + uuid.NewString(),
	}, true
}
