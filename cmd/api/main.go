package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/wesleyshe/Claw-Street-Bets/internal/accounts"
	"github.com/wesleyshe/Claw-Street-Bets/internal/agents"
	"github.com/wesleyshe/Claw-Street-Bets/internal/assets"
	"github.com/wesleyshe/Claw-Street-Bets/internal/auth"
	"github.com/wesleyshe/Claw-Street-Bets/internal/config"
	"github.com/wesleyshe/Claw-Street-Bets/internal/db"
	"github.com/wesleyshe/Claw-Street-Bets/internal/health"
	"github.com/wesleyshe/Claw-Street-Bets/internal/httpserver"
	"github.com/wesleyshe/Claw-Street-Bets/internal/metrics"
	"github.com/wesleyshe/Claw-Street-Bets/internal/prices"
	"github.com/wesleyshe/Claw-Street-Bets/internal/risk"
	"github.com/wesleyshe/Claw-Street-Bets/internal/trading"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engineMetrics := metrics.NewWithRegistry(reg)

	registry := assets.Default()
	provider := prices.NewFeedClient(cfg.PriceFeedURL, registry, cfg.PriceTTL, log)
	bus := prices.NewBus()
	prices.StartPublisher(ctx, provider, bus, cfg.PriceTTL, log)

	policyStore := risk.NewStore(pool)
	accountSvc := accounts.NewService(pool)
	authSvc := auth.NewService(pool, cfg.JWTIssuer, []byte(cfg.JWTSecret), cfg.JWTTTL, accountSvc, policyStore)
	engine := trading.NewService(pool, trading.NewStore(), provider, policyStore, registry, engineMetrics, log)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:   auth.NewHandler(authSvc, accountSvc),
		TradeHandler:  trading.NewHandler(engine, trading.NewValidator(registry)),
		PricesHandler: prices.NewHandler(provider, registry, prices.NewWSHandler(bus, cfg.WSOrigin, log)),
		RiskHandler:   risk.NewHandler(policyStore),
		HealthHandler: health.NewHandler(pool, time.Now()),
		AuthService:   authSvc,
		InternalToken: cfg.InternalToken,
		Registry:      reg,
	})

	if cfg.AgentsEnabled {
		scheduler := agents.NewScheduler(engine, accountSvc, registry, 30*time.Second, log)
		go scheduler.Start(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server exited")
	}
}
