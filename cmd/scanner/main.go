// Package main runs the pool scanner: Raydium discovery, DexScreener
// polling with scoring, retention pruning, and a Prometheus endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/config"
	"solana-pool-radar/internal/discovery"
	"solana-pool-radar/internal/ingestion"
	"solana-pool-radar/internal/observability"
	"solana-pool-radar/internal/orchestrator"
	"solana-pool-radar/internal/ratelimit"
	"solana-pool-radar/internal/scoring"
	"solana-pool-radar/internal/storage"
	chstore "solana-pool-radar/internal/storage/clickhouse"
	"solana-pool-radar/internal/storage/memory"
	"solana-pool-radar/internal/storage/migrations"
	pgstore "solana-pool-radar/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (defaults apply without one)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.General)
	logger.Info().Str("config", *configPath).Msg("starting scanner")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pools, history, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("create stores")
	}
	defer cleanup()

	metrics := observability.NewMetrics("pool_radar")
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	ingestor := discovery.NewIngestor(discovery.IngestorOptions{
		Client: discovery.NewClient(cfg.Discovery.Endpoints,
			discovery.WithRetryBackoff(cfg.Discovery.RetryBackoff())),
		PoolStore: pools,
		Metrics:   metrics,
		Logger:    logger,
	})

	limiter := ratelimit.New(cfg.Polling.RateLimitCalls, cfg.Polling.RateLimitPeriod())
	engine := scoring.NewEngine(cfg.Scoring.WindowSize)

	poller := ingestion.NewPoller(ingestion.PollerOptions{
		PoolStore:    pools,
		HistoryStore: history,
		Source:       ingestion.NewDexScreenerClient(),
		Limiter:      limiter,
		Validator:    ingestion.NewValidator(cfg.Polling.PriceEpsilon, cfg.Polling.MaxDeviationPct),
		Engine:       engine,
		Metrics:      metrics,
		Logger:       logger,
		Lookback:     cfg.Polling.Lookback(),
		VolumeFloor:  cfg.Polling.VolumeFloorUSD,
		BatchLimit:   cfg.Polling.BatchLimit,
	})

	orch := orchestrator.New(orchestrator.Options{
		Discovery:            ingestor,
		Poller:               poller,
		History:              history,
		Metrics:              metrics,
		Logger:               logger,
		MinDiscoveryInterval: cfg.Discovery.MinInterval(),
		MaxDiscoveryInterval: cfg.Discovery.MaxInterval(),
		PollInterval:         cfg.Polling.Interval(),
		PruneInterval:        cfg.Retention.PruneInterval(),
		Retention:            cfg.Retention.MaxAge(),
	})

	// Graceful shutdown on SIGINT/SIGTERM; a second signal forces exit.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()

		select {
		case <-sigCh:
			logger.Warn().Msg("second signal, forcing exit")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn().Msg("shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}()

	if err := orch.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("scanner stopped")
	}
	logger.Info().Msg("shutdown complete")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newLogger(general config.GeneralConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(general.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if general.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// createStores selects in-memory or SQL-backed stores depending on the
// configured DSNs.
func createStores(ctx context.Context, cfg *config.Config) (storage.PoolStore, storage.PriceHistoryStore, func(), error) {
	if !cfg.Persistent() {
		return memory.NewPoolStore(), memory.NewPriceHistoryStore(), func() {}, nil
	}

	pg, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pg); err != nil {
		pg.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	ch, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickHouseDSN)
	if err != nil {
		pg.Close()
		return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	cleanup := func() {
		pg.Close()
		ch.Close()
	}
	return pgstore.NewPoolStore(pg), chstore.NewPriceHistoryStore(ch), cleanup, nil
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	logger.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
