// Package main exports filtered pool results as CSV or JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/config"
	"solana-pool-radar/internal/filter"
	"solana-pool-radar/internal/reporting"
	"solana-pool-radar/internal/scoring"
	"solana-pool-radar/internal/storage"
	chstore "solana-pool-radar/internal/storage/clickhouse"
	pgstore "solana-pool-radar/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	format := flag.String("format", "csv", "Output format: csv or json")
	output := flag.String("output", "", "Output file (default stdout)")

	timeRange := flag.String("time-range", "", "Discovered-within window: 1h, 6h, 24h, 7d")
	minAgeHours := flag.Float64("min-age-hours", 0, "Minimum pool age in hours")
	maxAgeDays := flag.Float64("max-age-days", 0, "Maximum pool age in days")
	minLiquidity := flag.Float64("min-liquidity", 0, "Minimum liquidity in USD")
	maxLiquidity := flag.Float64("max-liquidity", 0, "Maximum liquidity in USD")
	minVolume := flag.Float64("min-volume", 0, "Minimum 24h volume in USD")
	activity := flag.String("activity", "any", "Activity level: hot, active, moderate, any")
	safety := flag.String("safety", "any", "Safety level: premium, safe, moderate, any")
	platform := flag.String("platform", "", "Platform filter: pump_only or no_pump")
	excludeHoneypots := flag.Bool("exclude-honeypots", false, "Drop suspected honeypots")
	honeypotsOnly := flag.Bool("honeypots-only", false, "Return only suspected honeypots")
	maxHoneypot := flag.Int("max-honeypot-score", 0, "Maximum honeypot score (0 = off)")
	minSellRatio := flag.Float64("min-sell-ratio", 0, "Minimum observed sell ratio")
	maxRisk := flag.Int("max-risk", 10, "Maximum risk score (10 = off)")
	sortBy := flag.String("sort", "newest", "Sort: newest, liquidity, volume, momentum, risk, composite")
	limit := flag.Int("limit", 50, "Result limit (capped at 200)")

	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "--config is required: export reads the SQL backends")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Persistent() {
		fmt.Fprintln(os.Stderr, "config has no storage DSNs; export needs the SQL backends")
		os.Exit(1)
	}

	ctx := context.Background()

	pg, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ch, err := chstore.NewConn(ctx, cfg.Storage.ClickHouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect clickhouse: %v\n", err)
		os.Exit(1)
	}
	defer ch.Close()

	engine := filter.NewEngine(filter.EngineOptions{
		PoolStore:    pgstore.NewPoolStore(pg),
		HistoryStore: chstore.NewPriceHistoryStore(ch),
		Scorer:       scoring.NewEngine(cfg.Scoring.WindowSize),
		Logger:       logger,
	})

	req := filter.Request{
		TimeRange:            filter.TimeRange(*timeRange),
		MinAgeHours:          *minAgeHours,
		MaxAgeDays:           *maxAgeDays,
		MinLiquidityUSD:      *minLiquidity,
		MaxLiquidityUSD:      *maxLiquidity,
		MinVolume24hUSD:      *minVolume,
		Activity:             filter.ActivityLevel(*activity),
		Safety:               filter.SafetyLevel(*safety),
		Platform:             filter.Platform(*platform),
		ExcludeHoneypots:     *excludeHoneypots,
		IncludeHoneypotsOnly: *honeypotsOnly,
		MaxHoneypotScore:     *maxHoneypot,
		MinSellRatio:         *minSellRatio,
		MaxRiskScore:         *maxRisk,
		SortBy:               storage.SortKey(*sortBy),
		Limit:                *limit,
	}

	results, err := engine.Run(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "filter: %v\n", err)
		os.Exit(1)
	}

	out, closeOut, err := openOutput(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "output: %v\n", err)
		os.Exit(1)
	}
	defer closeOut()

	switch *format {
	case "csv":
		err = reporting.WriteCSV(out, results)
	case "json":
		err = reporting.WriteJSON(out, results)
	default:
		err = fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "%d results\n", len(results))
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
