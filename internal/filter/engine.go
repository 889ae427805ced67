package filter

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/scoring"
	"solana-pool-radar/internal/solana"
	"solana-pool-radar/internal/storage"
)

// Engine executes filter requests against the pool registry. It reads
// only: stale scores are recomputed for the response, never written
// back.
type Engine struct {
	pools   storage.PoolStore
	history storage.PriceHistoryStore
	scorer  *scoring.Engine
	logger  zerolog.Logger
	now     func() time.Time
}

// EngineOptions contains configuration for creating an Engine.
type EngineOptions struct {
	PoolStore    storage.PoolStore
	HistoryStore storage.PriceHistoryStore
	Scorer       *scoring.Engine
	Logger       zerolog.Logger
}

// NewEngine creates a filter engine.
func NewEngine(opts EngineOptions) *Engine {
	scorer := opts.Scorer
	if scorer == nil {
		scorer = scoring.NewEngine(0)
	}
	return &Engine{
		pools:   opts.PoolStore,
		history: opts.HistoryStore,
		scorer:  scorer,
		logger:  opts.Logger.With().Str("component", "filter").Logger(),
		now:     time.Now,
	}
}

// Run normalizes and validates the request, queries the store and
// returns enriched results. An empty result set is not an error.
func (e *Engine) Run(ctx context.Context, req Request) ([]Result, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter request: %w", err)
	}

	pools, err := e.pools.Query(ctx, e.buildQuery(req))
	if err != nil {
		return nil, fmt.Errorf("query pools: %w", err)
	}

	results := make([]Result, 0, len(pools))
	for _, pool := range pools {
		scores, latest, err := e.freshScores(ctx, pool)
		if err != nil {
			return nil, err
		}

		if scores != nil && scores.RiskScore > req.MaxRiskScore {
			continue
		}

		results = append(results, buildResult(pool, scores, latest))
	}

	// Score-keyed sorts ran in the store against cached values; after
	// recomputation the order can shift, so re-sort here.
	sortResults(results, req.SortBy)

	return results, nil
}

// buildQuery translates a request into store predicates. Volume must
// always be positive and wrapped/stable mints never appear in results.
func (e *Engine) buildQuery(req Request) storage.PoolQuery {
	now := e.now()

	q := storage.PoolQuery{
		MinLiquidityUSD:       req.MinLiquidityUSD,
		MaxLiquidityUSD:       req.MaxLiquidityUSD,
		MinVolume24hUSD:       req.MinVolume24hUSD,
		RequirePositiveVolume: true,
		ExcludeTokens:         solana.DenylistedMints,
		ExcludeHoneypots:      req.ExcludeHoneypots,
		IncludeHoneypotsOnly:  req.IncludeHoneypotsOnly,
		MaxHoneypotScore:      req.MaxHoneypotScore,
		MinSellRatio:          req.MinSellRatio,
		SortBy:                req.SortBy,
		Limit:                 req.Limit,
	}

	if dur, ok := timeRangeDurations[req.TimeRange]; ok {
		q.DiscoveredAfterMs = now.Add(-dur).UnixMilli()
	}
	if req.MaxAgeDays > 0 {
		bound := now.Add(-time.Duration(req.MaxAgeDays * float64(24*time.Hour))).UnixMilli()
		if bound > q.DiscoveredAfterMs {
			q.DiscoveredAfterMs = bound
		}
	}
	if req.MinAgeHours > 0 {
		q.DiscoveredBeforeMs = now.Add(-time.Duration(req.MinAgeHours * float64(time.Hour))).UnixMilli()
	}

	if floor := safetyLiquidityFloors[req.Safety]; floor > q.MinLiquidityUSD {
		q.MinLiquidityUSD = floor
	}
	if floor := activityVolumeFloors[req.Activity]; floor > q.MinVolume24hUSD {
		q.MinVolume24hUSD = floor
	}

	switch req.Platform {
	case PlatformPumpOnly:
		native := true
		q.PlatformNative = &native
	case PlatformNoPump:
		native := false
		q.PlatformNative = &native
	}

	return q
}

// freshScores returns up-to-date scores and the latest sample for a
// pool. Cached scores older than the newest sample are recomputed for
// the response only.
func (e *Engine) freshScores(ctx context.Context, pool *domain.Pool) (*domain.ScoreSnapshot, *domain.PriceSample, error) {
	window, err := e.history.Recent(ctx, pool.TokenAddress, e.scorer.WindowSize())
	if err != nil {
		return nil, nil, fmt.Errorf("recent samples for %s: %w", pool.TokenAddress, err)
	}

	var latest *domain.PriceSample
	if len(window) > 0 {
		latest = window[0]
	}

	scores := pool.Scores
	if latest != nil && (scores == nil || scores.ScoredAt < latest.TimestampMs) {
		scores = e.scorer.Score(pool, window, nil, e.now())
		e.logger.Debug().Str("token", pool.TokenAddress).Msg("recomputed stale scores")
	}

	return scores, latest, nil
}

func sortResults(results []Result, key storage.SortKey) {
	var less func(a, b *Result) bool
	switch key {
	case storage.SortMomentum:
		less = func(a, b *Result) bool { return a.MomentumScore > b.MomentumScore }
	case storage.SortRisk:
		less = func(a, b *Result) bool { return a.RiskScore < b.RiskScore }
	case storage.SortComposite:
		less = func(a, b *Result) bool { return a.CompositeScore > b.CompositeScore }
	default:
		// Store ordering already covers the market-field sorts.
		return
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		if a.DiscoveredAt != b.DiscoveredAt {
			return a.DiscoveredAt < b.DiscoveredAt
		}
		return a.PoolID < b.PoolID
	})
}
