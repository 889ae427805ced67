package storage

import (
	"context"

	"solana-pool-radar/internal/domain"
)

// SortKey selects the ordering of a pool query.
type SortKey string

const (
	SortNewest    SortKey = "newest"    // discovered_at DESC
	SortLiquidity SortKey = "liquidity" // liquidity_usd DESC
	SortVolume    SortKey = "volume"    // volume_24h_usd DESC
	SortMomentum  SortKey = "momentum"  // momentum_score DESC
	SortRisk      SortKey = "risk"      // risk_score ASC
	SortComposite SortKey = "composite" // composite_score DESC
)

// PoolQuery is the store-level predicate set built by the filter
// engine. Zero values mean "no bound" unless noted. Ties under any sort
// key break by discovered_at then pool_id, ascending, so results are
// stable across backends.
type PoolQuery struct {
	DiscoveredAfterMs  int64 // exclusive lower bound on discovered_at
	DiscoveredBeforeMs int64 // exclusive upper bound on discovered_at

	MinLiquidityUSD float64
	MaxLiquidityUSD float64 // 0 = unbounded
	MinVolume24hUSD float64

	// RequirePositiveVolume excludes rows with volume_24h_usd <= 0.
	// The filter engine always sets it.
	RequirePositiveVolume bool

	PlatformNative *bool    // nil = both
	ExcludeTokens  []string // denylist of token addresses

	// Honeypot predicates evaluate the cached score columns.
	ExcludeHoneypots     bool
	IncludeHoneypotsOnly bool
	MaxHoneypotScore     int     // 0 = no bound
	MinSellRatio         float64 // 0 = no bound

	SortBy SortKey // default SortNewest
	Limit  int     // 0 = no limit
}

// PoolStore provides access to the pool registry.
type PoolStore interface {
	// Upsert inserts a new pool or refreshes the mutable market fields
	// of an existing one. discovered_at and token_address are never
	// rewritten once set.
	Upsert(ctx context.Context, p *domain.Pool) error

	// GetByID retrieves a pool. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, poolID string) (*domain.Pool, error)

	// GetByToken retrieves the pool for a token address. Returns
	// ErrNotFound if not exists.
	GetByToken(ctx context.Context, tokenAddress string) (*domain.Pool, error)

	// ActiveTokens returns pools discovered after sinceMs with 24h
	// volume above minVolume, ordered by volume descending, capped to
	// limit. Poll candidates come from here.
	ActiveTokens(ctx context.Context, sinceMs int64, minVolume float64, limit int) ([]*domain.Pool, error)

	// UpdateScores caches a score snapshot on a pool row. Returns
	// ErrNotFound if no pool tracks the token.
	UpdateScores(ctx context.Context, tokenAddress string, s *domain.ScoreSnapshot) error

	// Query applies predicates, sort, and limit. An empty result is
	// not an error.
	Query(ctx context.Context, q PoolQuery) ([]*domain.Pool, error)
}

// PriceHistoryStore provides access to the append-only per-token sample
// series.
type PriceHistoryStore interface {
	// Append adds one sample. Returns ErrOutOfOrder unless the
	// timestamp is strictly greater than the token's latest sample.
	Append(ctx context.Context, s *domain.PriceSample) error

	// Recent returns up to limit samples for a token, newest first.
	Recent(ctx context.Context, tokenAddress string, limit int) ([]*domain.PriceSample, error)

	// GetByTimeRange returns samples within [start, end] inclusive,
	// ordered by timestamp ascending.
	GetByTimeRange(ctx context.Context, tokenAddress string, start, end int64) ([]*domain.PriceSample, error)

	// LatestTimestamp returns the newest sample timestamp for a token,
	// or 0 when the token has no samples.
	LatestTimestamp(ctx context.Context, tokenAddress string) (int64, error)

	// Prune removes samples older than cutoffMs across all tokens and
	// reports how many were removed.
	Prune(ctx context.Context, cutoffMs int64) (int64, error)
}
