package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/storage"
)

// PoolStore implements storage.PoolStore using PostgreSQL.
type PoolStore struct {
	pool *Pool
}

// NewPoolStore creates a new PoolStore.
func NewPoolStore(pool *Pool) *PoolStore {
	return &PoolStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PoolStore = (*PoolStore)(nil)

const poolColumns = `
	pool_id, token_address, display_name, liquidity_usd, volume_24h_usd,
	discovered_at, platform_native,
	momentum_score, honeypot_score, sell_ratio, is_honeypot,
	risk_score, opportunity_score, composite_score, score_window, scored_at
`

// Upsert inserts a new pool or refreshes its mutable market fields.
// discovered_at and token_address are never rewritten.
func (s *PoolStore) Upsert(ctx context.Context, p *domain.Pool) error {
	if p == nil || p.PoolID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO pools (
			pool_id, token_address, display_name, liquidity_usd, volume_24h_usd,
			discovered_at, platform_native
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pool_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			liquidity_usd = EXCLUDED.liquidity_usd,
			volume_24h_usd = EXCLUDED.volume_24h_usd,
			platform_native = EXCLUDED.platform_native
	`

	_, err := s.pool.Exec(ctx, query,
		p.PoolID,
		p.TokenAddress,
		p.DisplayName,
		p.LiquidityUSD,
		p.Volume24hUSD,
		p.DiscoveredAt,
		p.PlatformNative,
	)
	if err != nil {
		if isConnectionError(err) {
			return fmt.Errorf("upsert pool: %w", storage.ErrUnavailable)
		}
		return fmt.Errorf("upsert pool: %w", err)
	}
	return nil
}

// GetByID retrieves a pool. Returns ErrNotFound if not exists.
func (s *PoolStore) GetByID(ctx context.Context, poolID string) (*domain.Pool, error) {
	query := `SELECT ` + poolColumns + ` FROM pools WHERE pool_id = $1`

	row := s.pool.QueryRow(ctx, query, poolID)
	p, err := scanPool(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		if isConnectionError(err) {
			return nil, fmt.Errorf("get pool by id: %w", storage.ErrUnavailable)
		}
		return nil, fmt.Errorf("get pool by id: %w", err)
	}
	return p, nil
}

// GetByToken retrieves the pool for a token address.
func (s *PoolStore) GetByToken(ctx context.Context, tokenAddress string) (*domain.Pool, error) {
	query := `
		SELECT ` + poolColumns + `
		FROM pools
		WHERE token_address = $1
		ORDER BY discovered_at ASC, pool_id ASC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, tokenAddress)
	p, err := scanPool(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		if isConnectionError(err) {
			return nil, fmt.Errorf("get pool by token: %w", storage.ErrUnavailable)
		}
		return nil, fmt.Errorf("get pool by token: %w", err)
	}
	return p, nil
}

// ActiveTokens returns poll candidates ordered by volume descending.
func (s *PoolStore) ActiveTokens(ctx context.Context, sinceMs int64, minVolume float64, limit int) ([]*domain.Pool, error) {
	query := `
		SELECT ` + poolColumns + `
		FROM pools
		WHERE discovered_at > $1
		  AND volume_24h_usd > $2
		  AND token_address <> ''
		ORDER BY volume_24h_usd DESC, discovered_at ASC, pool_id ASC
		LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, sinceMs, minVolume, limit)
	if err != nil {
		if isConnectionError(err) {
			return nil, fmt.Errorf("active tokens: %w", storage.ErrUnavailable)
		}
		return nil, fmt.Errorf("active tokens: %w", err)
	}
	defer rows.Close()

	return scanPools(rows)
}

// UpdateScores caches a score snapshot on the pool tracking the token.
func (s *PoolStore) UpdateScores(ctx context.Context, tokenAddress string, snap *domain.ScoreSnapshot) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE pools SET
			momentum_score = $2,
			honeypot_score = $3,
			sell_ratio = $4,
			is_honeypot = $5,
			risk_score = $6,
			opportunity_score = $7,
			composite_score = $8,
			score_window = $9,
			scored_at = $10
		WHERE token_address = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		tokenAddress,
		snap.MomentumScore,
		snap.HoneypotScore,
		snap.SellRatio,
		snap.IsHoneypot,
		snap.RiskScore,
		snap.OpportunityScore,
		snap.CompositeScore,
		snap.WindowSize,
		snap.ScoredAt,
	)
	if err != nil {
		if isConnectionError(err) {
			return fmt.Errorf("update scores: %w", storage.ErrUnavailable)
		}
		return fmt.Errorf("update scores: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Query applies predicates, sort, and limit.
func (s *PoolStore) Query(ctx context.Context, q storage.PoolQuery) ([]*domain.Pool, error) {
	var (
		conds []string
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.RequirePositiveVolume {
		conds = append(conds, "volume_24h_usd > 0")
	}
	if q.DiscoveredAfterMs > 0 {
		conds = append(conds, "discovered_at > "+arg(q.DiscoveredAfterMs))
	}
	if q.DiscoveredBeforeMs > 0 {
		conds = append(conds, "discovered_at < "+arg(q.DiscoveredBeforeMs))
	}
	if q.MinLiquidityUSD > 0 {
		conds = append(conds, "liquidity_usd >= "+arg(q.MinLiquidityUSD))
	}
	if q.MaxLiquidityUSD > 0 {
		conds = append(conds, "liquidity_usd <= "+arg(q.MaxLiquidityUSD))
	}
	if q.MinVolume24hUSD > 0 {
		conds = append(conds, "volume_24h_usd >= "+arg(q.MinVolume24hUSD))
	}
	if q.PlatformNative != nil {
		conds = append(conds, "platform_native = "+arg(*q.PlatformNative))
	}
	if len(q.ExcludeTokens) > 0 {
		conds = append(conds, "NOT (token_address = ANY("+arg(q.ExcludeTokens)+"))")
	}
	if q.ExcludeHoneypots {
		conds = append(conds, "COALESCE(is_honeypot, FALSE) = FALSE")
	}
	if q.IncludeHoneypotsOnly {
		conds = append(conds, "is_honeypot = TRUE")
	}
	if q.MaxHoneypotScore > 0 {
		conds = append(conds, "COALESCE(honeypot_score, 0) <= "+arg(q.MaxHoneypotScore))
	}
	if q.MinSellRatio > 0 {
		conds = append(conds, "COALESCE(sell_ratio, 0) >= "+arg(q.MinSellRatio))
	}

	query := `SELECT ` + poolColumns + ` FROM pools`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + orderClause(q.SortBy)
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		if isConnectionError(err) {
			return nil, fmt.Errorf("query pools: %w", storage.ErrUnavailable)
		}
		return nil, fmt.Errorf("query pools: %w", err)
	}
	defer rows.Close()

	return scanPools(rows)
}

// orderClause maps a sort key to its ORDER BY expression. The trailing
// keys make ties deterministic across backends.
func orderClause(key storage.SortKey) string {
	primary := "discovered_at DESC"
	switch key {
	case storage.SortLiquidity:
		primary = "liquidity_usd DESC"
	case storage.SortVolume:
		primary = "volume_24h_usd DESC"
	case storage.SortMomentum:
		primary = "COALESCE(momentum_score, 0) DESC"
	case storage.SortRisk:
		primary = "COALESCE(risk_score, 0) ASC"
	case storage.SortComposite:
		primary = "COALESCE(composite_score, 0) DESC"
	}
	return primary + ", discovered_at ASC, pool_id ASC"
}

// scanPool reads one pool row, reassembling the cached score snapshot
// when the row has been scored.
func scanPool(row pgx.Row) (*domain.Pool, error) {
	var (
		p           domain.Pool
		momentum    *float64
		honeypot    *int
		sellRatio   *float64
		isHoneypot  *bool
		risk        *int
		opportunity *int
		composite   *int
		window      *int
		scoredAt    *int64
	)

	err := row.Scan(
		&p.PoolID,
		&p.TokenAddress,
		&p.DisplayName,
		&p.LiquidityUSD,
		&p.Volume24hUSD,
		&p.DiscoveredAt,
		&p.PlatformNative,
		&momentum,
		&honeypot,
		&sellRatio,
		&isHoneypot,
		&risk,
		&opportunity,
		&composite,
		&window,
		&scoredAt,
	)
	if err != nil {
		return nil, err
	}

	if scoredAt != nil {
		p.Scores = &domain.ScoreSnapshot{
			MomentumScore:    deref(momentum),
			HoneypotScore:    deref(honeypot),
			SellRatio:        deref(sellRatio),
			IsHoneypot:       deref(isHoneypot),
			RiskScore:        deref(risk),
			OpportunityScore: deref(opportunity),
			CompositeScore:   deref(composite),
			WindowSize:       deref(window),
			ScoredAt:         *scoredAt,
		}
	}
	return &p, nil
}

func scanPools(rows pgx.Rows) ([]*domain.Pool, error) {
	var result []*domain.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pools: %w", err)
	}
	return result, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
