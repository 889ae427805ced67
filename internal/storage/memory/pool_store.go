package memory

import (
	"context"
	"sort"
	"sync"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/storage"
)

// PoolStore is an in-memory implementation of storage.PoolStore.
type PoolStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Pool // keyed by pool_id
}

// NewPoolStore creates a new in-memory pool store.
func NewPoolStore() *PoolStore {
	return &PoolStore{
		data: make(map[string]*domain.Pool),
	}
}

// Upsert inserts a new pool or refreshes the mutable market fields of
// an existing one. discovered_at and token_address are never rewritten.
func (s *PoolStore) Upsert(_ context.Context, p *domain.Pool) error {
	if p == nil || p.PoolID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data[p.PoolID]; ok {
		existing.DisplayName = p.DisplayName
		existing.LiquidityUSD = p.LiquidityUSD
		existing.Volume24hUSD = p.Volume24hUSD
		existing.PlatformNative = p.PlatformNative
		return nil
	}

	poolCopy := clonePool(p)
	s.data[p.PoolID] = poolCopy
	return nil
}

// GetByID retrieves a pool. Returns ErrNotFound if not exists.
func (s *PoolStore) GetByID(_ context.Context, poolID string) (*domain.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[poolID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clonePool(p), nil
}

// GetByToken retrieves the pool for a token address.
func (s *PoolStore) GetByToken(_ context.Context, tokenAddress string) (*domain.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.data {
		if p.TokenAddress == tokenAddress {
			return clonePool(p), nil
		}
	}
	return nil, storage.ErrNotFound
}

// ActiveTokens returns pools discovered after sinceMs with volume above
// minVolume, ordered by volume descending, capped to limit.
func (s *PoolStore) ActiveTokens(_ context.Context, sinceMs int64, minVolume float64, limit int) ([]*domain.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Pool
	for _, p := range s.data {
		if p.DiscoveredAt > sinceMs && p.Volume24hUSD > minVolume && p.TokenAddress != "" {
			result = append(result, clonePool(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Volume24hUSD != result[j].Volume24hUSD {
			return result[i].Volume24hUSD > result[j].Volume24hUSD
		}
		return stableLess(result[i], result[j])
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// UpdateScores caches a score snapshot on the pool tracking the token.
func (s *PoolStore) UpdateScores(_ context.Context, tokenAddress string, snap *domain.ScoreSnapshot) error {
	if snap == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.data {
		if p.TokenAddress == tokenAddress {
			snapCopy := *snap
			p.Scores = &snapCopy
			return nil
		}
	}
	return storage.ErrNotFound
}

// Query applies predicates, sort, and limit.
func (s *PoolStore) Query(_ context.Context, q storage.PoolQuery) ([]*domain.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Pool
	for _, p := range s.data {
		if matchesQuery(p, q) {
			result = append(result, clonePool(p))
		}
	}

	sortPools(result, q.SortBy)

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

func matchesQuery(p *domain.Pool, q storage.PoolQuery) bool {
	if q.RequirePositiveVolume && p.Volume24hUSD <= 0 {
		return false
	}
	if q.DiscoveredAfterMs > 0 && p.DiscoveredAt <= q.DiscoveredAfterMs {
		return false
	}
	if q.DiscoveredBeforeMs > 0 && p.DiscoveredAt >= q.DiscoveredBeforeMs {
		return false
	}
	if p.LiquidityUSD < q.MinLiquidityUSD {
		return false
	}
	if q.MaxLiquidityUSD > 0 && p.LiquidityUSD > q.MaxLiquidityUSD {
		return false
	}
	if p.Volume24hUSD < q.MinVolume24hUSD {
		return false
	}
	if q.PlatformNative != nil && p.PlatformNative != *q.PlatformNative {
		return false
	}
	for _, t := range q.ExcludeTokens {
		if p.TokenAddress == t {
			return false
		}
	}

	honeypotScore := 0
	sellRatio := 0.0
	isHoneypot := false
	if p.Scores != nil {
		honeypotScore = p.Scores.HoneypotScore
		sellRatio = p.Scores.SellRatio
		isHoneypot = p.Scores.IsHoneypot
	}
	if q.ExcludeHoneypots && isHoneypot {
		return false
	}
	if q.IncludeHoneypotsOnly && !isHoneypot {
		return false
	}
	if q.MaxHoneypotScore > 0 && honeypotScore > q.MaxHoneypotScore {
		return false
	}
	if q.MinSellRatio > 0 && sellRatio < q.MinSellRatio {
		return false
	}
	return true
}

func sortPools(pools []*domain.Pool, key storage.SortKey) {
	less := func(a, b *domain.Pool) bool { return a.DiscoveredAt > b.DiscoveredAt }

	switch key {
	case storage.SortLiquidity:
		less = func(a, b *domain.Pool) bool { return a.LiquidityUSD > b.LiquidityUSD }
	case storage.SortVolume:
		less = func(a, b *domain.Pool) bool { return a.Volume24hUSD > b.Volume24hUSD }
	case storage.SortMomentum:
		less = func(a, b *domain.Pool) bool { return momentumOf(a) > momentumOf(b) }
	case storage.SortRisk:
		less = func(a, b *domain.Pool) bool { return riskOf(a) < riskOf(b) }
	case storage.SortComposite:
		less = func(a, b *domain.Pool) bool { return compositeOf(a) > compositeOf(b) }
	}

	sort.SliceStable(pools, func(i, j int) bool {
		a, b := pools[i], pools[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return stableLess(a, b)
	})
}

// stableLess is the deterministic tie-break: discovery order, then id.
func stableLess(a, b *domain.Pool) bool {
	if a.DiscoveredAt != b.DiscoveredAt {
		return a.DiscoveredAt < b.DiscoveredAt
	}
	return a.PoolID < b.PoolID
}

func momentumOf(p *domain.Pool) float64 {
	if p.Scores == nil {
		return 0
	}
	return p.Scores.MomentumScore
}

func riskOf(p *domain.Pool) int {
	if p.Scores == nil {
		return 0
	}
	return p.Scores.RiskScore
}

func compositeOf(p *domain.Pool) int {
	if p.Scores == nil {
		return 0
	}
	return p.Scores.CompositeScore
}

func clonePool(p *domain.Pool) *domain.Pool {
	poolCopy := *p
	if p.Scores != nil {
		snapCopy := *p.Scores
		poolCopy.Scores = &snapCopy
	}
	return &poolCopy
}

var _ storage.PoolStore = (*PoolStore)(nil)
