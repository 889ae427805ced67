package memory

import (
	"context"
	"sync"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of
// storage.PriceHistoryStore. Samples per token are kept sorted by
// timestamp ascending; Append enforces strict monotonicity so readers
// always observe an ordered series.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.PriceSample // token_address -> samples, ts ASC
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[string][]*domain.PriceSample),
	}
}

// Append adds one sample. Returns ErrOutOfOrder unless the timestamp is
// strictly greater than the token's latest sample.
func (s *PriceHistoryStore) Append(_ context.Context, sample *domain.PriceSample) error {
	if sample == nil || sample.TokenAddress == "" || sample.TimestampMs <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	series := s.data[sample.TokenAddress]
	if n := len(series); n > 0 && series[n-1].TimestampMs >= sample.TimestampMs {
		return storage.ErrOutOfOrder
	}

	sampleCopy := *sample
	s.data[sample.TokenAddress] = append(series, &sampleCopy)
	return nil
}

// Recent returns up to limit samples for a token, newest first.
func (s *PriceHistoryStore) Recent(_ context.Context, tokenAddress string, limit int) ([]*domain.PriceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.data[tokenAddress]
	n := len(series)
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]*domain.PriceSample, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		sampleCopy := *series[i]
		result = append(result, &sampleCopy)
	}
	return result, nil
}

// GetByTimeRange returns samples within [start, end] inclusive, ordered
// by timestamp ascending.
func (s *PriceHistoryStore) GetByTimeRange(_ context.Context, tokenAddress string, start, end int64) ([]*domain.PriceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceSample
	for _, sample := range s.data[tokenAddress] {
		if sample.TimestampMs >= start && sample.TimestampMs <= end {
			sampleCopy := *sample
			result = append(result, &sampleCopy)
		}
	}
	return result, nil
}

// LatestTimestamp returns the newest sample timestamp for a token, or 0
// when the token has no samples.
func (s *PriceHistoryStore) LatestTimestamp(_ context.Context, tokenAddress string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.data[tokenAddress]
	if len(series) == 0 {
		return 0, nil
	}
	return series[len(series)-1].TimestampMs, nil
}

// Prune removes samples older than cutoffMs across all tokens.
func (s *PriceHistoryStore) Prune(_ context.Context, cutoffMs int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for token, series := range s.data {
		i := 0
		for i < len(series) && series[i].TimestampMs < cutoffMs {
			i++
		}
		if i == 0 {
			continue
		}
		removed += int64(i)
		if i == len(series) {
			delete(s.data, token)
			continue
		}
		s.data[token] = append(series[:0:0], series[i:]...)
	}
	return removed, nil
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
