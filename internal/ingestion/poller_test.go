package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/storage/memory"
)

// fakeSource serves canned pairs per token.
type fakeSource struct {
	pairs map[string][]Pair
	calls []string
}

func (f *fakeSource) TokenPairs(_ context.Context, tokenAddress string) ([]Pair, error) {
	f.calls = append(f.calls, tokenAddress)
	pairs, ok := f.pairs[tokenAddress]
	if !ok || len(pairs) == 0 {
		return nil, ErrNoPairs
	}
	return pairs, nil
}

// countingLimiter records Acquire calls without blocking.
type countingLimiter struct {
	acquired int
}

func (l *countingLimiter) Acquire(context.Context) error {
	l.acquired++
	return nil
}

func pairWith(price string, liq, vol24h float64, buys, sells int) Pair {
	p := Pair{PriceUSD: price}
	p.Liquidity.USD = liq
	p.Volume.H24 = vol24h
	p.Txns.M5.Buys = buys
	p.Txns.M5.Sells = sells
	return p
}

func seedPool(t *testing.T, store *memory.PoolStore, poolID, token string, vol float64, ageMs int64) {
	t.Helper()
	err := store.Upsert(context.Background(), &domain.Pool{
		PoolID:       poolID,
		TokenAddress: token,
		DisplayName:  token + "/WSOL",
		LiquidityUSD: 50_000,
		Volume24hUSD: vol,
		DiscoveredAt: time.Now().UnixMilli() - ageMs,
	})
	require.NoError(t, err)
}

func TestPoller_RunCycle(t *testing.T) {
	pools := memory.NewPoolStore()
	history := memory.NewPriceHistoryStore()
	seedPool(t, pools, "pool-a", "token-a", 5_000, 0)
	seedPool(t, pools, "pool-b", "token-b", 2_000, 0)
	seedPool(t, pools, "pool-stale", "token-stale", 5_000, 48*time.Hour.Milliseconds())
	seedPool(t, pools, "pool-quiet", "token-quiet", 10, 0)

	source := &fakeSource{pairs: map[string][]Pair{
		"token-a": {pairWith("0.5", 60_000, 20_000, 8, 6)},
		"token-b": {pairWith("0.001", 8_000, 3_000, 10, 0)},
	}}
	limiter := &countingLimiter{}

	poller := NewPoller(PollerOptions{
		PoolStore:    pools,
		HistoryStore: history,
		Source:       source,
		Limiter:      limiter,
		Logger:       zerolog.Nop(),
	})

	stored, err := poller.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	// Stale and low-volume pools are not candidates.
	assert.NotContains(t, source.calls, "token-stale")
	assert.NotContains(t, source.calls, "token-quiet")
	assert.Equal(t, 2, limiter.acquired)

	// Scores were cached back onto the pool rows.
	poolA, err := pools.GetByToken(context.Background(), "token-a")
	require.NoError(t, err)
	require.NotNil(t, poolA.Scores)
	assert.Equal(t, 1, poolA.Scores.WindowSize)

	// token-b sells are zero with active buying: flagged.
	poolB, err := pools.GetByToken(context.Background(), "token-b")
	require.NoError(t, err)
	require.NotNil(t, poolB.Scores)
	assert.True(t, poolB.Scores.IsHoneypot)
	assert.Equal(t, 90, poolB.Scores.HoneypotScore)
}

func TestPoller_RejectsSpikeKeepsPriorScore(t *testing.T) {
	pools := memory.NewPoolStore()
	history := memory.NewPriceHistoryStore()
	seedPool(t, pools, "pool-a", "token-a", 5_000, 0)

	source := &fakeSource{pairs: map[string][]Pair{
		"token-a": {pairWith("1.0", 60_000, 20_000, 8, 6)},
	}}
	poller := NewPoller(PollerOptions{
		PoolStore:    pools,
		HistoryStore: history,
		Source:       source,
		Logger:       zerolog.Nop(),
	})

	stored, err := poller.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stored)

	first, err := pools.GetByToken(context.Background(), "token-a")
	require.NoError(t, err)
	require.NotNil(t, first.Scores)

	// Price doubles against the stored sample: rejected, score stands.
	source.pairs["token-a"] = []Pair{pairWith("2.0", 60_000, 20_000, 8, 6)}
	poller.now = func() time.Time { return time.Now().Add(5 * time.Minute) }

	stored, err = poller.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stored)

	samples, err := history.Recent(context.Background(), "token-a", 10)
	require.NoError(t, err)
	assert.Len(t, samples, 1)

	after, err := pools.GetByToken(context.Background(), "token-a")
	require.NoError(t, err)
	assert.Equal(t, first.Scores.ScoredAt, after.Scores.ScoredAt)
}

func TestPoller_NoPairsSkipsToken(t *testing.T) {
	pools := memory.NewPoolStore()
	history := memory.NewPriceHistoryStore()
	seedPool(t, pools, "pool-a", "token-a", 5_000, 0)
	seedPool(t, pools, "pool-b", "token-b", 9_000, 0)

	source := &fakeSource{pairs: map[string][]Pair{
		"token-a": {pairWith("0.5", 60_000, 20_000, 8, 6)},
		// token-b intentionally absent.
	}}
	poller := NewPoller(PollerOptions{
		PoolStore:    pools,
		HistoryStore: history,
		Source:       source,
		Logger:       zerolog.Nop(),
	})

	stored, err := poller.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.Contains(t, source.calls, "token-b")
}

func TestPoller_SecurityLookupFeedsRisk(t *testing.T) {
	pools := memory.NewPoolStore()
	history := memory.NewPriceHistoryStore()
	seedPool(t, pools, "pool-a", "token-a", 5_000, 0)

	source := &fakeSource{pairs: map[string][]Pair{
		"token-a": {pairWith("0.5", 200_000, 20_000, 8, 6)},
	}}

	base := NewPoller(PollerOptions{
		PoolStore:    pools,
		HistoryStore: history,
		Source:       source,
		Logger:       zerolog.Nop(),
	})
	_, err := base.RunCycle(context.Background())
	require.NoError(t, err)
	withoutSecurity, err := pools.GetByToken(context.Background(), "token-a")
	require.NoError(t, err)

	// Same market data with a hostile security snapshot must score
	// strictly riskier.
	pools2 := memory.NewPoolStore()
	history2 := memory.NewPriceHistoryStore()
	seedPool(t, pools2, "pool-a", "token-a", 5_000, 0)

	flagged := NewPoller(PollerOptions{
		PoolStore:    pools2,
		HistoryStore: history2,
		Source:       &fakeSource{pairs: source.pairs},
		SecurityLookup: func(string) *domain.TokenSecurity {
			return &domain.TokenSecurity{TopHolderPercent: 80}
		},
		Logger: zerolog.Nop(),
	})
	_, err = flagged.RunCycle(context.Background())
	require.NoError(t, err)
	withSecurity, err := pools2.GetByToken(context.Background(), "token-a")
	require.NoError(t, err)

	assert.Greater(t, withSecurity.Scores.RiskScore, withoutSecurity.Scores.RiskScore)
}
