package filter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/solana"
	"solana-pool-radar/internal/storage"
	"solana-pool-radar/internal/storage/memory"
)

type fixture struct {
	pools   *memory.PoolStore
	history *memory.PriceHistoryStore
	engine  *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		pools:   memory.NewPoolStore(),
		history: memory.NewPriceHistoryStore(),
	}
	f.engine = NewEngine(EngineOptions{
		PoolStore:    f.pools,
		HistoryStore: f.history,
		Logger:       zerolog.Nop(),
	})
	return f
}

func (f *fixture) addPool(t *testing.T, p *domain.Pool) {
	t.Helper()
	require.NoError(t, f.pools.Upsert(context.Background(), p))
	if p.Scores != nil {
		require.NoError(t, f.pools.UpdateScores(context.Background(), p.TokenAddress, p.Scores))
	}
}

func basePool(id string, volume float64) *domain.Pool {
	return &domain.Pool{
		PoolID:       id,
		TokenAddress: "token-" + id,
		DisplayName:  id + "/WSOL",
		LiquidityUSD: 30_000,
		Volume24hUSD: volume,
		DiscoveredAt: time.Now().UnixMilli(),
	}
}

func TestEngine_ZeroVolumeNeverReturned(t *testing.T) {
	f := newFixture(t)
	f.addPool(t, basePool("live", 500))
	f.addPool(t, basePool("dead", 0))

	results, err := f.engine.Run(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "live", results[0].PoolID)
}

func TestEngine_DenylistedMintsExcluded(t *testing.T) {
	f := newFixture(t)
	f.addPool(t, basePool("meme", 500))

	usdc := basePool("usdc-pool", 1_000_000)
	usdc.TokenAddress = solana.USDCMint
	f.addPool(t, usdc)

	results, err := f.engine.Run(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "meme", results[0].PoolID)
}

func TestEngine_LimitClamped(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 250; i++ {
		f.addPool(t, basePool(fmt.Sprintf("p%03d", i), 500))
	}

	results, err := f.engine.Run(context.Background(), Request{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, results, MaxLimit)

	results, err = f.engine.Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, results, DefaultLimit)
}

func TestEngine_ActivityAndSafetyFloors(t *testing.T) {
	f := newFixture(t)

	hot := basePool("hot", 15_000)
	hot.LiquidityUSD = 60_000
	f.addPool(t, hot)

	tepid := basePool("tepid", 2_000)
	tepid.LiquidityUSD = 60_000
	f.addPool(t, tepid)

	shallow := basePool("shallow", 15_000)
	shallow.LiquidityUSD = 5_000
	f.addPool(t, shallow)

	results, err := f.engine.Run(context.Background(), Request{
		Activity: ActivityHot,
		Safety:   SafetySafe,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "hot", results[0].PoolID)
}

func TestEngine_PlatformFilters(t *testing.T) {
	f := newFixture(t)

	pump := basePool("pump", 500)
	pump.PlatformNative = true
	f.addPool(t, pump)
	f.addPool(t, basePool("plain", 500))

	results, err := f.engine.Run(context.Background(), Request{Platform: PlatformPumpOnly})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "pump", results[0].PoolID)

	results, err = f.engine.Run(context.Background(), Request{Platform: PlatformNoPump})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "plain", results[0].PoolID)
}

func TestEngine_HoneypotControls(t *testing.T) {
	f := newFixture(t)

	trap := basePool("trap", 500)
	trap.Scores = &domain.ScoreSnapshot{HoneypotScore: 90, IsHoneypot: true, ScoredAt: time.Now().UnixMilli()}
	f.addPool(t, trap)

	clean := basePool("clean", 500)
	clean.Scores = &domain.ScoreSnapshot{HoneypotScore: 0, SellRatio: 0.4, ScoredAt: time.Now().UnixMilli()}
	f.addPool(t, clean)

	results, err := f.engine.Run(context.Background(), Request{ExcludeHoneypots: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "clean", results[0].PoolID)

	results, err = f.engine.Run(context.Background(), Request{IncludeHoneypotsOnly: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "trap", results[0].PoolID)

	_, err = f.engine.Run(context.Background(), Request{
		ExcludeHoneypots:     true,
		IncludeHoneypotsOnly: true,
	})
	require.Error(t, err)
}

func TestEngine_MaxRiskScorePostFilter(t *testing.T) {
	f := newFixture(t)

	risky := basePool("risky", 500)
	risky.Scores = &domain.ScoreSnapshot{RiskScore: 8, ScoredAt: time.Now().UnixMilli()}
	f.addPool(t, risky)

	mild := basePool("mild", 500)
	mild.Scores = &domain.ScoreSnapshot{RiskScore: 2, ScoredAt: time.Now().UnixMilli()}
	f.addPool(t, mild)

	results, err := f.engine.Run(context.Background(), Request{MaxRiskScore: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mild", results[0].PoolID)

	// Default leaves the filter off.
	results, err = f.engine.Run(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestEngine_StaleScoresRecomputedNotPersisted(t *testing.T) {
	f := newFixture(t)

	pool := basePool("stale", 500)
	pool.Scores = &domain.ScoreSnapshot{MomentumScore: 99, ScoredAt: 1000}
	f.addPool(t, pool)

	// Newer samples exist than the cached snapshot covers.
	for i, price := range []float64{1.0, 1.1} {
		require.NoError(t, f.history.Append(context.Background(), &domain.PriceSample{
			TokenAddress: pool.TokenAddress,
			TimestampMs:  2000 + int64(i),
			PriceUSD:     price,
			LiquidityUSD: 30_000,
			Volume24h:    500,
		}))
	}

	results, err := f.engine.Run(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotEqual(t, 99.0, results[0].MomentumScore)
	assert.Equal(t, 1.1, results[0].PriceUSD)

	// The registry keeps its cached snapshot; the engine is read-only.
	stored, err := f.pools.GetByToken(context.Background(), pool.TokenAddress)
	require.NoError(t, err)
	assert.Equal(t, 99.0, stored.Scores.MomentumScore)
	assert.Equal(t, int64(1000), stored.Scores.ScoredAt)
}

func TestEngine_SortByComposite(t *testing.T) {
	f := newFixture(t)

	for i, composite := range []int{-2, 5, 1} {
		p := basePool(fmt.Sprintf("p%d", i), 500)
		p.Scores = &domain.ScoreSnapshot{CompositeScore: composite, ScoredAt: time.Now().UnixMilli()}
		f.addPool(t, p)
	}

	results, err := f.engine.Run(context.Background(), Request{SortBy: storage.SortComposite})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "p1", results[0].PoolID)
	assert.Equal(t, "p2", results[1].PoolID)
	assert.Equal(t, "p0", results[2].PoolID)
}

func TestEngine_ResultLinks(t *testing.T) {
	f := newFixture(t)
	f.addPool(t, basePool("p", 500))

	results, err := f.engine.Run(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://solscan.io/token/token-p", results[0].SolscanURL)
	assert.Equal(t, "https://dexscreener.com/solana/token-p", results[0].DexScreenerURL)
}
