package scoring

import (
	"time"

	"solana-pool-radar/internal/domain"
)

// DefaultWindowSize is the number of most recent samples considered
// when scoring a token.
const DefaultWindowSize = 12

// Engine computes full score snapshots over a bounded sample window.
type Engine struct {
	windowSize int
}

// NewEngine creates a scoring engine. windowSize <= 0 selects
// DefaultWindowSize.
func NewEngine(windowSize int) *Engine {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Engine{windowSize: windowSize}
}

// WindowSize returns the configured sample window.
func (e *Engine) WindowSize() int {
	return e.windowSize
}

// Score computes a snapshot for the pool from its samples, which must
// be ordered newest first as returned by PriceHistoryStore.Recent. A
// nil security snapshot means no security data, not a clean bill.
func (e *Engine) Score(pool *domain.Pool, samples []*domain.PriceSample, security *domain.TokenSecurity, now time.Time) *domain.ScoreSnapshot {
	if len(samples) > e.windowSize {
		samples = samples[:e.windowSize]
	}
	window := oldestFirst(samples)

	honeypotScore, sellRatio := Honeypot(window)
	state := marketState(pool, window)
	risk := Risk(state, honeypotScore, security)
	opportunity := Opportunity(state)

	return &domain.ScoreSnapshot{
		MomentumScore:    Momentum(window),
		HoneypotScore:    honeypotScore,
		SellRatio:        sellRatio,
		IsHoneypot:       IsHoneypot(honeypotScore),
		RiskScore:        risk,
		OpportunityScore: opportunity,
		CompositeScore:   Composite(opportunity, risk),
		WindowSize:       len(window),
		ScoredAt:         now.UnixMilli(),
	}
}

// marketState takes liquidity, volume and market cap from the latest
// sample, falling back to the pool row when the token has never been
// polled.
func marketState(pool *domain.Pool, window []*domain.PriceSample) MarketState {
	state := MarketState{
		LiquidityUSD:      pool.LiquidityUSD,
		Volume24hUSD:      pool.Volume24hUSD,
		MarketCapEstimate: domain.EstimateMarketCap(0, pool.LiquidityUSD),
		PlatformNative:    pool.PlatformNative,
	}
	if len(window) > 0 {
		latest := window[len(window)-1]
		state.LiquidityUSD = latest.LiquidityUSD
		state.Volume24hUSD = latest.Volume24h
		state.MarketCapEstimate = latest.MarketCapEstimate
	}
	return state
}

func oldestFirst(samples []*domain.PriceSample) []*domain.PriceSample {
	out := make([]*domain.PriceSample, len(samples))
	for i, s := range samples {
		out[len(samples)-1-i] = s
	}
	return out
}
