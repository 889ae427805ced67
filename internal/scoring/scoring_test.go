package scoring

import (
	"testing"
	"time"

	"solana-pool-radar/internal/domain"
)

func sample(price float64, vol5m float64, buys, sells int) *domain.PriceSample {
	return &domain.PriceSample{
		PriceUSD: price,
		Volume5m: vol5m,
		Buys5m:   buys,
		Sells5m:  sells,
	}
}

func TestMomentum_RequiresTwoSamples(t *testing.T) {
	if got := Momentum(nil); got != 0 {
		t.Errorf("expected 0 for no samples, got %f", got)
	}
	if got := Momentum([]*domain.PriceSample{sample(1.0, 100, 5, 5)}); got != 0 {
		t.Errorf("expected 0 for single sample, got %f", got)
	}
}

func TestMomentum_Components(t *testing.T) {
	t.Run("rising price capped at price weight", func(t *testing.T) {
		// Price 10x: raw price component would be 360, capped at 40.
		// Flat volume, balanced trades.
		samples := []*domain.PriceSample{
			sample(0.1, 100, 5, 5),
			sample(1.0, 100, 5, 5),
		}
		got := Momentum(samples)
		if got != 40 {
			t.Errorf("expected 40, got %f", got)
		}
	})

	t.Run("buy pressure only", func(t *testing.T) {
		// Flat price and volume, all buys: (1.0-0.5)*60 = 30.
		samples := []*domain.PriceSample{
			sample(1.0, 100, 0, 0),
			sample(1.0, 100, 8, 0),
		}
		got := Momentum(samples)
		if got != 30 {
			t.Errorf("expected 30, got %f", got)
		}
	})

	t.Run("all sells is negative", func(t *testing.T) {
		samples := []*domain.PriceSample{
			sample(1.0, 100, 0, 0),
			sample(1.0, 100, 0, 8),
		}
		got := Momentum(samples)
		if got != -30 {
			t.Errorf("expected -30, got %f", got)
		}
	})

	t.Run("full collapse bottoms out at -100", func(t *testing.T) {
		samples := []*domain.PriceSample{
			sample(1.0, 1000, 0, 0),
			sample(0, 0, 0, 20),
		}
		got := Momentum(samples)
		if got != -100 {
			t.Errorf("expected -100, got %f", got)
		}
	})
}

func TestCategorizeMomentum(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.MomentumCategory
	}{
		{50, domain.MomentumBullish},
		{20, domain.MomentumPositive},
		{0, domain.MomentumNeutral},
		{-20, domain.MomentumNegative},
		{-50, domain.MomentumBearish},
	}
	for _, tc := range cases {
		if got := domain.CategorizeMomentum(tc.score); got != tc.want {
			t.Errorf("CategorizeMomentum(%f) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestHoneypot_Tiers(t *testing.T) {
	t.Run("buys with zero sells", func(t *testing.T) {
		samples := []*domain.PriceSample{sample(1, 0, 10, 0)}
		score, ratio := Honeypot(samples)
		if score != 90 {
			t.Errorf("expected 90, got %d", score)
		}
		if ratio != 0 {
			t.Errorf("expected sell ratio 0, got %f", ratio)
		}
		if !IsHoneypot(score) {
			t.Error("expected honeypot flag")
		}
	})

	t.Run("critical sell ratio", func(t *testing.T) {
		samples := []*domain.PriceSample{sample(1, 0, 100, 3)}
		score, ratio := Honeypot(samples)
		if score != 70 {
			t.Errorf("expected 70, got %d", score)
		}
		if ratio >= 0.05 {
			t.Errorf("expected ratio below 0.05, got %f", ratio)
		}
	})

	t.Run("suspicious sell ratio", func(t *testing.T) {
		samples := []*domain.PriceSample{sample(1, 0, 90, 10)}
		score, _ := Honeypot(samples)
		if score != 40 {
			t.Errorf("expected 40, got %d", score)
		}
		if IsHoneypot(score) {
			t.Error("score 40 must not be flagged")
		}
	})

	t.Run("no trades but price only rises", func(t *testing.T) {
		samples := []*domain.PriceSample{
			{PriceChange5m: 2.5},
			{PriceChange5m: 1.1},
			{PriceChange5m: 4.0},
		}
		score, ratio := Honeypot(samples)
		if score != 60 {
			t.Errorf("expected 60, got %d", score)
		}
		if ratio != 0 {
			t.Errorf("expected ratio 0, got %f", ratio)
		}
	})

	t.Run("healthy trading", func(t *testing.T) {
		samples := []*domain.PriceSample{sample(1, 0, 12, 9)}
		score, _ := Honeypot(samples)
		if score != 0 {
			t.Errorf("expected 0, got %d", score)
		}
	})

	t.Run("no samples", func(t *testing.T) {
		score, ratio := Honeypot(nil)
		if score != 0 || ratio != 0 {
			t.Errorf("expected zeros, got %d %f", score, ratio)
		}
	})
}

func TestRisk_WorstCaseClamps(t *testing.T) {
	// Non-native +2, liquidity <5k +4, vol/liq >10 +2, mcap <10k +2,
	// honeypot 90 -> +3; raw 13 clamps to 10.
	state := MarketState{
		LiquidityUSD:      2_000,
		Volume24hUSD:      50_000,
		MarketCapEstimate: 3_000,
		PlatformNative:    false,
	}
	if got := Risk(state, 90, nil); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
}

func TestRisk_ModerateToken(t *testing.T) {
	// Native, 30k liquidity (+1), ratio 1.0, mcap 45k, no honeypot.
	state := MarketState{
		LiquidityUSD:      30_000,
		Volume24hUSD:      30_000,
		MarketCapEstimate: 45_000,
		PlatformNative:    true,
	}
	if got := Risk(state, 0, nil); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestRisk_DeadPool(t *testing.T) {
	// Non-native +2, 100k liquidity, ratio 0.0005 -> +1.
	state := MarketState{
		LiquidityUSD:      100_000,
		Volume24hUSD:      50,
		MarketCapEstimate: 150_000,
	}
	if got := Risk(state, 0, nil); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestSecurityPenalty(t *testing.T) {
	if got := SecurityPenalty(nil); got != 0 {
		t.Errorf("nil snapshot must be 0, got %d", got)
	}

	full := &domain.TokenSecurity{TopHolderPercent: 60}
	if got := SecurityPenalty(full); got != 8 {
		t.Errorf("expected 8, got %d", got)
	}

	clean := &domain.TokenSecurity{
		MintAuthorityRenounced:   true,
		FreezeAuthorityRenounced: true,
		TopHolderPercent:         35,
	}
	if got := SecurityPenalty(clean); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestOpportunity(t *testing.T) {
	// 60k volume +4, 120k liquidity +2, native +1.
	state := MarketState{
		LiquidityUSD:   120_000,
		Volume24hUSD:   60_000,
		PlatformNative: true,
	}
	if got := Opportunity(state); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}

	if got := Opportunity(MarketState{}); got != 0 {
		t.Errorf("expected 0 for empty state, got %d", got)
	}
}

func TestComposite(t *testing.T) {
	if got := Composite(7, 3); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
	if got := Composite(0, 10); got != -10 {
		t.Errorf("expected -10, got %d", got)
	}
}

func TestEngine_NoSamplesIsNeutral(t *testing.T) {
	engine := NewEngine(0)
	pool := &domain.Pool{PoolID: "p", TokenAddress: "t", LiquidityUSD: 60_000, Volume24hUSD: 12_000}

	snap := engine.Score(pool, nil, nil, time.Unix(1700000000, 0))
	if snap.MomentumScore != 0 {
		t.Errorf("expected neutral momentum, got %f", snap.MomentumScore)
	}
	if snap.HoneypotScore != 0 || snap.IsHoneypot {
		t.Errorf("expected no honeypot signal, got %d", snap.HoneypotScore)
	}
	if snap.WindowSize != 0 {
		t.Errorf("expected window 0, got %d", snap.WindowSize)
	}
	// Falls back to pool row: volume 12k (+3), liquidity 60k (+1).
	if snap.OpportunityScore != 4 {
		t.Errorf("expected opportunity 4, got %d", snap.OpportunityScore)
	}
	if snap.ScoredAt != time.Unix(1700000000, 0).UnixMilli() {
		t.Errorf("unexpected scored_at %d", snap.ScoredAt)
	}
}

func TestEngine_WindowTrimAndOrdering(t *testing.T) {
	engine := NewEngine(3)
	pool := &domain.Pool{PoolID: "p", TokenAddress: "t"}

	// Newest first, as Recent returns. Oldest in-window price is 1.0,
	// latest is 2.0: +100% price trend capped at 40.
	samples := []*domain.PriceSample{
		{TimestampMs: 4, PriceUSD: 2.0, Volume5m: 100, Buys5m: 5, Sells5m: 5},
		{TimestampMs: 3, PriceUSD: 1.5, Volume5m: 100},
		{TimestampMs: 2, PriceUSD: 1.0, Volume5m: 100},
		{TimestampMs: 1, PriceUSD: 50.0, Volume5m: 100}, // outside window
	}

	snap := engine.Score(pool, samples, nil, time.Now())
	if snap.WindowSize != 3 {
		t.Fatalf("expected window 3, got %d", snap.WindowSize)
	}
	if snap.MomentumScore != 40 {
		t.Errorf("expected momentum 40, got %f", snap.MomentumScore)
	}
}
