package scoring

import "solana-pool-radar/internal/domain"

// Risk inputs taken from the most recent market state of a token.
type MarketState struct {
	LiquidityUSD      float64
	Volume24hUSD      float64
	MarketCapEstimate float64
	PlatformNative    bool
}

var liquidityRiskBands = []band{
	{below: 5_000, points: 4},
	{below: 10_000, points: 3},
	{below: 50_000, points: 1},
}

// Risk returns a score in [0, 10]. Higher is riskier. The honeypot
// score contributes up to 3 points; an optional security snapshot adds
// a bounded penalty on top.
func Risk(state MarketState, honeypotScore int, security *domain.TokenSecurity) int {
	score := 0

	if !state.PlatformNative {
		score += 2
	}

	score += bandPoints(state.LiquidityUSD, liquidityRiskBands)

	if state.LiquidityUSD > 0 {
		ratio := state.Volume24hUSD / state.LiquidityUSD
		switch {
		case ratio > 10:
			score += 2 // churn far above depth, likely wash trading
		case ratio < 0.01:
			score += 1 // dead pool
		}
	}

	if state.MarketCapEstimate < 10_000 {
		score += 2
	}

	honeypotPenalty := honeypotScore / 10
	if honeypotPenalty > 3 {
		honeypotPenalty = 3
	}
	score += honeypotPenalty

	score += SecurityPenalty(security)

	return clampInt(score, 0, 10)
}

// SecurityPenalty converts an optional token security snapshot into
// extra risk points. Nil means no data and no penalty.
func SecurityPenalty(security *domain.TokenSecurity) int {
	if security == nil {
		return 0
	}

	penalty := 0
	if !security.MintAuthorityRenounced {
		penalty += 3
	}
	if !security.FreezeAuthorityRenounced {
		penalty += 3
	}
	switch {
	case security.TopHolderPercent > 50:
		penalty += 2
	case security.TopHolderPercent > 30:
		penalty += 1
	}
	return penalty
}
