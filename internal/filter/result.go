package filter

import (
	"fmt"

	"solana-pool-radar/internal/domain"
)

// Result is one filter-response record, ready for JSON or CSV output.
type Result struct {
	PoolID            string  `json:"pool_id"`
	Name              string  `json:"name"`
	TokenAddress      string  `json:"token_address"`
	LiquidityUSD      float64 `json:"liquidity"`
	Volume24hUSD      float64 `json:"volume_24h"`
	MarketCapEstimate float64 `json:"market_cap_estimate"`
	PriceUSD          float64 `json:"price_usd"`
	PriceChange5m     float64 `json:"price_change_5m"`
	PriceChange1h     float64 `json:"price_change_1h"`
	PriceChange24h    float64 `json:"price_change_24h"`
	MomentumScore     float64 `json:"momentum_score"`
	MomentumCategory  string  `json:"momentum_category"`
	HoneypotScore     int     `json:"honeypot_score"`
	SellRatio         float64 `json:"sell_ratio"`
	IsLikelyHoneypot  bool    `json:"is_likely_honeypot"`
	RiskScore         int     `json:"risk_score"`
	OpportunityScore  int     `json:"opportunity_score"`
	CompositeScore    int     `json:"composite_score"`
	DiscoveredAt      int64   `json:"discovered_at"`
	PlatformNative    bool    `json:"is_platform_native"`
	SolscanURL        string  `json:"solscan_url"`
	DexScreenerURL    string  `json:"dexscreener_url"`
}

// buildResult merges pool registry fields, the freshest scores and the
// latest sample into a presentation record. A nil sample falls back to
// registry liquidity and a liquidity-derived market cap.
func buildResult(pool *domain.Pool, scores *domain.ScoreSnapshot, latest *domain.PriceSample) Result {
	r := Result{
		PoolID:            pool.PoolID,
		Name:              pool.DisplayName,
		TokenAddress:      pool.TokenAddress,
		LiquidityUSD:      pool.LiquidityUSD,
		Volume24hUSD:      pool.Volume24hUSD,
		MarketCapEstimate: domain.EstimateMarketCap(0, pool.LiquidityUSD),
		MomentumCategory:  string(domain.CategorizeMomentum(0)),
		DiscoveredAt:      pool.DiscoveredAt,
		PlatformNative:    pool.PlatformNative,
		SolscanURL:        fmt.Sprintf("https://solscan.io/token/%s", pool.TokenAddress),
		DexScreenerURL:    fmt.Sprintf("https://dexscreener.com/solana/%s", pool.TokenAddress),
	}

	if latest != nil {
		r.LiquidityUSD = latest.LiquidityUSD
		r.Volume24hUSD = latest.Volume24h
		r.MarketCapEstimate = latest.MarketCapEstimate
		r.PriceUSD = latest.PriceUSD
		r.PriceChange5m = latest.PriceChange5m
		r.PriceChange1h = latest.PriceChange1h
		r.PriceChange24h = latest.PriceChange24h
	}

	if scores != nil {
		r.MomentumScore = scores.MomentumScore
		r.MomentumCategory = string(domain.CategorizeMomentum(scores.MomentumScore))
		r.HoneypotScore = scores.HoneypotScore
		r.SellRatio = scores.SellRatio
		r.IsLikelyHoneypot = scores.IsHoneypot
		r.RiskScore = scores.RiskScore
		r.OpportunityScore = scores.OpportunityScore
		r.CompositeScore = scores.CompositeScore
	}

	return r
}
