package domain

// PriceSample is one market snapshot for a token. Corresponds to the
// price_history table. Append-only: samples are never mutated after
// insert, and timestamps per token are strictly increasing.
type PriceSample struct {
	TokenAddress string
	TimestampMs  int64 // Unix timestamp in milliseconds

	PriceUSD     float64
	LiquidityUSD float64

	Volume5m  float64
	Volume1h  float64
	Volume24h float64

	Buys5m  int
	Sells5m int

	PriceChange5m  float64 // percent
	PriceChange1h  float64 // percent
	PriceChange24h float64 // percent

	// MarketCapEstimate is the provider FDV when available, otherwise
	// liquidity * 1.5 (see EstimateMarketCap).
	MarketCapEstimate float64
}

// MarketCapFallbackMultiplier approximates market cap from pool
// liquidity when no fully-diluted value is reported.
const MarketCapFallbackMultiplier = 1.5

// EstimateMarketCap returns the live fully-diluted value when positive,
// falling back to the liquidity-based estimate. The two are never
// blended.
func EstimateMarketCap(fdv, liquidityUSD float64) float64 {
	if fdv > 0 {
		return fdv
	}
	return liquidityUSD * MarketCapFallbackMultiplier
}
