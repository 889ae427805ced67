package domain

// Pool represents a discovered liquidity pool between the native asset
// and a token of interest. Corresponds to the pools table.
type Pool struct {
	PoolID       string // PRIMARY KEY, immutable
	TokenAddress string // token of interest mint, set on first sighting
	DisplayName  string
	LiquidityUSD float64 // refreshed every discovery cycle
	Volume24hUSD float64 // refreshed every discovery cycle
	DiscoveredAt int64   // Unix timestamp in milliseconds, set once
	PlatformNative bool  // token originates from the pump.fun launch platform

	// Cached scores, derived from the price history window at ScoredAt.
	Scores *ScoreSnapshot
}

// RawPoolEntry is one entry of the pool discovery feed before
// normalization. Only the consumed fields are mapped.
type RawPoolEntry struct {
	PoolID    string  `json:"ammId"`
	LPMint    string  `json:"lpMint"`
	Name      string  `json:"name"`
	BaseMint  string  `json:"baseMint"`
	QuoteMint string  `json:"quoteMint"`
	Liquidity float64 `json:"liquidity"`
	Volume24h float64 `json:"volume24h"`
}

// TokenSecurity carries on-chain authority and holder facts supplied by
// an external collaborator. Chain inspection is not implemented here;
// when absent, risk scoring runs on market data alone.
type TokenSecurity struct {
	MintAuthorityRenounced   bool
	FreezeAuthorityRenounced bool
	HolderCount              int
	TopHolderPercent         float64 // 0..1
}
