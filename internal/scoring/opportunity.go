package scoring

var volumeOpportunityTiers = []threshold{
	{above: 50_000, points: 4},
	{above: 10_000, points: 3},
	{above: 5_000, points: 2},
	{above: 1_000, points: 1},
}

var liquidityOpportunityTiers = []threshold{
	{above: 100_000, points: 2},
	{above: 50_000, points: 1},
}

// Opportunity returns a score in [0, 10]. Higher means a more tradeable
// token: real volume, enough depth to exit, and platform-native launch
// mechanics.
func Opportunity(state MarketState) int {
	score := thresholdPoints(state.Volume24hUSD, volumeOpportunityTiers)
	score += thresholdPoints(state.LiquidityUSD, liquidityOpportunityTiers)
	if state.PlatformNative {
		score++
	}
	return clampInt(score, 0, 10)
}

// Composite combines opportunity and risk into a single ranking value
// in [-10, 10].
func Composite(opportunity, risk int) int {
	return opportunity - risk
}
