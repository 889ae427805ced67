package domain

// ScoreSnapshot holds the scores computed over a token's recent sample
// window. Reproducible from price history; cached on the Pool row.
type ScoreSnapshot struct {
	MomentumScore    float64 // [-100, 100]
	HoneypotScore    int     // [0, 100]
	SellRatio        float64 // sells / (buys + sells) over the window
	IsHoneypot       bool    // HoneypotScore >= 50
	RiskScore        int     // [0, 10], lower is better
	OpportunityScore int     // [0, 10], higher is better
	CompositeScore   int     // OpportunityScore - RiskScore, unclamped

	WindowSize int   // samples considered
	ScoredAt   int64 // Unix timestamp in milliseconds
}

// MomentumCategory labels a momentum score for presentation.
type MomentumCategory string

const (
	MomentumBullish  MomentumCategory = "bullish"
	MomentumPositive MomentumCategory = "positive"
	MomentumNeutral  MomentumCategory = "neutral"
	MomentumNegative MomentumCategory = "negative"
	MomentumBearish  MomentumCategory = "bearish"
)

// CategorizeMomentum maps a momentum score to its category label.
func CategorizeMomentum(score float64) MomentumCategory {
	switch {
	case score > 30:
		return MomentumBullish
	case score > 10:
		return MomentumPositive
	case score > -10:
		return MomentumNeutral
	case score > -30:
		return MomentumNegative
	default:
		return MomentumBearish
	}
}
