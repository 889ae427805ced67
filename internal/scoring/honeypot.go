package scoring

import "solana-pool-radar/internal/domain"

// HoneypotThreshold is the score at or above which a token is flagged
// as a suspected honeypot.
const HoneypotThreshold = 50

// Honeypot sell-pressure tiers.
const (
	honeypotNoSells        = 90 // active buying, zero sells
	honeypotCriticalRatio  = 70 // sell ratio below 5%
	honeypotSuspiciousRatio = 40 // sell ratio below 15%
	honeypotSilentPump     = 60 // no trades recorded, price only rises
)

// Honeypot returns a score in [0, 100] and the observed sell ratio from
// a window of samples. Buys and sells are summed across the window; the
// sell ratio is sells over total trades, 0 when no trades occurred.
func Honeypot(samples []*domain.PriceSample) (score int, sellRatio float64) {
	if len(samples) == 0 {
		return 0, 0
	}

	var buys, sells int
	for _, s := range samples {
		buys += s.Buys5m
		sells += s.Sells5m
	}

	total := buys + sells
	if total > 0 {
		sellRatio = float64(sells) / float64(total)
	}

	switch {
	case buys > 5 && sells == 0:
		return honeypotNoSells, sellRatio
	case sells > 0 && sellRatio < 0.05:
		return honeypotCriticalRatio, sellRatio
	case total > 0 && sellRatio < 0.15:
		return honeypotSuspiciousRatio, sellRatio
	case sells == 0 && mostlyRising(samples):
		return honeypotSilentPump, sellRatio
	}
	return 0, sellRatio
}

// IsHoneypot reports whether a honeypot score crosses the flag
// threshold.
func IsHoneypot(score int) bool {
	return score >= HoneypotThreshold
}

// mostlyRising reports whether at least 70% of the window's 5m price
// changes are positive.
func mostlyRising(samples []*domain.PriceSample) bool {
	var positive int
	for _, s := range samples {
		if s.PriceChange5m > 0 {
			positive++
		}
	}
	return float64(positive)/float64(len(samples)) >= 0.7
}
