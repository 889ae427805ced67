package scoring

import "solana-pool-radar/internal/domain"

// Momentum component weights. Price and volume trends are capped at
// their weight; buy pressure spans the full ±30 around a neutral 0.5
// buy ratio.
const (
	priceWeight    = 40.0
	volumeWeight   = 30.0
	pressureWeight = 60.0

	// MinMomentumSamples is the smallest window that produces a
	// non-neutral momentum score.
	MinMomentumSamples = 2
)

// Momentum returns a score in [-100, 100] from a window of samples
// ordered oldest first. Fewer than MinMomentumSamples yields 0.
func Momentum(samples []*domain.PriceSample) float64 {
	if len(samples) < MinMomentumSamples {
		return 0
	}

	earliest := samples[0]
	latest := samples[len(samples)-1]

	var priceComponent float64
	if earliest.PriceUSD > 0 {
		trend := (latest.PriceUSD - earliest.PriceUSD) / earliest.PriceUSD
		priceComponent = trend * priceWeight
		if priceComponent > priceWeight {
			priceComponent = priceWeight
		}
	}

	var volumeComponent float64
	prev := samples[len(samples)-2]
	if prev.Volume5m > 0 {
		trend := (latest.Volume5m - prev.Volume5m) / prev.Volume5m
		volumeComponent = trend * volumeWeight
		if volumeComponent > volumeWeight {
			volumeComponent = volumeWeight
		}
	}

	var pressureComponent float64
	if trades := latest.Buys5m + latest.Sells5m; trades > 0 {
		buyRatio := float64(latest.Buys5m) / float64(trades)
		pressureComponent = (buyRatio - 0.5) * pressureWeight
	}

	return clampFloat(priceComponent+volumeComponent+pressureComponent, -100, 100)
}
