// Package scoring computes momentum, honeypot, risk, opportunity and
// composite scores for tracked tokens from their recent price samples.
// All functions are pure and deterministic; missing data yields neutral
// scores rather than errors.
package scoring

// band awards points to values strictly below an upper bound. Bands are
// evaluated in order and the first match wins.
type band struct {
	below  float64
	points int
}

func bandPoints(value float64, bands []band) int {
	for _, b := range bands {
		if value < b.below {
			return b.points
		}
	}
	return 0
}

// threshold awards points to values strictly above a floor. Thresholds
// are evaluated in order and the first match wins, so list them
// descending.
type threshold struct {
	above  float64
	points int
}

func thresholdPoints(value float64, thresholds []threshold) int {
	for _, t := range thresholds {
		if value > t.above {
			return t.points
		}
	}
	return 0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
