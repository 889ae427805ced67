package ingestion

import (
	"errors"
	"fmt"
	"math"

	"solana-pool-radar/internal/domain"
)

// Validation defaults.
const (
	// DefaultEpsilon is the smallest price treated as a real
	// quotation; anything below is noise from drained pools.
	DefaultEpsilon = 1e-9

	// DefaultMaxDeviationPct rejects samples whose price moved more
	// than this percentage against the previous stored sample.
	DefaultMaxDeviationPct = 30.0
)

// ErrValidation marks a sample rejected by sanity checks. The sample is
// discarded and the token's previous score stands.
var ErrValidation = errors.New("sample validation failed")

// Validator applies price sanity checks before a sample is stored.
type Validator struct {
	Epsilon         float64
	MaxDeviationPct float64
}

// NewValidator creates a validator with sane zero-value handling.
func NewValidator(epsilon, maxDeviationPct float64) *Validator {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	if maxDeviationPct <= 0 {
		maxDeviationPct = DefaultMaxDeviationPct
	}
	return &Validator{Epsilon: epsilon, MaxDeviationPct: maxDeviationPct}
}

// Check validates a sample against the token's previous sample, which
// may be nil for a first observation.
func (v *Validator) Check(sample, prev *domain.PriceSample) error {
	if sample.PriceUSD <= 0 {
		return fmt.Errorf("%w: non-positive price %g", ErrValidation, sample.PriceUSD)
	}
	if sample.PriceUSD < v.Epsilon {
		return fmt.Errorf("%w: price %g below epsilon %g", ErrValidation, sample.PriceUSD, v.Epsilon)
	}

	if prev != nil && prev.PriceUSD > 0 {
		deviation := math.Abs(sample.PriceUSD-prev.PriceUSD) / prev.PriceUSD * 100
		if deviation > v.MaxDeviationPct {
			return fmt.Errorf("%w: price moved %.1f%% against previous sample (max %.1f%%)",
				ErrValidation, deviation, v.MaxDeviationPct)
		}
	}

	return nil
}
