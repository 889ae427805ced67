// Package filter answers declarative queries over discovered pools,
// attaching fresh scores and presentation fields to each result.
package filter

import (
	"fmt"
	"time"

	"solana-pool-radar/internal/storage"
)

// Limit bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// TimeRange restricts results to pools discovered within a window.
type TimeRange string

const (
	TimeRangeAny TimeRange = ""
	TimeRange1h  TimeRange = "1h"
	TimeRange6h  TimeRange = "6h"
	TimeRange24h TimeRange = "24h"
	TimeRange7d  TimeRange = "7d"
)

var timeRangeDurations = map[TimeRange]time.Duration{
	TimeRange1h:  time.Hour,
	TimeRange6h:  6 * time.Hour,
	TimeRange24h: 24 * time.Hour,
	TimeRange7d:  7 * 24 * time.Hour,
}

// ActivityLevel maps to a 24h volume floor.
type ActivityLevel string

const (
	ActivityAny      ActivityLevel = "any"
	ActivityModerate ActivityLevel = "moderate"
	ActivityActive   ActivityLevel = "active"
	ActivityHot      ActivityLevel = "hot"
)

var activityVolumeFloors = map[ActivityLevel]float64{
	ActivityHot:      10_000,
	ActivityActive:   5_000,
	ActivityModerate: 1_000,
	ActivityAny:      0,
}

// SafetyLevel maps to a liquidity floor.
type SafetyLevel string

const (
	SafetyAny      SafetyLevel = "any"
	SafetyModerate SafetyLevel = "moderate"
	SafetySafe     SafetyLevel = "safe"
	SafetyPremium  SafetyLevel = "premium"
)

var safetyLiquidityFloors = map[SafetyLevel]float64{
	SafetyPremium:  50_000,
	SafetySafe:     20_000,
	SafetyModerate: 10_000,
	SafetyAny:      0,
}

// Platform restricts results by launch platform.
type Platform string

const (
	PlatformAny      Platform = ""
	PlatformPumpOnly Platform = "pump_only"
	PlatformNoPump   Platform = "no_pump"
)

// Request is a declarative pool filter. The zero value matches every
// pool with positive volume that is not a denylisted mint.
type Request struct {
	TimeRange   TimeRange
	MinAgeHours float64
	MaxAgeDays  float64

	MinLiquidityUSD float64
	MaxLiquidityUSD float64
	MinVolume24hUSD float64

	Activity ActivityLevel
	Safety   SafetyLevel
	Platform Platform

	ExcludeHoneypots     bool
	IncludeHoneypotsOnly bool
	MaxHoneypotScore     int
	MinSellRatio         float64

	// MaxRiskScore filters after scores attach; 10 (or 0) means off.
	MaxRiskScore int

	SortBy storage.SortKey
	Limit  int
}

// Normalize fills defaults and clamps the limit.
func (r *Request) Normalize() {
	if r.Activity == "" {
		r.Activity = ActivityAny
	}
	if r.Safety == "" {
		r.Safety = SafetyAny
	}
	if r.SortBy == "" {
		r.SortBy = storage.SortNewest
	}
	if r.MaxRiskScore <= 0 || r.MaxRiskScore > 10 {
		r.MaxRiskScore = 10
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
}

// Validate rejects unknown enum values and contradictory bounds.
func (r *Request) Validate() error {
	if r.TimeRange != TimeRangeAny {
		if _, ok := timeRangeDurations[r.TimeRange]; !ok {
			return fmt.Errorf("unknown time_range %q", r.TimeRange)
		}
	}
	if _, ok := activityVolumeFloors[r.Activity]; !ok {
		return fmt.Errorf("unknown activity level %q", r.Activity)
	}
	if _, ok := safetyLiquidityFloors[r.Safety]; !ok {
		return fmt.Errorf("unknown safety level %q", r.Safety)
	}
	switch r.Platform {
	case PlatformAny, PlatformPumpOnly, PlatformNoPump:
	default:
		return fmt.Errorf("unknown platform filter %q", r.Platform)
	}
	switch r.SortBy {
	case storage.SortNewest, storage.SortLiquidity, storage.SortVolume,
		storage.SortMomentum, storage.SortRisk, storage.SortComposite:
	default:
		return fmt.Errorf("unknown sort key %q", r.SortBy)
	}
	if r.ExcludeHoneypots && r.IncludeHoneypotsOnly {
		return fmt.Errorf("exclude_honeypots and include_honeypots_only are mutually exclusive")
	}
	if r.MaxLiquidityUSD > 0 && r.MinLiquidityUSD > r.MaxLiquidityUSD {
		return fmt.Errorf("min_liquidity %g exceeds max_liquidity %g", r.MinLiquidityUSD, r.MaxLiquidityUSD)
	}
	return nil
}
