// Package finmath implements the pure numeric primitives shared by the
// verification engine and discrepancy analyzer: growth rates, margins,
// unit normalization, and accuracy scoring. Every function here is total
// (never panics) and side-effect free.
package finmath

import "math"

// GrowthRate returns the percentage change from previous to current, or nil
// when previous is zero (undefined growth rate).
func GrowthRate(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	v := ((current - previous) / math.Abs(previous)) * 100
	return &v
}

// Margin returns numerator/denominator expressed as a percentage, or nil
// when denominator is zero.
func Margin(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := (numerator / denominator) * 100
	return &v
}

// BasisPointsToPercentage converts a basis-point value into a percentage.
func BasisPointsToPercentage(bps float64) float64 {
	return bps / 100
}

// PercentageToBasisPoints converts a percentage into basis points.
func PercentageToBasisPoints(pct float64) float64 {
	return pct * 100
}

// NormalizeToUnit converts a raw-dollar value into the given unit (or the
// identity for non-currency units).
func NormalizeToUnit(value float64, unit string) float64 {
	switch unit {
	case "usd_billions":
		return value / 1_000_000_000
	case "usd_millions":
		return value / 1_000_000
	default:
		return value
	}
}

// DenormalizeFromUnit converts value, stated in the given unit, back into raw
// dollars (or the identity for non-currency units).
func DenormalizeFromUnit(value float64, unit string) float64 {
	switch unit {
	case "usd_billions":
		return value * 1_000_000_000
	case "usd_millions":
		return value * 1_000_000
	default:
		return value
	}
}

// AccuracyScore scores how close a stated value is to the actual value, on
// [0, 1]. A zero actual value with a nonzero stated value scores 0; a zero
// actual value with a zero stated value scores 1 (both report "nothing").
func AccuracyScore(stated, actual float64) float64 {
	if actual == 0 {
		if stated != 0 {
			return 0.0
		}
		return 1.0
	}
	score := 1.0 - math.Abs(stated-actual)/math.Abs(actual)
	if score < 0 {
		return 0.0
	}
	return score
}

// PercentageDifference returns the signed percentage difference of stated
// from actual, or nil when actual is zero.
func PercentageDifference(stated, actual float64) *float64 {
	if actual == 0 {
		return nil
	}
	v := ((stated - actual) / math.Abs(actual)) * 100
	return &v
}
