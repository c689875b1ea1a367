package discrepancy_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarity-labs/claim-auditor/internal/discrepancy"
	"github.com/clarity-labs/claim-auditor/internal/model"
)

func vc(metric string, statedVsActual float64, accuracy float64, isGAAP bool, kind model.MetricKind, stated float64) discrepancy.VerifiedClaim {
	actual := statedVsActual
	return discrepancy.VerifiedClaim{
		Claim: model.Claim{Metric: metric, IsGAAP: isGAAP, MetricKind: kind, StatedValue: stated},
		Verification: model.Verification{
			ActualValue:   &actual,
			AccuracyScore: &accuracy,
		},
	}
}

func TestDetectRoundingBiasPattern(t *testing.T) {
	cbq := map[string][]discrepancy.VerifiedClaim{}
	// 10 inexact claims across 4 quarters (3, 3, 2, 2), 8 favorable (stated > actual).
	idx := 0
	for q := 1; q <= 4; q++ {
		label := fmt.Sprintf("2024Q%d", q)
		perQuarter := 2
		if q <= 2 {
			perQuarter = 3
		}
		var claims []discrepancy.VerifiedClaim
		for i := 0; i < perQuarter; i++ {
			favorable := idx < 8
			idx++
			actual := 100.0
			score := 0.95
			stated := 101.0
			if !favorable {
				stated = 99.0
			}
			claims = append(claims, discrepancy.VerifiedClaim{
				Claim: model.Claim{Metric: "revenue", MetricKind: model.MetricKindAbsolute, StatedValue: stated},
				Verification: model.Verification{
					ActualValue:   &actual,
					AccuracyScore: &score,
				},
			})
		}
		cbq[label] = claims
	}

	patterns := discrepancy.Analyze("company-1", cbq)
	require.Len(t, patterns, 1)
	assert.Equal(t, model.PatternConsistentRoundingUp, patterns[0].Kind)
	assert.InDelta(t, 0.8, patterns[0].Severity, 0.01)
}

func TestDetectMetricSwitching(t *testing.T) {
	cbq := map[string][]discrepancy.VerifiedClaim{
		"2024Q1": {vc("revenue", 100, 1, true, model.MetricKindAbsolute, 100)},
		"2024Q2": {vc("eps", 1, 1, true, model.MetricKindPerShare, 1)},
		"2024Q3": {vc("free_cash_flow", 1, 1, true, model.MetricKindAbsolute, 1)},
	}

	patterns := discrepancy.Analyze("company-1", cbq)
	require.Len(t, patterns, 1)
	assert.Equal(t, model.PatternMetricSwitching, patterns[0].Kind)
	assert.Equal(t, 0.5, patterns[0].Severity)
}

func TestDetectIncreasingInaccuracy(t *testing.T) {
	cbq := map[string][]discrepancy.VerifiedClaim{
		"2024Q1": {vc("revenue", 100, 0.99, true, model.MetricKindAbsolute, 100)},
		"2024Q2": {vc("revenue", 100, 0.90, true, model.MetricKindAbsolute, 100)},
		"2024Q3": {vc("revenue", 100, 0.80, true, model.MetricKindAbsolute, 100)},
	}

	patterns := discrepancy.Analyze("company-1", cbq)
	require.Len(t, patterns, 1)
	assert.Equal(t, model.PatternIncreasingInaccuracy, patterns[0].Kind)
	assert.InDelta(t, 0.19, patterns[0].Severity, 0.01)
}

func TestDetectGAAPShifting(t *testing.T) {
	cbq := map[string][]discrepancy.VerifiedClaim{
		"2024Q1": {
			vc("revenue", 100, 1, true, model.MetricKindAbsolute, 100),
			vc("eps", 1, 1, true, model.MetricKindPerShare, 1),
		},
		"2024Q2": {
			vc("revenue", 100, 1, false, model.MetricKindAbsolute, 100),
			vc("eps", 1, 1, false, model.MetricKindPerShare, 1),
		},
	}

	patterns := discrepancy.Analyze("company-1", cbq)
	require.Len(t, patterns, 1)
	assert.Equal(t, model.PatternGAAPNonGAAPShifting, patterns[0].Kind)
	assert.InDelta(t, 1.0, patterns[0].Severity, 0.01)
}

func TestDetectSelectiveEmphasis(t *testing.T) {
	cbq := map[string][]discrepancy.VerifiedClaim{}
	for q := 1; q <= 2; q++ {
		label := fmt.Sprintf("2024Q%d", q)
		var claims []discrepancy.VerifiedClaim
		for i := 0; i < 10; i++ {
			claims = append(claims, vc("revenue", 10, 1, true, model.MetricKindGrowthRate, 10))
		}
		claims = append(claims, vc("revenue", -1, 1, true, model.MetricKindGrowthRate, -1))
		cbq[label] = claims
	}

	patterns := discrepancy.Analyze("company-1", cbq)
	require.Len(t, patterns, 1)
	assert.Equal(t, model.PatternSelectiveEmphasis, patterns[0].Kind)
	assert.Equal(t, 0.6, patterns[0].Severity)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	patterns := discrepancy.Analyze("company-1", map[string][]discrepancy.VerifiedClaim{})
	assert.Empty(t, patterns)
}
