// Package discrepancy mines a company's verified claims for cross-quarter
// patterns of systematically misleading communication: rounding bias,
// metric switching, worsening accuracy, GAAP/non-GAAP shifting, and
// selective emphasis of favorable growth. Detectors are pure functions of
// the claim set and run in a fixed, deterministic order.
package discrepancy

import (
	"fmt"
	"math"
	"sort"

	"github.com/clarity-labs/claim-auditor/internal/model"
)

// VerifiedClaim pairs a Claim with its Verification, the unit the analyzer
// operates on.
type VerifiedClaim struct {
	Claim        model.Claim
	Verification model.Verification
}

// Analyze runs all five detectors over claimsByQuarter (quarter label, e.g.
// "2024Q1", to the claims reported in that quarter) and returns the
// resulting Patterns for companyID, in detector order: rounding, switching,
// inaccuracy, GAAP, emphasis. Detectors never error; each independently
// emits zero or one Pattern.
func Analyze(companyID string, claimsByQuarter map[string][]VerifiedClaim) []model.Pattern {
	var patterns []model.Pattern
	patterns = append(patterns, detectRoundingBias(companyID, claimsByQuarter)...)
	patterns = append(patterns, detectMetricSwitching(companyID, claimsByQuarter)...)
	patterns = append(patterns, detectIncreasingInaccuracy(companyID, claimsByQuarter)...)
	patterns = append(patterns, detectGAAPShifting(companyID, claimsByQuarter)...)
	patterns = append(patterns, detectSelectiveEmphasis(companyID, claimsByQuarter)...)
	return patterns
}

func sortedQuarters(cbq map[string][]VerifiedClaim) []string {
	qs := make([]string, 0, len(cbq))
	for q := range cbq {
		qs = append(qs, q)
	}
	sort.Strings(qs)
	return qs
}

func detectRoundingBias(companyID string, cbq map[string][]VerifiedClaim) []model.Pattern {
	favorable, total := 0, 0
	affectedSet := map[string]bool{}

	for _, quarter := range sortedQuarters(cbq) {
		for _, vc := range cbq[quarter] {
			v := vc.Verification
			if v.ActualValue == nil || v.AccuracyScore == nil {
				continue
			}
			score := *v.AccuracyScore
			if score <= 0 || score >= 1 {
				continue
			}
			total++
			if vc.Claim.StatedValue > *v.ActualValue {
				favorable++
				affectedSet[quarter] = true
			}
		}
	}

	if total < 4 || float64(favorable)/float64(total) <= 0.70 {
		return nil
	}

	return []model.Pattern{{
		CompanyID:   companyID,
		Kind:        model.PatternConsistentRoundingUp,
		Description: fmt.Sprintf("Management consistently rounds in a favorable direction. %d/%d inexact claims overshoot the actual figure.", favorable, total),
		AffectedQuarters: sortedKeys(affectedSet),
		Severity:         round2(float64(favorable) / float64(total)),
		Evidence:         []string{fmt.Sprintf("%d/%d favorable roundings", favorable, total)},
	}}
}

func detectMetricSwitching(companyID string, cbq map[string][]VerifiedClaim) []model.Pattern {
	topByQuarter := map[string]string{}
	for quarter, claims := range cbq {
		counts := map[string]int{}
		for _, vc := range claims {
			counts[vc.Claim.Metric]++
		}
		top, topCount := "", -1
		for _, quarterKey := range sortedMetricKeys(counts) {
			if counts[quarterKey] > topCount {
				top, topCount = quarterKey, counts[quarterKey]
			}
		}
		if top != "" {
			topByQuarter[quarter] = top
		}
	}

	unique := map[string]bool{}
	for _, m := range topByQuarter {
		unique[m] = true
	}

	if len(unique) < 3 || len(topByQuarter) < 3 {
		return nil
	}

	quarters := sortedKeysFromMap(topByQuarter)
	desc := "Most-emphasized metric shifts across quarters ("
	for i, q := range quarters {
		if i > 0 {
			desc += "; "
		}
		desc += fmt.Sprintf("%s: %s", q, topByQuarter[q])
	}
	desc += "). Possible selective emphasis."

	return []model.Pattern{{
		CompanyID:        companyID,
		Kind:             model.PatternMetricSwitching,
		Description:      desc,
		AffectedQuarters: quarters,
		Severity:         0.5,
		Evidence:         []string{fmt.Sprintf("Top metrics: %v", topByQuarter)},
	}}
}

func detectIncreasingInaccuracy(companyID string, cbq map[string][]VerifiedClaim) []model.Pattern {
	quarters := sortedQuarters(cbq)
	var series []string
	quarterAccuracy := map[string]float64{}

	for _, quarter := range quarters {
		var sum float64
		var n int
		for _, vc := range cbq[quarter] {
			if vc.Verification.AccuracyScore != nil {
				sum += *vc.Verification.AccuracyScore
				n++
			}
		}
		if n > 0 {
			quarterAccuracy[quarter] = sum / float64(n)
			series = append(series, quarter)
		}
	}

	if len(series) < 3 {
		return nil
	}

	first := quarterAccuracy[series[0]]
	last := quarterAccuracy[series[len(series)-1]]
	if last >= first-0.05 {
		return nil
	}

	trend := ""
	for i, q := range series {
		if i > 0 {
			trend += "; "
		}
		trend += fmt.Sprintf("%s: %.1f%%", q, quarterAccuracy[q]*100)
	}

	return []model.Pattern{{
		CompanyID:        companyID,
		Kind:             model.PatternIncreasingInaccuracy,
		Description:      fmt.Sprintf("Claim accuracy declining over time (%s).", trend),
		AffectedQuarters: series,
		Severity:         round2(math.Abs(last - first)),
		Evidence:         []string{fmt.Sprintf("Accuracy trend: %v", quarterAccuracy)},
	}}
}

func detectGAAPShifting(companyID string, cbq map[string][]VerifiedClaim) []model.Pattern {
	ratios := map[string]float64{}
	for quarter, claims := range cbq {
		if len(claims) == 0 {
			continue
		}
		var gaapCount int
		for _, vc := range claims {
			if vc.Claim.IsGAAP {
				gaapCount++
			}
		}
		ratios[quarter] = float64(gaapCount) / float64(len(claims))
	}

	if len(ratios) < 2 {
		return nil
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, r := range ratios {
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}
	if max-min <= 0.30 {
		return nil
	}

	return []model.Pattern{{
		CompanyID:        companyID,
		Kind:             model.PatternGAAPNonGAAPShifting,
		Description:      fmt.Sprintf("Company shifts between GAAP and non-GAAP emphasis. GAAP ratios: %v", ratios),
		AffectedQuarters: sortedKeysFromFloatMap(ratios),
		Severity:         round2(max - min),
		Evidence:         []string{fmt.Sprintf("GAAP ratios: %v", ratios)},
	}}
}

func detectSelectiveEmphasis(companyID string, cbq map[string][]VerifiedClaim) []model.Pattern {
	var biasedQuarters []string
	for _, quarter := range sortedQuarters(cbq) {
		var pos, neg int
		for _, vc := range cbq[quarter] {
			if vc.Claim.MetricKind != model.MetricKindGrowthRate {
				continue
			}
			switch {
			case vc.Claim.StatedValue > 0:
				pos++
			case vc.Claim.StatedValue < 0:
				neg++
			}
		}
		total := pos + neg
		if total > 2 && float64(pos)/float64(total) > 0.90 {
			biasedQuarters = append(biasedQuarters, quarter)
		}
	}

	if len(biasedQuarters) < 2 {
		return nil
	}

	return []model.Pattern{{
		CompanyID: companyID,
		Kind:      model.PatternSelectiveEmphasis,
		Description: fmt.Sprintf(
			"Management overwhelmingly highlights positive growth metrics in %d quarters while avoiding negative trends.",
			len(biasedQuarters),
		),
		AffectedQuarters: biasedQuarters,
		Severity:         0.6,
		Evidence:         []string{fmt.Sprintf("Quarters with >90%% positive growth claims: %v", biasedQuarters)},
	}}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysFromMap(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysFromFloatMap(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedMetricKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
