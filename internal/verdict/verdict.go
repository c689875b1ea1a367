// Package verdict implements the pure classification rules that turn an
// accuracy score and a set of misleading flags into a Verdict, and that
// roll a batch of verdicts up into a single trust score.
package verdict

import "github.com/clarity-labs/claim-auditor/internal/model"

// Tolerances holds the three configurable thresholds the base verdict is
// drawn from (spec default: verification_tolerance=0.02,
// approximate_tolerance=0.10, misleading_threshold=0.25).
type Tolerances struct {
	Verified   float64
	Approximate float64
	Misleading float64
}

// DefaultTolerances returns the spec's documented defaults.
func DefaultTolerances() Tolerances {
	return Tolerances{Verified: 0.02, Approximate: 0.10, Misleading: 0.25}
}

// Assign classifies a claim's verification outcome using the default
// tolerances. score is the finmath.AccuracyScore of the claim; flags are the
// misleading flags the verification engine detected. The base verdict is
// chosen by score thresholds, then upgraded to misleading if it would
// otherwise be verified/approximately_correct but at least one substantive
// flag fired (rounding_bias, gaap_nongaap_mismatch, segment_vs_total,
// misleading_comparison).
func Assign(score float64, flags []model.MisleadingFlag) model.Verdict {
	return AssignWith(DefaultTolerances(), score, flags)
}

// AssignWith is Assign parameterized by an explicit Tolerances, for callers
// honoring the configuration surface's tolerance overrides.
func AssignWith(tol Tolerances, score float64, flags []model.MisleadingFlag) model.Verdict {
	base := baseVerdict(tol, score)
	if (base == model.VerdictVerified || base == model.VerdictApproximatelyCorrect) && hasSubstantive(flags) {
		return model.VerdictMisleading
	}
	return base
}

func baseVerdict(tol Tolerances, score float64) model.Verdict {
	switch {
	case score >= 1-tol.Verified:
		return model.VerdictVerified
	case score >= 1-tol.Approximate:
		return model.VerdictApproximatelyCorrect
	case score >= 1-tol.Misleading:
		return model.VerdictMisleading
	default:
		return model.VerdictIncorrect
	}
}

func hasSubstantive(flags []model.MisleadingFlag) bool {
	for _, f := range flags {
		if f.IsSubstantive() {
			return true
		}
	}
	return false
}

// verdictWeight is the per-verdict contribution to TrustScore's raw average,
// on [-1, 1].
var verdictWeight = map[model.Verdict]float64{
	model.VerdictVerified:             1.0,
	model.VerdictApproximatelyCorrect: 0.7,
	model.VerdictMisleading:           -0.3,
	model.VerdictIncorrect:            -1.0,
}

// TrustScore rolls up verdict counts (as produced over all of a company's
// verified claims) into a single 0-100 trust score. Unverifiable claims are
// excluded from the denominator. A company with no verifiable claims at all
// scores the neutral midpoint, 50.
func TrustScore(counts map[model.Verdict]int) float64 {
	verifiable := 0
	for v, n := range counts {
		if v != model.VerdictUnverifiable {
			verifiable += n
		}
	}
	if verifiable == 0 {
		return 50.0
	}

	raw := 0.0
	for v, n := range counts {
		w, ok := verdictWeight[v]
		if !ok {
			continue
		}
		raw += w * float64(n)
	}
	raw /= float64(verifiable)

	score := (raw + 1) * 50
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
