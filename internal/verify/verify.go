// Package verify implements the Verification Engine: reconciling a single
// extracted Claim against structured financial data and producing a
// deterministic Verification.
package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/clarity-labs/claim-auditor/internal/finmath"
	"github.com/clarity-labs/claim-auditor/internal/metricregistry"
	"github.com/clarity-labs/claim-auditor/internal/model"
	"github.com/clarity-labs/claim-auditor/internal/verdict"
)

// PeriodLookup resolves the FinancialPeriod for one (company, year, quarter).
// Implemented by internal/store.Store; abstracted here so the engine stays
// free of persistence concerns.
type PeriodLookup interface {
	GetFinancialPeriod(ctx context.Context, companyID string, year, quarter int) (*model.FinancialPeriod, error)
}

// Engine verifies claims against financial data fetched through a
// PeriodLookup, using a configurable set of verdict tolerances.
type Engine struct {
	periods PeriodLookup
	tol     verdict.Tolerances
}

// New constructs a verification Engine.
func New(periods PeriodLookup, tol verdict.Tolerances) *Engine {
	return &Engine{periods: periods, tol: tol}
}

// Verify reconciles one claim, attributed to transcript (companyID, year,
// quarter), against financial data. It never returns an error for missing or
// unresolvable data — those yield an unverifiable Verification. It returns
// an error only for a genuine invariant violation in the caller-supplied
// claim (an empty metric name), which the Pipeline Orchestrator treats as
// fatal per the stage's error taxonomy.
func (e *Engine) Verify(ctx context.Context, claim model.Claim, companyID string, year, quarter int) (model.Verification, error) {
	if claim.Metric == "" {
		return model.Verification{}, eris.New("verify: claim has no metric")
	}

	if !metricregistry.CanResolve(claim.Metric) {
		return unverifiable(claim.ID, fmt.Sprintf("Metric %q is not in the financial-data mapping.", claim.Metric)), nil
	}

	kind := claim.MetricKind
	if kind == model.MetricKindGrowthRate || kind == model.MetricKindChange {
		if metricregistry.IsDerived(claim.Metric) && claim.StatedValue > 10 {
			kind = model.MetricKindMargin
		}
	}

	var (
		actual float64
		ok     bool
	)
	switch kind {
	case model.MetricKindGrowthRate, model.MetricKindChange:
		actual, ok = e.verifyGrowth(ctx, claim, companyID, year, quarter)
	case model.MetricKindMargin, model.MetricKindRatio:
		actual, ok = e.verifyMargin(ctx, claim, companyID, year, quarter)
	case model.MetricKindAbsolute, model.MetricKindPerShare:
		actual, ok = e.verifyAbsolute(ctx, claim, companyID, year, quarter)
	default:
		ok = false
	}
	if !ok {
		return unverifiable(claim.ID, "Could not find sufficient financial data to verify this claim."), nil
	}

	stated := statedComparable(claim)
	score := finmath.AccuracyScore(stated, actual)
	flags := detectFlags(claim, stated, actual, score)
	v := verdict.AssignWith(e.tol, score, flags)
	explanation := explain(stated, actual, score, v, flags)

	return model.Verification{
		ClaimID:         claim.ID,
		ActualValue:     floatPtr(actual),
		AccuracyScore:   floatPtr(score),
		PercentageDiff:  finmath.PercentageDifference(stated, actual),
		Verdict:         v,
		MisleadingFlags: flags,
		Explanation:     explanation,
	}, nil
}

func (e *Engine) verifyGrowth(ctx context.Context, claim model.Claim, companyID string, year, quarter int) (float64, bool) {
	compYear, compQuarter, ok := comparisonPeriod(year, quarter, claim.ComparisonPeriod)
	if !ok {
		return 0, false
	}

	current, err := e.periods.GetFinancialPeriod(ctx, companyID, year, quarter)
	if err != nil || current == nil {
		return 0, false
	}
	comparison, err := e.periods.GetFinancialPeriod(ctx, companyID, compYear, compQuarter)
	if err != nil || comparison == nil {
		return 0, false
	}

	curVal, curOK := metricregistry.Resolve(claim.Metric, current.Metrics)
	compVal, compOK := metricregistry.Resolve(claim.Metric, comparison.Metrics)
	if !curOK || !compOK {
		return 0, false
	}

	rate := finmath.GrowthRate(curVal, compVal)
	if rate == nil {
		return 0, false
	}
	return *rate, true
}

func (e *Engine) verifyMargin(ctx context.Context, claim model.Claim, companyID string, year, quarter int) (float64, bool) {
	data, err := e.periods.GetFinancialPeriod(ctx, companyID, year, quarter)
	if err != nil || data == nil {
		return 0, false
	}
	return metricregistry.Resolve(claim.Metric, data.Metrics)
}

func (e *Engine) verifyAbsolute(ctx context.Context, claim model.Claim, companyID string, year, quarter int) (float64, bool) {
	data, err := e.periods.GetFinancialPeriod(ctx, companyID, year, quarter)
	if err != nil || data == nil {
		return 0, false
	}
	raw, ok := metricregistry.Resolve(claim.Metric, data.Metrics)
	if !ok {
		return 0, false
	}
	return finmath.NormalizeToUnit(raw, string(claim.Unit)), true
}

// comparisonPeriod resolves the (year, quarter) a growth/change claim's
// comparison_period tag refers to, relative to the transcript's own period.
func comparisonPeriod(year, quarter int, cp model.ComparisonPeriod) (int, int, bool) {
	switch cp {
	case model.ComparisonYearOverYear, model.ComparisonFullYear:
		y, q := model.PriorYear(year, quarter)
		return y, q, true
	case model.ComparisonQuarterOverQtr, model.ComparisonSequential:
		y, q := model.PriorQuarter(year, quarter)
		return y, q, true
	default:
		return 0, 0, false
	}
}

// statedComparable normalizes a claim's stated value so it is directly
// comparable to the computed actual: growth/change/margin claims are
// already percentages (basis points divided down to percent); absolute and
// per-share claims carry the stated value as-is, already in the claim's
// declared unit.
func statedComparable(claim model.Claim) float64 {
	switch claim.MetricKind {
	case model.MetricKindGrowthRate, model.MetricKindChange, model.MetricKindMargin, model.MetricKindRatio:
		if claim.Unit == model.UnitBasisPoints {
			return finmath.BasisPointsToPercentage(claim.StatedValue)
		}
		return claim.StatedValue
	default:
		return claim.StatedValue
	}
}

func detectFlags(claim model.Claim, stated, actual, score float64) []model.MisleadingFlag {
	var flags []model.MisleadingFlag

	if score >= 0.90 && score < 0.98 {
		if pct := finmath.PercentageDifference(stated, actual); pct != nil && *pct > 0 {
			flags = append(flags, model.FlagRoundingBias)
		}
	}
	if !claim.IsGAAP {
		flags = append(flags, model.FlagGAAPNonGAAPMismatch)
	}
	if claim.Segment != "" {
		flags = append(flags, model.FlagSegmentVsTotal)
	}

	return flags
}

func unverifiable(claimID, reason string) model.Verification {
	return model.Verification{
		ClaimID:     claimID,
		Verdict:     model.VerdictUnverifiable,
		Explanation: reason,
	}
}

func floatPtr(v float64) *float64 { return &v }

var verdictTemplate = map[model.Verdict]string{
	model.VerdictVerified:             "Verified. Stated %.2f, actual %.2f (difference %s). Within acceptable tolerance.",
	model.VerdictApproximatelyCorrect: "Approximately correct. Stated %.2f, actual %.2f (difference %s).",
	model.VerdictMisleading:           "Misleading. Stated %.2f, actual %.2f (difference %s). The framing may create a false impression.",
	model.VerdictIncorrect:            "Incorrect. Stated %.2f, actual %.2f (difference %s). Materially inaccurate.",
}

var misleadingDetail = map[model.MisleadingFlag]string{
	model.FlagRoundingBias:         "The stated figure rounds in a more favorable direction than the actual data.",
	model.FlagGAAPNonGAAPMismatch:  "The claim uses non-GAAP/adjusted figures which may not match standard reporting.",
	model.FlagSegmentVsTotal:       "The claim references a business segment; verification used total-company data.",
	model.FlagCherryPickedPeriod:   "The comparison period may be selectively chosen.",
	model.FlagMisleadingComparison: "The comparison basis is non-standard.",
	model.FlagOmitsContext:         "Important context is omitted from the claim.",
}

func explain(stated, actual, score float64, v model.Verdict, flags []model.MisleadingFlag) string {
	pctStr := "N/A"
	if pct := finmath.PercentageDifference(stated, actual); pct != nil {
		pctStr = fmt.Sprintf("%+.1f%%", *pct)
	}

	base := fmt.Sprintf(verdictTemplate[v], stated, actual, pctStr)

	if len(flags) > 0 {
		details := make([]string, 0, len(flags))
		for _, f := range flags {
			details = append(details, misleadingDetail[f])
		}
		base += " " + strings.Join(details, " ")
	}
	return base
}
