package model

// MetricKind classifies the kind of quantitative statement a Claim makes.
type MetricKind string

const (
	MetricKindAbsolute   MetricKind = "absolute"
	MetricKindGrowthRate MetricKind = "growth_rate"
	MetricKindMargin     MetricKind = "margin"
	MetricKindRatio      MetricKind = "ratio"
	MetricKindChange     MetricKind = "change"
	MetricKindPerShare   MetricKind = "per_share"
)

// Unit is the declared unit of a Claim's stated value.
type Unit string

const (
	UnitUSD           Unit = "usd"
	UnitUSDMillions   Unit = "usd_millions"
	UnitUSDBillions   Unit = "usd_billions"
	UnitPercent       Unit = "percent"
	UnitBasisPoints   Unit = "basis_points"
	UnitRatio         Unit = "ratio"
	UnitShares        Unit = "shares"
)

// ComparisonPeriod tags what a growth/change claim is compared against.
type ComparisonPeriod string

const (
	ComparisonYearOverYear     ComparisonPeriod = "year_over_year"
	ComparisonQuarterOverQtr   ComparisonPeriod = "quarter_over_quarter"
	ComparisonSequential       ComparisonPeriod = "sequential"
	ComparisonFullYear         ComparisonPeriod = "full_year"
	ComparisonCustom           ComparisonPeriod = "custom"
	ComparisonNone             ComparisonPeriod = "none"
)

// Verdict is the outcome classification of a Verification.
type Verdict string

const (
	VerdictVerified              Verdict = "verified"
	VerdictApproximatelyCorrect  Verdict = "approximately_correct"
	VerdictMisleading            Verdict = "misleading"
	VerdictIncorrect             Verdict = "incorrect"
	VerdictUnverifiable          Verdict = "unverifiable"
)

// MisleadingFlag names a specific framing issue detected during verification.
type MisleadingFlag string

const (
	FlagGAAPNonGAAPMismatch  MisleadingFlag = "gaap_nongaap_mismatch"
	FlagCherryPickedPeriod   MisleadingFlag = "cherry_picked_period"
	FlagSegmentVsTotal       MisleadingFlag = "segment_vs_total"
	FlagRoundingBias         MisleadingFlag = "rounding_bias"
	FlagMisleadingComparison MisleadingFlag = "misleading_comparison"
	FlagOmitsContext         MisleadingFlag = "omits_context"
)

// PatternKind names a cross-quarter discrepancy finding.
type PatternKind string

const (
	PatternConsistentRoundingUp  PatternKind = "consistent_rounding_up"
	PatternMetricSwitching       PatternKind = "metric_switching"
	PatternIncreasingInaccuracy  PatternKind = "increasing_inaccuracy"
	PatternGAAPNonGAAPShifting   PatternKind = "gaap_nongaap_shifting"
	PatternSelectiveEmphasis     PatternKind = "selective_emphasis"
)

// substantiveFlags are the misleading flags that can upgrade an otherwise
// acceptable verdict to misleading (spec §4.3 upgrade rule).
var substantiveFlags = map[MisleadingFlag]bool{
	FlagRoundingBias:        true,
	FlagGAAPNonGAAPMismatch: true,
	FlagSegmentVsTotal:      true,
	FlagMisleadingComparison: true,
}

// IsSubstantive reports whether a flag counts toward the verdict upgrade rule.
func (f MisleadingFlag) IsSubstantive() bool {
	return substantiveFlags[f]
}
