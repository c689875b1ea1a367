package model

import "time"

// Company is a publicly-traded issuer tracked by the auditor.
type Company struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Transcript is a single earnings-call transcript for one fiscal quarter.
type Transcript struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Ticker    string    `json:"ticker"`
	Year      int       `json:"year"`
	Quarter   int       `json:"quarter"`
	Content   string    `json:"content"`
	SourceURL string    `json:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FinancialPeriod holds the reported financial-statement figures for one
// fiscal quarter, keyed by canonical metric name per internal/metricregistry.
type FinancialPeriod struct {
	ID        string             `json:"id"`
	CompanyID string             `json:"company_id"`
	Ticker    string             `json:"ticker"`
	Year      int                `json:"year"`
	Quarter   int                `json:"quarter"`
	Metrics   map[string]float64 `json:"metrics"`
	CreatedAt time.Time          `json:"created_at"`
}

// Claim is a single quantitative statement attributed to a speaker during a
// transcript, as extracted by the Extraction Adapter.
type Claim struct {
	ID               string           `json:"id"`
	TranscriptID     string           `json:"transcript_id"`
	CompanyID        string           `json:"company_id"`
	Speaker          string           `json:"speaker"`
	SpeakerRole      string           `json:"speaker_role,omitempty"`
	ClaimText        string           `json:"claim_text"`
	Metric           string           `json:"metric"`
	MetricKind       MetricKind       `json:"metric_type"`
	StatedValue      float64          `json:"stated_value"`
	Unit             Unit             `json:"unit"`
	ComparisonPeriod ComparisonPeriod `json:"comparison_period"`
	ComparisonBasis  string           `json:"comparison_basis,omitempty"`
	IsGAAP           bool             `json:"is_gaap"`
	Segment          string           `json:"segment,omitempty"`
	Confidence       float64          `json:"confidence"`
	ContextSnippet   string           `json:"context_snippet,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// DedupKey is the tuple that identifies a Claim as a duplicate of another
// extracted from the same transcript (spec §4.7: metric, stated value,
// comparison period).
func (c Claim) DedupKey() [3]any {
	return [3]any{c.Metric, c.StatedValue, c.ComparisonPeriod}
}

// Verification is the deterministic outcome of checking one Claim against
// financial data. Write-once per claim.
type Verification struct {
	ID               string           `json:"id"`
	ClaimID          string           `json:"claim_id"`
	ActualValue      *float64         `json:"actual_value"`
	AccuracyScore    *float64         `json:"accuracy_score"`
	PercentageDiff   *float64         `json:"percentage_difference"`
	Verdict          Verdict          `json:"verdict"`
	MisleadingFlags  []MisleadingFlag `json:"misleading_flags"`
	Explanation      string           `json:"explanation"`
	CreatedAt        time.Time        `json:"created_at"`
}

// HasFlag reports whether a given misleading flag is present.
func (v Verification) HasFlag(f MisleadingFlag) bool {
	for _, g := range v.MisleadingFlags {
		if g == f {
			return true
		}
	}
	return false
}

// Pattern is a cross-quarter discrepancy finding for one company, produced
// by the Discrepancy Analyzer. Patterns are replaced wholesale per company
// on each Analyze run (delete + insert in one transaction).
type Pattern struct {
	ID               string      `json:"id"`
	CompanyID        string      `json:"company_id"`
	Kind             PatternKind `json:"pattern_type"`
	Description      string      `json:"description"`
	AffectedQuarters []string    `json:"affected_quarters"`
	Severity         float64     `json:"severity"`
	Evidence         []string    `json:"evidence"`
	CreatedAt        time.Time   `json:"created_at"`
}

// QuarterLabel formats a year/quarter pair the way quarter-keyed maps and
// pattern AffectedQuarters entries use throughout the auditor (e.g. "2024Q1").
func QuarterLabel(year, quarter int) string {
	return formatQuarterLabel(year, quarter)
}
