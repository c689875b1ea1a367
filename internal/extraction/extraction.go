// Package extraction implements the Extraction Adapter: the opaque
// structured-extraction service contract that turns transcript text into
// quantitative Claim drafts, plus the mandatory post-processing pipeline
// (validate, normalize, coerce, dedup) spec §4.7 requires of every
// implementation.
package extraction

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/clarity-labs/claim-auditor/internal/metricregistry"
	"github.com/clarity-labs/claim-auditor/internal/model"
)

// Client is the contract consumed by the Pipeline Orchestrator's Extract
// stage (spec §4.7). Extract returns claims with validation, metric
// normalization, enum coercion, and intra-response deduplication already
// applied; the caller is responsible for attaching TranscriptID/CompanyID
// and persisting.
type Client interface {
	Extract(ctx context.Context, transcriptText, ticker string, year, quarter int) ([]model.Claim, error)
}

// rawClaim is the shape an extraction response's JSON array elements are
// unmarshaled into, before validation and normalization.
type rawClaim struct {
	Speaker          string  `json:"speaker"`
	SpeakerRole      string  `json:"speaker_role"`
	ClaimText        string  `json:"claim_text"`
	Metric           string  `json:"metric"`
	MetricKind       string  `json:"metric_kind"`
	StatedValue      float64 `json:"stated_value"`
	Unit             string  `json:"unit"`
	ComparisonPeriod string  `json:"comparison_period"`
	ComparisonBasis  string  `json:"comparison_basis"`
	IsGAAP           *bool   `json:"is_gaap"`
	Segment          string  `json:"segment"`
	Confidence       float64 `json:"confidence"`
	ContextSnippet   string  `json:"context_snippet"`
}

var validMetricKinds = map[string]bool{
	string(model.MetricKindAbsolute):   true,
	string(model.MetricKindGrowthRate): true,
	string(model.MetricKindMargin):     true,
	string(model.MetricKindRatio):      true,
	string(model.MetricKindChange):     true,
	string(model.MetricKindPerShare):   true,
}

var validUnits = map[string]bool{
	string(model.UnitUSD):         true,
	string(model.UnitUSDMillions): true,
	string(model.UnitUSDBillions): true,
	string(model.UnitPercent):     true,
	string(model.UnitBasisPoints): true,
	string(model.UnitRatio):       true,
	string(model.UnitShares):      true,
}

var validComparisonPeriods = map[string]bool{
	string(model.ComparisonYearOverYear):   true,
	string(model.ComparisonQuarterOverQtr): true,
	string(model.ComparisonSequential):     true,
	string(model.ComparisonFullYear):       true,
	string(model.ComparisonCustom):         true,
	string(model.ComparisonNone):           true,
}

// validate reports whether r is well-formed enough to keep, per spec §4.7
// "Validate each record against the Claim schema; discard invalid records
// with a warning."
func (r rawClaim) validate() (reason string, ok bool) {
	if strings.TrimSpace(r.ClaimText) == "" {
		return "empty claim_text", false
	}
	if strings.TrimSpace(r.Metric) == "" {
		return "empty metric", false
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return "confidence out of [0,1]", false
	}
	if r.IsGAAP == nil {
		return "missing is_gaap", false
	}
	return "", true
}

// normalizeAndCoerce resolves r.Metric through the metric registry's open
// vocabulary and converts r's enum fields to model's typed constants,
// reporting failure if any enum value is outside its enumerated set (spec
// §4.7 "Normalize metric via the registry... coerce metric_kind,
// comparison_period, and unit to their enumerated sets; invalid -> discard").
func (r rawClaim) normalizeAndCoerce() (model.Claim, bool) {
	kind := strings.ToLower(strings.TrimSpace(r.MetricKind))
	unit := strings.ToLower(strings.TrimSpace(r.Unit))
	period := strings.ToLower(strings.TrimSpace(r.ComparisonPeriod))

	if !validMetricKinds[kind] || !validUnits[unit] || !validComparisonPeriods[period] {
		return model.Claim{}, false
	}

	return model.Claim{
		Speaker:          r.Speaker,
		SpeakerRole:      r.SpeakerRole,
		ClaimText:        strings.TrimSpace(r.ClaimText),
		Metric:           metricregistry.Normalize(r.Metric),
		StatedValue:      r.StatedValue,
		MetricKind:       model.MetricKind(kind),
		Unit:             model.Unit(unit),
		ComparisonPeriod: model.ComparisonPeriod(period),
		ComparisonBasis:  r.ComparisonBasis,
		IsGAAP:           *r.IsGAAP,
		Segment:          r.Segment,
		Confidence:       r.Confidence,
		ContextSnippet:   r.ContextSnippet,
	}, true
}

// postProcess runs the mandatory validate/normalize/coerce/dedup pipeline
// (spec §4.7) over raw extraction records for one transcript, logging a
// warning for every record it discards.
func postProcess(raws []rawClaim, ticker string, year, quarter int) []model.Claim {
	seen := make(map[[3]any]bool, len(raws))
	out := make([]model.Claim, 0, len(raws))

	for i, r := range raws {
		if reason, ok := r.validate(); !ok {
			zap.L().Warn("extraction: discarding invalid claim record",
				zap.String("ticker", ticker), zap.Int("year", year), zap.Int("quarter", quarter),
				zap.Int("index", i), zap.String("reason", reason))
			continue
		}

		claim, ok := r.normalizeAndCoerce()
		if !ok {
			zap.L().Warn("extraction: discarding claim with unrecognized enum value",
				zap.String("ticker", ticker), zap.Int("year", year), zap.Int("quarter", quarter),
				zap.Int("index", i), zap.String("metric_kind", r.MetricKind),
				zap.String("unit", r.Unit), zap.String("comparison_period", r.ComparisonPeriod))
			continue
		}

		key := claim.DedupKey()
		if seen[key] {
			zap.L().Warn("extraction: discarding duplicate claim",
				zap.String("ticker", ticker), zap.Int("year", year), zap.Int("quarter", quarter),
				zap.String("metric", claim.Metric), zap.Float64("stated_value", claim.StatedValue))
			continue
		}
		seen[key] = true

		out = append(out, claim)
	}

	return out
}
