package extraction

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/clarity-labs/claim-auditor/internal/model"
)

// promptV1 is the current system prompt version. It is versioned, not
// inlined at the call site, so a future prompt revision can be introduced
// alongside the old one during a transition (spec §4.7 "extraction prompt
// versioning").
const promptV1 = `You are a financial analyst assistant. Read the earnings-call
transcript below and extract every quantitative claim made by a company
executive (CEO, CFO, COO, President, or other named management speaker —
never the call operator or sell-side analysts asking questions).

A quantitative claim is any sentence where a speaker states a specific
numeric figure about the company's financial or operating performance:
revenue, margins, growth rates, per-share figures, segment results, cash
flow, and similar metrics.

Return a JSON array. Each element must have exactly these fields:
- speaker: string, the speaker's name as stated or inferable from context
- speaker_role: string, e.g. "CEO", "CFO"
- claim_text: string, the verbatim sentence containing the claim
- metric: string, the metric name as the speaker referred to it (e.g. "revenue", "gross margin", "free cash flow")
- metric_kind: one of "absolute", "growth_rate", "margin", "ratio", "change", "per_share"
- stated_value: number, the numeric value as stated (percentages as e.g. 12.5 not 0.125)
- unit: one of "usd", "usd_millions", "usd_billions", "percent", "basis_points", "ratio", "shares"
- comparison_period: one of "year_over_year", "quarter_over_quarter", "sequential", "full_year", "custom", "none"
- comparison_basis: string, free text describing what is being compared against if comparison_period is "custom", else ""
- is_gaap: boolean, true unless the speaker explicitly flags the figure as non-GAAP/adjusted
- segment: string, business segment or product line the claim is about, "" if company-wide
- confidence: number in [0, 1], your confidence that you extracted this claim correctly
- context_snippet: string, a sentence or two of surrounding context

Return ONLY the JSON array, no surrounding prose.

Transcript (%s):
%s`

// AnthropicExtractor implements Client using the Anthropic Messages API
// directly. Claim Auditor has exactly one LLM consumer, so the SDK wrapper
// the teacher keeps as a separate package is folded in here instead.
type AnthropicExtractor struct {
	client    sdk.Client
	model     string
	maxClaims int
}

// NewAnthropicExtractor constructs an AnthropicExtractor. maxClaims bounds
// the number of claims kept per transcript after post-processing (0 means
// unbounded).
func NewAnthropicExtractor(apiKey, model string, maxClaims int) *AnthropicExtractor {
	return newAnthropicExtractor(model, maxClaims, option.WithAPIKey(apiKey))
}

func newAnthropicExtractor(model string, maxClaims int, opts ...option.RequestOption) *AnthropicExtractor {
	return &AnthropicExtractor{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxClaims: maxClaims,
	}
}

var _ Client = (*AnthropicExtractor)(nil)

// Extract sends transcriptText to the model and returns validated,
// normalized, deduplicated claim drafts for one (ticker, year, quarter).
func (e *AnthropicExtractor) Extract(ctx context.Context, transcriptText, ticker string, year, quarter int) ([]model.Claim, error) {
	header := fmt.Sprintf("ticker=%s year=%d quarter=%d", ticker, year, quarter)
	prompt := fmt.Sprintf(promptV1, header, transcriptText)

	msg, err := e.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(e.model),
		MaxTokens: 8192,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "extraction: create message for %s", header)
	}

	text := extractText(msg)
	cleaned := cleanJSONArray(text)
	raws, err := parseRawClaims(cleaned, header)
	if err != nil {
		return nil, err
	}

	claims := postProcess(raws, ticker, year, quarter)
	if e.maxClaims > 0 && len(claims) > e.maxClaims {
		zap.L().Warn("extraction: truncating claims to configured maximum",
			zap.String("ticker", ticker), zap.Int("year", year), zap.Int("quarter", quarter),
			zap.Int("extracted", len(claims)), zap.Int("max_claims", e.maxClaims))
		claims = claims[:e.maxClaims]
	}

	return claims, nil
}

// parseRawClaims walks a cleaned JSON array response element by element with
// gjson rather than unmarshaling it as one strict struct slice, so a single
// element with a wrong-typed field (a model occasionally stringifies a
// number, or omits a field entirely) degrades to zero values that
// postProcess's validate/normalizeAndCoerce pass discards individually,
// instead of failing the whole transcript's extraction.
func parseRawClaims(cleaned, header string) ([]rawClaim, error) {
	if !gjson.Valid(cleaned) {
		return nil, eris.Errorf("extraction: response for %s was not valid json", header)
	}

	parsed := gjson.Parse(cleaned)
	if !parsed.IsArray() {
		return nil, eris.Errorf("extraction: response for %s was not a json array", header)
	}

	var raws []rawClaim
	parsed.ForEach(func(_, el gjson.Result) bool {
		if !el.IsObject() {
			zap.L().Warn("extraction: skipping non-object element in response array", zap.String("context", header))
			return true
		}
		raws = append(raws, rawClaim{
			Speaker:          el.Get("speaker").String(),
			SpeakerRole:      el.Get("speaker_role").String(),
			ClaimText:        el.Get("claim_text").String(),
			Metric:           el.Get("metric").String(),
			MetricKind:       el.Get("metric_kind").String(),
			StatedValue:      el.Get("stated_value").Float(),
			Unit:             el.Get("unit").String(),
			ComparisonPeriod: el.Get("comparison_period").String(),
			ComparisonBasis:  el.Get("comparison_basis").String(),
			IsGAAP:           gaapField(el.Get("is_gaap")),
			Segment:          el.Get("segment").String(),
			Confidence:       el.Get("confidence").Float(),
			ContextSnippet:   el.Get("context_snippet").String(),
		})
		return true
	})

	return raws, nil
}

// gaapField mirrors rawClaim.IsGAAP's *bool-means-absent-is-invalid contract
// (see rawClaim.validate) when is_gaap is missing from a response element.
func gaapField(r gjson.Result) *bool {
	if !r.Exists() {
		return nil
	}
	b := r.Bool()
	return &b
}

// extractText concatenates all text content blocks from a message response.
func extractText(msg *sdk.Message) string {
	if msg == nil {
		return ""
	}
	var parts []string
	for _, block := range msg.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSONArray extracts a JSON array from model output that may be wrapped
// in markdown code fences or surrounded by prose, generalizing the pattern
// of locating the outermost delimiters to "[" / "]" instead of "{" / "}"
// since an extraction response is a list of claims, not a single object.
func cleanJSONArray(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
