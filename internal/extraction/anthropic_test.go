package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestExtractor points an AnthropicExtractor's SDK client at a local test
// server, the same pattern the Anthropic SDK wrapper this package absorbed
// uses for its own tests.
func newTestExtractor(baseURL string, maxClaims int) *AnthropicExtractor {
	return newAnthropicExtractor("claude-sonnet-4-5-20250929", maxClaims,
		option.WithAPIKey("test-key"), option.WithBaseURL(baseURL))
}

func messagesHandler(t *testing.T, text string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/messages")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": text},
			},
			"model":       "claude-sonnet-4-5-20250929",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  100,
				"output_tokens": 50,
			},
		})
	}
}

func TestAnthropicExtractor_ParsesFencedJSONArray(t *testing.T) {
	ts := httptest.NewServer(messagesHandler(t, "```json\n"+sampleClaimsJSON()+"\n```"))
	defer ts.Close()

	e := newTestExtractor(ts.URL, 0)
	claims, err := e.Extract(context.Background(), "transcript text", "ACME", 2024, 1)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "revenue", claims[0].Metric)
	assert.Equal(t, 125.5, claims[0].StatedValue)
}

func TestAnthropicExtractor_DiscardsInvalidRecords(t *testing.T) {
	raw := `[{"speaker":"Jane Doe","speaker_role":"CFO","claim_text":"","metric":"revenue","metric_kind":"absolute","stated_value":1,"unit":"usd_millions","comparison_period":"none","is_gaap":true,"confidence":0.9}]`
	ts := httptest.NewServer(messagesHandler(t, raw))
	defer ts.Close()

	e := newTestExtractor(ts.URL, 0)
	claims, err := e.Extract(context.Background(), "transcript text", "ACME", 2024, 1)
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestAnthropicExtractor_TruncatesToMaxClaims(t *testing.T) {
	raw := `[
		{"speaker":"Jane Doe","speaker_role":"CFO","claim_text":"Revenue grew.","metric":"revenue","metric_kind":"absolute","stated_value":100,"unit":"usd_millions","comparison_period":"year_over_year","is_gaap":true,"confidence":0.9},
		{"speaker":"Jane Doe","speaker_role":"CFO","claim_text":"Margin expanded.","metric":"gross margin","metric_kind":"margin","stated_value":45,"unit":"percent","comparison_period":"year_over_year","is_gaap":true,"confidence":0.9}
	]`
	ts := httptest.NewServer(messagesHandler(t, raw))
	defer ts.Close()

	e := newTestExtractor(ts.URL, 1)
	claims, err := e.Extract(context.Background(), "transcript text", "ACME", 2024, 1)
	require.NoError(t, err)
	assert.Len(t, claims, 1)
}

func TestAnthropicExtractor_SkipsMalformedElementWithoutFailingWholeResponse(t *testing.T) {
	raw := `[
		{"speaker":"Jane Doe","speaker_role":"CFO","claim_text":"Revenue grew.","metric":"revenue","metric_kind":"absolute","stated_value":100,"unit":"usd_millions","comparison_period":"year_over_year","is_gaap":true,"confidence":0.9},
		"not an object",
		{"speaker":"Jane Doe","speaker_role":"CFO","claim_text":"","metric":"","metric_kind":"absolute","stated_value":1,"unit":"usd_millions","comparison_period":"none","is_gaap":true,"confidence":0.9}
	]`
	ts := httptest.NewServer(messagesHandler(t, raw))
	defer ts.Close()

	e := newTestExtractor(ts.URL, 0)
	claims, err := e.Extract(context.Background(), "transcript text", "ACME", 2024, 1)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "revenue", claims[0].Metric)
}

func TestAnthropicExtractor_ErrorsOnNonArrayResponse(t *testing.T) {
	ts := httptest.NewServer(messagesHandler(t, `{"not": "an array"}`))
	defer ts.Close()

	e := newTestExtractor(ts.URL, 0)
	_, err := e.Extract(context.Background(), "transcript text", "ACME", 2024, 1)
	assert.Error(t, err)
}

func sampleClaimsJSON() string {
	return `[{"speaker":"Jane Doe","speaker_role":"CFO","claim_text":"Revenue grew to $125.5 million.","metric":"top line","metric_kind":"absolute","stated_value":125.5,"unit":"usd_millions","comparison_period":"year_over_year","is_gaap":true,"confidence":0.95,"context_snippet":"Revenue grew to $125.5 million."}]`
}
