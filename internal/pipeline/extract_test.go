package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clarity-labs/claim-auditor/internal/model"
	storemocks "github.com/clarity-labs/claim-auditor/internal/store/mocks"
)

func TestExtract_PersistsClaimsForEachTranscript(t *testing.T) {
	ctx := context.Background()

	transcript := model.Transcript{ID: "t-1", CompanyID: "co-1", Ticker: "ACME", Year: 2024, Quarter: 1, Content: "text"}

	st := storemocks.NewMockStore(t)
	st.On("ListTranscriptsWithoutClaims", mock.Anything).Return([]model.Transcript{transcript}, nil)
	st.On("InsertClaims", mock.Anything, mock.AnythingOfType("[]model.Claim")).
		Run(func(args mock.Arguments) {
			claims := args.Get(1).([]model.Claim)
			assert.Len(t, claims, 1)
			assert.Equal(t, "t-1", claims[0].TranscriptID)
			assert.Equal(t, "co-1", claims[0].CompanyID)
			assert.NotEmpty(t, claims[0].ID)
		}).Return(nil)

	extractor := newFakeExtractor()
	extractor.claims[transcriptKey("ACME", 2024, 1)] = []model.Claim{{Metric: "revenue", StatedValue: 100}}

	o := newTestOrchestrator(st, newFakeSource(), extractor)

	summary, err := o.Extract(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "extract", summary.Stage)
	assert.Equal(t, 1, summary.Counts["transcripts_processed"])
	assert.Equal(t, 1, summary.Counts["claims_extracted"])
}

func TestExtract_CountsTranscriptsWithNoClaimsSeparately(t *testing.T) {
	ctx := context.Background()

	transcript := model.Transcript{ID: "t-1", CompanyID: "co-1", Ticker: "ACME", Year: 2024, Quarter: 1, Content: "text"}

	st := storemocks.NewMockStore(t)
	st.On("ListTranscriptsWithoutClaims", mock.Anything).Return([]model.Transcript{transcript}, nil)

	o := newTestOrchestrator(st, newFakeSource(), newFakeExtractor())

	summary, err := o.Extract(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Counts["transcripts_with_no_claims"])
	assert.Equal(t, 0, summary.Counts["transcripts_processed"])
}

func TestExtract_WarnsAndContinuesOnExtractorError(t *testing.T) {
	ctx := context.Background()

	transcript := model.Transcript{ID: "t-1", Ticker: "ACME", Year: 2024, Quarter: 1, Content: "text"}

	st := storemocks.NewMockStore(t)
	st.On("ListTranscriptsWithoutClaims", mock.Anything).Return([]model.Transcript{transcript}, nil)

	extractor := newFakeExtractor()
	extractor.err = assert.AnError

	o := newTestOrchestrator(st, newFakeSource(), extractor)

	summary, err := o.Extract(ctx)
	assert.NoError(t, err)
	assert.NotEmpty(t, summary.Warnings)
	assert.Equal(t, 0, summary.Counts["transcripts_processed"])
}
