package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clarity-labs/claim-auditor/internal/model"
	storemocks "github.com/clarity-labs/claim-auditor/internal/store/mocks"
)

func TestVerify_PersistsVerificationForEachUnverifiedClaim(t *testing.T) {
	ctx := context.Background()

	claim := model.Claim{
		ID: "claim-1", TranscriptID: "t-1", CompanyID: "co-1",
		Metric: "revenue", MetricKind: model.MetricKindAbsolute,
		Unit: model.UnitUSDMillions, StatedValue: 100, ComparisonPeriod: model.ComparisonNone, IsGAAP: true,
	}
	transcript := model.Transcript{ID: "t-1", CompanyID: "co-1", Year: 2024, Quarter: 1}
	period := model.FinancialPeriod{CompanyID: "co-1", Year: 2024, Quarter: 1, Metrics: map[string]float64{"revenue": 100_000_000}}

	st := storemocks.NewMockStore(t)
	st.On("ListClaimsWithoutVerification", mock.Anything).Return([]model.Claim{claim}, nil)
	st.On("GetTranscriptByID", mock.Anything, "t-1").Return(&transcript, nil)
	st.On("GetFinancialPeriod", mock.Anything, "co-1", 2024, 1).Return(&period, nil)
	st.On("InsertVerification", mock.Anything, mock.AnythingOfType("model.Verification")).
		Run(func(args mock.Arguments) {
			v := args.Get(1).(model.Verification)
			assert.Equal(t, "claim-1", v.ClaimID)
			assert.NotEmpty(t, v.ID)
			assert.Equal(t, model.VerdictVerified, v.Verdict)
		}).Return(true, nil)

	o := newTestOrchestrator(st, newFakeSource(), newFakeExtractor())

	summary, err := o.Verify(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "verify", summary.Stage)
	assert.Equal(t, 1, summary.Counts["verifications_verified"])
}

func TestVerify_WarnsWhenTranscriptMissing(t *testing.T) {
	ctx := context.Background()

	claim := model.Claim{ID: "claim-1", TranscriptID: "t-missing", CompanyID: "co-1", Metric: "revenue"}

	st := storemocks.NewMockStore(t)
	st.On("ListClaimsWithoutVerification", mock.Anything).Return([]model.Claim{claim}, nil)
	st.On("GetTranscriptByID", mock.Anything, "t-missing").Return(nil, nil)

	o := newTestOrchestrator(st, newFakeSource(), newFakeExtractor())

	summary, err := o.Verify(ctx)
	assert.NoError(t, err)
	assert.NotEmpty(t, summary.Warnings)
	assert.Empty(t, summary.Counts)
}
