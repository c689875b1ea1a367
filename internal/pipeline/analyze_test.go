package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clarity-labs/claim-auditor/internal/model"
	storemocks "github.com/clarity-labs/claim-auditor/internal/store/mocks"
)

func TestAnalyze_ReplacesPatternsForCompanyWithVerifiedClaims(t *testing.T) {
	ctx := context.Background()

	company := model.Company{ID: "co-1", Ticker: "ACME"}
	claim := model.Claim{ID: "claim-1", TranscriptID: "t-1", CompanyID: "co-1"}
	verification := model.Verification{ClaimID: "claim-1", Verdict: model.VerdictVerified}
	transcript := model.Transcript{ID: "t-1", Year: 2024, Quarter: 1}

	st := storemocks.NewMockStore(t)
	st.On("ListCompanies", mock.Anything).Return([]model.Company{company}, nil)
	st.On("ListClaimsByCompany", mock.Anything, "co-1").Return([]model.Claim{claim}, nil)
	st.On("ListVerificationsByCompany", mock.Anything, "co-1").Return([]model.Verification{verification}, nil)
	st.On("GetTranscriptByID", mock.Anything, "t-1").Return(&transcript, nil)
	st.On("ReplacePatterns", mock.Anything, "co-1", mock.AnythingOfType("[]model.Pattern")).Return(nil)

	o := newTestOrchestrator(st, newFakeSource(), newFakeExtractor())

	summary, err := o.Analyze(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "analyze", summary.Stage)
	assert.Equal(t, 1, summary.Counts["companies_analyzed"])
}

func TestAnalyze_SkipsCompanyWithNoVerifiedClaims(t *testing.T) {
	ctx := context.Background()

	company := model.Company{ID: "co-1", Ticker: "ACME"}
	claim := model.Claim{ID: "claim-1", TranscriptID: "t-1", CompanyID: "co-1"}
	verification := model.Verification{ClaimID: "claim-1", Verdict: model.VerdictUnverifiable}

	st := storemocks.NewMockStore(t)
	st.On("ListCompanies", mock.Anything).Return([]model.Company{company}, nil)
	st.On("ListClaimsByCompany", mock.Anything, "co-1").Return([]model.Claim{claim}, nil)
	st.On("ListVerificationsByCompany", mock.Anything, "co-1").Return([]model.Verification{verification}, nil)

	o := newTestOrchestrator(st, newFakeSource(), newFakeExtractor())

	summary, err := o.Analyze(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Counts["companies_analyzed"])
}

func TestAnalyze_SkipsCompanyWithNoClaims(t *testing.T) {
	ctx := context.Background()

	company := model.Company{ID: "co-1", Ticker: "ACME"}

	st := storemocks.NewMockStore(t)
	st.On("ListCompanies", mock.Anything).Return([]model.Company{company}, nil)
	st.On("ListClaimsByCompany", mock.Anything, "co-1").Return(nil, nil)

	o := newTestOrchestrator(st, newFakeSource(), newFakeExtractor())

	summary, err := o.Analyze(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Counts["companies_analyzed"])
}

func TestAnalyzeLock_ReturnsSameMutexForSameCompany(t *testing.T) {
	o := newTestOrchestrator(storemocks.NewMockStore(t), newFakeSource(), newFakeExtractor())
	a := o.analyzeLock("co-1")
	b := o.analyzeLock("co-1")
	c := o.analyzeLock("co-2")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
