// Package mocks provides test doubles for the store package.
package mocks

import (
	"context"

	model "github.com/clarity-labs/claim-auditor/internal/model"
	store "github.com/clarity-labs/claim-auditor/internal/store"
	mock "github.com/stretchr/testify/mock"
)

// MockStore is a mock type for the Store interface.
type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

// UpsertCompany provides a mock function with given fields: ctx, company
func (_m *MockStore) UpsertCompany(ctx context.Context, company model.Company) (bool, error) {
	ret := _m.Called(ctx, company)

	if len(ret) == 0 {
		panic("no return value specified for UpsertCompany")
	}

	var r0 bool
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, model.Company) (bool, error)); ok {
		return rf(ctx, company)
	}
	if rf, ok := ret.Get(0).(func(context.Context, model.Company) bool); ok {
		r0 = rf(ctx, company)
	} else {
		r0 = ret.Get(0).(bool)
	}

	if rf, ok := ret.Get(1).(func(context.Context, model.Company) error); ok {
		r1 = rf(ctx, company)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetCompanyByTicker provides a mock function with given fields: ctx, ticker
func (_m *MockStore) GetCompanyByTicker(ctx context.Context, ticker string) (*model.Company, error) {
	ret := _m.Called(ctx, ticker)

	if len(ret) == 0 {
		panic("no return value specified for GetCompanyByTicker")
	}

	var r0 *model.Company
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.Company, error)); ok {
		return rf(ctx, ticker)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.Company); ok {
		r0 = rf(ctx, ticker)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Company)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, ticker)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListCompanies provides a mock function with given fields: ctx
func (_m *MockStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListCompanies")
	}

	var r0 []model.Company
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]model.Company, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []model.Company); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Company)
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpsertTranscript provides a mock function with given fields: ctx, transcript
func (_m *MockStore) UpsertTranscript(ctx context.Context, transcript model.Transcript) (bool, error) {
	ret := _m.Called(ctx, transcript)

	if len(ret) == 0 {
		panic("no return value specified for UpsertTranscript")
	}

	var r0 bool
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, model.Transcript) (bool, error)); ok {
		return rf(ctx, transcript)
	}
	if rf, ok := ret.Get(0).(func(context.Context, model.Transcript) bool); ok {
		r0 = rf(ctx, transcript)
	} else {
		r0 = ret.Get(0).(bool)
	}

	if rf, ok := ret.Get(1).(func(context.Context, model.Transcript) error); ok {
		r1 = rf(ctx, transcript)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetTranscript provides a mock function with given fields: ctx, companyID, year, quarter
func (_m *MockStore) GetTranscript(ctx context.Context, companyID string, year int, quarter int) (*model.Transcript, error) {
	ret := _m.Called(ctx, companyID, year, quarter)

	if len(ret) == 0 {
		panic("no return value specified for GetTranscript")
	}

	var r0 *model.Transcript
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int, int) (*model.Transcript, error)); ok {
		return rf(ctx, companyID, year, quarter)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, int, int) *model.Transcript); ok {
		r0 = rf(ctx, companyID, year, quarter)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Transcript)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, int, int) error); ok {
		r1 = rf(ctx, companyID, year, quarter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetTranscriptByID provides a mock function with given fields: ctx, transcriptID
func (_m *MockStore) GetTranscriptByID(ctx context.Context, transcriptID string) (*model.Transcript, error) {
	ret := _m.Called(ctx, transcriptID)

	if len(ret) == 0 {
		panic("no return value specified for GetTranscriptByID")
	}

	var r0 *model.Transcript
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.Transcript, error)); ok {
		return rf(ctx, transcriptID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.Transcript); ok {
		r0 = rf(ctx, transcriptID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Transcript)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, transcriptID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListTranscriptsWithoutClaims provides a mock function with given fields: ctx
func (_m *MockStore) ListTranscriptsWithoutClaims(ctx context.Context) ([]model.Transcript, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListTranscriptsWithoutClaims")
	}

	var r0 []model.Transcript
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]model.Transcript, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []model.Transcript); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Transcript)
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpsertFinancialPeriod provides a mock function with given fields: ctx, period
func (_m *MockStore) UpsertFinancialPeriod(ctx context.Context, period model.FinancialPeriod) (bool, error) {
	ret := _m.Called(ctx, period)

	if len(ret) == 0 {
		panic("no return value specified for UpsertFinancialPeriod")
	}

	var r0 bool
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, model.FinancialPeriod) (bool, error)); ok {
		return rf(ctx, period)
	}
	if rf, ok := ret.Get(0).(func(context.Context, model.FinancialPeriod) bool); ok {
		r0 = rf(ctx, period)
	} else {
		r0 = ret.Get(0).(bool)
	}

	if rf, ok := ret.Get(1).(func(context.Context, model.FinancialPeriod) error); ok {
		r1 = rf(ctx, period)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetFinancialPeriod provides a mock function with given fields: ctx, companyID, year, quarter
func (_m *MockStore) GetFinancialPeriod(ctx context.Context, companyID string, year int, quarter int) (*model.FinancialPeriod, error) {
	ret := _m.Called(ctx, companyID, year, quarter)

	if len(ret) == 0 {
		panic("no return value specified for GetFinancialPeriod")
	}

	var r0 *model.FinancialPeriod
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, int, int) (*model.FinancialPeriod, error)); ok {
		return rf(ctx, companyID, year, quarter)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, int, int) *model.FinancialPeriod); ok {
		r0 = rf(ctx, companyID, year, quarter)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.FinancialPeriod)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, int, int) error); ok {
		r1 = rf(ctx, companyID, year, quarter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// InsertClaims provides a mock function with given fields: ctx, claims
func (_m *MockStore) InsertClaims(ctx context.Context, claims []model.Claim) error {
	ret := _m.Called(ctx, claims)

	if len(ret) == 0 {
		panic("no return value specified for InsertClaims")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, []model.Claim) error); ok {
		r0 = rf(ctx, claims)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ListClaimsByCompany provides a mock function with given fields: ctx, companyID
func (_m *MockStore) ListClaimsByCompany(ctx context.Context, companyID string) ([]model.Claim, error) {
	ret := _m.Called(ctx, companyID)

	if len(ret) == 0 {
		panic("no return value specified for ListClaimsByCompany")
	}

	var r0 []model.Claim
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]model.Claim, error)); ok {
		return rf(ctx, companyID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) []model.Claim); ok {
		r0 = rf(ctx, companyID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Claim)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, companyID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListClaimsWithoutVerification provides a mock function with given fields: ctx
func (_m *MockStore) ListClaimsWithoutVerification(ctx context.Context) ([]model.Claim, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for ListClaimsWithoutVerification")
	}

	var r0 []model.Claim
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context) ([]model.Claim, error)); ok {
		return rf(ctx)
	}
	if rf, ok := ret.Get(0).(func(context.Context) []model.Claim); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Claim)
	}

	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// InsertVerification provides a mock function with given fields: ctx, verification
func (_m *MockStore) InsertVerification(ctx context.Context, verification model.Verification) (bool, error) {
	ret := _m.Called(ctx, verification)

	if len(ret) == 0 {
		panic("no return value specified for InsertVerification")
	}

	var r0 bool
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, model.Verification) (bool, error)); ok {
		return rf(ctx, verification)
	}
	if rf, ok := ret.Get(0).(func(context.Context, model.Verification) bool); ok {
		r0 = rf(ctx, verification)
	} else {
		r0 = ret.Get(0).(bool)
	}

	if rf, ok := ret.Get(1).(func(context.Context, model.Verification) error); ok {
		r1 = rf(ctx, verification)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListVerificationsByCompany provides a mock function with given fields: ctx, companyID
func (_m *MockStore) ListVerificationsByCompany(ctx context.Context, companyID string) ([]model.Verification, error) {
	ret := _m.Called(ctx, companyID)

	if len(ret) == 0 {
		panic("no return value specified for ListVerificationsByCompany")
	}

	var r0 []model.Verification
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]model.Verification, error)); ok {
		return rf(ctx, companyID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) []model.Verification); ok {
		r0 = rf(ctx, companyID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Verification)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, companyID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReplacePatterns provides a mock function with given fields: ctx, companyID, patterns
func (_m *MockStore) ReplacePatterns(ctx context.Context, companyID string, patterns []model.Pattern) error {
	ret := _m.Called(ctx, companyID, patterns)

	if len(ret) == 0 {
		panic("no return value specified for ReplacePatterns")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, []model.Pattern) error); ok {
		r0 = rf(ctx, companyID, patterns)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ListPatterns provides a mock function with given fields: ctx, companyID
func (_m *MockStore) ListPatterns(ctx context.Context, companyID string) ([]model.Pattern, error) {
	ret := _m.Called(ctx, companyID)

	if len(ret) == 0 {
		panic("no return value specified for ListPatterns")
	}

	var r0 []model.Pattern
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]model.Pattern, error)); ok {
		return rf(ctx, companyID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) []model.Pattern); ok {
		r0 = rf(ctx, companyID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Pattern)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, companyID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Migrate")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Close provides a mock function with given fields:
func (_m *MockStore) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockStore creates a new instance of MockStore.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
