// Package store defines the persistence interface for Claim Auditor's data
// model and provides SQLite (default/dev) and Postgres (production)
// implementations.
package store

import (
	"context"

	"github.com/clarity-labs/claim-auditor/internal/model"
)

// Store is the persistence interface consumed by internal/pipeline. Every
// write operation except InsertClaims is idempotent per the entity
// lifecycles in the data model: Company/Transcript/FinancialPeriod upserts
// skip silently on an existing unique key; Verification upserts skip on an
// existing claim reference; Pattern writes atomically replace a company's
// whole pattern set. InsertClaims inserts every claim it is given.
type Store interface {
	// UpsertCompany inserts company if its ticker is new, and reports
	// whether an insert happened.
	UpsertCompany(ctx context.Context, company model.Company) (inserted bool, err error)
	GetCompanyByTicker(ctx context.Context, ticker string) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)

	// UpsertTranscript inserts transcript if (company, year, quarter) is
	// new, and reports whether an insert happened.
	UpsertTranscript(ctx context.Context, transcript model.Transcript) (inserted bool, err error)
	GetTranscript(ctx context.Context, companyID string, year, quarter int) (*model.Transcript, error)
	ListTranscriptsWithoutClaims(ctx context.Context) ([]model.Transcript, error)

	// UpsertFinancialPeriod inserts period if (company, year, quarter) is
	// new, and reports whether an insert happened.
	UpsertFinancialPeriod(ctx context.Context, period model.FinancialPeriod) (inserted bool, err error)
	GetFinancialPeriod(ctx context.Context, companyID string, year, quarter int) (*model.FinancialPeriod, error)

	// InsertClaims persists newly extracted claims for a transcript.
	// Claims are write-once; callers are responsible for deduplication
	// before calling (internal/extraction does this).
	InsertClaims(ctx context.Context, claims []model.Claim) error
	ListClaimsByCompany(ctx context.Context, companyID string) ([]model.Claim, error)
	ListClaimsWithoutVerification(ctx context.Context) ([]model.Claim, error)
	GetTranscriptByID(ctx context.Context, transcriptID string) (*model.Transcript, error)

	// InsertVerification persists a Verification if one does not already
	// exist for the claim, and reports whether an insert happened.
	InsertVerification(ctx context.Context, verification model.Verification) (inserted bool, err error)
	ListVerificationsByCompany(ctx context.Context, companyID string) ([]model.Verification, error)

	// ReplacePatterns atomically deletes a company's existing Patterns and
	// inserts the new set, in a single transaction.
	ReplacePatterns(ctx context.Context, companyID string, patterns []model.Pattern) error
	ListPatterns(ctx context.Context, companyID string) ([]model.Pattern, error)

	Migrate(ctx context.Context) error
	Close() error
}
