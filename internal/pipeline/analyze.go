package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/clarity-labs/claim-auditor/internal/discrepancy"
	"github.com/clarity-labs/claim-auditor/internal/model"
	"github.com/clarity-labs/claim-auditor/internal/resilience"
)

// analyzeLock returns the per-company mutex serializing Analyze runs
// against one company, creating it if needed. Mirrors the registry pattern
// internal/resilience.ServiceBreakers uses for per-service circuit breakers,
// repurposed here to serialize the delete+insert Pattern transaction per
// company (spec §5 "a concurrent Analyze for the same company is forbidden").
func (o *Orchestrator) analyzeLock(companyID string) *sync.Mutex {
	o.analyzeLocksMu.Lock()
	lock, ok := o.analyzeLocks[companyID]
	if !ok {
		lock = &sync.Mutex{}
		o.analyzeLocks[companyID] = lock
	}
	o.analyzeLocksMu.Unlock()
	return lock
}

// Analyze computes per-company cross-quarter Patterns for every Company
// with at least one verified claim and atomically replaces that company's
// Pattern set (spec §4.8 "analyze"). Runs single-threaded across
// companies (spec §5); each company's replace is additionally guarded by a
// per-company lock so a concurrent Analyze call for the same company cannot
// interleave with this one.
func (o *Orchestrator) Analyze(ctx context.Context) (StageSummary, error) {
	start := time.Now()
	counter := newSummaryCounter()

	companies, err := o.store.ListCompanies(ctx)
	if err != nil {
		return StageSummary{}, eris.Wrap(err, "pipeline: list companies")
	}

	for _, company := range companies {
		if err := o.analyzeCompany(ctx, company, counter); err != nil {
			counter.warn("analyze: company %s: %v", company.Ticker, err)
			o.deadLetter(ctx, "analyze", resilience.Subject{Ticker: company.Ticker}, err)
		}
	}

	return counter.finish("analyze", start), nil
}

func (o *Orchestrator) analyzeCompany(ctx context.Context, company model.Company, counter *summaryCounter) error {
	lock := o.analyzeLock(company.ID)
	lock.Lock()
	defer lock.Unlock()

	claims, err := o.store.ListClaimsByCompany(ctx, company.ID)
	if err != nil {
		return eris.Wrap(err, "list claims")
	}
	if len(claims) == 0 {
		return nil
	}

	verifications, err := o.store.ListVerificationsByCompany(ctx, company.ID)
	if err != nil {
		return eris.Wrap(err, "list verifications")
	}
	verByClaimID := make(map[string]model.Verification, len(verifications))
	for _, v := range verifications {
		verByClaimID[v.ClaimID] = v
	}

	transcriptQuarter := make(map[string]string, len(claims))
	claimsByQuarter := make(map[string][]discrepancy.VerifiedClaim)
	var verifiedCount int

	for _, claim := range claims {
		verification, ok := verByClaimID[claim.ID]
		if !ok || verification.Verdict == model.VerdictUnverifiable {
			continue
		}

		quarterLabel, ok := transcriptQuarter[claim.TranscriptID]
		if !ok {
			transcript, err := o.store.GetTranscriptByID(ctx, claim.TranscriptID)
			if err != nil {
				return eris.Wrapf(err, "load transcript for claim %s", claim.ID)
			}
			if transcript == nil {
				continue
			}
			quarterLabel = model.QuarterLabel(transcript.Year, transcript.Quarter)
			transcriptQuarter[claim.TranscriptID] = quarterLabel
		}

		claimsByQuarter[quarterLabel] = append(claimsByQuarter[quarterLabel], discrepancy.VerifiedClaim{
			Claim:        claim,
			Verification: verification,
		})
		verifiedCount++
	}

	if verifiedCount == 0 {
		return nil
	}

	patterns := discrepancy.Analyze(company.ID, claimsByQuarter)
	if err := o.store.ReplacePatterns(ctx, company.ID, patterns); err != nil {
		return eris.Wrap(err, "replace patterns")
	}

	counter.add("companies_analyzed", 1)
	for _, p := range patterns {
		counter.add("patterns_"+string(p.Kind), 1)
	}
	return nil
}
