package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/clarity-labs/claim-auditor/internal/resilience"
)

// Verify invokes the Verification Engine for every Claim without a
// Verification and persists the results. Existing Verifications are never
// mutated (spec §4.8 "verify"); Verify and Analyze run single-threaded,
// being pure CPU work once the claim and its transcript are loaded (spec §5).
func (o *Orchestrator) Verify(ctx context.Context) (StageSummary, error) {
	start := time.Now()
	counter := newSummaryCounter()

	claims, err := o.store.ListClaimsWithoutVerification(ctx)
	if err != nil {
		return StageSummary{}, eris.Wrap(err, "pipeline: list claims without verification")
	}

	for _, claim := range claims {
		transcript, err := o.store.GetTranscriptByID(ctx, claim.TranscriptID)
		if err != nil {
			counter.warn("verify: load transcript for claim %s: %v", claim.ID, err)
			o.deadLetter(ctx, "verify", resilience.Subject{ClaimID: claim.ID}, err)
			continue
		}
		if transcript == nil {
			counter.warn("verify: claim %s references missing transcript %s", claim.ID, claim.TranscriptID)
			continue
		}

		verification, err := o.verifier.Verify(ctx, claim, claim.CompanyID, transcript.Year, transcript.Quarter)
		if err != nil {
			counter.warn("verify: claim %s: %v", claim.ID, err)
			o.deadLetter(ctx, "verify", resilience.Subject{Ticker: transcript.Ticker, Year: transcript.Year, Quarter: transcript.Quarter, ClaimID: claim.ID}, err)
			continue
		}
		verification.ID = uuid.New().String()

		inserted, err := o.store.InsertVerification(ctx, verification)
		if err != nil {
			counter.warn("verify: persist verification for claim %s: %v", claim.ID, err)
			o.deadLetter(ctx, "verify", resilience.Subject{Ticker: transcript.Ticker, Year: transcript.Year, Quarter: transcript.Quarter, ClaimID: claim.ID}, err)
			continue
		}
		if inserted {
			counter.add("verifications_"+string(verification.Verdict), 1)
		} else {
			counter.add("verifications_skipped_existing", 1)
		}
	}

	return counter.finish("verify", start), nil
}
