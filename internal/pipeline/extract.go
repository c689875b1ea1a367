package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/clarity-labs/claim-auditor/internal/resilience"
)

// Extract invokes the Extraction Adapter for every Transcript without any
// Claim and persists the results (spec §4.8 "extract").
func (o *Orchestrator) Extract(ctx context.Context) (StageSummary, error) {
	start := time.Now()
	counter := newSummaryCounter()

	transcripts, err := o.store.ListTranscriptsWithoutClaims(ctx)
	if err != nil {
		return StageSummary{}, eris.Wrap(err, "pipeline: list transcripts without claims")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxWorkers)

	for _, t := range transcripts {
		t := t
		g.Go(func() error {
			claims, err := o.extractor.Extract(gctx, t.Content, t.Ticker, t.Year, t.Quarter)
			if err != nil {
				counter.warn("extract: transcript %s %dQ%d: %v", t.Ticker, t.Year, t.Quarter, err)
				o.deadLetter(ctx, "extract", resilience.Subject{Ticker: t.Ticker, Year: t.Year, Quarter: t.Quarter}, err)
				return nil
			}

			if len(claims) == 0 {
				counter.add("transcripts_with_no_claims", 1)
				return nil
			}

			for i := range claims {
				claims[i].ID = uuid.New().String()
				claims[i].TranscriptID = t.ID
				claims[i].CompanyID = t.CompanyID
			}

			if err := o.store.InsertClaims(gctx, claims); err != nil {
				counter.warn("extract: persist claims for %s %dQ%d: %v", t.Ticker, t.Year, t.Quarter, err)
				o.deadLetter(ctx, "extract", resilience.Subject{Ticker: t.Ticker, Year: t.Year, Quarter: t.Quarter}, err)
				return nil
			}

			counter.add("transcripts_processed", 1)
			counter.add("claims_extracted", len(claims))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StageSummary{}, eris.Wrap(err, "pipeline: extract")
	}

	return counter.finish("extract", start), nil
}
