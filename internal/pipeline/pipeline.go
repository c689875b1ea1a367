// Package pipeline implements the Pipeline Orchestrator: the four-stage
// idempotent driver (ingest, extract, verify, analyze) tying together the
// External Source Adapter, Extraction Adapter, Verification Engine, and
// Discrepancy Analyzer against the persistent store.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clarity-labs/claim-auditor/internal/extraction"
	"github.com/clarity-labs/claim-auditor/internal/model"
	"github.com/clarity-labs/claim-auditor/internal/resilience"
	"github.com/clarity-labs/claim-auditor/internal/source"
	"github.com/clarity-labs/claim-auditor/internal/store"
	"github.com/clarity-labs/claim-auditor/internal/verify"
)

// statementWindow is the number of most-recent quarterly statement records
// Ingest pulls per statement kind, large enough to provide YoY comparisons
// for every ingested quarter (spec §4.8 "recommended: >= 8 recent quarters").
const statementWindow = 8

// QuarterRef names one fiscal quarter to target.
type QuarterRef struct {
	Year    int
	Quarter int
}

// StageSummary is the structured result every Orchestrator operation
// returns, printed as indented JSON by cmd/auditor (spec §6).
type StageSummary struct {
	Stage      string         `json:"stage"`
	OK         bool           `json:"ok"`
	Counts     map[string]int `json:"counts"`
	Warnings   []string       `json:"warnings,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// bulkFinancialPeriodUpserter is implemented by stores (PostgresStore) that
// can load many FinancialPeriods in one round trip. Ingest uses it
// opportunistically via a type assertion and falls back to one-by-one
// UpsertFinancialPeriod calls against any Store that doesn't.
type bulkFinancialPeriodUpserter interface {
	BulkUpsertFinancialPeriods(ctx context.Context, periods []model.FinancialPeriod) (int64, error)
}

// dlqMaxRetries bounds how many times a dead-lettered stage failure is
// eligible for replay before it's considered permanently failed.
const dlqMaxRetries = 5

// dlqWriter is implemented by stores (PostgresStore) that can durably
// record a failed stage attempt for later retry. The Orchestrator probes
// for it the same way it probes for bulkFinancialPeriodUpserter: best-effort,
// never required.
type dlqWriter interface {
	EnqueueDLQ(ctx context.Context, entry resilience.DLQEntry) error
}

// deadLetter records a per-item stage failure to the store's dead letter
// queue, if it has one. Failures here are themselves only logged: the DLQ
// is a convenience for later replay, never a reason to fail the stage.
func (o *Orchestrator) deadLetter(ctx context.Context, stage string, subject resilience.Subject, failure error) {
	dlq, ok := o.store.(dlqWriter)
	if !ok {
		return
	}
	now := time.Now().UTC()
	entry := resilience.DLQEntry{
		ID:           uuid.New().String(),
		Subject:      subject,
		Stage:        stage,
		Error:        failure.Error(),
		ErrorType:    resilience.ClassifyError(failure),
		MaxRetries:   dlqMaxRetries,
		NextRetryAt:  now,
		CreatedAt:    now,
		LastFailedAt: now,
	}
	if err := dlq.EnqueueDLQ(ctx, entry); err != nil {
		zap.L().Warn("pipeline: failed to enqueue dead letter", zap.String("stage", stage), zap.Error(err))
	}
}

// Orchestrator drives the four pipeline stages.
type Orchestrator struct {
	store      store.Store
	src        source.Client
	fallback   *source.FileFallbackSource
	extractor  extraction.Client
	verifier   *verify.Engine
	maxWorkers int

	analyzeLocksMu sync.Mutex
	analyzeLocks   map[string]*sync.Mutex
}

// New constructs an Orchestrator. maxWorkers bounds Ingest/Extract
// concurrency (spec §5, default 4).
func New(st store.Store, src source.Client, fallback *source.FileFallbackSource, extractor extraction.Client, verifier *verify.Engine, maxWorkers int) *Orchestrator {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Orchestrator{
		store:        st,
		src:          src,
		fallback:     fallback,
		extractor:    extractor,
		verifier:     verifier,
		maxWorkers:   maxWorkers,
		analyzeLocks: make(map[string]*sync.Mutex),
	}
}

// summaryCounter accumulates outcome counts and warnings safely across
// concurrent workers.
type summaryCounter struct {
	mu       sync.Mutex
	counts   map[string]int
	warnings []string
}

func newSummaryCounter() *summaryCounter {
	return &summaryCounter{counts: make(map[string]int)}
}

func (c *summaryCounter) add(key string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key] += n
}

func (c *summaryCounter) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	zap.L().Warn(msg)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, msg)
}

func (c *summaryCounter) finish(stage string, start time.Time) StageSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StageSummary{
		Stage:      stage,
		OK:         true,
		Counts:     c.counts,
		Warnings:   c.warnings,
		DurationMS: time.Since(start).Milliseconds(),
	}
}

// Ingest upserts each ticker's Company, a financial-statement window wide
// enough for YoY comparisons, and a Transcript per requested quarter (spec
// §4.8 "ingest"). Per-ticker work (profile + statement window) and
// per-(ticker,quarter) transcript fetches both run on a bounded worker pool.
func (o *Orchestrator) Ingest(ctx context.Context, tickers []string, quarters []QuarterRef) (StageSummary, error) {
	start := time.Now()
	counter := newSummaryCounter()

	companies := make(map[string]model.Company, len(tickers))
	var companiesMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxWorkers)

	for _, raw := range tickers {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		g.Go(func() error {
			company, err := o.ingestCompany(gctx, ticker)
			if err != nil {
				counter.warn("ingest: company %s: %v", ticker, err)
				o.deadLetter(ctx, "ingest", resilience.Subject{Ticker: ticker}, err)
				return nil
			}
			counter.add("companies_touched", 1)

			n, err := o.ingestFinancialPeriods(gctx, *company)
			if err != nil {
				counter.warn("ingest: financial periods for %s: %v", ticker, err)
				o.deadLetter(ctx, "ingest", resilience.Subject{Ticker: ticker}, err)
			}
			counter.add("periods_upserted", n)

			companiesMu.Lock()
			companies[ticker] = *company
			companiesMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StageSummary{}, eris.Wrap(err, "pipeline: ingest companies")
	}

	g2, gctx2 := errgroup.WithContext(ctx)
	g2.SetLimit(o.maxWorkers)

	for ticker, company := range companies {
		for _, q := range quarters {
			ticker, company, q := ticker, company, q
			g2.Go(func() error {
				inserted, err := o.ingestTranscript(gctx2, company, ticker, q.Year, q.Quarter)
				if err != nil {
					counter.warn("ingest: transcript %s %dQ%d: %v", ticker, q.Year, q.Quarter, err)
					o.deadLetter(ctx, "ingest", resilience.Subject{Ticker: ticker, Year: q.Year, Quarter: q.Quarter}, err)
					return nil
				}
				if inserted {
					counter.add("transcripts_fetched", 1)
				} else {
					counter.add("transcripts_skipped", 1)
				}
				return nil
			})
		}
	}
	if err := g2.Wait(); err != nil {
		return StageSummary{}, eris.Wrap(err, "pipeline: ingest transcripts")
	}

	return counter.finish("ingest", start), nil
}

// ingestCompany upserts ticker's Company from the upstream profile and
// returns the canonical stored record (with its stable ID, whether this
// call inserted it or it already existed).
func (o *Orchestrator) ingestCompany(ctx context.Context, ticker string) (*model.Company, error) {
	profile, err := o.src.Profile(ctx, ticker)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch profile for %s", ticker)
	}

	company := model.Company{ID: uuid.New().String(), Ticker: ticker}
	if profile != nil {
		company.Name = profile.Name
		company.Sector = profile.Sector
	}

	if _, err := o.store.UpsertCompany(ctx, company); err != nil {
		return nil, eris.Wrapf(err, "upsert company %s", ticker)
	}

	stored, err := o.store.GetCompanyByTicker(ctx, ticker)
	if err != nil {
		return nil, eris.Wrapf(err, "reload company %s", ticker)
	}
	if stored == nil {
		return nil, eris.Errorf("company %s missing immediately after upsert", ticker)
	}
	return stored, nil
}

// ingestFinancialPeriods fetches statementWindow quarters of each statement
// kind for company, merges them by (year, quarter) into FinancialPeriod
// records, and upserts the result.
func (o *Orchestrator) ingestFinancialPeriods(ctx context.Context, company model.Company) (int, error) {
	merged := map[QuarterRef]map[string]float64{}

	for _, kind := range []source.StatementKind{source.StatementIncome, source.StatementCashFlow, source.StatementBalanceSheet} {
		records, err := o.src.Statements(ctx, company.Ticker, kind, statementWindow)
		if err != nil {
			return 0, eris.Wrapf(err, "fetch %s statements", kind)
		}
		for _, rec := range records {
			key := QuarterRef{Year: rec.Year, Quarter: rec.Quarter}
			if merged[key] == nil {
				merged[key] = make(map[string]float64)
			}
			for k, v := range rec.Fields {
				merged[key][k] = v
			}
		}
	}

	if len(merged) == 0 {
		return 0, nil
	}

	periods := make([]model.FinancialPeriod, 0, len(merged))
	for q, fields := range merged {
		periods = append(periods, model.FinancialPeriod{
			ID:        uuid.New().String(),
			CompanyID: company.ID,
			Ticker:    company.Ticker,
			Year:      q.Year,
			Quarter:   q.Quarter,
			Metrics:   fields,
		})
	}

	if bulk, ok := o.store.(bulkFinancialPeriodUpserter); ok {
		n, err := bulk.BulkUpsertFinancialPeriods(ctx, periods)
		if err != nil {
			return 0, eris.Wrap(err, "bulk upsert financial periods")
		}
		return int(n), nil
	}

	var inserted int
	for _, p := range periods {
		ok, err := o.store.UpsertFinancialPeriod(ctx, p)
		if err != nil {
			return inserted, eris.Wrapf(err, "upsert financial period %dQ%d", p.Year, p.Quarter)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// ingestTranscript upserts the Transcript for (company, year, quarter),
// consulting the filesystem fallback when the upstream source has none
// (spec §4.6).
func (o *Orchestrator) ingestTranscript(ctx context.Context, company model.Company, ticker string, year, quarter int) (inserted bool, err error) {
	rec, err := o.src.Transcript(ctx, ticker, year, quarter)
	if err != nil {
		return false, eris.Wrap(err, "fetch transcript")
	}

	if rec == nil && o.fallback != nil {
		rec, err = o.fallback.Transcript(ctx, ticker, year, quarter)
		if err != nil {
			return false, eris.Wrap(err, "fallback transcript")
		}
	}
	if rec == nil {
		return false, nil
	}

	transcript := model.Transcript{
		ID:        uuid.New().String(),
		CompanyID: company.ID,
		Ticker:    ticker,
		Year:      year,
		Quarter:   quarter,
		Content:   rec.Text,
	}

	return o.store.UpsertTranscript(ctx, transcript)
}
