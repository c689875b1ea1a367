package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/clarity-labs/claim-auditor/internal/extraction"
	"github.com/clarity-labs/claim-auditor/internal/pipeline"
	"github.com/clarity-labs/claim-auditor/internal/resilience"
	"github.com/clarity-labs/claim-auditor/internal/source"
	"github.com/clarity-labs/claim-auditor/internal/store"
	"github.com/clarity-labs/claim-auditor/internal/verdict"
	"github.com/clarity-labs/claim-auditor/internal/verify"
)

// initStore opens the configured store. A "postgres://" database_url selects
// PostgresStore; anything else (a bare path or "file:" DSN) selects
// SQLiteStore (spec §6 "Persistent store").
func initStore(ctx context.Context) (store.Store, error) {
	dsn := cfg.Store.DatabaseURL
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return store.NewPostgres(ctx, dsn)
	}
	return store.NewSQLite(dsn)
}

// openMigratedStore opens the configured store and applies its schema
// migrations, the common entrypoint every stage subcommand shares.
func openMigratedStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initOrchestrator(st store.Store) *pipeline.Orchestrator {
	src := source.NewFMPSource(source.FMPOptions{
		APIKey:     cfg.FinancialData.APIKey,
		BaseURL:    cfg.FinancialData.BaseURL,
		CacheDir:   cfg.FinancialData.CacheDir,
		RetryCfg:   resilience.FromRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelayMS, 0, 0, -1),
		CircuitCfg: resilience.FromCircuitConfig(cfg.Retry.CircuitFailureThreshold, cfg.Retry.CircuitResetTimeoutSecs),
		RateLimit:  rate.Limit(10),
		RateBurst:  10,
	})
	fallback := source.NewFileFallbackSource(cfg.FinancialData.FallbackDir)
	extractor := extraction.NewAnthropicExtractor(cfg.Extraction.APIKey, cfg.Extraction.Model, cfg.Extraction.MaxClaimsPerTranscript)
	tol := verdict.Tolerances{
		Verified:    cfg.Verification.VerificationTolerance,
		Approximate: cfg.Verification.ApproximateTolerance,
		Misleading:  cfg.Verification.MisleadingThreshold,
	}
	verifier := verify.New(st, tol)

	return pipeline.New(st, src, fallback, extractor, verifier, cfg.Pipeline.MaxWorkers)
}

// parseQuarters turns "2024Q1" style labels into QuarterRefs.
func parseQuarters(labels []string) ([]pipeline.QuarterRef, error) {
	refs := make([]pipeline.QuarterRef, 0, len(labels))
	for _, label := range labels {
		var year, quarter int
		if _, err := fmt.Sscanf(label, "%dQ%d", &year, &quarter); err != nil {
			return nil, eris.Wrapf(err, "parse quarter %q (expected e.g. 2024Q1)", label)
		}
		if quarter < 1 || quarter > 4 {
			return nil, eris.Errorf("quarter %q has invalid quarter number %d", label, quarter)
		}
		refs = append(refs, pipeline.QuarterRef{Year: year, Quarter: quarter})
	}
	return refs, nil
}

// printSummary writes a StageSummary to stdout as indented JSON (spec §6).
func printSummary(summary pipeline.StageSummary) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
