package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/clarity-labs/claim-auditor/internal/db"
	"github.com/clarity-labs/claim-auditor/internal/model"
	"github.com/clarity-labs/claim-auditor/internal/resilience"
)

// PostgresStore implements Store using pgx/v5, for production deployments
// pointed at a real relational database via a postgres:// database_url.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a pgx connection pool against dsn.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: open pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	ticker     TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL DEFAULT '',
	sector     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transcripts (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	ticker      TEXT NOT NULL,
	year        INTEGER NOT NULL,
	quarter     INTEGER NOT NULL,
	content     TEXT NOT NULL DEFAULT '',
	source_url  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (company_id, year, quarter)
);

CREATE TABLE IF NOT EXISTS financial_periods (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	ticker      TEXT NOT NULL,
	year        INTEGER NOT NULL,
	quarter     INTEGER NOT NULL,
	metrics     JSONB NOT NULL DEFAULT '{}',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (company_id, year, quarter)
);

CREATE TABLE IF NOT EXISTS claims (
	id                TEXT PRIMARY KEY,
	transcript_id     TEXT NOT NULL REFERENCES transcripts(id),
	company_id        TEXT NOT NULL REFERENCES companies(id),
	speaker           TEXT NOT NULL DEFAULT '',
	speaker_role      TEXT NOT NULL DEFAULT '',
	claim_text        TEXT NOT NULL DEFAULT '',
	metric            TEXT NOT NULL,
	metric_type       TEXT NOT NULL,
	stated_value      DOUBLE PRECISION NOT NULL,
	unit              TEXT NOT NULL,
	comparison_period TEXT NOT NULL,
	comparison_basis  TEXT NOT NULL DEFAULT '',
	is_gaap           BOOLEAN NOT NULL DEFAULT TRUE,
	segment           TEXT NOT NULL DEFAULT '',
	confidence        DOUBLE PRECISION NOT NULL DEFAULT 0.8,
	context_snippet   TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS verifications (
	id               TEXT PRIMARY KEY,
	claim_id         TEXT NOT NULL UNIQUE REFERENCES claims(id),
	actual_value     DOUBLE PRECISION,
	accuracy_score   DOUBLE PRECISION,
	percentage_diff  DOUBLE PRECISION,
	verdict          TEXT NOT NULL,
	misleading_flags JSONB NOT NULL DEFAULT '[]',
	explanation      TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS patterns (
	id                TEXT PRIMARY KEY,
	company_id        TEXT NOT NULL REFERENCES companies(id),
	pattern_type      TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	affected_quarters JSONB NOT NULL DEFAULT '[]',
	severity          DOUBLE PRECISION NOT NULL DEFAULT 0,
	evidence          JSONB NOT NULL DEFAULT '[]',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS dead_letter_queue (
	id             TEXT PRIMARY KEY,
	subject        JSONB NOT NULL DEFAULT '{}',
	stage          TEXT NOT NULL,
	error          TEXT NOT NULL DEFAULT '',
	error_type     TEXT NOT NULL DEFAULT 'permanent',
	retry_count    INTEGER NOT NULL DEFAULT 0,
	max_retries    INTEGER NOT NULL DEFAULT 0,
	next_retry_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_failed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transcripts_company ON transcripts(company_id);
CREATE INDEX IF NOT EXISTS idx_financial_periods_company ON financial_periods(company_id);
CREATE INDEX IF NOT EXISTS idx_claims_transcript ON claims(transcript_id);
CREATE INDEX IF NOT EXISTS idx_claims_company ON claims(company_id);
CREATE INDEX IF NOT EXISTS idx_patterns_company ON patterns(company_id);
CREATE INDEX IF NOT EXISTS idx_dlq_next_retry ON dead_letter_queue(next_retry_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertCompany(ctx context.Context, company model.Company) (bool, error) {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	ticker := strings.ToUpper(company.Ticker)
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO companies (id, ticker, name, sector, created_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (ticker) DO NOTHING`,
		company.ID, ticker, company.Name, company.Sector, time.Now().UTC(),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: upsert company %s", ticker)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) GetCompanyByTicker(ctx context.Context, ticker string) (*model.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, ticker, name, sector, created_at FROM companies WHERE ticker = $1`,
		strings.ToUpper(ticker),
	)
	var c model.Company
	err := row.Scan(&c.ID, &c.Ticker, &c.Name, &c.Sector, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get company")
	}
	return &c, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, ticker, name, sector, created_at FROM companies ORDER BY ticker`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Ticker, &c.Name, &c.Sector, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

func (s *PostgresStore) UpsertTranscript(ctx context.Context, t model.Transcript) (bool, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO transcripts (id, company_id, ticker, year, quarter, content, source_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (company_id, year, quarter) DO NOTHING`,
		t.ID, t.CompanyID, strings.ToUpper(t.Ticker), t.Year, t.Quarter, t.Content, t.SourceURL, time.Now().UTC(),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: upsert transcript %s %dQ%d", t.Ticker, t.Year, t.Quarter)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) GetTranscript(ctx context.Context, companyID string, year, quarter int) (*model.Transcript, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, company_id, ticker, year, quarter, content, source_url, created_at
		 FROM transcripts WHERE company_id = $1 AND year = $2 AND quarter = $3`,
		companyID, year, quarter,
	)
	return scanPgTranscript(row)
}

func (s *PostgresStore) GetTranscriptByID(ctx context.Context, transcriptID string) (*model.Transcript, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, company_id, ticker, year, quarter, content, source_url, created_at
		 FROM transcripts WHERE id = $1`,
		transcriptID,
	)
	return scanPgTranscript(row)
}

func (s *PostgresStore) ListTranscriptsWithoutClaims(ctx context.Context) ([]model.Transcript, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.company_id, t.ticker, t.year, t.quarter, t.content, t.source_url, t.created_at
		FROM transcripts t
		WHERE NOT EXISTS (SELECT 1 FROM claims c WHERE c.transcript_id = t.id)
		ORDER BY t.ticker, t.year, t.quarter`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list transcripts without claims")
	}
	defer rows.Close()

	var transcripts []model.Transcript
	for rows.Next() {
		t, err := scanPgTranscript(rows)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, *t)
	}
	return transcripts, eris.Wrap(rows.Err(), "postgres: list transcripts without claims iterate")
}

type pgScannable interface {
	Scan(dest ...any) error
}

func scanPgTranscript(row pgScannable) (*model.Transcript, error) {
	var t model.Transcript
	err := row.Scan(&t.ID, &t.CompanyID, &t.Ticker, &t.Year, &t.Quarter, &t.Content, &t.SourceURL, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan transcript")
	}
	return &t, nil
}

func (s *PostgresStore) UpsertFinancialPeriod(ctx context.Context, p model.FinancialPeriod) (bool, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	metricsJSON, err := json.Marshal(p.Metrics)
	if err != nil {
		return false, eris.Wrap(err, "postgres: marshal metrics")
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO financial_periods (id, company_id, ticker, year, quarter, metrics, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (company_id, year, quarter) DO NOTHING`,
		p.ID, p.CompanyID, strings.ToUpper(p.Ticker), p.Year, p.Quarter, metricsJSON, time.Now().UTC(),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: upsert financial period %s %dQ%d", p.Ticker, p.Year, p.Quarter)
	}
	return tag.RowsAffected() > 0, nil
}

// BulkUpsertFinancialPeriods loads many periods in one COPY + ON CONFLICT
// pass via internal/db.BulkUpsert, for Ingest's recommended multi-quarter
// backfill (spec: "a window large enough to provide YoY comparisons,
// recommended >= 8 recent quarters"). Re-ingesting the same (company, year,
// quarter) overwrites metrics with the freshest pull rather than skipping,
// since restated financials are a real occurrence this path should pick up.
func (s *PostgresStore) BulkUpsertFinancialPeriods(ctx context.Context, periods []model.FinancialPeriod) (int64, error) {
	if len(periods) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(periods))
	for _, p := range periods {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		metricsJSON, err := json.Marshal(p.Metrics)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal metrics for bulk upsert")
		}
		rows = append(rows, []any{
			p.ID, p.CompanyID, strings.ToUpper(p.Ticker), p.Year, p.Quarter, string(metricsJSON), time.Now().UTC(),
		})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "financial_periods",
		Columns:      []string{"id", "company_id", "ticker", "year", "quarter", "metrics", "created_at"},
		ConflictKeys: []string{"company_id", "year", "quarter"},
		UpdateCols:   []string{"metrics", "created_at"},
	}, rows)
}

func (s *PostgresStore) GetFinancialPeriod(ctx context.Context, companyID string, year, quarter int) (*model.FinancialPeriod, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, company_id, ticker, year, quarter, metrics, created_at
		 FROM financial_periods WHERE company_id = $1 AND year = $2 AND quarter = $3`,
		companyID, year, quarter,
	)
	var p model.FinancialPeriod
	var metricsJSON []byte
	err := row.Scan(&p.ID, &p.CompanyID, &p.Ticker, &p.Year, &p.Quarter, &metricsJSON, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan financial period")
	}
	if err := json.Unmarshal(metricsJSON, &p.Metrics); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal metrics")
	}
	return &p, nil
}

func (s *PostgresStore) InsertClaims(ctx context.Context, claims []model.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin insert claims")
	}
	defer tx.Rollback(ctx)

	for _, c := range claims {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO claims (id, transcript_id, company_id, speaker, speaker_role, claim_text, metric,
				metric_type, stated_value, unit, comparison_period, comparison_basis, is_gaap, segment,
				confidence, context_snippet, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			c.ID, c.TranscriptID, c.CompanyID, c.Speaker, c.SpeakerRole, c.ClaimText, c.Metric,
			string(c.MetricKind), c.StatedValue, string(c.Unit), string(c.ComparisonPeriod), c.ComparisonBasis,
			c.IsGAAP, c.Segment, c.Confidence, c.ContextSnippet, time.Now().UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert claim for transcript %s", c.TranscriptID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit insert claims")
}

func (s *PostgresStore) ListClaimsByCompany(ctx context.Context, companyID string) ([]model.Claim, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, transcript_id, company_id, speaker, speaker_role, claim_text, metric, metric_type,
			stated_value, unit, comparison_period, comparison_basis, is_gaap, segment, confidence,
			context_snippet, created_at
		FROM claims WHERE company_id = $1 ORDER BY created_at`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list claims by company")
	}
	defer rows.Close()
	return scanPgClaims(rows)
}

func (s *PostgresStore) ListClaimsWithoutVerification(ctx context.Context) ([]model.Claim, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.transcript_id, c.company_id, c.speaker, c.speaker_role, c.claim_text, c.metric,
			c.metric_type, c.stated_value, c.unit, c.comparison_period, c.comparison_basis, c.is_gaap,
			c.segment, c.confidence, c.context_snippet, c.created_at
		FROM claims c
		WHERE NOT EXISTS (SELECT 1 FROM verifications v WHERE v.claim_id = c.id)
		ORDER BY c.created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list claims without verification")
	}
	defer rows.Close()
	return scanPgClaims(rows)
}

func scanPgClaims(rows pgx.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var metricKind, unit, comparisonPeriod string
		err := rows.Scan(&c.ID, &c.TranscriptID, &c.CompanyID, &c.Speaker, &c.SpeakerRole, &c.ClaimText,
			&c.Metric, &metricKind, &c.StatedValue, &unit, &comparisonPeriod, &c.ComparisonBasis,
			&c.IsGAAP, &c.Segment, &c.Confidence, &c.ContextSnippet, &c.CreatedAt)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan claim")
		}
		c.MetricKind = model.MetricKind(metricKind)
		c.Unit = model.Unit(unit)
		c.ComparisonPeriod = model.ComparisonPeriod(comparisonPeriod)
		claims = append(claims, c)
	}
	return claims, eris.Wrap(rows.Err(), "postgres: scan claims iterate")
}

func (s *PostgresStore) InsertVerification(ctx context.Context, v model.Verification) (bool, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	flagsJSON, err := json.Marshal(v.MisleadingFlags)
	if err != nil {
		return false, eris.Wrap(err, "postgres: marshal misleading flags")
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO verifications (id, claim_id, actual_value, accuracy_score, percentage_diff, verdict,
			misleading_flags, explanation, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (claim_id) DO NOTHING`,
		v.ID, v.ClaimID, v.ActualValue, v.AccuracyScore, v.PercentageDiff, string(v.Verdict),
		flagsJSON, v.Explanation, time.Now().UTC(),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: upsert verification for claim %s", v.ClaimID)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListVerificationsByCompany(ctx context.Context, companyID string) ([]model.Verification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.id, v.claim_id, v.actual_value, v.accuracy_score, v.percentage_diff, v.verdict,
			v.misleading_flags, v.explanation, v.created_at
		FROM verifications v
		JOIN claims c ON c.id = v.claim_id
		WHERE c.company_id = $1
		ORDER BY v.created_at`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list verifications by company")
	}
	defer rows.Close()

	var verifications []model.Verification
	for rows.Next() {
		var v model.Verification
		var verdict string
		var flagsJSON []byte
		if err := rows.Scan(&v.ID, &v.ClaimID, &v.ActualValue, &v.AccuracyScore, &v.PercentageDiff,
			&verdict, &flagsJSON, &v.Explanation, &v.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan verification")
		}
		v.Verdict = model.Verdict(verdict)
		if err := json.Unmarshal(flagsJSON, &v.MisleadingFlags); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal misleading flags")
		}
		verifications = append(verifications, v)
	}
	return verifications, eris.Wrap(rows.Err(), "postgres: list verifications iterate")
}

func (s *PostgresStore) ReplacePatterns(ctx context.Context, companyID string, patterns []model.Pattern) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace patterns")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM patterns WHERE company_id = $1`, companyID); err != nil {
		return eris.Wrapf(err, "postgres: delete patterns for %s", companyID)
	}

	for _, p := range patterns {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		quartersJSON, err := json.Marshal(p.AffectedQuarters)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal affected quarters")
		}
		evidenceJSON, err := json.Marshal(p.Evidence)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal evidence")
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO patterns (id, company_id, pattern_type, description, affected_quarters, severity,
				evidence, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, companyID, string(p.Kind), p.Description, quartersJSON, p.Severity, evidenceJSON, time.Now().UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert pattern for %s", companyID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit replace patterns")
}

func (s *PostgresStore) ListPatterns(ctx context.Context, companyID string) ([]model.Pattern, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, pattern_type, description, affected_quarters, severity, evidence, created_at
		FROM patterns WHERE company_id = $1 ORDER BY created_at`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list patterns")
	}
	defer rows.Close()

	var patterns []model.Pattern
	for rows.Next() {
		var p model.Pattern
		var kind string
		var quartersJSON, evidenceJSON []byte
		if err := rows.Scan(&p.ID, &p.CompanyID, &kind, &p.Description, &quartersJSON, &p.Severity,
			&evidenceJSON, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pattern")
		}
		p.Kind = model.PatternKind(kind)
		if err := json.Unmarshal(quartersJSON, &p.AffectedQuarters); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal affected quarters")
		}
		if err := json.Unmarshal(evidenceJSON, &p.Evidence); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal evidence")
		}
		patterns = append(patterns, p)
	}
	return patterns, eris.Wrap(rows.Err(), "postgres: list patterns iterate")
}

// EnqueueDLQ records a failed pipeline-stage attempt on one Subject for
// later retry, upserting on ID so a re-enqueue of the same failure updates
// its retry bookkeeping instead of duplicating the row. Implements an
// optional capability the Pipeline Orchestrator probes for via a type
// assertion (SQLiteStore has no DLQ backing store); see bulkFinancialPeriodUpserter
// for the same opportunistic-capability pattern.
func (s *PostgresStore) EnqueueDLQ(ctx context.Context, entry resilience.DLQEntry) error {
	subjectJSON, err := json.Marshal(entry.Subject)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal dlq subject")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO dead_letter_queue
		 (id, subject, stage, error, error_type, retry_count, max_retries, next_retry_at, created_at, last_failed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   error = $4, error_type = $5, retry_count = $6, next_retry_at = $8, last_failed_at = $10`,
		entry.ID, subjectJSON, entry.Stage, entry.Error, entry.ErrorType,
		entry.RetryCount, entry.MaxRetries, entry.NextRetryAt, entry.CreatedAt, entry.LastFailedAt,
	)
	return eris.Wrap(err, "postgres: enqueue dlq")
}

// DequeueDLQ returns entries due for retry (next_retry_at has passed and
// retry_count hasn't exhausted max_retries), oldest first.
func (s *PostgresStore) DequeueDLQ(ctx context.Context, filter resilience.DLQFilter) ([]resilience.DLQEntry, error) {
	query := `SELECT id, subject, stage, error, error_type, retry_count, max_retries, next_retry_at, created_at, last_failed_at
	          FROM dead_letter_queue
	          WHERE next_retry_at <= now() AND retry_count < max_retries`
	args := []any{}
	argIdx := 1

	if filter.Stage != "" {
		query += fmt.Sprintf(` AND stage = $%d`, argIdx)
		args = append(args, filter.Stage)
		argIdx++
	}
	if filter.ErrorType != "" {
		query += fmt.Sprintf(` AND error_type = $%d`, argIdx)
		args = append(args, filter.ErrorType)
		argIdx++
	}

	query += ` ORDER BY next_retry_at ASC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: dequeue dlq")
	}
	defer rows.Close()

	var entries []resilience.DLQEntry
	for rows.Next() {
		var e resilience.DLQEntry
		var subjectJSON []byte
		if err := rows.Scan(&e.ID, &subjectJSON, &e.Stage, &e.Error, &e.ErrorType,
			&e.RetryCount, &e.MaxRetries, &e.NextRetryAt, &e.CreatedAt, &e.LastFailedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan dlq entry")
		}
		if err := json.Unmarshal(subjectJSON, &e.Subject); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal dlq subject")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: dequeue dlq iterate")
}

var _ Store = (*PostgresStore)(nil)
var _ Store = (*SQLiteStore)(nil)
