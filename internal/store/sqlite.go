package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/clarity-labs/claim-auditor/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is the default
// backend, used directly in development.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	ticker     TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL DEFAULT '',
	sector     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS transcripts (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	ticker      TEXT NOT NULL,
	year        INTEGER NOT NULL,
	quarter     INTEGER NOT NULL,
	content     TEXT NOT NULL DEFAULT '',
	source_url  TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (company_id, year, quarter)
);

CREATE TABLE IF NOT EXISTS financial_periods (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	ticker      TEXT NOT NULL,
	year        INTEGER NOT NULL,
	quarter     INTEGER NOT NULL,
	metrics     TEXT NOT NULL DEFAULT '{}',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
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
	stated_value      REAL NOT NULL,
	unit              TEXT NOT NULL,
	comparison_period TEXT NOT NULL,
	comparison_basis  TEXT NOT NULL DEFAULT '',
	is_gaap           INTEGER NOT NULL DEFAULT 1,
	segment           TEXT NOT NULL DEFAULT '',
	confidence        REAL NOT NULL DEFAULT 0.8,
	context_snippet   TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS verifications (
	id               TEXT PRIMARY KEY,
	claim_id         TEXT NOT NULL UNIQUE REFERENCES claims(id),
	actual_value     REAL,
	accuracy_score   REAL,
	percentage_diff  REAL,
	verdict          TEXT NOT NULL,
	misleading_flags TEXT NOT NULL DEFAULT '[]',
	explanation      TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS patterns (
	id                TEXT PRIMARY KEY,
	company_id        TEXT NOT NULL REFERENCES companies(id),
	pattern_type      TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	affected_quarters TEXT NOT NULL DEFAULT '[]',
	severity          REAL NOT NULL DEFAULT 0,
	evidence          TEXT NOT NULL DEFAULT '[]',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_transcripts_company ON transcripts(company_id);
CREATE INDEX IF NOT EXISTS idx_financial_periods_company ON financial_periods(company_id);
CREATE INDEX IF NOT EXISTS idx_claims_transcript ON claims(transcript_id);
CREATE INDEX IF NOT EXISTS idx_claims_company ON claims(company_id);
CREATE INDEX IF NOT EXISTS idx_patterns_company ON patterns(company_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ── companies ──────────────────────────────────────────────────────

func (s *SQLiteStore) UpsertCompany(ctx context.Context, company model.Company) (bool, error) {
	ticker := strings.ToUpper(company.Ticker)
	existing, err := s.GetCompanyByTicker(ctx, ticker)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO companies (id, ticker, name, sector, created_at) VALUES (?, ?, ?, ?, ?)`,
		company.ID, ticker, company.Name, company.Sector, now,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert company %s", ticker)
	}
	return true, nil
}

func (s *SQLiteStore) GetCompanyByTicker(ctx context.Context, ticker string) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ticker, name, sector, created_at FROM companies WHERE ticker = ?`,
		strings.ToUpper(ticker),
	)
	var c model.Company
	err := row.Scan(&c.ID, &c.Ticker, &c.Name, &c.Sector, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get company")
	}
	return &c, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, ticker, name, sector, created_at FROM companies ORDER BY ticker`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Ticker, &c.Name, &c.Sector, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

// ── transcripts ────────────────────────────────────────────────────

func (s *SQLiteStore) UpsertTranscript(ctx context.Context, t model.Transcript) (bool, error) {
	existing, err := s.GetTranscript(ctx, t.CompanyID, t.Year, t.Quarter)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transcripts (id, company_id, ticker, year, quarter, content, source_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CompanyID, strings.ToUpper(t.Ticker), t.Year, t.Quarter, t.Content, t.SourceURL, now,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert transcript %s %dQ%d", t.Ticker, t.Year, t.Quarter)
	}
	return true, nil
}

func (s *SQLiteStore) GetTranscript(ctx context.Context, companyID string, year, quarter int) (*model.Transcript, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, ticker, year, quarter, content, source_url, created_at
		 FROM transcripts WHERE company_id = ? AND year = ? AND quarter = ?`,
		companyID, year, quarter,
	)
	return scanTranscript(row)
}

func (s *SQLiteStore) GetTranscriptByID(ctx context.Context, transcriptID string) (*model.Transcript, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, ticker, year, quarter, content, source_url, created_at
		 FROM transcripts WHERE id = ?`,
		transcriptID,
	)
	return scanTranscript(row)
}

func (s *SQLiteStore) ListTranscriptsWithoutClaims(ctx context.Context) ([]model.Transcript, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.company_id, t.ticker, t.year, t.quarter, t.content, t.source_url, t.created_at
		FROM transcripts t
		WHERE NOT EXISTS (SELECT 1 FROM claims c WHERE c.transcript_id = t.id)
		ORDER BY t.ticker, t.year, t.quarter`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list transcripts without claims")
	}
	defer rows.Close()

	var transcripts []model.Transcript
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		transcripts = append(transcripts, *t)
	}
	return transcripts, eris.Wrap(rows.Err(), "sqlite: list transcripts without claims iterate")
}

func scanTranscript(row scannable) (*model.Transcript, error) {
	var t model.Transcript
	err := row.Scan(&t.ID, &t.CompanyID, &t.Ticker, &t.Year, &t.Quarter, &t.Content, &t.SourceURL, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan transcript")
	}
	return &t, nil
}

// ── financial periods ──────────────────────────────────────────────

func (s *SQLiteStore) UpsertFinancialPeriod(ctx context.Context, p model.FinancialPeriod) (bool, error) {
	existing, err := s.GetFinancialPeriod(ctx, p.CompanyID, p.Year, p.Quarter)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	metricsJSON, err := json.Marshal(p.Metrics)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: marshal metrics")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO financial_periods (id, company_id, ticker, year, quarter, metrics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, strings.ToUpper(p.Ticker), p.Year, p.Quarter, string(metricsJSON), now,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert financial period %s %dQ%d", p.Ticker, p.Year, p.Quarter)
	}
	return true, nil
}

func (s *SQLiteStore) GetFinancialPeriod(ctx context.Context, companyID string, year, quarter int) (*model.FinancialPeriod, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, ticker, year, quarter, metrics, created_at
		 FROM financial_periods WHERE company_id = ? AND year = ? AND quarter = ?`,
		companyID, year, quarter,
	)

	var p model.FinancialPeriod
	var metricsJSON string
	err := row.Scan(&p.ID, &p.CompanyID, &p.Ticker, &p.Year, &p.Quarter, &metricsJSON, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan financial period")
	}
	if err := json.Unmarshal([]byte(metricsJSON), &p.Metrics); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal metrics")
	}
	return &p, nil
}

// ── claims ─────────────────────────────────────────────────────────

func (s *SQLiteStore) InsertClaims(ctx context.Context, claims []model.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin insert claims")
	}
	defer tx.Rollback()

	for _, c := range claims {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		now := time.Now().UTC()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO claims (id, transcript_id, company_id, speaker, speaker_role, claim_text, metric,
				metric_type, stated_value, unit, comparison_period, comparison_basis, is_gaap, segment,
				confidence, context_snippet, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.TranscriptID, c.CompanyID, c.Speaker, c.SpeakerRole, c.ClaimText, c.Metric,
			string(c.MetricKind), c.StatedValue, string(c.Unit), string(c.ComparisonPeriod), c.ComparisonBasis,
			boolToInt(c.IsGAAP), c.Segment, c.Confidence, c.ContextSnippet, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert claim for transcript %s", c.TranscriptID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit insert claims")
}

func (s *SQLiteStore) ListClaimsByCompany(ctx context.Context, companyID string) ([]model.Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transcript_id, company_id, speaker, speaker_role, claim_text, metric, metric_type,
			stated_value, unit, comparison_period, comparison_basis, is_gaap, segment, confidence,
			context_snippet, created_at
		FROM claims WHERE company_id = ? ORDER BY created_at`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list claims by company")
	}
	defer rows.Close()
	return scanClaims(rows)
}

func (s *SQLiteStore) ListClaimsWithoutVerification(ctx context.Context) ([]model.Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.transcript_id, c.company_id, c.speaker, c.speaker_role, c.claim_text, c.metric,
			c.metric_type, c.stated_value, c.unit, c.comparison_period, c.comparison_basis, c.is_gaap,
			c.segment, c.confidence, c.context_snippet, c.created_at
		FROM claims c
		WHERE NOT EXISTS (SELECT 1 FROM verifications v WHERE v.claim_id = c.id)
		ORDER BY c.created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list claims without verification")
	}
	defer rows.Close()
	return scanClaims(rows)
}

func scanClaims(rows *sql.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var metricKind, unit, comparisonPeriod string
		var isGAAP int
		err := rows.Scan(&c.ID, &c.TranscriptID, &c.CompanyID, &c.Speaker, &c.SpeakerRole, &c.ClaimText,
			&c.Metric, &metricKind, &c.StatedValue, &unit, &comparisonPeriod, &c.ComparisonBasis,
			&isGAAP, &c.Segment, &c.Confidence, &c.ContextSnippet, &c.CreatedAt)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan claim")
		}
		c.MetricKind = model.MetricKind(metricKind)
		c.Unit = model.Unit(unit)
		c.ComparisonPeriod = model.ComparisonPeriod(comparisonPeriod)
		c.IsGAAP = isGAAP != 0
		claims = append(claims, c)
	}
	return claims, eris.Wrap(rows.Err(), "sqlite: scan claims iterate")
}

// ── verifications ──────────────────────────────────────────────────

func (s *SQLiteStore) InsertVerification(ctx context.Context, v model.Verification) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM verifications WHERE claim_id = ?`, v.ClaimID).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return false, eris.Wrap(err, "sqlite: check existing verification")
	}
	if err == nil {
		return false, nil
	}

	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	flagsJSON, err := json.Marshal(v.MisleadingFlags)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: marshal misleading flags")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO verifications (id, claim_id, actual_value, accuracy_score, percentage_diff, verdict,
			misleading_flags, explanation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.ClaimID, v.ActualValue, v.AccuracyScore, v.PercentageDiff, string(v.Verdict),
		string(flagsJSON), v.Explanation, now,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert verification for claim %s", v.ClaimID)
	}
	return true, nil
}

func (s *SQLiteStore) ListVerificationsByCompany(ctx context.Context, companyID string) ([]model.Verification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.claim_id, v.actual_value, v.accuracy_score, v.percentage_diff, v.verdict,
			v.misleading_flags, v.explanation, v.created_at
		FROM verifications v
		JOIN claims c ON c.id = v.claim_id
		WHERE c.company_id = ?
		ORDER BY v.created_at`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list verifications by company")
	}
	defer rows.Close()

	var verifications []model.Verification
	for rows.Next() {
		var v model.Verification
		var verdict, flagsJSON string
		if err := rows.Scan(&v.ID, &v.ClaimID, &v.ActualValue, &v.AccuracyScore, &v.PercentageDiff,
			&verdict, &flagsJSON, &v.Explanation, &v.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan verification")
		}
		v.Verdict = model.Verdict(verdict)
		if err := json.Unmarshal([]byte(flagsJSON), &v.MisleadingFlags); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal misleading flags")
		}
		verifications = append(verifications, v)
	}
	return verifications, eris.Wrap(rows.Err(), "sqlite: list verifications iterate")
}

// ── patterns ───────────────────────────────────────────────────────

func (s *SQLiteStore) ReplacePatterns(ctx context.Context, companyID string, patterns []model.Pattern) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace patterns")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM patterns WHERE company_id = ?`, companyID); err != nil {
		return eris.Wrapf(err, "sqlite: delete patterns for %s", companyID)
	}

	for _, p := range patterns {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		quartersJSON, err := json.Marshal(p.AffectedQuarters)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal affected quarters")
		}
		evidenceJSON, err := json.Marshal(p.Evidence)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal evidence")
		}
		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO patterns (id, company_id, pattern_type, description, affected_quarters, severity,
				evidence, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, companyID, string(p.Kind), p.Description, string(quartersJSON), p.Severity,
			string(evidenceJSON), now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert pattern for %s", companyID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace patterns")
}

func (s *SQLiteStore) ListPatterns(ctx context.Context, companyID string) ([]model.Pattern, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, pattern_type, description, affected_quarters, severity, evidence, created_at
		FROM patterns WHERE company_id = ? ORDER BY created_at`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list patterns")
	}
	defer rows.Close()

	var patterns []model.Pattern
	for rows.Next() {
		var p model.Pattern
		var kind, quartersJSON, evidenceJSON string
		if err := rows.Scan(&p.ID, &p.CompanyID, &kind, &p.Description, &quartersJSON, &p.Severity,
			&evidenceJSON, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pattern")
		}
		p.Kind = model.PatternKind(kind)
		if err := json.Unmarshal([]byte(quartersJSON), &p.AffectedQuarters); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal affected quarters")
		}
		if err := json.Unmarshal([]byte(evidenceJSON), &p.Evidence); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal evidence")
		}
		patterns = append(patterns, p)
	}
	return patterns, eris.Wrap(rows.Err(), "sqlite: list patterns iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
