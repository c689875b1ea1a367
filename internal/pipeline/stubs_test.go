package pipeline

import (
	"context"
	"fmt"

	"github.com/clarity-labs/claim-auditor/internal/extraction"
	"github.com/clarity-labs/claim-auditor/internal/model"
	"github.com/clarity-labs/claim-auditor/internal/source"
)

// fakeSource is a deterministic in-memory source.Client for pipeline tests.
type fakeSource struct {
	profiles    map[string]*source.Profile
	transcripts map[string]*source.TranscriptRecord
	statements  map[string][]source.StatementRecord

	profileErr    error
	transcriptErr error
	statementsErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		profiles:    make(map[string]*source.Profile),
		transcripts: make(map[string]*source.TranscriptRecord),
		statements:  make(map[string][]source.StatementRecord),
	}
}

func transcriptKey(ticker string, year, quarter int) string {
	return fmt.Sprintf("%s-%d-%d", ticker, year, quarter)
}

func (f *fakeSource) Profile(ctx context.Context, ticker string) (*source.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profiles[ticker], nil
}

func (f *fakeSource) Transcript(ctx context.Context, ticker string, year, quarter int) (*source.TranscriptRecord, error) {
	if f.transcriptErr != nil {
		return nil, f.transcriptErr
	}
	return f.transcripts[transcriptKey(ticker, year, quarter)], nil
}

func (f *fakeSource) Statements(ctx context.Context, ticker string, kind source.StatementKind, limit int) ([]source.StatementRecord, error) {
	if f.statementsErr != nil {
		return nil, f.statementsErr
	}
	return f.statements[ticker+":"+string(kind)], nil
}

var _ source.Client = (*fakeSource)(nil)

// fakeExtractor is a deterministic in-memory extraction.Client for pipeline
// tests, keyed by (ticker, year, quarter).
type fakeExtractor struct {
	claims map[string][]model.Claim
	err    error
	calls  int
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{claims: make(map[string][]model.Claim)}
}

func (f *fakeExtractor) Extract(ctx context.Context, transcriptText, ticker string, year, quarter int) ([]model.Claim, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.claims[transcriptKey(ticker, year, quarter)], nil
}

var _ extraction.Client = (*fakeExtractor)(nil)
