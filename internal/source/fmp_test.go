package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarity-labs/claim-auditor/internal/resilience"
)

func newTestSource(t *testing.T, baseURL string) *FMPSource {
	t.Helper()
	return NewFMPSource(FMPOptions{
		APIKey:   "test-key",
		BaseURL:  baseURL,
		CacheDir: t.TempDir(),
		Timeout:  5 * time.Second,
		RetryCfg: resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond},
	})
}

func TestProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`[{"companyName":"Acme Corp","sector":"Technology"}]`))
	}))
	defer srv.Close()

	s := newTestSource(t, srv.URL)
	p, err := s.Profile(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Acme Corp", p.Name)
	assert.Equal(t, "Technology", p.Sector)
}

func TestProfileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := newTestSource(t, srv.URL)
	p, err := s.Profile(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileCachesResponse(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`[{"companyName":"Acme Corp","sector":"Technology"}]`))
	}))
	defer srv.Close()

	s := newTestSource(t, srv.URL)
	ctx := context.Background()

	_, err := s.Profile(ctx, "acme")
	require.NoError(t, err)
	_, err = s.Profile(ctx, "acme")
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestProfileRetriesOn5xx(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"companyName":"Acme Corp","sector":"Technology"}]`))
	}))
	defer srv.Close()

	s := newTestSource(t, srv.URL)
	p, err := s.Profile(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.EqualValues(t, 2, atomic.LoadInt32(&attempts))
}

func TestTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024", r.URL.Query().Get("year"))
		assert.Equal(t, "1", r.URL.Query().Get("quarter"))
		w.Write([]byte(`[{"date":"2024-01-15","content":"Welcome to the call."}]`))
	}))
	defer srv.Close()

	s := newTestSource(t, srv.URL)
	tr, err := s.Transcript(context.Background(), "ACME", 2024, 1)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, "Welcome to the call.", tr.Text)
}

func TestTranscriptMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	s := newTestSource(t, srv.URL)
	tr, err := s.Transcript(context.Background(), "ACME", 2024, 1)
	require.NoError(t, err)
	assert.Nil(t, tr)
}

func TestStatementsMapsProviderFieldsToCanonicalMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"date":"2024-03-31","period":"Q1","revenue":1000,"costOfRevenue":400,"grossProfit":600}]`))
	}))
	defer srv.Close()

	s := newTestSource(t, srv.URL)
	records, err := s.Statements(context.Background(), "ACME", StatementIncome, 8)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2024, records[0].Year)
	assert.Equal(t, 1, records[0].Quarter)
	assert.Equal(t, 1000.0, records[0].Fields["revenue"])
	assert.Equal(t, 400.0, records[0].Fields["cost_of_revenue"])
	assert.Equal(t, 600.0, records[0].Fields["gross_profit"])
}

func TestProfileTripsCircuitAfterRepeatedFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newTestSource(t, srv.URL)

	for i := 0; i < 5; i++ {
		_, err := s.Profile(context.Background(), "acme")
		require.Error(t, err)
	}
	hitsAfterTripping := atomic.LoadInt32(&hits)

	_, err := s.Profile(context.Background(), "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit")
	assert.Equal(t, hitsAfterTripping, atomic.LoadInt32(&hits), "open circuit should short-circuit without another request")
}

func TestFileFallbackSourceReadsTranscript(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/ACME_Q1_2024.txt"
	require.NoError(t, os.WriteFile(path, []byte("fallback transcript text"), 0o644))

	fb := NewFileFallbackSource(dir)
	tr, err := fb.Transcript(context.Background(), "acme", 2024, 1)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, "fallback transcript text", tr.Text)
}

func TestFileFallbackSourceMissing(t *testing.T) {
	fb := NewFileFallbackSource(t.TempDir())
	tr, err := fb.Transcript(context.Background(), "ACME", 2024, 1)
	require.NoError(t, err)
	assert.Nil(t, tr)
}
