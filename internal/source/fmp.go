package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/clarity-labs/claim-auditor/internal/resilience"
)

// FMPOptions configures FMPSource. The provider name is internal only; it
// never surfaces in user-facing output beyond configuration keys (spec §4.6
// names it "financial-data provider" for grounding purposes only).
type FMPOptions struct {
	APIKey     string
	BaseURL    string
	CacheDir   string
	Timeout    time.Duration
	RetryCfg   resilience.RetryConfig
	CircuitCfg resilience.CircuitBreakerConfig
	RateLimit  rate.Limit
	RateBurst  int
}

// FMPSource is an HTTP Client implementation for a financial-data provider
// shaped like spec §6's "Upstream financial-data source".
type FMPSource struct {
	opts     FMPOptions
	client   *http.Client
	cache    *diskCache
	limiter  *rate.Limiter
	breakers *resilience.ServiceBreakers
}

// NewFMPSource constructs an FMPSource with sensible defaults applied to any
// unset FMPOptions field.
func NewFMPSource(opts FMPOptions) *FMPSource {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 10
	}
	if opts.RetryCfg.MaxAttempts <= 0 {
		opts.RetryCfg = resilience.DefaultRetryConfig()
	}

	breakerCfg := opts.CircuitCfg
	if breakerCfg.FailureThreshold <= 0 {
		breakerCfg = resilience.DefaultCircuitBreakerConfig()
	}
	breakerCfg.ShouldTrip = resilience.IsTransient

	return &FMPSource{
		opts:     opts,
		client:   &http.Client{Timeout: opts.Timeout},
		cache:    newDiskCache(opts.CacheDir),
		limiter:  rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		breakers: resilience.NewServiceBreakers(breakerCfg),
	}
}

var _ Client = (*FMPSource)(nil)

// Profile returns company identity, or nil if the ticker is unknown
// upstream (a 4xx response), per spec §4.6/§7 "Permanent external failure".
func (s *FMPSource) Profile(ctx context.Context, ticker string) (*Profile, error) {
	ticker = strings.ToUpper(ticker)
	endpoint := "/profile/" + ticker

	body, err := s.get(ctx, "profile", endpoint, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "source: fetch profile for %s", ticker)
	}

	var records []struct {
		CompanyName string `json:"companyName"`
		Sector      string `json:"sector"`
	}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, eris.Wrapf(err, "source: parse profile for %s", ticker)
	}
	if len(records) == 0 {
		return nil, nil
	}

	return &Profile{Name: records[0].CompanyName, Sector: records[0].Sector}, nil
}

// Transcript returns the earnings-call transcript for one fiscal quarter,
// or nil if the provider has none.
func (s *FMPSource) Transcript(ctx context.Context, ticker string, year, quarter int) (*TranscriptRecord, error) {
	ticker = strings.ToUpper(ticker)
	endpoint := "/earning_call_transcript/" + ticker
	params := map[string]string{
		"year":    strconv.Itoa(year),
		"quarter": strconv.Itoa(quarter),
	}

	body, err := s.get(ctx, "transcript", endpoint, params)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "source: fetch transcript for %s %dQ%d", ticker, year, quarter)
	}

	var records []struct {
		Date    string `json:"date"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, eris.Wrapf(err, "source: parse transcript for %s", ticker)
	}
	if len(records) == 0 {
		return nil, nil
	}

	return &TranscriptRecord{Date: records[0].Date, Text: records[0].Content}, nil
}

// Statements returns up to limit most-recent quarterly statement records,
// mapping provider field names to the canonical metric keys
// internal/metricregistry resolves against.
func (s *FMPSource) Statements(ctx context.Context, ticker string, kind StatementKind, limit int) ([]StatementRecord, error) {
	ticker = strings.ToUpper(ticker)
	endpoint, fieldMap, ok := statementEndpoint(kind)
	if !ok {
		return nil, eris.Errorf("source: unknown statement kind %q", kind)
	}

	params := map[string]string{
		"period": "quarter",
		"limit":  strconv.Itoa(limit),
	}

	body, err := s.get(ctx, "statements:"+string(kind), endpoint+"/"+ticker, params)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "source: fetch %s statements for %s", kind, ticker)
	}

	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrapf(err, "source: parse %s statements for %s", kind, ticker)
	}

	records := make([]StatementRecord, 0, len(raw))
	for _, row := range raw {
		date, _ := row["date"].(string)
		year, quarter, ok := parseFiscalPeriod(date, row["period"])
		if !ok {
			zap.L().Warn("source: skipping statement row with unparseable period",
				zap.String("ticker", ticker), zap.String("date", date))
			continue
		}

		fields := make(map[string]float64, len(fieldMap))
		for providerKey, canonical := range fieldMap {
			if v, ok := row[providerKey].(float64); ok {
				fields[canonical] = v
			}
		}

		records = append(records, StatementRecord{Date: date, Year: year, Quarter: quarter, Fields: fields})
	}

	return records, nil
}

// statementEndpoint returns the provider endpoint path and provider-field to
// canonical-metric mapping for a statement kind.
func statementEndpoint(kind StatementKind) (endpoint string, fieldMap map[string]string, ok bool) {
	switch kind {
	case StatementIncome:
		return "/income-statement", map[string]string{
			"revenue":                                 "revenue",
			"costOfRevenue":                            "cost_of_revenue",
			"grossProfit":                              "gross_profit",
			"operatingIncome":                          "operating_income",
			"operatingExpenses":                        "operating_expenses",
			"netIncome":                                "net_income",
			"eps":                                      "eps",
			"epsdiluted":                                "eps_diluted",
			"ebitda":                                   "ebitda",
			"researchAndDevelopmentExpenses":           "research_and_development",
			"sellingGeneralAndAdministrativeExpenses":  "selling_general_admin",
			"interestExpense":                          "interest_expense",
			"incomeTaxExpense":                         "income_tax_expense",
		}, true
	case StatementCashFlow:
		return "/cash-flow-statement", map[string]string{
			"operatingCashFlow":  "operating_cash_flow",
			"capitalExpenditure": "capital_expenditure",
			"freeCashFlow":       "free_cash_flow",
		}, true
	case StatementBalanceSheet:
		return "/balance-sheet-statement", map[string]string{
			"totalAssets":                "total_assets",
			"totalLiabilities":           "total_liabilities",
			"totalDebt":                  "total_debt",
			"cashAndCashEquivalents":     "cash_and_equivalents",
			"totalStockholdersEquity":    "shareholders_equity",
		}, true
	default:
		return "", nil, false
	}
}

// parseFiscalPeriod derives (year, quarter) from a provider date and an
// optional period label matching Q[1-4] (spec §6).
func parseFiscalPeriod(date string, periodField any) (int, int, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, 0, false
	}
	year := t.Year()

	period, _ := periodField.(string)
	period = strings.ToUpper(strings.TrimSpace(period))
	if len(period) == 2 && period[0] == 'Q' {
		q, err := strconv.Atoi(string(period[1]))
		if err == nil && q >= 1 && q <= 4 {
			return year, q, true
		}
	}

	return year, (int(t.Month())-1)/3 + 1, true
}

// notFoundError marks a permanent 4xx failure as a nil-result condition
// rather than a propagating error (spec §4.6, §7 "Permanent external failure").
type notFoundError struct{ status int }

func (e *notFoundError) Error() string { return fmt.Sprintf("source: not found (status %d)", e.status) }

func isNotFound(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

// get performs a cached, rate-limited, circuit-breaker-guarded, retried GET
// against endpoint with params and the provider API key, returning the raw
// response body. breakerKey groups related endpoints (e.g. all income
// statement calls) under one circuit so a flaky provider trips once rather
// than per ticker.
func (s *FMPSource) get(ctx context.Context, breakerKey, endpoint string, params map[string]string) ([]byte, error) {
	if cached, hit := s.cache.Get(endpoint, params); hit {
		return cached, nil
	}

	reqURL, err := s.buildURL(endpoint, params)
	if err != nil {
		return nil, err
	}

	breaker := s.breakers.Get(breakerKey)
	body, err := resilience.ExecuteVal(ctx, breaker, func(ctx context.Context) ([]byte, error) {
		return resilience.DoVal(ctx, s.opts.RetryCfg, func(ctx context.Context) ([]byte, error) {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "source: rate limiter wait")
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, eris.Wrap(err, "source: build request")
			}

			resp, err := s.client.Do(req)
			if err != nil {
				return nil, resilience.NewTransientError(err, 0)
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}

			switch {
			case resp.StatusCode == http.StatusOK:
				return data, nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return nil, resilience.NewTransientError(eris.Errorf("source: http %d", resp.StatusCode), resp.StatusCode)
			default:
				return nil, &notFoundError{status: resp.StatusCode}
			}
		})
	})
	if err != nil {
		if isNotFound(err) {
			return nil, err
		}
		if eris.Is(err, resilience.ErrCircuitOpen) {
			return nil, eris.Wrapf(err, "source: circuit open for %s", breakerKey)
		}
		return nil, eris.Wrapf(err, "source: GET %s", endpoint)
	}

	if err := s.cache.Put(endpoint, params, body); err != nil {
		zap.L().Warn("source: failed to write cache entry", zap.String("endpoint", endpoint), zap.Error(err))
	}

	return body, nil
}

func (s *FMPSource) buildURL(endpoint string, params map[string]string) (string, error) {
	u, err := url.Parse(s.opts.BaseURL + endpoint)
	if err != nil {
		return "", eris.Wrap(err, "source: parse base url")
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("apikey", s.opts.APIKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
