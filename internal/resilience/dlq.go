package resilience

import "time"

// Subject identifies the unit of pipeline work a DLQEntry failed on: a
// ticker/year/quarter for Ingest and Extract, or a claim ID for Verify.
// Analyze operates on a whole company and has no natural sub-unit, so it
// leaves Ticker set and the rest zero.
type Subject struct {
	Ticker  string `json:"ticker"`
	Year    int    `json:"year,omitempty"`
	Quarter int    `json:"quarter,omitempty"`
	ClaimID string `json:"claim_id,omitempty"`
}

// DLQEntry represents a failed pipeline-stage run on one Subject that can be
// retried later.
type DLQEntry struct {
	ID           string    `json:"id"`
	Subject      Subject   `json:"subject"`
	Stage        string    `json:"stage"` // "ingest", "extract", "verify", or "analyze"
	Error        string    `json:"error"`
	ErrorType    string    `json:"error_type"` // "transient" or "permanent"
	RetryCount   int       `json:"retry_count"`
	MaxRetries   int       `json:"max_retries"`
	NextRetryAt  time.Time `json:"next_retry_at"`
	CreatedAt    time.Time `json:"created_at"`
	LastFailedAt time.Time `json:"last_failed_at"`
}

// DLQFilter specifies criteria for querying the dead letter queue.
type DLQFilter struct {
	Stage     string `json:"stage,omitempty"`
	ErrorType string `json:"error_type,omitempty"` // "transient", "permanent", or "" for all
	Limit     int    `json:"limit,omitempty"`
}

// CanRetry returns true if this entry hasn't exceeded its max retry count.
func (e *DLQEntry) CanRetry() bool {
	return e.RetryCount < e.MaxRetries
}

// ClassifyError categorizes an error as "transient" or "permanent".
func ClassifyError(err error) string {
	if IsTransient(err) {
		return "transient"
	}
	return "permanent"
}
