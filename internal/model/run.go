package model

import "time"

// RunRecord is a crawl run as stored in the history database.
// It pairs the crawl result with metadata about when and how it ran.
type RunRecord struct {
	// ID is the database row identifier.
	ID int64 `json:"id"`

	// SeedURL is the normalized seed the crawl started from.
	SeedURL string `json:"seed_url"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl terminated (drain or budget).
	FinishedAt time.Time `json:"finished_at"`

	// PagesFetched is the number of successful fetches in this run.
	PagesFetched int `json:"pages_fetched"`

	// PagesFailed is the number of failed fetches in this run.
	PagesFailed int `json:"pages_failed"`

	// Result holds the full URL list and header map when loaded with
	// GetRun; ListRuns leaves it nil to keep listings cheap.
	Result *CrawlResult `json:"result,omitempty"`
}

// Duration returns how long the run took.
func (r *RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
