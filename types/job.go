package types

import (
	"fmt"
	"time"
)

// Job statuses. A job always resolves to done or error; item-level failures
// inside a batch never flip the job to error on their own.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobError   = "error"
)

// JobProgress is an optional items-done counter a caller can poll.
type JobProgress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// JobRecord is the stored state of one ingestion job.
type JobRecord struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"`
	Progress  *JobProgress `json:"progress,omitempty"`
	Result    *BatchResult `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// DocumentSummary describes one ingested document in a job result.
type DocumentSummary struct {
	DocID       string   `json:"doc_id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Entities    []string `json:"entities"`
	PublishedAt string   `json:"published_at,omitempty"`
}

// BatchCounters tracks ingestion outcomes across one batch. Other components
// use these counts to judge ingestion health.
type BatchCounters struct {
	FeedItems int `json:"feed_items"`
	FetchedOK int `json:"fetched_ok"`
	Blocked   int `json:"blocked"`
	Short     int `json:"short"`
	Dup       int `json:"dup"`
	Failed    int `json:"failed"`
	Saved     int `json:"saved"`
}

// Summary renders the counters as the one-line batch diagnostic.
func (c BatchCounters) Summary() string {
	return fmt.Sprintf("feed_items=%d fetched_ok=%d blocked=%d short=%d dup=%d saved=%d",
		c.FeedItems, c.FetchedOK, c.Blocked, c.Short, c.Dup, c.Saved)
}

// BatchResult is the outcome of ingesting one batch of items.
type BatchResult struct {
	Ingested []DocumentSummary `json:"ingested"`
	Counters BatchCounters     `json:"counters"`
	Diag     string            `json:"diag"`
	Attempts []FetchAttempt    `json:"attempts,omitempty"`
}
