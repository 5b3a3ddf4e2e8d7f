package entity

import "time"

// Values of CrawlStatus.CurrentStatus.
const (
	StatusIngested = "ingested"
	StatusKnown    = "known"
	StatusFailed   = "failed"
	StatusNotFound = "not_found"
)

// CrawlStatus describes what the crawler knows about a single URL.
type CrawlStatus struct {
	URL                  string     `json:"url"`
	CurrentStatus        string     `json:"status"`
	Marker               string     `json:"marker,omitempty"`
	LastAttemptTimestamp *time.Time `json:"last_attempt_timestamp,omitempty"`
	FailureReason        string     `json:"failure_reason,omitempty"`
	FailureCount         int        `json:"failure_count,omitempty"`
}
