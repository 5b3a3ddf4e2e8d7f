package response

import "time"

// CrawlStatusResponse is a DTO for crawl status, mirroring entity.CrawlStatus.
type CrawlStatusResponse struct {
	URL                  string     `json:"url"`
	CurrentStatus        string     `json:"current_status"` // "ingested", "known", "failed", "not_found"
	Marker               string     `json:"marker,omitempty"`
	LastAttemptTimestamp *time.Time `json:"last_attempt_timestamp,omitempty"`
	FailureReason        string     `json:"failure_reason,omitempty"`
	FailureCount         int        `json:"failure_count,omitempty"`
}

type HealthResponse struct {
	Status string            `json:"status"` // "ok" or "degraded"
	Checks map[string]string `json:"checks,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
