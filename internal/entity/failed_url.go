package entity

import "time"

// FailedURL mirrors the `failed_urls` PostgreSQL table schema.
type FailedURL struct {
	ID                   int64
	URL                  string
	Domain               string
	Outcome              FetchOutcome
	FailureReason        string
	HTTPStatusCode       int
	Attempts             int
	FailureCount         int
	LastAttemptTimestamp time.Time
}
