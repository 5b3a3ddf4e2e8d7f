package entity

import "time"

// FetchOutcome is the result class of a single fetch attempt.
type FetchOutcome string

const (
	OutcomeSuccess   FetchOutcome = "success"
	OutcomeBlocked   FetchOutcome = "blocked"
	OutcomeNotFound  FetchOutcome = "not_found"
	OutcomeForbidden FetchOutcome = "forbidden"
	OutcomeTimeout   FetchOutcome = "timeout"
	OutcomeHTTPError FetchOutcome = "http_error"
	OutcomeNetwork   FetchOutcome = "network_error"
)

// FetchAttempt records one try at fetching a URL. It is never persisted.
type FetchAttempt struct {
	URL     string
	Attempt int
	Outcome FetchOutcome
	Elapsed time.Duration
}
