package repository

import (
	"context"
	"errors"
	"fmt"
)

// Fetch outcomes. Blocked, NotFound and Forbidden are terminal; the rest are
// retried up to the configured ceiling.
var (
	ErrBlocked    = errors.New("blocked by robots policy")
	ErrNotFound   = errors.New("page not found")
	ErrForbidden  = errors.New("access forbidden")
	ErrTimeout    = errors.New("request timed out")
	ErrHTTPStatus = errors.New("unexpected http status")
	ErrNetwork    = errors.New("network error")
)

var (
	ErrExtraction             = errors.New("extraction failed")
	ErrValidation             = errors.New("article validation failed")
	ErrDuplicateArticle       = errors.New("article already stored")
	ErrUnsupportedCrawlerType = errors.New("unsupported crawler type")
)

// StatusError is returned by fetchers for non-2xx responses. It unwraps to
// ErrNotFound, ErrForbidden or ErrHTTPStatus depending on the code.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received status code %d for %s", e.Code, e.URL)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case 404:
		return ErrNotFound
	case 403:
		return ErrForbidden
	default:
		return ErrHTTPStatus
	}
}

// IsTransient reports whether a fetch error is worth retrying.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrBlocked), errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		return false
	case errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}
