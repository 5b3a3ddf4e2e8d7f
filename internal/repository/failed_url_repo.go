package repository

import (
	"context"

	"github.com/user/news-crawler/internal/entity"
)

// FailedURLRepository defines the interface for managing URLs that failed to be crawled.
type FailedURLRepository interface {
	// SaveOrUpdate creates or updates a record for a failed URL.
	SaveOrUpdate(ctx context.Context, failedURL *entity.FailedURL) error
	// FindByURL returns the failure record for a URL, or nil when there is none.
	FindByURL(ctx context.Context, url string) (*entity.FailedURL, error)
	// Delete removes a failed URL record, typically after a successful crawl.
	Delete(ctx context.Context, url string) error
}
