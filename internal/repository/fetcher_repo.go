package repository

import "context"

// PageFetcher retrieves the HTML of a page in a single blocking request.
// Implementations must surface outcomes through the errors in this package.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
