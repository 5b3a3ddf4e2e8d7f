package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/user/news-crawler/internal/repository"
)

// maxBodyBytes caps the size of a page we will read.
const maxBodyBytes = 10 << 20

// defaultHeaders mimic a regular browser request.
var defaultHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "vi-VN,vi;q=0.9,en-US;q=0.8,en;q=0.7",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
}

// Fetcher performs a single blocking GET per page and classifies the outcome
// into the repository fetch errors.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher returns a Fetcher with its own client and request timeout.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	return NewFetcherWithClient(&http.Client{Timeout: timeout}, userAgent)
}

func NewFetcherWithClient(client *http.Client, userAgent string) *Fetcher {
	return &Fetcher{client: client, userAgent: userAgent}
}

// Client exposes the underlying HTTP client, e.g. for robots.txt retrieval.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch returns the page body decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", repository.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return "", &repository.StatusError{URL: url, Code: resp.StatusCode}
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("%w: decode body: %v", repository.ErrNetwork, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}
	return string(body), nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		return ctxErr
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", repository.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", repository.ErrNetwork, err)
}
