// Package robots loads a domain's robots.txt once and answers fetch-permission
// queries against it. Every failure degrades to allow-all.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// DefaultUserAgent matches any group in robots.txt.
const DefaultUserAgent = "*"

// maxRobotsBodyBytes limits the size of robots.txt responses we will read.
const maxRobotsBodyBytes = 512 * 1024

// Checker holds the robots policy of a single domain.
type Checker struct {
	domain string
	data   *robotstxt.RobotsData // nil means allow all
	logger *zap.Logger
}

// New fetches and parses https://{domain}/robots.txt. It never fails: an
// unreachable, non-2xx or unparsable file yields an allow-all checker.
func New(ctx context.Context, client *http.Client, domain string, logger *zap.Logger) *Checker {
	c := &Checker{
		domain: domain,
		logger: logger.With(zap.String("domain", domain)),
	}

	robotsURL := "https://" + domain + "/robots.txt"
	data, err := fetch(ctx, client, robotsURL)
	if err != nil {
		c.logger.Warn("could not load robots.txt, allowing all", zap.String("url", robotsURL), zap.Error(err))
		return c
	}
	c.data = data
	c.logger.Info("loaded robots.txt", zap.String("url", robotsURL))
	return c
}

// FromBytes builds a checker from an already retrieved robots.txt body.
func FromBytes(domain string, body []byte, logger *zap.Logger) *Checker {
	c := &Checker{domain: domain, logger: logger.With(zap.String("domain", domain))}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		c.logger.Warn("could not parse robots.txt, allowing all", zap.Error(err))
		return c
	}
	c.data = data
	return c
}

func fetch(ctx context.Context, client *http.Client, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return data, nil
}

// CanFetch reports whether userAgent may fetch rawURL. An empty userAgent
// means "*".
func (c *Checker) CanFetch(rawURL, userAgent string) bool {
	if c.data == nil {
		return true
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		c.logger.Warn("error checking robots.txt, allowing", zap.String("url", rawURL), zap.Error(err))
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return c.data.TestAgent(path, userAgent)
}

// CrawlDelay returns the Crawl-delay advertised for userAgent, or zero.
func (c *Checker) CrawlDelay(userAgent string) time.Duration {
	if c.data == nil {
		return 0
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	group := c.data.FindGroup(userAgent)
	if group == nil {
		return 0
	}
	return group.CrawlDelay
}
