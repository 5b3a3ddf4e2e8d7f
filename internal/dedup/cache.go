// Package dedup records which article URLs were already ingested.
package dedup

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/user/news-crawler/internal/repository"
	"github.com/user/news-crawler/pkg/utils"
)

const (
	// DefaultTTL keeps markers for 90 days.
	DefaultTTL = 90 * 24 * time.Hour

	// CrawledMarker is stored when no external identifier is available.
	CrawledMarker = "crawled"

	keyPrefix = "crawler:article:"
)

// ErrStoreDisabled is returned by MarkKnown when the cache has no store.
var ErrStoreDisabled = errors.New("dedup store disabled")

// Cache is a TTL-backed set of ingested URLs. A nil store disables it: every
// URL is then unknown and marks are dropped.
type Cache struct {
	store  repository.KVStore
	ttl    time.Duration
	logger *zap.Logger
}

func New(store repository.KVStore, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if store == nil {
		logger.Warn("dedup cache is disabled")
	}
	return &Cache{store: store, ttl: ttl, logger: logger}
}

// Key returns the store key for url.
func Key(url string) string {
	return keyPrefix + utils.HashURL(url)
}

// IsKnown reports whether url was marked. Store errors count as unknown so
// that an outage leads to re-crawling instead of silently skipping content.
func (c *Cache) IsKnown(ctx context.Context, url string) bool {
	if c.store == nil {
		return false
	}
	known, err := c.store.Exists(ctx, Key(url))
	if err != nil {
		c.logger.Warn("dedup lookup failed, treating as unknown", zap.String("url", url), zap.Error(err))
		return false
	}
	return known
}

// MarkKnown records url with marker, refreshing the TTL if it already exists.
// An empty marker stores CrawledMarker.
func (c *Cache) MarkKnown(ctx context.Context, url, marker string) error {
	if c.store == nil {
		return ErrStoreDisabled
	}
	if marker == "" {
		marker = CrawledMarker
	}
	if err := c.store.Set(ctx, Key(url), marker, c.ttl); err != nil {
		return err
	}
	c.logger.Debug("marked as crawled", zap.String("url", url), zap.String("marker", marker))
	return nil
}

// LookupMarker returns the marker stored for url.
func (c *Cache) LookupMarker(ctx context.Context, url string) (string, bool) {
	if c.store == nil {
		return "", false
	}
	marker, ok, err := c.store.Get(ctx, Key(url))
	if err != nil {
		c.logger.Warn("dedup marker lookup failed", zap.String("url", url), zap.Error(err))
		return "", false
	}
	return marker, ok
}
