package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/news-crawler/internal/entity"
	"github.com/user/news-crawler/internal/extractor"
	"github.com/user/news-crawler/internal/repository"
	"github.com/user/news-crawler/pkg/metrics"
	"github.com/user/news-crawler/pkg/ratelimit"
)

// ErrUnknownDomain is returned when a domain filter matches no configuration.
var ErrUnknownDomain = errors.New("unknown domain")

// RobotsPolicy is a per-domain robots.txt policy.
type RobotsPolicy interface {
	PolicyChecker
	CrawlDelay(userAgent string) time.Duration
}

// RobotsLoader builds the robots policy for a domain host.
type RobotsLoader func(ctx context.Context, domain string) RobotsPolicy

// IngestDeps wires the multi-domain runner. Everything except the per-domain
// robots policy, rate limiter and strategy is shared across domains.
type IngestDeps struct {
	Domains    map[string]*entity.DomainConfig
	Settings   CrawlSettings
	Fetcher    repository.PageFetcher
	LoadRobots RobotsLoader
	Sleeper    Sleeper
	Limiter    []ratelimit.Option
	Sanitizer  ContentSanitizer
	Cache      KnownURLCache
	Articles   repository.ArticleRepository
	FailedURLs repository.FailedURLRepository
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Ingester runs crawls over the configured domains.
type Ingester interface {
	// RunOnce crawls every enabled domain, or only the one matching filter
	// (host or display name) when filter is non-empty.
	RunOnce(ctx context.Context, filter string) (map[string]entity.CrawlStats, error)
	// RunDomain crawls a single configured domain by host.
	RunDomain(ctx context.Context, domain string) (entity.CrawlStats, error)
}

type ingestUseCase struct {
	IngestDeps
}

// NewIngester creates a new instance of the ingest use case.
func NewIngester(deps IngestDeps) Ingester {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &ingestUseCase{IngestDeps: deps}
}

func (uc *ingestUseCase) RunOnce(ctx context.Context, filter string) (map[string]entity.CrawlStats, error) {
	targets, err := uc.selectDomains(filter)
	if err != nil {
		return nil, err
	}

	results := make(map[string]entity.CrawlStats, len(targets))
	var total entity.CrawlStats
	for _, cfg := range targets {
		if !cfg.IsEnabled() {
			uc.Logger.Info("Skipping disabled domain", zap.String("domain", cfg.Domain))
			continue
		}
		stats, err := uc.crawlDomain(ctx, cfg)
		results[cfg.Domain] = stats
		total.Add(stats)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return results, ctxErr
		}
		if err != nil {
			uc.Logger.Error("Domain crawl failed", zap.String("domain", cfg.Domain), zap.Error(err))
		}
	}

	fields := []zap.Field{
		zap.Int("domains", len(results)),
		zap.Int("new", total.New),
		zap.Int("duplicate", total.Duplicate),
		zap.Int("failed", total.Failed),
		zap.Int("total", total.Total),
	}
	if count, err := uc.Articles.CountAll(ctx); err != nil {
		uc.Logger.Warn("Failed to count stored articles", zap.Error(err))
	} else {
		fields = append(fields, zap.Int64("stored_articles", count))
	}
	uc.Logger.Info("Crawl run finished", fields...)
	return results, nil
}

func (uc *ingestUseCase) RunDomain(ctx context.Context, domain string) (entity.CrawlStats, error) {
	cfg, ok := uc.Domains[domain]
	if !ok {
		return entity.CrawlStats{}, fmt.Errorf("%w: %s", ErrUnknownDomain, domain)
	}
	if !cfg.IsEnabled() {
		return entity.CrawlStats{}, nil
	}
	return uc.crawlDomain(ctx, cfg)
}

// selectDomains returns the domains to crawl, sorted by host.
func (uc *ingestUseCase) selectDomains(filter string) ([]*entity.DomainConfig, error) {
	hosts := make([]string, 0, len(uc.Domains))
	for host := range uc.Domains {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	var out []*entity.DomainConfig
	for _, host := range hosts {
		cfg := uc.Domains[host]
		if filter == "" || strings.EqualFold(filter, cfg.Domain) || strings.EqualFold(filter, cfg.Name) {
			out = append(out, cfg)
		}
	}
	if filter != "" && len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, filter)
	}
	return out, nil
}

func (uc *ingestUseCase) crawlDomain(ctx context.Context, cfg *entity.DomainConfig) (entity.CrawlStats, error) {
	logger := uc.Logger.With(zap.String("domain", cfg.Domain))

	strategy, err := extractor.NewStrategy(cfg)
	if err != nil {
		logger.Warn("Skipping domain", zap.Error(err))
		return entity.CrawlStats{}, err
	}

	robots := uc.LoadRobots(ctx, cfg.Domain)
	quota := cfg.RateLimit.RequestsPerMinute
	if delay := robots.CrawlDelay(uc.Settings.UserAgent); delay > 0 {
		adjusted := EffectiveQuota(quota, delay)
		logger.Info("robots.txt crawl-delay",
			zap.Duration("crawl_delay", delay),
			zap.Int("configured_rpm", quota),
			zap.Int("effective_rpm", adjusted),
		)
		quota = adjusted
	}
	limiter, err := ratelimit.New(quota, uc.Limiter...)
	if err != nil {
		return entity.CrawlStats{}, fmt.Errorf("rate limiter for %s: %w", cfg.Domain, err)
	}

	crawler, err := NewCrawlerUseCase(CrawlerDeps{
		Domain:     cfg,
		Settings:   uc.Settings,
		Fetcher:    uc.Fetcher,
		Robots:     robots,
		Throttle:   limiter,
		Sleeper:    uc.Sleeper,
		Strategy:   strategy,
		Sanitizer:  uc.Sanitizer,
		Cache:      uc.Cache,
		Articles:   uc.Articles,
		FailedURLs: uc.FailedURLs,
		Metrics:    uc.Metrics,
		Logger:     uc.Logger,
	})
	if err != nil {
		return entity.CrawlStats{}, err
	}
	return crawler.Crawl(ctx)
}

// EffectiveQuota caps requestsPerMinute at the rate implied by crawlDelay.
// The result is never below one.
func EffectiveQuota(requestsPerMinute int, crawlDelay time.Duration) int {
	if crawlDelay <= 0 {
		return requestsPerMinute
	}
	allowed := int(time.Minute / crawlDelay)
	if allowed < 1 {
		allowed = 1
	}
	return min(requestsPerMinute, allowed)
}
