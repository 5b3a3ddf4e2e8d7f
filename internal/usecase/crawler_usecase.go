package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/news-crawler/internal/dedup"
	"github.com/user/news-crawler/internal/entity"
	"github.com/user/news-crawler/internal/extractor"
	"github.com/user/news-crawler/internal/repository"
	"github.com/user/news-crawler/pkg/metrics"
	"github.com/user/news-crawler/pkg/ratelimit"
	"github.com/user/news-crawler/pkg/urlnorm"
	"github.com/user/news-crawler/pkg/utils"
)

// Article outcomes as reported in stats and metrics.
const (
	outcomeNew       = "new"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)

// PolicyChecker answers robots.txt questions for a single domain.
type PolicyChecker interface {
	CanFetch(rawURL, userAgent string) bool
}

// Throttler blocks until the next request for the domain is allowed.
type Throttler interface {
	WaitIfNeeded(ctx context.Context) error
}

// Sleeper waits between retry attempts. It must honour ctx cancellation.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ContentSanitizer cleans extracted article HTML.
type ContentSanitizer interface {
	Clean(rawHTML string) string
}

// KnownURLCache is the dedup cache as seen by the crawler.
type KnownURLCache interface {
	IsKnown(ctx context.Context, url string) bool
	MarkKnown(ctx context.Context, url, marker string) error
}

// CrawlSettings are the per-run knobs shared by all domains.
type CrawlSettings struct {
	UserAgent   string
	MaxRetries  int
	RetryDelay  time.Duration
	MaxArticles int
}

// CrawlerDeps wires one domain crawler. FailedURLs and Metrics are optional.
type CrawlerDeps struct {
	Domain     *entity.DomainConfig
	Settings   CrawlSettings
	Fetcher    repository.PageFetcher
	Robots     PolicyChecker
	Throttle   Throttler
	Sleeper    Sleeper
	Strategy   extractor.Strategy
	Sanitizer  ContentSanitizer
	Cache      KnownURLCache
	Articles   repository.ArticleRepository
	FailedURLs repository.FailedURLRepository
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Crawler defines the interface for crawling one configured domain.
type Crawler interface {
	// Crawl walks every category of the domain once. On cancellation it
	// returns the stats gathered so far together with the context error.
	Crawl(ctx context.Context) (entity.CrawlStats, error)
}

type crawlerUseCase struct {
	CrawlerDeps
}

// NewCrawlerUseCase creates a new instance of the crawler use case.
func NewCrawlerUseCase(deps CrawlerDeps) (Crawler, error) {
	switch {
	case deps.Domain == nil:
		return nil, errors.New("crawler: domain config is required")
	case deps.Fetcher == nil, deps.Robots == nil, deps.Throttle == nil, deps.Strategy == nil:
		return nil, errors.New("crawler: fetcher, robots, throttle and strategy are required")
	case deps.Sanitizer == nil, deps.Cache == nil, deps.Articles == nil:
		return nil, errors.New("crawler: sanitizer, cache and article store are required")
	}
	if deps.Settings.MaxRetries <= 0 {
		deps.Settings.MaxRetries = 1
	}
	if deps.Sleeper == nil {
		deps.Sleeper = ratelimit.SystemClock
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Logger = deps.Logger.With(zap.String("domain", deps.Domain.Domain))
	return &crawlerUseCase{CrawlerDeps: deps}, nil
}

func (uc *crawlerUseCase) Crawl(ctx context.Context) (entity.CrawlStats, error) {
	var stats entity.CrawlStats
	start := time.Now()
	uc.Logger.Info("Starting crawl", zap.String("name", uc.Domain.Name))

	for _, slug := range uc.Domain.Categories() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		categoryStats, err := uc.crawlCategory(ctx, slug)
		stats.Add(categoryStats)
		if ctxErr := ctx.Err(); ctxErr != nil {
			uc.Logger.Warn("Crawl cancelled", zap.Any("stats", stats))
			return stats, ctxErr
		}
		if err != nil {
			uc.Logger.Error("Category crawl failed", zap.String("category", slug), zap.Error(err))
		}
	}

	uc.Logger.Info("Crawl finished",
		zap.Int("new", stats.New),
		zap.Int("duplicate", stats.Duplicate),
		zap.Int("failed", stats.Failed),
		zap.Int("total", stats.Total),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stats, nil
}

func (uc *crawlerUseCase) crawlCategory(ctx context.Context, slug string) (entity.CrawlStats, error) {
	var stats entity.CrawlStats
	listURL := uc.Domain.ListURL(slug)
	categoryCode := uc.Domain.CategoryMapping[slug]

	page, err := uc.fetch(ctx, listURL)
	if err != nil {
		return stats, fmt.Errorf("fetch list page %s: %w", listURL, err)
	}
	links, err := uc.Strategy.ExtractArticleLinks(page, listURL)
	if err != nil {
		return stats, fmt.Errorf("extract links from %s: %w", listURL, err)
	}
	links = uc.canonicalLinks(links)
	if limit := uc.Settings.MaxArticles; limit > 0 && len(links) > limit {
		links = links[:limit]
	}
	uc.Logger.Info("Crawling category",
		zap.String("category", slug),
		zap.String("category_code", categoryCode),
		zap.Int("links", len(links)),
	)

	for _, link := range links {
		outcome, err := uc.processArticle(ctx, link, categoryCode)
		if err != nil {
			return stats, err
		}
		stats.Total++
		switch outcome {
		case outcomeNew:
			stats.New++
		case outcomeDuplicate:
			stats.Duplicate++
		default:
			stats.Failed++
		}
		if uc.Metrics != nil {
			uc.Metrics.IncArticles(uc.Domain.Domain, outcome)
		}
	}
	return stats, nil
}

// canonicalLinks normalizes links, drops non-article URLs when the domain
// asks for it and removes duplicates keeping the first occurrence.
func (uc *crawlerUseCase) canonicalLinks(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		if uc.Domain.ListPage.FilterArticleURLs && !urlnorm.IsLikelyArticleURL(link, uc.Domain.Domain) {
			continue
		}
		canonical := urlnorm.Normalize(link)
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

// processArticle returns the article outcome. The error is non-nil only when
// ctx is done.
func (uc *crawlerUseCase) processArticle(ctx context.Context, articleURL, categoryCode string) (string, error) {
	log := uc.Logger.With(zap.String("url", articleURL))

	page, err := uc.fetch(ctx, articleURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Warn("Article fetch failed", zap.Error(err))
		return outcomeFailed, nil
	}

	article, err := uc.Strategy.ExtractArticle(page, articleURL)
	if err != nil {
		log.Warn("Article extraction failed", zap.Error(err))
		return outcomeFailed, nil
	}
	article.Content = uc.Sanitizer.Clean(article.Content)
	article.SourceURL = articleURL
	article.SourceName = uc.Domain.Name
	article.CategoryCode = categoryCode
	article.TruncateTitle()

	if err := article.Validate(); err != nil {
		log.Warn("Article rejected", zap.Error(fmt.Errorf("%w: %w", repository.ErrValidation, err)))
		return outcomeFailed, nil
	}

	if uc.Cache.IsKnown(ctx, articleURL) {
		log.Debug("Article already ingested")
		return outcomeDuplicate, nil
	}
	exists, err := uc.Articles.ExistsByURL(ctx, articleURL)
	if err != nil {
		log.Warn("Store lookup failed, continuing with insert", zap.Error(err))
	} else if exists {
		uc.markKnown(ctx, articleURL, "")
		return outcomeDuplicate, nil
	}

	id, err := uc.Articles.Create(ctx, article)
	if errors.Is(err, repository.ErrDuplicateArticle) {
		uc.markKnown(ctx, articleURL, "")
		return outcomeDuplicate, nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Error("Failed to store article", zap.Error(err))
		return outcomeFailed, nil
	}

	uc.markKnown(ctx, articleURL, id)
	if uc.FailedURLs != nil {
		if err := uc.FailedURLs.Delete(ctx, articleURL); err != nil {
			// This is not a critical error, just log it.
			log.Warn("Failed to delete URL from failed_urls table after successful crawl", zap.Error(err))
		}
	}
	log.Info("Stored article", zap.String("id", id), zap.String("title", article.Title))
	return outcomeNew, nil
}

func (uc *crawlerUseCase) markKnown(ctx context.Context, url, marker string) {
	if err := uc.Cache.MarkKnown(ctx, url, marker); err != nil && !errors.Is(err, dedup.ErrStoreDisabled) {
		uc.Logger.Warn("Failed to mark URL as known", zap.String("url", url), zap.Error(err))
	}
}

// fetch runs the fetch state machine for one URL: robots check, then up to
// MaxRetries throttled attempts with RetryDelay between them. Blocked,
// not-found and forbidden outcomes end it immediately.
func (uc *crawlerUseCase) fetch(ctx context.Context, pageURL string) (string, error) {
	if !uc.Robots.CanFetch(pageURL, uc.Settings.UserAgent) {
		err := fmt.Errorf("%w: %s", repository.ErrBlocked, pageURL)
		uc.observeFetch(entity.OutcomeBlocked, 0)
		uc.handleFetchFailure(ctx, pageURL, err, 0)
		return "", err
	}

	var lastErr error
	attempts := 0
	for attempts < uc.Settings.MaxRetries {
		if attempts > 0 {
			if err := uc.Sleeper.Sleep(ctx, uc.Settings.RetryDelay); err != nil {
				return "", err
			}
		}
		if err := uc.Throttle.WaitIfNeeded(ctx); err != nil {
			return "", err
		}
		attempts++

		start := time.Now()
		body, err := uc.Fetcher.Fetch(ctx, pageURL)
		outcome := fetchOutcome(err)
		uc.observeFetch(outcome, time.Since(start))
		if err == nil {
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		lastErr = err
		if !repository.IsTransient(err) {
			break
		}
		uc.Logger.Debug("Fetch attempt failed",
			zap.String("url", pageURL),
			zap.Int("attempt", attempts),
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
	}

	uc.handleFetchFailure(ctx, pageURL, lastErr, attempts)
	return "", lastErr
}

func (uc *crawlerUseCase) observeFetch(outcome entity.FetchOutcome, elapsed time.Duration) {
	if uc.Metrics != nil {
		uc.Metrics.ObserveFetch(uc.Domain.Domain, string(outcome), elapsed.Seconds())
	}
}

// handleFetchFailure records a terminal fetch failure in the failed-URL ledger.
func (uc *crawlerUseCase) handleFetchFailure(ctx context.Context, pageURL string, fetchErr error, attempts int) {
	if uc.FailedURLs == nil {
		return
	}
	var httpStatusCode int
	var statusErr *repository.StatusError
	if errors.As(fetchErr, &statusErr) {
		httpStatusCode = statusErr.Code
	}

	failedURL := &entity.FailedURL{
		URL:                  pageURL,
		Domain:               utils.Hostname(pageURL),
		Outcome:              fetchOutcome(fetchErr),
		FailureReason:        fetchErr.Error(),
		HTTPStatusCode:       httpStatusCode,
		Attempts:             attempts,
		LastAttemptTimestamp: time.Now().UTC(),
	}
	if err := uc.FailedURLs.SaveOrUpdate(ctx, failedURL); err != nil {
		uc.Logger.Warn("Failed to save failed URL record", zap.String("url", pageURL), zap.Error(err))
	}
}

func fetchOutcome(err error) entity.FetchOutcome {
	switch {
	case err == nil:
		return entity.OutcomeSuccess
	case errors.Is(err, repository.ErrBlocked):
		return entity.OutcomeBlocked
	case errors.Is(err, repository.ErrNotFound):
		return entity.OutcomeNotFound
	case errors.Is(err, repository.ErrForbidden):
		return entity.OutcomeForbidden
	case errors.Is(err, repository.ErrTimeout):
		return entity.OutcomeTimeout
	case errors.Is(err, repository.ErrHTTPStatus):
		return entity.OutcomeHTTPError
	default:
		return entity.OutcomeNetwork
	}
}
