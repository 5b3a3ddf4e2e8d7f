package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/user/news-crawler/internal/entity"
	"github.com/user/news-crawler/internal/repository"
	"github.com/user/news-crawler/pkg/urlnorm"
)

var ErrInvalidURL = errors.New("url must be absolute http(s)")

// MarkerLookup reads dedup markers.
type MarkerLookup interface {
	LookupMarker(ctx context.Context, url string) (string, bool)
}

// StatusReporter defines the interface for checking what is known about a URL.
type StatusReporter interface {
	GetStatus(ctx context.Context, url string) (*entity.CrawlStatus, error)
}

type statusUseCase struct {
	articles   repository.ArticleRepository
	markers    MarkerLookup
	failedURLs repository.FailedURLRepository
	logger     *zap.Logger
}

// NewStatusReporter creates a new StatusReporter use case. failedURLs may be nil.
func NewStatusReporter(
	articles repository.ArticleRepository,
	markers MarkerLookup,
	failedURLs repository.FailedURLRepository,
	logger *zap.Logger,
) StatusReporter {
	return &statusUseCase{
		articles:   articles,
		markers:    markers,
		failedURLs: failedURLs,
		logger:     logger,
	}
}

// GetStatus canonicalizes rawURL and reports, in order of precedence,
// ingested, known, failed or not_found.
func (uc *statusUseCase) GetStatus(ctx context.Context, rawURL string) (*entity.CrawlStatus, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	canonical := urlnorm.Normalize(rawURL)
	marker, known := uc.markers.LookupMarker(ctx, canonical)

	stored, err := uc.articles.ExistsByURL(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("check article store: %w", err)
	}
	if stored {
		return &entity.CrawlStatus{URL: canonical, CurrentStatus: entity.StatusIngested, Marker: marker}, nil
	}
	if known {
		return &entity.CrawlStatus{URL: canonical, CurrentStatus: entity.StatusKnown, Marker: marker}, nil
	}

	if uc.failedURLs != nil {
		failed, err := uc.failedURLs.FindByURL(ctx, canonical)
		if err != nil {
			// Don't fail the lookup over the ledger; report what we have.
			uc.logger.Error("Error finding failed URL", zap.String("url", canonical), zap.Error(err))
		}
		if failed != nil {
			at := failed.LastAttemptTimestamp
			return &entity.CrawlStatus{
				URL:                  canonical,
				CurrentStatus:        entity.StatusFailed,
				LastAttemptTimestamp: &at,
				FailureReason:        failed.FailureReason,
				FailureCount:         failed.FailureCount,
			}, nil
		}
	}

	return &entity.CrawlStatus{URL: canonical, CurrentStatus: entity.StatusNotFound}, nil
}
