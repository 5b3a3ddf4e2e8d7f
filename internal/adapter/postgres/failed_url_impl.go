package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/user/news-crawler/internal/entity"
)

// FailedURLRepoImpl provides a concrete implementation for the FailedURLRepository interface using PostgreSQL.
type FailedURLRepoImpl struct {
	db DBTX
}

// NewFailedURLRepo creates a new instance of FailedURLRepoImpl.
func NewFailedURLRepo(db DBTX) *FailedURLRepoImpl {
	return &FailedURLRepoImpl{db: db}
}

// SaveOrUpdate creates or updates a record for a failed URL.
// It increments the failure_count on conflict.
func (r *FailedURLRepoImpl) SaveOrUpdate(ctx context.Context, failedURL *entity.FailedURL) error {
	query := `
		INSERT INTO failed_urls (url, domain, outcome, failure_reason, http_status_code, attempts, failure_count, last_attempt_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7)
		ON CONFLICT (url) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			failure_reason = EXCLUDED.failure_reason,
			http_status_code = EXCLUDED.http_status_code,
			attempts = EXCLUDED.attempts,
			failure_count = failed_urls.failure_count + 1,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp;
	`
	_, err := r.db.Exec(ctx, query,
		failedURL.URL,
		failedURL.Domain,
		string(failedURL.Outcome),
		failedURL.FailureReason,
		failedURL.HTTPStatusCode,
		failedURL.Attempts,
		failedURL.LastAttemptTimestamp,
	)
	if err != nil {
		return fmt.Errorf("upsert failed url: %w", err)
	}
	return nil
}

// FindByURL returns nil without error when the URL has no failure record.
func (r *FailedURLRepoImpl) FindByURL(ctx context.Context, url string) (*entity.FailedURL, error) {
	query := `
		SELECT id, url, domain, outcome, failure_reason, http_status_code, attempts, failure_count, last_attempt_timestamp
		FROM failed_urls
		WHERE url = $1;
	`
	var (
		fu      entity.FailedURL
		outcome string
	)
	err := r.db.QueryRow(ctx, query, url).Scan(
		&fu.ID,
		&fu.URL,
		&fu.Domain,
		&outcome,
		&fu.FailureReason,
		&fu.HTTPStatusCode,
		&fu.Attempts,
		&fu.FailureCount,
		&fu.LastAttemptTimestamp,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find failed url: %w", err)
	}
	fu.Outcome = entity.FetchOutcome(outcome)
	return &fu, nil
}

// Delete removes a failed URL record, typically after a successful crawl.
func (r *FailedURLRepoImpl) Delete(ctx context.Context, url string) error {
	query := `DELETE FROM failed_urls WHERE url = $1;`
	if _, err := r.db.Exec(ctx, query, url); err != nil {
		return fmt.Errorf("delete failed url: %w", err)
	}
	return nil
}
