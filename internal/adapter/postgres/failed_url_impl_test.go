package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/news-crawler/internal/entity"
)

func TestFailedURLRepo_SaveOrUpdate(t *testing.T) {
	mock := newMock(t)
	repo := NewFailedURLRepo(mock)
	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO failed_urls").
		WithArgs("https://example.com/a", "example.com", "not_found", "http status 404", 404, 1, at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.SaveOrUpdate(context.Background(), &entity.FailedURL{
		URL:                  "https://example.com/a",
		Domain:               "example.com",
		Outcome:              entity.OutcomeNotFound,
		FailureReason:        "http status 404",
		HTTPStatusCode:       404,
		Attempts:             1,
		LastAttemptTimestamp: at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailedURLRepo_FindByURL(t *testing.T) {
	mock := newMock(t)
	repo := NewFailedURLRepo(mock)
	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	columns := []string{"id", "url", "domain", "outcome", "failure_reason", "http_status_code", "attempts", "failure_count", "last_attempt_timestamp"}
	mock.ExpectQuery("SELECT (.+) FROM failed_urls").
		WithArgs("https://example.com/a").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(7), "https://example.com/a", "example.com", "timeout", "deadline exceeded", 0, 3, 2, at))
	mock.ExpectQuery("SELECT (.+) FROM failed_urls").
		WithArgs("https://example.com/missing").
		WillReturnRows(pgxmock.NewRows(columns))

	fu, err := repo.FindByURL(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	require.NotNil(t, fu)
	assert.Equal(t, entity.OutcomeTimeout, fu.Outcome)
	assert.Equal(t, 2, fu.FailureCount)

	fu, err = repo.FindByURL(context.Background(), "https://example.com/missing")
	require.NoError(t, err)
	assert.Nil(t, fu)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailedURLRepo_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewFailedURLRepo(mock)

	mock.ExpectExec("DELETE FROM failed_urls").
		WithArgs("https://example.com/a").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), "https://example.com/a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS news").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS failed_urls").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, EnsureSchema(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
