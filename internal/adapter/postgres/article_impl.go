package postgres

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/user/news-crawler/internal/entity"
	"github.com/user/news-crawler/internal/repository"
)

const articleStatusActive = "ACTIVE"

// ArticleRepoImpl provides a concrete implementation for the ArticleRepository interface using PostgreSQL.
type ArticleRepoImpl struct {
	db DBTX
}

// NewArticleRepo creates a new instance of ArticleRepoImpl.
func NewArticleRepo(db DBTX) *ArticleRepoImpl {
	return &ArticleRepoImpl{db: db}
}

// Create inserts the article as an ACTIVE news row. A row that already
// exists for the source URL yields repository.ErrDuplicateArticle.
func (r *ArticleRepoImpl) Create(ctx context.Context, article *entity.Article) (string, error) {
	query := `
		INSERT INTO news (id, title, summary, content, published_date, tags, author, source_url, source_name, category_code, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (source_url) DO NOTHING
		RETURNING id;
	`
	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}

	var id string
	err := r.db.QueryRow(ctx, query,
		uuid.NewString(),
		article.Title,
		article.Summary,
		composeContent(article),
		article.PublishedDate,
		tags,
		article.Author,
		article.SourceURL,
		article.SourceName,
		article.CategoryCode,
		articleStatusActive,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", repository.ErrDuplicateArticle, article.SourceURL)
	}
	if err != nil {
		return "", fmt.Errorf("insert news: %w", err)
	}
	return id, nil
}

// ExistsByURL reports whether a news row exists for the source URL.
func (r *ArticleRepoImpl) ExistsByURL(ctx context.Context, sourceURL string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM news WHERE source_url = $1);`, sourceURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check news exists: %w", err)
	}
	return exists, nil
}

func (r *ArticleRepoImpl) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM news;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count news: %w", err)
	}
	return count, nil
}

// composeContent embeds the thumbnail ahead of the body and appends the
// source attribution comment.
func composeContent(article *entity.Article) string {
	content := article.Content
	if article.Thumbnail != "" {
		content = `<img src="` + html.EscapeString(article.Thumbnail) + `" alt="thumbnail" style="max-width:100%"/><br/>` + content
	}
	if article.SourceURL != "" {
		name := article.SourceName
		if name == "" {
			name = "Unknown"
		}
		content += fmt.Sprintf("\n<!-- Source: %s | URL: %s -->", name, article.SourceURL)
	}
	return content
}
