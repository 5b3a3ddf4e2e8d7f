package repository

import (
	"context"

	"github.com/user/news-crawler/internal/entity"
)

// ArticleRepository persists ingested articles.
type ArticleRepository interface {
	// Create stores a new article and returns its identifier. A conflicting
	// source URL yields ErrDuplicateArticle.
	Create(ctx context.Context, article *entity.Article) (string, error)
	// ExistsByURL reports whether an article with the source URL is stored.
	ExistsByURL(ctx context.Context, sourceURL string) (bool, error)
	// CountAll returns the number of stored articles.
	CountAll(ctx context.Context) (int64, error)
}
