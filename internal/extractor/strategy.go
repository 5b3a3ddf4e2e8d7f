package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/news-crawler/internal/entity"
	"github.com/user/news-crawler/internal/repository"
)

// Strategy turns fetched HTML into article links and article drafts. The
// selector-driven StaticStrategy is the only variant; other page types (for
// example script-rendered sites) plug in by implementing this interface.
type Strategy interface {
	ExtractArticleLinks(html, baseURL string) ([]string, error)
	ExtractArticle(html, pageURL string) (*entity.Article, error)
}

// NewStrategy selects the strategy for the domain's crawler type.
func NewStrategy(cfg *entity.DomainConfig) (Strategy, error) {
	switch cfg.Type() {
	case entity.CrawlerTypeStatic:
		return &StaticStrategy{
			linkSelector:    cfg.ListPage.Selectors.ArticleLinks,
			selectors:       cfg.DetailPage.Selectors,
			removeSelectors: cfg.DetailPage.RemoveElements,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnsupportedCrawlerType, cfg.CrawlerType)
	}
}

// StaticStrategy extracts from server-rendered HTML with CSS selectors.
type StaticStrategy struct {
	linkSelector    string
	selectors       entity.DetailSelectors
	removeSelectors []string
}

func (s *StaticStrategy) ExtractArticleLinks(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse list page: %w", err)
	}
	return ExtractLinks(doc, baseURL, s.linkSelector)
}

func (s *StaticStrategy) ExtractArticle(html, pageURL string) (*entity.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", repository.ErrExtraction, pageURL, err)
	}
	return ExtractFields(doc, s.selectors, s.removeSelectors)
}
