package entity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// CrawlerTypeStatic selects selector-driven extraction over server-rendered HTML.
const CrawlerTypeStatic = "static"

// CategoryPlaceholder is substituted with the category slug in list page URL patterns.
const CategoryPlaceholder = "{category}"

// DomainConfig describes one crawl target. It is loaded once and treated as
// read-only for the duration of a run.
type DomainConfig struct {
	Domain          string            `json:"domain"`
	Name            string            `json:"name"`
	Enabled         *bool             `json:"enabled,omitempty"`
	CrawlerType     string            `json:"crawler_type,omitempty"`
	RateLimit       RateLimitConfig   `json:"rate_limit"`
	ListPage        ListPageConfig    `json:"list_page"`
	DetailPage      DetailPageConfig  `json:"detail_page"`
	CategoryMapping map[string]string `json:"category_mapping"`
	Schedule        ScheduleConfig    `json:"schedule"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `json:"requests_per_minute"`
}

type ListPageConfig struct {
	URLPattern        string        `json:"url_pattern"`
	Selectors         ListSelectors `json:"selectors"`
	FilterArticleURLs bool          `json:"filter_article_urls,omitempty"`
}

type ListSelectors struct {
	ArticleLinks string `json:"article_links"`
}

type DetailPageConfig struct {
	Selectors      DetailSelectors `json:"selectors"`
	RemoveElements []string        `json:"remove_elements,omitempty"`
}

// DetailSelectors maps article fields to CSS selectors. Title and Content are
// required; an empty optional selector means the field is not extracted.
type DetailSelectors struct {
	Title         string `json:"title"`
	Summary       string `json:"summary,omitempty"`
	Content       string `json:"content"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	Tags          string `json:"tags,omitempty"`
	Author        string `json:"author,omitempty"`
}

type ScheduleConfig struct {
	Cron        string `json:"cron,omitempty"`
	Description string `json:"description,omitempty"`
}

// IsEnabled defaults to true when the flag is absent.
func (c *DomainConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Type returns the crawler type, defaulting to static.
func (c *DomainConfig) Type() string {
	if c.CrawlerType == "" {
		return CrawlerTypeStatic
	}
	return c.CrawlerType
}

// Categories returns the configured category slugs in a stable order.
func (c *DomainConfig) Categories() []string {
	slugs := make([]string, 0, len(c.CategoryMapping))
	for slug := range c.CategoryMapping {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// ListURL builds the listing page URL for a category slug.
func (c *DomainConfig) ListURL(category string) string {
	return strings.ReplaceAll(c.ListPage.URLPattern, CategoryPlaceholder, category)
}

// Validate checks the fields the crawl pipeline cannot run without.
func (c *DomainConfig) Validate() error {
	var errs []error
	if c.Domain == "" {
		errs = append(errs, errors.New("domain is required"))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.requests_per_minute must be positive, got %d", c.RateLimit.RequestsPerMinute))
	}
	if !strings.Contains(c.ListPage.URLPattern, CategoryPlaceholder) {
		errs = append(errs, fmt.Errorf("list_page.url_pattern must contain %s", CategoryPlaceholder))
	}
	if c.ListPage.Selectors.ArticleLinks == "" {
		errs = append(errs, errors.New("list_page.selectors.article_links is required"))
	}
	if c.DetailPage.Selectors.Title == "" {
		errs = append(errs, errors.New("detail_page.selectors.title is required"))
	}
	if c.DetailPage.Selectors.Content == "" {
		errs = append(errs, errors.New("detail_page.selectors.content is required"))
	}
	if len(c.CategoryMapping) == 0 {
		errs = append(errs, errors.New("category_mapping must not be empty"))
	}
	return errors.Join(errs...)
}
