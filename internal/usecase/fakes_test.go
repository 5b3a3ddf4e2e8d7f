package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/news-crawler/internal/entity"
	"github.com/user/news-crawler/internal/repository"
)

const (
	testDomain  = "news.example.com"
	articlePage = `<html><body><h1>Headline</h1><div class="body"><p>Story body.</p></div></body></html>`
)

func testDomainConfig(mapping map[string]string) *entity.DomainConfig {
	return &entity.DomainConfig{
		Domain:    testDomain,
		Name:      "Example News",
		RateLimit: entity.RateLimitConfig{RequestsPerMinute: 60},
		ListPage: entity.ListPageConfig{
			URLPattern: "https://" + testDomain + "/{category}",
			Selectors:  entity.ListSelectors{ArticleLinks: "a.story"},
		},
		DetailPage: entity.DetailPageConfig{
			Selectors: entity.DetailSelectors{Title: "h1", Content: "div.body"},
		},
		CategoryMapping: mapping,
	}
}

func listPage(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, href := range hrefs {
		fmt.Fprintf(&b, `<a class="story" href="%s">story</a>`, href)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func storyHrefs(n int) []string {
	hrefs := make([]string, n)
	for i := range hrefs {
		hrefs[i] = fmt.Sprintf("/business/story-%d.html", i)
	}
	return hrefs
}

// fakeFetcher serves pages from a handler and counts calls per URL.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	handler func(ctx context.Context, url string, call int) (string, error)
}

func newFakeFetcher(handler func(ctx context.Context, url string, call int) (string, error)) *fakeFetcher {
	return &fakeFetcher{calls: map[string]int{}, handler: handler}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls[url]++
	call := f.calls[url]
	f.mu.Unlock()
	return f.handler(ctx, url, call)
}

func (f *fakeFetcher) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// listThenArticles serves list for the category page and articlePage for
// everything else.
func listThenArticles(list string) func(context.Context, string, int) (string, error) {
	return func(_ context.Context, url string, _ int) (string, error) {
		if url == "https://"+testDomain+"/business" {
			return list, nil
		}
		return articlePage, nil
	}
}

type fakeRobots struct{ disallow map[string]bool }

func (r fakeRobots) CanFetch(rawURL, _ string) bool { return !r.disallow[rawURL] }

type noThrottle struct{ waits int }

func (t *noThrottle) WaitIfNeeded(ctx context.Context) error {
	t.waits++
	return ctx.Err()
}

type recordingSleeper struct{ slept []time.Duration }

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return ctx.Err()
}

type fakeCache struct {
	mu    sync.Mutex
	marks map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{marks: map[string]string{}} }

func (c *fakeCache) IsKnown(_ context.Context, url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.marks[url]
	return ok
}

func (c *fakeCache) MarkKnown(_ context.Context, url, marker string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.marks[url] = marker
	return nil
}

type fakeArticles struct {
	mu        sync.Mutex
	created   []*entity.Article
	existing  map[string]bool
	createErr error
}

func newFakeArticles() *fakeArticles { return &fakeArticles{existing: map[string]bool{}} }

func (r *fakeArticles) Create(_ context.Context, article *entity.Article) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	r.created = append(r.created, article)
	return fmt.Sprintf("id-%d", len(r.created)), nil
}

func (r *fakeArticles) ExistsByURL(_ context.Context, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.existing[url], nil
}

func (r *fakeArticles) CountAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.created)), nil
}

type fakeFailedURLs struct {
	mu      sync.Mutex
	saved   map[string]*entity.FailedURL
	deleted []string
}

func newFakeFailedURLs() *fakeFailedURLs {
	return &fakeFailedURLs{saved: map[string]*entity.FailedURL{}}
}

func (r *fakeFailedURLs) SaveOrUpdate(_ context.Context, fu *entity.FailedURL) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.saved[fu.URL]; ok {
		fu.FailureCount = prev.FailureCount + 1
	} else {
		fu.FailureCount = 1
	}
	r.saved[fu.URL] = fu
	return nil
}

func (r *fakeFailedURLs) FindByURL(_ context.Context, url string) (*entity.FailedURL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[url], nil
}

func (r *fakeFailedURLs) Delete(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.saved, url)
	r.deleted = append(r.deleted, url)
	return nil
}

var _ repository.ArticleRepository = (*fakeArticles)(nil)
var _ repository.FailedURLRepository = (*fakeFailedURLs)(nil)
