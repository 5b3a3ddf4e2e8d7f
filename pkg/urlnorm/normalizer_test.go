package urlnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/news-crawler/pkg/urlnorm"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tracking params and fragment", "https://example.com/a?utm_source=x&id=7#frag", "https://example.com/a?id=7"},
		{"all tracking params removed", "https://example.com/a?fbclid=1&gclid=2&_ga=3", "https://example.com/a"},
		{"params sorted", "https://example.com/a?z=1&b=2", "https://example.com/a?b=2&z=1"},
		{"trailing slash", "https://example.com/news/story/", "https://example.com/news/story"},
		{"repeated trailing slash", "https://example.com/news//", "https://example.com/news"},
		{"root slash kept", "https://example.com/", "https://example.com/"},
		{"empty query marker dropped", "https://example.com/a?", "https://example.com/a"},
		{"blank values dropped", "https://example.com/a?b&c=&id=7", "https://example.com/a?id=7"},
		{"blank among repeated values", "https://example.com/a?k=&k=2", "https://example.com/a?k=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, urlnorm.Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://example.com/a?utm_source=x&id=7#frag",
		"https://example.com/a/b/?q=hello world&a=1&a=0",
		"https://example.com//",
		"https://example.com/path%2Fwith%2Fescapes/",
		"https://example.com/a?x",
		"/relative/path/?utm_medium=mail",
		"://not a url",
		"",
	}

	for _, in := range inputs {
		once := urlnorm.Normalize(in)
		assert.Equal(t, once, urlnorm.Normalize(once), "input %q", in)
	}
}

func TestIsLikelyArticleURL(t *testing.T) {
	t.Parallel()

	const domain = "vnexpress.net"

	tests := []struct {
		url  string
		want bool
	}{
		{"https://vnexpress.net/kinh-te/bai-viet-4712345.html", true},
		{"https://vnexpress.net/story/1234567", true},
		{"https://vnexpress.net/some-unclassified-path", true},
		{"https://other.com/kinh-te/bai-viet-4712345.html", false},
		{"https://vnexpress.net/tag/bong-da", false},
		{"https://vnexpress.net/category/the-thao", false},
		{"https://vnexpress.net/search?q=x", false},
		{"https://vnexpress.net/login", false},
		{"https://vnexpress.net/register", false},
		{"https://vnexpress.net/comment/123", false},
		{"https://vnexpress.net/thoi-su/page/2", false},
		{"https://vnexpress.net/2024/", false},
		{"https://vnexpress.net/2024/05/", false},
		{"https://vnexpress.net/2024", false},
		{"https://vnexpress.net/2024/05", false},
		{"https://vnexpress.net/story/202405", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, urlnorm.IsLikelyArticleURL(tt.url, domain), tt.url)
	}
}

func TestIsLikelyArticleURL_ArchiveAfterNormalize(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"https://vnexpress.net/2024/", "https://vnexpress.net/2024/05/"} {
		assert.False(t, urlnorm.IsLikelyArticleURL(urlnorm.Normalize(raw), "vnexpress.net"), raw)
	}
}
