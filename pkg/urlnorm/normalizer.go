// Package urlnorm canonicalizes article URLs and classifies them as likely
// article pages.
package urlnorm

import (
	"net/url"
	"regexp"
	"strings"
)

// trackingParams are query parameters stripped during normalization.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"msclkid":      {},
	"ref":          {},
	"source":       {},
	"campaign":     {},
	"_ga":          {},
	"_gid":         {},
}

var (
	excludedPathPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/tag/`),
		regexp.MustCompile(`/category/`),
		regexp.MustCompile(`/search`),
		regexp.MustCompile(`/login`),
		regexp.MustCompile(`/register`),
		regexp.MustCompile(`/comment`),
		regexp.MustCompile(`/page/\d+`),
		regexp.MustCompile(`/\d{4}/?$`),
		regexp.MustCompile(`/\d{4}/\d{2}/?$`),
	}
	numericSlugPattern = regexp.MustCompile(`-\d+\.html?$`)
	longIDPattern      = regexp.MustCompile(`/\d{6,}`)
)

// Normalize returns the canonical form of rawURL: tracking parameters removed,
// remaining query parameters sorted by key, fragment dropped, and all
// trailing slashes removed from non-root paths. Parameters with blank values
// are dropped. Unparseable input is returned unchanged.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := u.Query()
	for key, values := range query {
		if _, tracked := trackingParams[key]; tracked {
			query.Del(key)
			continue
		}
		kept := values[:0]
		for _, v := range values {
			if v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			query.Del(key)
			continue
		}
		query[key] = kept
	}
	// Encode sorts by key and keeps per-key value order.
	u.RawQuery = query.Encode()
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = trimTrailingSlashes(u.Path)
		if u.RawPath != "" {
			u.RawPath = trimTrailingSlashes(u.RawPath)
		}
	}
	return u.String()
}

// trimTrailingSlashes strips every trailing slash so that normalizing twice
// gives the same result, keeping the root path intact.
func trimTrailingSlashes(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// IsLikelyArticleURL applies a permissive heuristic: URLs off the domain or
// matching a known listing/archive/account path are rejected, everything else
// is accepted.
func IsLikelyArticleURL(rawURL, domain string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.Contains(u.Host, domain) {
		return false
	}
	for _, pattern := range excludedPathPatterns {
		if pattern.MatchString(u.Path) {
			return false
		}
	}
	if numericSlugPattern.MatchString(u.Path) || longIDPattern.MatchString(u.Path) {
		return true
	}
	// Unclassified paths are kept: dropping a real article costs more than
	// fetching a non-article page.
	return true
}
