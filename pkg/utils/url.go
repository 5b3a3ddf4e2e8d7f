package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// HashURL returns the hex SHA-256 digest of a URL string, used as a fixed-width
// cache key.
func HashURL(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// ToAbsoluteURL resolves href against base. Fragment-only and javascript:
// references resolve to an empty string.
func ToAbsoluteURL(base *url.URL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return "", nil
	}
	relURL, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// Hostname returns the lower-cased host of rawURL without port, or "" if it
// cannot be parsed.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
