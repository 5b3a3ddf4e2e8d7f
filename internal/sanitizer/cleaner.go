// Package sanitizer strips unsafe or unwanted markup from extracted article
// HTML and normalizes its presentation.
package sanitizer

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// unwantedTags are removed together with their subtree.
const unwantedTags = "script, style, iframe, noscript, embed, object, applet, video, audio, source, track"

var (
	adPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ads?[-_]`),
		regexp.MustCompile(`(?i)advertisement`),
		regexp.MustCompile(`(?i)banner`),
		regexp.MustCompile(`(?i)sponsor`),
		regexp.MustCompile(`(?i)promo`),
		regexp.MustCompile(`(?i)commercial`),
	}
	videoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)video[-_]`),
		regexp.MustCompile(`(?i)player[-_]`),
		regexp.MustCompile(`(?i)media-player`),
		regexp.MustCompile(`(?i)youtube`),
		regexp.MustCompile(`(?i)vimeo`),
		regexp.MustCompile(`(?i)dailymotion`),
	}

	whitespaceRun     = regexp.MustCompile(`\s+`)
	spaceBeforePunct  = regexp.MustCompile(`\s+([.,;:!?])`)
	repeatedBlankLine = regexp.MustCompile(`\n\s*\n`)
)

// Cleaner sanitizes article HTML. It is safe for concurrent use.
type Cleaner struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean returns the sanitized form of rawHTML. Empty input gives empty output
// and a parse failure returns the input unchanged.
func (c *Cleaner) Clean(rawHTML string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		c.logger.Error("error cleaning content", zap.Error(err))
		return rawHTML
	}
	body := doc.Find("body")

	body.Find(unwantedTags).Remove()
	removeMatching(body, adPatterns)
	removeMatching(body, videoPatterns)
	normalizePresentation(body)
	removeEmptyParagraphs(body)
	for _, n := range body.Nodes {
		removeComments(n)
	}

	out, err := body.Html()
	if err != nil {
		c.logger.Error("error rendering cleaned content", zap.Error(err))
		return rawHTML
	}
	return cleanText(out)
}

// removeMatching drops every element whose class list or id matches one of
// the patterns.
func removeMatching(root *goquery.Selection, patterns []*regexp.Regexp) {
	root.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		class, _ := s.Attr("class")
		if matchesAny(id, patterns) {
			s.Remove()
			return
		}
		for _, token := range strings.Fields(class) {
			if matchesAny(token, patterns) {
				s.Remove()
				return
			}
		}
	})
}

func matchesAny(value string, patterns []*regexp.Regexp) bool {
	if value == "" {
		return false
	}
	for _, p := range patterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

func removeEmptyParagraphs(root *goquery.Selection) {
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" {
			s.Remove()
		}
	})
}

// removeComments detaches every comment node below n.
func removeComments(n *html.Node) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		if child.Type == html.CommentNode {
			n.RemoveChild(child)
		} else {
			removeComments(child)
		}
		child = next
	}
}

func cleanText(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = repeatedBlankLine.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
