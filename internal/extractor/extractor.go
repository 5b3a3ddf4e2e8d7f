// Package extractor maps configured CSS selectors onto article fields.
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/news-crawler/internal/entity"
	"github.com/user/news-crawler/internal/repository"
	"github.com/user/news-crawler/pkg/utils"
)

// ExtractLinks resolves the href of every element matching selector against
// baseURL. Elements without a usable href are skipped.
func ExtractLinks(doc *goquery.Document, baseURL, selector string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	var links []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		abs, err := utils.ToAbsoluteURL(base, href)
		if err != nil || abs == "" {
			return
		}
		links = append(links, abs)
	})
	return links, nil
}

// ExtractFields builds an article from doc. Title and content selectors must
// match; every other field is optional. Elements matching removeSelectors are
// stripped from the content before it is serialized.
func ExtractFields(doc *goquery.Document, selectors entity.DetailSelectors, removeSelectors []string) (*entity.Article, error) {
	title := strings.TrimSpace(first(doc, selectors.Title).Text())
	if title == "" {
		return nil, fmt.Errorf("%w: no title matched %q", repository.ErrExtraction, selectors.Title)
	}

	contentSel := first(doc, selectors.Content)
	if contentSel.Length() == 0 {
		return nil, fmt.Errorf("%w: no content matched %q", repository.ErrExtraction, selectors.Content)
	}
	for _, remove := range removeSelectors {
		if remove == "" {
			continue
		}
		contentSel.Find(remove).Remove()
	}
	content, err := goquery.OuterHtml(contentSel)
	if err != nil {
		return nil, fmt.Errorf("%w: render content: %v", repository.ErrExtraction, err)
	}

	article := &entity.Article{
		Title:         title,
		Summary:       text(first(doc, selectors.Summary)),
		Content:       content,
		Thumbnail:     thumbnail(first(doc, selectors.Thumbnail)),
		PublishedDate: text(first(doc, selectors.PublishedDate)),
		Author:        text(first(doc, selectors.Author)),
		Tags:          []string{},
	}

	if selectors.Tags != "" {
		doc.Find(selectors.Tags).Each(func(_ int, s *goquery.Selection) {
			if tag := text(s); tag != "" {
				article.Tags = append(article.Tags, tag)
			}
		})
	}
	return article, nil
}

// first returns the first match of selector, or an empty selection when the
// selector is not configured.
func first(doc *goquery.Document, selector string) *goquery.Selection {
	if selector == "" {
		return &goquery.Selection{}
	}
	return doc.Find(selector).First()
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// thumbnail prefers a meta content attribute and falls back to src.
func thumbnail(s *goquery.Selection) string {
	if content, ok := s.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}
	src, _ := s.Attr("src")
	return strings.TrimSpace(src)
}
