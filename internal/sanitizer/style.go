package sanitizer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// strippedDeclarations are removed from every inline style.
var strippedDeclarations = map[string]struct{}{
	"font-family": {},
	"font-size":   {},
	"line-height": {},
	"color":       {},
}

const headingTags = "h1, h2, h3, h4, h5, h6"

// normalizePresentation removes legacy font styling so the stored article
// inherits the destination site's typography.
func normalizePresentation(root *goquery.Selection) {
	root.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		setStyle(s, filterDeclarations(style, func(name string) bool {
			_, stripped := strippedDeclarations[name]
			return !stripped
		}))
	})

	root.Find("font").Each(func(_ int, s *goquery.Selection) {
		unwrap(s.Get(0))
	})

	root.Find("[size], [color], [face]").Each(func(_ int, s *goquery.Selection) {
		s.RemoveAttr("size").RemoveAttr("color").RemoveAttr("face")
	})

	root.Find(headingTags).RemoveAttr("style")

	root.Find("p[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		setStyle(s, filterDeclarations(style, func(name string) bool {
			return name == "text-align"
		}))
	})
}

// filterDeclarations parses an inline style and re-serializes the
// declarations accepted by keep as "name:value" pairs joined by ";".
func filterDeclarations(style string, keep func(name string) bool) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" || value == "" || !keep(name) {
			continue
		}
		kept = append(kept, name+":"+value)
	}
	return strings.Join(kept, ";")
}

func setStyle(s *goquery.Selection, style string) {
	if style == "" {
		s.RemoveAttr("style")
		return
	}
	s.SetAttr("style", style)
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		n.RemoveChild(child)
		parent.InsertBefore(child, n)
		child = next
	}
	parent.RemoveChild(n)
}
