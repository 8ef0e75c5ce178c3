package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans formatted HTML before it leaves the core.
type Sanitizer interface {
	Sanitize(html string) string
}

var classAttrRe = regexp.MustCompile(`^[a-z0-9 :\-]*$`)

// NewSanitizer returns a bluemonday policy that keeps exactly the markup the
// formatter produces: headings, paragraphs, line breaks, list items, citation
// blocks, badges and http(s) anchors. External anchors keep target="_blank"
// and get rel="noopener noreferrer".
func NewSanitizer() Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "p", "br", "li", "div", "span")
	p.AllowAttrs("class").Matching(classAttrRe).OnElements("h1", "h2", "p", "li", "div", "span", "a")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}
