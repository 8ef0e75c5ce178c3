package render

import (
	"regexp"
	"strings"
)

// Formatter turns raw assistant or search-result text into an HTML string.
//
// The output is built by a fixed sequence of passes. Each pass is a pure
// function over the text produced by the previous one, and citation
// resolution always uses the ReferenceMap extracted from the raw input before
// any markup was injected. Raw text is not escaped; enable sanitizing with
// WithSanitizer when the output is injected into a page without further care.
type Formatter struct {
	sanitizer Sanitizer
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithSanitizer runs every formatted string through s before returning it.
func WithSanitizer(s Sanitizer) Option {
	return func(f *Formatter) { f.sanitizer = s }
}

// NewFormatter creates a Formatter.
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Variant selects which pipeline is applied.
type Variant string

const (
	// VariantMessage renders assistant message bodies; newlines become <br>.
	VariantMessage Variant = "message"
	// VariantSearch renders search-result panels; plain lines become paragraphs.
	VariantSearch Variant = "search"
)

type pass func(text string, refs ReferenceMap) string

var (
	messagePipeline = []pass{formatHeaders, formatLinks, formatCitations, formatListItems, formatReferenceBlocks, formatLineBreaks}
	searchPipeline  = []pass{formatHeaders, formatLinks, formatCitations, formatListItems, formatReferenceBlocks, formatParagraphs}
)

// Message formats an assistant message body.
func (f *Formatter) Message(text string) string {
	return f.Format(text, VariantMessage)
}

// SearchResults formats the body of a search-results panel.
func (f *Formatter) SearchResults(text string) string {
	return f.Format(text, VariantSearch)
}

// Format runs the pipeline for the given variant. Unknown variants fall back
// to the message pipeline. Empty input yields empty output. CRLF line endings
// are treated as LF.
func (f *Formatter) Format(text string, variant Variant) string {
	if text == "" {
		return ""
	}
	pipeline := messagePipeline
	if variant == VariantSearch {
		pipeline = searchPipeline
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	refs := ExtractReferences(text)
	html := text
	for _, p := range pipeline {
		html = p(html, refs)
	}

	if f.sanitizer != nil {
		html = f.sanitizer.Sanitize(html)
	}
	return html
}

const externalLinkAttrs = `target="_blank" rel="noopener noreferrer"`

var (
	// "# text" at the start of a line.
	h1Re = regexp.MustCompile(`(?m)^# (.*)$`)
	// "## text" at the start of a line.
	h2Re = regexp.MustCompile(`(?m)^## (.*)$`)
	// "[label](url)": label has no ']', url has no ')'.
	linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	// "[digits]" optionally followed by ": ", which marks a definition instead.
	citationRe = regexp.MustCompile(`\[(\d+)\](: )?`)
	// "1. text" or "- text" at the start of a line.
	orderedItemRe   = regexp.MustCompile(`(?m)^\d+\. (.*)$`)
	unorderedItemRe = regexp.MustCompile(`(?m)^- (.*)$`)
)

func formatHeaders(text string, _ ReferenceMap) string {
	text = h1Re.ReplaceAllString(text, `<h1 class="text-xl font-bold mt-4 mb-2">$1</h1>`)
	return h2Re.ReplaceAllString(text, `<h2 class="text-lg font-bold mt-3 mb-1">$1</h2>`)
}

func formatLinks(text string, _ ReferenceMap) string {
	return linkRe.ReplaceAllString(text, `<a href="$2" class="text-blue-600 hover:underline" `+externalLinkAttrs+`>$1</a>`)
}

// formatCitations links "[n]" to the URL defined for n, or renders an
// unlinked badge when n has no definition.
func formatCitations(text string, refs ReferenceMap) string {
	return citationRe.ReplaceAllStringFunc(text, func(match string) string {
		if strings.HasSuffix(match, ": ") {
			return match
		}
		n := match[1 : len(match)-1]
		if url, ok := refs[n]; ok {
			return `<a href="` + url + `" class="text-blue-600 hover:underline font-medium" ` + externalLinkAttrs + `>[` + n + `]</a>`
		}
		return `<span class="text-blue-600 font-medium">[` + n + `]</span>`
	})
}

func formatListItems(text string, _ ReferenceMap) string {
	text = orderedItemRe.ReplaceAllString(text, `<li class="ml-4">$1</li>`)
	return unorderedItemRe.ReplaceAllString(text, `<li class="ml-4">$1</li>`)
}

func formatReferenceBlocks(text string, _ ReferenceMap) string {
	return referenceDefRe.ReplaceAllString(text,
		`<div class="citation"><span class="text-blue-600 font-medium">[$1]:</span> `+
			`<a href="$2" class="text-blue-600 hover:underline break-all" `+externalLinkAttrs+`>$2</a></div>`)
}

func formatLineBreaks(text string, _ ReferenceMap) string {
	return strings.ReplaceAll(text, "\n", "<br>")
}

// formatParagraphs wraps every non-empty line that does not already start
// with heading, block or list markup in a paragraph.
func formatParagraphs(text string, _ ReferenceMap) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" || strings.HasPrefix(line, "<h") || strings.HasPrefix(line, "<d") || strings.HasPrefix(line, "<l") {
			continue
		}
		lines[i] = `<p class="mb-2">` + line + `</p>`
	}
	return strings.Join(lines, "\n")
}
