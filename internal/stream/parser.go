package stream

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// lineSplitter cuts decoded text into complete lines. The text after the last
// newline is kept until the next Feed, so a line split across chunks is
// reassembled before it is parsed.
type lineSplitter struct {
	partial string
}

// Feed returns every line completed by text, without line terminators.
func (s *lineSplitter) Feed(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(s.partial+text, "\n")
	s.partial = lines[len(lines)-1]
	lines = lines[:len(lines)-1]
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Flush returns the unterminated tail, if any. Used at end of stream.
func (s *lineSplitter) Flush() []string {
	if s.partial == "" {
		return nil
	}
	line := strings.TrimSuffix(s.partial, "\r")
	s.partial = ""
	return []string{line}
}

// payload holds the recognized fields of one "data: " event.
type payload struct {
	Text          string
	SearchResults string
	Error         string
}

// parseLine decodes one event line. ok is false for lines that carry no
// payload: anything without the "data: " prefix and the [DONE] sentinel.
// A data line that is not valid JSON yields an ErrDecode error.
func parseLine(line string) (p payload, ok bool, err error) {
	data, found := strings.CutPrefix(line, dataPrefix)
	if !found || data == doneSentinel {
		return payload{}, false, nil
	}
	if !gjson.Valid(data) {
		return payload{}, false, fmt.Errorf("%w: invalid JSON payload %q", ErrDecode, truncate(data, 80))
	}

	fields := gjson.GetMany(data, "content.0.text", "search_results", "error")
	if fields[0].Type == gjson.String {
		p.Text = fields[0].String()
	}
	if fields[1].Type == gjson.String {
		p.SearchResults = fields[1].String()
	}
	if fields[2].Exists() && fields[2].Type != gjson.Null {
		p.Error = fields[2].String()
	}
	return p, true, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
