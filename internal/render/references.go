package render

import "regexp"

// ReferenceMap maps a citation number (as text) to the URL it points at.
// A map is built per formatting pass and is never shared between messages.
type ReferenceMap map[string]string

// referenceDefRe matches a reference definition: "[<digits>]: <http(s) URL>".
// The URL runs up to the first whitespace character.
var referenceDefRe = regexp.MustCompile(`\[(\d+)\]: (https?://\S+)`)

// ExtractReferences scans text left to right and collects every reference
// definition. A number defined more than once keeps the last URL seen.
func ExtractReferences(text string) ReferenceMap {
	refs := make(ReferenceMap)
	if text == "" {
		return refs
	}
	for _, m := range referenceDefRe.FindAllStringSubmatch(text, -1) {
		refs[m[1]] = m[2]
	}
	return refs
}
