// Package markdown implements structural editing primitives over raw
// markdown text: ATX heading discovery, section boundary computation, and
// the heading-scoped splice operations.
//
// Headings are recognized by a simple line pattern, not by CommonMark block
// rules; the document text is the sole source of truth and headings are
// re-parsed on every operation.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
)

// headingRe matches an ATX heading line: 1-6 leading '#', at least one
// space or tab, then a title with trailing whitespace trimmed.
var headingRe = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+?)[ \t\r]*$`)

// Heading describes one ATX heading with its byte offsets. End includes the
// line terminator, so an insertion at End lands on the following line.
type Heading struct {
	Level int
	Title string
	Key   string // normalized lookup key
	Start int
	End   int
}

// NormalizeKey lowercases a heading title and collapses internal whitespace
// runs, producing the key used for case-insensitive heading lookup.
func NormalizeKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// ParseHeadings scans text and returns every heading in document order.
func ParseHeadings(text string) []Heading {
	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	headings := make([]Heading, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]

		// Swallow the line terminator so End points at the next line.
		if end+1 < len(text) && text[end] == '\r' && text[end+1] == '\n' {
			end += 2
		} else if end < len(text) && (text[end] == '\n' || text[end] == '\r') {
			end += 1
		}

		title := strings.TrimSpace(text[m[4]:m[5]])
		headings = append(headings, Heading{
			Level: m[3] - m[2],
			Title: title,
			Key:   NormalizeKey(title),
			Start: start,
			End:   end,
		})
	}
	return headings
}

// LocateHeading finds the first heading whose normalized key matches query,
// scanning in document order. It returns the heading, its index, and the
// full heading list for subsequent boundary computation.
func LocateHeading(text, query string) (Heading, int, []Heading, error) {
	headings := ParseHeadings(text)
	target := NormalizeKey(query)
	for i, h := range headings {
		if h.Key == target {
			return h, i, headings, nil
		}
	}
	return Heading{}, 0, nil, fmt.Errorf("%w: %q", apperr.ErrHeadingNotFound, query)
}

// SectionBounds returns the byte offsets bracketing the content owned by the
// heading at index: from the end of its line to the start of the next heading
// of equal or higher level, or the end of the document. Descendant
// subsections are therefore included in the span.
func SectionBounds(headings []Heading, index, textLen int) (start, end int) {
	current := headings[index]
	start = current.End
	for _, h := range headings[index+1:] {
		if h.Level <= current.Level {
			return start, h.Start
		}
	}
	return start, textLen
}
