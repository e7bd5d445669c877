package markdown

import (
	"regexp"
	"strings"
)

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// InsertAfterHeading splices content immediately after the heading line.
// Single newlines are added on either side only when needed, so the inserted
// block sits on its own line without introducing blank-line noise. Empty
// content leaves the text unchanged.
func InsertAfterHeading(text string, h Heading, content string) string {
	before := text[:h.End]
	after := text[h.End:]
	insertion := content

	if insertion != "" {
		if before != "" && !strings.HasSuffix(before, "\n") && !strings.HasPrefix(insertion, "\n") {
			insertion = "\n" + insertion
		}
		if !strings.HasSuffix(insertion, "\n") && after != "" && !strings.HasPrefix(after, "\n") {
			insertion += "\n"
		}
	}
	return before + insertion + after
}

// AppendToSection splices content at the end of the heading's direct section
// body, before the next heading of any level. The section body's trailing
// newlines decide how much separation the new content gets; the section is
// left ending in a blank line when more headings follow, or a single newline
// at end of document. Whitespace-only content leaves the text unchanged.
func AppendToSection(text string, headings []Heading, index int, content string) string {
	h := headings[index]
	insertionPos := len(text)
	if index+1 < len(headings) {
		insertionPos = headings[index+1].Start
	}

	sectionBody := text[h.End:insertionPos]
	before := text[:insertionPos]
	after := text[insertionPos:]

	insertion := strings.TrimRight(content, "\r\n")
	if strings.TrimSpace(insertion) == "" {
		return text
	}

	if sectionBody != "" {
		switch {
		case strings.HasSuffix(sectionBody, "\n\n"):
			insertion = strings.TrimLeft(insertion, "\n")
		case strings.HasSuffix(sectionBody, "\n"):
			if !strings.HasPrefix(insertion, "\n") {
				insertion = "\n" + insertion
			}
		default:
			insertion = "\n\n" + strings.TrimLeft(insertion, "\n")
		}
	} else if !strings.HasSuffix(before, "\n") {
		insertion = "\n" + strings.TrimLeft(insertion, "\n")
	}

	if after != "" {
		if !strings.HasSuffix(insertion, "\n") {
			insertion += "\n"
		}
		if !strings.HasPrefix(after, "\n") && !strings.HasPrefix(after, "\r") {
			insertion += "\n"
		}
	} else if !strings.HasSuffix(insertion, "\n") {
		insertion += "\n"
	}

	return before + insertion + after
}

// ReplaceSection replaces the content owned by the heading (subsections
// included) with new content. Exactly one blank line separates the
// replacement from a following heading; at end of document the replacement
// ends in a single newline.
func ReplaceSection(text string, headings []Heading, index int, content string) string {
	start, end := SectionBounds(headings, index, len(text))
	before := text[:start]
	after := text[end:]

	replacement := strings.TrimRight(content, "\r\n")
	if before != "" && replacement != "" && !strings.HasSuffix(before, "\n") && !strings.HasPrefix(replacement, "\n") {
		replacement = "\n" + replacement
	}

	after = strings.TrimLeft(after, "\r\n")
	if after != "" {
		replacement = strings.TrimRight(replacement, "\n")
		if replacement != "" {
			replacement += "\n\n"
		} else {
			replacement = "\n\n"
		}
	} else if replacement != "" && !strings.HasSuffix(replacement, "\n") {
		replacement += "\n"
	}

	return before + replacement + after
}

// DeleteSection removes the heading line and its entire section, then
// collapses any run of three or more newlines down to one blank line so
// adjacent deletions don't accumulate blank-line debris.
func DeleteSection(text string, headings []Heading, index int) string {
	_, end := SectionBounds(headings, index, len(text))
	updated := text[:headings[index].Start] + text[end:]
	return blankRunRe.ReplaceAllString(updated, "\n\n")
}
