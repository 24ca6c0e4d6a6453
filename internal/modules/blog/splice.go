package blog

import (
	"fmt"
	"regexp"
	"strings"
)

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// Paragraphs splits text on blank-line boundaries and drops empty paragraphs.
// Both the planner (when numbering paragraphs for the model) and Splice use it,
// so planned offsets and splice offsets refer to the same segmentation.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := blankLine.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, strings.Trim(p, "\n"))
	}
	return out
}

// Splice inserts marker after the paragraph at afterParagraph (0-based),
// clamped into [0, len(paragraphs)]. An index equal to the paragraph count
// appends at the end, which also covers text with no paragraphs.
func Splice(text, marker string, afterParagraph int) string {
	paras := Paragraphs(text)
	idx := afterParagraph
	if idx < 0 {
		idx = 0
	}
	if idx > len(paras) {
		idx = len(paras)
	}
	out := make([]string, 0, len(paras)+1)
	for i, p := range paras {
		out = append(out, p)
		if i == idx {
			out = append(out, marker)
		}
	}
	if idx >= len(paras) {
		out = append(out, marker)
	}
	return strings.Join(out, "\n\n")
}

// ImageMarker is the captioned image reference spliced for a resolved need.
func ImageMarker(caption, relPath string) string {
	return fmt.Sprintf("![%s](%s)", strings.TrimSpace(caption), relPath)
}

// MissingMarker is the visible placeholder spliced when no asset was found.
func MissingMarker(keywords string) string {
	return fmt.Sprintf("> (Image not found for keywords: %s)", strings.TrimSpace(keywords))
}
