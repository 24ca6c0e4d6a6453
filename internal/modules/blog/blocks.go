package blog

import (
	"regexp"
	"strings"
)

type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockImage
	BlockSubheading
	BlockBullet
	BlockNumbered
	// BlockNote is a "> " quoted line; placeholders for missing visuals use it.
	BlockNote
)

func (k BlockKind) String() string {
	switch k {
	case BlockImage:
		return "image"
	case BlockSubheading:
		return "subheading"
	case BlockBullet:
		return "bullet"
	case BlockNumbered:
		return "numbered"
	case BlockNote:
		return "note"
	default:
		return "paragraph"
	}
}

// Block is one classified line of section content.
type Block struct {
	Kind BlockKind
	Text string
	// Image blocks only.
	Caption string
	Path    string
}

var (
	imageLine    = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	numberedLine = regexp.MustCompile(`^\d+\.\s+`)
	headingLine  = regexp.MustCompile(`^#{1,6}\s+`)
)

// ParseBlocks classifies every non-empty line. Precedence: image reference,
// markdown sub-heading, bullet, numbered item, quoted note, plain paragraph.
func ParseBlocks(text string) []Block {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]Block, 0, len(lines))
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		out = append(out, classifyLine(line))
	}
	return out
}

func classifyLine(line string) Block {
	if m := imageLine.FindStringSubmatch(line); m != nil {
		return Block{Kind: BlockImage, Caption: strings.TrimSpace(m[1]), Path: strings.TrimSpace(m[2])}
	}
	if loc := headingLine.FindStringIndex(line); loc != nil {
		return Block{Kind: BlockSubheading, Text: strings.TrimSpace(line[loc[1]:])}
	}
	if strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "- ") {
		return Block{Kind: BlockBullet, Text: strings.TrimSpace(line[2:])}
	}
	if loc := numberedLine.FindStringIndex(line); loc != nil {
		return Block{Kind: BlockNumbered, Text: strings.TrimSpace(line[loc[1]:])}
	}
	if strings.HasPrefix(line, ">") {
		return Block{Kind: BlockNote, Text: strings.TrimSpace(strings.TrimLeft(line, ">"))}
	}
	return Block{Kind: BlockParagraph, Text: line}
}

// Span is a run of inline text with emphasis resolved.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
}

var (
	boldSpan   = regexp.MustCompile(`\*\*.*?\*\*`)
	italicSpan = regexp.MustCompile(`\*[^*]+?\*`)
)

// Emphasis resolves **bold** spans first, then *italic* spans inside and
// outside them. Unbalanced markers are kept as literal text.
func Emphasis(text string) []Span {
	out := []Span{}
	last := 0
	for _, loc := range boldSpan.FindAllStringIndex(text, -1) {
		out = append(out, italicSpans(text[last:loc[0]], false)...)
		out = append(out, italicSpans(text[loc[0]+2:loc[1]-2], true)...)
		last = loc[1]
	}
	out = append(out, italicSpans(text[last:], false)...)
	return out
}

func italicSpans(text string, bold bool) []Span {
	out := []Span{}
	last := 0
	for _, loc := range italicSpan.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			out = append(out, Span{Text: text[last:loc[0]], Bold: bold})
		}
		out = append(out, Span{Text: text[loc[0]+1 : loc[1]-1], Bold: bold, Italic: true})
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, Span{Text: text[last:], Bold: bold})
	}
	return out
}
