package blog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBlocksPrecedence(t *testing.T) {
	text := "Intro with **bold**.\n" +
		"\n" +
		"![graph db](assets/sec0_vis0_x.png)\n" +
		"## Storage model\n" +
		"* nodes\n" +
		"- edges\n" +
		"1. first step\n" +
		"10.5 percent of queries\n" +
		"> (Image not found for keywords: k)\n" +
		"**Bold lead** continues"

	want := []Block{
		{Kind: BlockParagraph, Text: "Intro with **bold**."},
		{Kind: BlockImage, Caption: "graph db", Path: "assets/sec0_vis0_x.png"},
		{Kind: BlockSubheading, Text: "Storage model"},
		{Kind: BlockBullet, Text: "nodes"},
		{Kind: BlockBullet, Text: "edges"},
		{Kind: BlockNumbered, Text: "first step"},
		{Kind: BlockParagraph, Text: "10.5 percent of queries"},
		{Kind: BlockNote, Text: "(Image not found for keywords: k)"},
		{Kind: BlockParagraph, Text: "**Bold lead** continues"},
	}
	if diff := cmp.Diff(want, ParseBlocks(text)); diff != "" {
		t.Fatalf("ParseBlocks mismatch (-want +got):\n%s", diff)
	}
}

func TestEmphasis(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []Span
	}{
		{
			name: "bold_then_italic",
			in:   "**bold** and *it* plain",
			want: []Span{{Text: "bold", Bold: true}, {Text: " and "}, {Text: "it", Italic: true}, {Text: " plain"}},
		},
		{
			name: "italic_inside_bold",
			in:   "**a *b* c**",
			want: []Span{{Text: "a ", Bold: true}, {Text: "b", Bold: true, Italic: true}, {Text: " c", Bold: true}},
		},
		{
			name: "unbalanced_is_literal",
			in:   "**unclosed",
			want: []Span{{Text: "**unclosed"}},
		},
		{
			name: "plain",
			in:   "nothing special",
			want: []Span{{Text: "nothing special"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Emphasis(tc.in)); diff != "" {
				t.Fatalf("Emphasis(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}
