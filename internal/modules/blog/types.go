package blog

import (
	"context"
	"strings"
)

type VisualType string

const (
	VisualDiagram VisualType = "diagram"
	VisualImage   VisualType = "image"
)

// ParseVisualType normalizes a planner-supplied type. ok is false for anything
// other than diagram or image.
func ParseVisualType(s string) (VisualType, bool) {
	switch VisualType(strings.ToLower(strings.TrimSpace(s))) {
	case VisualDiagram:
		return VisualDiagram, true
	case VisualImage:
		return VisualImage, true
	default:
		return "", false
	}
}

// VisualNeed is one planned request for a visual inside a section.
type VisualNeed struct {
	SectionIndex   int        `json:"section_index"`
	NeedIndex      int        `json:"need_index"`
	Type           VisualType `json:"type"`
	Keywords       string     `json:"keywords"`
	AfterParagraph int        `json:"after_paragraph"`
}

// ResolvedVisual is the outcome of resolving one need. An empty LocalPath means
// every cascade attempt was exhausted.
type ResolvedVisual struct {
	Need      VisualNeed `json:"need"`
	LocalPath string     `json:"local_path,omitempty"`
}

func (r ResolvedVisual) Found() bool { return r.LocalPath != "" }

type Section struct {
	Heading  string
	RawText  string
	Enriched string
}

// Plan is the outline returned by the outline writer.
type Plan struct {
	Title    string        `json:"title"`
	Sections []PlanSection `json:"sections"`
	Audience string        `json:"target_audience"`
	Tone     string        `json:"tone"`
}

type PlanSection struct {
	Heading string `json:"heading"`
	Summary string `json:"summary"`
}

// TextGenerator is the external text completion collaborator.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

// ImageGenerator synthesizes a raster image from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}
