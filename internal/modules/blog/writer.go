package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
	"github.com/codoraai-coder/marketing-agent/internal/platform/promptstyle"
)

const outlineSystemPrompt = `You plan Medium-style technical blog posts.
Return ONLY a JSON object (no prose, no code fences):
{"title": "...", "sections": [{"heading": "...", "summary": "..."}], "target_audience": "...", "tone": "..."}
Use 5 to 7 sections. Start with an introduction and end with a conclusion.`

const sectionSystemPrompt = `You write one section of a technical blog post.
Write clear, detailed prose in short paragraphs separated by blank lines.
Use "* " bullets or "1. " numbered lists when they help, and "## " for sub-headings.
Use **bold** and *italic* sparingly. Do not repeat the section heading.`

// Writer produces the outline and the prose of each section.
type Writer struct {
	log *logger.Logger
	gen TextGenerator
}

func NewWriter(log *logger.Logger, gen TextGenerator) *Writer {
	if log == nil {
		log = logger.Nop()
	}
	return &Writer{log: log.With("service", "SectionWriter"), gen: gen}
}

// Outline never fails: unusable model output yields DefaultPlan(topic).
func (w *Writer) Outline(ctx context.Context, topic string) Plan {
	if w == nil || w.gen == nil {
		return DefaultPlan(topic)
	}
	raw, err := w.gen.GenerateText(ctx, promptstyle.ApplySystem(outlineSystemPrompt, promptstyle.ModeJSON), "Topic: "+strings.TrimSpace(topic))
	if err != nil {
		w.log.Warn("outline generation failed; using default outline", "topic", topic, "error", err)
		return DefaultPlan(topic)
	}
	plan, err := decodePlan(raw)
	if err != nil {
		w.log.Warn("outline unparseable; using default outline", "topic", topic, "error", err)
		return DefaultPlan(topic)
	}
	return plan
}

// WriteSections writes every planned section in order. A section whose
// generation fails keeps its summary as text so the document stays complete.
func (w *Writer) WriteSections(ctx context.Context, plan Plan) []Section {
	out := make([]Section, 0, len(plan.Sections))
	for i, ps := range plan.Sections {
		text := ""
		if w != nil && w.gen != nil && ctx.Err() == nil {
			user := fmt.Sprintf("Heading: %s\nGuidance: %s\nAudience: %s\nTone: %s",
				ps.Heading, ps.Summary, plan.Audience, plan.Tone)
			raw, err := w.gen.GenerateText(ctx, promptstyle.ApplySystem(sectionSystemPrompt, promptstyle.ModeProse), user)
			if err != nil {
				w.log.Warn("section generation failed", "section", i, "heading", ps.Heading, "error", err)
			}
			text = strings.TrimSpace(raw)
		}
		if text == "" {
			text = strings.TrimSpace(ps.Summary)
		}
		out = append(out, Section{Heading: ps.Heading, RawText: text, Enriched: text})
	}
	return out
}

// DefaultPlan is the fixed outline used whenever no usable one is generated.
func DefaultPlan(topic string) Plan {
	topic = strings.TrimSpace(topic)
	return Plan{
		Title: defaultTitle(topic),
		Sections: []PlanSection{
			{Heading: "Introduction", Summary: fmt.Sprintf("Overview of %s.", topic)},
			{Heading: "Core Concepts", Summary: fmt.Sprintf("Key ideas in %s.", topic)},
			{Heading: "Workflow", Summary: fmt.Sprintf("Typical architecture/workflow for %s.", topic)},
			{Heading: "Use Cases", Summary: fmt.Sprintf("Where %s is applied.", topic)},
			{Heading: "Challenges", Summary: "Limitations and caveats."},
			{Heading: "Conclusion", Summary: "Key takeaways and next steps."},
		},
		Audience: "Developers, PMs, Founders",
		Tone:     "informative",
	}
}

type rawPlan struct {
	Title          string        `json:"title"`
	Sections       []PlanSection `json:"sections"`
	TargetAudience string        `json:"target_audience"`
	Audience       string        `json:"audience"`
	Tone           string        `json:"tone"`
}

// decodePlan accepts fenced or bare JSON and rejects outlines without a title
// or without any headed section.
func decodePlan(raw string) (Plan, error) {
	rp, err := decodeFirstJSON[rawPlan](raw, '{')
	if err != nil {
		return Plan{}, fmt.Errorf("decode outline: %w", err)
	}
	plan := Plan{
		Title:    strings.TrimSpace(rp.Title),
		Audience: strings.TrimSpace(rp.TargetAudience),
		Tone:     strings.TrimSpace(rp.Tone),
	}
	if plan.Audience == "" {
		plan.Audience = strings.TrimSpace(rp.Audience)
	}
	if plan.Tone == "" {
		plan.Tone = "informative"
	}
	for _, s := range rp.Sections {
		h := strings.TrimSpace(s.Heading)
		if h == "" {
			continue
		}
		plan.Sections = append(plan.Sections, PlanSection{Heading: h, Summary: strings.TrimSpace(s.Summary)})
	}
	if plan.Title == "" {
		return Plan{}, fmt.Errorf("outline has no title")
	}
	if len(plan.Sections) == 0 {
		return Plan{}, fmt.Errorf("outline has no sections")
	}
	return plan, nil
}
