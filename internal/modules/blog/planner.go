package blog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
	"github.com/codoraai-coder/marketing-agent/internal/platform/promptstyle"
)

const (
	maxVisualsPerSection = 2
	planAttempts         = 2
)

const plannerSystemPrompt = `You plan illustrations for technical blog sections.
Return ONLY a JSON array (no prose, no code fences) of 0 to 2 objects:
[{"type": "diagram" | "image", "keywords": ["short", "search", "terms"], "after_paragraph": 0}]
Rules:
- "diagram" for architectures, flows and comparisons; "image" for photos and concepts.
- keywords are 2 to 5 concrete search terms that would find the visual on an image search engine.
- after_paragraph is the 0-based number of the paragraph the visual should follow.
- Return [] when the section does not benefit from a visual.`

// Planner decides which visuals a section needs and where they go.
type Planner struct {
	log *logger.Logger
	gen TextGenerator
}

func NewPlanner(log *logger.Logger, gen TextGenerator) *Planner {
	if log == nil {
		log = logger.Nop()
	}
	return &Planner{log: log.With("service", "VisualPlanner"), gen: gen}
}

// Plan returns at most two needs for the section. Any generation or decoding
// failure is retried once; after that the section simply gets no visuals.
func (p *Planner) Plan(ctx context.Context, sectionIndex int, heading, content string) []VisualNeed {
	if p == nil || p.gen == nil {
		return nil
	}
	user := plannerUserPrompt(heading, content)
	var lastErr error
	for attempt := 1; attempt <= planAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil
		}
		raw, err := p.gen.GenerateText(ctx, promptstyle.ApplySystem(plannerSystemPrompt, promptstyle.ModeJSON), user)
		if err != nil {
			lastErr = err
			p.log.Debug("visual plan generation failed", "section", sectionIndex, "attempt", attempt, "error", err)
			continue
		}
		needs, err := decodeVisualPlan(raw)
		if err != nil {
			lastErr = err
			p.log.Debug("visual plan decode failed", "section", sectionIndex, "attempt", attempt, "error", err)
			continue
		}
		for i := range needs {
			needs[i].SectionIndex = sectionIndex
			needs[i].NeedIndex = i
		}
		return needs
	}
	p.log.Warn("visual plan unavailable; section gets no visuals", "section", sectionIndex, "heading", heading, "error", lastErr)
	return nil
}

func plannerUserPrompt(heading, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SECTION HEADING: %s\n\nPARAGRAPHS:\n", strings.TrimSpace(heading))
	for i, p := range Paragraphs(content) {
		fmt.Fprintf(&b, "[%d] %s\n\n", i, p)
	}
	return strings.TrimSpace(b.String())
}

// keywordList accepts either ["a","b"] or "a b".
type keywordList string

func (k *keywordList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		*k = keywordList(strings.Join(parts, " "))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("keywords: expected string or list")
	}
	*k = keywordList(strings.Join(strings.Fields(s), " "))
	return nil
}

type rawVisual struct {
	Type           string      `json:"type"`
	Keywords       keywordList `json:"keywords"`
	AfterParagraph *int        `json:"after_paragraph"`
}

// candidateList is a JSON array of objects. Arrays of anything else, such as a
// "[1]" citation in surrounding prose, do not decode.
type candidateList []json.RawMessage

func (c *candidateList) UnmarshalJSON(b []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	for _, it := range items {
		if t := bytes.TrimSpace(it); len(t) == 0 || t[0] != '{' {
			return fmt.Errorf("planner candidates: expected objects")
		}
	}
	*c = items
	return nil
}

// decodeFirstJSON decodes the first value starting at an open byte that
// parses, ignoring prose and fences around it.
func decodeFirstJSON[T any](raw string, open byte) (T, error) {
	var firstErr error
	for i := 0; i < len(raw); i++ {
		if raw[i] != open {
			continue
		}
		var v T
		err := json.NewDecoder(strings.NewReader(raw[i:])).Decode(&v)
		if err == nil {
			return v, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	var zero T
	if firstErr == nil {
		firstErr = fmt.Errorf("no json value starting with %q", open)
	}
	return zero, firstErr
}

// decodeVisualPlan extracts the first JSON array from model output and keeps
// the candidates with a known type and non-empty keywords. No decodable array,
// or a non-empty array with nothing usable, is an error so the caller retries.
func decodeVisualPlan(raw string) ([]VisualNeed, error) {
	items, err := decodeFirstJSON[candidateList](raw, '[')
	if err != nil {
		return nil, fmt.Errorf("decode planner output: %w", err)
	}
	out := make([]VisualNeed, 0, maxVisualsPerSection)
	for _, item := range items {
		var rv rawVisual
		if err := json.Unmarshal(item, &rv); err != nil {
			continue
		}
		vt, ok := ParseVisualType(rv.Type)
		if !ok {
			continue
		}
		kw := strings.TrimSpace(string(rv.Keywords))
		if kw == "" {
			continue
		}
		after := 0
		if rv.AfterParagraph != nil {
			after = *rv.AfterParagraph
		}
		out = append(out, VisualNeed{Type: vt, Keywords: kw, AfterParagraph: after})
		if len(out) == maxVisualsPerSection {
			break
		}
	}
	if len(items) > 0 && len(out) == 0 {
		return nil, fmt.Errorf("planner output has no usable visuals")
	}
	return out, nil
}
