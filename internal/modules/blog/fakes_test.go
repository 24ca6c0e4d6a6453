package blog

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/codoraai-coder/marketing-agent/internal/platform/docx"
)

type searchCall struct {
	Query  string
	Engine string
}

// fakeSearcher answers from a (query, engine) table; everything else is empty.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[searchCall]string
	errs    map[searchCall]error
	calls   []searchCall
}

func (f *fakeSearcher) Search(_ context.Context, query, engine string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := searchCall{Query: query, Engine: engine}
	f.calls = append(f.calls, c)
	if err := f.errs[c]; err != nil {
		return "", err
	}
	return f.results[c], nil
}

func (f *fakeSearcher) Calls() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchCall(nil), f.calls...)
}

// fakeDownloader writes a small PNG for every URL not listed in fail.
type fakeDownloader struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeDownloader) Download(_ context.Context, url, path string) error {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	failed := f.fail[url]
	f.mu.Unlock()
	if failed {
		return errors.New("download refused")
	}
	return writeTestPNG(path)
}

func writeTestPNG(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	return png.Encode(fh, image.NewRGBA(image.Rect(0, 0, 4, 2)))
}

type staticValidator struct {
	valid bool
}

func (v staticValidator) Valid(context.Context) bool { return v.valid }
func (v staticValidator) Reset()                     {}

// scriptedGen answers by matching a fragment of the system prompt.
type scriptedGen struct {
	mu       sync.Mutex
	byRole   map[string][]string
	errs     map[string]error
	calls    map[string]int
	fallback string
}

func (g *scriptedGen) GenerateText(_ context.Context, system, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.calls == nil {
		g.calls = map[string]int{}
	}
	role := promptRole(system)
	n := g.calls[role]
	g.calls[role] = n + 1
	if err := g.errs[role]; err != nil {
		return "", err
	}
	answers := g.byRole[role]
	if len(answers) == 0 {
		return g.fallback, nil
	}
	if n >= len(answers) {
		n = len(answers) - 1
	}
	return answers[n], nil
}

func (g *scriptedGen) Calls(role string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[role]
}

func promptRole(system string) string {
	switch {
	case strings.HasSuffix(system, outlineSystemPrompt):
		return "outline"
	case strings.HasSuffix(system, sectionSystemPrompt):
		return "section"
	case strings.HasSuffix(system, plannerSystemPrompt):
		return "planner"
	default:
		return "other"
	}
}

type containerOp struct {
	Kind  string
	Text  string
	Level int
	Style docx.Style
	Align docx.Alignment
	Width float64
	Runs  []docx.Run
}

// recordingContainer captures the block stream handed to the document.
type recordingContainer struct {
	ops     []containerOp
	saved   string
	saveErr error
	footer  *docx.Footer
}

func (c *recordingContainer) AddHeading(text string, level int) {
	c.ops = append(c.ops, containerOp{Kind: "heading", Text: text, Level: level})
}

func (c *recordingContainer) AddParagraph(style docx.Style, align docx.Alignment, runs ...docx.Run) {
	parts := make([]string, 0, len(runs))
	for _, r := range runs {
		parts = append(parts, r.Text)
	}
	c.ops = append(c.ops, containerOp{Kind: "paragraph", Text: strings.Join(parts, ""), Style: style, Align: align, Runs: runs})
}

func (c *recordingContainer) AddPicture(path string, width float64, align docx.Alignment) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	c.ops = append(c.ops, containerOp{Kind: "picture", Text: path, Width: width, Align: align})
	return nil
}

func (c *recordingContainer) SetFooter(f docx.Footer) error {
	if f.LogoPath != "" {
		if _, err := os.Stat(f.LogoPath); err != nil {
			return err
		}
	}
	c.footer = &f
	return nil
}

func (c *recordingContainer) Save(path string) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saved = path
	return nil
}

func (c *recordingContainer) kinds() []string {
	out := make([]string, 0, len(c.ops))
	for _, op := range c.ops {
		out = append(out, op.Kind)
	}
	return out
}

func mustBuilder(t *testing.T, deps BuilderDeps) *Builder {
	t.Helper()
	b, err := NewBuilder(deps)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}
