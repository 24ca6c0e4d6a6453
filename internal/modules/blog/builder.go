package blog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/codoraai-coder/marketing-agent/internal/observability"
	"github.com/codoraai-coder/marketing-agent/internal/platform/ctxutil"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

const coverKeywords = "technology abstract cover"

// CoverRenderer draws a typographic cover when nothing else produced one.
type CoverRenderer interface {
	RenderCover(ctx context.Context, title, subtitle, path string) error
}

type BuilderDeps struct {
	Log       *logger.Logger
	Writer    *Writer
	Planner   *Planner
	Resolver  *Resolver
	Assembler *Assembler

	// Optional cover fallbacks, tried in this order.
	Images ImageGenerator
	Card   CoverRenderer

	OutputRoot string
	Now        func() time.Time
}

type Builder struct {
	deps BuilderDeps
	log  *logger.Logger
}

func NewBuilder(deps BuilderDeps) (*Builder, error) {
	if deps.Writer == nil || deps.Planner == nil || deps.Resolver == nil || deps.Assembler == nil {
		return nil, fmt.Errorf("blog builder: missing deps")
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Builder{deps: deps, log: deps.Log.With("service", "BlogBuilder")}, nil
}

type Result struct {
	RunID        string           `json:"run_id"`
	Title        string           `json:"title"`
	DocumentPath string           `json:"docx_path"`
	CoverPath    string           `json:"cover_path,omitempty"`
	AssetsDir    string           `json:"assets_dir"`
	Visuals      []ResolvedVisual `json:"visuals"`
	Manifest     []ManifestEntry  `json:"manifest"`
}

// Build runs the whole pipeline for topic inside a fresh run namespace.
func (b *Builder) Build(ctx context.Context, topic string) (Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Result{}, fmt.Errorf("blog builder: empty topic")
	}
	run := NewRun(b.deps.OutputRoot)
	log := b.log.With(ctxutil.LogFields(ctx)...).With("run_id", run.ID, "topic", topic)
	ctxutil.SetRunID(ctx, run.ID)

	start := time.Now()
	status := "error"
	defer func() { observability.Current().ObserveBlogRun(status, time.Since(start)) }()

	ctx, span := otel.Tracer("blog").Start(ctx, "blog.build")
	defer span.End()
	span.SetAttributes(attribute.String("blog.run_id", run.ID), attribute.String("blog.topic", topic))

	if err := os.MkdirAll(run.AssetsDir(), 0o755); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("create assets dir: %w", err)
	}
	manifest := &Manifest{}

	log.Info("planning outline")
	plan := b.deps.Writer.Outline(ctx, topic)

	log.Info("writing sections", "count", len(plan.Sections))
	sections := b.deps.Writer.WriteSections(ctx, plan)

	cover := b.resolveCover(ctx, run, topic, plan, log)
	manifest.Add(RoleCover, cover)

	visuals := []ResolvedVisual{}
	for i := range sections {
		resolved := b.enrichSection(ctx, run, topic, i, &sections[i])
		for _, rv := range resolved {
			manifest.Add(RoleSectionVisual, rv.LocalPath)
		}
		visuals = append(visuals, resolved...)
	}

	docPath, err := b.deps.Assembler.Assemble(ctx, AssembleInput{
		Run:       run,
		Plan:      plan,
		Sections:  sections,
		CoverPath: cover,
		Topic:     topic,
		Published: b.deps.Now(),
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.Error("document assembly failed", "error", err)
		return Result{}, err
	}
	manifest.Add(RoleDocument, docPath)

	found := 0
	for _, v := range visuals {
		if v.Found() {
			found++
		}
	}
	span.SetAttributes(attribute.Int("blog.visuals_planned", len(visuals)), attribute.Int("blog.visuals_found", found))
	log.Info("blog built", "path", docPath, "visuals_planned", len(visuals), "visuals_found", found)
	status = "ok"

	return Result{
		RunID:        run.ID,
		Title:        plan.Title,
		DocumentPath: docPath,
		CoverPath:    cover,
		AssetsDir:    run.AssetsDir(),
		Visuals:      visuals,
		Manifest:     manifest.Entries(),
	}, nil
}

// enrichSection resolves and splices the section's needs in planned order,
// each against the text already holding earlier insertions.
func (b *Builder) enrichSection(ctx context.Context, run RunContext, topic string, idx int, sec *Section) []ResolvedVisual {
	needs := b.deps.Planner.Plan(ctx, idx, sec.Heading, sec.RawText)
	out := make([]ResolvedVisual, 0, len(needs))
	text := sec.RawText
	for _, need := range needs {
		target := run.NameFor(RoleSectionVisual, need.SectionIndex, need.NeedIndex, need.Keywords)
		rv := ResolvedVisual{Need: need}
		var marker string
		if path, ok := b.deps.Resolver.Resolve(ctx, topic, need.Keywords, need.Type, target); ok {
			rv.LocalPath = path
			marker = ImageMarker(need.Keywords, run.Rel(path))
		} else {
			marker = MissingMarker(need.Keywords)
		}
		text = Splice(text, marker, need.AfterParagraph)
		out = append(out, rv)
	}
	sec.Enriched = text
	return out
}

// resolveCover tries retrieval, then synthesis, then the typographic card.
// An empty result means the document goes out without a cover.
func (b *Builder) resolveCover(ctx context.Context, run RunContext, topic string, plan Plan, log *logger.Logger) string {
	target := run.NameFor(RoleCover, 0, 0, "")
	metrics := observability.Current()
	if path, ok := b.deps.Resolver.Resolve(ctx, topic, coverKeywords, VisualImage, target); ok {
		metrics.IncCoverSource("search")
		return path
	}
	if b.deps.Images != nil {
		img, err := b.deps.Images.GenerateImage(ctx, coverPrompt(topic, plan))
		if err == nil && len(img) > 0 {
			if err = writeAsset(target, img); err == nil {
				log.Info("cover synthesized", "path", target)
				metrics.IncCoverSource("generated")
				return target
			}
		}
		log.Warn("cover synthesis failed", "error", err)
	}
	if b.deps.Card != nil {
		title := plan.Title
		if strings.TrimSpace(title) == "" {
			title = defaultTitle(topic)
		}
		err := b.deps.Card.RenderCover(ctx, title, topic, target)
		if err == nil {
			log.Info("cover card rendered", "path", target)
			metrics.IncCoverSource("card")
			return target
		}
		log.Warn("cover card failed", "error", err)
	}
	log.Warn("no cover available")
	metrics.IncCoverSource("none")
	return ""
}

func coverPrompt(topic string, plan Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A realistic, editorial cover photograph for a technology blog post about %s.", strings.TrimSpace(topic))
	if len(plan.Sections) > 0 {
		b.WriteString(" The post covers: ")
		heads := make([]string, 0, len(plan.Sections))
		for _, s := range plan.Sections {
			heads = append(heads, s.Heading)
		}
		b.WriteString(strings.Join(heads, ", "))
		b.WriteString(".")
	}
	b.WriteString(" Wide composition, no text or lettering in the image.")
	return b.String()
}

func writeAsset(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
