package blog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/codoraai-coder/marketing-agent/internal/observability"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

const (
	EngineGoogleImages = "google_images"
	EngineBingImages   = "bing_images"
)

// Searcher returns the first usable direct asset URL for query on engine, or
// "" when the engine has nothing usable.
type Searcher interface {
	Search(ctx context.Context, query, engine string) (string, error)
}

type Downloader interface {
	Download(ctx context.Context, url, path string) error
}

// KeyValidator gates all retrieval on the search credential.
type KeyValidator interface {
	Valid(ctx context.Context) bool
	Reset()
}

// KeyChecker performs one live credential check.
type KeyChecker interface {
	ValidateKey(ctx context.Context) (bool, error)
}

// MemoizedValidator runs the check once and reuses the answer until Reset.
// Concurrent first callers share a single check.
type MemoizedValidator struct {
	log     *logger.Logger
	checker KeyChecker

	mu      sync.Mutex
	checked bool
	valid   bool
}

func NewMemoizedValidator(log *logger.Logger, checker KeyChecker) *MemoizedValidator {
	if log == nil {
		log = logger.Nop()
	}
	return &MemoizedValidator{log: log.With("service", "KeyValidator"), checker: checker}
}

func (v *MemoizedValidator) Valid(ctx context.Context) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.checked {
		return v.valid
	}
	ok := false
	if v.checker != nil {
		var err error
		ok, err = v.checker.ValidateKey(ctx)
		if err != nil {
			v.log.Warn("search key check failed", "error", err)
			ok = false
		}
	}
	if ctx.Err() != nil {
		// The caller gave up; that says nothing about the key.
		return false
	}
	v.valid, v.checked = ok, true
	if !ok {
		v.log.Warn("search key invalid; retrieval disabled until reset")
	}
	return ok
}

func (v *MemoizedValidator) Reset() {
	v.mu.Lock()
	v.checked, v.valid = false, false
	v.mu.Unlock()
}

type ResolverConfig struct {
	// Engines are tried in order for every query variant.
	Engines []string
	// FallbackEngines serve the broad "{topic} {type}" query.
	FallbackEngines []string
	Validator       KeyValidator
}

func (c ResolverConfig) withDefaults() ResolverConfig {
	if len(c.Engines) == 0 {
		c.Engines = []string{EngineGoogleImages, EngineBingImages}
	}
	if len(c.FallbackEngines) == 0 {
		c.FallbackEngines = []string{EngineGoogleImages}
	}
	return c
}

// Attempt records one (query, engine) step of a cascade.
type Attempt struct {
	Query    string `json:"query"`
	Engine   string `json:"engine"`
	Fallback bool   `json:"fallback,omitempty"`
	URL      string `json:"url,omitempty"`
	OK       bool   `json:"ok"`
}

type Resolver struct {
	log    *logger.Logger
	search Searcher
	fetch  Downloader
	cfg    ResolverConfig
}

func NewResolver(log *logger.Logger, search Searcher, fetch Downloader, cfg ResolverConfig) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		log:    log.With("service", "VisualResolver"),
		search: search,
		fetch:  fetch,
		cfg:    cfg.withDefaults(),
	}
}

// Resolve returns outputPath and true once any cascade step downloads an
// asset there. Errors never escape; exhaustion is reported as false.
func (r *Resolver) Resolve(ctx context.Context, topic, keywords string, vt VisualType, outputPath string) (string, bool) {
	path, _ := r.ResolveWithTrace(ctx, topic, keywords, vt, outputPath)
	observability.Current().IncVisualLookup(path != "")
	return path, path != ""
}

// ResolveWithTrace is Resolve plus the ordered list of attempts made.
func (r *Resolver) ResolveWithTrace(ctx context.Context, topic, keywords string, vt VisualType, outputPath string) (string, []Attempt) {
	ctx, span := otel.Tracer("blog").Start(ctx, "blog.resolve_visual",
		trace.WithAttributes(
			attribute.String("visual.keywords", keywords),
			attribute.String("visual.type", string(vt)),
		))
	defer span.End()

	attempts := []Attempt{}
	if r == nil || r.search == nil || r.fetch == nil {
		return "", attempts
	}
	if r.cfg.Validator != nil && !r.cfg.Validator.Valid(ctx) {
		span.SetAttributes(attribute.Bool("visual.key_valid", false))
		return "", attempts
	}

	try := func(query, engine string, fallback bool) bool {
		a := Attempt{Query: query, Engine: engine, Fallback: fallback}
		defer func() {
			attempts = append(attempts, a)
			span.AddEvent("attempt", trace.WithAttributes(
				attribute.String("query", a.Query),
				attribute.String("engine", a.Engine),
				attribute.Bool("ok", a.OK),
			))
		}()
		metrics := observability.Current()
		url, err := r.search.Search(ctx, query, engine)
		if err != nil {
			metrics.IncSearchCall(engine, "error")
			r.log.Debug("search failed", "query", query, "engine", engine, "error", err)
			return false
		}
		if url == "" {
			metrics.IncSearchCall(engine, "empty")
			r.log.Debug("search returned nothing usable", "query", query, "engine", engine)
			return false
		}
		a.URL = url
		if err := r.download(ctx, url, outputPath); err != nil {
			metrics.IncSearchCall(engine, "download_failed")
			r.log.Debug("download failed", "url", url, "engine", engine, "error", err)
			return false
		}
		metrics.IncSearchCall(engine, "hit")
		a.OK = true
		return true
	}

	for _, q := range QueryVariants(topic, keywords, vt) {
		for _, engine := range r.cfg.Engines {
			if ctx.Err() != nil {
				return "", attempts
			}
			if try(q, engine, false) {
				span.SetAttributes(attribute.Int("visual.attempts", len(attempts)))
				return outputPath, attempts
			}
		}
	}
	broad := joinQuery(topic, string(vt))
	for _, engine := range r.cfg.FallbackEngines {
		if ctx.Err() != nil {
			return "", attempts
		}
		if try(broad, engine, true) {
			span.SetAttributes(attribute.Int("visual.attempts", len(attempts)))
			return outputPath, attempts
		}
	}
	span.SetAttributes(attribute.Int("visual.attempts", len(attempts)))
	r.log.Warn("no visual found", "topic", topic, "keywords", keywords, "attempts", len(attempts))
	return "", attempts
}

func (r *Resolver) download(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}
	return r.fetch.Download(ctx, url, path)
}

// QueryVariants lists the cascade queries from most to least specific.
func QueryVariants(topic, keywords string, vt VisualType) []string {
	return []string{
		joinQuery(topic, keywords, string(vt)),
		joinQuery(topic, keywords),
		joinQuery(keywords),
	}
}

func joinQuery(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
