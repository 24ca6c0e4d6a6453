package app

import (
	"context"
	"fmt"

	"github.com/codoraai-coder/marketing-agent/internal/modules/blog"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
	"github.com/codoraai-coder/marketing-agent/internal/services"
)

// Pipeline is the blog stack without any transport or persistence around it.
type Pipeline struct {
	Builder   *blog.Builder
	Validator *blog.MemoizedValidator
	LLM       LLM
}

func wirePipeline(log *logger.Logger, cfg Config, clients Clients) (*Pipeline, error) {
	log.Info("Wiring blog pipeline...")
	validator := blog.NewMemoizedValidator(log, clients.Search)
	resolver := blog.NewResolver(log, clients.Search, clients.Fetch, blog.ResolverConfig{
		Engines:         cfg.Search.Engines,
		FallbackEngines: cfg.Search.FallbackEngines,
		Validator:       validator,
	})

	card, err := services.NewCoverService(log, services.CoverConfig{
		FontPath:  cfg.CoverFontPath,
		BrandText: cfg.Brand.Text,
		LogoPath:  cfg.Brand.LogoPath,
	})
	if err != nil {
		// The card is the last cover fallback; run without it.
		log.Warn("cover card disabled", "error", err)
	}

	deps := blog.BuilderDeps{
		Log:        log,
		Writer:     blog.NewWriter(log, clients.LLM),
		Planner:    blog.NewPlanner(log, clients.LLM),
		Resolver:   resolver,
		Assembler:  blog.NewAssembler(log, cfg.Brand, nil),
		OutputRoot: cfg.OutputRoot,
	}
	if cfg.LLM.ImageSynthesis {
		deps.Images = clients.LLM
	}
	if card != nil {
		deps.Card = card
	}
	builder, err := blog.NewBuilder(deps)
	if err != nil {
		return nil, err
	}
	return &Pipeline{Builder: builder, Validator: validator, LLM: clients.LLM}, nil
}

// NewPipeline builds the blog stack for command-line use: no database, no
// uploads, no HTTP.
func NewPipeline(ctx context.Context, log *logger.Logger, cfg Config) (*Pipeline, error) {
	cfg.Upload.Enabled = false
	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	p, err := wirePipeline(log, cfg, clients)
	if err != nil {
		return nil, fmt.Errorf("init pipeline: %w", err)
	}
	return p, nil
}

// NewKeyValidator returns a validator for the configured search key without
// wiring an LLM.
func NewKeyValidator(log *logger.Logger, cfg Config) *blog.MemoizedValidator {
	return blog.NewMemoizedValidator(log, wireSearch(log, cfg.Search))
}
