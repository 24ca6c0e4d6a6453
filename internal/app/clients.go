package app

import (
	"context"
	"fmt"

	"github.com/codoraai-coder/marketing-agent/internal/modules/blog"
	"github.com/codoraai-coder/marketing-agent/internal/platform/fetch"
	"github.com/codoraai-coder/marketing-agent/internal/platform/gcp"
	"github.com/codoraai-coder/marketing-agent/internal/platform/gemini"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
	"github.com/codoraai-coder/marketing-agent/internal/platform/openai"
	"github.com/codoraai-coder/marketing-agent/internal/platform/serpapi"
)

// LLM is what a text provider offers; both providers also synthesize images.
type LLM interface {
	blog.TextGenerator
	blog.ImageGenerator
}

type Clients struct {
	LLM    LLM
	Search *serpapi.Client
	Fetch  *fetch.Downloader
	Bucket gcp.BucketService
}

func wireLLM(ctx context.Context, log *logger.Logger, cfg LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		c, err := openai.NewClient(log, openai.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAIModel,
			ImageModel: cfg.OpenAIImageModel,
			MaxRetries: 2,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderGemini:
		c, err := gemini.New(ctx, log, gemini.Config{
			APIKey:     cfg.GeminiAPIKey,
			TextModel:  cfg.GeminiModel,
			ImageModel: cfg.GeminiImageModel,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}

func wireSearch(log *logger.Logger, cfg SearchConfig) *serpapi.Client {
	return serpapi.New(log, serpapi.Config{
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		SearchTimeout:   cfg.SearchTimeout,
		ValidateTimeout: cfg.KeyCheckTimeout,
	})
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...", "llm_provider", cfg.LLM.Provider, "uploads", cfg.Upload.Enabled)
	llm, err := wireLLM(ctx, log, cfg.LLM)
	if err != nil {
		return Clients{}, fmt.Errorf("init llm: %w", err)
	}
	out := Clients{
		LLM:    llm,
		Search: wireSearch(log, cfg.Search),
		Fetch: fetch.New(log, fetch.Config{
			UserAgent:    cfg.Search.UserAgent,
			Timeout:      cfg.Search.DownloadTimeout,
			BlockPrivate: true,
		}),
	}
	if cfg.Upload.Enabled {
		bucket, err := gcp.NewBucketService(ctx, log, cfg.Upload.Bucket)
		if err != nil {
			return Clients{}, fmt.Errorf("init bucket: %w", err)
		}
		out.Bucket = bucket
	}
	return out, nil
}
