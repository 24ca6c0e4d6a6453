// Package gemini adapts the Google GenAI SDK to the text and image generation
// contracts used by the blog pipeline.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/codoraai-coder/marketing-agent/internal/platform/ctxutil"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

const (
	DefaultTextModel  = "gemini-2.0-flash"
	DefaultImageModel = "gemini-2.5-flash-image"
)

type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
}

type Client struct {
	log *logger.Logger
	gc  *genai.Client
	cfg Config
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: missing GEMINI_API_KEY")
	}
	if strings.TrimSpace(cfg.TextModel) == "" {
		cfg.TextModel = DefaultTextModel
	}
	if strings.TrimSpace(cfg.ImageModel) == "" {
		cfg.ImageModel = DefaultImageModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{log: log.With("client", "Gemini"), gc: gc, cfg: cfg}, nil
}

func (c *Client) GenerateText(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := ctxutil.WithOptionalTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	start := time.Now()
	resp, err := c.gc.Models.GenerateContent(ctx, c.cfg.TextModel, genai.Text(user), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	c.log.Debug("gemini text", "model", c.cfg.TextModel, "chars", len(text), "latency_ms", time.Since(start).Milliseconds())
	if text == "" {
		return "", errors.New("gemini generate: empty response")
	}
	return text, nil
}

// GenerateImage returns the first inline image part of the response.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	ctx, cancel := ctxutil.WithOptionalTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.gc.Models.GenerateContent(ctx, c.cfg.ImageModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image: %w", err)
	}
	if img := firstInlineImage(resp); len(img) > 0 {
		return img, nil
	}
	return nil, errors.New("gemini image: no image in response")
}

func firstInlineImage(resp *genai.GenerateContentResponse) []byte {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil {
				continue
			}
			if strings.HasPrefix(part.InlineData.MIMEType, "image/") && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}
