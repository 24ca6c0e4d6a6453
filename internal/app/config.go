package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codoraai-coder/marketing-agent/internal/data/db"
	"github.com/codoraai-coder/marketing-agent/internal/modules/blog"
	"github.com/codoraai-coder/marketing-agent/internal/observability"
	"github.com/codoraai-coder/marketing-agent/internal/platform/envutil"
	"github.com/codoraai-coder/marketing-agent/internal/platform/gcp"
	"github.com/codoraai-coder/marketing-agent/internal/platform/serpapi"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type SearchConfig struct {
	APIKey          string        `yaml:"-"`
	BaseURL         string        `yaml:"base_url"`
	Engines         []string      `yaml:"engines"`
	FallbackEngines []string      `yaml:"fallback_engines"`
	SearchTimeout   time.Duration `yaml:"-"`
	DownloadTimeout time.Duration `yaml:"-"`
	KeyCheckTimeout time.Duration `yaml:"-"`
	UserAgent       string        `yaml:"user_agent"`
}

type LLMConfig struct {
	Provider         string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	OpenAIImageModel string
	// ImageSynthesis enables the generated-cover fallback.
	ImageSynthesis bool
}

type DBConfig struct {
	Driver string
	DSN    string
}

type UploadConfig struct {
	Enabled bool
	Bucket  gcp.BucketConfig
}

type Config struct {
	Environment string
	LogMode     string
	Port        string
	OutputRoot  string
	CORSOrigins []string

	Search        SearchConfig
	LLM           LLMConfig
	Brand         blog.Branding
	CoverFontPath string
	DB            DBConfig
	Upload        UploadConfig
	Otel          observability.OtelConfig
	Metrics       bool
}

// overlay is the subset of Config a CONFIG_PATH file may override.
type overlay struct {
	Brand       blog.Branding `yaml:"brand"`
	Search      SearchConfig  `yaml:"search"`
	CORSOrigins []string      `yaml:"cors_origins"`
	CoverFont   string        `yaml:"cover_font_path"`
}

// LoadConfig reads the environment and then applies the optional YAML file
// named by CONFIG_PATH. Non-empty file values win over the environment.
func LoadConfig() (Config, error) {
	storage, err := gcp.ResolveObjectStorageConfig(
		envutil.String("OBJECT_STORAGE_MODE", ""),
		envutil.String("STORAGE_EMULATOR_HOST", ""),
	)
	uploads := envutil.Bool("UPLOAD_ENABLED", false)
	if err != nil && uploads {
		return Config{}, fmt.Errorf("object storage: %w", err)
	}

	cfg := Config{
		Environment: envutil.String("APP_ENV", "development"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		Port:        envutil.String("PORT", "8080"),
		OutputRoot:  envutil.String("OUTPUT_ROOT", blog.DefaultOutputRoot),
		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
		Search: SearchConfig{
			APIKey:          envutil.String("SERP_API_KEY", ""),
			BaseURL:         envutil.String("SERP_API_BASE_URL", serpapi.DefaultBaseURL),
			Engines:         envutil.List("SEARCH_ENGINES", []string{blog.EngineGoogleImages, blog.EngineBingImages}),
			FallbackEngines: envutil.List("SEARCH_FALLBACK_ENGINES", []string{blog.EngineGoogleImages}),
			SearchTimeout:   envutil.Seconds("SEARCH_TIMEOUT_SECONDS", 30*time.Second),
			DownloadTimeout: envutil.Seconds("DOWNLOAD_TIMEOUT_SECONDS", 30*time.Second),
			KeyCheckTimeout: envutil.Seconds("KEY_CHECK_TIMEOUT_SECONDS", 10*time.Second),
			UserAgent:       envutil.String("DOWNLOAD_USER_AGENT", ""),
		},
		LLM: LLMConfig{
			Provider:         strings.ToLower(envutil.String("LLM_PROVIDER", ProviderGemini)),
			GeminiAPIKey:     envutil.String("GEMINI_API_KEY", ""),
			GeminiModel:      envutil.String("GEMINI_MODEL", ""),
			GeminiImageModel: envutil.String("GEMINI_IMAGE_MODEL", ""),
			OpenAIAPIKey:     envutil.String("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    envutil.String("OPENAI_BASE_URL", ""),
			OpenAIModel:      envutil.String("OPENAI_MODEL", ""),
			OpenAIImageModel: envutil.String("OPENAI_IMAGE_MODEL", ""),
			ImageSynthesis:   envutil.Bool("IMAGE_SYNTHESIS_ENABLED", true),
		},
		Brand: blog.Branding{
			Text:     envutil.String("BRAND_TEXT", blog.DefaultBrandText),
			URL:      envutil.String("BRAND_URL", blog.DefaultBrandURL),
			LogoPath: envutil.String("BRAND_LOGO_PATH", ""),
		},
		CoverFontPath: envutil.String("COVER_FONT_PATH", ""),
		DB: DBConfig{
			Driver: envutil.String("DB_DRIVER", db.DriverSQLite),
			DSN:    envutil.String("DB_DSN", "marketing_agent.db"),
		},
		Upload: UploadConfig{
			Enabled: uploads,
			Bucket: gcp.BucketConfig{
				Storage:        storage,
				Credentials:    envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "")),
				DocumentBucket: envutil.String("DOCUMENT_GCS_BUCKET_NAME", ""),
				CoverBucket:    envutil.String("COVER_GCS_BUCKET_NAME", ""),
				DocumentCDN:    envutil.String("DOCUMENT_CDN_DOMAIN", ""),
				CoverCDN:       envutil.String("COVER_CDN_DOMAIN", ""),
				PublicBaseURL:  envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", ""),
				UploadTimeout:  envutil.Seconds("UPLOAD_TIMEOUT_SECONDS", 2*time.Minute),
			},
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "marketing-agent"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
		},
		Metrics: envutil.Bool("METRICS_ENABLED", true),
	}

	if path := envutil.String("CONFIG_PATH", ""); path != "" {
		if err := cfg.applyOverlayFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyOverlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var ov overlay
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.applyOverlay(ov)
	return nil
}

func (c *Config) applyOverlay(ov overlay) {
	setString(&c.Brand.Text, ov.Brand.Text)
	setString(&c.Brand.URL, ov.Brand.URL)
	setString(&c.Brand.LogoPath, ov.Brand.LogoPath)
	setString(&c.Search.BaseURL, ov.Search.BaseURL)
	setString(&c.Search.UserAgent, ov.Search.UserAgent)
	setString(&c.CoverFontPath, ov.CoverFont)
	if len(ov.Search.Engines) > 0 {
		c.Search.Engines = ov.Search.Engines
	}
	if len(ov.Search.FallbackEngines) > 0 {
		c.Search.FallbackEngines = ov.Search.FallbackEngines
	}
	if len(ov.CORSOrigins) > 0 {
		c.CORSOrigins = ov.CORSOrigins
	}
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func (c Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (allowed: %q, %q)", c.LLM.Provider, ProviderGemini, ProviderOpenAI)
	}
	for _, e := range append(append([]string{}, c.Search.Engines...), c.Search.FallbackEngines...) {
		if e != blog.EngineGoogleImages && e != blog.EngineBingImages {
			return fmt.Errorf("unsupported search engine %q", e)
		}
	}
	if c.Upload.Enabled {
		if c.Upload.Bucket.DocumentBucket == "" || c.Upload.Bucket.CoverBucket == "" {
			return fmt.Errorf("UPLOAD_ENABLED requires DOCUMENT_GCS_BUCKET_NAME and COVER_GCS_BUCKET_NAME")
		}
	}
	return nil
}
