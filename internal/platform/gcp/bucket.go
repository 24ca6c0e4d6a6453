package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

type BucketCategory string

const (
	BucketCategoryDocument BucketCategory = "document"
	BucketCategoryCover    BucketCategory = "cover"
)

const defaultUploadTimeout = 2 * time.Minute

type BucketService interface {
	UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error
	GetPublicURL(category BucketCategory, key string) string
}

type BucketConfig struct {
	Storage        ObjectStorageConfig
	Credentials    string
	DocumentBucket string
	CoverBucket    string
	DocumentCDN    string
	CoverCDN       string
	// PublicBaseURL overrides the host used to build public object URLs.
	PublicBaseURL string
	UploadTimeout time.Duration
}

type bucketConfig struct {
	name      string
	cdnDomain string
}

type bucketService struct {
	log            *logger.Logger
	storageClient  *storage.Client
	storageMode    ObjectStorageMode
	emulatorHost   string
	documentBucket bucketConfig
	coverBucket    bucketConfig
	publicBaseURL  string
	uploadTimeout  time.Duration
}

func NewBucketService(ctx context.Context, log *logger.Logger, cfg BucketConfig) (BucketService, error) {
	if err := ValidateObjectStorageConfig(cfg.Storage); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	if strings.TrimSpace(cfg.DocumentBucket) == "" {
		return nil, fmt.Errorf("missing document bucket name")
	}
	if strings.TrimSpace(cfg.CoverBucket) == "" {
		return nil, fmt.Errorf("missing cover bucket name")
	}
	publicBaseURL, publicBaseSource, err := resolvePublicBaseURL(cfg.PublicBaseURL, cfg.Storage)
	if err != nil {
		return nil, err
	}

	stClient, err := newStorageClientForMode(ctx, cfg.Storage, cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog := log.With("service", "BucketService")
	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Storage.Mode,
		"mode_source", cfg.Storage.ModeSource(),
		"emulator_host", cfg.Storage.EmulatorHost,
		"public_base_source", publicBaseSource,
		"document_bucket", cfg.DocumentBucket,
		"cover_bucket", cfg.CoverBucket,
	)

	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	return &bucketService{
		log:            serviceLog,
		storageClient:  stClient,
		storageMode:    cfg.Storage.Mode,
		emulatorHost:   cfg.Storage.EmulatorHost,
		documentBucket: bucketConfig{name: cfg.DocumentBucket, cdnDomain: cfg.DocumentCDN},
		coverBucket:    bucketConfig{name: cfg.CoverBucket, cdnDomain: cfg.CoverCDN},
		publicBaseURL:  publicBaseURL,
		uploadTimeout:  timeout,
	}, nil
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig, creds string) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptions(creds)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		// The storage client only honours the emulator through the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func resolvePublicBaseURL(raw string, cfg ObjectStorageConfig) (baseURL string, source string, err error) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		parsed, parseErr := url.Parse(raw)
		if parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
			return "", "", fmt.Errorf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443", raw)
		}
		return strings.TrimRight(raw, "/"), "object_storage_public_base_url", nil
	}
	if cfg.IsEmulatorMode() {
		return cfg.EmulatorHost, "storage_emulator_host", nil
	}
	return "", "gcs_default", nil
}

func (bs *bucketService) getBucketConfig(category BucketCategory) (bucketConfig, error) {
	switch category {
	case BucketCategoryDocument:
		return bs.documentBucket, nil
	case BucketCategoryCover:
		return bs.coverBucket, nil
	default:
		return bucketConfig{}, fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, bs.uploadTimeout)
	defer cancel()

	w := bs.storageClient.Bucket(cfg.name).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	bs.log.Debug("object uploaded", "bucket", cfg.name, "key", key)
	return nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.cdnDomain, key)
	}
	if bs.storageMode == ObjectStorageModeGCSEmulator {
		if u := bs.emulatorMediaURL(cfg.name, key); u != "" {
			return u
		}
	}
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, cfg.name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}

func (bs *bucketService) emulatorMediaURL(bucket, key string) string {
	base := strings.TrimRight(bs.publicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(bs.emulatorHost, "/")
	}
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(bucket), url.PathEscape(key))
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return ""
	}
}
