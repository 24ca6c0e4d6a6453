package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/codoraai-coder/marketing-agent/internal/data/repos/runs"
	types "github.com/codoraai-coder/marketing-agent/internal/domain"
	"github.com/codoraai-coder/marketing-agent/internal/modules/blog"
	"github.com/codoraai-coder/marketing-agent/internal/observability"
	"github.com/codoraai-coder/marketing-agent/internal/platform/apierr"
	"github.com/codoraai-coder/marketing-agent/internal/platform/gcp"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

// BlogBuilder is the pipeline entry point; *blog.Builder satisfies it.
type BlogBuilder interface {
	Build(ctx context.Context, topic string) (blog.Result, error)
}

type BlogService interface {
	Generate(ctx context.Context, topic string) (*GenerateResult, error)
	GetRun(ctx context.Context, runID string) (*types.BlogRun, error)
	ListRuns(ctx context.Context, limit int) ([]*types.BlogRun, error)
}

type GenerateResult struct {
	RunID     string                `json:"run_id"`
	Topic     string                `json:"topic"`
	Title     string                `json:"title"`
	DocxPath  string                `json:"docx_path"`
	CoverPath string                `json:"cover_path,omitempty"`
	AssetsDir string                `json:"assets_dir"`
	DocxURL   string                `json:"docx_url,omitempty"`
	CoverURL  string                `json:"cover_url,omitempty"`
	Visuals   []blog.ResolvedVisual `json:"visuals"`
	Manifest  []blog.ManifestEntry  `json:"manifest"`
}

type blogService struct {
	log     *logger.Logger
	builder BlogBuilder
	bucket  gcp.BucketService
	repo    runs.BlogRunRepo
}

// NewBlogService wires the pipeline to storage. bucket may be nil, in which
// case artifacts stay local and no URLs are returned.
func NewBlogService(log *logger.Logger, builder BlogBuilder, bucket gcp.BucketService, repo runs.BlogRunRepo) (BlogService, error) {
	if builder == nil || repo == nil {
		return nil, fmt.Errorf("blog service: missing deps")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &blogService{
		log:     log.With("service", "BlogService"),
		builder: builder,
		bucket:  bucket,
		repo:    repo,
	}, nil
}

func (s *blogService) Generate(ctx context.Context, topic string) (*GenerateResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apierr.BadRequest("missing_topic", fmt.Errorf("topic is required"))
	}
	res, err := s.builder.Build(ctx, topic)
	if err != nil {
		s.log.Error("blog build failed", "topic", topic, "error", err)
		return nil, apierr.Internal("build_failed", err)
	}

	out := &GenerateResult{
		RunID:     res.RunID,
		Topic:     topic,
		Title:     res.Title,
		DocxPath:  res.DocumentPath,
		CoverPath: res.CoverPath,
		AssetsDir: res.AssetsDir,
		Visuals:   res.Visuals,
		Manifest:  res.Manifest,
	}
	out.DocxURL, out.CoverURL = s.upload(ctx, res)

	if err := s.repo.Create(ctx, runRecord(topic, res, out)); err != nil {
		return nil, apierr.Internal("persist_failed", err)
	}
	return out, nil
}

// upload pushes the document and cover concurrently. A failed upload is
// logged, leaves its URL empty and does not cancel the other.
func (s *blogService) upload(ctx context.Context, res blog.Result) (docURL, coverURL string) {
	if s.bucket == nil {
		return "", ""
	}
	var g errgroup.Group
	g.Go(func() error {
		u, err := s.uploadFile(ctx, gcp.BucketCategoryDocument, res.RunID, res.DocumentPath)
		docURL = u
		return err
	})
	if res.CoverPath != "" {
		g.Go(func() error {
			u, err := s.uploadFile(ctx, gcp.BucketCategoryCover, res.RunID, res.CoverPath)
			coverURL = u
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Warn("artifact upload incomplete", "run_id", res.RunID, "error", err)
	}
	return docURL, coverURL
}

func (s *blogService) uploadFile(ctx context.Context, category gcp.BucketCategory, runID, path string) (string, error) {
	metrics := observability.Current()
	f, err := os.Open(path)
	if err != nil {
		metrics.IncUpload(string(category), "error")
		return "", fmt.Errorf("open %s: %w", category, err)
	}
	defer f.Close()

	key := ObjectKey(runID, path)
	if err := s.bucket.UploadFile(ctx, category, key, f); err != nil {
		metrics.IncUpload(string(category), "error")
		return "", fmt.Errorf("upload %s: %w", category, err)
	}
	metrics.IncUpload(string(category), "ok")
	return s.bucket.GetPublicURL(category, key), nil
}

// ObjectKey places every artifact of a run under runs/{runID}/.
func ObjectKey(runID, path string) string {
	return "runs/" + runID + "/" + filepath.Base(path)
}

func runRecord(topic string, res blog.Result, out *GenerateResult) *types.BlogRun {
	found := 0
	for _, v := range res.Visuals {
		if v.Found() {
			found++
		}
	}
	manifest, err := json.Marshal(res.Manifest)
	if err != nil {
		manifest = []byte("[]")
	}
	return &types.BlogRun{
		RunID:          res.RunID,
		Topic:          topic,
		Title:          res.Title,
		Status:         types.BlogRunSucceeded,
		DocumentPath:   res.DocumentPath,
		CoverPath:      res.CoverPath,
		AssetsDir:      res.AssetsDir,
		DocumentURL:    out.DocxURL,
		CoverURL:       out.CoverURL,
		VisualsPlanned: len(res.Visuals),
		VisualsFound:   found,
		Manifest:       datatypes.JSON(manifest),
	}
}

func (s *blogService) GetRun(ctx context.Context, runID string) (*types.BlogRun, error) {
	return s.repo.GetByRunID(ctx, runID)
}

func (s *blogService) ListRuns(ctx context.Context, limit int) ([]*types.BlogRun, error) {
	return s.repo.ListRecent(ctx, limit)
}
