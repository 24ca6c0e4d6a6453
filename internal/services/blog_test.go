package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codoraai-coder/marketing-agent/internal/data/repos/runs"
	"github.com/codoraai-coder/marketing-agent/internal/data/repos/testutil"
	types "github.com/codoraai-coder/marketing-agent/internal/domain"
	"github.com/codoraai-coder/marketing-agent/internal/modules/blog"
	"github.com/codoraai-coder/marketing-agent/internal/platform/apierr"
	"github.com/codoraai-coder/marketing-agent/internal/platform/gcp"
)

type fakeBuilder struct {
	dir   string
	err   error
	cover bool
}

func (f *fakeBuilder) Build(ctx context.Context, topic string) (blog.Result, error) {
	if f.err != nil {
		return blog.Result{}, f.err
	}
	doc := filepath.Join(f.dir, "blog_run123.docx")
	if err := os.WriteFile(doc, []byte("docx"), 0o644); err != nil {
		return blog.Result{}, err
	}
	res := blog.Result{
		RunID:        "run123",
		Title:        "Understanding " + topic,
		DocumentPath: doc,
		AssetsDir:    filepath.Join(f.dir, "assets"),
		Visuals: []blog.ResolvedVisual{
			{Need: blog.VisualNeed{Keywords: "a"}, LocalPath: "x.png"},
			{Need: blog.VisualNeed{Keywords: "b"}},
		},
		Manifest: []blog.ManifestEntry{{Role: blog.RoleDocument, Path: doc}},
	}
	if f.cover {
		cover := filepath.Join(f.dir, "assets", "cover_run123.png")
		_ = os.MkdirAll(filepath.Dir(cover), 0o755)
		if err := os.WriteFile(cover, []byte("png"), 0o644); err != nil {
			return blog.Result{}, err
		}
		res.CoverPath = cover
	}
	return res, nil
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]string
	fail    map[gcp.BucketCategory]bool
}

func (b *fakeBucket) UploadFile(ctx context.Context, category gcp.BucketCategory, key string, file io.Reader) error {
	if b.fail[category] {
		return errors.New("bucket unavailable")
	}
	raw, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		b.objects = map[string]string{}
	}
	b.objects[string(category)+":"+key] = string(raw)
	return nil
}

func (b *fakeBucket) GetPublicURL(category gcp.BucketCategory, key string) string {
	return fmt.Sprintf("https://cdn.test/%s/%s", category, key)
}

func newTestService(t *testing.T, builder BlogBuilder, bucket gcp.BucketService) (BlogService, runs.BlogRunRepo) {
	t.Helper()
	repo := runs.NewBlogRunRepo(testutil.DB(t), nil)
	svc, err := NewBlogService(nil, builder, bucket, repo)
	if err != nil {
		t.Fatalf("NewBlogService: %v", err)
	}
	return svc, repo
}

func TestGenerateUploadsAndPersists(t *testing.T) {
	bucket := &fakeBucket{}
	svc, repo := newTestService(t, &fakeBuilder{dir: t.TempDir(), cover: true}, bucket)

	out, err := svc.Generate(context.Background(), "  graph databases ")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Topic != "graph databases" || out.RunID != "run123" {
		t.Fatalf("unexpected result: %+v", out)
	}
	if out.DocxURL != "https://cdn.test/document/runs/run123/blog_run123.docx" {
		t.Fatalf("docx url: %q", out.DocxURL)
	}
	if out.CoverURL != "https://cdn.test/cover/runs/run123/cover_run123.png" {
		t.Fatalf("cover url: %q", out.CoverURL)
	}
	want := map[string]string{
		"document:runs/run123/blog_run123.docx": "docx",
		"cover:runs/run123/cover_run123.png":    "png",
	}
	if diff := cmp.Diff(want, bucket.objects); diff != "" {
		t.Fatalf("uploaded objects mismatch (-want +got):\n%s", diff)
	}

	rec, err := repo.GetByRunID(context.Background(), "run123")
	if err != nil || rec == nil {
		t.Fatalf("GetByRunID: %v %v", rec, err)
	}
	if rec.Status != types.BlogRunSucceeded || rec.VisualsPlanned != 2 || rec.VisualsFound != 1 {
		t.Fatalf("record: %+v", rec)
	}
	if rec.DocumentURL != out.DocxURL || rec.CoverURL != out.CoverURL {
		t.Fatalf("record urls: %+v", rec)
	}
}

func TestGenerateWithoutBucketKeepsArtifactsLocal(t *testing.T) {
	svc, _ := newTestService(t, &fakeBuilder{dir: t.TempDir()}, nil)
	out, err := svc.Generate(context.Background(), "graph databases")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.DocxURL != "" || out.CoverURL != "" {
		t.Fatalf("expected no urls: %+v", out)
	}
	list, err := svc.ListRuns(context.Background(), 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListRuns: %v %v", list, err)
	}
}

func TestGenerateUploadFailureIsNotFatal(t *testing.T) {
	bucket := &fakeBucket{fail: map[gcp.BucketCategory]bool{gcp.BucketCategoryDocument: true}}
	svc, _ := newTestService(t, &fakeBuilder{dir: t.TempDir(), cover: true}, bucket)
	out, err := svc.Generate(context.Background(), "graph databases")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.DocxURL != "" {
		t.Fatalf("docx url should be empty: %q", out.DocxURL)
	}
	if out.CoverURL == "" {
		t.Fatalf("cover upload should still succeed")
	}
}

func TestGenerateErrors(t *testing.T) {
	svc, repo := newTestService(t, &fakeBuilder{err: errors.New("save failed")}, nil)

	_, err := svc.Generate(context.Background(), " ")
	if ae := apierr.From(err); ae.Status != http.StatusBadRequest || ae.Code != "missing_topic" {
		t.Fatalf("empty topic: %+v", ae)
	}

	_, err = svc.Generate(context.Background(), "graph databases")
	if ae := apierr.From(err); ae.Status != http.StatusInternalServerError || ae.Code != "build_failed" {
		t.Fatalf("build failure: %+v", ae)
	}
	list, err := repo.ListRecent(context.Background(), 10)
	if err != nil || len(list) != 0 {
		t.Fatalf("nothing should be persisted: %v %v", list, err)
	}
}

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("abc", "/tmp/out/assets/cover_abc.png"); got != "runs/abc/cover_abc.png" {
		t.Fatalf("ObjectKey: %q", got)
	}
}

func TestNewBlogServiceRequiresDeps(t *testing.T) {
	if _, err := NewBlogService(nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}
