package runs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/codoraai-coder/marketing-agent/internal/data/repos/testutil"
	types "github.com/codoraai-coder/marketing-agent/internal/domain"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

func TestBlogRunRepoCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewBlogRunRepo(testutil.DB(t), logger.Nop())

	run := &types.BlogRun{
		RunID:          "a1b2c3d4e5f6",
		Topic:          "graph databases",
		Title:          "Understanding Graph Databases",
		Status:         types.BlogRunSucceeded,
		DocumentPath:   "generated/blogs/blog_a1b2c3d4e5f6.docx",
		VisualsPlanned: 4,
		VisualsFound:   3,
		Manifest:       datatypes.JSON([]byte(`[{"role":"document","path":"generated/blogs/blog_a1b2c3d4e5f6.docx"}]`)),
	}
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if run.ID == uuid.Nil || run.CreatedAt.IsZero() {
		t.Fatalf("Create should assign id and timestamps: %+v", run)
	}

	got, err := repo.GetByRunID(ctx, "a1b2c3d4e5f6")
	if err != nil {
		t.Fatalf("GetByRunID: %v", err)
	}
	if got == nil {
		t.Fatalf("GetByRunID: not found")
	}
	if got.ID != run.ID || got.Title != run.Title || got.VisualsFound != 3 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if string(got.Manifest) != string(run.Manifest) {
		t.Fatalf("manifest: %s", got.Manifest)
	}
}

func TestBlogRunRepoMissing(t *testing.T) {
	repo := NewBlogRunRepo(testutil.DB(t), nil)
	got, err := repo.GetByRunID(context.Background(), "nope")
	if err != nil || got != nil {
		t.Fatalf("want nil, nil got %v, %v", got, err)
	}
}

func TestBlogRunRepoRejectsDuplicateRunID(t *testing.T) {
	ctx := context.Background()
	repo := NewBlogRunRepo(testutil.DB(t), nil)
	if err := repo.Create(ctx, &types.BlogRun{RunID: "dup", Topic: "x", Status: types.BlogRunFailed}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &types.BlogRun{RunID: "dup", Topic: "y", Status: types.BlogRunFailed}); err == nil {
		t.Fatalf("expected unique violation")
	}
	if err := repo.Create(ctx, &types.BlogRun{Topic: "z"}); err == nil {
		t.Fatalf("expected error for empty run id")
	}
}

func TestBlogRunRepoListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewBlogRunRepo(testutil.DB(t), nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		run := &types.BlogRun{RunID: id, Topic: "t", Status: types.BlogRunSucceeded, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Create(ctx, run); err != nil {
			t.Fatalf("Create(%s): %v", id, err)
		}
	}
	got, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 2 || got[0].RunID != "new" || got[1].RunID != "mid" {
		ids := []string{}
		for _, r := range got {
			ids = append(ids, r.RunID)
		}
		t.Fatalf("order: %v", ids)
	}
}
