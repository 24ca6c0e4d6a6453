package runs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/codoraai-coder/marketing-agent/internal/domain"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

const maxListLimit = 100

type BlogRunRepo interface {
	Create(ctx context.Context, run *types.BlogRun) error
	GetByRunID(ctx context.Context, runID string) (*types.BlogRun, error)
	ListRecent(ctx context.Context, limit int) ([]*types.BlogRun, error)
}

type blogRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlogRunRepo(db *gorm.DB, baseLog *logger.Logger) BlogRunRepo {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &blogRunRepo{db: db, log: baseLog.With("repo", "BlogRunRepo")}
}

func (r *blogRunRepo) Create(ctx context.Context, run *types.BlogRun) error {
	if run == nil || strings.TrimSpace(run.RunID) == "" {
		return fmt.Errorf("blog run: run id required")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		r.log.Error("blog run insert failed", "run_id", run.RunID, "error", err)
		return err
	}
	return nil
}

// GetByRunID returns nil, nil when no run carries runID.
func (r *blogRunRepo) GetByRunID(ctx context.Context, runID string) (*types.BlogRun, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, nil
	}
	var run types.BlogRun
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).Take(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *blogRunRepo) ListRecent(ctx context.Context, limit int) ([]*types.BlogRun, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	var out []*types.BlogRun
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
