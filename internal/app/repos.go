package app

import (
	"gorm.io/gorm"

	"github.com/codoraai-coder/marketing-agent/internal/data/repos/runs"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

type Repos struct {
	BlogRuns runs.BlogRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		BlogRuns: runs.NewBlogRunRepo(db, log),
	}
}
