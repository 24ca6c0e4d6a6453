package app

import (
	"fmt"

	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
	"github.com/codoraai-coder/marketing-agent/internal/services"
)

type Services struct {
	Blog services.BlogService
}

func wireServices(log *logger.Logger, pipeline *Pipeline, clients Clients, repos Repos) (Services, error) {
	log.Info("Wiring services...")
	blogService, err := services.NewBlogService(log, pipeline.Builder, clients.Bucket, repos.BlogRuns)
	if err != nil {
		return Services{}, fmt.Errorf("init blog service: %w", err)
	}
	return Services{Blog: blogService}, nil
}
