package app

import (
	httpapi "github.com/codoraai-coder/marketing-agent/internal/http"
	httpH "github.com/codoraai-coder/marketing-agent/internal/http/handlers"
	"github.com/codoraai-coder/marketing-agent/internal/observability"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, pipeline *Pipeline, svcs Services) *httpapi.Server {
	log.Info("Wiring router...")
	return httpapi.NewServer(httpapi.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ServiceName:      cfg.Otel.ServiceName,
		CORSOrigins:      cfg.CORSOrigins,
		HealthHandler:    httpH.NewHealthHandler(),
		ChatHandler:      httpH.NewChatHandler(log, pipeline.LLM),
		BlogHandler:      httpH.NewBlogHandler(svcs.Blog),
		SearchKeyHandler: httpH.NewSearchKeyHandler(pipeline.Validator),
	})
}
