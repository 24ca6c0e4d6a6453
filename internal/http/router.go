package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/codoraai-coder/marketing-agent/internal/http/handlers"
	httpMW "github.com/codoraai-coder/marketing-agent/internal/http/middleware"
	"github.com/codoraai-coder/marketing-agent/internal/observability"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler    *httpH.HealthHandler
	ChatHandler      *httpH.ChatHandler
	BlogHandler      *httpH.BlogHandler
	SearchKeyHandler *httpH.SearchKeyHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "marketing-agent"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api/v1")
	{
		if cfg.ChatHandler != nil {
			api.POST("/chat", cfg.ChatHandler.Chat)
		}
		if cfg.BlogHandler != nil {
			api.POST("/generate/blog_post", cfg.BlogHandler.GenerateBlogPost)
			api.GET("/runs", cfg.BlogHandler.ListRuns)
			api.GET("/runs/:id", cfg.BlogHandler.GetRun)
		}
		if cfg.SearchKeyHandler != nil {
			api.POST("/search/key/reset", cfg.SearchKeyHandler.Reset)
		}
	}

	return r
}
