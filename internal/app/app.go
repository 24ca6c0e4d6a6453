package app

import (
	"context"
	"fmt"
	"net"

	"gorm.io/gorm"

	"github.com/codoraai-coder/marketing-agent/internal/data/db"
	httpapi "github.com/codoraai-coder/marketing-agent/internal/http"
	"github.com/codoraai-coder/marketing-agent/internal/observability"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Pipeline *Pipeline
	Server   *httpapi.Server

	shutdownOTel func(context.Context) error
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	shutdown := observability.InitOTel(ctx, log, cfg.Otel)

	var metrics *observability.Metrics
	if cfg.Metrics {
		metrics = observability.Init()
	}

	log.Info("Opening database...", "driver", cfg.DB.Driver)
	theDB, err := db.Open(log, cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		return nil, fmt.Errorf("db automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	pipeline, err := wirePipeline(log, cfg, clients)
	if err != nil {
		return nil, fmt.Errorf("init pipeline: %w", err)
	}
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(log, pipeline, clients, reposet)
	if err != nil {
		return nil, err
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Pipeline:     pipeline,
		Server:       wireServer(log, cfg, metrics, pipeline, serviceset),
		shutdownOTel: shutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	a.Log.Sync()
}
