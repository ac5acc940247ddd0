package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/data/db"
	types "github.com/yungbote/leontief-backend/internal/domain"
	httpserver "github.com/yungbote/leontief-backend/internal/http"
	"github.com/yungbote/leontief-backend/internal/observability"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	dbService    *db.Service
	redis        *goredis.Client
	otelShutdown func(context.Context) error
}

// Migrate opens the database, migrates every table and seeds the builtin
// roles. It returns the open connection.
func Migrate(cfg Config, log *logger.Logger) (*db.Service, map[string]types.Role, error) {
	svc, err := db.Open(cfg.DBConfig(), log)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		_ = svc.Close()
		return nil, nil, fmt.Errorf("automigrate: %w", err)
	}
	roles, err := db.EnsureBuiltinRoles(svc.DB())
	if err != nil {
		_ = svc.Close()
		return nil, nil, fmt.Errorf("builtin roles: %w", err)
	}
	return svc, roles, nil
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Log: log, Cfg: cfg}

	dbService, roles, err := Migrate(cfg, log)
	if err != nil {
		return nil, err
	}
	a.dbService = dbService
	a.DB = dbService.DB()
	resolver := access.NewResolver(roles[types.RoleGuest].ID)

	clients, err := wireClients(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.redis = clients.Redis

	if cfg.Metrics.Enabled {
		a.Metrics = observability.NewMetrics()
	}
	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: cfg.Otel.Service,
		Environment: cfg.Log.Mode,
	})

	a.Repos = wireRepos(a.DB, log)
	a.Services = wireServices(a.DB, log, cfg, resolver, a.Repos, clients, a.Metrics)

	if cfg.Admin.Username != "" && cfg.Admin.Password != "" {
		if _, err := a.Services.User.BootstrapAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
			a.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	a.Router = wireRouter(cfg, log, a.DB, a.Services, a.Metrics)
	return a, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("http server listening", "addr", a.Cfg.HTTP.Addr)
	srv := &httpserver.Server{Engine: a.Router}
	return srv.Run(ctx, a.Cfg.HTTP.Addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("close database", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
