package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	httpserver "github.com/yungbote/leontief-backend/internal/http"
	httpH "github.com/yungbote/leontief-backend/internal/http/handlers"
	httpMW "github.com/yungbote/leontief-backend/internal/http/middleware"
	"github.com/yungbote/leontief-backend/internal/observability"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

func wireRouter(cfg Config, log *logger.Logger, db *gorm.DB, s Services, metrics *observability.Metrics) *gin.Engine {
	log.Info("Wiring router...")
	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	rc := httpserver.RouterConfig{
		Log:         log,
		Metrics:     metrics,
		CORSOrigins: cfg.CORS.Origins,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Auth),

		HealthHandler:     httpH.NewHealthHandler(db),
		AuthHandler:       httpH.NewAuthHandler(s.Auth),
		UserHandler:       httpH.NewUserHandler(s.User),
		RoleHandler:       httpH.NewRoleHandler(s.Role),
		ModelHandler:      httpH.NewModelHandler(s.Model),
		WorkspaceHandler:  httpH.NewWorkspaceHandler(s.Workspace),
		SimulationHandler: httpH.NewSimulationHandler(s.Simulation),
	}
	if cfg.Otel.Enabled {
		rc.ServiceName = cfg.Otel.Service
	}
	return httpserver.NewRouter(rc)
}
