package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/leontief-backend/internal/http/handlers"
	httpMW "github.com/yungbote/leontief-backend/internal/http/middleware"
	"github.com/yungbote/leontief-backend/internal/observability"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler     *httpH.HealthHandler
	AuthHandler       *httpH.AuthHandler
	UserHandler       *httpH.UserHandler
	RoleHandler       *httpH.RoleHandler
	ModelHandler      *httpH.ModelHandler
	WorkspaceHandler  *httpH.WorkspaceHandler
	SimulationHandler *httpH.SimulationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthHandler != nil {
		api.POST("/login", cfg.AuthHandler.Login)
	}
	if cfg.AuthMiddleware == nil {
		return r
	}

	// Optional auth: anonymous callers act with the guest role.
	open := api.Group("/")
	open.Use(cfg.AuthMiddleware.OptionalAuth())

	// Auth required.
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Users
	if cfg.UserHandler != nil {
		protected.GET("/users/me", cfg.UserHandler.GetMe)
		protected.POST("/users", cfg.UserHandler.Create)
		protected.GET("/users", cfg.UserHandler.List)
		protected.GET("/users/:user_id", cfg.UserHandler.Get)
		protected.PATCH("/users/:user_id", cfg.UserHandler.UpdateProfile)
		protected.PUT("/users/:user_id/roles", cfg.UserHandler.SetRoles)
	}

	// Roles
	if cfg.RoleHandler != nil {
		protected.GET("/roles", cfg.RoleHandler.List)
		protected.POST("/roles", cfg.RoleHandler.Create)
		protected.GET("/roles/:role_id/users", cfg.RoleHandler.Users)
		protected.GET("/roles/:role_id/models", cfg.RoleHandler.Models)
		protected.DELETE("/roles/:role_id", cfg.RoleHandler.Delete)
	}

	// Models. Admin-only and owner-only checks live in the services so a
	// caller that cannot see a model gets 404, not 401.
	if cfg.ModelHandler != nil {
		open.GET("/models", cfg.ModelHandler.List)
		open.GET("/models/:model_id", cfg.ModelHandler.Get)
		open.POST("/models", cfg.ModelHandler.Create)
		open.PATCH("/models/:model_id", cfg.ModelHandler.UpdateMeta)
		open.DELETE("/models/:model_id", cfg.ModelHandler.Delete)
		open.PUT("/models/:model_id/roles", cfg.ModelHandler.SetRoles)
		open.PUT("/models/:model_id/economic", cfg.ModelHandler.SetEconomic)
		open.PUT("/models/:model_id/impact", cfg.ModelHandler.SetImpact)

		open.POST("/models/:model_id/sectors", cfg.ModelHandler.InsertSector)
		open.PATCH("/models/:model_id/sectors/:pos", cfg.ModelHandler.ModifySector)
		open.DELETE("/models/:model_id/sectors/:pos", cfg.ModelHandler.DeleteSector)
		open.POST("/models/:model_id/categories", cfg.ModelHandler.InsertCategory)
		open.PATCH("/models/:model_id/categories/:pos", cfg.ModelHandler.ModifyCategory)
		open.DELETE("/models/:model_id/categories/:pos", cfg.ModelHandler.DeleteCategory)

		protected.POST("/models/:model_id/export", cfg.ModelHandler.Export)
	}

	if cfg.SimulationHandler != nil {
		open.POST("/models/:model_id/simulate", cfg.SimulationHandler.Simulate)
	}

	// Workspaces
	if cfg.WorkspaceHandler != nil {
		protected.POST("/models/:model_id/clone", cfg.WorkspaceHandler.Clone)
		protected.POST("/models/:model_id/persist", cfg.WorkspaceHandler.Persist)
		protected.GET("/workspaces", cfg.WorkspaceHandler.ListMine)
	}

	return r
}
