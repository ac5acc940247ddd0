package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/observability"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
	"github.com/yungbote/leontief-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Role       services.RoleService
	Model      services.ModelService
	Workspace  services.WorkspaceService
	Simulation services.SimulationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, resolver *access.Resolver, r Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	auth := services.NewAuthService(log, r.User, cfg.JWT.Secret, cfg.JWT.TTL)
	return Services{
		Auth: auth,
		User: services.NewUserService(db, log, resolver, r.User, r.Role, auth),
		Role: services.NewRoleService(db, log, resolver, r.Role, r.User, r.Model),
		Model: services.NewModelService(db, log, resolver,
			r.Model, r.Workspace, r.Sector, r.Category, r.Role, clients.Blob, metrics),
		Workspace: services.NewWorkspaceService(db, log, resolver, r.Model, r.Workspace, r.Sector, r.Category),
		Simulation: services.NewSimulationService(db, log, resolver, r.Model, r.Workspace, clients.Redis, metrics, services.SimulationConfig{
			Workers:  cfg.Sim.Workers,
			CacheTTL: cfg.Redis.TTL,
		}),
	}
}
