package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/data/repos"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	Role      repos.RoleRepo
	Model     repos.ModelRepo
	Workspace repos.WorkspaceRepo
	Sector    repos.SectorRepo
	Category  repos.CategoryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		Role:      repos.NewRoleRepo(db, log),
		Model:     repos.NewModelRepo(db, log),
		Workspace: repos.NewWorkspaceRepo(db, log),
		Sector:    repos.NewSectorRepo(db, log),
		Category:  repos.NewCategoryRepo(db, log),
	}
}
