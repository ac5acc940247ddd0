package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/data/repos/iomodel"
	"github.com/yungbote/leontief-backend/internal/data/repos/user"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type RoleRepo = user.RoleRepo

type ModelRepo = iomodel.ModelRepo
type WorkspaceRepo = iomodel.WorkspaceRepo
type SectorRepo = iomodel.SectorRepo
type CategoryRepo = iomodel.CategoryRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewRoleRepo(db *gorm.DB, baseLog *logger.Logger) RoleRepo { return user.NewRoleRepo(db, baseLog) }

func NewModelRepo(db *gorm.DB, baseLog *logger.Logger) ModelRepo {
	return iomodel.NewModelRepo(db, baseLog)
}
func NewWorkspaceRepo(db *gorm.DB, baseLog *logger.Logger) WorkspaceRepo {
	return iomodel.NewWorkspaceRepo(db, baseLog)
}
func NewSectorRepo(db *gorm.DB, baseLog *logger.Logger) SectorRepo {
	return iomodel.NewSectorRepo(db, baseLog)
}
func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return iomodel.NewCategoryRepo(db, baseLog)
}
