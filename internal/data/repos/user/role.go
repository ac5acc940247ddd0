package user

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type RoleRepo interface {
	Create(dbc dbctx.Context, r *types.Role) error
	GetByID(dbc dbctx.Context, id uint) (*types.Role, error)
	GetByName(dbc dbctx.Context, name string) (*types.Role, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]types.Role, error)
	List(dbc dbctx.Context) ([]types.Role, error)
	CountUsers(dbc dbctx.Context, id uint) (int64, error)
	CountModels(dbc dbctx.Context, id uint) (int64, error)
	DetachAll(dbc dbctx.Context, id uint) error
	Delete(dbc dbctx.Context, id uint) error
}

type roleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoleRepo(db *gorm.DB, baseLog *logger.Logger) RoleRepo {
	return &roleRepo{db: db, log: baseLog.With("repo", "RoleRepo")}
}

func (rr *roleRepo) conn(dbc dbctx.Context) *gorm.DB {
	return dbc.Conn(rr.db)
}

func (rr *roleRepo) Create(dbc dbctx.Context, r *types.Role) error {
	if r == nil {
		return nil
	}
	return rr.conn(dbc).Create(r).Error
}

func (rr *roleRepo) GetByID(dbc dbctx.Context, id uint) (*types.Role, error) {
	return rr.first(dbc, "id = ?", id)
}

func (rr *roleRepo) GetByName(dbc dbctx.Context, name string) (*types.Role, error) {
	return rr.first(dbc, "name = ?", name)
}

func (rr *roleRepo) first(dbc dbctx.Context, query string, args ...any) (*types.Role, error) {
	var r types.Role
	if err := rr.conn(dbc).Where(query, args...).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (rr *roleRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]types.Role, error) {
	results := []types.Role{}
	if len(ids) == 0 {
		return results, nil
	}
	if err := rr.conn(dbc).Where("id IN ?", ids).Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *roleRepo) List(dbc dbctx.Context) ([]types.Role, error) {
	var results []types.Role
	if err := rr.conn(dbc).Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *roleRepo) CountUsers(dbc dbctx.Context, id uint) (int64, error) {
	var n int64
	err := rr.conn(dbc).Table("user_roles").Where("role_id = ?", id).Count(&n).Error
	return n, err
}

func (rr *roleRepo) CountModels(dbc dbctx.Context, id uint) (int64, error) {
	var n int64
	err := rr.conn(dbc).Table("model_roles").Where("role_id = ?", id).Count(&n).Error
	return n, err
}

// DetachAll removes the role from every user and model.
func (rr *roleRepo) DetachAll(dbc dbctx.Context, id uint) error {
	tx := rr.conn(dbc)
	if err := tx.Exec("DELETE FROM user_roles WHERE role_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Exec("DELETE FROM model_roles WHERE role_id = ?", id).Error
}

func (rr *roleRepo) Delete(dbc dbctx.Context, id uint) error {
	return rr.conn(dbc).Delete(&types.Role{}, id).Error
}
