package iomodel

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type ModelRepo interface {
	Create(dbc dbctx.Context, m *types.Model) error
	GetByID(dbc dbctx.Context, id uint) (*types.Model, error)
	GetRoleIDs(dbc dbctx.Context, id uint) ([]uint, bool, error)
	List(dbc dbctx.Context) ([]*types.Model, error)
	ListByRole(dbc dbctx.Context, roleID uint) ([]*types.Model, error)
	Save(dbc dbctx.Context, m *types.Model) error
	ReplaceRoles(dbc dbctx.Context, m *types.Model, roles []types.Role) error
	Delete(dbc dbctx.Context, id uint) error
}

type modelRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModelRepo(db *gorm.DB, baseLog *logger.Logger) ModelRepo {
	return &modelRepo{db: db, log: baseLog.With("repo", "ModelRepo")}
}

// Create inserts the model row only; sectors, categories and roles are
// written through their own repos.
func (r *modelRepo) Create(dbc dbctx.Context, m *types.Model) error {
	if m == nil {
		return nil
	}
	return conn(r.db, dbc).Omit(clause.Associations).Create(m).Error
}

// GetByID returns nil, nil when the model does not exist.
func (r *modelRepo) GetByID(dbc dbctx.Context, id uint) (*types.Model, error) {
	var m types.Model
	err := conn(r.db, dbc).
		Preload("Sectors", byPos).
		Preload("Categories", byPos).
		Preload("Roles").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetRoleIDs loads just the visibility roles of a model. ok is false when the
// model does not exist.
func (r *modelRepo) GetRoleIDs(dbc dbctx.Context, id uint) ([]uint, bool, error) {
	var count int64
	if err := conn(r.db, dbc).Model(&types.Model{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, false, err
	}
	if count == 0 {
		return nil, false, nil
	}
	var ids []uint
	if err := conn(r.db, dbc).
		Table("model_roles").
		Where("model_id = ?", id).
		Order("role_id ASC").
		Pluck("role_id", &ids).Error; err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

func (r *modelRepo) List(dbc dbctx.Context) ([]*types.Model, error) {
	var out []*types.Model
	if err := conn(r.db, dbc).
		Omit(matrixColumns...).
		Preload("Roles").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *modelRepo) ListByRole(dbc dbctx.Context, roleID uint) ([]*types.Model, error) {
	var out []*types.Model
	if err := conn(r.db, dbc).
		Omit(matrixColumns...).
		Joins("JOIN model_roles ON model_roles.model_id = models.id").
		Where("model_roles.role_id = ?", roleID).
		Order("models.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Save writes metadata and all three matrices.
func (r *modelRepo) Save(dbc dbctx.Context, m *types.Model) error {
	if m == nil || m.ID == 0 {
		return errors.New("save model: missing id")
	}
	return conn(r.db, dbc).
		Model(&types.Model{ID: m.ID}).
		Select("name", "description", "economic_matrix", "leontief_matrix", "catimpct_matrix", "updated_at").
		Updates(m).Error
}

func (r *modelRepo) ReplaceRoles(dbc dbctx.Context, m *types.Model, roles []types.Role) error {
	assoc := conn(r.db, dbc).Model(m).Association("Roles")
	if len(roles) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(roles)
}

// Delete removes the model together with its sectors, categories and role
// links. Workspaces cloned from it are left alone.
func (r *modelRepo) Delete(dbc dbctx.Context, id uint) error {
	tx := conn(r.db, dbc)
	if err := tx.Where("model_id = ?", id).Delete(&types.Sector{}).Error; err != nil {
		return err
	}
	if err := tx.Where("model_id = ?", id).Delete(&types.Category{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM model_roles WHERE model_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Delete(&types.Model{}, id).Error
}
