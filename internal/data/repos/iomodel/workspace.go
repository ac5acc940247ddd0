package iomodel

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type WorkspaceRepo interface {
	Create(dbc dbctx.Context, w *types.Workspace) error
	GetByID(dbc dbctx.Context, id uint) (*types.Workspace, error)
	ListByOwner(dbc dbctx.Context, ownerID uint) ([]*types.Workspace, error)
	Save(dbc dbctx.Context, w *types.Workspace) error
	Delete(dbc dbctx.Context, id uint) error
}

type workspaceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkspaceRepo(db *gorm.DB, baseLog *logger.Logger) WorkspaceRepo {
	return &workspaceRepo{db: db, log: baseLog.With("repo", "WorkspaceRepo")}
}

func (r *workspaceRepo) Create(dbc dbctx.Context, w *types.Workspace) error {
	if w == nil {
		return nil
	}
	return conn(r.db, dbc).Omit(clause.Associations).Create(w).Error
}

// GetByID returns nil, nil when the workspace does not exist.
func (r *workspaceRepo) GetByID(dbc dbctx.Context, id uint) (*types.Workspace, error) {
	var w types.Workspace
	err := conn(r.db, dbc).
		Preload("Sectors", byPos).
		Preload("Categories", byPos).
		Where("id = ?", id).
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *workspaceRepo) ListByOwner(dbc dbctx.Context, ownerID uint) ([]*types.Workspace, error) {
	var out []*types.Workspace
	if err := conn(r.db, dbc).
		Omit(matrixColumns...).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *workspaceRepo) Save(dbc dbctx.Context, w *types.Workspace) error {
	if w == nil || w.ID == 0 {
		return errors.New("save workspace: missing id")
	}
	return conn(r.db, dbc).
		Model(&types.Workspace{ID: w.ID}).
		Select("name", "description", "economic_matrix", "leontief_matrix", "catimpct_matrix", "updated_at").
		Updates(w).Error
}

func (r *workspaceRepo) Delete(dbc dbctx.Context, id uint) error {
	tx := conn(r.db, dbc)
	if err := tx.Where("workspace_id = ?", id).Delete(&types.Sector{}).Error; err != nil {
		return err
	}
	if err := tx.Where("workspace_id = ?", id).Delete(&types.Category{}).Error; err != nil {
		return err
	}
	return tx.Delete(&types.Workspace{}, id).Error
}
