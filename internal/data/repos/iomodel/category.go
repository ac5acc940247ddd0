package iomodel

import (
	"gorm.io/gorm"

	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type CategoryRepo interface {
	ListByOwner(dbc dbctx.Context, owner types.ModelRef) ([]types.Category, error)
	ReplaceForOwner(dbc dbctx.Context, owner types.ModelRef, rows []types.Category) ([]types.Category, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) ListByOwner(dbc dbctx.Context, owner types.ModelRef) ([]types.Category, error) {
	var out []types.Category
	if err := conn(r.db, dbc).
		Where(ownerColumn(owner)+" = ?", owner.ID).
		Order("pos ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceForOwner makes rows the complete category list of owner. Rows whose ID
// already belongs to owner are updated in place, the rest are inserted, and
// stored rows missing from the list are deleted.
func (r *categoryRepo) ReplaceForOwner(dbc dbctx.Context, owner types.ModelRef, rows []types.Category) ([]types.Category, error) {
	tx := conn(r.db, dbc)
	col := ownerColumn(owner)

	var existing []uint
	if err := tx.Model(&types.Category{}).Where(col+" = ?", owner.ID).Pluck("id", &existing).Error; err != nil {
		return nil, err
	}
	owned := make(map[uint]bool, len(existing))
	for _, id := range existing {
		owned[id] = true
	}

	modelID, workspaceID := ownerKeys(owner)
	out := make([]types.Category, len(rows))
	keep := make(map[uint]bool, len(rows))
	for i, row := range rows {
		row.ModelID, row.WorkspaceID = modelID, workspaceID
		if row.ID != 0 && owned[row.ID] && !keep[row.ID] {
			if err := tx.Model(&types.Category{ID: row.ID}).
				Select("name", "description", "unit", "pos").
				Updates(&row).Error; err != nil {
				return nil, err
			}
		} else {
			row.ID = 0
			if err := tx.Create(&row).Error; err != nil {
				return nil, err
			}
		}
		keep[row.ID] = true
		out[i] = row
	}

	var stale []uint
	for _, id := range existing {
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := tx.Where("id IN ?", stale).Delete(&types.Category{}).Error; err != nil {
			return nil, err
		}
	}
	return out, nil
}
