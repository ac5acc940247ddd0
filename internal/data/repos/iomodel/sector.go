package iomodel

import (
	"gorm.io/gorm"

	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type SectorRepo interface {
	ListByOwner(dbc dbctx.Context, owner types.ModelRef) ([]types.Sector, error)
	ReplaceForOwner(dbc dbctx.Context, owner types.ModelRef, rows []types.Sector) ([]types.Sector, error)
}

type sectorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectorRepo(db *gorm.DB, baseLog *logger.Logger) SectorRepo {
	return &sectorRepo{db: db, log: baseLog.With("repo", "SectorRepo")}
}

func (r *sectorRepo) ListByOwner(dbc dbctx.Context, owner types.ModelRef) ([]types.Sector, error) {
	var out []types.Sector
	if err := conn(r.db, dbc).
		Where(ownerColumn(owner)+" = ?", owner.ID).
		Order("pos ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceForOwner makes rows the complete sector list of owner. Rows whose ID
// already belongs to owner are updated in place, the rest are inserted, and
// stored rows missing from the list are deleted.
func (r *sectorRepo) ReplaceForOwner(dbc dbctx.Context, owner types.ModelRef, rows []types.Sector) ([]types.Sector, error) {
	tx := conn(r.db, dbc)
	col := ownerColumn(owner)

	var existing []uint
	if err := tx.Model(&types.Sector{}).Where(col+" = ?", owner.ID).Pluck("id", &existing).Error; err != nil {
		return nil, err
	}
	owned := make(map[uint]bool, len(existing))
	for _, id := range existing {
		owned[id] = true
	}

	modelID, workspaceID := ownerKeys(owner)
	out := make([]types.Sector, len(rows))
	keep := make(map[uint]bool, len(rows))
	for i, row := range rows {
		row.ModelID, row.WorkspaceID = modelID, workspaceID
		if row.ID != 0 && owned[row.ID] && !keep[row.ID] {
			if err := tx.Model(&types.Sector{ID: row.ID}).
				Select("name", "value_added", "pos").
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
		if err := tx.Where("id IN ?", stale).Delete(&types.Sector{}).Error; err != nil {
			return nil, err
		}
	}
	return out, nil
}
