package iomodel

import (
	"gorm.io/gorm"

	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/domain/iomodel"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
)

// matrixColumns are skipped by list queries.
var matrixColumns = []string{"economic_matrix", "leontief_matrix", "catimpct_matrix"}

func conn(db *gorm.DB, dbc dbctx.Context) *gorm.DB {
	return dbc.Conn(db)
}

func ownerColumn(ref types.ModelRef) string {
	if ref.Kind == iomodel.KindWorkspace {
		return "workspace_id"
	}
	return "model_id"
}

func ownerKeys(ref types.ModelRef) (modelID, workspaceID *uint) {
	id := ref.ID
	if ref.Kind == iomodel.KindWorkspace {
		return nil, &id
	}
	return &id, nil
}

func byPos(db *gorm.DB) *gorm.DB { return db.Order("pos ASC") }
