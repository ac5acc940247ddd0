package services

import (
	"time"

	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
)

// ModelView is a permanent model or a workspace as returned to callers. ID is
// the external signed id: negative for workspaces.
type ModelView struct {
	ID             int64            `json:"id"`
	Workspace      bool             `json:"workspace"`
	OriginID       *uint            `json:"origin_id,omitempty"`
	OwnerID        *uint            `json:"owner_id,omitempty"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Sectors        []types.Sector   `json:"sectors"`
	Categories     []types.Category `json:"categories"`
	Roles          []types.Role     `json:"roles,omitempty"`
	EconomicMatrix matrix.Dense     `json:"economic_matrix"`
	LeontiefMatrix matrix.Dense     `json:"leontief_matrix"`
	ImpactMatrix   matrix.Dense     `json:"impact_matrix"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type ModelSummary struct {
	ID          int64        `json:"id"`
	Workspace   bool         `json:"workspace"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Roles       []types.Role `json:"roles,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func summarizeModel(m *types.Model) ModelSummary {
	return ModelSummary{
		ID:          m.Ref().Encode(),
		Name:        m.Name,
		Description: m.Description,
		Roles:       m.Roles,
		UpdatedAt:   m.UpdatedAt,
	}
}

func summarizeWorkspace(w *types.Workspace) ModelSummary {
	return ModelSummary{
		ID:          w.Ref().Encode(),
		Workspace:   true,
		Name:        w.Name,
		Description: w.Description,
		UpdatedAt:   w.UpdatedAt,
	}
}

func nonNilSectors(in []types.Sector) []types.Sector {
	if in == nil {
		return []types.Sector{}
	}
	return in
}

func nonNilCategories(in []types.Category) []types.Category {
	if in == nil {
		return []types.Category{}
	}
	return in
}
