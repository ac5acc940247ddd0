package iomodel

import (
	"time"

	"github.com/yungbote/leontief-backend/internal/domain/user"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
)

// Model is a permanent input-output model. EconomicMatrix is N×N in sector
// pos order, LeontiefMatrix is (I − EconomicMatrix)⁻¹, ImpactMatrix is M×N.
type Model struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"not null;column:name" json:"name"`
	Description    string       `gorm:"column:description" json:"description"`
	EconomicMatrix matrix.Dense `gorm:"column:economic_matrix" json:"-"`
	LeontiefMatrix matrix.Dense `gorm:"column:leontief_matrix" json:"-"`
	ImpactMatrix   matrix.Dense `gorm:"column:catimpct_matrix" json:"-"`
	Sectors        []Sector     `gorm:"foreignKey:ModelID" json:"sectors,omitempty"`
	Categories     []Category   `gorm:"foreignKey:ModelID" json:"categories,omitempty"`
	Roles          []user.Role  `gorm:"many2many:model_roles;" json:"roles,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Model) TableName() string { return "models" }

func (m *Model) Ref() ModelRef { return Permanent(m.ID) }

func (m *Model) RoleIDs() []uint {
	out := make([]uint, 0, len(m.Roles))
	for _, r := range m.Roles {
		out = append(out, r.ID)
	}
	return out
}

// Workspace is a user's editable, disconnected copy of a permanent model.
// It is addressed externally by the negative of its ID.
type Workspace struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	OriginID       uint         `gorm:"not null;index;column:origin_id" json:"origin_id"`
	OwnerID        uint         `gorm:"not null;index;column:owner_id" json:"owner_id"`
	Name           string       `gorm:"not null;column:name" json:"name"`
	Description    string       `gorm:"column:description" json:"description"`
	EconomicMatrix matrix.Dense `gorm:"column:economic_matrix" json:"-"`
	LeontiefMatrix matrix.Dense `gorm:"column:leontief_matrix" json:"-"`
	ImpactMatrix   matrix.Dense `gorm:"column:catimpct_matrix" json:"-"`
	Sectors        []Sector     `gorm:"foreignKey:WorkspaceID" json:"sectors,omitempty"`
	Categories     []Category   `gorm:"foreignKey:WorkspaceID" json:"categories,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Workspace) TableName() string { return "temp_models" }

func (w *Workspace) Ref() ModelRef { return WorkspaceRef(w.ID) }

// Sector belongs to exactly one of a Model or a Workspace.
type Sector struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ModelID     *uint   `gorm:"index;column:model_id" json:"-"`
	WorkspaceID *uint   `gorm:"index;column:workspace_id" json:"-"`
	Name        string  `gorm:"not null;column:name" json:"name"`
	ValueAdded  float64 `gorm:"not null;column:value_added" json:"value_added"`
	Pos         int     `gorm:"not null;column:pos" json:"pos"`
}

func (Sector) TableName() string { return "sectors" }

type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ModelID     *uint  `gorm:"index;column:model_id" json:"-"`
	WorkspaceID *uint  `gorm:"index;column:workspace_id" json:"-"`
	Name        string `gorm:"not null;column:name" json:"name"`
	Description string `gorm:"column:description" json:"description"`
	Unit        string `gorm:"column:unit" json:"unit"`
	Pos         int    `gorm:"not null;column:pos" json:"pos"`
}

func (Category) TableName() string { return "categories" }
