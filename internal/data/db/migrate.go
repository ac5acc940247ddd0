package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/leontief-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// identity
		&types.Role{},
		&types.User{},

		// models + workspaces
		&types.Model{},
		&types.Workspace{},
		&types.Sector{},
		&types.Category{},
	)
}

// EnsureBuiltinRoles creates the guest and admin roles when missing and
// returns them keyed by name.
func EnsureBuiltinRoles(db *gorm.DB) (map[string]types.Role, error) {
	out := make(map[string]types.Role, 2)
	for _, name := range []string{types.RoleGuest, types.RoleAdmin} {
		role := types.Role{Name: name, Description: "builtin " + name + " role"}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error; err != nil {
			return nil, fmt.Errorf("ensure role %s: %w", name, err)
		}
		var stored types.Role
		if err := db.Where("name = ?", name).First(&stored).Error; err != nil {
			return nil, fmt.Errorf("load role %s: %w", name, err)
		}
		out[name] = stored
	}
	return out, nil
}
