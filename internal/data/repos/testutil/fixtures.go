package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/matrix"
)

func SeedRole(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Role {
	tb.Helper()
	r := &types.Role{Name: name}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed role: %v", err)
	}
	return r
}

// SeedUser creates an enabled user holding roles. The password column
// stores the raw string; tests that log in hash it first.
func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string, roles ...types.Role) *types.User {
	tb.Helper()
	u := &types.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "pw",
		Enabled:  true,
	}
	if err := tx.WithContext(ctx).Omit("Roles").Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	if len(roles) > 0 {
		if err := tx.WithContext(ctx).Model(u).Association("Roles").Replace(roles); err != nil {
			tb.Fatalf("seed user roles: %v", err)
		}
	}
	u.Roles = roles
	return u
}

// SeedModel stores the two-sector model A = [[0,0.5],[0.2,0]] with a single
// "jobs" category, visible to roles.
func SeedModel(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, roles ...types.Role) *types.Model {
	tb.Helper()
	a, _ := matrix.FromRows([][]float64{{0, 0.5}, {0.2, 0}})
	l, err := matrix.Leontief(a)
	if err != nil {
		tb.Fatalf("seed model leontief: %v", err)
	}
	c, _ := matrix.FromRows([][]float64{{0.01, 0.1}})

	m := &types.Model{Name: name, EconomicMatrix: a, LeontiefMatrix: l, ImpactMatrix: c}
	if err := tx.WithContext(ctx).Omit("Sectors", "Categories", "Roles").Create(m).Error; err != nil {
		tb.Fatalf("seed model: %v", err)
	}
	for i, n := range []string{"agriculture", "industry"} {
		s := &types.Sector{ModelID: &m.ID, Name: n, Pos: i}
		if err := tx.WithContext(ctx).Create(s).Error; err != nil {
			tb.Fatalf("seed sector: %v", err)
		}
		m.Sectors = append(m.Sectors, *s)
	}
	cat := &types.Category{ModelID: &m.ID, Name: "jobs", Unit: "fte", Pos: 0}
	if err := tx.WithContext(ctx).Create(cat).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	m.Categories = append(m.Categories, *cat)
	if len(roles) > 0 {
		if err := tx.WithContext(ctx).Model(m).Association("Roles").Replace(roles); err != nil {
			tb.Fatalf("seed model roles: %v", err)
		}
	}
	m.Roles = roles
	return m
}
