package services

import (
	"errors"
	"testing"

	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
)

func TestRoleService(t *testing.T) {
	f := newFixture(t)

	if _, err := f.roles.Create(f.dbc, f.analyst, "ops", ""); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("Create by non-admin: want Unauthorized, got %v", err)
	}
	if _, err := f.roles.Create(f.dbc, f.admin, "finance", ""); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("duplicate role: want Conflict, got %v", err)
	}
	ops, err := f.roles.Create(f.dbc, f.admin, " ops ", "operations")
	if err != nil || ops.Name != "ops" {
		t.Fatalf("Create = %+v, %v", ops, err)
	}
	roles, err := f.roles.List(f.dbc, f.admin)
	if err != nil || len(roles) != 4 {
		t.Fatalf("List = %+v, %v", roles, err)
	}
	if _, err := f.roles.List(f.dbc, f.analyst); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Fatalf("non-admin List: want Unauthorized, got %v", err)
	}

	users, err := f.roles.UsersOf(f.dbc, f.admin, f.finance.ID)
	if err != nil || len(users) != 1 || users[0].Username != "analyst" {
		t.Fatalf("UsersOf = %+v, %v", users, err)
	}
	models, err := f.roles.ModelsOf(f.dbc, f.admin, f.finance.ID)
	if err != nil || len(models) != 1 || models[0].Name != "private" {
		t.Fatalf("ModelsOf = %+v, %v", models, err)
	}
	if _, err := f.roles.UsersOf(f.dbc, f.admin, 9999); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("UsersOf missing role: want NotFound, got %v", err)
	}

	if err := f.roles.Delete(f.dbc, f.admin, f.guest.ID, true); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("delete builtin: want InvalidArgument, got %v", err)
	}
	if err := f.roles.Delete(f.dbc, f.admin, f.finance.ID, false); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("delete role in use: want Conflict, got %v", err)
	}
	if err := f.roles.Delete(f.dbc, f.admin, ops.ID, false); err != nil {
		t.Fatalf("delete unused role: %v", err)
	}
	if err := f.roles.Delete(f.dbc, f.admin, f.finance.ID, true); err != nil {
		t.Fatalf("force delete: %v", err)
	}

	// the private model lost its only role: only admins see it now
	if _, err := f.models.Get(f.dbc, f.analyst, f.private.Ref()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("analyst should lose access, got %v", err)
	}
	if _, err := f.models.Get(f.dbc, f.admin, f.private.Ref()); err != nil {
		t.Fatalf("admin Get: %v", err)
	}
}
