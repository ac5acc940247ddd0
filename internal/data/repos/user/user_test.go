package user

import (
	"context"
	"testing"

	"github.com/yungbote/leontief-backend/internal/data/repos/testutil"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := &types.User{Username: "ana", Email: "ana@example.com", Password: "pw", Enabled: true}
	if err := repo.Create(dbc, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("Create: expected id")
	}

	analysts := testutil.SeedRole(t, ctx, tx, "analysts")
	if err := repo.ReplaceRoles(dbc, u, []types.Role{*analysts}); err != nil {
		t.Fatalf("ReplaceRoles: %v", err)
	}

	got, err := repo.GetByUsername(dbc, "ana")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if got == nil || got.ID != u.ID || len(got.Roles) != 1 || got.Roles[0].Name != "analysts" {
		t.Fatalf("GetByUsername: unexpected result: %+v", got)
	}

	missing, err := repo.GetByID(dbc, u.ID+100)
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: %+v, %v", missing, err)
	}

	exists, err := repo.UsernameOrEmailExists(dbc, "someone", "ana@example.com")
	if err != nil || !exists {
		t.Fatalf("UsernameOrEmailExists by email = %v, %v", exists, err)
	}
	exists, err = repo.UsernameOrEmailExists(dbc, "someone", "someone@example.com")
	if err != nil || exists {
		t.Fatalf("UsernameOrEmailExists = %v, %v", exists, err)
	}

	if taken, err := repo.EmailExists(dbc, "ana@example.com", u.ID); err != nil || taken {
		t.Fatalf("EmailExists own email = %v, %v", taken, err)
	}
	if taken, err := repo.EmailExists(dbc, "ana@example.com", u.ID+1); err != nil || !taken {
		t.Fatalf("EmailExists other user = %v, %v", taken, err)
	}

	if err := repo.UpdateProfile(dbc, u.ID, map[string]any{"first_name": "Ana", "institution": "UPV"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got, err = repo.GetByID(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FirstName != "Ana" || got.Institution != "UPV" {
		t.Fatalf("UpdateProfile: unexpected user: %+v", got)
	}

	byRole, err := repo.ListByRole(dbc, analysts.ID)
	if err != nil || len(byRole) != 1 || byRole[0].ID != u.ID {
		t.Fatalf("ListByRole = %+v, %v", byRole, err)
	}

	if err := repo.ReplaceRoles(dbc, u, nil); err != nil {
		t.Fatalf("ReplaceRoles clear: %v", err)
	}
	got, _ = repo.GetByID(dbc, u.ID)
	if len(got.Roles) != 0 {
		t.Fatalf("ReplaceRoles clear: roles left: %+v", got.Roles)
	}

	all, err := repo.List(dbc)
	if err != nil || len(all) != 1 {
		t.Fatalf("List = %d, %v", len(all), err)
	}
}
