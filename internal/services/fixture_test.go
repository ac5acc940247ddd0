package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/data/repos"
	"github.com/yungbote/leontief-backend/internal/data/repos/testutil"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	"github.com/yungbote/leontief-backend/internal/platform/blob"
)

type fixture struct {
	db  *gorm.DB
	dbc dbctx.Context

	resolver *access.Resolver
	guest    types.Role
	adminR   types.Role
	finance  *types.Role

	admin    access.Principal
	analyst  access.Principal
	outsider access.Principal
	anon     access.Principal

	public  *types.Model // visible to guest
	private *types.Model // visible to finance only

	models     ModelService
	workspaces WorkspaceService
	sims       SimulationService
	auth       AuthService
	users      UserService
	roles      RoleService

	userRepo repos.UserRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	f := &fixture{db: db, dbc: dbctx.Context{Ctx: ctx}}
	f.guest = testutil.Role(t, db, types.RoleGuest)
	f.adminR = testutil.Role(t, db, types.RoleAdmin)
	f.finance = testutil.SeedRole(t, ctx, db, "finance")
	f.resolver = access.NewResolver(f.guest.ID)

	adminUser := testutil.SeedUser(t, ctx, db, "root", f.adminR)
	analystUser := testutil.SeedUser(t, ctx, db, "analyst", *f.finance)
	outsiderUser := testutil.SeedUser(t, ctx, db, "outsider")
	f.admin = access.FromUser(adminUser)
	f.analyst = access.FromUser(analystUser)
	f.outsider = access.FromUser(outsiderUser)
	f.anon = access.AnonymousPrincipal()

	f.public = testutil.SeedModel(t, ctx, db, "public", f.guest)
	f.private = testutil.SeedModel(t, ctx, db, "private", *f.finance)

	modelRepo := repos.NewModelRepo(db, log)
	workspaceRepo := repos.NewWorkspaceRepo(db, log)
	sectorRepo := repos.NewSectorRepo(db, log)
	categoryRepo := repos.NewCategoryRepo(db, log)
	roleRepo := repos.NewRoleRepo(db, log)
	f.userRepo = repos.NewUserRepo(db, log)

	store, err := blob.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	f.models = NewModelService(db, log, f.resolver, modelRepo, workspaceRepo, sectorRepo, categoryRepo, roleRepo, store, nil)
	f.workspaces = NewWorkspaceService(db, log, f.resolver, modelRepo, workspaceRepo, sectorRepo, categoryRepo)
	f.sims = NewSimulationService(db, log, f.resolver, modelRepo, workspaceRepo, nil, nil, SimulationConfig{Workers: 2})
	f.auth = NewAuthService(log, f.userRepo, "test-secret", time.Hour)
	f.users = NewUserService(db, log, f.resolver, f.userRepo, roleRepo, f.auth)
	f.roles = NewRoleService(db, log, f.resolver, roleRepo, f.userRepo, modelRepo)
	return f
}
