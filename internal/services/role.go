package services

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/data/repos"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type RoleService interface {
	List(dbc dbctx.Context, p access.Principal) ([]types.Role, error)
	Create(dbc dbctx.Context, p access.Principal, name, description string) (*types.Role, error)
	UsersOf(dbc dbctx.Context, p access.Principal, roleID uint) ([]*types.User, error)
	ModelsOf(dbc dbctx.Context, p access.Principal, roleID uint) ([]ModelSummary, error)
	Delete(dbc dbctx.Context, p access.Principal, roleID uint, force bool) error
}

type roleService struct {
	db        *gorm.DB
	log       *logger.Logger
	resolver  *access.Resolver
	roleRepo  repos.RoleRepo
	userRepo  repos.UserRepo
	modelRepo repos.ModelRepo
}

func NewRoleService(db *gorm.DB, log *logger.Logger, resolver *access.Resolver, roleRepo repos.RoleRepo, userRepo repos.UserRepo, modelRepo repos.ModelRepo) RoleService {
	return &roleService{
		db:        db,
		log:       log.With("service", "RoleService"),
		resolver:  resolver,
		roleRepo:  roleRepo,
		userRepo:  userRepo,
		modelRepo: modelRepo,
	}
}

func (rs *roleService) List(dbc dbctx.Context, p access.Principal) ([]types.Role, error) {
	if !rs.resolver.IsAdmin(p) {
		return nil, fmt.Errorf("list roles requires admin: %w", pkgerrors.ErrUnauthorized)
	}
	roles, err := rs.roleRepo.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (rs *roleService) Create(dbc dbctx.Context, p access.Principal, name, description string) (*types.Role, error) {
	if !rs.resolver.IsAdmin(p) {
		return nil, fmt.Errorf("create role requires admin: %w", pkgerrors.ErrUnauthorized)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("role name is required: %w", pkgerrors.ErrInvalidArgument)
	}
	var out *types.Role
	err := rs.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		existing, err := rs.roleRepo.GetByName(inner, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("role %q already exists: %w", name, pkgerrors.ErrConflict)
		}
		r := &types.Role{Name: name, Description: description}
		if err := rs.roleRepo.Create(inner, r); err != nil {
			return fmt.Errorf("create role: %w", err)
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (rs *roleService) UsersOf(dbc dbctx.Context, p access.Principal, roleID uint) ([]*types.User, error) {
	if err := rs.requireRole(dbc, p, roleID); err != nil {
		return nil, err
	}
	return rs.userRepo.ListByRole(dbc, roleID)
}

func (rs *roleService) ModelsOf(dbc dbctx.Context, p access.Principal, roleID uint) ([]ModelSummary, error) {
	if err := rs.requireRole(dbc, p, roleID); err != nil {
		return nil, err
	}
	models, err := rs.modelRepo.ListByRole(dbc, roleID)
	if err != nil {
		return nil, err
	}
	out := make([]ModelSummary, 0, len(models))
	for _, m := range models {
		out = append(out, summarizeModel(m))
	}
	return out, nil
}

// Delete refuses a role still attached to users or models unless force is
// set, in which case the links are removed first. Builtin roles stay.
func (rs *roleService) Delete(dbc dbctx.Context, p access.Principal, roleID uint, force bool) error {
	if !rs.resolver.IsAdmin(p) {
		return fmt.Errorf("delete role requires admin: %w", pkgerrors.ErrUnauthorized)
	}
	return rs.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		r, err := rs.roleRepo.GetByID(inner, roleID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("role %d: %w", roleID, pkgerrors.ErrNotFound)
		}
		if r.IsBuiltin() {
			return fmt.Errorf("role %q is builtin: %w", r.Name, pkgerrors.ErrInvalidArgument)
		}
		users, err := rs.roleRepo.CountUsers(inner, roleID)
		if err != nil {
			return err
		}
		models, err := rs.roleRepo.CountModels(inner, roleID)
		if err != nil {
			return err
		}
		if users+models > 0 {
			if !force {
				return fmt.Errorf("role %q in use by %d users and %d models: %w", r.Name, users, models, pkgerrors.ErrConflict)
			}
			if err := rs.roleRepo.DetachAll(inner, roleID); err != nil {
				return err
			}
		}
		if err := rs.roleRepo.Delete(inner, roleID); err != nil {
			return err
		}
		rs.log.Info("role deleted", "role", r.Name, "forced", force)
		return nil
	})
}

func (rs *roleService) requireRole(dbc dbctx.Context, p access.Principal, roleID uint) error {
	if !rs.resolver.IsAdmin(p) {
		return fmt.Errorf("role membership requires admin: %w", pkgerrors.ErrUnauthorized)
	}
	r, err := rs.roleRepo.GetByID(dbc, roleID)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("role %d: %w", roleID, pkgerrors.ErrNotFound)
	}
	return nil
}

// resolveRoles loads ids, failing with InvalidArgument when any is unknown.
func resolveRoles(dbc dbctx.Context, roleRepo repos.RoleRepo, ids []uint) ([]types.Role, error) {
	seen := make(map[uint]struct{}, len(ids))
	uniq := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })
	roles, err := roleRepo.GetByIDs(dbc, uniq)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if len(roles) != len(uniq) {
		return nil, fmt.Errorf("unknown role in %v: %w", uniq, pkgerrors.ErrInvalidArgument)
	}
	return roles, nil
}
