package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/data/repos"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Institution string
	AgreedTerms bool
	RoleIDs     []uint
}

// ProfilePatch holds optional profile edits. Enabled may only be changed by
// an admin.
type ProfilePatch struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Institution *string
	Enabled     *bool
}

type UserService interface {
	Me(dbc dbctx.Context, p access.Principal) (*types.User, error)
	Create(dbc dbctx.Context, p access.Principal, in CreateUserInput) (*types.User, error)
	List(dbc dbctx.Context, p access.Principal) ([]*types.User, error)
	Get(dbc dbctx.Context, p access.Principal, id uint) (*types.User, error)
	UpdateProfile(dbc dbctx.Context, p access.Principal, id uint, patch ProfilePatch) (*types.User, error)
	SetRoles(dbc dbctx.Context, p access.Principal, id uint, roleIDs []uint) (*types.User, error)
	BootstrapAdmin(ctx context.Context, username, password string) (*types.User, error)
}

type userService struct {
	db          *gorm.DB
	log         *logger.Logger
	resolver    *access.Resolver
	userRepo    repos.UserRepo
	roleRepo    repos.RoleRepo
	authService AuthService
}

func NewUserService(db *gorm.DB, log *logger.Logger, resolver *access.Resolver, userRepo repos.UserRepo, roleRepo repos.RoleRepo, authService AuthService) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:          db,
		log:         serviceLog,
		resolver:    resolver,
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		authService: authService,
	}
}

func (us *userService) Me(dbc dbctx.Context, p access.Principal) (*types.User, error) {
	if !p.IsAuthenticated() {
		return nil, fmt.Errorf("not signed in: %w", pkgerrors.ErrUnauthorized)
	}
	return us.load(dbc, p.UserID)
}

func (us *userService) Create(dbc dbctx.Context, p access.Principal, in CreateUserInput) (*types.User, error) {
	if !us.resolver.IsAdmin(p) {
		return nil, fmt.Errorf("create user requires admin: %w", pkgerrors.ErrUnauthorized)
	}
	return us.create(dbc, in)
}

func (us *userService) create(dbc dbctx.Context, in CreateUserInput) (*types.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", pkgerrors.ErrInvalidArgument)
	}
	hash, err := us.authService.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var out *types.User
	err = us.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		exists, err := us.userRepo.UsernameOrEmailExists(inner, username, email)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("username or email already registered: %w", pkgerrors.ErrConflict)
		}
		roles, err := resolveRoles(inner, us.roleRepo, in.RoleIDs)
		if err != nil {
			return err
		}
		u := &types.User{
			Username:    username,
			Email:       email,
			Password:    hash,
			FirstName:   strings.TrimSpace(in.FirstName),
			LastName:    strings.TrimSpace(in.LastName),
			Institution: strings.TrimSpace(in.Institution),
			AgreedTerms: in.AgreedTerms,
			Enabled:     true,
		}
		if err := us.userRepo.Create(inner, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := us.userRepo.ReplaceRoles(inner, u, roles); err != nil {
			return fmt.Errorf("set user roles: %w", err)
		}
		u.Roles = roles
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	us.log.Info("user created", "user_id", out.ID)
	return out, nil
}

func (us *userService) List(dbc dbctx.Context, p access.Principal) ([]*types.User, error) {
	if !us.resolver.IsAdmin(p) {
		return nil, fmt.Errorf("list users requires admin: %w", pkgerrors.ErrUnauthorized)
	}
	return us.userRepo.List(dbc)
}

// Get lets a user read their own record; anyone else's is NotFound unless
// the caller is an admin.
func (us *userService) Get(dbc dbctx.Context, p access.Principal, id uint) (*types.User, error) {
	if !us.selfOrAdmin(p, id) {
		return nil, fmt.Errorf("user %d: %w", id, pkgerrors.ErrNotFound)
	}
	return us.load(dbc, id)
}

func (us *userService) UpdateProfile(dbc dbctx.Context, p access.Principal, id uint, patch ProfilePatch) (*types.User, error) {
	if !us.selfOrAdmin(p, id) {
		return nil, fmt.Errorf("user %d: %w", id, pkgerrors.ErrNotFound)
	}
	if patch.Enabled != nil && !us.resolver.IsAdmin(p) {
		return nil, fmt.Errorf("enabling users requires admin: %w", pkgerrors.ErrUnauthorized)
	}
	fields := map[string]any{}
	if patch.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*patch.LastName)
	}
	if patch.Institution != nil {
		fields["institution"] = strings.TrimSpace(*patch.Institution)
	}
	if patch.Enabled != nil {
		fields["enabled"] = *patch.Enabled
	}

	var out *types.User
	err := us.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		u, err := us.load(inner, id)
		if err != nil {
			return err
		}
		if patch.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*patch.Email))
			if email != u.Email {
				exists, err := us.userRepo.EmailExists(inner, email, u.ID)
				if err != nil {
					return err
				}
				if exists {
					return fmt.Errorf("email already registered: %w", pkgerrors.ErrConflict)
				}
				fields["email"] = email
			}
		}
		if err := us.userRepo.UpdateProfile(inner, id, fields); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		out, err = us.load(inner, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (us *userService) SetRoles(dbc dbctx.Context, p access.Principal, id uint, roleIDs []uint) (*types.User, error) {
	if !us.resolver.IsAdmin(p) {
		return nil, fmt.Errorf("set user roles requires admin: %w", pkgerrors.ErrUnauthorized)
	}
	var out *types.User
	err := us.db.WithContext(ctxOf(dbc)).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctxOf(dbc), Tx: tx}
		u, err := us.load(inner, id)
		if err != nil {
			return err
		}
		roles, err := resolveRoles(inner, us.roleRepo, roleIDs)
		if err != nil {
			return err
		}
		if err := us.userRepo.ReplaceRoles(inner, u, roles); err != nil {
			return fmt.Errorf("set user roles: %w", err)
		}
		u.Roles = roles
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BootstrapAdmin creates username with the admin role, or grants the role to
// an existing user of that name. Safe to run repeatedly.
func (us *userService) BootstrapAdmin(ctx context.Context, username, password string) (*types.User, error) {
	dbc := dbctx.Context{Ctx: ctx}
	admin, err := us.roleRepo.GetByName(dbc, types.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, fmt.Errorf("admin role missing, run migrate first: %w", pkgerrors.ErrNotFound)
	}
	u, err := us.userRepo.GetByUsername(dbc, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return us.create(dbc, CreateUserInput{Username: username, Password: password, AgreedTerms: true, RoleIDs: []uint{admin.ID}})
	}
	for _, r := range u.Roles {
		if r.ID == admin.ID {
			return u, nil
		}
	}
	roles := append(append([]types.Role{}, u.Roles...), *admin)
	if err := us.userRepo.ReplaceRoles(dbc, u, roles); err != nil {
		return nil, fmt.Errorf("grant admin: %w", err)
	}
	u.Roles = roles
	us.log.Info("admin role granted", "user_id", u.ID)
	return u, nil
}

func (us *userService) selfOrAdmin(p access.Principal, id uint) bool {
	return us.resolver.IsAdmin(p) || (p.IsAuthenticated() && p.UserID == id)
}

func (us *userService) load(dbc dbctx.Context, id uint) (*types.User, error) {
	u, err := us.userRepo.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, pkgerrors.ErrNotFound)
	}
	return u, nil
}
