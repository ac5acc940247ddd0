package user

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, u *types.User) error
	GetByID(dbc dbctx.Context, id uint) (*types.User, error)
	GetByUsername(dbc dbctx.Context, username string) (*types.User, error)
	UsernameOrEmailExists(dbc dbctx.Context, username, email string) (bool, error)
	EmailExists(dbc dbctx.Context, email string, exceptID uint) (bool, error)
	List(dbc dbctx.Context) ([]*types.User, error)
	ListByRole(dbc dbctx.Context, roleID uint) ([]*types.User, error)
	UpdateProfile(dbc dbctx.Context, id uint, fields map[string]any) error
	ReplaceRoles(dbc dbctx.Context, u *types.User, roles []types.Role) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) conn(dbc dbctx.Context) *gorm.DB {
	return dbc.Conn(ur.db)
}

func (ur *userRepo) Create(dbc dbctx.Context, u *types.User) error {
	if u == nil {
		return nil
	}
	return ur.conn(dbc).Omit(clause.Associations).Create(u).Error
}

// GetByID returns nil, nil when the user does not exist.
func (ur *userRepo) GetByID(dbc dbctx.Context, id uint) (*types.User, error) {
	return ur.first(dbc, "id = ?", id)
}

func (ur *userRepo) GetByUsername(dbc dbctx.Context, username string) (*types.User, error) {
	if username == "" {
		return nil, nil
	}
	return ur.first(dbc, "username = ?", username)
}

func (ur *userRepo) first(dbc dbctx.Context, query string, args ...any) (*types.User, error) {
	var u types.User
	err := ur.conn(dbc).Preload("Roles").Where(query, args...).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (ur *userRepo) UsernameOrEmailExists(dbc dbctx.Context, username, email string) (bool, error) {
	var count int64
	q := ur.conn(dbc).Model(&types.User{}).Where("username = ?", username)
	if email != "" {
		q = q.Or("email = ?", email)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// EmailExists ignores the user exceptID so a profile can keep its own email.
func (ur *userRepo) EmailExists(dbc dbctx.Context, email string, exceptID uint) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	if err := ur.conn(dbc).
		Model(&types.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) List(dbc dbctx.Context) ([]*types.User, error) {
	var results []*types.User
	if err := ur.conn(dbc).Preload("Roles").Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) ListByRole(dbc dbctx.Context, roleID uint) ([]*types.User, error) {
	var results []*types.User
	if err := ur.conn(dbc).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.role_id = ?", roleID).
		Order("users.id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) UpdateProfile(dbc dbctx.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return ur.conn(dbc).
		Model(&types.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (ur *userRepo) ReplaceRoles(dbc dbctx.Context, u *types.User, roles []types.Role) error {
	assoc := ur.conn(dbc).Model(u).Association("Roles")
	if len(roles) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(roles)
}
