package domain

import (
	"github.com/yungbote/leontief-backend/internal/domain/iomodel"
	"github.com/yungbote/leontief-backend/internal/domain/user"
)

const (
	RoleGuest = user.RoleGuest
	RoleAdmin = user.RoleAdmin
)

type (
	User = user.User
	Role = user.Role

	Model     = iomodel.Model
	Workspace = iomodel.Workspace
	Sector    = iomodel.Sector
	Category  = iomodel.Category
	ModelRef  = iomodel.ModelRef
)

var (
	Permanent     = iomodel.Permanent
	WorkspaceRef  = iomodel.WorkspaceRef
	ParseModelRef = iomodel.ParseModelRef
)
