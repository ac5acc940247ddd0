package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/leontief-backend/internal/http/response"
	"github.com/yungbote/leontief-backend/internal/services"
)

type RoleHandler struct {
	roleService services.RoleService
}

func NewRoleHandler(roleService services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// GET /api/roles
func (rh *RoleHandler) List(c *gin.Context) {
	roles, err := rh.roleService.List(dbcOf(c), principal(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"roles": roles})
}

// POST /api/roles
func (rh *RoleHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	r, err := rh.roleService.Create(dbcOf(c), principal(c), req.Name, req.Description)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"role": r})
}

// GET /api/roles/:role_id/users
func (rh *RoleHandler) Users(c *gin.Context) {
	id, err := uintParam(c, "role_id", "invalid_role_id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	users, err := rh.roleService.UsersOf(dbcOf(c), principal(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// GET /api/roles/:role_id/models
func (rh *RoleHandler) Models(c *gin.Context) {
	id, err := uintParam(c, "role_id", "invalid_role_id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	models, err := rh.roleService.ModelsOf(dbcOf(c), principal(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"models": models})
}

// DELETE /api/roles/:role_id?force=true
func (rh *RoleHandler) Delete(c *gin.Context) {
	id, err := uintParam(c, "role_id", "invalid_role_id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err := rh.roleService.Delete(dbcOf(c), principal(c), id, force); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
