package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/leontief-backend/internal/http/response"
	"github.com/yungbote/leontief-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/users/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.Me(dbcOf(c), principal(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// POST /api/users
func (uh *UserHandler) Create(c *gin.Context) {
	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Institution string `json:"institution"`
		AgreedTerms bool   `json:"agreed_terms"`
		RoleIDs     []uint `json:"role_ids"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	u, err := uh.userService.Create(dbcOf(c), principal(c), services.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Institution: req.Institution,
		AgreedTerms: req.AgreedTerms,
		RoleIDs:     req.RoleIDs,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": u})
}

// GET /api/users
func (uh *UserHandler) List(c *gin.Context) {
	users, err := uh.userService.List(dbcOf(c), principal(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// GET /api/users/:user_id
func (uh *UserHandler) Get(c *gin.Context) {
	id, err := uintParam(c, "user_id", "invalid_user_id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	u, err := uh.userService.Get(dbcOf(c), principal(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// PATCH /api/users/:user_id
// body: any of first_name, last_name, email, institution, enabled (admin)
func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	id, err := uintParam(c, "user_id", "invalid_user_id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req struct {
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		Email       *string `json:"email"`
		Institution *string `json:"institution"`
		Enabled     *bool   `json:"enabled"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	u, err := uh.userService.UpdateProfile(dbcOf(c), principal(c), id, services.ProfilePatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Institution: req.Institution,
		Enabled:     req.Enabled,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// PUT /api/users/:user_id/roles
// body: { "role_ids": [1, 2] }
func (uh *UserHandler) SetRoles(c *gin.Context) {
	id, err := uintParam(c, "user_id", "invalid_user_id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req struct {
		RoleIDs []uint `json:"role_ids"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	u, err := uh.userService.SetRoles(dbcOf(c), principal(c), id, req.RoleIDs)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}
