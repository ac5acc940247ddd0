package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/leontief-backend/internal/http/response"
	"github.com/yungbote/leontief-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/login
// body: { "username": "...", "password": "..." }
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": res.Token,
		"token_type":   res.TokenType,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
		"expires_at":   res.ExpiresAt,
		"user":         res.User,
	})
}
