package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/leontief-backend/internal/http/response"
	"github.com/yungbote/leontief-backend/internal/platform/ctxutil"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
	"github.com/yungbote/leontief-backend/internal/services"
)

var errMissingToken = errors.New("missing or invalid token")

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// OptionalAuth attaches the caller's principal; a request without a token
// continues as anonymous, a bad token is rejected.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !am.attach(c) {
			return
		}
		c.Next()
	}
}

// RequireAuth is OptionalAuth that also rejects anonymous callers.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !am.attach(c) {
			return
		}
		if !ctxutil.Principal(c.Request.Context()).IsAuthenticated() {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errMissingToken)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) attach(c *gin.Context) bool {
	tokenString := bearerToken(c)
	p, err := am.authService.ResolvePrincipal(c.Request.Context(), tokenString)
	if err != nil {
		am.log.Debug("token rejected", "error", err)
		response.RespondServiceError(c, err)
		c.Abort()
		return false
	}
	ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
		TokenString: tokenString,
		Principal:   p,
	})
	c.Request = c.Request.WithContext(ctx)
	return true
}

// bearerToken reads only the Authorization header; ?token= is ignored.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
