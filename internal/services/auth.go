package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/leontief-backend/internal/access"
	"github.com/yungbote/leontief-backend/internal/data/repos"
	types "github.com/yungbote/leontief-backend/internal/domain"
	"github.com/yungbote/leontief-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/leontief-backend/internal/pkg/errors"
	"github.com/yungbote/leontief-backend/internal/platform/logger"
)

type LoginResult struct {
	Token     string      `json:"access_token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *types.User `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	ResolvePrincipal(ctx context.Context, tokenString string) (access.Principal, error)
	HashPassword(password string) (string, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	jwt.RegisteredClaims
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
	bcryptCost   int
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = 120 * time.Minute
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

// Login fails with the same Unauthorized error for an unknown user, a wrong
// password and a disabled account.
func (as *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", pkgerrors.ErrInvalidArgument)
	}
	user, err := as.userRepo.GetByUsername(dbctx.Context{Ctx: ctx}, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	invalid := fmt.Errorf("invalid credentials: %w", pkgerrors.ErrUnauthorized)
	if user == nil {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		as.log.Debug("password mismatch", "user_id", user.ID)
		return nil, invalid
	}
	if !user.Enabled {
		as.log.Info("login refused for disabled user", "user_id", user.ID)
		return nil, invalid
	}

	expiresAt := time.Now().Add(as.accessTTL)
	token, err := as.generateAccessToken(user, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, TokenType: "bearer", ExpiresAt: expiresAt, User: user}, nil
}

func (as *authService) generateAccessToken(user *types.User, expiresAt time.Time) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// ResolvePrincipal maps an empty token to the anonymous principal. Any
// token that is present but unusable is Unauthorized.
func (as *authService) ResolvePrincipal(ctx context.Context, tokenString string) (access.Principal, error) {
	if tokenString == "" {
		return access.AnonymousPrincipal(), nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return access.AnonymousPrincipal(), fmt.Errorf("parse token: %v: %w", err, pkgerrors.ErrUnauthorized)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return access.AnonymousPrincipal(), fmt.Errorf("invalid or expired token: %w", pkgerrors.ErrUnauthorized)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return access.AnonymousPrincipal(), fmt.Errorf("invalid subject in token: %w", pkgerrors.ErrUnauthorized)
	}
	user, err := as.userRepo.GetByID(dbctx.Context{Ctx: ctx}, uint(id))
	if err != nil {
		return access.AnonymousPrincipal(), fmt.Errorf("load user: %w", err)
	}
	if user == nil || !user.Enabled {
		return access.AnonymousPrincipal(), fmt.Errorf("user %d not active: %w", id, pkgerrors.ErrUnauthorized)
	}
	return access.FromUser(user), nil
}

func (as *authService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required: %w", pkgerrors.ErrInvalidArgument)
	}
	raw, err := bcrypt.GenerateFromPassword([]byte(password), as.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(raw), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
