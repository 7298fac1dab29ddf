package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/auth"
	"github.com/yigit/devcamper/internal/pkg/logger"
)

const currentUserKey = "currentUser"

// UserLoader loads the user referenced by a token
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	users      UserLoader
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
	}
}

// Protect requires a valid bearer token and attaches its user to the context
func (m *AuthMiddleware) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			HandleAPIError(c, unauthorized(err))
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				HandleAPIError(c, unauthorized(apperrors.ErrTokenExpired))
				return
			}
			HandleAPIError(c, unauthorized(apperrors.ErrTokenInvalid))
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				HandleAPIError(c, unauthorized(apperrors.ErrTokenInvalid))
				return
			}
			logger.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to load token user")
			HandleAPIError(c, err)
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

// Authorize allows only users whose role is in roles. It must run after Protect.
func (m *AuthMiddleware) Authorize(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			HandleAPIError(c, unauthorized(apperrors.ErrUnauthorized))
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		HandleAPIError(c, apperrors.Wrap(apperrors.ErrPermissionDenied,
			"You do not have the right access level for this action", http.StatusForbidden))
	}
}

// SetCurrentUser attaches user to the request context
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
}

// CurrentUser returns the user attached by Protect
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func unauthorized(err error) error {
	return apperrors.Wrap(err, "Invalid authorization credentials", http.StatusUnauthorized)
}
