package auth

import (
	"fmt"

	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/logger"
)

// AuthorizationService decides whether a user may modify a resource.
// Admins may modify anything; everybody else only what they own.
type AuthorizationService struct{}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// CanModify reports whether user may change a resource owned by ownerID
func (s *AuthorizationService) CanModify(user *models.User, ownerID int64) bool {
	if user == nil {
		return false
	}
	return user.Role == models.RoleAdmin || user.ID == ownerID
}

// ValidateOwnership returns a 403 error unless user may perform action on the resource
func (s *AuthorizationService) ValidateOwnership(user *models.User, ownerID int64, action, resource string, resourceID int64) error {
	if s.CanModify(user, ownerID) {
		return nil
	}

	var userID int64
	if user != nil {
		userID = user.ID
	}
	logger.Warn().Int64("userID", userID).Str("resource", resource).Int64("resourceID", resourceID).Str("action", action).Msg("Ownership check failed")
	return apperrors.Forbidden(fmt.Sprintf("User %d is not authorized to %s %s %d", userID, action, resource, resourceID))
}
