package auth

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
)

func TestCanModify(t *testing.T) {
	s := NewAuthorizationService()

	owner := &models.User{ID: 1, Role: models.RolePublisher}
	other := &models.User{ID: 2, Role: models.RolePublisher}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}

	assert.True(t, s.CanModify(owner, 1))
	assert.False(t, s.CanModify(other, 1))
	assert.True(t, s.CanModify(admin, 1))
	assert.False(t, s.CanModify(nil, 1))
}

func TestValidateOwnership(t *testing.T) {
	s := NewAuthorizationService()

	assert.NoError(t, s.ValidateOwnership(&models.User{ID: 1, Role: models.RolePublisher}, 1, "update", "bootcamp", 10))

	err := s.ValidateOwnership(&models.User{ID: 2, Role: models.RolePublisher}, 1, "update", "bootcamp", 10)
	var resp *apperrors.ErrorResponse
	if assert.True(t, errors.As(err, &resp)) {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "User 2 is not authorized to update bootcamp 10", resp.Message)
	}
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
