package dto

import "github.com/yigit/devcamper/internal/app/models"

// CreateUserRequest is used by admins to create any kind of user
type CreateUserRequest struct {
	Name     string          `json:"name" binding:"required,max=100"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.RoleType `json:"role" binding:"omitempty,oneof=user publisher admin"`
}

// UpdateUserRequest is used by admins; only the provided fields change
type UpdateUserRequest struct {
	Name  *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Email *string          `json:"email" binding:"omitempty,email"`
	Role  *models.RoleType `json:"role" binding:"omitempty,oneof=user publisher admin"`
}

// ToPatch converts the request into a repository patch
func (r *UpdateUserRequest) ToPatch() *models.UserPatch {
	return &models.UserPatch{Name: r.Name, Email: r.Email, Role: r.Role}
}
