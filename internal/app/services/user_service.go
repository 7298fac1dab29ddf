package services

import (
	"context"
	"fmt"

	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/app/models/dto"
	"github.com/yigit/devcamper/internal/pkg/auth"
	"github.com/yigit/devcamper/internal/pkg/logger"
)

// UserService handles admin user management
type UserService struct {
	userRepo UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User", id)
	}
	return user, nil
}

// CreateUser creates a user with any role
func (s *UserService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Password: hashedPassword,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User created by admin")
	return user, nil
}

// UpdateUser applies a partial update to a user
func (s *UserService) UpdateUser(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.Update(ctx, id, req.ToPatch())
	if err != nil {
		return nil, notFound(err, "User", id)
	}
	return user, nil
}

// DeleteUser removes a user
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return notFound(err, "User", id)
	}
	return nil
}
