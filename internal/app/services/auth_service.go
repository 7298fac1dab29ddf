package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/app/models/dto"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/auth"
	"github.com/yigit/devcamper/internal/pkg/email"
)

// ResetTokenTTL is how long an emailed password reset link stays valid
const ResetTokenTTL = 10 * time.Minute

// AuthService handles registration, login and the current user's account
type AuthService struct {
	userRepo   UserRepository
	tokenRepo  TokenRepository
	resetRepo  PasswordResetRepository
	mailer     email.Mailer
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	resetRepo PasswordResetRepository,
	mailer email.Mailer,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		resetRepo:  resetRepo,
		mailer:     mailer,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a user account and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role == models.RoleAdmin {
		return nil, apperrors.BadRequest("Cannot register as admin")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     role,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User registered")
	return s.generateAuthResponse(ctx, user)
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
	}

	return s.generateAuthResponse(ctx, user)
}

// RefreshToken exchanges a refresh token for a new token pair. The presented
// token is consumed, so replaying it fails.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	userID, err := s.tokenRepo.ConsumeToken(ctx, refreshToken)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTokenNotFound, apperrors.ErrTokenExpired, apperrors.ErrTokenRevoked) {
			return nil, apperrors.Wrap(err, "Invalid refresh token", http.StatusUnauthorized)
		}
		return nil, fmt.Errorf("token validation error: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrTokenInvalid, "Invalid refresh token", http.StatusUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.generateAuthResponse(ctx, user)
}

// Logout revokes every refresh token of the user
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

// GetMe returns the user behind the current token
func (s *AuthService) GetMe(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User", userID)
	}
	return user, nil
}

// UpdateDetails changes the current user's name and email
func (s *AuthService) UpdateDetails(ctx context.Context, userID int64, req *dto.UpdateDetailsRequest) (*models.User, error) {
	user, err := s.userRepo.Update(ctx, userID, &models.UserPatch{Name: req.Name, Email: req.Email})
	if err != nil {
		return nil, notFound(err, "User", userID)
	}
	return user, nil
}

// UpdatePassword checks the current password, stores the new one and signs the user in again
func (s *AuthService) UpdatePassword(ctx context.Context, userID int64, req *dto.UpdatePasswordRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User", userID)
	}

	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidCredentials, "Password is incorrect", http.StatusUnauthorized)
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return nil, notFound(err, "User", userID)
	}

	// sessions opened with the old password end here
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to revoke tokens: %w", err)
	}

	return s.generateAuthResponse(ctx, user)
}

// ForgotPassword emails a one-time reset link. resetURL is the address the
// token is appended to.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr, resetURL string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.Wrap(err, "There is no user with that email", http.StatusNotFound)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	if err := s.resetRepo.ReplaceToken(ctx, user.ID, hash, time.Now().Add(ResetTokenTTL)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, resetURL+"/"+token); err != nil {
		if delErr := s.resetRepo.DeleteTokensByUserID(ctx, user.ID); delErr != nil {
			s.logger.Error().Err(delErr).Int64("userID", user.ID).Msg("Failed to discard unsent reset token")
		}
		return apperrors.Wrap(err, "Email could not be sent", http.StatusInternalServerError)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Password reset requested")
	return nil
}

// ResetPassword sets a new password using an emailed reset token and signs the user in
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*dto.AuthResponse, error) {
	hash := auth.HashToken(token)

	userID, err := s.resetRepo.GetUserIDByToken(ctx, hash)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTokenNotFound, apperrors.ErrTokenExpired, apperrors.ErrTokenRevoked) {
			return nil, apperrors.Wrap(err, "Invalid token", http.StatusBadRequest)
		}
		return nil, fmt.Errorf("reset token validation error: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrTokenInvalid, "Invalid token", http.StatusBadRequest)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return nil, notFound(err, "User", userID)
	}

	if err := s.resetRepo.MarkTokenAsUsed(ctx, hash); err != nil {
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to revoke tokens: %w", err)
	}

	s.logger.Info().Int64("userID", userID).Msg("Password reset")
	return s.generateAuthResponse(ctx, user)
}

// generateAuthResponse creates a token pair and stores the refresh token
func (s *AuthService) generateAuthResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             pair.ExpiresIn,
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: pair.RefreshExpiresIn,
		},
		User: user,
	}, nil
}
