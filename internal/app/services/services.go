// Package services holds the business rules of the API. Each service depends
// on the narrow repository interfaces declared here.
package services

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
)

// BootcampRepository is the storage used by BootcampService and CourseService
type BootcampRepository interface {
	Create(ctx context.Context, b *models.Bootcamp) error
	GetByID(ctx context.Context, id int64) (*models.Bootcamp, error)
	Update(ctx context.Context, id int64, patch *models.BootcampPatch) (*models.Bootcamp, error)
	UpdatePhoto(ctx context.Context, id int64, photo string) error
	Delete(ctx context.Context, id int64) error
	CountByUser(ctx context.Context, userID int64) (int64, error)
	FindWithinRadius(ctx context.Context, lng, lat, radius float64) ([]*models.Bootcamp, error)
}

// CourseRepository is the storage used by CourseService
type CourseRepository interface {
	Create(ctx context.Context, c *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	ListByBootcamp(ctx context.Context, bootcampID int64) ([]*models.Course, error)
	Update(ctx context.Context, id int64, patch *models.CoursePatch) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
}

// UserRepository is the storage used by AuthService and UserService
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id int64, patch *models.UserPatch) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
}

// TokenRepository stores single-use refresh tokens
type TokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	ConsumeToken(ctx context.Context, token string) (int64, error)
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// PasswordResetRepository stores password reset tokens by their hash
type PasswordResetRepository interface {
	ReplaceToken(ctx context.Context, userID int64, tokenHash string, expiryDate time.Time) error
	GetUserIDByToken(ctx context.Context, tokenHash string) (int64, error)
	MarkTokenAsUsed(ctx context.Context, tokenHash string) error
	DeleteTokensByUserID(ctx context.Context, userID int64) error
}

// PhotoStorage persists uploaded bootcamp photos
type PhotoStorage interface {
	SaveFileAs(fileHeader *multipart.FileHeader, filename string) (string, error)
	DeleteFile(filePath string) error
}

// notFound turns a repository miss into the client-facing 404 for resource id
func notFound(err error, resource string, id int64) error {
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return apperrors.NotFound(resource, id)
	}
	return err
}
