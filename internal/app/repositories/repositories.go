package repositories

import (
	"github.com/yigit/devcamper/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository     *UserRepository
	TokenRepository    *TokenRepository
	BootcampRepository *BootcampRepository
	CourseRepository   *CourseRepository
	ResetRepository    *PasswordResetTokenRepository
}

// NewRepositories initializes all repositories over conn, which is either the
// pool or a transaction.
func NewRepositories(conn db.DBTX) *Repositories {
	return &Repositories{
		UserRepository:     NewUserRepository(conn),
		TokenRepository:    NewTokenRepository(conn),
		BootcampRepository: NewBootcampRepository(conn),
		CourseRepository:   NewCourseRepository(conn),
		ResetRepository:    NewPasswordResetTokenRepository(conn),
	}
}
