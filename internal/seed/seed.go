// Package seed loads fixture data into the database and ensures a default
// admin account exists.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/yigit/devcamper/internal/app/models"
	appRepos "github.com/yigit/devcamper/internal/app/repositories"
	"github.com/yigit/devcamper/internal/db"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/auth"
	"github.com/yigit/devcamper/internal/pkg/helpers"
)

// Fixture file names inside the data directory
const (
	UsersFile     = "users.json"
	BootcampsFile = "bootcamps.json"
	CoursesFile   = "courses.json"
)

// Seeder writes fixtures through the repositories so the same rules apply
// as for API writes (slugs, average cost).
type Seeder struct {
	pool   *pgxpool.Pool
	repos  *appRepos.Repositories
	logger zerolog.Logger
}

// New creates a Seeder
func New(pool *pgxpool.Pool, lgr zerolog.Logger) *Seeder {
	return &Seeder{
		pool:   pool,
		repos:  appRepos.NewRepositories(pool),
		logger: lgr,
	}
}

// Summary counts the records created by Import
type Summary struct {
	Users     int
	Bootcamps int
	Courses   int
}

// UserFixture is one entry of users.json
type UserFixture struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// BootcampFixture is one entry of bootcamps.json. User is the owner's email.
type BootcampFixture struct {
	User          string                 `json:"user"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	Website       string                 `json:"website"`
	Phone         string                 `json:"phone"`
	Email         string                 `json:"email"`
	Location      *appModels.GeoLocation `json:"location"`
	Careers       []string               `json:"careers"`
	Housing       bool                   `json:"housing"`
	JobAssistance bool                   `json:"jobAssistance"`
	JobGuarantee  bool                   `json:"jobGuarantee"`
	AcceptGi      bool                   `json:"acceptGi"`
}

// CourseFixture is one entry of courses.json. Bootcamp is the bootcamp name;
// the course belongs to that bootcamp's owner.
type CourseFixture struct {
	Bootcamp             string  `json:"bootcamp"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Weeks                string  `json:"weeks"`
	Tuition              float64 `json:"tuition"`
	MinimumSkill         string  `json:"minimumSkill"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable"`
}

// Fixtures is the full content of a data directory
type Fixtures struct {
	Users     []UserFixture
	Bootcamps []BootcampFixture
	Courses   []CourseFixture
}

// LoadFixtures reads the three fixture files from dataDir
func LoadFixtures(dataDir string) (*Fixtures, error) {
	f := &Fixtures{}
	if err := readJSON(filepath.Join(dataDir, UsersFile), &f.Users); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dataDir, BootcampsFile), &f.Bootcamps); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dataDir, CoursesFile), &f.Courses); err != nil {
		return nil, err
	}
	return f, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// CreateDefaultAdmin creates an admin account unless one with email already exists.
// An empty email disables it.
func (s *Seeder) CreateDefaultAdmin(ctx context.Context, name, email, password string) error {
	if email == "" {
		s.logger.Debug().Msg("No default admin configured, skipping")
		return nil
	}

	_, err := s.repos.UserRepository.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info().Str("email", email).Msg("Default admin already exists")
		return nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return fmt.Errorf("failed to look up default admin: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	admin := &appModels.User{
		Name:     name,
		Email:    email,
		Role:     appModels.RoleAdmin,
		Password: hashedPassword,
	}
	if err := s.repos.UserRepository.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	s.logger.Info().Int64("userID", admin.ID).Str("email", email).Msg("Default admin created")
	return nil
}

// Import creates every fixture found in dataDir in a single transaction.
// Nothing is written when any fixture fails.
func (s *Seeder) Import(ctx context.Context, dataDir string) (*Summary, error) {
	fixtures, err := LoadFixtures(dataDir)
	if err != nil {
		return nil, err
	}

	// passwords are hashed before the transaction opens
	hashes := make([]string, len(fixtures.Users))
	for i, uf := range fixtures.Users {
		hashes[i], err = auth.HashPassword(uf.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password for %s: %w", uf.Email, err)
		}
	}

	summary := &Summary{}
	err = db.WithTransaction(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		repos := appRepos.NewRepositories(tx)
		*summary = Summary{}

		owners := make(map[string]int64, len(fixtures.Users))
		for i, uf := range fixtures.Users {
			user := &appModels.User{
				Name:     uf.Name,
				Email:    uf.Email,
				Role:     appModels.RoleType(uf.Role),
				Password: hashes[i],
			}
			if err := repos.UserRepository.Create(ctx, user); err != nil {
				return fmt.Errorf("failed to import user %s: %w", uf.Email, err)
			}
			owners[uf.Email] = user.ID
			summary.Users++
		}

		bootcamps := make(map[string]*appModels.Bootcamp, len(fixtures.Bootcamps))
		for _, bf := range fixtures.Bootcamps {
			ownerID, ok := owners[bf.User]
			if !ok {
				return fmt.Errorf("bootcamp %q references unknown user %q", bf.Name, bf.User)
			}

			b := &appModels.Bootcamp{
				Name:          bf.Name,
				Slug:          helpers.Slugify(bf.Name),
				Description:   bf.Description,
				Website:       bf.Website,
				Phone:         bf.Phone,
				Email:         bf.Email,
				Location:      bf.Location,
				Careers:       bf.Careers,
				Housing:       bf.Housing,
				JobAssistance: bf.JobAssistance,
				JobGuarantee:  bf.JobGuarantee,
				AcceptGi:      bf.AcceptGi,
				UserID:        ownerID,
			}
			if err := repos.BootcampRepository.Create(ctx, b); err != nil {
				return fmt.Errorf("failed to import bootcamp %q: %w", bf.Name, err)
			}
			bootcamps[bf.Name] = b
			summary.Bootcamps++
		}

		for _, cf := range fixtures.Courses {
			b, ok := bootcamps[cf.Bootcamp]
			if !ok {
				return fmt.Errorf("course %q references unknown bootcamp %q", cf.Title, cf.Bootcamp)
			}

			c := &appModels.Course{
				Title:                cf.Title,
				Description:          cf.Description,
				Weeks:                cf.Weeks,
				Tuition:              cf.Tuition,
				MinimumSkill:         appModels.SkillLevel(cf.MinimumSkill),
				ScholarshipAvailable: cf.ScholarshipAvailable,
				BootcampID:           b.ID,
				UserID:               b.UserID,
			}
			if err := repos.CourseRepository.Create(ctx, c); err != nil {
				return fmt.Errorf("failed to import course %q: %w", cf.Title, err)
			}
			summary.Courses++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("users", summary.Users).
		Int("bootcamps", summary.Bootcamps).
		Int("courses", summary.Courses).
		Msg("Data imported")
	return summary, nil
}

// Destroy removes all application data and resets id sequences
func (s *Seeder) Destroy(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE TABLE courses, bootcamps, password_reset_tokens, refresh_tokens, users RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("failed to destroy data: %w", err)
	}

	s.logger.Info().Msg("Data destroyed")
	return nil
}
