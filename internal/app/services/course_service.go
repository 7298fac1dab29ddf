package services

import (
	"context"
	"fmt"

	appAuth "github.com/yigit/devcamper/internal/app/auth"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/app/models/dto"
)

// CourseService handles course operations
type CourseService struct {
	courses   CourseRepository
	bootcamps BootcampRepository
	authz     *appAuth.AuthorizationService
}

// NewCourseService creates a new CourseService
func NewCourseService(courses CourseRepository, bootcamps BootcampRepository, authz *appAuth.AuthorizationService) *CourseService {
	return &CourseService{
		courses:   courses,
		bootcamps: bootcamps,
		authz:     authz,
	}
}

// GetCourse retrieves a course with its bootcamp summary
func (s *CourseService) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Course", id)
	}
	return c, nil
}

// GetBootcampCourses lists all courses of a bootcamp
func (s *CourseService) GetBootcampCourses(ctx context.Context, bootcampID int64) ([]*models.Course, error) {
	courses, err := s.courses.ListByBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// AddCourse adds a course to a bootcamp the user owns
func (s *CourseService) AddCourse(ctx context.Context, user *models.User, bootcampID int64, req *dto.CreateCourseRequest) (*models.Course, error) {
	bootcamp, err := s.bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		return nil, notFound(err, "Bootcamp", bootcampID)
	}
	if err := s.authz.ValidateOwnership(user, bootcamp.UserID, "add a course to", "bootcamp", bootcampID); err != nil {
		return nil, err
	}

	c := &models.Course{
		Title:                req.Title,
		Description:          req.Description,
		Weeks:                req.Weeks,
		Tuition:              *req.Tuition,
		MinimumSkill:         req.MinimumSkill,
		ScholarshipAvailable: req.ScholarshipAvailable,
		BootcampID:           bootcampID,
		UserID:               user.ID,
	}

	if err := s.courses.Create(ctx, c); err != nil {
		return nil, notFound(err, "Bootcamp", bootcampID)
	}
	return c, nil
}

// UpdateCourse applies a partial update; only the course owner or an admin may do so
func (s *CourseService) UpdateCourse(ctx context.Context, user *models.User, id int64, req *dto.UpdateCourseRequest) (*models.Course, error) {
	existing, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwnership(user, existing.UserID, "update", "course", id); err != nil {
		return nil, err
	}

	c, err := s.courses.Update(ctx, id, req.ToPatch())
	if err != nil {
		return nil, notFound(err, "Course", id)
	}
	return c, nil
}

// DeleteCourse removes a course
func (s *CourseService) DeleteCourse(ctx context.Context, user *models.User, id int64) error {
	existing, err := s.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateOwnership(user, existing.UserID, "delete", "course", id); err != nil {
		return err
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return notFound(err, "Course", id)
	}
	return nil
}
