package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/app/models/dto"
	"github.com/yigit/devcamper/internal/middleware"
)

// CourseService is the business logic used by CourseController
type CourseService interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	GetBootcampCourses(ctx context.Context, bootcampID int64) ([]*models.Course, error)
	AddCourse(ctx context.Context, user *models.User, bootcampID int64, req *dto.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, user *models.User, id int64, req *dto.UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, user *models.User, id int64) error
}

// CourseController handles course endpoints
type CourseController struct {
	courseService CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// GetCourses lists courses with filtering and pagination
// @Summary List courses
// @Tags courses
// @Produce json
// @Success 200 {object} dto.PaginatedResponse
// @Router /courses [get]
func (c *CourseController) GetCourses(ctx *gin.Context) {
	middleware.RespondAdvancedResults(ctx)
}

// GetBootcampCourses lists every course of a bootcamp
// @Summary List courses of a bootcamp
// @Tags courses
// @Produce json
// @Param id path int true "Bootcamp ID"
// @Success 200 {object} dto.ListResponse
// @Router /bootcamps/{id}/courses [get]
func (c *CourseController) GetBootcampCourses(ctx *gin.Context) {
	bootcampID, ok := parseID(ctx, "id", "Bootcamp")
	if !ok {
		return
	}

	courses, err := c.courseService.GetBootcampCourses(ctx.Request.Context(), bootcampID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewListResponse(courses, len(courses)))
}

// GetCourse retrieves a course with its bootcamp
// @Summary Get course by ID
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Course")
	if !ok {
		return
	}

	course, err := c.courseService.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// AddCourse adds a course to a bootcamp
// @Summary Add course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bootcamp ID"
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course}
// @Failure 403 {object} dto.ErrorResponse "Not the bootcamp owner"
// @Failure 404 {object} dto.ErrorResponse "Bootcamp not found"
// @Router /bootcamps/{id}/courses [post]
func (c *CourseController) AddCourse(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	bootcampID, ok := parseID(ctx, "id", "Bootcamp")
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.AddCourse(ctx.Request.Context(), user, bootcampID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(course))
}

// UpdateCourse applies a partial update
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id", "Course")
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.UpdateCourse(ctx.Request.Context(), user, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(course))
}

// DeleteCourse removes a course
// @Summary Delete course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id", "Course")
	if !ok {
		return
	}

	if err := c.courseService.DeleteCourse(ctx.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.EmptyObject{}))
}
