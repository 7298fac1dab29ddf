package controllers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/app/models/dto"
	"github.com/yigit/devcamper/internal/middleware"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
)

// BootcampService is the business logic used by BootcampController
type BootcampService interface {
	GetBootcamp(ctx context.Context, id int64) (*models.Bootcamp, error)
	CreateBootcamp(ctx context.Context, user *models.User, req *dto.CreateBootcampRequest) (*models.Bootcamp, error)
	UpdateBootcamp(ctx context.Context, user *models.User, id int64, req *dto.UpdateBootcampRequest) (*models.Bootcamp, error)
	DeleteBootcamp(ctx context.Context, user *models.User, id int64) error
	GetBootcampsInRadius(ctx context.Context, zipcode string, distance float64) ([]*models.Bootcamp, error)
	UploadPhoto(ctx context.Context, user *models.User, id int64, fileHeader *multipart.FileHeader) (string, error)
}

// BootcampController handles bootcamp endpoints
type BootcampController struct {
	bootcampService BootcampService
}

// NewBootcampController creates a new BootcampController
func NewBootcampController(bootcampService BootcampService) *BootcampController {
	return &BootcampController{bootcampService: bootcampService}
}

// GetBootcamps lists bootcamps with filtering, selection, sorting and pagination
// @Summary List bootcamps
// @Tags bootcamps
// @Produce json
// @Param select query string false "Comma separated fields to return"
// @Param sort query string false "Comma separated sort fields, prefix with - for descending"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(25)
// @Success 200 {object} dto.PaginatedResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Router /bootcamps [get]
func (c *BootcampController) GetBootcamps(ctx *gin.Context) {
	middleware.RespondAdvancedResults(ctx)
}

// GetBootcamp retrieves a single bootcamp
// @Summary Get bootcamp by ID
// @Tags bootcamps
// @Produce json
// @Param id path int true "Bootcamp ID"
// @Success 200 {object} dto.APIResponse{data=models.Bootcamp}
// @Failure 404 {object} dto.ErrorResponse "Bootcamp not found"
// @Router /bootcamps/{id} [get]
func (c *BootcampController) GetBootcamp(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Bootcamp")
	if !ok {
		return
	}

	bootcamp, err := c.bootcampService.GetBootcamp(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(bootcamp))
}

// CreateBootcamp creates a bootcamp owned by the current user
// @Summary Create bootcamp
// @Tags bootcamps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateBootcampRequest true "Bootcamp"
// @Success 201 {object} dto.APIResponse{data=models.Bootcamp}
// @Failure 400 {object} dto.ErrorResponse "Invalid input or publisher already owns a bootcamp"
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Failure 403 {object} dto.ErrorResponse "Role not allowed"
// @Router /bootcamps [post]
func (c *BootcampController) CreateBootcamp(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req dto.CreateBootcampRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	bootcamp, err := c.bootcampService.CreateBootcamp(ctx.Request.Context(), user, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(bootcamp))
}

// UpdateBootcamp applies a partial update
// @Summary Update bootcamp
// @Tags bootcamps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bootcamp ID"
// @Param request body dto.UpdateBootcampRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Bootcamp}
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Bootcamp not found"
// @Router /bootcamps/{id} [put]
func (c *BootcampController) UpdateBootcamp(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id", "Bootcamp")
	if !ok {
		return
	}

	var req dto.UpdateBootcampRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	bootcamp, err := c.bootcampService.UpdateBootcamp(ctx.Request.Context(), user, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(bootcamp))
}

// DeleteBootcamp removes a bootcamp and its courses
// @Summary Delete bootcamp
// @Tags bootcamps
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bootcamp ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Bootcamp not found"
// @Router /bootcamps/{id} [delete]
func (c *BootcampController) DeleteBootcamp(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id", "Bootcamp")
	if !ok {
		return
	}

	if err := c.bootcampService.DeleteBootcamp(ctx.Request.Context(), user, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.EmptyObject{}))
}

// GetBootcampsInRadius lists bootcamps within a distance of a zipcode
// @Summary Bootcamps within radius
// @Tags bootcamps
// @Produce json
// @Param zipcode path string true "Zipcode"
// @Param distance path number true "Distance in miles"
// @Success 200 {object} dto.ListResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid distance or unknown zipcode"
// @Failure 503 {object} dto.ErrorResponse "Geocoder unavailable"
// @Router /bootcamps/radius/{zipcode}/{distance} [get]
func (c *BootcampController) GetBootcampsInRadius(ctx *gin.Context) {
	distance, err := strconv.ParseFloat(ctx.Param("distance"), 64)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.BadRequest("Distance must be a positive number"))
		return
	}

	bootcamps, err := c.bootcampService.GetBootcampsInRadius(ctx.Request.Context(), ctx.Param("zipcode"), distance)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewListResponse(bootcamps, len(bootcamps)))
}

// UploadPhoto stores the bootcamp photo sent as multipart field "file"
// @Summary Upload bootcamp photo
// @Tags bootcamps
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Bootcamp ID"
// @Param file formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=dto.PhotoResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or non-image file"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Router /bootcamps/{id}/photo [put]
func (c *BootcampController) UploadPhoto(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx, "id", "Bootcamp")
	if !ok {
		return
	}

	// a missing file is reported by the service after the ownership check
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		if tooLarge := middleware.UploadError(ctx, err); tooLarge != nil {
			middleware.HandleAPIError(ctx, tooLarge)
			return
		}
		fileHeader = nil
	}

	photo, err := c.bootcampService.UploadPhoto(ctx.Request.Context(), user, id, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PhotoResponse{Photo: photo}))
}
