package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/devcamper/internal/app/auth"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/app/models/dto"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/geocoder"
	"github.com/yigit/devcamper/internal/pkg/helpers"
)

// BootcampService handles bootcamp operations
type BootcampService struct {
	repo          BootcampRepository
	geocoder      geocoder.Geocoder
	storage       PhotoStorage
	authz         *appAuth.AuthorizationService
	maxFileUpload int64
	logger        zerolog.Logger
}

// NewBootcampService creates a new BootcampService
func NewBootcampService(
	repo BootcampRepository,
	geo geocoder.Geocoder,
	storage PhotoStorage,
	authz *appAuth.AuthorizationService,
	maxFileUpload int64,
	logger zerolog.Logger,
) *BootcampService {
	return &BootcampService{
		repo:          repo,
		geocoder:      geo,
		storage:       storage,
		authz:         authz,
		maxFileUpload: maxFileUpload,
		logger:        logger,
	}
}

// GetBootcamp retrieves a single bootcamp
func (s *BootcampService) GetBootcamp(ctx context.Context, id int64) (*models.Bootcamp, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Bootcamp", id)
	}
	return b, nil
}

// CreateBootcamp creates a bootcamp owned by user. Publishers may own only one.
func (s *BootcampService) CreateBootcamp(ctx context.Context, user *models.User, req *dto.CreateBootcampRequest) (*models.Bootcamp, error) {
	if user.Role != models.RoleAdmin {
		count, err := s.repo.CountByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count published bootcamps: %w", err)
		}
		if count > 0 {
			return nil, apperrors.Wrap(apperrors.ErrAlreadyPublished,
				fmt.Sprintf("The user with ID %d has already published a bootcamp", user.ID), http.StatusBadRequest)
		}
	}

	location, err := s.locate(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	b := &models.Bootcamp{
		Name:          req.Name,
		Slug:          helpers.Slugify(req.Name),
		Description:   req.Description,
		Website:       req.Website,
		Phone:         req.Phone,
		Email:         req.Email,
		Location:      location,
		Careers:       req.Careers,
		AverageRating: req.AverageRating,
		Housing:       req.Housing,
		JobAssistance: req.JobAssistance,
		JobGuarantee:  req.JobGuarantee,
		AcceptGi:      req.AcceptGi,
		UserID:        user.ID,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create bootcamp: %w", err)
	}

	s.logger.Info().Int64("bootcampID", b.ID).Int64("userID", user.ID).Msg("Bootcamp created")
	return b, nil
}

// UpdateBootcamp applies a partial update; only the owner or an admin may do so
func (s *BootcampService) UpdateBootcamp(ctx context.Context, user *models.User, id int64, req *dto.UpdateBootcampRequest) (*models.Bootcamp, error) {
	existing, err := s.GetBootcamp(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateOwnership(user, existing.UserID, "update", "bootcamp", id); err != nil {
		return nil, err
	}

	patch := req.ToPatch()
	if patch.Name != nil {
		slug := helpers.Slugify(*patch.Name)
		patch.Slug = &slug
	}
	if req.Address != nil {
		location, err := s.locate(ctx, *req.Address)
		if err != nil {
			return nil, err
		}
		if location != nil {
			patch.Location = location
		}
	}

	b, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, notFound(err, "Bootcamp", id)
	}
	return b, nil
}

// DeleteBootcamp removes a bootcamp and its courses
func (s *BootcampService) DeleteBootcamp(ctx context.Context, user *models.User, id int64) error {
	existing, err := s.GetBootcamp(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateOwnership(user, existing.UserID, "delete", "bootcamp", id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "Bootcamp", id)
	}
	s.removePhoto(existing.Photo)

	s.logger.Info().Int64("bootcampID", id).Int64("userID", user.ID).Msg("Bootcamp deleted")
	return nil
}

// GetBootcampsInRadius returns bootcamps within distance miles of zipcode
func (s *BootcampService) GetBootcampsInRadius(ctx context.Context, zipcode string, distance float64) ([]*models.Bootcamp, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance <= 0 {
		return nil, apperrors.BadRequest("Distance must be a positive number")
	}

	locs, err := s.geocoder.Geocode(ctx, zipcode)
	if err != nil {
		switch {
		case errors.Is(err, geocoder.ErrDisabled):
			return nil, apperrors.Unavailable(err, "Geocoding service is not configured")
		case errors.Is(err, geocoder.ErrNoResults):
			return nil, apperrors.BadRequest(fmt.Sprintf("Could not locate zipcode %s", zipcode))
		default:
			s.logger.Error().Err(err).Str("zipcode", zipcode).Msg("Geocoding failed")
			return nil, apperrors.Unavailable(err, "Geocoding service is unavailable")
		}
	}

	radius := distance / geocoder.EarthRadiusMiles
	return s.repo.FindWithinRadius(ctx, locs[0].Longitude, locs[0].Latitude, radius)
}

// UploadPhoto validates and stores a bootcamp photo, returning the stored file name
func (s *BootcampService) UploadPhoto(ctx context.Context, user *models.User, id int64, fileHeader *multipart.FileHeader) (string, error) {
	existing, err := s.GetBootcamp(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.authz.ValidateOwnership(user, existing.UserID, "update", "bootcamp", id); err != nil {
		return "", err
	}

	if fileHeader == nil {
		return "", apperrors.BadRequest("Please upload a file")
	}
	if fileHeader.Size > s.maxFileUpload {
		return "", apperrors.FileTooLarge(s.maxFileUpload)
	}

	mtype, err := detectMIME(fileHeader)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", apperrors.BadRequest("Please upload an image file")
	}

	filename := fmt.Sprintf("photo_%d%s", id, mtype.Extension())
	if _, err := s.storage.SaveFileAs(fileHeader, filename); err != nil {
		return "", fmt.Errorf("problem with file upload: %w", err)
	}

	if err := s.repo.UpdatePhoto(ctx, id, filename); err != nil {
		return "", notFound(err, "Bootcamp", id)
	}
	if existing.Photo != filename {
		s.removePhoto(existing.Photo)
	}

	s.logger.Info().Int64("bootcampID", id).Str("photo", filename).Msg("Bootcamp photo uploaded")
	return filename, nil
}

// removePhoto deletes a stored photo file; failures are only logged
func (s *BootcampService) removePhoto(photo string) {
	if photo == "" || photo == models.DefaultPhoto {
		return
	}
	if err := s.storage.DeleteFile(photo); err != nil {
		s.logger.Warn().Err(err).Str("photo", photo).Msg("Failed to remove bootcamp photo")
	}
}

func detectMIME(fileHeader *multipart.FileHeader) (*mimetype.MIME, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return mtype, nil
}

// locate geocodes address; a disabled geocoder yields a nil location
func (s *BootcampService) locate(ctx context.Context, address string) (*models.GeoLocation, error) {
	locs, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		switch {
		case errors.Is(err, geocoder.ErrDisabled):
			s.logger.Warn().Str("address", address).Msg("Geocoder disabled, storing bootcamp without location")
			return nil, nil
		case errors.Is(err, geocoder.ErrNoResults):
			return nil, apperrors.BadRequest(fmt.Sprintf("Could not geocode address %q", address))
		default:
			s.logger.Error().Err(err).Str("address", address).Msg("Geocoding failed")
			return nil, apperrors.Unavailable(err, "Geocoding service is unavailable")
		}
	}

	l := locs[0]
	loc := models.NewPoint(l.Longitude, l.Latitude)
	loc.FormattedAddress = l.FormattedAddress
	loc.Street = l.StreetName
	loc.City = l.City
	loc.State = l.StateCode
	loc.Zipcode = l.Zipcode
	loc.Country = l.CountryCode
	return loc, nil
}
