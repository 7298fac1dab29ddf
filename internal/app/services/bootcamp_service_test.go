package services

import (
	"bytes"
	"context"
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appAuth "github.com/yigit/devcamper/internal/app/auth"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/app/models/dto"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/geocoder"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

var jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")

var bostonLocation = geocoder.Location{
	Latitude:         42.3601,
	Longitude:        -71.0589,
	FormattedAddress: "233 Bay State Rd, Boston, MA 02215, US",
	StreetName:       "233 Bay State Rd",
	City:             "Boston",
	StateCode:        "MA",
	Zipcode:          "02215",
	CountryCode:      "US",
}

type bootcampFixture struct {
	repo    *fakeBootcampRepo
	geo     *fakeGeocoder
	storage *fakeStorage
	service *BootcampService
}

func newBootcampFixture(maxUpload int64) *bootcampFixture {
	f := &bootcampFixture{
		repo:    newFakeBootcampRepo(),
		geo:     &fakeGeocoder{locations: []geocoder.Location{bostonLocation}},
		storage: &fakeStorage{},
	}
	f.service = NewBootcampService(f.repo, f.geo, f.storage, appAuth.NewAuthorizationService(), maxUpload, zerolog.Nop())
	return f
}

func createRequest(name string) *dto.CreateBootcampRequest {
	return &dto.CreateBootcampRequest{
		Name:        name,
		Description: "Full stack web development",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     []string{"Web Development", "Business"},
		Housing:     true,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperrors.ErrorResponse
	require.True(t, errors.As(err, &appErr), "expected ErrorResponse, got %v", err)
	return appErr.StatusCode
}

func multipartFile(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File[field][0]
}

func TestCreateBootcamp(t *testing.T) {
	f := newBootcampFixture(1000000)
	publisher := &models.User{ID: 1, Role: models.RolePublisher}

	b, err := f.service.CreateBootcamp(context.Background(), publisher, createRequest("Devworks Bootcamp"))
	require.NoError(t, err)

	assert.Equal(t, "devworks-bootcamp", b.Slug)
	assert.Equal(t, int64(1), b.UserID)
	require.NotNil(t, b.Location)
	assert.Equal(t, "Point", b.Location.Type)
	assert.Equal(t, [2]float64{-71.0589, 42.3601}, b.Location.Coordinates)
	assert.Equal(t, "Boston", b.Location.City)
	assert.Equal(t, "MA", b.Location.State)
	assert.Equal(t, []string{"233 Bay State Rd Boston MA 02215"}, f.geo.calls)
}

func TestCreateBootcampPublisherLimit(t *testing.T) {
	f := newBootcampFixture(1000000)
	publisher := &models.User{ID: 1, Role: models.RolePublisher}

	_, err := f.service.CreateBootcamp(context.Background(), publisher, createRequest("First"))
	require.NoError(t, err)

	_, err = f.service.CreateBootcamp(context.Background(), publisher, createRequest("Second"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyPublished))
	assert.Equal(t, "The user with ID 1 has already published a bootcamp", err.Error())

	admin := &models.User{ID: 2, Role: models.RoleAdmin}
	for _, name := range []string{"Admin One", "Admin Two"} {
		_, err := f.service.CreateBootcamp(context.Background(), admin, createRequest(name))
		require.NoError(t, err)
	}
}

func TestCreateBootcampGeocoderDisabled(t *testing.T) {
	f := newBootcampFixture(1000000)
	f.geo.err = geocoder.ErrDisabled

	b, err := f.service.CreateBootcamp(context.Background(), &models.User{ID: 1, Role: models.RolePublisher}, createRequest("Nowhere"))
	require.NoError(t, err)
	assert.Nil(t, b.Location)
}

func TestCreateBootcampGeocoderFailure(t *testing.T) {
	f := newBootcampFixture(1000000)
	f.geo.err = geocoder.ErrNoResults

	_, err := f.service.CreateBootcamp(context.Background(), &models.User{ID: 1, Role: models.RolePublisher}, createRequest("Nowhere"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	f.geo.err = errors.New("connection refused")
	_, err = f.service.CreateBootcamp(context.Background(), &models.User{ID: 1, Role: models.RolePublisher}, createRequest("Nowhere"))
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))
}

func TestGetBootcampNotFound(t *testing.T) {
	f := newBootcampFixture(1000000)

	_, err := f.service.GetBootcamp(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Equal(t, "Bootcamp not found with id of 42", err.Error())
}

func TestUpdateBootcamp(t *testing.T) {
	f := newBootcampFixture(1000000)
	owner := &models.User{ID: 1, Role: models.RolePublisher}
	b, err := f.service.CreateBootcamp(context.Background(), owner, createRequest("Devworks"))
	require.NoError(t, err)

	name := "ModernTech Bootcamp"
	updated, err := f.service.UpdateBootcamp(context.Background(), owner, b.ID, &dto.UpdateBootcampRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "moderntech-bootcamp", updated.Slug)
	assert.Len(t, f.geo.calls, 1, "address unchanged, no geocoding")

	address := "220 Pawtucket St, Lowell, MA 01854"
	_, err = f.service.UpdateBootcamp(context.Background(), owner, b.ID, &dto.UpdateBootcampRequest{Address: &address})
	require.NoError(t, err)
	assert.Equal(t, address, f.geo.calls[1])
}

func TestUpdateBootcampOwnership(t *testing.T) {
	f := newBootcampFixture(1000000)
	owner := &models.User{ID: 1, Role: models.RolePublisher}
	b, err := f.service.CreateBootcamp(context.Background(), owner, createRequest("Devworks"))
	require.NoError(t, err)

	name := "Hijacked"
	_, err = f.service.UpdateBootcamp(context.Background(), &models.User{ID: 2, Role: models.RolePublisher}, b.ID, &dto.UpdateBootcampRequest{Name: &name})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	err = f.service.DeleteBootcamp(context.Background(), &models.User{ID: 2, Role: models.RolePublisher}, b.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	// admins may modify anything
	_, err = f.service.UpdateBootcamp(context.Background(), &models.User{ID: 3, Role: models.RoleAdmin}, b.ID, &dto.UpdateBootcampRequest{Name: &name})
	require.NoError(t, err)
}

func TestDeleteBootcamp(t *testing.T) {
	f := newBootcampFixture(1000000)
	owner := &models.User{ID: 1, Role: models.RolePublisher}
	b, err := f.service.CreateBootcamp(context.Background(), owner, createRequest("Devworks"))
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteBootcamp(context.Background(), owner, b.ID))
	assert.Empty(t, f.storage.deleted, "default photo is never removed")

	err = f.service.DeleteBootcamp(context.Background(), owner, b.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestGetBootcampsInRadius(t *testing.T) {
	f := newBootcampFixture(1000000)
	_, err := f.service.CreateBootcamp(context.Background(), &models.User{ID: 1, Role: models.RolePublisher}, createRequest("Devworks"))
	require.NoError(t, err)

	bootcamps, err := f.service.GetBootcampsInRadius(context.Background(), "02118", 10)
	require.NoError(t, err)
	assert.Len(t, bootcamps, 1)
	require.Len(t, f.repo.radius, 3)
	assert.Equal(t, -71.0589, f.repo.radius[0])
	assert.Equal(t, 42.3601, f.repo.radius[1])
	assert.InDelta(t, 10/3963.0, f.repo.radius[2], 1e-12)
}

func TestGetBootcampsInRadiusErrors(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		geoErr   error
		status   int
	}{
		{"non-positive distance", 0, nil, http.StatusBadRequest},
		{"NaN distance", math.NaN(), nil, http.StatusBadRequest},
		{"infinite distance", math.Inf(1), nil, http.StatusBadRequest},
		{"negative infinite distance", math.Inf(-1), nil, http.StatusBadRequest},
		{"unknown zipcode", 10, geocoder.ErrNoResults, http.StatusBadRequest},
		{"geocoder disabled", 10, geocoder.ErrDisabled, http.StatusServiceUnavailable},
		{"provider down", 10, errors.New("timeout"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBootcampFixture(1000000)
			f.geo.err = tt.geoErr

			_, err := f.service.GetBootcampsInRadius(context.Background(), "00000", tt.distance)
			require.Error(t, err)
			assert.Equal(t, tt.status, statusOf(t, err))
			if tt.geoErr == nil {
				assert.Empty(t, f.geo.calls, "invalid distance is rejected before geocoding")
			}
		})
	}
}

func TestUploadPhoto(t *testing.T) {
	f := newBootcampFixture(1000000)
	owner := &models.User{ID: 1, Role: models.RolePublisher}
	b, err := f.service.CreateBootcamp(context.Background(), owner, createRequest("Devworks"))
	require.NoError(t, err)

	// extension comes from the content, not the client's file name
	name, err := f.service.UploadPhoto(context.Background(), owner, b.ID, multipartFile(t, "file", "camp.jpeg", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "photo_1.png", name)
	assert.Contains(t, f.storage.saved, "photo_1.png")

	stored, err := f.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "photo_1.png", stored.Photo)
	assert.Empty(t, f.storage.deleted)

	// a replacement with another format drops the old file
	name, err = f.service.UploadPhoto(context.Background(), owner, b.ID, multipartFile(t, "file", "camp.png", jpegHeader))
	require.NoError(t, err)
	assert.Equal(t, "photo_1.jpg", name)
	assert.Equal(t, []string{"photo_1.png"}, f.storage.deleted)
	assert.Contains(t, f.storage.saved, "photo_1.jpg")
	assert.NotContains(t, f.storage.saved, "photo_1.png")

	require.NoError(t, f.service.DeleteBootcamp(context.Background(), owner, b.ID))
	assert.Equal(t, []string{"photo_1.png", "photo_1.jpg"}, f.storage.deleted)
}

func TestUploadPhotoValidation(t *testing.T) {
	f := newBootcampFixture(16)
	owner := &models.User{ID: 1, Role: models.RolePublisher}
	b, err := f.service.CreateBootcamp(context.Background(), owner, createRequest("Devworks"))
	require.NoError(t, err)

	_, err = f.service.UploadPhoto(context.Background(), owner, b.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "Please upload a file", err.Error())

	_, err = f.service.UploadPhoto(context.Background(), owner, b.ID, multipartFile(t, "file", "big.png", pngHeader))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Equal(t, "Please upload an image less than 16 B", err.Error())

	_, err = f.service.UploadPhoto(context.Background(), owner, b.ID, multipartFile(t, "file", "notes.png", []byte("plain text")))
	require.Error(t, err)
	assert.Equal(t, "Please upload an image file", err.Error())

	_, err = f.service.UploadPhoto(context.Background(), &models.User{ID: 9, Role: models.RolePublisher}, b.ID, multipartFile(t, "file", "a.png", pngHeader))
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	assert.Empty(t, f.storage.saved)
}
