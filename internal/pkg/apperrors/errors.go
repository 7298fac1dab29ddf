package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrDuplicateKey     = errors.New("duplicate field value entered")
	ErrInvalidReference = errors.New("referenced resource does not exist")

	// Authentication errors
	ErrUnauthorized       = errors.New("invalid authorization credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Bootcamp errors
	ErrAlreadyPublished = errors.New("user has already published a bootcamp")

	// External services
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ErrorResponse is an error carrying the message and HTTP status code that
// should reach the client.
type ErrorResponse struct {
	Message    string
	StatusCode int
	Err        error
}

// Error implements error interface
func (e *ErrorResponse) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode)
}

// Unwrap implements errors.Unwrap interface
func (e *ErrorResponse) Unwrap() error {
	return e.Err
}

// New creates an ErrorResponse from a message and status code
func New(message string, statusCode int) *ErrorResponse {
	return &ErrorResponse{Message: message, StatusCode: statusCode}
}

// Wrap attaches a client-facing message and status code to an underlying error
func Wrap(err error, message string, statusCode int) *ErrorResponse {
	return &ErrorResponse{Message: message, StatusCode: statusCode, Err: err}
}

// NotFound builds the standard 404 for a missing record
func NotFound(resource string, id interface{}) *ErrorResponse {
	return Wrap(ErrResourceNotFound, fmt.Sprintf("%s not found with id of %v", resource, id), http.StatusNotFound)
}

// BadRequest builds a 400 with the given message
func BadRequest(message string) *ErrorResponse {
	return Wrap(ErrBadRequest, message, http.StatusBadRequest)
}

// FileTooLarge builds the 400 for an upload above limit bytes
func FileTooLarge(limit int64) *ErrorResponse {
	return BadRequest(fmt.Sprintf("Please upload an image less than %s", humanize.Bytes(uint64(limit))))
}

// Unauthorized builds a 401 with the given message
func Unauthorized(message string) *ErrorResponse {
	return Wrap(ErrUnauthorized, message, http.StatusUnauthorized)
}

// Forbidden builds a 403 with the given message
func Forbidden(message string) *ErrorResponse {
	return Wrap(ErrPermissionDenied, message, http.StatusForbidden)
}

// Unavailable builds a 503 with the given message
func Unavailable(err error, message string) *ErrorResponse {
	if err == nil {
		err = ErrServiceUnavailable
	}
	return Wrap(fmt.Errorf("%w: %w", ErrServiceUnavailable, err), message, http.StatusServiceUnavailable)
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
