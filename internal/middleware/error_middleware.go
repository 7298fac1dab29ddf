package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/devcamper/internal/app/models/dto"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/logger"
	"github.com/yigit/devcamper/internal/pkg/validation"
)

// HandleAPIError records err on the context and stops the handler chain.
// ErrorHandler writes the response.
func HandleAPIError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last error recorded by a handler as
// {success:false, error, code}
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("Request failed")
		}

		c.JSON(status, body)
	}
}

// NotFoundHandler answers requests that match no route
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrorCodeResourceNotFound,
			"Route not found: "+c.Request.Method+" "+c.Request.URL.Path))
	}
}

func errorResponse(err error) (int, *dto.ErrorResponse) {
	var appErr *apperrors.ErrorResponse
	if errors.As(err, &appErr) {
		code := dto.CodeForStatus(appErr.StatusCode)
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			code = dto.ErrorCodeInvalidCredentials
		case errors.Is(err, apperrors.ErrTokenExpired):
			code = dto.ErrorCodeExpiredToken
		case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrTokenNotFound, apperrors.ErrTokenRevoked):
			code = dto.ErrorCodeInvalidToken
		case errors.Is(err, apperrors.ErrValidationFailed):
			code = dto.ErrorCodeValidationFailed
		}
		return appErr.StatusCode, dto.NewErrorResponse(code, appErr.Error())
	}

	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorResponse(dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrDuplicateKey):
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeResourceAlreadyExists, "Duplicate field value entered")
	case errors.Is(err, apperrors.ErrInvalidReference):
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeBadRequest, "Referenced resource does not exist")
	case errors.As(err, &verrs):
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeValidationFailed, validation.FormatErrors(verrs))
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeValidationFailed, err.Error())
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeBadRequest, "Invalid request body")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case apperrors.Is(err, apperrors.ErrUnauthorized, apperrors.ErrTokenExpired, apperrors.ErrTokenInvalid, apperrors.ErrTokenNotFound, apperrors.ErrTokenRevoked):
		return http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrorCodeUnauthorized, "Invalid authorization credentials")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorResponse(dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, dto.NewErrorResponse(dto.ErrorCodeExternalServiceError, "Service unavailable")
	default:
		return http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeInternalServer, "Server Error")
	}
}
