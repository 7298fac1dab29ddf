package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
)

const uploadLimitKey = "uploadLimit"

// multipartSlack is allowed on top of the file limit for part headers and boundaries
const multipartSlack = 64 << 10

// LimitUpload caps the request body at maxFile plus multipart framing. Reading
// past the cap fails, so an oversize upload is rejected while it streams in.
func LimitUpload(maxFile int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFile+multipartSlack)
		c.Set(uploadLimitKey, maxFile)
		c.Next()
	}
}

// UploadError converts a failed form read into the error to report. A body
// cut off by LimitUpload becomes the file size error; anything else is nil,
// which callers treat as a missing file.
func UploadError(c *gin.Context, err error) error {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return nil
	}
	limit := c.GetInt64(uploadLimitKey)
	if limit <= 0 {
		limit = tooLarge.Limit
	}
	return apperrors.FileTooLarge(limit)
}
