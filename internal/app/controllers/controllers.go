// Package controllers handles HTTP request handling
package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/middleware"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
)

// parseID reads a numeric path parameter. Anything that is not a positive
// integer cannot name a record, so it is reported as a missing resource.
func parseID(ctx *gin.Context, param, resource string) (int64, bool) {
	raw := ctx.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NotFound(resource, raw))
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated user or records a 401
func currentUser(ctx *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.Unauthorized("Invalid authorization credentials"))
		return nil, false
	}
	return user, true
}
