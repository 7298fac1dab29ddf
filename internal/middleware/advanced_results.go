package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/devcamper/internal/app/models/dto"
	"github.com/yigit/devcamper/internal/pkg/helpers"
	"github.com/yigit/devcamper/internal/pkg/query"
)

const advancedResultsKey = "advancedResults"

// ResultSource runs a parsed list query against one collection
type ResultSource interface {
	Find(ctx context.Context, p *query.Params) ([]map[string]interface{}, int64, error)
}

// AdvancedResults parses filter, select, sort and pagination parameters,
// runs them against source and attaches the paginated envelope to the context.
func AdvancedResults(source ResultSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, err := query.Parse(c.Request.URL.Query())
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		rows, total, err := source.Find(c.Request.Context(), params)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		if rows == nil {
			rows = []map[string]interface{}{}
		}

		c.Set(advancedResultsKey, &dto.PaginatedResponse{
			Success:    true,
			Count:      len(rows),
			Pagination: helpers.NewPagination(params.Page, params.Limit, total),
			Data:       rows,
		})
		c.Next()
	}
}

// GetAdvancedResults returns the envelope built by AdvancedResults
func GetAdvancedResults(c *gin.Context) (*dto.PaginatedResponse, bool) {
	v, exists := c.Get(advancedResultsKey)
	if !exists {
		return nil, false
	}
	res, ok := v.(*dto.PaginatedResponse)
	return res, ok
}

// RespondAdvancedResults writes the envelope built by AdvancedResults
func RespondAdvancedResults(c *gin.Context) {
	res, ok := GetAdvancedResults(c)
	if !ok {
		c.JSON(http.StatusOK, &dto.PaginatedResponse{Success: true, Data: []map[string]interface{}{}})
		return
	}
	c.JSON(http.StatusOK, res)
}
