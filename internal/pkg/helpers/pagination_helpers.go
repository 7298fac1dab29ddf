package helpers

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/yigit/devcamper/internal/app/models/dto"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
	DefaultPage     = 1 // Default page is 1-based

	// MaxPage keeps (page-1)*MaxPageSize well inside a Postgres bigint OFFSET
	MaxPage = math.MaxInt32
)

// ParsePaginationParams converts raw page/limit query values into a 1-based page
// and a page size. Missing, malformed or non-positive values fall back to the
// defaults; pages above MaxPage and sizes above MaxPageSize are clamped.
func ParsePaginationParams(pageStr, limitStr string) (page, limit int) {
	page, err := strconv.Atoi(strings.TrimSpace(pageStr))
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(strings.TrimSpace(pageStr), "-") {
		page, err = MaxPage, nil
	}
	if err != nil || page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}

	limit, err = strconv.Atoi(strings.TrimSpace(limitStr))
	if err != nil || limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return page, limit
}

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
func CalculateOffsetLimit(page, limit int) (offset uint64, size uint64) {
	page, limit = clampPage(page, limit)
	return uint64(page-1) * uint64(limit), uint64(limit)
}

// NewPagination builds the next/prev descriptors for a page of a listing with
// total matching items. next is set while items remain past this page, prev
// whenever this is not the first page.
func NewPagination(page, limit int, total int64) dto.Pagination {
	page, limit = clampPage(page, limit)

	startIndex := int64(page-1) * int64(limit)
	endIndex := int64(page) * int64(limit)

	var pagination dto.Pagination
	if endIndex < total {
		pagination.Next = &dto.PageRef{Page: page + 1, Limit: limit}
	}
	if startIndex > 0 {
		pagination.Prev = &dto.PageRef{Page: page - 1, Limit: limit}
	}
	return pagination
}

func clampPage(page, limit int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	return page, limit
}
