package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-based page request. The zero value is the first default-sized page.
type Page struct {
	Number int
	Size   int
}

// PageFromQuery reads ?page= and ?size=; missing or invalid values fall back to defaults
func PageFromQuery(c *gin.Context) Page {
	return Page{
		Number: positiveQuery(c, "page"),
		Size:   positiveQuery(c, "size"),
	}.normalized()
}

func positiveQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return 0
	}
	return v
}

func (p Page) normalized() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 || p.Size > MaxPageSize {
		p.Size = DefaultPageSize
	}
	return p
}

// Limit is the SQL LIMIT of the page
func (p Page) Limit() int {
	return p.normalized().Size
}

// Offset is the SQL OFFSET of the page
func (p Page) Offset() uint64 {
	n := p.normalized()
	return uint64(n.Number-1) * uint64(n.Size)
}

// Info describes the page within totalItems results. A page past the end reports the last page.
func (p Page) Info(totalItems int64) dto.PaginationInfo {
	n := p.normalized()

	totalPages := 1
	if totalItems > 0 {
		totalPages = int((totalItems + int64(n.Size) - 1) / int64(n.Size))
	}

	return dto.PaginationInfo{
		CurrentPage: min(n.Number, totalPages),
		TotalPages:  totalPages,
		PageSize:    n.Size,
		TotalItems:  totalItems,
	}
}

// NewPaginatedResponse bundles a page of items with its pagination info
func NewPaginatedResponse(items interface{}, totalItems int64, page Page) dto.PaginatedResponse {
	return dto.PaginatedResponse{
		Items:      items,
		Pagination: page.Info(totalItems),
	}
}

// ParseIDParam reads a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
