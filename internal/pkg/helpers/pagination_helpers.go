package helpers

import (
	"github.com/mesconnect/backend/internal/app/models/dto"
)

const (
	// DefaultPageSize is the page size used when none is requested
	DefaultPageSize = 10
	// MaxPageSize caps the requested page size
	MaxPageSize = 100
)

// CalculateOffsetLimit normalizes page parameters and returns SQL offset/limit values
func CalculateOffsetLimit(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return (page - 1) * pageSize, pageSize
}

// NewPaginationInfo builds pagination metadata from normalized parameters and a total count
func NewPaginationInfo(page, pageSize int, total int64) dto.PaginationInfo {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  total,
		TotalPages:  totalPages,
	}
}
