package utils

import "github.com/gofiber/fiber/v2"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination carries offset/limit derived from query parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// GetPagination reads page and limit query parameters with sane bounds.
func GetPagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Paginated wraps a result list with its paging metadata.
type Paginated struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func NewPaginated(data interface{}, total int64, p Pagination) Paginated {
	return Paginated{Data: data, Total: total, Page: p.Page, Limit: p.Limit}
}
