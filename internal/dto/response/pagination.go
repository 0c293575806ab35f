package response

import "car-rental/pkg/utils"

type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// PaginationMeta
type PaginationMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginatedResponse[T any](data []T, page int, total int64) *PaginatedResponse[T] {
	if page < 1 {
		page = 1
	}
	return &PaginatedResponse[T]{
		Data: data,
		Pagination: PaginationMeta{
			Page:       page,
			PerPage:    utils.PageSize,
			Total:      total,
			TotalPages: utils.CalculateTotalPages(total, utils.PageSize),
		},
	}
}
