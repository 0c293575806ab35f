package request

import "car-rental/pkg/utils"

// PaginatedRequest only carries the page, every list uses utils.PageSize.
type PaginatedRequest struct {
	Page int `json:"page" validate:"min=1"`
}

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.Page, utils.PageSize)
}

func (p PaginatedRequest) Limit() int {
	return utils.PageSize
}
