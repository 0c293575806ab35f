package request

// Pointers let "required" tell a missing field apart from 0 or false.
type CreateCarRequest struct {
	Brand       string   `json:"brand" validate:"required,max=255"`
	Model       string   `json:"model" validate:"required,max=255"`
	Year        *int     `json:"year" validate:"required,gte=1900,lte=2100"`
	PricePerDay *float64 `json:"price_per_day" validate:"required,gte=0,lte=99999999.99"`
	IsAvailable *bool    `json:"is_available" validate:"required"`
}

// UpdateCarRequest is a full replacement (PUT), same rules as create.
type UpdateCarRequest = CreateCarRequest

type PatchCarRequest struct {
	Brand       *string  `json:"brand" validate:"omitnil,min=1,max=255"`
	Model       *string  `json:"model" validate:"omitnil,min=1,max=255"`
	Year        *int     `json:"year" validate:"omitnil,gte=1900,lte=2100"`
	PricePerDay *float64 `json:"price_per_day" validate:"omitnil,gte=0,lte=99999999.99"`
	IsAvailable *bool    `json:"is_available"`
}

type SearchCarRequest struct {
	Query string `json:"query" validate:"required,max=255"`
}
