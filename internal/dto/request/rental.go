package request

const DateLayout = "2006-01-02"

type CreateRentalRequest struct {
	CarID      int64    `json:"car_id" validate:"required,gt=0"`
	StartDate  string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	// lte is the NUMERIC(10,2) ceiling
	TotalPrice *float64 `json:"total_price" validate:"required,gte=0,lte=99999999.99"`
}
