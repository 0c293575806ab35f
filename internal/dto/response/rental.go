package response

import (
	"time"

	"car-rental/internal/data/entity"
)

// CheckoutResponse is returned by POST /rentals without the usual envelope.
type CheckoutResponse struct {
	URL string `json:"url"`
}

type RentalResponse struct {
	ID                int64               `json:"id"`
	UserID            int64               `json:"user_id"`
	CarID             int64               `json:"car_id"`
	StartDate         string              `json:"start_date"`
	EndDate           string              `json:"end_date"`
	TotalPrice        float64             `json:"total_price"`
	Status            entity.RentalStatus `json:"status"`
	CheckoutSessionID *string             `json:"checkout_session_id,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func RentalToResponse(rental *entity.Rental) RentalResponse {
	return RentalResponse{
		ID:                rental.ID,
		UserID:            rental.UserID,
		CarID:             rental.CarID,
		StartDate:         rental.StartDate.Format("2006-01-02"),
		EndDate:           rental.EndDate.Format("2006-01-02"),
		TotalPrice:        rental.TotalPrice,
		Status:            rental.Status,
		CheckoutSessionID: rental.CheckoutSessionID,
		CreatedAt:         rental.CreatedAt,
		UpdatedAt:         rental.UpdatedAt,
	}
}

func RentalsToResponse(rentals []*entity.Rental) []RentalResponse {
	out := make([]RentalResponse, 0, len(rentals))
	for _, rental := range rentals {
		out = append(out, RentalToResponse(rental))
	}
	return out
}
