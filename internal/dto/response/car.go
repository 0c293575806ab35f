package response

import (
	"time"

	"car-rental/internal/data/entity"
)

type CarResponse struct {
	ID          int64     `json:"id"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	PricePerDay float64   `json:"price_per_day"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func CarToResponse(car *entity.Car) CarResponse {
	return CarResponse{
		ID:          car.ID,
		Brand:       car.Brand,
		Model:       car.Model,
		Year:        car.Year,
		PricePerDay: car.PricePerDay,
		IsAvailable: car.IsAvailable,
		CreatedAt:   car.CreatedAt,
		UpdatedAt:   car.UpdatedAt,
	}
}

func CarsToResponse(cars []*entity.Car) []CarResponse {
	out := make([]CarResponse, 0, len(cars))
	for _, car := range cars {
		out = append(out, CarToResponse(car))
	}
	return out
}
