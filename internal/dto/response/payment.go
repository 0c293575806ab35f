package response

import (
	"time"

	"car-rental/internal/data/entity"
)

type PaymentResponse struct {
	ID            int64                `json:"id"`
	RentalID      int64                `json:"rental_id"`
	UserID        int64                `json:"user_id"`
	Amount        float64              `json:"amount"`
	PaymentMethod entity.PaymentMethod `json:"payment_method"`
	Status        entity.PaymentStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID,
		RentalID:      payment.RentalID,
		UserID:        payment.UserID,
		Amount:        payment.Amount,
		PaymentMethod: payment.PaymentMethod,
		Status:        payment.Status,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
	}
}

func PaymentsToResponse(payments []*entity.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		out = append(out, PaymentToResponse(payment))
	}
	return out
}
