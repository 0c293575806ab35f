package request

// CreatePaymentRequest records a payment taken outside the checkout flow.
type CreatePaymentRequest struct {
	RentalID      int64    `json:"rental_id" validate:"required,gt=0"`
	Amount        *float64 `json:"amount" validate:"required,gte=0,lte=99999999.99"`
	PaymentMethod string   `json:"payment_method" validate:"required,oneof=credit_card paypal cash"`
	Status        string   `json:"status" validate:"required,oneof=pending completed failed"`
}
