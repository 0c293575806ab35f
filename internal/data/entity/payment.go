package entity

import (
	"fmt"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodPaypal     PaymentMethod = "paypal"
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodStripe     PaymentMethod = "stripe"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusPaid      PaymentStatus = "paid"
)

// ParsePaymentMethod rejects anything outside the closed set of methods.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodCreditCard, PaymentMethodPaypal, PaymentMethodCash, PaymentMethodStripe:
		return m, nil
	}
	return "", fmt.Errorf("invalid payment method %q", s)
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusPaid:
		return st, nil
	}
	return "", fmt.Errorf("invalid payment status %q", s)
}

// IsGatewayManaged reports whether the method is only ever recorded by the
// checkout callback flow, never by a manual payment entry.
func (m PaymentMethod) IsGatewayManaged() bool {
	return m == PaymentMethodStripe
}

type Payment struct {
	Base
	RentalID      int64         `db:"rental_id"`
	UserID        int64         `db:"user_id"`
	Amount        float64       `db:"amount"`
	PaymentMethod PaymentMethod `db:"payment_method"`
	Status        PaymentStatus `db:"status"`
}
