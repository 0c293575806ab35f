package entity

import (
	"time"
)

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusConfirmed RentalStatus = "confirmed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

type Rental struct {
	Base
	UserID            int64        `db:"user_id"`
	CarID             int64        `db:"car_id"`
	StartDate         time.Time    `db:"start_date"`
	EndDate           time.Time    `db:"end_date"`
	TotalPrice        float64      `db:"total_price"`
	Status            RentalStatus `db:"status"`
	CheckoutSessionID *string      `db:"checkout_session_id"`
}

// Days is the number of whole days booked. EndDate is exclusive.
func (r *Rental) Days() int {
	return int(r.EndDate.Sub(r.StartDate).Hours() / 24)
}
