package wire

import (
	"net/http"

	"car-rental/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler, auth func(http.Handler) http.Handler) {
	// All payment endpoints need a session
	r.Route("/payments", func(r chi.Router) {
		r.Use(auth)

		r.Post("/", paymentHandler.CreatePayment)
		r.Get("/", paymentHandler.GetPayments)
		r.Get("/rental/{rental}", paymentHandler.GetPaymentsByRental)
		r.Get("/{id}", paymentHandler.GetPaymentByID)
	})
}
