package wire

import (
	"net/http"

	"car-rental/internal/adaptor"
	"car-rental/pkg/middleware"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireRental(
	r chi.Router,
	rentalHandler *adaptor.RentalHandler,
	auth func(http.Handler) http.Handler,
	signer *utils.CallbackSigner,
	log *zap.Logger,
) {
	// ==================== CHECKOUT CALLBACKS ====================
	// Browser redirects from the payment page, guarded by ?token= when a
	// callback secret is configured
	r.With(middleware.CallbackToken(signer, utils.CallbackPaymentSuccess, "rental", log)).
		Get("/payment-success/{rental}", rentalHandler.PaymentSuccess)
	r.With(middleware.CallbackToken(signer, utils.CallbackPaymentCancel, "rental", log)).
		Get("/payment-cancel/{rental}", rentalHandler.PaymentCancel)

	// Signed server-to-server notifications
	r.Post("/webhooks/stripe", rentalHandler.StripeWebhook)

	// ==================== PROTECTED ROUTES ====================
	r.Route("/rentals", func(r chi.Router) {
		r.Use(auth)

		r.Post("/", rentalHandler.CreateRental)
		r.Get("/", rentalHandler.GetRentals)
		r.Get("/user/{user}", rentalHandler.GetRentalsByUser)
		r.Get("/car/{car}", rentalHandler.GetRentalsByCar)
		r.Get("/{id}", rentalHandler.GetRentalByID)
		r.Delete("/{id}", rentalHandler.DeleteRental)
		r.Delete("/{id}/cancel", rentalHandler.CancelRental)
	})
}
