package adaptor

import (
	"errors"
	"io"
	"net/http"

	"car-rental/internal/dto/request"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

// maxWebhookBody caps what is read from the processor before verification.
const maxWebhookBody = 64 << 10

type RentalHandler struct {
	service usecase.RentalService
	log     *zap.Logger
}

func NewRentalHandler(service usecase.RentalService, log *zap.Logger) *RentalHandler {
	return &RentalHandler{
		service: service,
		log:     log.With(zap.String("handler", "rental")),
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

// CreateRental handles POST /api/rentals. Clients redirect to the returned
// url, so the body is {url} or {error} without the usual envelope.
func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.CreateRentalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	checkout, err := h.service.Initiate(r.Context(), userID, &req)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, checkout)
}

func (h *RentalHandler) writeBookingError(w http.ResponseWriter, err error) {
	var vErr *usecase.ValidationError

	switch {
	case errors.As(err, &vErr):
		h.log.Warn("create rental validation failed", zap.Error(err))
		utils.WriteJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Validation failed", Errors: vErr.Fields})

	case errors.Is(err, usecase.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})

	case errors.Is(err, usecase.ErrConflict):
		utils.WriteJSON(w, http.StatusConflict, errorBody{Error: err.Error()})

	case errors.Is(err, usecase.ErrGateway):
		h.log.Error("create rental failed - payment gateway", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, errorBody{Error: usecase.GatewayMessage(err)})

	default:
		h.log.Error("Failed to create rental", zap.Error(err))
		utils.WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}

// PaymentSuccess handles GET /api/payment-success/{rental}
func (h *RentalHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	rentalID, ok := pathID(w, r, "rental")
	if !ok {
		return
	}

	payment, err := h.service.FinalizeSuccess(r.Context(), rentalID)
	if err != nil {
		handleServiceError(w, h.log, err, "finalize payment")
		return
	}

	utils.ResponseSuccess(w, "Payment successful", payment)
}

// PaymentCancel handles GET /api/payment-cancel/{rental}
func (h *RentalHandler) PaymentCancel(w http.ResponseWriter, r *http.Request) {
	rentalID, ok := pathID(w, r, "rental")
	if !ok {
		return
	}

	rental, err := h.service.FinalizeCancel(r.Context(), rentalID)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel payment")
		return
	}

	utils.ResponseSuccess(w, "Rental cancelled", rental)
}

// CancelRental handles DELETE /api/rentals/{id}/cancel
func (h *RentalHandler) CancelRental(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rentalID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	rental, err := h.service.CancelOwned(r.Context(), userID, rentalID)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel rental")
		return
	}

	utils.ResponseSuccess(w, "Rental cancelled", rental)
}

// StripeWebhook handles POST /api/webhooks/stripe
func (h *RentalHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		handleServiceError(w, h.log, err, "handle webhook")
		return
	}

	utils.ResponseSuccess(w, "received", nil)
}

// GetRentals handles GET /api/rentals
func (h *RentalHandler) GetRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.service.GetRentals(r.Context(), pageRequest(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get rentals")
		return
	}

	utils.ResponseSuccess(w, "success", rentals)
}

// GetRentalByID handles GET /api/rentals/{id}
func (h *RentalHandler) GetRentalByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	rental, err := h.service.GetRentalByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "get rental")
		return
	}

	utils.ResponseSuccess(w, "success", rental)
}

// GetRentalsByUser handles GET /api/rentals/user/{user}
func (h *RentalHandler) GetRentalsByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user")
	if !ok {
		return
	}

	rentals, err := h.service.GetRentalsByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get rentals by user")
		return
	}

	utils.ResponseSuccess(w, "success", rentals)
}

// GetRentalsByCar handles GET /api/rentals/car/{car}
func (h *RentalHandler) GetRentalsByCar(w http.ResponseWriter, r *http.Request) {
	carID, ok := pathID(w, r, "car")
	if !ok {
		return
	}

	rentals, err := h.service.GetRentalsByCar(r.Context(), carID)
	if err != nil {
		handleServiceError(w, h.log, err, "get rentals by car")
		return
	}

	utils.ResponseSuccess(w, "success", rentals)
}

// DeleteRental handles DELETE /api/rentals/{id}
func (h *RentalHandler) DeleteRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteRental(r.Context(), id); err != nil {
		handleServiceError(w, h.log, err, "delete rental")
		return
	}

	utils.ResponseSuccess(w, "Rental deleted", nil)
}
