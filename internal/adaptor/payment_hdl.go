package adaptor

import (
	"net/http"

	"car-rental/internal/dto/request"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// CreatePayment handles POST /api/payments
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.service.CreatePayment(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create payment")
		return
	}

	utils.ResponseCreated(w, "Payment recorded", payment)
}

// GetPayments handles GET /api/payments
func (h *PaymentHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.GetPayments(r.Context(), pageRequest(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get payments")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}

// GetPaymentByID handles GET /api/payments/{id}
func (h *PaymentHandler) GetPaymentByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payment, err := h.service.GetPaymentByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "get payment")
		return
	}

	utils.ResponseSuccess(w, "success", payment)
}

// GetPaymentsByRental handles GET /api/payments/rental/{rental}
func (h *PaymentHandler) GetPaymentsByRental(w http.ResponseWriter, r *http.Request) {
	rentalID, ok := pathID(w, r, "rental")
	if !ok {
		return
	}

	payments, err := h.service.GetPaymentsByRental(r.Context(), rentalID)
	if err != nil {
		handleServiceError(w, h.log, err, "get payments by rental")
		return
	}

	utils.ResponseSuccess(w, "success", payments)
}
