package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"car-rental/internal/dto/request"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Car     *CarHandler
	Rental  *RentalHandler
	Payment *PaymentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Car:     NewCarHandler(service.Car, log),
		Rental:  NewRentalHandler(service.Rental, log),
		Payment: NewPaymentHandler(service.Payment, log),
	}
}

// handleServiceError maps service errors onto the response envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var vErr *usecase.ValidationError

	switch {
	case errors.As(err, &vErr):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseUnprocessable(w, "Validation failed", vErr.Fields)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrGateway):
		log.Error(operation+" failed - payment gateway", zap.Error(err))
		utils.ResponseInternalError(w, usecase.GatewayMessage(err))

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeJSON writes a 400 and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// pathID reads a positive numeric URL parameter, writing a 400 otherwise.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, ok := utils.ParseID(chi.URLParam(r, name))
	if !ok {
		utils.ResponseBadRequest(w, "Invalid "+name+" ID", nil)
		return 0, false
	}
	return id, true
}

func pageRequest(r *http.Request) *request.PaginatedRequest {
	return &request.PaginatedRequest{
		Page: utils.ParseInt(r.URL.Query().Get("page"), 1),
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return 0, false
	}
	return userID, true
}
