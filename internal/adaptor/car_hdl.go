package adaptor

import (
	"net/http"

	"car-rental/internal/dto/request"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

type CarHandler struct {
	service usecase.CarService
	log     *zap.Logger
}

func NewCarHandler(service usecase.CarService, log *zap.Logger) *CarHandler {
	return &CarHandler{
		service: service,
		log:     log.With(zap.String("handler", "car")),
	}
}

// GetCars handles GET /api/cars
func (h *CarHandler) GetCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.service.GetCars(r.Context(), pageRequest(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get cars")
		return
	}

	utils.ResponseSuccess(w, "success", cars)
}

// GetCarByID handles GET /api/cars/{id}
func (h *CarHandler) GetCarByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	car, err := h.service.GetCarByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "get car")
		return
	}

	utils.ResponseSuccess(w, "success", car)
}

// SearchCars handles GET /api/search/cars?query=
func (h *CarHandler) SearchCars(w http.ResponseWriter, r *http.Request) {
	req := &request.SearchCarRequest{Query: r.URL.Query().Get("query")}

	cars, err := h.service.SearchCars(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "search cars")
		return
	}

	utils.ResponseSuccess(w, "success", cars)
}

// CreateCar handles POST /api/cars
func (h *CarHandler) CreateCar(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	car, err := h.service.CreateCar(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create car")
		return
	}

	utils.ResponseCreated(w, "Car created", car)
}

// UpdateCar handles PUT /api/cars/{id}
func (h *CarHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateCarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	car, err := h.service.UpdateCar(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update car")
		return
	}

	utils.ResponseSuccess(w, "Car updated", car)
}

// PatchCar handles PATCH /api/cars/{id}
func (h *CarHandler) PatchCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req request.PatchCarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	car, err := h.service.PatchCar(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "patch car")
		return
	}

	utils.ResponseSuccess(w, "Car updated", car)
}

// DeleteCar handles DELETE /api/cars/{id}
func (h *CarHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCar(r.Context(), id); err != nil {
		handleServiceError(w, h.log, err, "delete car")
		return
	}

	utils.ResponseSuccess(w, "Car deleted successfully", nil)
}
