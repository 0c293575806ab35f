package wire

import (
	"net/http"

	"car-rental/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCar(r chi.Router, carHandler *adaptor.CarHandler, auth func(http.Handler) http.Handler) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/cars", carHandler.GetCars)           // GET /api/cars?page=N
	r.Get("/cars/{id}", carHandler.GetCarByID)   // GET /api/cars/{id}
	r.Get("/search/cars", carHandler.SearchCars) // GET /api/search/cars?query=

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/cars", carHandler.CreateCar)
		r.Put("/cars/{id}", carHandler.UpdateCar)
		r.Patch("/cars/{id}", carHandler.PatchCar)
		r.Delete("/cars/{id}", carHandler.DeleteCar)
	})
}
