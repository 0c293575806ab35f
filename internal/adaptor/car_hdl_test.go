package adaptor

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carRouter(svc *fakeCarService) *chi.Mux {
	h := NewCarHandler(svc, testLog)

	r := newRouter()
	r.Get("/api/cars", h.GetCars)
	r.Get("/api/cars/{id}", h.GetCarByID)
	r.Get("/api/search/cars", h.SearchCars)
	r.Post("/api/cars", h.CreateCar)
	return r
}

func TestGetCarByID(t *testing.T) {
	svc := &fakeCarService{
		getCarByIDFn: func(ctx context.Context, id int64) (*response.CarResponse, error) {
			if id != 3 {
				return nil, fmt.Errorf("%w: car %d", usecase.ErrNotFound, id)
			}
			return &response.CarResponse{ID: 3, Brand: "Toyota", Model: "Avanza", Year: 2022, PricePerDay: 75.25, IsAvailable: true}, nil
		},
	}
	router := carRouter(svc)

	rec := serve(t, router, http.MethodGet, "/api/cars/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Toyota", data["brand"])
	assert.InDelta(t, 75.25, data["price_per_day"], 0.0001)

	rec = serve(t, router, http.MethodGet, "/api/cars/4", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, router, http.MethodGet, "/api/cars/0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCars_PageFromQuery(t *testing.T) {
	rec := serve(t, carRouter(&fakeCarService{}), http.MethodGet, "/api/cars?page=3", "")

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]any)
	meta := data["pagination"].(map[string]any)
	assert.EqualValues(t, 3, meta["page"])
	assert.EqualValues(t, 10, meta["per_page"])
}

func TestCreateCar_ValidationEnvelope(t *testing.T) {
	svc := &fakeCarService{
		createCarFn: func(ctx context.Context, req *request.CreateCarRequest) (*response.CarResponse, error) {
			return nil, &usecase.ValidationError{Fields: map[string]string{"year": "year is required"}}
		},
	}

	rec := serve(t, carRouter(svc), http.MethodPost, "/api/cars", `{"brand":"Honda","model":"Jazz"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["status"])
	assert.Equal(t, map[string]any{"year": "year is required"}, body["errors"])
}

func TestCreateCar_Created(t *testing.T) {
	svc := &fakeCarService{
		createCarFn: func(ctx context.Context, req *request.CreateCarRequest) (*response.CarResponse, error) {
			return &response.CarResponse{ID: 1, Brand: req.Brand, Model: req.Model}, nil
		},
	}

	rec := serve(t, carRouter(svc), http.MethodPost, "/api/cars",
		`{"brand":"Honda","model":"Jazz","year":2020,"price_per_day":40,"is_available":true}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSearchCars_PassesQuery(t *testing.T) {
	var got string
	svc := &fakeCarService{
		searchCarsFn: func(ctx context.Context, req *request.SearchCarRequest) ([]response.CarResponse, error) {
			got = req.Query
			return []response.CarResponse{{ID: 1, Brand: "Toyota"}}, nil
		},
	}

	rec := serve(t, carRouter(svc), http.MethodGet, "/api/search/cars?query=toyota+avanza", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "toyota avanza", got)
	assert.Len(t, decodeBody(t, rec)["data"], 1)
}
