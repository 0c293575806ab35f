package adaptor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRentalService struct {
	initiateFn        func(ctx context.Context, userID int64, req *request.CreateRentalRequest) (*response.CheckoutResponse, error)
	finalizeSuccessFn func(ctx context.Context, rentalID int64) (*response.PaymentResponse, error)
	finalizeCancelFn  func(ctx context.Context, rentalID int64) (*response.RentalResponse, error)
	cancelOwnedFn     func(ctx context.Context, userID, rentalID int64) (*response.RentalResponse, error)
	handleWebhookFn   func(ctx context.Context, payload []byte, signature string) error
	getRentalByIDFn   func(ctx context.Context, id int64) (*response.RentalResponse, error)
	deleteRentalFn    func(ctx context.Context, id int64) error
}

func (f *fakeRentalService) Initiate(ctx context.Context, userID int64, req *request.CreateRentalRequest) (*response.CheckoutResponse, error) {
	return f.initiateFn(ctx, userID, req)
}

func (f *fakeRentalService) FinalizeSuccess(ctx context.Context, rentalID int64) (*response.PaymentResponse, error) {
	return f.finalizeSuccessFn(ctx, rentalID)
}

func (f *fakeRentalService) FinalizeCancel(ctx context.Context, rentalID int64) (*response.RentalResponse, error) {
	return f.finalizeCancelFn(ctx, rentalID)
}

func (f *fakeRentalService) CancelOwned(ctx context.Context, userID, rentalID int64) (*response.RentalResponse, error) {
	return f.cancelOwnedFn(ctx, userID, rentalID)
}

func (f *fakeRentalService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return f.handleWebhookFn(ctx, payload, signature)
}

func (f *fakeRentalService) SweepStalePending(ctx context.Context) (int, error) {
	return 0, nil
}

func (f *fakeRentalService) GetRentals(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RentalResponse], error) {
	return response.NewPaginatedResponse([]response.RentalResponse{}, req.Page, 0), nil
}

func (f *fakeRentalService) GetRentalByID(ctx context.Context, id int64) (*response.RentalResponse, error) {
	return f.getRentalByIDFn(ctx, id)
}

func (f *fakeRentalService) GetRentalsByUser(ctx context.Context, userID int64) ([]response.RentalResponse, error) {
	return []response.RentalResponse{}, nil
}

func (f *fakeRentalService) GetRentalsByCar(ctx context.Context, carID int64) ([]response.RentalResponse, error) {
	return []response.RentalResponse{}, nil
}

func (f *fakeRentalService) DeleteRental(ctx context.Context, id int64) error {
	return f.deleteRentalFn(ctx, id)
}

type fakeCarService struct {
	getCarByIDFn func(ctx context.Context, id int64) (*response.CarResponse, error)
	createCarFn  func(ctx context.Context, req *request.CreateCarRequest) (*response.CarResponse, error)
	searchCarsFn func(ctx context.Context, req *request.SearchCarRequest) ([]response.CarResponse, error)
}

func (f *fakeCarService) GetCars(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CarResponse], error) {
	return response.NewPaginatedResponse([]response.CarResponse{}, req.Page, 0), nil
}

func (f *fakeCarService) GetCarByID(ctx context.Context, id int64) (*response.CarResponse, error) {
	return f.getCarByIDFn(ctx, id)
}

func (f *fakeCarService) SearchCars(ctx context.Context, req *request.SearchCarRequest) ([]response.CarResponse, error) {
	return f.searchCarsFn(ctx, req)
}

func (f *fakeCarService) CreateCar(ctx context.Context, req *request.CreateCarRequest) (*response.CarResponse, error) {
	return f.createCarFn(ctx, req)
}

func (f *fakeCarService) UpdateCar(ctx context.Context, id int64, req *request.UpdateCarRequest) (*response.CarResponse, error) {
	return nil, nil
}

func (f *fakeCarService) PatchCar(ctx context.Context, id int64, req *request.PatchCarRequest) (*response.CarResponse, error) {
	return nil, nil
}

func (f *fakeCarService) DeleteCar(ctx context.Context, id int64) error {
	return nil
}

// asUser stands in for AuthSession.
func asUser(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(utils.SetUserContext(r.Context(), userID)))
		})
	}
}

func serve(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func newRouter() *chi.Mux {
	return chi.NewRouter()
}

var testLog = zap.NewNop()
