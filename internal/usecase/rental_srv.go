package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/gateway"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

// stalePendingGrace keeps a pending rental around a little longer than its
// checkout session so a late payment still finds it.
const stalePendingGrace = 5 * time.Minute

// compensationTimeout bounds the cleanup delete after a failed checkout.
const compensationTimeout = 5 * time.Second

type RentalService interface {
	// Booking flow
	Initiate(ctx context.Context, userID int64, req *request.CreateRentalRequest) (*response.CheckoutResponse, error)
	FinalizeSuccess(ctx context.Context, rentalID int64) (*response.PaymentResponse, error)
	FinalizeCancel(ctx context.Context, rentalID int64) (*response.RentalResponse, error)
	CancelOwned(ctx context.Context, userID, rentalID int64) (*response.RentalResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	SweepStalePending(ctx context.Context) (int, error)

	// Ledger reads
	GetRentals(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RentalResponse], error)
	GetRentalByID(ctx context.Context, id int64) (*response.RentalResponse, error)
	GetRentalsByUser(ctx context.Context, userID int64) ([]response.RentalResponse, error)
	GetRentalsByCar(ctx context.Context, carID int64) ([]response.RentalResponse, error)
	DeleteRental(ctx context.Context, id int64) error
}

type rentalService struct {
	repo     *repository.Repository
	gateway  gateway.Gateway
	webhooks gateway.WebhookVerifier
	signer   *utils.CallbackSigner
	config   utils.PaymentConfig
	now      func() time.Time
	log      *zap.Logger
}

// NewRentalService wires the orchestrator. webhooks may be nil, in which case
// HandleWebhook reports the endpoint as not configured.
func NewRentalService(
	repo *repository.Repository,
	gw gateway.Gateway,
	webhooks gateway.WebhookVerifier,
	signer *utils.CallbackSigner,
	config utils.PaymentConfig,
	log *zap.Logger,
) RentalService {
	return &rentalService{
		repo:     repo,
		gateway:  gw,
		webhooks: webhooks,
		signer:   signer,
		config:   config,
		now:      time.Now,
		log:      log.With(zap.String("service", "rental")),
	}
}

// holdWindow is how long an unpaid rental blocks its car. It never ends
// before the checkout session does, even for a short CHECKOUT_HOLD.
func (s *rentalService) holdWindow() time.Duration {
	return max(s.config.CheckoutHold, gateway.MinCheckoutLifetime) + stalePendingGrace
}

// Initiate books the car in pending state and opens a checkout session for it.
// The car row is locked only while the rental is inserted, never across the
// gateway call. If the gateway fails the rental is deleted again.
func (s *rentalService) Initiate(ctx context.Context, userID int64, req *request.CreateRentalRequest) (*response.CheckoutResponse, error) {
	// 1. Validasi sebelum menyentuh database
	if err := validate(req); err != nil {
		s.log.Warn("Create rental validation failed", zap.Error(err))
		return nil, err
	}

	start, err := time.Parse(request.DateLayout, req.StartDate)
	if err != nil {
		return nil, fieldError("start_date", "Must be a date in format 2006-01-02")
	}
	end, err := time.Parse(request.DateLayout, req.EndDate)
	if err != nil {
		return nil, fieldError("end_date", "Must be a date in format 2006-01-02")
	}
	if !end.After(start) {
		return nil, fieldError("end_date", "The end date must be a date after start date")
	}

	now := s.now()

	// 2. Transaksi pendek: lock mobil, cek bentrok, simpan rental pending
	var (
		rental *entity.Rental
		car    *entity.Car
	)
	err = s.repo.Tx.WithinTransaction(ctx, func(tx *repository.Repository) error {
		locked, err := tx.Car.FindByIDForUpdate(ctx, req.CarID)
		if err != nil {
			return err
		}
		car = locked
		if car == nil {
			return notFound("car %d not found", req.CarID)
		}
		// is_available is catalog information only; bookings are gated by dates
		overlap, err := tx.Rental.HasOverlap(ctx, car.ID, start, end, now.Add(-s.holdWindow()))
		if err != nil {
			return err
		}
		if overlap {
			return conflict("car %d is already booked for the selected dates", car.ID)
		}

		rental = &entity.Rental{
			Base: entity.Base{
				CreatedAt: now,
				UpdatedAt: now,
			},
			UserID:     userID,
			CarID:      car.ID,
			StartDate:  start,
			EndDate:    end,
			TotalPrice: *req.TotalPrice,
			Status:     entity.RentalStatusPending,
		}
		return tx.Rental.Create(ctx, rental)
	})
	if err != nil {
		return nil, s.bookingError(err)
	}

	// 3. Checkout session, di luar transaksi
	checkoutReq, err := s.checkoutRequest(rental, car, now)
	if err != nil {
		s.compensate(ctx, rental.ID)
		return nil, fmt.Errorf("build checkout request: %w", err)
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.config.GatewayTimeout)
	defer cancel()

	session, err := s.gateway.CreateCheckoutSession(gwCtx, checkoutReq)
	if err != nil {
		s.log.Error("Checkout session failed, removing pending rental",
			zap.Error(err),
			zap.Int64("rental_id", rental.ID),
		)
		s.compensate(ctx, rental.ID)
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	// 4. Simpan session id. Webhook still finds the rental by metadata if this fails.
	if err := s.repo.Rental.SetCheckoutSession(ctx, rental.ID, session.ID); err != nil {
		s.log.Error("Failed to store checkout session on rental",
			zap.Error(err),
			zap.Int64("rental_id", rental.ID),
			zap.String("session_id", session.ID),
		)
	}

	s.log.Info("Rental initiated",
		zap.Int64("rental_id", rental.ID),
		zap.Int64("user_id", userID),
		zap.Int64("car_id", car.ID),
		zap.String("session_id", session.ID),
	)

	return &response.CheckoutResponse{URL: session.URL}, nil
}

func (s *rentalService) checkoutRequest(rental *entity.Rental, car *entity.Car, now time.Time) (gateway.CheckoutRequest, error) {
	successURL, err := s.callbackURL(utils.CallbackPaymentSuccess, rental.ID, now)
	if err != nil {
		return gateway.CheckoutRequest{}, err
	}
	cancelURL, err := s.callbackURL(utils.CallbackPaymentCancel, rental.ID, now)
	if err != nil {
		return gateway.CheckoutRequest{}, err
	}

	return gateway.CheckoutRequest{
		AmountCents: utils.ToCents(rental.TotalPrice),
		Currency:    s.config.Currency,
		Description: fmt.Sprintf("Car Rental: %s %s (%s to %s)",
			car.Brand, car.Model,
			rental.StartDate.Format(request.DateLayout),
			rental.EndDate.Format(request.DateLayout)),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Metadata: map[string]string{
			"rental_id": strconv.FormatInt(rental.ID, 10),
			"user_id":   strconv.FormatInt(rental.UserID, 10),
		},
		IdempotencyKey: fmt.Sprintf("rental-%d-checkout", rental.ID),
		ExpiresAt:      now.Add(s.config.CheckoutHold),
	}, nil
}

// callbackURL builds FRONTEND_URL/<path>/<id>, plus a token signed for that
// path when callback signing is on.
func (s *rentalService) callbackURL(path string, rentalID int64, now time.Time) (string, error) {
	u := fmt.Sprintf("%s/%s/%d", strings.TrimRight(s.config.FrontendURL, "/"), path, rentalID)

	token, err := s.signer.Sign(rentalID, path, now)
	if err != nil {
		return "", fmt.Errorf("sign callback: %w", err)
	}
	if token == "" {
		return u, nil
	}
	return u + "?token=" + url.QueryEscape(token), nil
}

// compensate removes a pending rental whose checkout could not be opened.
// It runs even if the request context is already cancelled.
func (s *rentalService) compensate(ctx context.Context, rentalID int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if err := s.repo.Rental.Delete(ctx, rentalID); err != nil {
		// the sweeper removes it once the hold window passes
		s.log.Error("Failed to remove pending rental after checkout failure",
			zap.Error(err),
			zap.Int64("rental_id", rentalID),
		)
	}
}

func (s *rentalService) bookingError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, repository.ErrForeignKey):
		return fieldError("car_id", "The selected car id is invalid")
	case errors.Is(err, repository.ErrConstraint):
		return fieldError("end_date", "The end date must be a date after start date")
	}
	return fmt.Errorf("create rental: %w", err)
}

// FinalizeSuccess records the checkout payment and confirms the rental.
// Repeated calls return the payment from the first one.
func (s *rentalService) FinalizeSuccess(ctx context.Context, rentalID int64) (*response.PaymentResponse, error) {
	var payment *entity.Payment

	err := s.repo.Tx.WithinTransaction(ctx, func(tx *repository.Repository) error {
		rental, err := tx.Rental.FindByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental == nil {
			return notFound("rental %d not found", rentalID)
		}

		if rental.Status == entity.RentalStatusConfirmed {
			existing, err := tx.Payment.FindPaidByRentalID(ctx, rental.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				payment = existing
				return nil
			}
		}

		now := s.now()
		payment = &entity.Payment{
			Base: entity.Base{
				CreatedAt: now,
				UpdatedAt: now,
			},
			RentalID:      rental.ID,
			UserID:        rental.UserID,
			Amount:        rental.TotalPrice,
			PaymentMethod: entity.PaymentMethodStripe,
			Status:        entity.PaymentStatusPaid,
		}
		if err := tx.Payment.Create(ctx, payment); err != nil {
			return err
		}

		return tx.Rental.UpdateStatus(ctx, rental.ID, entity.RentalStatusConfirmed)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("finalize rental %d: %w", rentalID, err)
	}

	s.log.Info("Rental paid",
		zap.Int64("rental_id", rentalID),
		zap.Int64("payment_id", payment.ID),
		zap.Float64("amount", payment.Amount),
	)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

// FinalizeCancel deletes the rental the user walked away from. Its payments
// are removed with it.
func (s *rentalService) FinalizeCancel(ctx context.Context, rentalID int64) (*response.RentalResponse, error) {
	return s.cancel(ctx, rentalID, func(*entity.Rental) error { return nil })
}

func (s *rentalService) CancelOwned(ctx context.Context, userID, rentalID int64) (*response.RentalResponse, error) {
	return s.cancel(ctx, rentalID, func(r *entity.Rental) error {
		if r.UserID != userID {
			return forbidden("rental %d belongs to another user", rentalID)
		}
		return nil
	})
}

func (s *rentalService) cancel(ctx context.Context, rentalID int64, check func(*entity.Rental) error) (*response.RentalResponse, error) {
	var rental *entity.Rental

	err := s.repo.Tx.WithinTransaction(ctx, func(tx *repository.Repository) error {
		var err error
		rental, err = tx.Rental.FindByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental == nil {
			return notFound("rental %d not found", rentalID)
		}
		if err := check(rental); err != nil {
			return err
		}
		return tx.Rental.Delete(ctx, rentalID)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
			return nil, err
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound("rental %d not found", rentalID)
		}
		return nil, fmt.Errorf("cancel rental %d: %w", rentalID, err)
	}

	s.log.Info("Rental cancelled",
		zap.Int64("rental_id", rentalID),
		zap.String("previous_status", string(rental.Status)),
	)

	resp := response.RentalToResponse(rental)
	resp.Status = entity.RentalStatusCancelled
	return &resp, nil
}

// HandleWebhook applies a signed checkout notification. Events for rentals
// that no longer exist are acknowledged so the processor stops retrying.
func (s *rentalService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.webhooks == nil {
		return notFound("webhooks are not configured")
	}

	evt, err := s.webhooks.VerifyWebhook(payload, signature)
	if err != nil {
		s.log.Warn("Rejected webhook", zap.Error(err))
		return unauthorized("invalid webhook signature")
	}

	log := s.log.With(zap.String("event_id", evt.ID), zap.String("event_type", evt.Type))

	if evt.Type != gateway.EventCheckoutCompleted && evt.Type != gateway.EventCheckoutExpired {
		log.Debug("Ignoring webhook event")
		return nil
	}

	rentalID, ok := utils.ParseID(evt.Metadata["rental_id"])
	if !ok {
		log.Warn("Webhook event without rental_id", zap.String("session_id", evt.SessionID))
		return nil
	}

	switch evt.Type {
	case gateway.EventCheckoutCompleted:
		_, err = s.FinalizeSuccess(ctx, rentalID)
	case gateway.EventCheckoutExpired:
		// a paid rental is never removed by an expiry notice
		_, err = s.cancel(ctx, rentalID, func(r *entity.Rental) error {
			if r.Status != entity.RentalStatusPending {
				return conflict("rental %d is %s", r.ID, r.Status)
			}
			return nil
		})
	}

	switch {
	case err == nil:
		log.Info("Webhook applied", zap.Int64("rental_id", rentalID))
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		log.Info("Webhook had nothing to do", zap.Int64("rental_id", rentalID), zap.Error(err))
		return nil
	}
	return err
}

// SweepStalePending removes pending rentals whose checkout has expired.
func (s *rentalService) SweepStalePending(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.holdWindow())

	removed, err := s.repo.Rental.DeleteStalePending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep pending rentals: %w", err)
	}

	for _, r := range removed {
		s.log.Info("Stale pending rental removed",
			zap.Int64("rental_id", r.ID),
			zap.Int64("car_id", r.CarID),
			zap.Time("created_at", r.CreatedAt),
		)
	}

	return len(removed), nil
}

func (s *rentalService) GetRentals(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RentalResponse], error) {
	rentals, err := s.repo.Rental.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get rentals: %w", err)
	}

	total, err := s.repo.Rental.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count rentals: %w", err)
	}

	return response.NewPaginatedResponse(response.RentalsToResponse(rentals), req.Page, total), nil
}

func (s *rentalService) GetRentalByID(ctx context.Context, id int64) (*response.RentalResponse, error) {
	rental, err := s.repo.Rental.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get rental: %w", err)
	}
	if rental == nil {
		return nil, notFound("rental %d not found", id)
	}

	resp := response.RentalToResponse(rental)
	return &resp, nil
}

func (s *rentalService) GetRentalsByUser(ctx context.Context, userID int64) ([]response.RentalResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, notFound("user %d not found", userID)
	}

	rentals, err := s.repo.Rental.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get rentals by user: %w", err)
	}

	return response.RentalsToResponse(rentals), nil
}

func (s *rentalService) GetRentalsByCar(ctx context.Context, carID int64) ([]response.RentalResponse, error) {
	car, err := s.repo.Car.FindByID(ctx, carID)
	if err != nil {
		return nil, fmt.Errorf("get car: %w", err)
	}
	if car == nil {
		return nil, notFound("car %d not found", carID)
	}

	rentals, err := s.repo.Rental.FindByCarID(ctx, carID)
	if err != nil {
		return nil, fmt.Errorf("get rentals by car: %w", err)
	}

	return response.RentalsToResponse(rentals), nil
}

func (s *rentalService) DeleteRental(ctx context.Context, id int64) error {
	if err := s.repo.Rental.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("rental %d not found", id)
		}
		return fmt.Errorf("delete rental: %w", err)
	}
	return nil
}
