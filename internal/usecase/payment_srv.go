package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"

	"go.uber.org/zap"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, req *request.CreatePaymentRequest) (*response.PaymentResponse, error)
	GetPayments(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error)
	GetPaymentByID(ctx context.Context, id int64) (*response.PaymentResponse, error)
	GetPaymentsByRental(ctx context.Context, rentalID int64) ([]response.PaymentResponse, error)
}

type paymentService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewPaymentService(repo *repository.Repository, log *zap.Logger) PaymentService {
	return &paymentService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "payment")),
	}
}

// CreatePayment records a manual payment. Checkout payments are only ever
// written by the rental flow.
func (s *paymentService) CreatePayment(ctx context.Context, req *request.CreatePaymentRequest) (*response.PaymentResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create payment validation failed", zap.Error(err))
		return nil, err
	}

	method, err := entity.ParsePaymentMethod(req.PaymentMethod)
	if err != nil || method.IsGatewayManaged() {
		return nil, fieldError("payment_method", "Must be one of: credit_card, paypal, cash")
	}
	status, err := entity.ParsePaymentStatus(req.Status)
	if err != nil || status == entity.PaymentStatusPaid {
		return nil, fieldError("status", "Must be one of: pending, completed, failed")
	}

	rental, err := s.repo.Rental.FindByID(ctx, req.RentalID)
	if err != nil {
		return nil, fmt.Errorf("get rental: %w", err)
	}
	if rental == nil {
		return nil, fieldError("rental_id", "The selected rental id is invalid")
	}

	now := s.now()
	payment := &entity.Payment{
		Base: entity.Base{
			CreatedAt: now,
			UpdatedAt: now,
		},
		RentalID:      rental.ID,
		UserID:        rental.UserID,
		Amount:        *req.Amount,
		PaymentMethod: method,
		Status:        status,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		// rental deleted between the lookup and the insert
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, fieldError("rental_id", "The selected rental id is invalid")
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.log.Info("Payment recorded",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("rental_id", payment.RentalID),
		zap.String("method", string(payment.PaymentMethod)),
	)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) GetPayments(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PaymentResponse], error) {
	payments, err := s.repo.Payment.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}

	total, err := s.repo.Payment.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}

	return response.NewPaginatedResponse(response.PaymentsToResponse(payments), req.Page, total), nil
}

func (s *paymentService) GetPaymentByID(ctx context.Context, id int64) (*response.PaymentResponse, error) {
	payment, err := s.repo.Payment.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if payment == nil {
		return nil, notFound("payment %d not found", id)
	}

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) GetPaymentsByRental(ctx context.Context, rentalID int64) ([]response.PaymentResponse, error) {
	rental, err := s.repo.Rental.FindByID(ctx, rentalID)
	if err != nil {
		return nil, fmt.Errorf("get rental: %w", err)
	}
	if rental == nil {
		return nil, notFound("rental %d not found", rentalID)
	}

	payments, err := s.repo.Payment.FindByRentalID(ctx, rentalID)
	if err != nil {
		return nil, fmt.Errorf("get payments by rental: %w", err)
	}

	return response.PaymentsToResponse(payments), nil
}
