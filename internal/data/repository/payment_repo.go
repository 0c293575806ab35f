package repository

import (
	"context"
	"errors"
	"fmt"

	"car-rental/internal/data/entity"
	"car-rental/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id int64) (*entity.Payment, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Payment, error)
	CountAll(ctx context.Context) (int64, error)
	FindByRentalID(ctx context.Context, rentalID int64) ([]*entity.Payment, error)

	// FindPaidByRentalID returns the checkout payment of a rental, if any
	FindPaidByRentalID(ctx context.Context, rentalID int64) (*entity.Payment, error)
}

type paymentRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPaymentRepository(db database.Querier, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, rental_id, user_id, amount, payment_method, status, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var payment entity.Payment
	err := row.Scan(
		&payment.ID,
		&payment.RentalID,
		&payment.UserID,
		&payment.Amount,
		&payment.PaymentMethod,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (rental_id, user_id, amount, payment_method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		payment.RentalID,
		payment.UserID,
		payment.Amount,
		payment.PaymentMethod,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Scan(&payment.ID)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.Int64("rental_id", payment.RentalID),
			zap.Float64("amount", payment.Amount),
		)
		return fmt.Errorf("create payment for rental %d: %w", payment.RentalID, classify(err))
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id int64) (*entity.Payment, error) {
	payment, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.Int64("payment_id", id),
		)
		return nil, fmt.Errorf("find payment %d: %w", id, err)
	}

	return payment, nil
}

func (r *paymentRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find all payments",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find payments: %w", err)
	}

	return r.collect(rows)
}

func (r *paymentRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`).Scan(&total); err != nil {
		r.log.Error("Failed to count payments", zap.Error(err))
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return total, nil
}

func (r *paymentRepository) FindByRentalID(ctx context.Context, rentalID int64) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE rental_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, rentalID)
	if err != nil {
		r.log.Error("Failed to find payments by rental",
			zap.Error(err),
			zap.Int64("rental_id", rentalID),
		)
		return nil, fmt.Errorf("find payments for rental %d: %w", rentalID, err)
	}

	return r.collect(rows)
}

func (r *paymentRepository) FindPaidByRentalID(ctx context.Context, rentalID int64) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE rental_id = $1 AND status = 'paid'
		ORDER BY id
		LIMIT 1
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, rentalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find paid payment",
			zap.Error(err),
			zap.Int64("rental_id", rentalID),
		)
		return nil, fmt.Errorf("find paid payment for rental %d: %w", rentalID, err)
	}

	return payment, nil
}

func (r *paymentRepository) collect(rows pgx.Rows) ([]*entity.Payment, error) {
	defer rows.Close()

	payments := []*entity.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}

	return payments, nil
}
