package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RentalRepository interface {
	Create(ctx context.Context, rental *entity.Rental) error
	FindByID(ctx context.Context, id int64) (*entity.Rental, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*entity.Rental, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Rental, error)
	CountAll(ctx context.Context) (int64, error)
	FindByUserID(ctx context.Context, userID int64) ([]*entity.Rental, error)
	FindByCarID(ctx context.Context, carID int64) ([]*entity.Rental, error)
	Delete(ctx context.Context, id int64) error

	// Booking queries
	HasOverlap(ctx context.Context, carID int64, start, end, pendingSince time.Time) (bool, error)
	SetCheckoutSession(ctx context.Context, id int64, sessionID string) error
	UpdateStatus(ctx context.Context, id int64, status entity.RentalStatus) error
	DeleteStalePending(ctx context.Context, createdBefore time.Time) ([]*entity.Rental, error)
}

type rentalRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewRentalRepository(db database.Querier, log *zap.Logger) RentalRepository {
	return &rentalRepository{
		db:  db,
		log: log.With(zap.String("repository", "rental")),
	}
}

const rentalColumns = `id, user_id, car_id, start_date, end_date, total_price, status,
	checkout_session_id, created_at, updated_at`

func scanRental(row pgx.Row) (*entity.Rental, error) {
	var rental entity.Rental
	err := row.Scan(
		&rental.ID,
		&rental.UserID,
		&rental.CarID,
		&rental.StartDate,
		&rental.EndDate,
		&rental.TotalPrice,
		&rental.Status,
		&rental.CheckoutSessionID,
		&rental.CreatedAt,
		&rental.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *rentalRepository) Create(ctx context.Context, rental *entity.Rental) error {
	query := `
		INSERT INTO rentals (user_id, car_id, start_date, end_date, total_price, status,
		                     created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		rental.UserID,
		rental.CarID,
		rental.StartDate,
		rental.EndDate,
		rental.TotalPrice,
		rental.Status,
		rental.CreatedAt,
		rental.UpdatedAt,
	).Scan(&rental.ID)

	if err != nil {
		r.log.Error("Failed to create rental",
			zap.Error(err),
			zap.Int64("user_id", rental.UserID),
			zap.Int64("car_id", rental.CarID),
		)
		return fmt.Errorf("create rental: %w", classify(err))
	}

	return nil
}

func (r *rentalRepository) FindByID(ctx context.Context, id int64) (*entity.Rental, error) {
	return r.findOne(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, id)
}

func (r *rentalRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Rental, error) {
	return r.findOne(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1 FOR UPDATE`, id)
}

func (r *rentalRepository) findOne(ctx context.Context, query string, id int64) (*entity.Rental, error) {
	rental, err := scanRental(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find rental by ID",
			zap.Error(err),
			zap.Int64("rental_id", id),
		)
		return nil, fmt.Errorf("find rental %d: %w", id, err)
	}

	return rental, nil
}

func (r *rentalRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find all rentals",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find rentals: %w", err)
	}

	return r.collect(rows)
}

func (r *rentalRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM rentals`).Scan(&total); err != nil {
		r.log.Error("Failed to count rentals", zap.Error(err))
		return 0, fmt.Errorf("count rentals: %w", err)
	}
	return total, nil
}

func (r *rentalRepository) FindByUserID(ctx context.Context, userID int64) ([]*entity.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE user_id = $1 ORDER BY start_date DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find rentals by user",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return nil, fmt.Errorf("find rentals for user %d: %w", userID, err)
	}

	return r.collect(rows)
}

func (r *rentalRepository) FindByCarID(ctx context.Context, carID int64) ([]*entity.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE car_id = $1 ORDER BY start_date DESC`

	rows, err := r.db.Query(ctx, query, carID)
	if err != nil {
		r.log.Error("Failed to find rentals by car",
			zap.Error(err),
			zap.Int64("car_id", carID),
		)
		return nil, fmt.Errorf("find rentals for car %d: %w", carID, err)
	}

	return r.collect(rows)
}

func (r *rentalRepository) collect(rows pgx.Rows) ([]*entity.Rental, error) {
	defer rows.Close()

	rentals := []*entity.Rental{}
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			r.log.Error("Failed to scan rental row", zap.Error(err))
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		rentals = append(rentals, rental)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate rental rows: %w", err)
	}

	return rentals, nil
}

// HasOverlap reports whether [start, end) intersects a confirmed rental of the
// car, or a pending one created after pendingSince that still holds the car.
func (r *rentalRepository) HasOverlap(ctx context.Context, carID int64, start, end, pendingSince time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM rentals
			WHERE car_id = $1
			  AND start_date < $3
			  AND end_date > $2
			  AND (status = 'confirmed' OR (status = 'pending' AND created_at > $4))
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, carID, start, end, pendingSince).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check rental overlap",
			zap.Error(err),
			zap.Int64("car_id", carID),
		)
		return false, fmt.Errorf("check overlap for car %d: %w", carID, err)
	}

	return exists, nil
}

func (r *rentalRepository) SetCheckoutSession(ctx context.Context, id int64, sessionID string) error {
	query := `UPDATE rentals SET checkout_session_id = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, sessionID)
	if err != nil {
		r.log.Error("Failed to store checkout session",
			zap.Error(err),
			zap.Int64("rental_id", id),
		)
		return fmt.Errorf("set checkout session on rental %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("rental %d: %w", id, ErrNotFound)
	}

	return nil
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, id int64, status entity.RentalStatus) error {
	query := `UPDATE rentals SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to update rental status",
			zap.Error(err),
			zap.Int64("rental_id", id),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update rental %d status: %w", id, classify(err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("rental %d: %w", id, ErrNotFound)
	}

	return nil
}

// Delete removes the rental. Its payments go with it (ON DELETE CASCADE).
func (r *rentalRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete rental",
			zap.Error(err),
			zap.Int64("rental_id", id),
		)
		return fmt.Errorf("delete rental %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("rental %d: %w", id, ErrNotFound)
	}

	r.log.Info("Rental deleted", zap.Int64("rental_id", id))
	return nil
}

func (r *rentalRepository) DeleteStalePending(ctx context.Context, createdBefore time.Time) ([]*entity.Rental, error) {
	query := `
		DELETE FROM rentals
		WHERE status = 'pending' AND created_at < $1
		RETURNING ` + rentalColumns

	rows, err := r.db.Query(ctx, query, createdBefore)
	if err != nil {
		r.log.Error("Failed to delete stale pending rentals",
			zap.Error(err),
			zap.Time("created_before", createdBefore),
		)
		return nil, fmt.Errorf("delete stale rentals: %w", err)
	}

	return r.collect(rows)
}
