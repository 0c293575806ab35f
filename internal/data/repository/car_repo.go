package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"car-rental/internal/data/entity"
	"car-rental/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CarRepository interface {
	// CRUD Car
	Create(ctx context.Context, car *entity.Car) error
	FindByID(ctx context.Context, id int64) (*entity.Car, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*entity.Car, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Car, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, car *entity.Car) error
	Patch(ctx context.Context, id int64, patch CarPatch) (*entity.Car, error)
	Delete(ctx context.Context, id int64) error

	// Search matches the query against "brand model"
	Search(ctx context.Context, query string) ([]*entity.Car, error)
}

// CarPatch holds the columns a partial update touches. Nil leaves a column as is.
type CarPatch struct {
	Brand       *string
	Model       *string
	Year        *int
	PricePerDay *float64
	IsAvailable *bool
}

type carRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewCarRepository(db database.Querier, log *zap.Logger) CarRepository {
	return &carRepository{
		db:  db,
		log: log.With(zap.String("repository", "car")),
	}
}

const carColumns = `id, brand, model, year, price_per_day, is_available, created_at, updated_at`

func scanCar(row pgx.Row) (*entity.Car, error) {
	var car entity.Car
	err := row.Scan(
		&car.ID,
		&car.Brand,
		&car.Model,
		&car.Year,
		&car.PricePerDay,
		&car.IsAvailable,
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) Create(ctx context.Context, car *entity.Car) error {
	query := `
		INSERT INTO cars (brand, model, year, price_per_day, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		car.Brand,
		car.Model,
		car.Year,
		car.PricePerDay,
		car.IsAvailable,
		car.CreatedAt,
		car.UpdatedAt,
	).Scan(&car.ID)

	if err != nil {
		r.log.Error("Failed to create car",
			zap.Error(err),
			zap.String("brand", car.Brand),
			zap.String("model", car.Model),
		)
		return fmt.Errorf("create car: %w", classify(err))
	}

	return nil
}

func (r *carRepository) FindByID(ctx context.Context, id int64) (*entity.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindByIDForUpdate locks the car row until the surrounding transaction ends.
// Concurrent bookings of the same car queue up here.
func (r *carRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *carRepository) findOne(ctx context.Context, query string, id int64) (*entity.Car, error) {
	car, err := scanCar(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find car by ID",
			zap.Error(err),
			zap.Int64("car_id", id),
		)
		return nil, fmt.Errorf("find car %d: %w", id, err)
	}

	return car, nil
}

func (r *carRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find all cars",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find cars: %w", err)
	}

	return r.collect(rows)
}

func (r *carRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cars`).Scan(&total)
	if err != nil {
		r.log.Error("Failed to count cars", zap.Error(err))
		return 0, fmt.Errorf("count cars: %w", err)
	}

	return total, nil
}

func (r *carRepository) Search(ctx context.Context, query string) ([]*entity.Car, error) {
	// full text first, substring as fallback for partial words like "toy"
	sql := `
		SELECT ` + carColumns + `
		FROM cars
		WHERE to_tsvector('simple', brand || ' ' || model) @@ plainto_tsquery('simple', $1)
		   OR (brand || ' ' || model) ILIKE '%' || $2 || '%'
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, sql, query, escapeLike(query))
	if err != nil {
		r.log.Error("Failed to search cars",
			zap.Error(err),
			zap.String("query", query),
		)
		return nil, fmt.Errorf("search cars: %w", err)
	}

	return r.collect(rows)
}

func (r *carRepository) collect(rows pgx.Rows) ([]*entity.Car, error) {
	defer rows.Close()

	cars := []*entity.Car{}
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			r.log.Error("Failed to scan car row", zap.Error(err))
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, car)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate car rows: %w", err)
	}

	return cars, nil
}

func (r *carRepository) Update(ctx context.Context, car *entity.Car) error {
	query := `
		UPDATE cars
		SET brand = $2, model = $3, year = $4, price_per_day = $5,
		    is_available = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		car.ID,
		car.Brand,
		car.Model,
		car.Year,
		car.PricePerDay,
		car.IsAvailable,
		car.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update car",
			zap.Error(err),
			zap.Int64("car_id", car.ID),
		)
		return fmt.Errorf("update car %d: %w", car.ID, classify(err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("car %d: %w", car.ID, ErrNotFound)
	}

	return nil
}

func (r *carRepository) Patch(ctx context.Context, id int64, patch CarPatch) (*entity.Car, error) {
	query := `
		UPDATE cars
		SET brand = COALESCE($2, brand),
		    model = COALESCE($3, model),
		    year = COALESCE($4, year),
		    price_per_day = COALESCE($5, price_per_day),
		    is_available = COALESCE($6, is_available),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + carColumns

	car, err := scanCar(r.db.QueryRow(ctx, query,
		id,
		patch.Brand,
		patch.Model,
		patch.Year,
		patch.PricePerDay,
		patch.IsAvailable,
	))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("car %d: %w", id, ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to patch car",
			zap.Error(err),
			zap.Int64("car_id", id),
		)
		return nil, fmt.Errorf("patch car %d: %w", id, classify(err))
	}

	return car, nil
}

func (r *carRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete car",
			zap.Error(err),
			zap.Int64("car_id", id),
		)
		return fmt.Errorf("delete car %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("car %d: %w", id, ErrNotFound)
	}

	r.log.Info("Car deleted", zap.Int64("car_id", id))
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
