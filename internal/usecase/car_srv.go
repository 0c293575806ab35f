package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/pkg/cache"

	"go.uber.org/zap"
)

type CarService interface {
	GetCars(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CarResponse], error)
	GetCarByID(ctx context.Context, id int64) (*response.CarResponse, error)
	SearchCars(ctx context.Context, req *request.SearchCarRequest) ([]response.CarResponse, error)

	CreateCar(ctx context.Context, req *request.CreateCarRequest) (*response.CarResponse, error)
	UpdateCar(ctx context.Context, id int64, req *request.UpdateCarRequest) (*response.CarResponse, error)
	PatchCar(ctx context.Context, id int64, req *request.PatchCarRequest) (*response.CarResponse, error)
	DeleteCar(ctx context.Context, id int64) error
}

type carService struct {
	repo  *repository.Repository
	cache cache.Cache
	now   func() time.Time
	log   *zap.Logger
}

func NewCarService(repo *repository.Repository, c cache.Cache, log *zap.Logger) CarService {
	if c == nil {
		c = cache.Noop{}
	}
	return &carService{
		repo:  repo,
		cache: c,
		now:   time.Now,
		log:   log.With(zap.String("service", "car")),
	}
}

func carCacheKey(id int64) string {
	return "car:" + strconv.FormatInt(id, 10)
}

func (s *carService) GetCars(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CarResponse], error) {
	cars, err := s.repo.Car.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get cars: %w", err)
	}

	total, err := s.repo.Car.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count cars: %w", err)
	}

	return response.NewPaginatedResponse(response.CarsToResponse(cars), req.Page, total), nil
}

// GetCarByID reads through the cache. Cache failures only cost a DB hit.
func (s *carService) GetCarByID(ctx context.Context, id int64) (*response.CarResponse, error) {
	key := carCacheKey(id)

	var cached response.CarResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("Car cache read failed", zap.Error(err), zap.Int64("car_id", id))
	}
	if hit {
		return &cached, nil
	}

	car, err := s.repo.Car.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get car: %w", err)
	}
	if car == nil {
		return nil, notFound("car %d not found", id)
	}

	resp := response.CarToResponse(car)
	if err := s.cache.Set(ctx, key, resp); err != nil {
		s.log.Warn("Car cache write failed", zap.Error(err), zap.Int64("car_id", id))
	}

	return &resp, nil
}

func (s *carService) SearchCars(ctx context.Context, req *request.SearchCarRequest) ([]response.CarResponse, error) {
	req.Query = strings.TrimSpace(req.Query)
	if err := validate(req); err != nil {
		return nil, err
	}

	cars, err := s.repo.Car.Search(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("search cars: %w", err)
	}

	return response.CarsToResponse(cars), nil
}

func (s *carService) CreateCar(ctx context.Context, req *request.CreateCarRequest) (*response.CarResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create car validation failed", zap.Error(err))
		return nil, err
	}

	now := s.now()
	car := &entity.Car{
		Base: entity.Base{
			CreatedAt: now,
			UpdatedAt: now,
		},
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        *req.Year,
		PricePerDay: *req.PricePerDay,
		IsAvailable: *req.IsAvailable,
	}

	if err := s.repo.Car.Create(ctx, car); err != nil {
		return nil, s.writeError(err, "create car")
	}

	s.log.Info("Car created", zap.Int64("car_id", car.ID))

	resp := response.CarToResponse(car)
	return &resp, nil
}

func (s *carService) UpdateCar(ctx context.Context, id int64, req *request.UpdateCarRequest) (*response.CarResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.Car.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get car: %w", err)
	}
	if existing == nil {
		return nil, notFound("car %d not found", id)
	}

	existing.Brand = req.Brand
	existing.Model = req.Model
	existing.Year = *req.Year
	existing.PricePerDay = *req.PricePerDay
	existing.IsAvailable = *req.IsAvailable
	existing.UpdatedAt = s.now()

	if err := s.repo.Car.Update(ctx, existing); err != nil {
		return nil, s.writeError(err, "update car")
	}
	s.invalidate(ctx, id)

	resp := response.CarToResponse(existing)
	return &resp, nil
}

func (s *carService) PatchCar(ctx context.Context, id int64, req *request.PatchCarRequest) (*response.CarResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	car, err := s.repo.Car.Patch(ctx, id, repository.CarPatch{
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		PricePerDay: req.PricePerDay,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("car %d not found", id)
		}
		return nil, s.writeError(err, "patch car")
	}
	s.invalidate(ctx, id)

	resp := response.CarToResponse(car)
	return &resp, nil
}

func (s *carService) DeleteCar(ctx context.Context, id int64) error {
	if err := s.repo.Car.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("car %d not found", id)
		}
		return fmt.Errorf("delete car: %w", err)
	}
	s.invalidate(ctx, id)

	s.log.Info("Car deleted", zap.Int64("car_id", id))
	return nil
}

func (s *carService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, carCacheKey(id)); err != nil {
		s.log.Warn("Car cache invalidation failed", zap.Error(err), zap.Int64("car_id", id))
	}
}

func (s *carService) writeError(err error, operation string) error {
	if errors.Is(err, repository.ErrConstraint) {
		return newValidationError(map[string]string{"car": "violates a data constraint"})
	}
	return fmt.Errorf("%s: %w", operation, err)
}
