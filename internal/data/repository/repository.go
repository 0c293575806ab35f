package repository

import (
	"context"

	"car-rental/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	Car     CarRepository
	Rental  RentalRepository
	Payment PaymentRepository

	Tx Transactor
}

// Transactor runs fn with a Repository whose members all share one
// database transaction. fn returning an error rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx *Repository) error) error
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return build(db, log, &pgTransactor{db: db, log: log})
}

func build(q database.Querier, log *zap.Logger, tx Transactor) *Repository {
	return &Repository{
		User:    NewUserRepository(q, log),
		Session: NewSessionRepository(q, log),
		Car:     NewCarRepository(q, log),
		Rental:  NewRentalRepository(q, log),
		Payment: NewPaymentRepository(q, log),
		Tx:      tx,
	}
}

type pgTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func (t *pgTransactor) WithinTransaction(ctx context.Context, fn func(tx *Repository) error) error {
	return database.InTx(ctx, t.db, func(tx pgx.Tx) error {
		repo := build(tx, t.log, nil)
		repo.Tx = joinedTransactor{repo: repo}
		return fn(repo)
	})
}

// joinedTransactor reuses the surrounding transaction instead of nesting.
type joinedTransactor struct {
	repo *Repository
}

func (t joinedTransactor) WithinTransaction(ctx context.Context, fn func(tx *Repository) error) error {
	return fn(t.repo)
}
