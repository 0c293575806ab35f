package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by writes that matched no row. Reads return
	// (nil, nil) instead.
	ErrNotFound = errors.New("record not found")

	// ErrForeignKey means a referenced row (car, rental, user) does not exist.
	ErrForeignKey = errors.New("referenced record does not exist")

	ErrDuplicate = errors.New("record already exists")

	// ErrConstraint covers CHECK violations such as end_date <= start_date.
	ErrConstraint = errors.New("constraint violation")
)

// classify maps PostgreSQL integrity errors onto the sentinels above and
// leaves everything else untouched.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.ForeignKeyViolation:
		return errors.Join(ErrForeignKey, err)
	case pgerrcode.UniqueViolation:
		return errors.Join(ErrDuplicate, err)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return errors.Join(ErrConstraint, err)
	}
	return err
}
