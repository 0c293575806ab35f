package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{pgerrcode.ForeignKeyViolation, ErrForeignKey},
		{pgerrcode.UniqueViolation, ErrDuplicate},
		{pgerrcode.CheckViolation, ErrConstraint},
		{pgerrcode.NotNullViolation, ErrConstraint},
	}

	for _, tt := range tests {
		err := classify(fmt.Errorf("insert: %w", &pgconn.PgError{Code: tt.code}))
		assert.ErrorIs(t, err, tt.want, "code %s", tt.code)

		var pgErr *pgconn.PgError
		assert.True(t, errors.As(err, &pgErr), "original error kept for code %s", tt.code)
	}
}

func TestClassify_PassThrough(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Equal(t, plain, classify(plain))

	other := &pgconn.PgError{Code: pgerrcode.SerializationFailure}
	assert.Equal(t, error(other), classify(other))
}
