package usecase

import (
	"errors"
	"fmt"

	"car-rental/internal/gateway"
	"car-rental/pkg/utils"
)

// Handlers map these onto HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrGateway      = errors.New("payment gateway error")
)

// ValidationError keeps the per-field messages for the response body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

func fieldError(field, msg string) error {
	return newValidationError(map[string]string{field: msg})
}

func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return newValidationError(errs)
	}
	return nil
}

// kindError reads as its own message but matches one of the sentinels.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string        { return e.msg }
func (e *kindError) Is(target error) bool { return target == e.kind }

func notFound(format string, args ...any) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &kindError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...any) error {
	return &kindError{kind: ErrForbidden, msg: fmt.Sprintf(format, args...)}
}

func unauthorized(format string, args ...any) error {
	return &kindError{kind: ErrUnauthorized, msg: fmt.Sprintf(format, args...)}
}

// GatewayMessage is the processor's own message when err came from it,
// err.Error() otherwise.
func GatewayMessage(err error) string {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return gwErr.Message
	}
	return err.Error()
}
