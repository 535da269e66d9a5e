package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("resource already exists")
	ErrCapacityExceeded = errors.New("table capacity exceeded")
	ErrSlotConflict     = errors.New("table already reserved for this slot")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
)

// AppError carries one of the sentinel errors above together with a message
// that tells the caller how to correct the request.
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// New creates an AppError of the given kind with a formatted message.
func New(kind error, format string, args ...interface{}) *AppError {
	return &AppError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func NotFound(format string, args ...interface{}) *AppError {
	return New(ErrNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *AppError {
	return New(ErrConflict, format, args...)
}

func Forbidden(format string, args ...interface{}) *AppError {
	return New(ErrForbidden, format, args...)
}

func Validation(format string, args ...interface{}) *AppError {
	return New(ErrValidation, format, args...)
}

// StatusCode maps an error to the HTTP status used to report it.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrSlotConflict):
		return http.StatusConflict
	case errors.Is(err, ErrCapacityExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
