package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("table %d not found", 7), http.StatusNotFound},
		{Conflict("table T01 already exists"), http.StatusConflict},
		{New(ErrSlotConflict, "taken"), http.StatusConflict},
		{New(ErrCapacityExceeded, "too many guests"), http.StatusUnprocessableEntity},
		{Forbidden("nope"), http.StatusForbidden},
		{New(ErrInvalidStatus, "bad status"), http.StatusBadRequest},
		{Validation("missing field"), http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusCode(tc.err), tc.err.Error())
	}
}

func TestAppErrorWrapping(t *testing.T) {
	err := fmt.Errorf("create reservation: %w", New(ErrSlotConflict, "table T01 is already reserved at 18:00"))

	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Contains(t, err.Error(), "T01")

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrSlotConflict, appErr.Kind)
}

func TestAppErrorEmptyMessage(t *testing.T) {
	err := &AppError{Kind: ErrForbidden}
	assert.Equal(t, "forbidden", err.Error())
}
