package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindForbidden, http.StatusForbidden},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindInternal, http.StatusInternalServerError},
		{Kind("unknown"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.kind), string(tc.kind))
	}
}

func TestKindOfWrappedError(t *testing.T) {
	base := Conflict("product out of stock")
	wrapped := fmt.Errorf("create order: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, "product out of stock", MessageOf(wrapped))
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("pq: connection refused")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal server error", MessageOf(err))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := Internal(cause, "failed to create order")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to create order", MessageOf(err))
}
