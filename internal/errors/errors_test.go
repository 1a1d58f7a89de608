package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeInvalidToken, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeProvider, http.StatusBadGateway},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("book not found")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("place order: %w", Conflict("book is out of stock"))

	assert.True(t, Is(err, ErrConflict))
	assert.Equal(t, CodeConflict, CodeOf(err))
}

func TestError_MessageIncludesCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := Provider("retrieve checkout session", cause)

	assert.Equal(t, "retrieve checkout session: dial tcp: timeout", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
}

func TestInvalidInputWithDetails(t *testing.T) {
	err := InvalidInputWithDetails("validation failed", map[string]string{"email": "required"})

	assert.True(t, Is(err, ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Equal(t, map[string]string{"email": "required"}, err.Details)

	wrapped := err.WithCause(fmt.Errorf("field check"))
	assert.Equal(t, err.Details, wrapped.Details, "WithCause keeps details")
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("boom")))
}
