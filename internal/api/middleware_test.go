package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
	"github.com/bookcourier/bookcourier-server/internal/http/response"
	"github.com/bookcourier/bookcourier-server/internal/logger"
)

func TestEnvelopeTransformer(t *testing.T) {
	t.Run("data is wrapped", func(t *testing.T) {
		out, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "book-1"})
		require.NoError(t, err)

		env, ok := out.(response.Envelope)
		require.True(t, ok)
		assert.Equal(t, EnvelopeVersion, env.Version)
		assert.True(t, env.Success)
		assert.Equal(t, map[string]string{"id": "book-1"}, env.Data)
	})

	t.Run("api errors keep code and details", func(t *testing.T) {
		apiErr := &APIError{status: http.StatusBadRequest, Code: "INVALID_INPUT", Message: "bad", Details: map[string]string{"body.price": "must be >= 0"}}
		out, err := EnvelopeTransformer(nil, "400", apiErr)
		require.NoError(t, err)

		env := out.(response.Envelope)
		assert.False(t, env.Success)
		assert.Equal(t, "INVALID_INPUT", env.Code)
		assert.Equal(t, "bad", env.Error)
		assert.NotNil(t, env.Details)
	})

	t.Run("other errors map by status", func(t *testing.T) {
		out, err := EnvelopeTransformer(nil, "409", errors.New("taken"))
		require.NoError(t, err)

		env := out.(response.Envelope)
		assert.Equal(t, "CONFLICT", env.Code)
		assert.Equal(t, "taken", env.Error)
	})
}

func TestNewAPIError(t *testing.T) {
	t.Run("domain error wins", func(t *testing.T) {
		err := newAPIError(http.StatusInternalServerError, "unexpected", domainerrors.NotFound("book not found"))
		assert.Equal(t, http.StatusNotFound, err.GetStatus())
		assert.Equal(t, "book not found", err.Error())
	})

	t.Run("validation becomes bad request", func(t *testing.T) {
		err := newAPIError(http.StatusUnprocessableEntity, "validation failed", &huma.ErrorDetail{
			Location: "body.title",
			Message:  "expected required property title to be present",
		})
		apiErr := err.(*APIError)
		assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
		assert.Equal(t, "INVALID_INPUT", apiErr.Code)
		assert.Equal(t, map[string]string{"body.title": "expected required property title to be present"}, apiErr.Details)
	})
}

func TestStatusToCode(t *testing.T) {
	tests := []struct {
		status int
		want   domainerrors.Code
	}{
		{http.StatusBadRequest, domainerrors.CodeInvalidInput},
		{http.StatusUnauthorized, domainerrors.CodeUnauthenticated},
		{http.StatusForbidden, domainerrors.CodeForbidden},
		{http.StatusNotFound, domainerrors.CodeNotFound},
		{http.StatusConflict, domainerrors.CodeConflict},
		{http.StatusTooManyRequests, domainerrors.CodeRateLimited},
		{http.StatusBadGateway, domainerrors.CodeProvider},
		{http.StatusTeapot, domainerrors.CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusToCode(tt.status), "status %d", tt.status)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	var scoped *slog.Logger
	handler := middleware.RequestID(requestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = logger.FromContext(r.Context(), nil)
		w.WriteHeader(http.StatusConflict)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/orders", nil))

	require.NotNil(t, scoped)
	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"status":409`)
	assert.Contains(t, out, `"path":"/orders"`)
	assert.Contains(t, out, `"request_id"`)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.7:5123"
	assert.Equal(t, "203.0.113.7", clientIP(r))

	r.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", clientIP(r))
}

func TestIsWrite(t *testing.T) {
	assert.True(t, isWrite(http.MethodPost))
	assert.True(t, isWrite(http.MethodPatch))
	assert.False(t, isWrite(http.MethodGet))
	assert.False(t, isWrite(http.MethodOptions))
}
