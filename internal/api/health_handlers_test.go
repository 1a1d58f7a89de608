package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var health HealthResponse
	decodeData(t, resp, &health)
	assert.Equal(t, statusHealthy, health.Status)
	assert.Equal(t, statusHealthy, health.Components["database"].Status)
	assert.Equal(t, statusHealthy, health.Components["search"].Status)
}

func TestHealthCheck_NoIndexIsDegraded(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) { o.Index = nil })

	var health HealthResponse
	decodeData(t, ts.api.Get("/health"), &health)
	assert.Equal(t, statusDegraded, health.Status)
	assert.Equal(t, statusDegraded, health.Components["search"].Status)
}
