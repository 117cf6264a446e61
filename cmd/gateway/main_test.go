package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/canal-etico/gateway/internal/config"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Auth.Secret = "test-secret"
	cfg.Upstream.UpstreamURL = "http://127.0.0.1:18080"
	return cfg
}

func TestNewApplication(t *testing.T) {
	cfg := testConfig()

	app, err := newApplication(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, app.server)
	require.NotNil(t, app.tracer)

	// The wired server serves the actuator endpoint locally.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/actuator/health/liveness", nil)
	app.server.Handler().ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	// Protected paths fail closed without a token.
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	app.server.Handler().ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNewApplication_SigningEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Signing.Enabled = true
	cfg.Signing.Key = "origin-key"

	_, err := newApplication(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
}

func TestNewApplication_InvalidAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Secret = ""

	_, err := newApplication(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("GATEWAY_TEST_SENTINEL", "set")
	assert.Equal(t, "set", getEnvOrDefault("GATEWAY_TEST_SENTINEL", "fallback"))
	assert.Equal(t, "fallback", getEnvOrDefault("GATEWAY_TEST_MISSING", "fallback"))
}
