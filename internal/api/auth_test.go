package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ridepulse/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authConfig() config.APIConfig {
	return config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{
				{Key: "secret-key", Name: "dashboard"},
			},
		},
	}
}

func TestAuthMissingKey(t *testing.T) {
	srv := newTestServer(t, authConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(apiCSV))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInvalidKey(t *testing.T) {
	srv := newTestServer(t, authConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(apiCSV))
	req.Header.Set("x-api-key", "wrong")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthValidKey(t *testing.T) {
	srv := newTestServer(t, authConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(apiCSV))
	req.Header.Set("x-api-key", "secret-key")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestAuthCustomHeader(t *testing.T) {
	cfg := authConfig()
	cfg.Auth.HeaderAPIKey = "X-Dashboard-Key"
	srv := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(apiCSV))
	req.Header.Set("X-Dashboard-Key", "secret-key")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHealthzSkipsAuth(t *testing.T) {
	srv := newTestServer(t, authConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitExceeded(t *testing.T) {
	cfg := config.APIConfig{
		RateLimit: config.APIRateLimitConfig{RPS: 1, Burst: 2},
	}
	srv := newTestServer(t, cfg)
	id := uploadDataset(t, srv, apiCSV)

	var last int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+id+"/overview", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		last = rec.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRateLimitPerKey(t *testing.T) {
	cfg := authConfig()
	cfg.Auth.APIKeys = append(cfg.Auth.APIKeys, config.APIClientKey{Key: "other-key", Name: "batch"})
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 1}
	srv := newTestServer(t, cfg)

	// First key exhausts its own bucket.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(apiCSV))
		req.Header.Set("x-api-key", "secret-key")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if i == 1 {
			require.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}

	// The second key still has a full bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", strings.NewReader(apiCSV))
	req.Header.Set("x-api-key", "other-key")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
