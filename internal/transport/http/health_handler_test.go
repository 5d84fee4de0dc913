package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldreports/internal/services"
	"fieldreports/internal/shared/testutil"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func setupHealthRouter(t *testing.T, store services.Pinger) chi.Router {
	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewHealthService("1.2.3", "2024-08-05", store, nil, logger)
	h := NewHealthHandler(svc, logger)

	r := chi.NewRouter()
	r.Mount("/api/health", h.Routes())
	r.Get("/api/version", h.Version)
	return r
}

func TestHealthHandler_Probes(t *testing.T) {
	tests := []struct {
		name       string
		store      services.Pinger
		path       string
		wantCode   int
		wantStatus string
	}{
		{"health ok", stubPinger{}, "/api/health", http.StatusOK, "ok"},
		{"health degraded", stubPinger{err: errors.New("closed")}, "/api/health", http.StatusOK, "degraded"},
		{"ready", stubPinger{}, "/api/health/ready", http.StatusOK, "ready"},
		{"not ready", stubPinger{err: errors.New("closed")}, "/api/health/ready", http.StatusServiceUnavailable, "not_ready"},
		{"live without store", nil, "/api/health/live", http.StatusOK, "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupHealthRouter(t, tt.store)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var status services.HealthStatus
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, "1.2.3", status.Version)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	router := setupHealthRouter(t, stubPinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "1.2.3", out["version"])
	assert.Equal(t, "2024-08-05", out["build_time"])
}
