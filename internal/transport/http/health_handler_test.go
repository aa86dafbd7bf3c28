package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estadistica/internal/config"
	"estadistica/internal/infrastructure"
	"estadistica/internal/services"
	"estadistica/internal/shared/testutil"
)

func TestHealthHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	tests := []struct {
		name       string
		reportsDir string
		path       string
		wantStatus int
		wantState  string
	}{
		{name: "health", path: "/api/health", wantStatus: http.StatusOK, wantState: "ok"},
		{name: "ready", path: "/api/health/ready", wantStatus: http.StatusOK, wantState: "ready"},
		{name: "not ready", reportsDir: "missing", path: "/api/health/ready", wantStatus: http.StatusServiceUnavailable, wantState: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			paths := &config.Paths{BaseDir: dir, ReportsDir: dir}
			if tt.reportsDir != "" {
				paths.ReportsDir = filepath.Join(dir, tt.reportsDir)
			}
			h := NewHealthHandler(services.NewHealthService("1.0.0-test", paths, nil, logger), logger)
			r := chi.NewRouter()
			r.Mount("/api/health", h.Routes())

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.wantStatus, rec.Code)

			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, tt.wantState, status.Status)
			assert.Equal(t, "1.0.0-test", status.Version)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	prom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("estadistica_report_runs_total 1\n"))
	})
	h := NewMetricsHandler(prom, func() infrastructure.RuntimeStats {
		return infrastructure.RuntimeStats{Goroutines: 3, GoVersion: "go1.24"}
	})

	rec := httptest.NewRecorder()
	h.Prometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "estadistica_report_runs_total")

	rec = httptest.NewRecorder()
	h.Runtime(rec, httptest.NewRequest(http.MethodGet, "/api/metrics/runtime", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"go1.24"`)
}
