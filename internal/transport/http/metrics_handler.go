package http

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"estadistica/internal/infrastructure"
)

// MetricsHandler serves the Prometheus scrape endpoint and a JSON runtime
// snapshot.
type MetricsHandler struct {
	prometheus http.Handler
	stats      func() infrastructure.RuntimeStats
}

// NewMetricsHandler creates a metrics handler. A nil prom handler falls
// back to the default registry.
func NewMetricsHandler(prom http.Handler, stats func() infrastructure.RuntimeStats) *MetricsHandler {
	if prom == nil {
		prom = promhttp.Handler()
	}
	return &MetricsHandler{prometheus: prom, stats: stats}
}

// Prometheus handles GET /metrics
func (h *MetricsHandler) Prometheus(w http.ResponseWriter, r *http.Request) {
	h.prometheus.ServeHTTP(w, r)
}

// Runtime handles GET /api/metrics/runtime
func (h *MetricsHandler) Runtime(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.stats())
}
