package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"estadistica/internal/config"
	"estadistica/internal/infrastructure"
	"estadistica/internal/source"
)

// sourceProbeTimeout bounds the readiness probe of the statistics table.
const sourceProbeTimeout = 5 * time.Second

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	sources   source.Factory
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth     `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. paths and sources may be nil,
// which skips the matching readiness checks.
func NewHealthService(version string, paths *config.Paths, sources source.Factory, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		sources:   sources,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	stats := infrastructure.CollectRuntimeStats(hs.startTime)
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   &stats,
	}
}

// ReadinessCheck probes the statistics table and the reports directory.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth),
	}
	if hs.sources != nil {
		status.Services["source"] = hs.checkSource(ctx)
	}
	if hs.paths != nil {
		status.Services["reports"] = hs.checkReportsDir()
	}

	for _, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "readiness check failed", slog.Any("services", status.Services))
	}
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkSource(ctx context.Context) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, sourceProbeTimeout)
	defer cancel()

	src, err := hs.sources(ctx)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	defer src.Close()

	cols, err := src.Columns(ctx)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready", Message: fmt.Sprintf("%d columns", len(cols))}
}

func (hs *HealthService) checkReportsDir() ServiceHealth {
	info, err := os.Stat(hs.paths.ReportsDir)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("reports directory unavailable: %v", err)}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: "reports path is not a directory"}
	}
	return ServiceHealth{Status: "ready"}
}
