package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estadistica/internal/config"
	"estadistica/internal/source"
)

func TestHealthService_HealthCheck(t *testing.T) {
	hs := NewHealthService("1.2.3", nil, nil, nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	require.NotNil(t, status.Runtime)
	assert.Positive(t, status.Runtime.Goroutines)

	assert.Equal(t, "1.2.3", hs.Version()["version"])
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	paths := config.NewPaths(t.TempDir(), config.PathsConfig{})
	require.NoError(t, paths.EnsureDirectories())

	tests := []struct {
		name    string
		factory source.Factory
		paths   *config.Paths
		want    string
		service string
	}{
		{
			name:    "ready",
			factory: sampleSource().factory(),
			paths:   paths,
			want:    "ready",
			service: "source",
		},
		{
			name: "source down",
			factory: func(context.Context) (source.RecordSource, error) {
				return nil, errors.New("connection refused")
			},
			paths:   paths,
			want:    "not_ready",
			service: "source",
		},
		{
			name:    "reports directory missing",
			factory: sampleSource().factory(),
			paths:   config.NewPaths(t.TempDir(), config.PathsConfig{ReportsDir: "nope"}),
			want:    "not_ready",
			service: "reports",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("dev", tt.paths, tt.factory, nil)
			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Contains(t, status.Services, tt.service)
		})
	}
}
