package infrastructure

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"

	"estadistica/internal/config"
)

func TestInitializeOTel_DefaultConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *OTelConfig
	}{
		{name: "nil config", cfg: nil},
		{name: "default telemetry", cfg: OTelConfigFrom(config.Default().Telemetry)},
		{name: "tracing to stdout", cfg: &OTelConfig{ServiceName: "estadistica", EnableTracing: true, TraceStdout: true, SampleRatio: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, nil)
			require.NoError(t, err)
			require.NotNil(t, providers)
			assert.NoError(t, providers.Shutdown(context.Background()))
		})
	}
}

func TestNewResource_SingleSchema(t *testing.T) {
	res := newResource(OTelConfigFrom(config.Default().Telemetry))
	assert.Equal(t, semconv.SchemaURL, res.SchemaURL())

	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "estadistica", name.AsString())
}

func TestInitializeOTel_Metrics(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:   "estadistica-test",
		EnableMetrics: true,
		EnableTracing: true,
		SampleRatio:   1,
	}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.TracerProvider)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	ctx := context.Background()
	metrics.RecordRun(ctx, "combined", "success", 1500*time.Millisecond)
	metrics.RecordStage(ctx, "aggregate", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body), "report_runs_total")
	assert.Contains(t, string(body), `mode="combined"`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "off"}, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordRun(context.Background(), "plain", "success", time.Second)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestTraceIDFromContext(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "trace", EnableTracing: true, SampleRatio: 1}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx, span := providers.Tracer.Start(context.Background(), "op")
	defer span.End()
	assert.Len(t, TraceIDFromContext(ctx), 32)
	RecordError(ctx, assert.AnError)
}

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *BusinessMetrics
	m.RecordRun(context.Background(), "plain", "success", time.Second)
	m.RecordStage(context.Background(), "fetch", time.Second)
	m.RunStarted(context.Background())
	m.RunFinished(context.Background())
	m.RecordRows(context.Background(), 1, 2, 3)
	m.RecordConflict(context.Background())
	m.RecordHTTPRequest(context.Background(), "GET", "/api/health", 200, time.Millisecond)
}

func TestCollectRuntimeStats(t *testing.T) {
	stats := CollectRuntimeStats(time.Now().Add(-time.Minute))
	assert.Positive(t, stats.Goroutines)
	assert.NotEmpty(t, stats.GoVersion)
	assert.Equal(t, "1m0s", stats.Uptime)
}
