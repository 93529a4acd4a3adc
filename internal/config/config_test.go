package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.Auth.Provider)
	assert.Equal(t, "stdout", cfg.Observe.TraceExporter)
	assert.Equal(t, "stdout", cfg.Observe.MetricExporter)
	assert.Equal(t, "localhost:4317", cfg.Observe.Endpoint)
	assert.Equal(t, "go-otel-setup", cfg.Observe.ServiceName)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Log.Provider)
}

func TestLoad_GCPAuth(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "gcp")
	t.Setenv("GOOGLE_PROJECT_ID", "proj-1")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "gcp", cfg.Auth.Provider)
	assert.Equal(t, "proj-1", cfg.Auth.ProjectID)
}

func TestLoad_GCPAuthRequiresProjectID(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "gcp")

	_, err := Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_PROJECT_ID")
}

func TestLoad_StaticAuthRequiresToken(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "static")

	_, err := Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_STATIC_TOKEN")
}

func TestLoad_UnknownAuthProvider(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "azure")

	_, err := Load(context.Background())
	require.Error(t, err)
}

func TestLoad_TraceExporterSelection(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_TRACES", "retryable")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector.example:4318")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "retryable", cfg.Observe.TraceExporter)
	assert.Equal(t, "collector.example:4318", cfg.Observe.Endpoint)
}

func TestLoad_UnknownTraceExporter(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_TRACES", "carrier-pigeon")

	_, err := Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trace exporter")
}

func TestLoad_OTLPLogSink(t *testing.T) {
	t.Setenv("LOG_PROVIDER", "otlp")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "otlp", cfg.Log.Provider)
}

func TestLoad_UnknownLogProvider(t *testing.T) {
	t.Setenv("LOG_PROVIDER", "loki")

	_, err := Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log provider")
}

func TestLoad_UnknownMetricExporter(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_METRICS", "http")

	_, err := Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metric exporter")
}
