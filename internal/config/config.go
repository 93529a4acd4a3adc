package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Auth    AuthConfig
	Log     LogConfig
	Observe ObserveConfig
	Server  ServerConfig
}

type ServerConfig struct {
	Port                   int `env:"SERVER_PORT, default=8080"`
	ShutdownTimeoutSeconds int `env:"SERVER_SHUTDOWN_TIMEOUT_SECS, default=25"`

	OutgoingHTTPMaxIdleConns    int `env:"SERVER_OUTGOING_MAX_IDLE_CONNS, default=100"`
	OutgoingHTTPMaxConnsPerHost int `env:"SERVER_OUTGOING_MAX_CONNS_PER_HOST, default=20"`
}

// AuthConfig selects the credential provider used to authenticate outbound
// telemetry export requests.
type AuthConfig struct {
	// Provider selects the credential implementation: "none" (default),
	// "gcp" or "static".
	Provider string `env:"AUTH_PROVIDER, default=none"`

	// ProjectID is the GCP project billed for the exported telemetry.
	// Required when Provider is "gcp".
	ProjectID string `env:"GOOGLE_PROJECT_ID"`

	// StaticToken is a fixed bearer token. Required when Provider is
	// "static".
	StaticToken string `env:"AUTH_STATIC_TOKEN"`
}

// LogConfig specifies the process log sink.
type LogConfig struct {
	// Provider selects the log output: "console" (default), "json", or
	// "otlp". The "otlp" sink additionally ships structured logs through
	// the telemetry pipeline, authenticated like the other exporters.
	Provider string `env:"LOG_PROVIDER, default=console"`

	Level string `env:"LOG_LEVEL, default=info"`
}

type ObserveConfig struct {
	// TraceExporter selects the span exporter: "grpc", "http", "retryable"
	// or "stdout" (default). The "retryable" exporter is the OTLP/HTTP
	// exporter running over a retrying HTTP client.
	TraceExporter string `env:"OTEL_EXPORTER_TRACES, default=stdout"`

	// MetricExporter selects the metric exporter: "grpc" or "stdout"
	// (default).
	MetricExporter string `env:"OTEL_EXPORTER_METRICS, default=stdout"`

	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT, default=localhost:4317"`

	ServiceName string `env:"OBSERVE_SERVICE_NAME, default=go-otel-setup"`

	TraceBatchTimeoutSeconds  int `env:"OBSERVE_TRACE_BATCH_TIMEOUT_SECS, default=20"`
	MetricReadIntervalSeconds int `env:"OBSERVE_METRIC_READ_INTERVAL_SECS, default=60"`

	HTTPTransportEnabled       bool `env:"OBSERVE_HTTP_TRANSPORT_ENABLED, default=true"`
	HTTPConnectionTraceEnabled bool `env:"OBSERVE_CONNECTION_TRACE_ENABLED, default=true"`
}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil) // load from OS environment
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	err = cfg.Auth.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid auth configuration: %w", err)
	}

	err = cfg.Observe.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid observe configuration: %w", err)
	}

	err = cfg.Log.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid log configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the log sink selector.
func (c *LogConfig) Validate() error {
	switch c.Provider {
	case "console", "json", "otlp":
		return nil
	default:
		return fmt.Errorf("unknown log provider %q", c.Provider)
	}
}

// Validate checks that the auth configuration is complete for the selected
// provider. Missing credential material is a startup failure, never deferred
// to the first export request.
func (c *AuthConfig) Validate() error {
	switch c.Provider {
	case "none":
		return nil
	case "gcp":
		if c.ProjectID == "" {
			return fmt.Errorf("GOOGLE_PROJECT_ID required when AUTH_PROVIDER=gcp")
		}
		return nil
	case "static":
		if c.StaticToken == "" {
			return fmt.Errorf("AUTH_STATIC_TOKEN required when AUTH_PROVIDER=static")
		}
		return nil
	default:
		return fmt.Errorf("unknown auth provider %q", c.Provider)
	}
}

// Validate checks the exporter selectors.
func (c *ObserveConfig) Validate() error {
	switch c.TraceExporter {
	case "grpc", "http", "retryable", "stdout":
	default:
		return fmt.Errorf("unknown trace exporter %q", c.TraceExporter)
	}

	switch c.MetricExporter {
	case "grpc", "stdout":
	default:
		return fmt.Errorf("unknown metric exporter %q", c.MetricExporter)
	}

	return nil
}
