// Package observe bootstraps the OpenTelemetry pipeline: exporter selection,
// resource construction, and the credential injection that authenticates
// outbound OTLP traffic.
package observe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"

	"github.com/tinyurl-pestebani/go-otel-setup/internal/auth"
	"github.com/tinyurl-pestebani/go-otel-setup/internal/config"
	"github.com/tinyurl-pestebani/go-otel-setup/internal/transport"
)

// Configure sets up the global tracer, meter and (for a remote log sink)
// logger providers according to the configuration, authenticating export
// traffic with the supplied provider. The returned function shuts the
// pipeline down, flushing buffered telemetry.
func Configure(ctx context.Context, cfg config.ObserveConfig, logCfg config.LogConfig, provider auth.HeaderProvider) (func(context.Context) error, error) {
	configureOTelLogging()

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("resource construction failed: %w", err)
	}

	var shutdownHooks []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, hook := range shutdownHooks {
			errs = append(errs, hook(ctx))
		}
		return errors.Join(errs...)
	}

	spanExporter, err := newSpanExporter(ctx, cfg, provider)
	if err != nil {
		return nil, fmt.Errorf("span exporter setup failed: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(
			spanExporter,
			sdktrace.WithBatchTimeout(time.Duration(cfg.TraceBatchTimeoutSeconds)*time.Second),
		),
	)
	shutdownHooks = append(shutdownHooks, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := newMetricExporter(ctx, cfg, provider)
	if err != nil {
		// tear down what is already running before bailing out
		_ = shutdown(ctx)
		return nil, fmt.Errorf("metric exporter setup failed: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			metricExporter,
			sdkmetric.WithInterval(time.Duration(cfg.MetricReadIntervalSeconds)*time.Second),
		)),
	)
	shutdownHooks = append(shutdownHooks, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	logShutdown, err := configureLogExport(ctx, cfg, logCfg, res, provider)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("log exporter setup failed: %w", err)
	}
	if logShutdown != nil {
		shutdownHooks = append(shutdownHooks, logShutdown)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().
		Str("traceExporter", cfg.TraceExporter).
		Str("metricExporter", cfg.MetricExporter).
		Str("logSink", logCfg.Provider).
		Str("serviceName", cfg.ServiceName).
		Msg("telemetry: configured")

	return shutdown, nil
}

// newSpanExporter builds the configured span exporter, wiring the credential
// provider into the transport appropriate for each variant.
func newSpanExporter(ctx context.Context, cfg config.ObserveConfig, provider auth.HeaderProvider) (sdktrace.SpanExporter, error) {
	switch cfg.TraceExporter {
	case "grpc":
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithDialOption(
				grpc.WithUnaryInterceptor(transport.UnaryClientInterceptor(provider)),
				grpc.WithStreamInterceptor(transport.StreamClientInterceptor(provider)),
			),
		)
	case "http":
		client := transport.NewAuthRoundTripper(provider, nil).Client()
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithHTTPClient(client),
		)
	case "retryable":
		client := transport.NewRetryableTransport(provider, nil).Client()
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithHTTPClient(client),
		)
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.TraceExporter)
	}
}

func newMetricExporter(ctx context.Context, cfg config.ObserveConfig, provider auth.HeaderProvider) (sdkmetric.Exporter, error) {
	switch cfg.MetricExporter {
	case "grpc":
		return otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithDialOption(
				grpc.WithUnaryInterceptor(transport.UnaryClientInterceptor(provider)),
				grpc.WithStreamInterceptor(transport.StreamClientInterceptor(provider)),
			),
		)
	case "stdout":
		return stdoutmetric.New()
	default:
		return nil, fmt.Errorf("unknown metric exporter %q", cfg.MetricExporter)
	}
}

// configureOTelLogging routes the SDK's internal logging and error reporting
// through zerolog so export failures end up in the process log stream.
func configureOTelLogging() {
	logger := log.With().Str("component", "otel").Logger()
	otel.SetLogger(zerologr.New(&logger))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Warn().Err(err).Msg("telemetry: SDK error")
	}))
}

// HTTPTransport wraps an outgoing transport with client-side OTel
// instrumentation, optionally including connection-level tracing.
func HTTPTransport(base http.RoundTripper, cfg config.ObserveConfig) http.RoundTripper {
	if !cfg.HTTPTransportEnabled {
		return base
	}

	return newInstrumentedTransport(base, cfg.HTTPConnectionTraceEnabled)
}
