package observe

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/bridges/otelzerolog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"google.golang.org/grpc"

	"github.com/tinyurl-pestebani/go-otel-setup/internal/auth"
	"github.com/tinyurl-pestebani/go-otel-setup/internal/config"
	"github.com/tinyurl-pestebani/go-otel-setup/internal/transport"
)

// configureLogExport attaches the remote log sink when one is configured.
// For the "otlp" provider, records written through zerolog are bridged onto
// an OTLP log exporter sharing the telemetry endpoint and the same
// credential injection as the span and metric exporters. The console and
// json sinks are purely local and need nothing from the pipeline.
//
// Returns a shutdown function for the logger provider, or nil when no
// remote sink is active.
func configureLogExport(ctx context.Context, cfg config.ObserveConfig, logCfg config.LogConfig, res *resource.Resource, provider auth.HeaderProvider) (func(context.Context) error, error) {
	if logCfg.Provider != "otlp" {
		return nil, nil
	}

	exporter, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(cfg.Endpoint),
		otlploggrpc.WithDialOption(
			grpc.WithUnaryInterceptor(transport.UnaryClientInterceptor(provider)),
			grpc.WithStreamInterceptor(transport.StreamClientInterceptor(provider)),
		),
	)
	if err != nil {
		return nil, err
	}

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(loggerProvider)

	// every record written through the global zerolog logger is mirrored
	// onto the exporter; the local sink keeps working unchanged
	hook := otelzerolog.NewHook(cfg.ServiceName, otelzerolog.WithLoggerProvider(loggerProvider))
	log.Logger = log.Logger.Hook(hook)
	zerolog.DefaultContextLogger = &log.Logger

	return loggerProvider.Shutdown, nil
}
