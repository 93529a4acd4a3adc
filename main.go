package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/justinas/alice"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/tinyurl-pestebani/go-otel-setup/internal/auth"
	"github.com/tinyurl-pestebani/go-otel-setup/internal/config"
	"github.com/tinyurl-pestebani/go-otel-setup/internal/observe"
	"github.com/tinyurl-pestebani/go-otel-setup/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	configureLogging(cfg.Log)
	logBuildInfo()

	// construct the credential capability once; it is shared by every
	// exporter transport
	credentials, err := auth.New(ctx, cfg.Auth)
	if err != nil {
		return fmt.Errorf("credential configuration failed: %w", err)
	}

	shutdownTelemetry, err := observe.Configure(ctx, cfg.Observe, cfg.Log, credentials)
	if err != nil {
		return fmt.Errorf("telemetry bootstrap failed: %w", err)
	}

	http.DefaultTransport = observe.HTTPTransport(
		configureHTTPTransport(cfg.Server),
		cfg.Observe,
	)
	http.DefaultClient = &http.Client{Transport: http.DefaultTransport}

	handler := configureServerRoutes(cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		MaxHeaderBytes:    20 << 10,         // 20 KB
		ReadHeaderTimeout: 20 * time.Second, // Prevent Slowloris attacks
	}

	hooks := &server.ShutdownHooks{}
	hooks.Add("telemetry", shutdownTelemetry)

	return server.Serve(cfg.Server, srv, hooks)
}

func configureServerRoutes(cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	standard := alice.New(requestLogger)

	observe.Route(mux, "GET /ping", standard.Then(handlePing(cfg.Observe.ServiceName)))

	// healthchecks are not included in telemetry
	mux.Handle("GET /healthcheck", standard.Then(handleHealthCheck()))

	return mux
}

func handlePing(serviceName string) http.Handler {
	tracer := otel.Tracer(serviceName)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "ping")
		defer span.End()

		log.Ctx(ctx).Debug().Msg("ping received")

		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "pong")
	})
}

func handleHealthCheck() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}

func configureLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	log.Logger = log.Level(level)

	if cfg.Provider == "console" {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(level)
	}

	zerolog.DefaultContextLogger = &log.Logger
}

func logBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	ev := log.Info()
	for _, v := range buildInfo.Settings {
		if strings.HasPrefix(v.Key, "vcs.") ||
			strings.HasPrefix(v.Key, "GO") ||
			v.Key == "CGO_ENABLED" {
			ev = ev.Str(v.Key, v.Value)
		}
	}

	ev.Msg("build information")
}

func configureHTTPTransport(cfg config.ServerConfig) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	transport.MaxIdleConns = cfg.OutgoingHTTPMaxIdleConns
	transport.MaxConnsPerHost = cfg.OutgoingHTTPMaxConnsPerHost

	return transport
}
