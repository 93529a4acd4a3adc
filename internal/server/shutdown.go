package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tinyurl-pestebani/go-otel-setup/internal/config"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// ShutdownHooks collects cleanup functions to run when the server stops.
// Hooks run in registration order; a failing hook is logged and does not
// stop the remaining hooks.
type ShutdownHooks struct {
	hooks []hook
}

// Add registers a named shutdown hook. Nil hooks are ignored with a warning.
func (s *ShutdownHooks) Add(name string, fn func(context.Context) error) {
	if fn == nil {
		log.Warn().Str("hook", name).Msg("ignoring nil shutdown hook")
		return
	}
	s.hooks = append(s.hooks, hook{name: name, fn: fn})
}

// Execute runs the registered hooks with the given context.
func (s *ShutdownHooks) Execute(ctx context.Context) {
	for _, h := range s.hooks {
		l := log.With().Str("hook", h.name).Logger()
		if err := h.fn(ctx); err != nil {
			l.Warn().Err(err).Msg("shutdown hook failed")
		} else {
			l.Info().Msg("shutdown hook complete")
		}
	}
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains in-flight
// requests and executes the shutdown hooks within the configured timeout.
func Serve(cfg config.ServerConfig, srv *http.Server, hooks *ShutdownHooks) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server terminated unexpectedly: %w", err)
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	timeout := time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Err(err).Msg("server shutdown incomplete")
	}

	if hooks != nil {
		hooks.Execute(shutdownCtx)
	}

	return nil
}
