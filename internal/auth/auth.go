// Package auth supplies bearer credentials for outbound telemetry export.
//
// A HeaderProvider is the single capability the transport layer depends on:
// "produce the auth headers for one outbound request". Providers are
// constructed once at startup and shared by every request that flows through
// a transport adapter; all mutable state lives in the TokenCache.
package auth

import (
	"context"
	"fmt"

	"github.com/tinyurl-pestebani/go-otel-setup/internal/config"
)

// HeaderProvider produces header key/value pairs to attach to a single
// outbound request. Implementations must be safe for concurrent use and must
// return either a complete set of headers or an error, never both.
type HeaderProvider interface {
	Headers(ctx context.Context) (map[string]string, error)
}

// Unauthenticated is a HeaderProvider that attaches nothing. It never fails.
type Unauthenticated struct{}

func (Unauthenticated) Headers(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

// StaticProvider attaches a fixed bearer token to every request. Useful for
// collectors fronted by a reverse proxy that checks a shared secret.
type StaticProvider struct {
	token string
}

func NewStaticProvider(token string) (*StaticProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("static provider requires a token")
	}
	return &StaticProvider{token: token}, nil
}

func (p *StaticProvider) Headers(context.Context) (map[string]string, error) {
	return map[string]string{
		"authorization": "Bearer " + p.token,
	}, nil
}

// New constructs the HeaderProvider selected by the configuration.
// Incomplete configuration for the selected provider is an error here, at
// composition time; it is never deferred to the first request.
func New(ctx context.Context, cfg config.AuthConfig) (HeaderProvider, error) {
	switch cfg.Provider {
	case "none", "":
		return Unauthenticated{}, nil
	case "gcp":
		return NewGCPProvider(ctx, cfg.ProjectID)
	case "static":
		return NewStaticProvider(cfg.StaticToken)
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
	}
}
