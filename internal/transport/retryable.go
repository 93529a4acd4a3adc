package transport

import (
	"fmt"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/tinyurl-pestebani/go-otel-setup/internal/auth"
)

// RetryableTransport sends requests through a retrying HTTP client,
// attaching the provider's headers first. The credential lookup happens once
// per logical request, before any retry attempt: a retried request re-sends
// the same headers, while a fresh request picks up a refreshed token.
//
// It implements http.RoundTripper so it can stand in anywhere a plain
// transport is expected, in particular as the OTLP/HTTP exporter's client.
type RetryableTransport struct {
	provider auth.HeaderProvider
	client   *retryablehttp.Client
}

// NewRetryableTransport wraps client with credential injection. A nil client
// gets a default retryablehttp client logging through zerolog.
func NewRetryableTransport(provider auth.HeaderProvider, client *retryablehttp.Client) *RetryableTransport {
	if client == nil {
		client = retryablehttp.NewClient()
		client.Logger = retryLogger{}
	}
	return &RetryableTransport{provider: provider, client: client}
}

func (t *RetryableTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	// FromRequest embeds the request it is given, so clone first: header
	// merging must never reach back into the caller's copy
	req, err := retryablehttp.FromRequest(r.Clone(r.Context()))
	if err != nil {
		return nil, fmt.Errorf("request not retryable: %w", err)
	}

	err = Apply(r.Context(), t.provider, func(key, value string) {
		req.Header.Set(key, value)
	})
	if err != nil {
		return nil, err
	}

	return t.client.Do(req)
}

// Client returns an http.Client whose requests are retried and carry the
// provider's headers.
func (t *RetryableTransport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// retryLogger routes retryablehttp's leveled logging to zerolog.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...any) {
	log.Error().Fields(keysAndValues).Msg(msg)
}

func (retryLogger) Warn(msg string, keysAndValues ...any) {
	log.Warn().Fields(keysAndValues).Msg(msg)
}

func (retryLogger) Info(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (retryLogger) Debug(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}
