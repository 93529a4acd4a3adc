// Package transport binds a credential HeaderProvider to the concrete
// request shapes used by the OTLP exporters: gRPC call metadata, plain
// net/http requests, and requests made through a retrying HTTP client.
//
// The adapters hold no state of their own. Every outbound request re-invokes
// the provider, so a refreshed token propagates without any adapter-level
// staleness.
package transport

import (
	"context"
	"fmt"

	"github.com/tinyurl-pestebani/go-otel-setup/internal/auth"
)

// Apply merges the provider's headers into a request via set, overwriting
// any pre-existing entry with the same key. It is the one copy of the
// "produce headers and attach them" step shared by all adapters; each
// transport contributes only its own setter.
func Apply(ctx context.Context, provider auth.HeaderProvider, set func(key, value string)) error {
	headers, err := provider.Headers(ctx)
	if err != nil {
		return fmt.Errorf("credential headers unavailable: %w", err)
	}

	for key, value := range headers {
		set(key, value)
	}

	return nil
}
