package observe

import (
	"context"
	"net/http"
	"net/http/httptrace"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func newInstrumentedTransport(base http.RoundTripper, connectionTrace bool) http.RoundTripper {
	opts := []otelhttp.Option{}

	if connectionTrace {
		opts = append(opts, otelhttp.WithClientTrace(
			func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx, otelhttptrace.WithoutSubSpans())
			},
		))
	}

	return otelhttp.NewTransport(base, opts...)
}
