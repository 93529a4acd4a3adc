package transport

import (
	"net/http"

	"github.com/tinyurl-pestebani/go-otel-setup/internal/auth"
)

// AuthRoundTripper is an http.RoundTripper that attaches the provider's
// headers to every outbound request before handing it to the base transport.
// A provider failure aborts the request without it ever reaching the wire.
type AuthRoundTripper struct {
	provider auth.HeaderProvider
	base     http.RoundTripper
}

// NewAuthRoundTripper wraps base with credential injection. A nil base falls
// back to http.DefaultTransport.
func NewAuthRoundTripper(provider auth.HeaderProvider, base http.RoundTripper) *AuthRoundTripper {
	return &AuthRoundTripper{provider: provider, base: base}
}

// RoundTrip clones the request so the caller's copy is never mutated, merges
// the credential headers, and delegates to the base transport.
func (t *AuthRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	r2 := r.Clone(r.Context())

	err := Apply(r.Context(), t.provider, func(key, value string) {
		r2.Header.Set(key, value)
	})
	if err != nil {
		return nil, err
	}

	return t.getBase().RoundTrip(r2)
}

func (t *AuthRoundTripper) getBase() http.RoundTripper {
	if t.base != nil {
		return t.base
	}
	return http.DefaultTransport
}

// Client returns an http.Client whose requests carry the provider's headers.
func (t *AuthRoundTripper) Client() *http.Client {
	return &http.Client{Transport: t}
}
