package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// fetchTimeout bounds a single token round-trip to the credential authority.
// The cache has no timeout of its own: a Get blocks for as long as the fetch
// takes, so the bound lives here with the source.
const fetchTimeout = 30 * time.Second

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// GCPProvider produces bearer tokens for OTLP endpoints that authenticate
// with Google credentials (e.g. a collector behind IAP, or Cloud Trace
// ingest). Tokens come from Application Default Credentials via the shared
// TokenCache; the project id is fixed at construction and attached as the
// x-goog-user-project header on every request.
type GCPProvider struct {
	cache     *TokenCache
	projectID string
}

// NewGCPProvider locates Application Default Credentials and wraps them in a
// staleness-checked cache. An empty project id or absent credentials fail
// construction immediately.
func NewGCPProvider(ctx context.Context, projectID string) (*GCPProvider, error) {
	if projectID == "" {
		return nil, fmt.Errorf("gcp provider requires a project id")
	}

	source, err := newGCPTokenSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcp credential discovery failed: %w", err)
	}

	return newGCPProvider(source, projectID), nil
}

// newGCPProvider wires an explicit token source, primarily for tests.
func newGCPProvider(source TokenSource, projectID string) *GCPProvider {
	return &GCPProvider{
		cache:     NewTokenCache(source, DefaultStalenessThreshold),
		projectID: projectID,
	}
}

func (p *GCPProvider) Headers(ctx context.Context) (map[string]string, error) {
	token, err := p.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"authorization":       "Bearer " + token,
		"x-goog-user-project": p.projectID,
	}, nil
}

// gcpTokenSource fetches tokens from Application Default Credentials. Each
// Fetch asks the underlying credentials for a token; staleness policy is
// owned by the TokenCache, not here.
type gcpTokenSource struct {
	ts oauth2.TokenSource
}

func newGCPTokenSource(ctx context.Context) (*gcpTokenSource, error) {
	// The fetch timeout rides on the HTTP client the oauth2 machinery uses
	// for its token round-trips.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: fetchTimeout})

	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, err
	}

	return &gcpTokenSource{ts: creds.TokenSource}, nil
}

func (s *gcpTokenSource) Fetch(ctx context.Context) (Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	if tok.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: credential response contained no access token", ErrFetch)
	}

	return Token{Value: tok.AccessToken, FetchedAt: time.Now()}, nil
}
