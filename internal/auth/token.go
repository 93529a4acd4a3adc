package auth

import (
	"context"
	"errors"
	"time"
)

// ErrFetch indicates that the upstream credential authority was unreachable
// or returned material that could not be used as a bearer token. Errors from
// a TokenSource wrap this sentinel so callers can distinguish credential
// failures from transport failures.
var ErrFetch = errors.New("credential fetch failed")

// Token is a bearer credential with the time it was obtained. A Token is
// only ever constructed from a successful fetch; "no token yet" is
// represented by the absence of a Token, not by a zero value.
type Token struct {
	Value     string
	FetchedAt time.Time
}

// TokenSource obtains a fresh bearer token from an upstream credential
// authority. Implementations perform one round-trip per call: no caching and
// no internal retries. Caching and staleness policy belong to TokenCache.
type TokenSource interface {
	Fetch(ctx context.Context) (Token, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (Token, error)

func (f TokenSourceFunc) Fetch(ctx context.Context) (Token, error) {
	return f(ctx)
}
