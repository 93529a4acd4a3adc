package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultStalenessThreshold is how long a fetched token is trusted before
// the next read forces a refresh.
const DefaultStalenessThreshold = 10 * time.Minute

// TokenCache wraps a TokenSource with a single cached token and a fixed
// staleness window. It is safe for concurrent use: readers observe either
// the previous token or a fully refreshed one, never a partially written
// pair of (value, timestamp).
//
// A failed refresh propagates the fetch error and leaves any previously
// cached token untouched. Its timestamp is not advanced, so the stale token
// is never served again: the very next Get retries the fetch.
type TokenCache struct {
	source    TokenSource
	threshold time.Duration

	mu      sync.RWMutex
	current *Token // nil until the first successful fetch

	group singleflight.Group

	now func() time.Time // override for tests
}

// NewTokenCache creates a cache over source with the given staleness
// threshold. A zero threshold refreshes whenever any time has elapsed since
// the last fetch.
func NewTokenCache(source TokenSource, threshold time.Duration) *TokenCache {
	return &TokenCache{
		source:    source,
		threshold: threshold,
		now:       time.Now,
	}
}

// Get returns the current token value, refreshing it first when no token has
// been fetched yet or the cached one has passed the staleness threshold.
// Concurrent callers that observe staleness at the same instant share a
// single upstream fetch.
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()

	if current != nil && !c.stale(current) {
		return current.Value, nil
	}

	return c.refresh(ctx, current)
}

// stale reports whether the token's fetch timestamp has fallen outside the
// staleness window. Wall-clock anomalies (a timestamp in the future) are
// treated as maximally stale so a refresh is forced rather than trusting a
// token of unknown age.
func (c *TokenCache) stale(t *Token) bool {
	elapsed := c.now().Sub(t.FetchedAt)
	if elapsed < 0 {
		return true
	}
	return elapsed > c.threshold
}

// refresh fetches a new token and swaps it in. The singleflight group
// coalesces concurrent refreshes; this is purely an optimization, duplicate
// fetches would be tolerable.
func (c *TokenCache) refresh(ctx context.Context, seen *Token) (string, error) {
	value, err, _ := c.group.Do("token", func() (any, error) {
		// Another caller may have completed a refresh while this one was
		// waiting on the group; use its result instead of fetching again.
		c.mu.RLock()
		current := c.current
		c.mu.RUnlock()
		if current != nil && current != seen && !c.stale(current) {
			return current.Value, nil
		}

		token, err := c.source.Fetch(ctx)
		if err != nil {
			return "", err
		}
		token.FetchedAt = c.now()

		c.mu.Lock()
		c.current = &token
		c.mu.Unlock()

		return token.Value, nil
	})
	if err != nil {
		return "", err
	}

	return value.(string), nil
}
