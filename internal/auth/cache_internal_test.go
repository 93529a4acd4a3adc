package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource returns a new token value on each fetch, recording how many
// fetches occurred.
type countingSource struct {
	calls atomic.Int64
	err   error
}

func (s *countingSource) Fetch(ctx context.Context) (Token, error) {
	n := s.calls.Add(1)
	if s.err != nil {
		return Token{}, s.err
	}
	return Token{Value: fmt.Sprintf("tok-%d", n)}, nil
}

func TestGetFetchesOnFirstCall(t *testing.T) {
	source := &countingSource{}
	cache := NewTokenCache(source, DefaultStalenessThreshold)

	value, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", value)
	assert.EqualValues(t, 1, source.calls.Load())
}

func TestGetReusesFreshToken(t *testing.T) {
	source := &countingSource{}
	cache := NewTokenCache(source, DefaultStalenessThreshold)

	first, err := cache.Get(context.Background())
	require.NoError(t, err)

	// repeated reads within the staleness window return the same value
	// without touching the source again
	for range 10 {
		value, err := cache.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, value)
	}

	assert.EqualValues(t, 1, source.calls.Load())
}

func TestGetRefreshesStaleToken(t *testing.T) {
	source := &countingSource{}
	cache := NewTokenCache(source, DefaultStalenessThreshold)

	now := time.Now()
	cache.now = func() time.Time { return now }

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", first)

	// move past the threshold: exactly one new fetch
	now = now.Add(DefaultStalenessThreshold + time.Second)

	second, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", second)
	assert.EqualValues(t, 2, source.calls.Load())
}

func TestGetTreatsFutureTimestampAsStale(t *testing.T) {
	source := &countingSource{}
	cache := NewTokenCache(source, DefaultStalenessThreshold)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	// a fetch timestamp ahead of the clock forces a refresh rather than
	// trusting a token of unknown age
	cache.mu.Lock()
	cache.current.FetchedAt = time.Now().Add(time.Hour)
	cache.mu.Unlock()

	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, source.calls.Load())
}

func TestGetPropagatesFetchErrorWhenEmpty(t *testing.T) {
	source := &countingSource{err: fmt.Errorf("%w: endpoint unreachable", ErrFetch)}
	cache := NewTokenCache(source, DefaultStalenessThreshold)

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)

	// cache remains absent, so the next call retries
	cache.mu.RLock()
	assert.Nil(t, cache.current)
	cache.mu.RUnlock()

	_, err = cache.Get(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 2, source.calls.Load())
}

func TestGetFailsOnStaleTokenWithFailingRefresh(t *testing.T) {
	source := &countingSource{}
	cache := NewTokenCache(source, DefaultStalenessThreshold)

	now := time.Now()
	cache.now = func() time.Time { return now }

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	now = now.Add(DefaultStalenessThreshold + time.Second)
	source.err = errors.New("boom")

	// a stale token is never served: the read fails rather than falling
	// back to the previous value
	_, err = cache.Get(context.Background())
	require.Error(t, err)

	// the previous token's timestamp was not advanced, so the failure is
	// retried immediately on the next call
	_, err = cache.Get(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 3, source.calls.Load())
}

func TestGetConcurrentColdStart(t *testing.T) {
	source := &countingSource{}
	cache := NewTokenCache(source, DefaultStalenessThreshold)

	const callers = 50

	var wg sync.WaitGroup
	values := make([]string, callers)
	errs := make([]error, callers)

	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			values[i], errs[i] = cache.Get(context.Background())
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.NotEmpty(t, values[i])
	}

	// every caller observed a fetched token; duplicate fetches are
	// tolerated but bounded by the number of callers
	fetches := source.calls.Load()
	assert.GreaterOrEqual(t, fetches, int64(1))
	assert.LessOrEqual(t, fetches, int64(callers))
}

func TestGetZeroThresholdAlwaysFetches(t *testing.T) {
	source := &countingSource{}
	cache := NewTokenCache(source, 0)

	now := time.Now()
	cache.now = func() time.Time { return now }

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	now = now.Add(time.Nanosecond)

	value, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", value)
}
