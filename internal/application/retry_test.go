package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// constantBackOff always proposes the same wait.
type constantBackOff struct{ d time.Duration }

func (c constantBackOff) NextBackOff() time.Duration { return c.d }
func (c constantBackOff) Reset()                     {}

func TestRateLimitFloor_RaisesNextWaitOnce(t *testing.T) {
	floor := &rateLimitFloor{next: constantBackOff{d: 10 * time.Millisecond}}

	floor.raise(2 * time.Second)
	assert.Equal(t, 2*time.Second, floor.NextBackOff(), "retry-after hint becomes the minimum wait")
	assert.Equal(t, 10*time.Millisecond, floor.NextBackOff(), "the floor applies to one wait only")
}

func TestRateLimitFloor_KeepsLargerBackoff(t *testing.T) {
	floor := &rateLimitFloor{next: constantBackOff{d: time.Minute}}

	floor.raise(time.Second)
	assert.Equal(t, time.Minute, floor.NextBackOff(), "a hint below the computed wait changes nothing")
}

func TestRateLimitFloor_PassesStopThrough(t *testing.T) {
	floor := &rateLimitFloor{next: constantBackOff{d: backoff.Stop}}

	floor.raise(time.Second)
	assert.Equal(t, backoff.Stop, floor.NextBackOff())
}

func TestRetryRemote_SucceedsWithoutRetry(t *testing.T) {
	attempts := 0
	got, err := retryRemote(context.Background(), 3, func() (int, error) {
		attempts++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, attempts)
}

func TestRetryRemote_NonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	_, err := retryRemote(context.Background(), 3, func() (int, error) {
		attempts++
		return 0, model.ErrUnauthorized
	})

	assert.True(t, errors.Is(err, model.ErrUnauthorized))
	assert.Equal(t, 1, attempts, "non-retryable errors must not be retried")
}

func TestRetryRemote_RetriesTransient(t *testing.T) {
	attempts := 0
	got, err := retryRemote(context.Background(), 3, func() (int, error) {
		attempts++
		if attempts < 2 {
			return 0, &model.TransientError{Cause: errors.New("connection reset")}
		}
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 2, attempts)
}

func TestRetryRemote_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	_, err := retryRemote(ctx, 3, func() (int, error) {
		attempts++
		cancel()
		return 0, &model.TransientError{Cause: errors.New("boom")}
	})

	require.Error(t, err)
	assert.True(t, model.IsCancelled(err))
	assert.Equal(t, 1, attempts, "cancellation stops the retry loop between attempts")
}
