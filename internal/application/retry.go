package application

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// retryRemote runs op with exponential backoff up to maxRetries additional
// attempts. Only rate-limited and transient errors are retried; a rate-limit
// retry-after hint raises the floor of the next wait. All other errors stop
// the retry loop immediately.
func retryRemote[T any](ctx context.Context, maxRetries uint64, op func() (T, error)) (T, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.MaxInterval = 30 * time.Second

	floor := &rateLimitFloor{next: exp}
	policy := backoff.WithContext(backoff.WithMaxRetries(floor, maxRetries), ctx)

	return backoff.RetryWithData(func() (T, error) {
		v, err := op()
		if err == nil {
			return v, nil
		}

		var rateLimited *model.RateLimitedError
		if errors.As(err, &rateLimited) {
			floor.raise(rateLimited.RetryAfter)
			return v, err
		}

		if !model.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}

		return v, err
	}, policy)
}

// rateLimitFloor wraps a backoff policy so that a remote "retry after" hint
// becomes the minimum for the next wait. The floor applies once and is
// cleared after use.
type rateLimitFloor struct {
	next  backoff.BackOff
	floor time.Duration
}

func (r *rateLimitFloor) raise(d time.Duration) {
	if d > r.floor {
		r.floor = d
	}
}

func (r *rateLimitFloor) NextBackOff() time.Duration {
	d := r.next.NextBackOff()
	if d == backoff.Stop {
		return backoff.Stop
	}
	if r.floor > d {
		d = r.floor
	}
	r.floor = 0
	return d
}

func (r *rateLimitFloor) Reset() {
	r.next.Reset()
	r.floor = 0
}
