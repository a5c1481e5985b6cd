package model

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared across the sync engine and its adapters.
var (
	// ErrUnauthorized indicates an authentication or permission failure.
	// Not retryable; the caller must re-authenticate.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested remote or local entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTargetNotFound indicates the duplication target pull request is
	// unknown both locally and remotely.
	ErrTargetNotFound = fmt.Errorf("target pull request: %w", ErrNotFound)

	// ErrEmptySelection indicates a duplication request with no source comments.
	ErrEmptySelection = errors.New("empty comment selection")
)

// RateLimitedError indicates the remote refused the call due to rate
// limiting. RetryAfter is the minimum wait the remote asked for; zero when
// the remote gave no hint.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// TransientError wraps a retryable failure such as a network timeout or a
// 5xx response from the remote.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient remote failure: %v", e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// ConflictError indicates an entity that violates a local consistency
// invariant, e.g. a dangling foreign key discovered during persist.
type ConflictError struct {
	Entity string
	ID     int64
	Detail string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %d: %s", e.Entity, e.ID, e.Detail)
}

// IsRetryable reports whether the sync engine may retry the operation that
// produced err. Only rate-limit and transient failures qualify; everything
// else propagates immediately.
func IsRetryable(err error) bool {
	var rl *RateLimitedError
	var tr *TransientError
	return errors.As(err, &rl) || errors.As(err, &tr)
}

// IsCancelled reports whether err stems from context cancellation or a
// deadline rather than a remote or local failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
