package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// classify maps a go-github error into the domain error taxonomy so the sync
// engine can decide retryability without knowing about HTTP.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if model.IsCancelled(err) {
		return err
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		retryAfter := time.Until(rateLimitErr.Rate.Reset.Time)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return &model.RateLimitedError{RetryAfter: retryAfter}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var retryAfter time.Duration
		if abuseErr.RetryAfter != nil {
			retryAfter = *abuseErr.RetryAfter
		}
		return &model.RateLimitedError{RetryAfter: retryAfter}
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch status := respErr.Response.StatusCode; {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return fmt.Errorf("%v: %w", err, model.ErrUnauthorized)
		case status == http.StatusNotFound:
			return fmt.Errorf("%v: %w", err, model.ErrNotFound)
		case status >= 500:
			return &model.TransientError{Cause: err}
		default:
			// Remaining 4xx (validation, conflict) are not retryable.
			return err
		}
	}

	// Anything else is transport-level: DNS, timeouts, connection resets.
	return &model.TransientError{Cause: err}
}
