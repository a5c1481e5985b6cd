package model

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&RateLimitedError{RetryAfter: time.Minute}))
	assert.True(t, IsRetryable(&TransientError{Cause: errors.New("connection reset")}))
	assert.True(t, IsRetryable(fmt.Errorf("fetching repos: %w", &TransientError{Cause: errors.New("timeout")})))

	assert.False(t, IsRetryable(ErrUnauthorized))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(ErrEmptySelection))
	assert.False(t, IsRetryable(&ConflictError{Entity: "comment", ID: 1, Detail: "dangling review"}))
	assert.False(t, IsRetryable(context.Canceled))
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(context.Canceled))
	assert.True(t, IsCancelled(fmt.Errorf("joining sync: %w", context.DeadlineExceeded)))
	assert.False(t, IsCancelled(&TransientError{Cause: errors.New("boom")}))
}

func TestErrTargetNotFoundUnwrapsToNotFound(t *testing.T) {
	err := fmt.Errorf("target pull request 9: %w", ErrTargetNotFound)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPullRequestValidate(t *testing.T) {
	now := time.Now()
	mergedBy := User{ID: 3, Login: "bob"}

	open := PullRequest{ID: 1, State: PRStateOpen}
	assert.NoError(t, open.Validate())

	merged := PullRequest{ID: 2, State: PRStateMerged, ClosedAt: &now, MergedAt: &now, MergedBy: &mergedBy}
	assert.NoError(t, merged.Validate())

	mergedIncomplete := PullRequest{ID: 3, State: PRStateMerged, MergedAt: &now}
	var conflict *ConflictError
	assert.ErrorAs(t, mergedIncomplete.Validate(), &conflict)

	closedNoTimestamp := PullRequest{ID: 4, State: PRStateClosed}
	assert.ErrorAs(t, closedNoTimestamp.Validate(), &conflict)
}

func TestCommentValidate(t *testing.T) {
	reviewID := int64(1000)

	inline := Comment{ID: 1, Type: CommentTypeReview, ReviewID: &reviewID, Path: "main.go", Line: 3}
	assert.NoError(t, inline.Validate())

	var conflict *ConflictError

	orphanReview := Comment{ID: 2, Type: CommentTypeReview, Path: "main.go", Line: 3}
	assert.ErrorAs(t, orphanReview.Validate(), &conflict)

	anchorless := Comment{ID: 3, Type: CommentTypeReview, ReviewID: &reviewID}
	assert.ErrorAs(t, anchorless.Validate(), &conflict)

	issue := Comment{ID: 4, Type: CommentTypeIssue, Body: "looks good"}
	assert.NoError(t, issue.Validate())

	issueWithAnchor := Comment{ID: 5, Type: CommentTypeIssue, Path: "main.go", Line: 3}
	assert.ErrorAs(t, issueWithAnchor.Validate(), &conflict)
}

func TestCommentHasAnchor(t *testing.T) {
	assert.True(t, Comment{Path: "main.go", Line: 3}.HasAnchor())
	assert.True(t, Comment{Path: "main.go", Position: 7}.HasAnchor())
	assert.False(t, Comment{Path: "main.go"}.HasAnchor())
	assert.False(t, Comment{Line: 3}.HasAnchor())
}
