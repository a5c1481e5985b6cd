package model

import (
	"fmt"
	"time"
)

// EntityType names a syncable entity family. Together with a scope ID it
// identifies one atomically-replaceable unit of cached data.
type EntityType string

const (
	EntityRepositories EntityType = "repositories"
	EntityPullRequests EntityType = "pull_requests"
	EntityReviews      EntityType = "reviews"
	EntityComments     EntityType = "comments"
)

// Scope identifies a syncable unit: all repositories (global, ID 0), the
// pull requests of one repository, or the reviews/comments of one PR.
type Scope struct {
	Entity EntityType
	ID     int64
}

// RepositoriesScope returns the single global repository-list scope.
func RepositoriesScope() Scope {
	return Scope{Entity: EntityRepositories}
}

// PullRequestsScope returns the scope covering one repository's pull requests.
func PullRequestsScope(repositoryID int64) Scope {
	return Scope{Entity: EntityPullRequests, ID: repositoryID}
}

// ReviewsScope returns the scope covering one pull request's reviews.
func ReviewsScope(pullRequestID int64) Scope {
	return Scope{Entity: EntityReviews, ID: pullRequestID}
}

// CommentsScope returns the scope covering one pull request's comments.
func CommentsScope(pullRequestID int64) Scope {
	return Scope{Entity: EntityComments, ID: pullRequestID}
}

// String renders the scope as a stable key, e.g. "pull_requests:42".
func (s Scope) String() string {
	return fmt.Sprintf("%s:%d", s.Entity, s.ID)
}

// SyncState records when a scope was last successfully synchronized and
// whether a sync is currently running. It is engine-internal bookkeeping,
// never sourced from the remote.
type SyncState struct {
	Scope        Scope
	LastSyncedAt time.Time
	InProgress   bool
}
