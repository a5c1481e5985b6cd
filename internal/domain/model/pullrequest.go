package model

import "time"

// PullRequest represents a GitHub pull request snapshot in the local cache.
// Number is unique only within a repository; the composite (RepositoryID,
// Number) addresses the PR remotely while local storage keys by the global ID.
type PullRequest struct {
	ID           int64
	Number       int
	RepositoryID int64
	Title        string
	Body         string
	State        PRState
	Author       User
	BaseBranch   string
	HeadBranch   string
	IsDraft      bool
	Additions    int
	Deletions    int
	ChangedFiles int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time // Set when State is closed or merged.
	MergedAt     *time.Time // Set iff State is merged.
	MergedBy     *User      // Set iff State is merged.
}

// IsMerged reports whether the pull request has been merged.
func (pr PullRequest) IsMerged() bool {
	return pr.State == PRStateMerged
}

// Validate checks the state/timestamp invariants for a pull request snapshot.
func (pr PullRequest) Validate() error {
	switch pr.State {
	case PRStateMerged:
		if pr.MergedAt == nil || pr.MergedBy == nil {
			return &ConflictError{Entity: "pull_request", ID: pr.ID, Detail: "merged PR missing merged_at or merged_by"}
		}
	case PRStateClosed:
		if pr.ClosedAt == nil {
			return &ConflictError{Entity: "pull_request", ID: pr.ID, Detail: "closed PR missing closed_at"}
		}
	}
	return nil
}
