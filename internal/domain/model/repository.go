package model

import "time"

// Repository represents a GitHub repository mirrored into the local cache.
// Pull requests are not embedded; they are looked up by RepositoryID.
type Repository struct {
	ID            int64
	Name          string
	FullName      string
	Owner         User // Snapshot; persisted by ID with a denormalized login.
	Private       bool
	DefaultBranch string
	Language      string
	Stars         int
	Forks         int
	OpenIssues    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PushedAt      time.Time
}
