package model

import "time"

// Review represents a review submitted on a pull request.
type Review struct {
	ID            int64
	PullRequestID int64
	Author        User
	State         ReviewState
	Body          string
	CommitID      string // SHA of the commit this review targets.
	SubmittedAt   time.Time
}
