package model

import "time"

// Comment represents a comment on a pull request. The three origins
// (issue discussion, review thread, commit) share one flat table; reply
// threads are reconstructed at query time from InReplyToID rather than
// stored as a tree.
type Comment struct {
	ID            int64
	PullRequestID int64
	ReviewID      *int64 // Set iff Type is CommentTypeReview.
	Type          CommentType
	Author        User
	Body          string
	Path          string // Set for review and commit comments.
	Line          int
	Position      int
	DiffHunk      string
	CommitID      string
	InReplyToID   *int64 // Root comment of the reply thread, nil for roots.
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasAnchor reports whether the comment carries a file/line anchor that can
// be replayed as an inline review comment.
func (c Comment) HasAnchor() bool {
	return c.Path != "" && (c.Line > 0 || c.Position > 0)
}

// Validate checks the per-type field invariants for a comment snapshot.
func (c Comment) Validate() error {
	switch c.Type {
	case CommentTypeReview:
		if c.ReviewID == nil {
			return &ConflictError{Entity: "comment", ID: c.ID, Detail: "review comment missing review_id"}
		}
		if !c.HasAnchor() {
			return &ConflictError{Entity: "comment", ID: c.ID, Detail: "review comment missing path/line anchor"}
		}
	case CommentTypeCommit:
		if c.ReviewID != nil {
			return &ConflictError{Entity: "comment", ID: c.ID, Detail: "commit comment carries review_id"}
		}
	case CommentTypeIssue:
		if c.ReviewID != nil || c.Path != "" || c.Line != 0 {
			return &ConflictError{Entity: "comment", ID: c.ID, Detail: "issue comment carries review anchor fields"}
		}
	}
	return nil
}
