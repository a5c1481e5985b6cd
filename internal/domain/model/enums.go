package model

// PRState represents the state of a pull request.
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
	PRStateMerged PRState = "merged"
)

// ReviewState represents the state of a review.
type ReviewState string

const (
	ReviewStatePending          ReviewState = "pending"
	ReviewStateApproved         ReviewState = "approved"
	ReviewStateChangesRequested ReviewState = "changes_requested"
	ReviewStateCommented        ReviewState = "commented"
	ReviewStateDismissed        ReviewState = "dismissed"
)

// CommentType distinguishes between different origins of PR comments.
type CommentType string

const (
	CommentTypeIssue  CommentType = "issue"  // PR-level discussion comment (Issues API).
	CommentTypeReview CommentType = "review" // Inline comment attached to a review.
	CommentTypeCommit CommentType = "commit" // Comment on a commit outside a review.
)
