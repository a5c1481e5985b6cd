package driven

import (
	"context"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// CommentDraft is one inline comment to be posted as part of a new review.
type CommentDraft struct {
	Path string // File path relative to repository root.
	Line int    // Source file line number on the RIGHT side.
	Body string // Comment body text.
}

// RemoteDataSource defines the driven port for the remote source of truth.
// Implementations handle authentication, pagination (every list call returns
// the complete logical list), and error classification into the model error
// taxonomy: *model.RateLimitedError, *model.TransientError,
// model.ErrUnauthorized, model.ErrNotFound.
type RemoteDataSource interface {
	// ListRepositories returns every repository visible to the configured
	// credentials, owner snapshots included.
	ListRepositories(ctx context.Context) ([]model.Repository, error)

	// ListPullRequests returns the pull requests of one repository. state
	// narrows the result server-side; empty means all states. Every returned
	// PR carries repositoryID as its back-reference.
	ListPullRequests(ctx context.Context, repositoryID int64, repoFullName string, state model.PRState) ([]model.PullRequest, error)

	// ListReviews returns all reviews on the pull request identified by its
	// repository-local number.
	ListReviews(ctx context.Context, pullRequestID int64, repoFullName string, number int) ([]model.Review, error)

	// ListComments returns all issue-level and review-level comments on the
	// pull request, merged into one flat list.
	ListComments(ctx context.Context, pullRequestID int64, repoFullName string, number int) ([]model.Comment, error)

	// CreateReviewWithComments posts a new review containing the given
	// inline drafts and returns the created review together with its
	// remote-assigned comments.
	CreateReviewWithComments(ctx context.Context, pullRequestID int64, repoFullName string, number int, summaryBody string, drafts []CommentDraft) (*model.Review, []model.Comment, error)
}
