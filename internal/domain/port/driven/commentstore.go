package driven

import (
	"context"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// CommentStore defines the driven port for comment persistence. Replacement
// is atomic per pull request scope.
type CommentStore interface {
	ReplaceForPullRequest(ctx context.Context, pullRequestID int64, comments []model.Comment) error
	GetByPullRequest(ctx context.Context, pullRequestID int64) ([]model.Comment, error)
	// GetByIDs returns the comments with the given IDs, in no particular
	// order. Missing IDs are simply absent from the result.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Comment, error)
}
