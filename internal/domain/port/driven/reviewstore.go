package driven

import (
	"context"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// ReviewStore defines the driven port for review persistence. Replacement
// is atomic per pull request scope.
type ReviewStore interface {
	ReplaceForPullRequest(ctx context.Context, pullRequestID int64, reviews []model.Review) error
	GetByPullRequest(ctx context.Context, pullRequestID int64) ([]model.Review, error)
}
