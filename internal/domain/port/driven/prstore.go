package driven

import (
	"context"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// PullRequestStore defines the driven port for pull request persistence.
// ReplaceForRepository atomically swaps the full PR set of one repository;
// on failure the prior set survives intact.
type PullRequestStore interface {
	ReplaceForRepository(ctx context.Context, repositoryID int64, prs []model.PullRequest) error
	GetByRepository(ctx context.Context, repositoryID int64) ([]model.PullRequest, error)
	GetByID(ctx context.Context, id int64) (*model.PullRequest, error)
}
