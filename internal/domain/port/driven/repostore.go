package driven

import (
	"context"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// RepositoryStore defines the driven port for repository persistence.
// ReplaceAll commits the full repository list as one atomic snapshot:
// incoming rows are upserted and rows absent from the batch are deleted,
// cascading to their pull requests, reviews, and comments. A failure rolls
// the whole replacement back, leaving the prior snapshot untouched.
type RepositoryStore interface {
	ReplaceAll(ctx context.Context, repos []model.Repository) error
	ListAll(ctx context.Context) ([]model.Repository, error)
	GetByID(ctx context.Context, id int64) (*model.Repository, error)
	// Remove evicts one repository and everything beneath it.
	Remove(ctx context.Context, id int64) error
}
