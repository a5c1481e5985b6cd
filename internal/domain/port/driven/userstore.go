package driven

import (
	"context"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// UserStore defines the driven port for user persistence. Users are
// upserted opportunistically from whatever sync batch mentions them
// (repository owners, PR authors, reviewers, commenters).
type UserStore interface {
	UpsertAll(ctx context.Context, users []model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
}
