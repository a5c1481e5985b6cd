package driven

import (
	"context"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// SyncStateStore defines the driven port for per-scope sync bookkeeping.
// Get returns nil (not an error) for a scope that has never been synced.
// Delete is the scope-precise cache invalidation primitive: a deleted state
// makes the next freshness check treat the scope as never synced.
type SyncStateStore interface {
	Get(ctx context.Context, scope model.Scope) (*model.SyncState, error)
	Put(ctx context.Context, state model.SyncState) error
	Delete(ctx context.Context, scope model.Scope) error
}
