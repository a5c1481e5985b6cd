package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SyncStateStore = (*SyncStateRepo)(nil)

// SyncStateRepo is the SQLite implementation of the SyncStateStore port.
type SyncStateRepo struct {
	db *DB
}

// NewSyncStateRepo creates a new SyncStateRepo backed by the given DB.
func NewSyncStateRepo(db *DB) *SyncStateRepo {
	return &SyncStateRepo{db: db}
}

// Get retrieves the sync state for a scope. Returns nil, nil for a scope
// that has never been synced.
func (r *SyncStateRepo) Get(ctx context.Context, scope model.Scope) (*model.SyncState, error) {
	const query = `
		SELECT last_synced_at, in_progress
		FROM sync_state
		WHERE entity_type = ? AND scope_id = ?
	`

	var lastSyncedAt string
	var inProgress int

	err := r.db.Reader.QueryRowContext(ctx, query, string(scope.Entity), scope.ID).
		Scan(&lastSyncedAt, &inProgress)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sync state %s: %w", scope, err)
	}

	state := model.SyncState{Scope: scope, InProgress: inProgress != 0}
	if state.LastSyncedAt, err = readTime(lastSyncedAt); err != nil {
		return nil, fmt.Errorf("parse last_synced_at: %w", err)
	}

	return &state, nil
}

// Put stores or replaces the sync state for a scope.
func (r *SyncStateRepo) Put(ctx context.Context, state model.SyncState) error {
	const query = `
		INSERT INTO sync_state (entity_type, scope_id, last_synced_at, in_progress)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(entity_type, scope_id) DO UPDATE SET
			last_synced_at = excluded.last_synced_at,
			in_progress = excluded.in_progress
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		string(state.Scope.Entity), state.Scope.ID,
		fmtTime(state.LastSyncedAt), boolInt(state.InProgress),
	)
	if err != nil {
		return fmt.Errorf("put sync state %s: %w", state.Scope, err)
	}

	return nil
}

// Delete removes the sync state for a scope, invalidating it. Deleting a
// scope that was never synced is a no-op.
func (r *SyncStateRepo) Delete(ctx context.Context, scope model.Scope) error {
	const query = `DELETE FROM sync_state WHERE entity_type = ? AND scope_id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, string(scope.Entity), scope.ID); err != nil {
		return fmt.Errorf("delete sync state %s: %w", scope, err)
	}

	return nil
}
