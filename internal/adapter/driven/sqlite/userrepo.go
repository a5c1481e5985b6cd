package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// UpsertAll inserts or replaces the given users in one transaction.
func (r *UserRepo) UpsertAll(ctx context.Context, users []model.User) error {
	const upsert = `
		INSERT INTO users (id, login, name, email, avatar_url, bio, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			login = excluded.login,
			name = excluded.name,
			email = excluded.email,
			avatar_url = excluded.avatar_url,
			bio = excluded.bio,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, u := range users {
			_, err := tx.ExecContext(ctx, upsert,
				u.ID, u.Login, u.Name, u.Email, u.AvatarURL, u.Bio,
				fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt),
			)
			if err != nil {
				return fmt.Errorf("upsert user %q: %w", u.Login, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a single user. Returns nil, nil if the user does not exist.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `
		SELECT id, login, name, email, avatar_url, bio, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	var u model.User
	var createdAt, updatedAt string

	err := r.db.Reader.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Login, &u.Name, &u.Email, &u.AvatarURL, &u.Bio, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}

	if u.CreatedAt, err = readTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if u.UpdatedAt, err = readTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &u, nil
}
