package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepositoryStore = (*RepositoryRepo)(nil)

// RepositoryRepo is the SQLite implementation of the RepositoryStore port.
type RepositoryRepo struct {
	db *DB
}

// NewRepositoryRepo creates a new RepositoryRepo backed by the given DB.
func NewRepositoryRepo(db *DB) *RepositoryRepo {
	return &RepositoryRepo{db: db}
}

const repoColumns = `id, name, full_name, owner_id, owner_login, private, default_branch,
       language, stars, forks, open_issues, created_at, updated_at, pushed_at`

// ReplaceAll commits the full repository list as one transaction: incoming
// rows are upserted by ID and rows missing from the batch are deleted,
// cascading to their pull requests, reviews, and comments.
func (r *RepositoryRepo) ReplaceAll(ctx context.Context, repos []model.Repository) error {
	const upsert = `
		INSERT INTO repositories (
			id, name, full_name, owner_id, owner_login, private, default_branch,
			language, stars, forks, open_issues, created_at, updated_at, pushed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			full_name = excluded.full_name,
			owner_id = excluded.owner_id,
			owner_login = excluded.owner_login,
			private = excluded.private,
			default_branch = excluded.default_branch,
			language = excluded.language,
			stars = excluded.stars,
			forks = excluded.forks,
			open_issues = excluded.open_issues,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			pushed_at = excluded.pushed_at
	`

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if len(repos) == 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM repositories`); err != nil {
				return fmt.Errorf("clear repositories: %w", err)
			}
			return nil
		}

		ids := make([]int64, len(repos))
		for i, repo := range repos {
			ids[i] = repo.ID
		}
		ph, args := inPlaceholders(ids)
		if _, err := tx.ExecContext(ctx, `DELETE FROM repositories WHERE id NOT IN `+ph, args...); err != nil {
			return fmt.Errorf("delete removed repositories: %w", err)
		}

		for _, repo := range repos {
			_, err := tx.ExecContext(ctx, upsert,
				repo.ID, repo.Name, repo.FullName, repo.Owner.ID, repo.Owner.Login,
				boolInt(repo.Private), repo.DefaultBranch, repo.Language,
				repo.Stars, repo.Forks, repo.OpenIssues,
				fmtTime(repo.CreatedAt), fmtTime(repo.UpdatedAt), fmtTime(repo.PushedAt),
			)
			if err != nil {
				return fmt.Errorf("upsert repository %s: %w", repo.FullName, err)
			}
		}
		return nil
	})
}

// ListAll returns all repositories ordered by full name.
func (r *RepositoryRepo) ListAll(ctx context.Context) ([]model.Repository, error) {
	query := `SELECT ` + repoColumns + ` FROM repositories ORDER BY full_name`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, *repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}

// GetByID retrieves a single repository. Returns nil, nil if it does not exist.
func (r *RepositoryRepo) GetByID(ctx context.Context, id int64) (*model.Repository, error) {
	query := `SELECT ` + repoColumns + ` FROM repositories WHERE id = ?`

	repo, err := scanRepository(r.db.Reader.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %d: %w", id, err)
	}

	return repo, nil
}

// Remove evicts a repository; its pull requests, reviews, and comments go
// with it via ON DELETE CASCADE. Returns model.ErrNotFound for an unknown ID.
func (r *RepositoryRepo) Remove(ctx context.Context, id int64) error {
	result, err := r.db.Writer.ExecContext(ctx, `DELETE FROM repositories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove repository %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("repository %d: %w", id, model.ErrNotFound)
	}

	return nil
}

func scanRepository(s scanner) (*model.Repository, error) {
	var repo model.Repository
	var private int
	var createdAt, updatedAt, pushedAt string

	err := s.Scan(
		&repo.ID, &repo.Name, &repo.FullName, &repo.Owner.ID, &repo.Owner.Login,
		&private, &repo.DefaultBranch, &repo.Language,
		&repo.Stars, &repo.Forks, &repo.OpenIssues,
		&createdAt, &updatedAt, &pushedAt,
	)
	if err != nil {
		return nil, err
	}

	repo.Private = private != 0

	if repo.CreatedAt, err = readTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if repo.UpdatedAt, err = readTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if repo.PushedAt, err = readTime(pushedAt); err != nil {
		return nil, fmt.Errorf("parse pushed_at: %w", err)
	}

	return &repo, nil
}
