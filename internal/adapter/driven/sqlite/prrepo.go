package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PullRequestStore = (*PullRequestRepo)(nil)

// PullRequestRepo is the SQLite implementation of the PullRequestStore port.
type PullRequestRepo struct {
	db *DB
}

// NewPullRequestRepo creates a new PullRequestRepo backed by the given DB.
func NewPullRequestRepo(db *DB) *PullRequestRepo {
	return &PullRequestRepo{db: db}
}

const prColumns = `id, number, repository_id, title, body, state, author_id, author_login,
       base_branch, head_branch, is_draft, additions, deletions, changed_files,
       created_at, updated_at, closed_at, merged_at, merged_by_id, merged_by_login`

// ReplaceForRepository atomically swaps the pull request set of one
// repository: the prior rows are deleted and the batch inserted in a single
// transaction, so a failure leaves the old snapshot intact.
func (r *PullRequestRepo) ReplaceForRepository(ctx context.Context, repositoryID int64, prs []model.PullRequest) error {
	const insert = `
		INSERT INTO pull_requests (
			id, number, repository_id, title, body, state, author_id, author_login,
			base_branch, head_branch, is_draft, additions, deletions, changed_files,
			created_at, updated_at, closed_at, merged_at, merged_by_id, merged_by_login
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pull_requests WHERE repository_id = ?`, repositoryID); err != nil {
			return fmt.Errorf("clear pull requests for repository %d: %w", repositoryID, err)
		}

		for _, pr := range prs {
			var mergedByID, mergedByLogin any
			if pr.MergedBy != nil {
				mergedByID = pr.MergedBy.ID
				mergedByLogin = pr.MergedBy.Login
			}

			_, err := tx.ExecContext(ctx, insert,
				pr.ID, pr.Number, repositoryID, pr.Title, pr.Body, string(pr.State),
				pr.Author.ID, pr.Author.Login, pr.BaseBranch, pr.HeadBranch,
				boolInt(pr.IsDraft), pr.Additions, pr.Deletions, pr.ChangedFiles,
				fmtTime(pr.CreatedAt), fmtTime(pr.UpdatedAt),
				fmtTimePtr(pr.ClosedAt), fmtTimePtr(pr.MergedAt), mergedByID, mergedByLogin,
			)
			if err != nil {
				return fmt.Errorf("insert pull request #%d: %w", pr.Number, err)
			}
		}
		return nil
	})
}

// GetByRepository returns the pull requests of one repository ordered by number.
func (r *PullRequestRepo) GetByRepository(ctx context.Context, repositoryID int64) ([]model.PullRequest, error) {
	query := `SELECT ` + prColumns + ` FROM pull_requests WHERE repository_id = ? ORDER BY number`

	rows, err := r.db.Reader.QueryContext(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("query pull requests: %w", err)
	}
	defer rows.Close()

	var prs []model.PullRequest
	for rows.Next() {
		pr, err := scanPullRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pull request: %w", err)
		}
		prs = append(prs, *pr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pull requests: %w", err)
	}

	return prs, nil
}

// GetByID retrieves a single pull request by its global ID.
// Returns nil, nil if it does not exist.
func (r *PullRequestRepo) GetByID(ctx context.Context, id int64) (*model.PullRequest, error) {
	query := `SELECT ` + prColumns + ` FROM pull_requests WHERE id = ?`

	pr, err := scanPullRequest(r.db.Reader.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pull request %d: %w", id, err)
	}

	return pr, nil
}

func scanPullRequest(s scanner) (*model.PullRequest, error) {
	var pr model.PullRequest
	var state string
	var isDraft int
	var createdAt, updatedAt string
	var closedAt, mergedAt, mergedByLogin sql.NullString
	var mergedByID sql.NullInt64

	err := s.Scan(
		&pr.ID, &pr.Number, &pr.RepositoryID, &pr.Title, &pr.Body, &state,
		&pr.Author.ID, &pr.Author.Login, &pr.BaseBranch, &pr.HeadBranch,
		&isDraft, &pr.Additions, &pr.Deletions, &pr.ChangedFiles,
		&createdAt, &updatedAt, &closedAt, &mergedAt, &mergedByID, &mergedByLogin,
	)
	if err != nil {
		return nil, err
	}

	pr.State = model.PRState(state)
	pr.IsDraft = isDraft != 0

	if pr.CreatedAt, err = readTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if pr.UpdatedAt, err = readTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if pr.ClosedAt, err = readTimePtr(closedAt); err != nil {
		return nil, fmt.Errorf("parse closed_at: %w", err)
	}
	if pr.MergedAt, err = readTimePtr(mergedAt); err != nil {
		return nil, fmt.Errorf("parse merged_at: %w", err)
	}

	if mergedByID.Valid {
		pr.MergedBy = &model.User{ID: mergedByID.Int64, Login: mergedByLogin.String}
	}

	return &pr, nil
}
