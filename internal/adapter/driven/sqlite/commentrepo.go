package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CommentStore = (*CommentRepo)(nil)

// CommentRepo is the SQLite implementation of the CommentStore port.
type CommentRepo struct {
	db *DB
}

// NewCommentRepo creates a new CommentRepo backed by the given DB.
func NewCommentRepo(db *DB) *CommentRepo {
	return &CommentRepo{db: db}
}

const commentColumns = `id, pull_request_id, review_id, type, author_id, author_login, body,
       path, line, position, diff_hunk, commit_id, in_reply_to_id, created_at, updated_at`

// ReplaceForPullRequest atomically swaps the comment set of one pull request.
func (r *CommentRepo) ReplaceForPullRequest(ctx context.Context, pullRequestID int64, comments []model.Comment) error {
	const insert = `
		INSERT INTO comments (
			id, pull_request_id, review_id, type, author_id, author_login, body,
			path, line, position, diff_hunk, commit_id, in_reply_to_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE pull_request_id = ?`, pullRequestID); err != nil {
			return fmt.Errorf("clear comments for PR %d: %w", pullRequestID, err)
		}

		for _, c := range comments {
			var reviewID, inReplyToID any
			if c.ReviewID != nil {
				reviewID = *c.ReviewID
			}
			if c.InReplyToID != nil {
				inReplyToID = *c.InReplyToID
			}

			_, err := tx.ExecContext(ctx, insert,
				c.ID, pullRequestID, reviewID, string(c.Type),
				c.Author.ID, c.Author.Login, c.Body,
				c.Path, c.Line, c.Position, c.DiffHunk, c.CommitID,
				inReplyToID, fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt),
			)
			if err != nil {
				return fmt.Errorf("insert comment %d: %w", c.ID, err)
			}
		}
		return nil
	})
}

// GetByPullRequest returns the comments of one pull request in creation order.
func (r *CommentRepo) GetByPullRequest(ctx context.Context, pullRequestID int64) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE pull_request_id = ? ORDER BY created_at, id`

	return r.queryComments(ctx, query, pullRequestID)
}

// GetByIDs returns the comments with the given IDs; missing IDs are absent
// from the result.
func (r *CommentRepo) GetByIDs(ctx context.Context, ids []int64) ([]model.Comment, error) {
	if len(ids) == 0 {
		return []model.Comment{}, nil
	}

	ph, args := inPlaceholders(ids)
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id IN ` + ph + ` ORDER BY created_at, id`

	return r.queryComments(ctx, query, args...)
}

func (r *CommentRepo) queryComments(ctx context.Context, query string, args ...any) ([]model.Comment, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

func scanComment(s scanner) (*model.Comment, error) {
	var c model.Comment
	var typ string
	var reviewID, inReplyToID sql.NullInt64
	var createdAt, updatedAt string

	err := s.Scan(
		&c.ID, &c.PullRequestID, &reviewID, &typ,
		&c.Author.ID, &c.Author.Login, &c.Body,
		&c.Path, &c.Line, &c.Position, &c.DiffHunk, &c.CommitID,
		&inReplyToID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Type = model.CommentType(typ)
	if reviewID.Valid {
		c.ReviewID = &reviewID.Int64
	}
	if inReplyToID.Valid {
		c.InReplyToID = &inReplyToID.Int64
	}

	if c.CreatedAt, err = readTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if c.UpdatedAt, err = readTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &c, nil
}
