package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReviewStore = (*ReviewRepo)(nil)

// ReviewRepo is the SQLite implementation of the ReviewStore port.
type ReviewRepo struct {
	db *DB
}

// NewReviewRepo creates a new ReviewRepo backed by the given DB.
func NewReviewRepo(db *DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// ReplaceForPullRequest atomically swaps the review set of one pull request.
func (r *ReviewRepo) ReplaceForPullRequest(ctx context.Context, pullRequestID int64, reviews []model.Review) error {
	const insert = `
		INSERT INTO reviews (id, pull_request_id, author_id, author_login, state, body, commit_id, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE pull_request_id = ?`, pullRequestID); err != nil {
			return fmt.Errorf("clear reviews for PR %d: %w", pullRequestID, err)
		}

		for _, review := range reviews {
			_, err := tx.ExecContext(ctx, insert,
				review.ID, pullRequestID, review.Author.ID, review.Author.Login,
				string(review.State), review.Body, review.CommitID, fmtTime(review.SubmittedAt),
			)
			if err != nil {
				return fmt.Errorf("insert review %d: %w", review.ID, err)
			}
		}
		return nil
	})
}

// GetByPullRequest returns the reviews of one pull request ordered by
// submission time.
func (r *ReviewRepo) GetByPullRequest(ctx context.Context, pullRequestID int64) ([]model.Review, error) {
	const query = `
		SELECT id, pull_request_id, author_id, author_login, state, body, commit_id, submitted_at
		FROM reviews
		WHERE pull_request_id = ?
		ORDER BY submitted_at, id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, pullRequestID)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var review model.Review
		var state, submittedAt string

		err := rows.Scan(
			&review.ID, &review.PullRequestID, &review.Author.ID, &review.Author.Login,
			&state, &review.Body, &review.CommitID, &submittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}

		review.State = model.ReviewState(state)
		if review.SubmittedAt, err = readTime(submittedAt); err != nil {
			return nil, fmt.Errorf("parse submitted_at: %w", err)
		}

		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}
