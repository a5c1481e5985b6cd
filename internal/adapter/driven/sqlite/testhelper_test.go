package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() ensures isolation between parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename component
	// and cannot be misinterpreted as query parameters in the "file:%s?..." DSN.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		safeName,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(context.Background()); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		t.Fatalf("ping test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

var testTime = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

func makeUser(id int64, login string) model.User {
	return model.User{
		ID:        id,
		Login:     login,
		Name:      "Test " + login,
		UpdatedAt: testTime,
	}
}

func makeRepo(id int64, fullName string) model.Repository {
	return model.Repository{
		ID:            id,
		Name:          fullName[len("octocat/"):],
		FullName:      fullName,
		Owner:         makeUser(1, "octocat"),
		DefaultBranch: "main",
		Language:      "Go",
		Stars:         7,
		CreatedAt:     testTime,
		UpdatedAt:     testTime,
		PushedAt:      testTime,
	}
}

func makePR(id, repositoryID int64, number int, state model.PRState) model.PullRequest {
	pr := model.PullRequest{
		ID:           id,
		Number:       number,
		RepositoryID: repositoryID,
		Title:        fmt.Sprintf("PR #%d", number),
		Body:         "body",
		State:        state,
		Author:       makeUser(2, "alice"),
		BaseBranch:   "main",
		HeadBranch:   "feature",
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}

	switch state {
	case model.PRStateClosed:
		closedAt := testTime.Add(time.Hour)
		pr.ClosedAt = &closedAt
	case model.PRStateMerged:
		closedAt := testTime.Add(time.Hour)
		mergedBy := makeUser(3, "bob")
		pr.ClosedAt = &closedAt
		pr.MergedAt = &closedAt
		pr.MergedBy = &mergedBy
	}

	return pr
}

func makeReview(id, pullRequestID int64, state model.ReviewState) model.Review {
	return model.Review{
		ID:            id,
		PullRequestID: pullRequestID,
		Author:        makeUser(3, "bob"),
		State:         state,
		Body:          "looks reasonable",
		CommitID:      "abc123",
		SubmittedAt:   testTime,
	}
}

func makeIssueComment(id, pullRequestID int64, body string) model.Comment {
	return model.Comment{
		ID:            id,
		PullRequestID: pullRequestID,
		Type:          model.CommentTypeIssue,
		Author:        makeUser(2, "alice"),
		Body:          body,
		CreatedAt:     testTime,
		UpdatedAt:     testTime,
	}
}

func makeReviewComment(id, pullRequestID, reviewID int64, path string, line int) model.Comment {
	return model.Comment{
		ID:            id,
		PullRequestID: pullRequestID,
		ReviewID:      &reviewID,
		Type:          model.CommentTypeReview,
		Author:        makeUser(3, "bob"),
		Body:          "inline note",
		Path:          path,
		Line:          line,
		DiffHunk:      "@@ -1 +1 @@",
		CommitID:      "abc123",
		CreatedAt:     testTime,
		UpdatedAt:     testTime,
	}
}

// seedRepo inserts a repository so dependent rows satisfy foreign keys.
func seedRepo(t *testing.T, db *DB, repo model.Repository) {
	t.Helper()
	require.NoError(t, NewRepositoryRepo(db).ReplaceAll(context.Background(), []model.Repository{repo}))
}

// seedPR inserts a pull request under an existing repository.
func seedPR(t *testing.T, db *DB, pr model.PullRequest) {
	t.Helper()
	require.NoError(t, NewPullRequestRepo(db).ReplaceForRepository(context.Background(), pr.RepositoryID, []model.PullRequest{pr}))
}
