package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/prmirror/internal/application"
	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps a domain error onto an HTTP status. Rate-limited
// responses carry a Retry-After hint in seconds.
func (h *Handler) writeDomainError(w http.ResponseWriter, op string, err error) {
	var rateLimited *model.RateLimitedError
	var conflict *model.ConflictError

	switch {
	case errors.Is(err, model.ErrEmptySelection):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrUnauthorized):
		writeError(w, http.StatusBadGateway, "upstream rejected the configured credentials")
	case errors.As(err, &rateLimited):
		seconds := int(rateLimited.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeError(w, http.StatusTooManyRequests, "upstream rate limit exceeded")
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, err.Error())
	case model.IsCancelled(err):
		// Client went away; any status is fine, nobody reads it.
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		h.logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream temporarily unavailable")
	}
}

func errInvalidTimestamp(param string) error {
	return fmt.Errorf("invalid %s: expected RFC 3339 timestamp", param)
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ListResponse wraps a list endpoint's items with its staleness disposition.
// Stale is true when a needed refresh failed and locally stored data was
// served instead.
type ListResponse[T any] struct {
	Items []T  `json:"items"`
	Stale bool `json:"stale"`
}

// UserResponse is the JSON representation of a user snapshot.
type UserResponse struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// RepositoryResponse is the JSON representation of a mirrored repository.
type RepositoryResponse struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	FullName      string       `json:"full_name"`
	Owner         UserResponse `json:"owner"`
	Private       bool         `json:"private"`
	DefaultBranch string       `json:"default_branch"`
	Language      string       `json:"language"`
	Stars         int          `json:"stars"`
	Forks         int          `json:"forks"`
	OpenIssues    int          `json:"open_issues"`
	PushedAt      string       `json:"pushed_at"`
	UpdatedAt     string       `json:"updated_at"`
}

// PullRequestResponse is the JSON representation of a pull request snapshot.
type PullRequestResponse struct {
	ID           int64         `json:"id"`
	Number       int           `json:"number"`
	RepositoryID int64         `json:"repository_id"`
	Title        string        `json:"title"`
	State        string        `json:"state"`
	Author       UserResponse  `json:"author"`
	BaseBranch   string        `json:"base_branch"`
	HeadBranch   string        `json:"head_branch"`
	IsDraft      bool          `json:"is_draft"`
	Additions    int           `json:"additions"`
	Deletions    int           `json:"deletions"`
	ChangedFiles int           `json:"changed_files"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
	ClosedAt     string        `json:"closed_at,omitempty"`
	MergedAt     string        `json:"merged_at,omitempty"`
	MergedBy     *UserResponse `json:"merged_by,omitempty"`
}

// ReviewResponse is the JSON representation of a review.
type ReviewResponse struct {
	ID            int64        `json:"id"`
	PullRequestID int64        `json:"pull_request_id"`
	Author        UserResponse `json:"author"`
	State         string       `json:"state"`
	Body          string       `json:"body"`
	CommitID      string       `json:"commit_id"`
	SubmittedAt   string       `json:"submitted_at"`
}

// CommentResponse is the JSON representation of a comment.
type CommentResponse struct {
	ID            int64        `json:"id"`
	PullRequestID int64        `json:"pull_request_id"`
	ReviewID      *int64       `json:"review_id,omitempty"`
	Type          string       `json:"type"`
	Author        UserResponse `json:"author"`
	Body          string       `json:"body"`
	Path          string       `json:"path,omitempty"`
	Line          int          `json:"line,omitempty"`
	InReplyToID   *int64       `json:"in_reply_to_id,omitempty"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
}

// SyncRequest selects what to refresh. An empty entity means everything.
type SyncRequest struct {
	Entity string `json:"entity"`
	ID     int64  `json:"id"`
}

// SyncResultResponse is the JSON representation of one scope sync outcome.
type SyncResultResponse struct {
	Scope    string `json:"scope"`
	Total    int    `json:"total"`
	Added    int    `json:"added"`
	Updated  int    `json:"updated"`
	Removed  int    `json:"removed"`
	Rejected int    `json:"rejected"`
}

// SyncSummaryResponse is the JSON representation of a full sync walk.
type SyncSummaryResponse struct {
	Repositories int `json:"repositories"`
	PullRequests int `json:"pull_requests"`
	Reviews      int `json:"reviews"`
	Comments     int `json:"comments"`
	Errors       int `json:"errors"`
}

// DuplicateRequest is the JSON body for the comment duplication endpoint.
type DuplicateRequest struct {
	SourceCommentIDs []int64 `json:"source_comment_ids"`
	Summary          string  `json:"summary"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{ID: u.ID, Login: u.Login}
}

func toRepositoryResponse(repo model.Repository) RepositoryResponse {
	return RepositoryResponse{
		ID:            repo.ID,
		Name:          repo.Name,
		FullName:      repo.FullName,
		Owner:         toUserResponse(repo.Owner),
		Private:       repo.Private,
		DefaultBranch: repo.DefaultBranch,
		Language:      repo.Language,
		Stars:         repo.Stars,
		Forks:         repo.Forks,
		OpenIssues:    repo.OpenIssues,
		PushedAt:      repo.PushedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     repo.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toPullRequestResponse(pr model.PullRequest) PullRequestResponse {
	resp := PullRequestResponse{
		ID:           pr.ID,
		Number:       pr.Number,
		RepositoryID: pr.RepositoryID,
		Title:        pr.Title,
		State:        string(pr.State),
		Author:       toUserResponse(pr.Author),
		BaseBranch:   pr.BaseBranch,
		HeadBranch:   pr.HeadBranch,
		IsDraft:      pr.IsDraft,
		Additions:    pr.Additions,
		Deletions:    pr.Deletions,
		ChangedFiles: pr.ChangedFiles,
		CreatedAt:    pr.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    pr.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if pr.ClosedAt != nil {
		resp.ClosedAt = pr.ClosedAt.UTC().Format(time.RFC3339)
	}
	if pr.MergedAt != nil {
		resp.MergedAt = pr.MergedAt.UTC().Format(time.RFC3339)
	}
	if pr.MergedBy != nil {
		mergedBy := toUserResponse(*pr.MergedBy)
		resp.MergedBy = &mergedBy
	}

	return resp
}

func toReviewResponse(r model.Review) ReviewResponse {
	return ReviewResponse{
		ID:            r.ID,
		PullRequestID: r.PullRequestID,
		Author:        toUserResponse(r.Author),
		State:         string(r.State),
		Body:          r.Body,
		CommitID:      r.CommitID,
		SubmittedAt:   r.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

func toCommentResponse(c model.Comment) CommentResponse {
	return CommentResponse{
		ID:            c.ID,
		PullRequestID: c.PullRequestID,
		ReviewID:      c.ReviewID,
		Type:          string(c.Type),
		Author:        toUserResponse(c.Author),
		Body:          c.Body,
		Path:          c.Path,
		Line:          c.Line,
		InReplyToID:   c.InReplyToID,
		CreatedAt:     c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toSyncResultResponse(res application.SyncResult) SyncResultResponse {
	return SyncResultResponse{
		Scope:    res.Scope.String(),
		Total:    res.Total,
		Added:    res.Added,
		Updated:  res.Updated,
		Removed:  res.Removed,
		Rejected: res.Rejected,
	}
}

func toSyncSummaryResponse(s application.SyncSummary) SyncSummaryResponse {
	return SyncSummaryResponse{
		Repositories: s.Repositories,
		PullRequests: s.PullRequests,
		Reviews:      s.Reviews,
		Comments:     s.Comments,
		Errors:       s.Errors,
	}
}
