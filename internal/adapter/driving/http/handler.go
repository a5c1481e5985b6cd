// Package httphandler is the HTTP driving adapter serving the REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/prmirror/internal/application"
	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// Handler exposes the cache, sync, and duplication services over HTTP.
type Handler struct {
	cache  *application.CacheService
	sync   *application.SyncService
	dup    *application.DuplicationService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	cache *application.CacheService,
	sync *application.SyncService,
	dup *application.DuplicationService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		cache:  cache,
		sync:   sync,
		dup:    dup,
		logger: logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/repositories", h.ListRepositories)
	mux.HandleFunc("DELETE /api/v1/repositories/{id}", h.EvictRepository)
	mux.HandleFunc("GET /api/v1/repositories/{id}/pulls", h.ListPullRequests)
	mux.HandleFunc("GET /api/v1/pulls/{id}/reviews", h.ListReviews)
	mux.HandleFunc("GET /api/v1/pulls/{id}/comments", h.ListComments)
	mux.HandleFunc("POST /api/v1/pulls/{id}/duplicate", h.DuplicateComments)
	mux.HandleFunc("POST /api/v1/sync", h.TriggerSync)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListRepositories returns the tracked repositories, refreshed if stale.
func (h *Handler) ListRepositories(w http.ResponseWriter, r *http.Request) {
	cached, err := h.cache.Repositories(r.Context(), readOptions(r))
	if err != nil {
		h.writeDomainError(w, "list repositories", err)
		return
	}

	items := make([]RepositoryResponse, 0, len(cached.Value))
	for _, repo := range cached.Value {
		items = append(items, toRepositoryResponse(repo))
	}

	writeJSON(w, http.StatusOK, ListResponse[RepositoryResponse]{Items: items, Stale: cached.Stale})
}

// EvictRepository removes a repository and its dependents from the local
// store.
func (h *Handler) EvictRepository(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.cache.EvictRepository(r.Context(), id); err != nil {
		h.writeDomainError(w, "evict repository", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPullRequests returns one repository's pull requests, filtered by query
// parameters.
func (h *Handler) ListPullRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := model.PullRequestFilter{
		State:         model.PRState(q.Get("state")),
		Author:        q.Get("author"),
		TitleContains: q.Get("title"),
		IncludeDrafts: q.Get("drafts") != "exclude",
		ExcludeDrafts: q.Get("drafts") == "exclude",
	}

	cached, err := h.cache.PullRequests(r.Context(), id, filter, readOptions(r))
	if err != nil {
		h.writeDomainError(w, "list pull requests", err)
		return
	}

	items := make([]PullRequestResponse, 0, len(cached.Value))
	for _, pr := range cached.Value {
		items = append(items, toPullRequestResponse(pr))
	}

	writeJSON(w, http.StatusOK, ListResponse[PullRequestResponse]{Items: items, Stale: cached.Stale})
}

// ListReviews returns one pull request's reviews.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	cached, err := h.cache.Reviews(r.Context(), id, readOptions(r))
	if err != nil {
		h.writeDomainError(w, "list reviews", err)
		return
	}

	items := make([]ReviewResponse, 0, len(cached.Value))
	for _, review := range cached.Value {
		items = append(items, toReviewResponse(review))
	}

	writeJSON(w, http.StatusOK, ListResponse[ReviewResponse]{Items: items, Stale: cached.Stale})
}

// ListComments returns one pull request's comments, filtered by query
// parameters.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	filter, err := commentFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cached, err := h.cache.Comments(r.Context(), id, filter, readOptions(r))
	if err != nil {
		h.writeDomainError(w, "list comments", err)
		return
	}

	items := make([]CommentResponse, 0, len(cached.Value))
	for _, comment := range cached.Value {
		items = append(items, toCommentResponse(comment))
	}

	writeJSON(w, http.StatusOK, ListResponse[CommentResponse]{Items: items, Stale: cached.Stale})
}

// DuplicateComments replays a selection of stored comments onto the target
// pull request as a new review.
func (h *Handler) DuplicateComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req DuplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.dup.DuplicateComments(r.Context(), req.SourceCommentIDs, id, req.Summary)
	if err != nil {
		h.writeDomainError(w, "duplicate comments", err)
		return
	}

	writeJSON(w, http.StatusCreated, toReviewResponse(*review))
}

// TriggerSync forces an immediate refresh. With a scope in the body only
// that scope is refreshed; an empty body refreshes everything.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Entity == "" {
		summary, err := h.sync.SyncAll(r.Context(), true)
		if err != nil {
			h.writeDomainError(w, "sync all", err)
			return
		}
		writeJSON(w, http.StatusOK, toSyncSummaryResponse(summary))
		return
	}

	res, err := h.sync.ForceSync(r.Context(), model.Scope{Entity: model.EntityType(req.Entity), ID: req.ID})
	if err != nil {
		h.writeDomainError(w, "sync scope", err)
		return
	}

	writeJSON(w, http.StatusOK, toSyncResultResponse(res))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// pathID parses the {id} path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// readOptions derives cache read options from query parameters.
func readOptions(r *http.Request) application.ReadOptions {
	q := r.URL.Query()
	return application.ReadOptions{
		ForceRefresh: q.Get("force") == "true",
		AllowStale:   q.Get("allow_stale") != "false",
	}
}

// commentFilterFromQuery builds a comment filter from query parameters.
// since/until accept RFC 3339 timestamps.
func commentFilterFromQuery(r *http.Request) (model.CommentFilter, error) {
	q := r.URL.Query()
	filter := model.CommentFilter{
		Author:       q.Get("author"),
		Type:         model.CommentType(q.Get("type")),
		Path:         q.Get("path"),
		BodyContains: q.Get("body"),
	}

	if raw := q.Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return model.CommentFilter{}, errInvalidTimestamp("since")
		}
		filter.Since = t
	}

	if raw := q.Get("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return model.CommentFilter{}, errInvalidTimestamp("until")
		}
		filter.Until = t
	}

	return filter, nil
}
