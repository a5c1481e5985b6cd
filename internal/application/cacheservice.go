package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// ReadOptions control how a cache read balances freshness against
// availability.
type ReadOptions struct {
	// ForceRefresh bypasses the freshness window and always syncs first.
	ForceRefresh bool

	// AllowStale serves locally stored data when a needed sync fails with a
	// retryable error, instead of propagating it.
	AllowStale bool
}

// Cached wraps a read result with its staleness disposition. Stale is set
// only when a sync was needed, failed, and AllowStale let the read proceed;
// SyncErr then carries the failure for callers that want to surface it.
type Cached[T any] struct {
	Value   []T
	Stale   bool
	SyncErr error
}

// CacheService answers reads from the local store, triggering a scope sync
// first whenever the scope is stale or the caller forces a refresh.
type CacheService struct {
	sync     *SyncService
	repos    driven.RepositoryStore
	prs      driven.PullRequestStore
	reviews  driven.ReviewStore
	comments driven.CommentStore
	states   driven.SyncStateStore
}

// NewCacheService creates a CacheService backed by the given sync engine and
// stores.
func NewCacheService(
	sync *SyncService,
	repos driven.RepositoryStore,
	prs driven.PullRequestStore,
	reviews driven.ReviewStore,
	comments driven.CommentStore,
	states driven.SyncStateStore,
) *CacheService {
	return &CacheService{
		sync:     sync,
		repos:    repos,
		prs:      prs,
		reviews:  reviews,
		comments: comments,
		states:   states,
	}
}

// Repositories returns the tracked repository list, syncing first if stale.
func (c *CacheService) Repositories(ctx context.Context, opts ReadOptions) (Cached[model.Repository], error) {
	stale, syncErr := c.refresh(ctx, model.RepositoriesScope(), opts, func() error {
		_, err := c.sync.SyncRepositories(ctx, opts.ForceRefresh)
		return err
	})
	if syncErr != nil && !stale {
		return Cached[model.Repository]{}, syncErr
	}

	repos, err := c.repos.ListAll(ctx)
	if err != nil {
		return Cached[model.Repository]{}, err
	}

	return Cached[model.Repository]{Value: repos, Stale: stale, SyncErr: syncErr}, nil
}

// PullRequests returns one repository's pull requests, filtered in memory
// after the store read.
func (c *CacheService) PullRequests(ctx context.Context, repositoryID int64, filter model.PullRequestFilter, opts ReadOptions) (Cached[model.PullRequest], error) {
	stale, syncErr := c.refresh(ctx, model.PullRequestsScope(repositoryID), opts, func() error {
		_, err := c.sync.SyncPullRequests(ctx, repositoryID, opts.ForceRefresh)
		return err
	})
	if syncErr != nil && !stale {
		return Cached[model.PullRequest]{}, syncErr
	}

	prs, err := c.prs.GetByRepository(ctx, repositoryID)
	if err != nil {
		return Cached[model.PullRequest]{}, err
	}

	return Cached[model.PullRequest]{Value: model.FilterPullRequests(prs, filter), Stale: stale, SyncErr: syncErr}, nil
}

// Reviews returns one pull request's reviews.
func (c *CacheService) Reviews(ctx context.Context, pullRequestID int64, opts ReadOptions) (Cached[model.Review], error) {
	stale, syncErr := c.refresh(ctx, model.ReviewsScope(pullRequestID), opts, func() error {
		_, err := c.sync.SyncReviews(ctx, pullRequestID, opts.ForceRefresh)
		return err
	})
	if syncErr != nil && !stale {
		return Cached[model.Review]{}, syncErr
	}

	reviews, err := c.reviews.GetByPullRequest(ctx, pullRequestID)
	if err != nil {
		return Cached[model.Review]{}, err
	}

	return Cached[model.Review]{Value: reviews, Stale: stale, SyncErr: syncErr}, nil
}

// Comments returns one pull request's comments, filtered in memory after the
// store read.
func (c *CacheService) Comments(ctx context.Context, pullRequestID int64, filter model.CommentFilter, opts ReadOptions) (Cached[model.Comment], error) {
	stale, syncErr := c.refresh(ctx, model.CommentsScope(pullRequestID), opts, func() error {
		_, err := c.sync.SyncComments(ctx, pullRequestID, opts.ForceRefresh)
		return err
	})
	if syncErr != nil && !stale {
		return Cached[model.Comment]{}, syncErr
	}

	comments, err := c.comments.GetByPullRequest(ctx, pullRequestID)
	if err != nil {
		return Cached[model.Comment]{}, err
	}

	return Cached[model.Comment]{Value: model.FilterComments(comments, filter), Stale: stale, SyncErr: syncErr}, nil
}

// EvictRepository removes a repository and its dependent rows from the local
// store and drops the pull-request scope's sync state so a later track picks
// it up fresh.
func (c *CacheService) EvictRepository(ctx context.Context, repositoryID int64) error {
	if err := c.repos.Remove(ctx, repositoryID); err != nil {
		return err
	}
	if err := c.states.Delete(ctx, model.PullRequestsScope(repositoryID)); err != nil {
		slog.Warn("dropping sync state of evicted repository failed", "repo", repositoryID, "error", err)
	}
	return nil
}

// refresh syncs a scope when the read requires it. The sync layer applies
// the freshness window itself, so a non-forced call inside the TTL is cheap.
// Only retryable failures (rate limits, transient faults) qualify for
// stale-serving, and only for a scope that has completed a sync before: a
// cold scope has no snapshot to serve, and a missing entity or a bad token
// propagates regardless of AllowStale.
func (c *CacheService) refresh(ctx context.Context, scope model.Scope, opts ReadOptions, sync func() error) (stale bool, err error) {
	err = sync()
	if err == nil {
		return false, nil
	}

	if opts.AllowStale && model.IsRetryable(err) {
		prior, stateErr := c.states.Get(ctx, scope)
		if stateErr == nil && prior != nil {
			slog.Warn("serving stale data after sync failure", "scope", scope.String(), "error", err)
			return true, err
		}
	}

	return false, err
}
