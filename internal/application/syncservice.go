// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// SyncConfig tunes the sync engine.
type SyncConfig struct {
	// TTL is the freshness window; a scope synced within it is not fetched
	// again unless forced.
	TTL time.Duration

	// MaxRetries bounds the additional attempts after a failed remote fetch.
	MaxRetries uint64

	// MaxConcurrentRemoteCalls bounds in-flight remote fetches across all
	// scopes, to respect rate limits.
	MaxConcurrentRemoteCalls int64

	// WalkConcurrency bounds how many repositories SyncAll works through at
	// once.
	WalkConcurrency int

	// Interval is the cadence of the background Run loop. Zero disables it.
	Interval time.Duration
}

func (c SyncConfig) withDefaults() SyncConfig {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.MaxConcurrentRemoteCalls <= 0 {
		c.MaxConcurrentRemoteCalls = 4
	}
	if c.WalkConcurrency <= 0 {
		c.WalkConcurrency = 2
	}
	return c
}

// SyncResult reports the outcome of one scope sync.
type SyncResult struct {
	Scope    model.Scope
	Total    int // Entities now stored for the scope.
	Added    int
	Updated  int
	Removed  int
	Rejected int // Entities dropped for violating invariants.
}

// SyncSummary aggregates a full SyncAll walk.
type SyncSummary struct {
	Repositories int
	PullRequests int
	Reviews      int
	Comments     int
	Errors       int // Leaf scopes that failed after retries.
}

// SyncService drives fetch-reconcile-persist cycles per scope. Concurrent
// requests for the same scope join a single in-flight operation; different
// scopes sync independently under a shared remote-call budget.
type SyncService struct {
	remote   driven.RemoteDataSource
	repos    driven.RepositoryStore
	prs      driven.PullRequestStore
	reviews  driven.ReviewStore
	comments driven.CommentStore
	users    driven.UserStore
	states   driven.SyncStateStore

	cfg      SyncConfig
	sem      *semaphore.Weighted
	group    singleflight.Group
	progress progressHub
}

// NewSyncService creates a SyncService with all required dependencies.
func NewSyncService(
	remote driven.RemoteDataSource,
	repos driven.RepositoryStore,
	prs driven.PullRequestStore,
	reviews driven.ReviewStore,
	comments driven.CommentStore,
	users driven.UserStore,
	states driven.SyncStateStore,
	cfg SyncConfig,
) *SyncService {
	cfg = cfg.withDefaults()
	return &SyncService{
		remote:   remote,
		repos:    repos,
		prs:      prs,
		reviews:  reviews,
		comments: comments,
		users:    users,
		states:   states,
		cfg:      cfg,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrentRemoteCalls),
	}
}

// Subscribe registers a progress listener. Events are delivered best-effort;
// the returned cancel func unregisters the listener.
func (s *SyncService) Subscribe() (<-chan ProgressEvent, func()) {
	return s.progress.Subscribe()
}

// SyncRepositories synchronizes the global repository list. Within the TTL
// window it is a no-op unless force is set.
func (s *SyncService) SyncRepositories(ctx context.Context, force bool) (SyncResult, error) {
	scope := model.RepositoriesScope()
	return s.joinScope(ctx, scope, func() (SyncResult, error) {
		return s.syncRepositories(ctx, scope, force)
	})
}

// SyncPullRequests synchronizes one repository's pull requests.
func (s *SyncService) SyncPullRequests(ctx context.Context, repositoryID int64, force bool) (SyncResult, error) {
	scope := model.PullRequestsScope(repositoryID)
	return s.joinScope(ctx, scope, func() (SyncResult, error) {
		return s.syncPullRequests(ctx, scope, repositoryID, force)
	})
}

// SyncReviews synchronizes one pull request's reviews.
func (s *SyncService) SyncReviews(ctx context.Context, pullRequestID int64, force bool) (SyncResult, error) {
	scope := model.ReviewsScope(pullRequestID)
	return s.joinScope(ctx, scope, func() (SyncResult, error) {
		return s.syncReviews(ctx, scope, pullRequestID, force)
	})
}

// SyncComments synchronizes one pull request's comments. Reviews for the
// same PR are brought up to date first so review-comment back-references can
// be validated against a complete review set.
func (s *SyncService) SyncComments(ctx context.Context, pullRequestID int64, force bool) (SyncResult, error) {
	if _, err := s.SyncReviews(ctx, pullRequestID, false); err != nil {
		return SyncResult{Scope: model.CommentsScope(pullRequestID)}, fmt.Errorf("syncing reviews before comments: %w", err)
	}

	scope := model.CommentsScope(pullRequestID)
	return s.joinScope(ctx, scope, func() (SyncResult, error) {
		return s.syncComments(ctx, scope, pullRequestID, force)
	})
}

// ForceSync triggers an immediate refresh of one scope, bypassing the TTL.
func (s *SyncService) ForceSync(ctx context.Context, scope model.Scope) (SyncResult, error) {
	switch scope.Entity {
	case model.EntityRepositories:
		return s.SyncRepositories(ctx, true)
	case model.EntityPullRequests:
		return s.SyncPullRequests(ctx, scope.ID, true)
	case model.EntityReviews:
		return s.SyncReviews(ctx, scope.ID, true)
	case model.EntityComments:
		return s.SyncComments(ctx, scope.ID, true)
	default:
		return SyncResult{}, fmt.Errorf("unknown sync scope %q", scope.Entity)
	}
}

// SyncAll walks repositories, their pull requests, and each open PR's
// reviews and comments. Leaf failures are counted, logged, and do not abort
// the walk; cancellation stops scheduling further leaves while already
// started leaf syncs finish atomically on their own.
func (s *SyncService) SyncAll(ctx context.Context, force bool) (SyncSummary, error) {
	start := time.Now()
	var summary SyncSummary
	var mu sync.Mutex

	repoRes, err := s.SyncRepositories(ctx, force)
	if err != nil {
		summary.Errors++
		return summary, fmt.Errorf("syncing repositories: %w", err)
	}
	summary.Repositories = repoRes.Total

	repos, err := s.repos.ListAll(ctx)
	if err != nil {
		summary.Errors++
		return summary, err
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.WalkConcurrency)

	for _, repo := range repos {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			prRes, err := s.SyncPullRequests(ctx, repo.ID, force)
			if err != nil {
				if !model.IsCancelled(err) {
					slog.Error("pull request sync failed", "repo", repo.FullName, "error", err)
					mu.Lock()
					summary.Errors++
					mu.Unlock()
				}
				return nil
			}
			mu.Lock()
			summary.PullRequests += prRes.Total
			mu.Unlock()

			prs, err := s.prs.GetByRepository(ctx, repo.ID)
			if err != nil {
				slog.Error("listing stored pull requests failed", "repo", repo.FullName, "error", err)
				mu.Lock()
				summary.Errors++
				mu.Unlock()
				return nil
			}

			for _, pr := range prs {
				if pr.State != model.PRStateOpen || ctx.Err() != nil {
					continue
				}

				revRes, err := s.SyncReviews(ctx, pr.ID, force)
				if err != nil {
					if !model.IsCancelled(err) {
						slog.Error("review sync failed", "repo", repo.FullName, "pr", pr.Number, "error", err)
						mu.Lock()
						summary.Errors++
						mu.Unlock()
					}
					continue
				}

				comRes, err := s.SyncComments(ctx, pr.ID, force)
				if err != nil {
					if !model.IsCancelled(err) {
						slog.Error("comment sync failed", "repo", repo.FullName, "pr", pr.Number, "error", err)
						mu.Lock()
						summary.Errors++
						mu.Unlock()
					}
					continue
				}

				mu.Lock()
				summary.Reviews += revRes.Total
				summary.Comments += comRes.Total
				mu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	slog.Info("sync walk complete",
		"repos", summary.Repositories,
		"pull_requests", summary.PullRequests,
		"reviews", summary.Reviews,
		"comments", summary.Comments,
		"errors", summary.Errors,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return summary, nil
}

// Run executes SyncAll immediately and then on the configured interval until
// the context is canceled. It blocks; run it in a goroutine.
func (s *SyncService) Run(ctx context.Context) {
	if s.cfg.Interval <= 0 {
		slog.Info("background sync disabled")
		return
	}

	if _, err := s.SyncAll(ctx, false); err != nil && !model.IsCancelled(err) {
		slog.Error("initial sync failed", "error", err)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync loop stopped")
			return
		case <-ticker.C:
			if _, err := s.SyncAll(ctx, false); err != nil && !model.IsCancelled(err) {
				slog.Error("sync cycle failed", "error", err)
			}
		}
	}
}

// joinScope funnels concurrent sync requests for one scope into a single
// execution; latecomers await the in-flight result instead of issuing a
// duplicate remote call. A joiner whose own context ends detaches with that
// context's error while the underlying sync keeps running for the others.
func (s *SyncService) joinScope(ctx context.Context, scope model.Scope, fn func() (SyncResult, error)) (SyncResult, error) {
	ch := s.group.DoChan(scope.String(), func() (any, error) {
		return fn()
	})

	select {
	case <-ctx.Done():
		return SyncResult{Scope: scope}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return SyncResult{Scope: scope}, res.Err
		}
		return res.Val.(SyncResult), nil
	}
}

func (s *SyncService) syncRepositories(ctx context.Context, scope model.Scope, force bool) (SyncResult, error) {
	prior, err := s.states.Get(ctx, scope)
	if err != nil {
		return SyncResult{Scope: scope}, err
	}

	if !force && !model.ShouldRefresh(prior, model.FreshnessPolicy{TTL: s.cfg.TTL}, time.Now()) {
		stored, err := s.repos.ListAll(ctx)
		if err != nil {
			return SyncResult{Scope: scope}, err
		}
		return SyncResult{Scope: scope, Total: len(stored)}, nil
	}

	s.publish(scope, PhaseStarted, 0, nil)
	s.markInProgress(ctx, scope, prior)

	fetched, err := fetchRemote(ctx, s, func(ctx context.Context) ([]model.Repository, error) {
		return s.remote.ListRepositories(ctx)
	})
	if err != nil {
		return s.failScope(ctx, scope, prior, err)
	}
	s.publish(scope, PhaseFetched, len(fetched), nil)

	stored, err := s.repos.ListAll(ctx)
	if err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	res := SyncResult{Scope: scope, Total: len(fetched)}
	res.Added, res.Updated, res.Removed = diffByID(repoMeta(stored), repoMeta(fetched))

	owners := make([]model.User, 0, len(fetched))
	for _, repo := range fetched {
		owners = append(owners, repo.Owner)
	}
	if err := s.users.UpsertAll(ctx, dedupeUsers(owners)); err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	if err := s.repos.ReplaceAll(ctx, fetched); err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	return s.completeScope(ctx, scope, res)
}

func (s *SyncService) syncPullRequests(ctx context.Context, scope model.Scope, repositoryID int64, force bool) (SyncResult, error) {
	repo, err := s.repos.GetByID(ctx, repositoryID)
	if err != nil {
		return SyncResult{Scope: scope}, err
	}
	if repo == nil {
		return SyncResult{Scope: scope}, fmt.Errorf("repository %d: %w", repositoryID, model.ErrNotFound)
	}

	prior, err := s.states.Get(ctx, scope)
	if err != nil {
		return SyncResult{Scope: scope}, err
	}

	if !force && !model.ShouldRefresh(prior, model.FreshnessPolicy{TTL: s.cfg.TTL}, time.Now()) {
		stored, err := s.prs.GetByRepository(ctx, repositoryID)
		if err != nil {
			return SyncResult{Scope: scope}, err
		}
		return SyncResult{Scope: scope, Total: len(stored)}, nil
	}

	s.publish(scope, PhaseStarted, 0, nil)
	s.markInProgress(ctx, scope, prior)

	fetched, err := fetchRemote(ctx, s, func(ctx context.Context) ([]model.PullRequest, error) {
		return s.remote.ListPullRequests(ctx, repositoryID, repo.FullName, "")
	})
	if err != nil {
		return s.failScope(ctx, scope, prior, err)
	}
	s.publish(scope, PhaseFetched, len(fetched), nil)

	valid := make([]model.PullRequest, 0, len(fetched))
	users := make([]model.User, 0, len(fetched))
	rejected := 0
	for _, pr := range fetched {
		pr.RepositoryID = repositoryID
		if err := pr.Validate(); err != nil {
			slog.Warn("rejecting pull request snapshot", "repo", repo.FullName, "pr", pr.Number, "error", err)
			rejected++
			continue
		}
		valid = append(valid, pr)
		users = append(users, pr.Author)
		if pr.MergedBy != nil {
			users = append(users, *pr.MergedBy)
		}
	}

	stored, err := s.prs.GetByRepository(ctx, repositoryID)
	if err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	res := SyncResult{Scope: scope, Total: len(valid), Rejected: rejected}
	res.Added, res.Updated, res.Removed = diffByID(prMeta(stored), prMeta(valid))

	if err := s.users.UpsertAll(ctx, dedupeUsers(users)); err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	if err := s.prs.ReplaceForRepository(ctx, repositoryID, valid); err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	return s.completeScope(ctx, scope, res)
}

func (s *SyncService) syncReviews(ctx context.Context, scope model.Scope, pullRequestID int64, force bool) (SyncResult, error) {
	pr, repo, err := s.resolvePR(ctx, pullRequestID)
	if err != nil {
		return SyncResult{Scope: scope}, err
	}

	prior, err := s.states.Get(ctx, scope)
	if err != nil {
		return SyncResult{Scope: scope}, err
	}

	if !force && !model.ShouldRefresh(prior, model.FreshnessPolicy{TTL: s.cfg.TTL}, time.Now()) {
		stored, err := s.reviews.GetByPullRequest(ctx, pullRequestID)
		if err != nil {
			return SyncResult{Scope: scope}, err
		}
		return SyncResult{Scope: scope, Total: len(stored)}, nil
	}

	s.publish(scope, PhaseStarted, 0, nil)
	s.markInProgress(ctx, scope, prior)

	fetched, err := fetchRemote(ctx, s, func(ctx context.Context) ([]model.Review, error) {
		return s.remote.ListReviews(ctx, pullRequestID, repo.FullName, pr.Number)
	})
	if err != nil {
		return s.failScope(ctx, scope, prior, err)
	}
	s.publish(scope, PhaseFetched, len(fetched), nil)

	users := make([]model.User, 0, len(fetched))
	for i := range fetched {
		fetched[i].PullRequestID = pullRequestID
		users = append(users, fetched[i].Author)
	}

	stored, err := s.reviews.GetByPullRequest(ctx, pullRequestID)
	if err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	res := SyncResult{Scope: scope, Total: len(fetched)}
	res.Added, res.Updated, res.Removed = diffByID(reviewMeta(stored), reviewMeta(fetched))

	if err := s.users.UpsertAll(ctx, dedupeUsers(users)); err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	if err := s.reviews.ReplaceForPullRequest(ctx, pullRequestID, fetched); err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	return s.completeScope(ctx, scope, res)
}

func (s *SyncService) syncComments(ctx context.Context, scope model.Scope, pullRequestID int64, force bool) (SyncResult, error) {
	pr, repo, err := s.resolvePR(ctx, pullRequestID)
	if err != nil {
		return SyncResult{Scope: scope}, err
	}

	prior, err := s.states.Get(ctx, scope)
	if err != nil {
		return SyncResult{Scope: scope}, err
	}

	if !force && !model.ShouldRefresh(prior, model.FreshnessPolicy{TTL: s.cfg.TTL}, time.Now()) {
		stored, err := s.comments.GetByPullRequest(ctx, pullRequestID)
		if err != nil {
			return SyncResult{Scope: scope}, err
		}
		return SyncResult{Scope: scope, Total: len(stored)}, nil
	}

	s.publish(scope, PhaseStarted, 0, nil)
	s.markInProgress(ctx, scope, prior)

	fetched, err := fetchRemote(ctx, s, func(ctx context.Context) ([]model.Comment, error) {
		return s.remote.ListComments(ctx, pullRequestID, repo.FullName, pr.Number)
	})
	if err != nil {
		return s.failScope(ctx, scope, prior, err)
	}
	s.publish(scope, PhaseFetched, len(fetched), nil)

	knownReviews, err := s.reviews.GetByPullRequest(ctx, pullRequestID)
	if err != nil {
		return s.failScope(ctx, scope, prior, err)
	}
	reviewIDs := make(map[int64]bool, len(knownReviews))
	for _, review := range knownReviews {
		reviewIDs[review.ID] = true
	}

	valid := make([]model.Comment, 0, len(fetched))
	validIDs := make(map[int64]bool, len(fetched))
	rejected := 0
	for _, c := range fetched {
		c.PullRequestID = pullRequestID
		if err := c.Validate(); err != nil {
			slog.Warn("rejecting comment snapshot", "repo", repo.FullName, "pr", pr.Number, "comment", c.ID, "error", err)
			rejected++
			continue
		}
		if c.ReviewID != nil && !reviewIDs[*c.ReviewID] {
			slog.Warn("rejecting comment with dangling review reference",
				"repo", repo.FullName, "pr", pr.Number, "comment", c.ID, "review", *c.ReviewID)
			rejected++
			continue
		}
		valid = append(valid, c)
		validIDs[c.ID] = true
	}

	// Reply references must land on comments that themselves survive
	// validation, so rejecting a parent cascades through its reply chain.
	for changed := true; changed; {
		changed = false
		kept := valid[:0]
		for _, c := range valid {
			if c.InReplyToID != nil && !validIDs[*c.InReplyToID] {
				slog.Warn("rejecting comment with dangling reply reference",
					"repo", repo.FullName, "pr", pr.Number, "comment", c.ID, "in_reply_to", *c.InReplyToID)
				delete(validIDs, c.ID)
				rejected++
				changed = true
				continue
			}
			kept = append(kept, c)
		}
		valid = kept
	}

	users := make([]model.User, 0, len(valid))
	for _, c := range valid {
		users = append(users, c.Author)
	}

	stored, err := s.comments.GetByPullRequest(ctx, pullRequestID)
	if err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	res := SyncResult{Scope: scope, Total: len(valid), Rejected: rejected}
	res.Added, res.Updated, res.Removed = diffByID(commentMeta(stored), commentMeta(valid))

	if err := s.users.UpsertAll(ctx, dedupeUsers(users)); err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	if err := s.comments.ReplaceForPullRequest(ctx, pullRequestID, valid); err != nil {
		return s.failScope(ctx, scope, prior, err)
	}

	return s.completeScope(ctx, scope, res)
}

// resolvePR loads a pull request and its repository or reports not-found.
func (s *SyncService) resolvePR(ctx context.Context, pullRequestID int64) (*model.PullRequest, *model.Repository, error) {
	pr, err := s.prs.GetByID(ctx, pullRequestID)
	if err != nil {
		return nil, nil, err
	}
	if pr == nil {
		return nil, nil, fmt.Errorf("pull request %d: %w", pullRequestID, model.ErrNotFound)
	}

	repo, err := s.repos.GetByID(ctx, pr.RepositoryID)
	if err != nil {
		return nil, nil, err
	}
	if repo == nil {
		return nil, nil, fmt.Errorf("repository %d of pull request %d: %w", pr.RepositoryID, pullRequestID, model.ErrNotFound)
	}

	return pr, repo, nil
}

// fetchRemote runs one remote list call under the shared concurrency budget
// with retry/backoff.
func fetchRemote[T any](ctx context.Context, s *SyncService, fetch func(context.Context) ([]T, error)) ([]T, error) {
	return retryRemote(ctx, s.cfg.MaxRetries, func() ([]T, error) {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer s.sem.Release(1)
		return fetch(ctx)
	})
}

// markInProgress records the in-progress flag without touching the last
// successful sync time. Bookkeeping failures are logged, not fatal.
func (s *SyncService) markInProgress(ctx context.Context, scope model.Scope, prior *model.SyncState) {
	state := model.SyncState{Scope: scope, InProgress: true}
	if prior != nil {
		state.LastSyncedAt = prior.LastSyncedAt
	}
	if err := s.states.Put(ctx, state); err != nil {
		slog.Warn("marking sync in progress failed", "scope", scope.String(), "error", err)
	}
}

// failScope restores the prior sync state and reports the failure. The
// restore runs detached from ctx so cancellation cannot leave a scope
// flagged in-progress.
func (s *SyncService) failScope(ctx context.Context, scope model.Scope, prior *model.SyncState, err error) (SyncResult, error) {
	restoreCtx := context.WithoutCancel(ctx)
	if prior == nil {
		if delErr := s.states.Delete(restoreCtx, scope); delErr != nil {
			slog.Warn("clearing sync state failed", "scope", scope.String(), "error", delErr)
		}
	} else {
		restored := *prior
		restored.InProgress = false
		if putErr := s.states.Put(restoreCtx, restored); putErr != nil {
			slog.Warn("restoring sync state failed", "scope", scope.String(), "error", putErr)
		}
	}

	s.publish(scope, PhaseFailed, 0, err)
	return SyncResult{Scope: scope}, err
}

// completeScope stamps the scope as freshly synced and emits the final
// progress events.
func (s *SyncService) completeScope(ctx context.Context, scope model.Scope, res SyncResult) (SyncResult, error) {
	state := model.SyncState{Scope: scope, LastSyncedAt: time.Now()}
	if err := s.states.Put(context.WithoutCancel(ctx), state); err != nil {
		return s.failScope(ctx, scope, &state, err)
	}

	s.publish(scope, PhasePersisted, res.Total, nil)
	s.publish(scope, PhaseCompleted, res.Total, nil)

	slog.Debug("scope synced",
		"scope", scope.String(),
		"total", res.Total,
		"added", res.Added,
		"updated", res.Updated,
		"removed", res.Removed,
		"rejected", res.Rejected,
	)

	return res, nil
}

func (s *SyncService) publish(scope model.Scope, phase SyncPhase, count int, err error) {
	s.progress.publish(ProgressEvent{
		Scope: scope,
		Phase: phase,
		Count: count,
		Err:   err,
		At:    time.Now(),
	})
}

// entityMeta is the identity/version pair used for diffing a scope.
type entityMeta struct {
	id        int64
	updatedAt time.Time
}

// diffByID compares the stored and fetched sets of a scope by entity ID,
// using updatedAt to distinguish updates from unchanged rows.
func diffByID(stored, fetched []entityMeta) (added, updated, removed int) {
	old := make(map[int64]time.Time, len(stored))
	for _, m := range stored {
		old[m.id] = m.updatedAt
	}

	seen := make(map[int64]bool, len(fetched))
	for _, m := range fetched {
		seen[m.id] = true
		prev, ok := old[m.id]
		switch {
		case !ok:
			added++
		case !prev.Equal(m.updatedAt):
			updated++
		}
	}

	for id := range old {
		if !seen[id] {
			removed++
		}
	}

	return added, updated, removed
}

func repoMeta(repos []model.Repository) []entityMeta {
	out := make([]entityMeta, len(repos))
	for i, r := range repos {
		out[i] = entityMeta{id: r.ID, updatedAt: r.UpdatedAt}
	}
	return out
}

func prMeta(prs []model.PullRequest) []entityMeta {
	out := make([]entityMeta, len(prs))
	for i, pr := range prs {
		out[i] = entityMeta{id: pr.ID, updatedAt: pr.UpdatedAt}
	}
	return out
}

func reviewMeta(reviews []model.Review) []entityMeta {
	out := make([]entityMeta, len(reviews))
	for i, r := range reviews {
		out[i] = entityMeta{id: r.ID, updatedAt: r.SubmittedAt}
	}
	return out
}

func commentMeta(comments []model.Comment) []entityMeta {
	out := make([]entityMeta, len(comments))
	for i, c := range comments {
		out[i] = entityMeta{id: c.ID, updatedAt: c.UpdatedAt}
	}
	return out
}

// dedupeUsers drops duplicate user snapshots by ID, keeping the first.
// Zero-ID placeholders (e.g. ghost accounts) are skipped entirely.
func dedupeUsers(users []model.User) []model.User {
	seen := make(map[int64]bool, len(users))
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.ID == 0 || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out
}
