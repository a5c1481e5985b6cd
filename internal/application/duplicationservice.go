package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// DuplicationService replays a selection of stored comments onto another
// pull request by posting them as a single new review. The local store is
// updated optimistically; the affected scopes are invalidated so the next
// sync reconciles against the remote's authoritative state.
type DuplicationService struct {
	remote   driven.RemoteDataSource
	repos    driven.RepositoryStore
	prs      driven.PullRequestStore
	reviews  driven.ReviewStore
	comments driven.CommentStore
	states   driven.SyncStateStore
}

// NewDuplicationService creates a DuplicationService.
func NewDuplicationService(
	remote driven.RemoteDataSource,
	repos driven.RepositoryStore,
	prs driven.PullRequestStore,
	reviews driven.ReviewStore,
	comments driven.CommentStore,
	states driven.SyncStateStore,
) *DuplicationService {
	return &DuplicationService{
		remote:   remote,
		repos:    repos,
		prs:      prs,
		reviews:  reviews,
		comments: comments,
		states:   states,
	}
}

// DuplicateComments posts the selected stored comments onto the target pull
// request as one new review. Anchored comments become inline review
// comments; comments without a file/line anchor are folded into the review
// summary. The created review is returned after the optimistic local update.
//
// The whole batch is validated before any remote write: an empty or partly
// unresolvable selection, or an unknown target, fails without side effects.
func (d *DuplicationService) DuplicateComments(ctx context.Context, sourceCommentIDs []int64, targetPullRequestID int64, summaryBody string) (*model.Review, error) {
	ids := dedupeIDs(sourceCommentIDs)
	if len(ids) == 0 {
		return nil, model.ErrEmptySelection
	}

	sources, err := d.comments.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(sources) != len(ids) {
		missing := missingIDs(ids, sources)
		return nil, fmt.Errorf("source comments %v: %w", missing, model.ErrNotFound)
	}

	target, err := d.prs.GetByID(ctx, targetPullRequestID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("target pull request %d: %w", targetPullRequestID, model.ErrTargetNotFound)
	}

	repo, err := d.repos.GetByID(ctx, target.RepositoryID)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, fmt.Errorf("repository %d of target pull request %d: %w", target.RepositoryID, targetPullRequestID, model.ErrNotFound)
	}

	// Stable order keeps the posted review deterministic for a given
	// selection regardless of store iteration order.
	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })

	drafts, summary := splitSelection(sources, summaryBody)

	review, created, err := d.remote.CreateReviewWithComments(ctx, targetPullRequestID, repo.FullName, target.Number, summary, drafts)
	if err != nil {
		return nil, err
	}

	d.persistOptimistic(ctx, targetPullRequestID, review, created)
	d.invalidateTarget(ctx, targetPullRequestID)

	slog.Info("duplicated comments",
		"sources", len(sources),
		"inline", len(drafts),
		"target_pr", target.Number,
		"target_repo", repo.FullName,
		"review", review.ID,
	)

	return review, nil
}

// splitSelection partitions the selection into inline drafts and a summary.
// Anchorless bodies are appended to the caller's summary as quoted blocks so
// nothing from the selection is silently dropped.
func splitSelection(sources []model.Comment, summaryBody string) ([]driven.CommentDraft, string) {
	var drafts []driven.CommentDraft
	var folded []string

	for _, src := range sources {
		if src.HasAnchor() {
			line := src.Line
			if line == 0 {
				line = src.Position
			}
			drafts = append(drafts, driven.CommentDraft{
				Path: src.Path,
				Line: line,
				Body: src.Body,
			})
			continue
		}
		folded = append(folded, "> "+strings.ReplaceAll(src.Body, "\n", "\n> "))
	}

	summary := strings.TrimSpace(summaryBody)
	if len(folded) > 0 {
		if summary != "" {
			summary += "\n\n"
		}
		summary += strings.Join(folded, "\n\n")
	}

	return drafts, summary
}

// persistOptimistic appends the created review and comments to the target's
// stored scopes. Failures only cost read-your-write visibility until the
// next sync, so they are logged rather than returned.
func (d *DuplicationService) persistOptimistic(ctx context.Context, targetPullRequestID int64, review *model.Review, created []model.Comment) {
	ctx = context.WithoutCancel(ctx)

	stored, err := d.reviews.GetByPullRequest(ctx, targetPullRequestID)
	if err == nil {
		err = d.reviews.ReplaceForPullRequest(ctx, targetPullRequestID, append(stored, *review))
	}
	if err != nil {
		slog.Warn("optimistic review persist failed", "pr", targetPullRequestID, "error", err)
		return
	}

	if len(created) == 0 {
		return
	}

	comments, err := d.comments.GetByPullRequest(ctx, targetPullRequestID)
	if err == nil {
		err = d.comments.ReplaceForPullRequest(ctx, targetPullRequestID, append(comments, created...))
	}
	if err != nil {
		slog.Warn("optimistic comment persist failed", "pr", targetPullRequestID, "error", err)
	}
}

// invalidateTarget drops the sync state of the target's review and comment
// scopes. The next read of either scope then reconciles the optimistic rows
// against the remote.
func (d *DuplicationService) invalidateTarget(ctx context.Context, targetPullRequestID int64) {
	ctx = context.WithoutCancel(ctx)

	for _, scope := range []model.Scope{
		model.ReviewsScope(targetPullRequestID),
		model.CommentsScope(targetPullRequestID),
	} {
		if err := d.states.Delete(ctx, scope); err != nil {
			slog.Warn("invalidating scope failed", "scope", scope.String(), "error", err)
		}
	}
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func missingIDs(wanted []int64, found []model.Comment) []int64 {
	have := make(map[int64]bool, len(found))
	for _, c := range found {
		have[c.ID] = true
	}
	var missing []int64
	for _, id := range wanted {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
