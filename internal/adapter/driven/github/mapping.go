package github

import (
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// mapUser converts a go-github User to a domain model User. It uses GetXxx()
// helper methods exclusively to avoid nil pointer panics.
func mapUser(u *gh.User) model.User {
	return model.User{
		ID:        u.GetID(),
		Login:     u.GetLogin(),
		Name:      u.GetName(),
		Email:     u.GetEmail(),
		AvatarURL: u.GetAvatarURL(),
		Bio:       u.GetBio(),
		CreatedAt: u.GetCreatedAt().Time,
		UpdatedAt: u.GetUpdatedAt().Time,
	}
}

// mapRepository converts a go-github Repository to a domain model Repository.
func mapRepository(repo *gh.Repository) model.Repository {
	return model.Repository{
		ID:            repo.GetID(),
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		Owner:         mapUser(repo.GetOwner()),
		Private:       repo.GetPrivate(),
		DefaultBranch: repo.GetDefaultBranch(),
		Language:      repo.GetLanguage(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		CreatedAt:     repo.GetCreatedAt().Time,
		UpdatedAt:     repo.GetUpdatedAt().Time,
		PushedAt:      repo.GetPushedAt().Time,
	}
}

// mapPullRequest converts a go-github PullRequest to a domain model
// PullRequest. Merged state wins over closed: GitHub reports merged PRs with
// state "closed" plus a merged_at timestamp.
func mapPullRequest(pr *gh.PullRequest, repositoryID int64) model.PullRequest {
	state := model.PRStateOpen
	if !pr.GetMergedAt().IsZero() {
		state = model.PRStateMerged
	} else if pr.GetState() == "closed" {
		state = model.PRStateClosed
	}

	mapped := model.PullRequest{
		ID:           pr.GetID(),
		Number:       pr.GetNumber(),
		RepositoryID: repositoryID,
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		State:        state,
		Author:       mapUser(pr.GetUser()),
		BaseBranch:   pr.GetBase().GetRef(),
		HeadBranch:   pr.GetHead().GetRef(),
		IsDraft:      pr.GetDraft(),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
		CreatedAt:    pr.GetCreatedAt().Time,
		UpdatedAt:    pr.GetUpdatedAt().Time,
	}

	if closedAt := pr.GetClosedAt().Time; !closedAt.IsZero() {
		mapped.ClosedAt = &closedAt
	}
	if mergedAt := pr.GetMergedAt().Time; !mergedAt.IsZero() {
		mapped.MergedAt = &mergedAt
	}
	if mb := pr.GetMergedBy(); mb != nil {
		user := mapUser(mb)
		mapped.MergedBy = &user
	}

	return mapped
}

// mapReview converts a go-github PullRequestReview to a domain model Review.
func mapReview(r *gh.PullRequestReview, pullRequestID int64) model.Review {
	return model.Review{
		ID:            r.GetID(),
		PullRequestID: pullRequestID,
		Author:        mapUser(r.GetUser()),
		State:         model.ReviewState(strings.ToLower(r.GetState())),
		Body:          r.GetBody(),
		CommitID:      r.GetCommitID(),
		SubmittedAt:   r.GetSubmittedAt().Time,
	}
}

// mapReviewComment converts a go-github PullRequestComment (inline code
// comment) to a domain model Comment of type review.
func mapReviewComment(c *gh.PullRequestComment, pullRequestID int64) model.Comment {
	var reviewID *int64
	if c.PullRequestReviewID != nil {
		val := c.GetPullRequestReviewID()
		reviewID = &val
	}

	var inReplyTo *int64
	if c.InReplyTo != nil {
		val := c.GetInReplyTo()
		inReplyTo = &val
	}

	return model.Comment{
		ID:            c.GetID(),
		PullRequestID: pullRequestID,
		ReviewID:      reviewID,
		Type:          model.CommentTypeReview,
		Author:        mapUser(c.GetUser()),
		Body:          c.GetBody(),
		Path:          c.GetPath(),
		Line:          c.GetLine(),
		Position:      c.GetPosition(),
		DiffHunk:      c.GetDiffHunk(),
		CommitID:      c.GetCommitID(),
		InReplyToID:   inReplyTo,
		CreatedAt:     c.GetCreatedAt().Time,
		UpdatedAt:     c.GetUpdatedAt().Time,
	}
}

// mapIssueComment converts a go-github IssueComment (PR-level discussion)
// to a domain model Comment of type issue.
func mapIssueComment(c *gh.IssueComment, pullRequestID int64) model.Comment {
	return model.Comment{
		ID:            c.GetID(),
		PullRequestID: pullRequestID,
		Type:          model.CommentTypeIssue,
		Author:        mapUser(c.GetUser()),
		Body:          c.GetBody(),
		CreatedAt:     c.GetCreatedAt().Time,
		UpdatedAt:     c.GetUpdatedAt().Time,
	}
}
