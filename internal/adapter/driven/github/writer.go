package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// CreateReviewWithComments posts a new COMMENT-event review containing the
// given inline drafts, then fetches the review's comments so callers get the
// remote-assigned comment IDs back.
func (c *Client) CreateReviewWithComments(ctx context.Context, pullRequestID int64, repoFullName string, number int, summaryBody string, drafts []driven.CommentDraft) (*model.Review, []model.Comment, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, nil, err
	}

	var draftComments []*gh.DraftReviewComment
	for _, d := range drafts {
		draftComments = append(draftComments, &gh.DraftReviewComment{
			Path: gh.Ptr(d.Path),
			Line: gh.Ptr(d.Line),
			Side: gh.Ptr("RIGHT"),
			Body: gh.Ptr(d.Body),
		})
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	created, _, err := c.gh.PullRequests.CreateReview(ctx, owner, repo, number, &gh.PullRequestReviewRequest{
		Event:    gh.Ptr("COMMENT"),
		Body:     gh.Ptr(summaryBody),
		Comments: draftComments,
	})
	if err != nil {
		return nil, nil, classify(fmt.Errorf("creating review on %s#%d: %w", repoFullName, number, err))
	}

	review := mapReview(created, pullRequestID)

	var comments []model.Comment
	opts := &gh.ListOptions{PerPage: 100}
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}

		page, resp, err := c.gh.PullRequests.ListReviewComments(ctx, owner, repo, number, created.GetID(), opts)
		if err != nil {
			return nil, nil, classify(fmt.Errorf("listing comments of review %d on %s#%d: %w", created.GetID(), repoFullName, number, err))
		}

		for _, comment := range page {
			comments = append(comments, mapReviewComment(comment, pullRequestID))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return &review, comments, nil
}
