// Package github implements the RemoteDataSource port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/time/rate"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RemoteDataSource = (*Client)(nil)

// Client implements the driven.RemoteDataSource port using the go-github library.
type Client struct {
	gh      *gh.Client
	limiter *rate.Limiter
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// On top of the transport a client-side token bucket paces outgoing requests
// so that bulk syncs do not burn through the primary rate limit.
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{
		gh:      client,
		limiter: rate.NewLimiter(rate.Limit(3), 6),
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{
		gh:      client,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}, nil
}

// ListRepositories returns every repository visible to the authenticated
// user, following pagination to exhaustion.
func (c *Client) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Sort:        "full_name",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var allRepos []model.Repository

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		repos, resp, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, classify(fmt.Errorf("listing repositories (page %d): %w", opts.Page, err))
		}

		logRateLimit(resp, "repositories", opts.Page, len(repos))

		for _, repo := range repos {
			allRepos = append(allRepos, mapRepository(repo))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if allRepos == nil {
		allRepos = []model.Repository{}
	}

	return allRepos, nil
}

// ListPullRequests returns the pull requests of one repository, following
// pagination to exhaustion. state narrows the result server-side; empty
// fetches all states.
func (c *Client) ListPullRequests(ctx context.Context, repositoryID int64, repoFullName string, state model.PRState) ([]model.PullRequest, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	ghState := "all"
	if state == model.PRStateOpen || state == model.PRStateClosed {
		ghState = string(state)
	}

	opts := &gh.PullRequestListOptions{
		State:       ghState,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var allPRs []model.PullRequest

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		prs, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, classify(fmt.Errorf("listing pull requests for %s (page %d): %w", repoFullName, opts.Page, err))
		}

		logRateLimit(resp, repoFullName, opts.Page, len(prs))

		for _, pr := range prs {
			mapped := mapPullRequest(pr, repositoryID)

			// List payloads omit merged_by; fill it from the detail endpoint
			// so merged snapshots satisfy the merged_at/merged_by invariant.
			if mapped.State == model.PRStateMerged && mapped.MergedBy == nil {
				detail, _, err := c.gh.PullRequests.Get(ctx, owner, repo, pr.GetNumber())
				if err != nil {
					return nil, classify(fmt.Errorf("fetching merged PR detail for %s#%d: %w", repoFullName, pr.GetNumber(), err))
				}
				if mb := detail.GetMergedBy(); mb != nil {
					user := mapUser(mb)
					mapped.MergedBy = &user
				}
			}

			allPRs = append(allPRs, mapped)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if allPRs == nil {
		allPRs = []model.PullRequest{}
	}

	return allPRs, nil
}

// ListReviews returns all reviews on a pull request, following pagination
// to exhaustion.
func (c *Client) ListReviews(ctx context.Context, pullRequestID int64, repoFullName string, number int) ([]model.Review, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: 100}
	var allReviews []model.Review

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, classify(fmt.Errorf("listing reviews for %s#%d (page %d): %w", repoFullName, number, opts.Page, err))
		}

		for _, r := range reviews {
			allReviews = append(allReviews, mapReview(r, pullRequestID))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if allReviews == nil {
		allReviews = []model.Review{}
	}

	return allReviews, nil
}

// ListComments returns all issue-level and review-level comments on a pull
// request merged into one flat list, each source paginated to exhaustion.
func (c *Client) ListComments(ctx context.Context, pullRequestID int64, repoFullName string, number int) ([]model.Comment, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	var all []model.Comment

	issueOpts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, issueOpts)
		if err != nil {
			return nil, classify(fmt.Errorf("listing issue comments for %s#%d (page %d): %w", repoFullName, number, issueOpts.Page, err))
		}

		for _, comment := range comments {
			all = append(all, mapIssueComment(comment, pullRequestID))
		}

		if resp.NextPage == 0 {
			break
		}
		issueOpts.Page = resp.NextPage
	}

	reviewOpts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		comments, resp, err := c.gh.PullRequests.ListComments(ctx, owner, repo, number, reviewOpts)
		if err != nil {
			return nil, classify(fmt.Errorf("listing review comments for %s#%d (page %d): %w", repoFullName, number, reviewOpts.Page, err))
		}

		for _, comment := range comments {
			all = append(all, mapReviewComment(comment, pullRequestID))
		}

		if resp.NextPage == 0 {
			break
		}
		reviewOpts.Page = resp.NextPage
	}

	if all == nil {
		all = []model.Comment{}
	}

	return all, nil
}

// splitRepo splits "owner/name" into its two components.
func splitRepo(repoFullName string) (owner, repo string, err error) {
	parts := strings.SplitN(repoFullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository name %q, expected owner/name", repoFullName)
	}
	return parts[0], parts[1], nil
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
