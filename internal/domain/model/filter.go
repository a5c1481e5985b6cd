package model

import (
	"strings"
	"time"
)

// CommentFilter enumerates the supported comment filter criteria. Zero
// values mean "no constraint". Filtering is a pure in-memory transformation
// over an already-read result set; it never triggers remote calls.
type CommentFilter struct {
	Author       string
	Type         CommentType
	Path         string
	BodyContains string
	Since        time.Time
	Until        time.Time
}

// Matches reports whether the comment satisfies every set criterion.
func (f CommentFilter) Matches(c Comment) bool {
	if f.Author != "" && !strings.EqualFold(c.Author.Login, f.Author) {
		return false
	}
	if f.Type != "" && c.Type != f.Type {
		return false
	}
	if f.Path != "" && c.Path != f.Path {
		return false
	}
	if f.BodyContains != "" && !strings.Contains(strings.ToLower(c.Body), strings.ToLower(f.BodyContains)) {
		return false
	}
	if !f.Since.IsZero() && c.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && c.CreatedAt.After(f.Until) {
		return false
	}
	return true
}

// FilterComments returns the comments matching the filter, preserving order.
func FilterComments(comments []Comment, f CommentFilter) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// PullRequestFilter enumerates the supported pull request filter criteria.
type PullRequestFilter struct {
	State         PRState
	Author        string
	TitleContains string
	IncludeDrafts bool // Drafts pass unless the filter explicitly excludes them.
	ExcludeDrafts bool
}

// Matches reports whether the pull request satisfies every set criterion.
func (f PullRequestFilter) Matches(pr PullRequest) bool {
	if f.State != "" && pr.State != f.State {
		return false
	}
	if f.Author != "" && !strings.EqualFold(pr.Author.Login, f.Author) {
		return false
	}
	if f.TitleContains != "" && !strings.Contains(strings.ToLower(pr.Title), strings.ToLower(f.TitleContains)) {
		return false
	}
	if f.ExcludeDrafts && pr.IsDraft {
		return false
	}
	return true
}

// FilterPullRequests returns the pull requests matching the filter,
// preserving order.
func FilterPullRequests(prs []PullRequest, f PullRequestFilter) []PullRequest {
	out := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		if f.Matches(pr) {
			out = append(out, pr)
		}
	}
	return out
}
