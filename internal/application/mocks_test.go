package application_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ericfisherdev/prmirror/internal/application"
	"github.com/ericfisherdev/prmirror/internal/domain/model"
	"github.com/ericfisherdev/prmirror/internal/domain/port/driven"
)

// --- In-memory store backing all driven store ports ---

// memStore holds the shared map state; the per-port views below adapt it to
// the store interfaces. Scope semantics mirror the SQLite adapter:
// whole-scope replacement and cascading repository removal.
type memStore struct {
	mu       sync.Mutex
	repos    map[int64]model.Repository
	prs      map[int64]model.PullRequest
	reviews  map[int64]model.Review
	comments map[int64]model.Comment
	users    map[int64]model.User
	states   map[string]model.SyncState

	failReplaceComments error
	failReplaceReviews  error
}

func newMemStore() *memStore {
	return &memStore{
		repos:    make(map[int64]model.Repository),
		prs:      make(map[int64]model.PullRequest),
		reviews:  make(map[int64]model.Review),
		comments: make(map[int64]model.Comment),
		users:    make(map[int64]model.User),
		states:   make(map[string]model.SyncState),
	}
}

type memRepoStore struct{ s *memStore }
type memPRStore struct{ s *memStore }
type memReviewStore struct{ s *memStore }
type memCommentStore struct{ s *memStore }
type memUserStore struct{ s *memStore }
type memStateStore struct{ s *memStore }

var (
	_ driven.RepositoryStore  = memRepoStore{}
	_ driven.PullRequestStore = memPRStore{}
	_ driven.ReviewStore      = memReviewStore{}
	_ driven.CommentStore     = memCommentStore{}
	_ driven.UserStore        = memUserStore{}
	_ driven.SyncStateStore   = memStateStore{}
)

func (m *memStore) repoStore() memRepoStore       { return memRepoStore{m} }
func (m *memStore) prStore() memPRStore           { return memPRStore{m} }
func (m *memStore) reviewStore() memReviewStore   { return memReviewStore{m} }
func (m *memStore) commentStore() memCommentStore { return memCommentStore{m} }
func (m *memStore) userStore() memUserStore       { return memUserStore{m} }
func (m *memStore) stateStore() memStateStore     { return memStateStore{m} }

func (v memRepoStore) ReplaceAll(_ context.Context, repos []model.Repository) error {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	keep := make(map[int64]bool, len(repos))
	for _, r := range repos {
		keep[r.ID] = true
	}
	for id := range m.repos {
		if !keep[id] {
			m.removeRepoLocked(id)
		}
	}
	for _, r := range repos {
		m.repos[r.ID] = r
	}
	return nil
}

func (v memRepoStore) ListAll(_ context.Context) ([]model.Repository, error) {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Repository, 0, len(m.repos))
	for _, r := range m.repos {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (v memRepoStore) GetByID(_ context.Context, id int64) (*model.Repository, error) {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.repos[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (v memRepoStore) Remove(_ context.Context, id int64) error {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.repos[id]; !ok {
		return fmt.Errorf("repository %d: %w", id, model.ErrNotFound)
	}
	m.removeRepoLocked(id)
	return nil
}

func (m *memStore) removeRepoLocked(id int64) {
	delete(m.repos, id)
	for prID, pr := range m.prs {
		if pr.RepositoryID != id {
			continue
		}
		delete(m.prs, prID)
		for rID, r := range m.reviews {
			if r.PullRequestID == prID {
				delete(m.reviews, rID)
			}
		}
		for cID, c := range m.comments {
			if c.PullRequestID == prID {
				delete(m.comments, cID)
			}
		}
	}
}

func (v memPRStore) ReplaceForRepository(_ context.Context, repositoryID int64, prs []model.PullRequest) error {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, pr := range m.prs {
		if pr.RepositoryID == repositoryID {
			delete(m.prs, id)
		}
	}
	for _, pr := range prs {
		m.prs[pr.ID] = pr
	}
	return nil
}

func (v memPRStore) GetByRepository(_ context.Context, repositoryID int64) ([]model.PullRequest, error) {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.PullRequest
	for _, pr := range m.prs {
		if pr.RepositoryID == repositoryID {
			out = append(out, pr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (v memPRStore) GetByID(_ context.Context, id int64) (*model.PullRequest, error) {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	if pr, ok := m.prs[id]; ok {
		return &pr, nil
	}
	return nil, nil
}

func (v memReviewStore) ReplaceForPullRequest(_ context.Context, pullRequestID int64, reviews []model.Review) error {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failReplaceReviews != nil {
		return m.failReplaceReviews
	}

	for id, r := range m.reviews {
		if r.PullRequestID == pullRequestID {
			delete(m.reviews, id)
		}
	}
	for _, r := range reviews {
		m.reviews[r.ID] = r
	}
	return nil
}

func (v memReviewStore) GetByPullRequest(_ context.Context, pullRequestID int64) ([]model.Review, error) {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Review
	for _, r := range m.reviews {
		if r.PullRequestID == pullRequestID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v memCommentStore) ReplaceForPullRequest(_ context.Context, pullRequestID int64, comments []model.Comment) error {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failReplaceComments != nil {
		return m.failReplaceComments
	}

	for id, c := range m.comments {
		if c.PullRequestID == pullRequestID {
			delete(m.comments, id)
		}
	}
	for _, c := range comments {
		m.comments[c.ID] = c
	}
	return nil
}

func (v memCommentStore) GetByPullRequest(_ context.Context, pullRequestID int64) ([]model.Comment, error) {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Comment
	for _, c := range m.comments {
		if c.PullRequestID == pullRequestID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v memCommentStore) GetByIDs(_ context.Context, ids []int64) ([]model.Comment, error) {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Comment
	for _, id := range ids {
		if c, ok := m.comments[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v memUserStore) UpsertAll(_ context.Context, users []model.User) error {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range users {
		m.users[u.ID] = u
	}
	return nil
}

func (v memUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (v memStateStore) Get(_ context.Context, scope model.Scope) (*model.SyncState, error) {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.states[scope.String()]; ok {
		return &s, nil
	}
	return nil, nil
}

func (v memStateStore) Put(_ context.Context, state model.SyncState) error {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[state.Scope.String()] = state
	return nil
}

func (v memStateStore) Delete(_ context.Context, scope model.Scope) error {
	m := v.s
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, scope.String())
	return nil
}

// newTestSync wires a SyncService against the in-memory store.
func newTestSync(remote driven.RemoteDataSource, store *memStore, cfg application.SyncConfig) *application.SyncService {
	return application.NewSyncService(
		remote,
		store.repoStore(),
		store.prStore(),
		store.reviewStore(),
		store.commentStore(),
		store.userStore(),
		store.stateStore(),
		cfg,
	)
}

// --- Fake remote data source ---

type fakeRemote struct {
	mu           sync.Mutex
	repoCalls    int
	prCalls      int
	reviewCalls  int
	commentCalls int
	createCalls  int

	listRepositories func(ctx context.Context) ([]model.Repository, error)
	listPullRequests func(ctx context.Context, repositoryID int64) ([]model.PullRequest, error)
	listReviews      func(ctx context.Context, pullRequestID int64) ([]model.Review, error)
	listComments     func(ctx context.Context, pullRequestID int64) ([]model.Comment, error)
	createReview     func(ctx context.Context, pullRequestID int64, summaryBody string, drafts []driven.CommentDraft) (*model.Review, []model.Comment, error)
}

var _ driven.RemoteDataSource = (*fakeRemote)(nil)

func (f *fakeRemote) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	f.mu.Lock()
	f.repoCalls++
	fn := f.listRepositories
	f.mu.Unlock()

	if fn == nil {
		return []model.Repository{}, nil
	}
	return fn(ctx)
}

func (f *fakeRemote) ListPullRequests(ctx context.Context, repositoryID int64, _ string, _ model.PRState) ([]model.PullRequest, error) {
	f.mu.Lock()
	f.prCalls++
	fn := f.listPullRequests
	f.mu.Unlock()

	if fn == nil {
		return []model.PullRequest{}, nil
	}
	return fn(ctx, repositoryID)
}

func (f *fakeRemote) ListReviews(ctx context.Context, pullRequestID int64, _ string, _ int) ([]model.Review, error) {
	f.mu.Lock()
	f.reviewCalls++
	fn := f.listReviews
	f.mu.Unlock()

	if fn == nil {
		return []model.Review{}, nil
	}
	return fn(ctx, pullRequestID)
}

func (f *fakeRemote) ListComments(ctx context.Context, pullRequestID int64, _ string, _ int) ([]model.Comment, error) {
	f.mu.Lock()
	f.commentCalls++
	fn := f.listComments
	f.mu.Unlock()

	if fn == nil {
		return []model.Comment{}, nil
	}
	return fn(ctx, pullRequestID)
}

func (f *fakeRemote) CreateReviewWithComments(ctx context.Context, pullRequestID int64, _ string, _ int, summaryBody string, drafts []driven.CommentDraft) (*model.Review, []model.Comment, error) {
	f.mu.Lock()
	f.createCalls++
	fn := f.createReview
	f.mu.Unlock()

	if fn == nil {
		return nil, nil, fmt.Errorf("unexpected CreateReviewWithComments call")
	}
	return fn(ctx, pullRequestID, summaryBody, drafts)
}

func (f *fakeRemote) calls() (repos, prs, reviews, comments, creates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repoCalls, f.prCalls, f.reviewCalls, f.commentCalls, f.createCalls
}

// --- Fixtures ---

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func remoteRepo(id int64, fullName string) model.Repository {
	return model.Repository{
		ID:        id,
		Name:      fullName,
		FullName:  fullName,
		Owner:     model.User{ID: 1, Login: "octocat"},
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
		PushedAt:  fixedTime,
	}
}

func remotePR(id, repositoryID int64, number int, state model.PRState) model.PullRequest {
	pr := model.PullRequest{
		ID:           id,
		Number:       number,
		RepositoryID: repositoryID,
		Title:        fmt.Sprintf("PR #%d", number),
		State:        state,
		Author:       model.User{ID: 2, Login: "alice"},
		CreatedAt:    fixedTime,
		UpdatedAt:    fixedTime,
	}
	if state == model.PRStateMerged || state == model.PRStateClosed {
		closedAt := fixedTime.Add(time.Hour)
		pr.ClosedAt = &closedAt
		if state == model.PRStateMerged {
			mergedBy := model.User{ID: 3, Login: "bob"}
			pr.MergedAt = &closedAt
			pr.MergedBy = &mergedBy
		}
	}
	return pr
}

func remoteReview(id, pullRequestID int64) model.Review {
	return model.Review{
		ID:            id,
		PullRequestID: pullRequestID,
		Author:        model.User{ID: 3, Login: "bob"},
		State:         model.ReviewStateApproved,
		SubmittedAt:   fixedTime,
	}
}

func remoteIssueComment(id, pullRequestID int64, body string) model.Comment {
	return model.Comment{
		ID:            id,
		PullRequestID: pullRequestID,
		Type:          model.CommentTypeIssue,
		Author:        model.User{ID: 2, Login: "alice"},
		Body:          body,
		CreatedAt:     fixedTime,
		UpdatedAt:     fixedTime,
	}
}

func remoteReviewComment(id, pullRequestID, reviewID int64, path string, line int) model.Comment {
	return model.Comment{
		ID:            id,
		PullRequestID: pullRequestID,
		ReviewID:      &reviewID,
		Type:          model.CommentTypeReview,
		Author:        model.User{ID: 3, Login: "bob"},
		Body:          "inline note",
		Path:          path,
		Line:          line,
		CreatedAt:     fixedTime,
		UpdatedAt:     fixedTime,
	}
}
