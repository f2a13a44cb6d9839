package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/codestats/codestats-api/model"
)

var errFakeFetch = errors.New("FETCH_ERROR")

// fakeClient serves canned data keyed by repository name
type fakeClient struct {
	mu sync.Mutex

	repos        []model.RepoDescriptor
	listErr      error
	languages    map[string]model.LanguageBreakdown
	languagesErr map[string]error
	commits      map[string]map[string][]model.Commit // repo -> author -> commits
	commitsErr   map[string]error
	delay        map[string]time.Duration
	prCount      int
	issueCount   int
	auxErr       error

	commitCalls []string
}

func (f *fakeClient) ListRepositories(_ context.Context, _ string, maxRepos int) ([]model.RepoDescriptor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	if maxRepos > 0 && len(f.repos) > maxRepos {
		return f.repos[:maxRepos], nil
	}

	return f.repos, nil
}

func (f *fakeClient) ListLanguages(ctx context.Context, _ string, repo string) (model.LanguageBreakdown, error) {
	if d, found := f.delay[repo]; found {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := f.languagesErr[repo]; err != nil {
		return nil, err
	}

	return f.languages[repo], nil
}

func (f *fakeClient) ListCommits(_ context.Context, _ string, repo string, author string, _ model.TimeWindow) ([]model.Commit, error) {
	f.mu.Lock()
	f.commitCalls = append(f.commitCalls, repo+"@"+author)
	f.mu.Unlock()

	if err := f.commitsErr[repo]; err != nil {
		return nil, err
	}

	return f.commits[repo][strings.ToLower(author)], nil
}

func (f *fakeClient) CountPullRequests(context.Context, string) (int, error) {
	return f.prCount, f.auxErr
}

func (f *fakeClient) CountIssues(context.Context, string) (int, error) {
	return f.issueCount, f.auxErr
}

// fakeDetector returns the same frameworks for every repository
type fakeDetector struct {
	frameworks []string
}

func (d fakeDetector) Detect(context.Context, string, string, string) model.FrameworkSet {
	return model.NewFrameworkSet(d.frameworks...)
}
