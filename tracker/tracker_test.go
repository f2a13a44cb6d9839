package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/codestats/codestats-api/config"
	"github.com/codestats/codestats-api/model"
	"github.com/stretchr/testify/assert"
)

func newTestTracker(client *fakeClient, deadline time.Duration, now time.Time) *Tracker {
	cfg := config.GetDefault()
	cfg.Tasks.DeadlineMs = int(deadline / time.Millisecond)

	tr := NewTracker(*cfg, client, fakeDetector{frameworks: []string{"Docker"}})
	tr.now = func() time.Time { return now }

	return tr
}

func TestTrackerRun(t *testing.T) {
	now := baseTime.Add(48 * time.Hour)
	session := commitsAt(0, time.Hour) // 1h in session plus the final 15min floor

	client := &fakeClient{
		repos: []model.RepoDescriptor{
			{Name: "api", Owner: "alice", Size: 100, PushedAt: now.Add(-time.Hour), PrimaryLanguage: "Go"},
			{Name: "web", Owner: "alice", Size: 100, PushedAt: now.Add(-24 * time.Hour)},
			{Name: "old", Owner: "alice", Size: 100, PushedAt: now.AddDate(-2, 0, 0)},
			{Name: "broken", Owner: "alice", Size: 100},
		},
		languages: map[string]model.LanguageBreakdown{
			"api": {"Go": 800, "Shell": 200},
			"web": {"TypeScript": 100},
			"old": {"Java": 100},
		},
		languagesErr: map[string]error{"broken": errFakeFetch},
		commits: map[string]map[string][]model.Commit{
			"api": {"alice": session},
			"web": {"alice": commitsAt(0)},
			"old": {"alice": session},
		},
		prCount:    12,
		issueCount: 3,
	}

	result := newTestTracker(client, 5*time.Second, now).Run(context.Background(), "alice", 30, 50, nil)

	assert.Equal(t, 2, result.RepoCount)
	assert.Equal(t, 1.5, result.TotalHours)
	assert.Equal(t, []model.HoursEntry{
		{Name: "Go", Hours: 1},
		{Name: "Shell", Hours: 0.25},
		{Name: "TypeScript", Hours: 0.25},
	}, result.Languages)
	assert.Equal(t, []model.HoursEntry{{Name: "Docker", Hours: 1.5}}, result.Frameworks)
	assert.Equal(t, 12, result.PRCount)
	assert.Equal(t, 3, result.IssueCount)
	assert.Equal(t, model.PeriodMorning, result.BusiestPeriod)
	assert.False(t, result.Partial)
	assert.False(t, result.IsEmpty())
}

func TestTrackerRunIgnoredLanguages(t *testing.T) {
	now := baseTime.Add(48 * time.Hour)
	client := &fakeClient{
		repos: []model.RepoDescriptor{{Name: "api", Owner: "alice", Size: 100}},
		languages: map[string]model.LanguageBreakdown{
			"api": {"Go": 500, "HTML": 500},
		},
		commits: map[string]map[string][]model.Commit{"api": {"alice": commitsAt(0)}},
	}

	result := newTestTracker(client, 5*time.Second, now).Run(context.Background(), "alice", 30, 50, []string{"HTML"})

	assert.Equal(t, []model.HoursEntry{{Name: "Go", Hours: 0.25}}, result.Languages)
}

func TestTrackerRunWithoutRepositories(t *testing.T) {
	client := &fakeClient{listErr: errFakeFetch}

	result := newTestTracker(client, 5*time.Second, time.Now()).Run(context.Background(), "ghost", 30, 50, nil)

	assert.True(t, result.IsEmpty())
	assert.Equal(t, "ghost", result.Username)
	assert.Equal(t, 30, result.PeriodDays)
}

func TestTrackerRunPartialOnDeadline(t *testing.T) {
	now := time.Now()
	client := &fakeClient{
		repos: []model.RepoDescriptor{
			{Name: "fast", Owner: "alice", Size: 1},
			{Name: "slow", Owner: "alice", Size: 1},
		},
		languages: map[string]model.LanguageBreakdown{
			"fast": {"Go": 1},
			"slow": {"Rust": 1},
		},
		delay: map[string]time.Duration{"slow": 3 * time.Second},
		commits: map[string]map[string][]model.Commit{
			"fast": {"alice": {{Message: "feat", AuthoredAt: now.Add(-time.Hour)}}},
			"slow": {"alice": {{Message: "feat", AuthoredAt: now.Add(-time.Hour)}}},
		},
	}

	started := time.Now()
	result := newTestTracker(client, 300*time.Millisecond, now).Run(context.Background(), "alice", 30, 50, nil)

	assert.Less(t, time.Since(started), 2*time.Second)
	assert.True(t, result.Partial)
	assert.Equal(t, 1, result.RepoCount)
	assert.Equal(t, []model.HoursEntry{{Name: "Go", Hours: 0.25}}, result.Languages)
}

func TestPushedWithin(t *testing.T) {
	now := baseTime
	window := model.NewTimeWindow(now, 7)
	repos := []model.RepoDescriptor{
		{Name: "recent", PushedAt: now.Add(-time.Hour)},
		{Name: "boundary", PushedAt: window.Since},
		{Name: "stale", PushedAt: now.AddDate(0, 0, -8)},
		{Name: "unknown"},
	}

	eligible := PushedWithin(repos, window)

	names := make([]string, 0, len(eligible))
	for _, r := range eligible {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{"recent", "boundary", "unknown"}, names)
}
