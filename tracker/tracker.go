// Package tracker estimates coding time per language and framework from commit history.
//
// Hours are a statistical estimate derived from gaps between commit timestamps,
// not measured time.
package tracker

import (
	"context"
	"time"

	"github.com/codestats/codestats-api/config"
	"github.com/codestats/codestats-api/model"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// auxiliaryTasks is the number of tasks dispatched beside the repositories
const auxiliaryTasks = 2

type Tracker struct {
	client           HostingClient
	processor        *Processor
	scheduler        *Scheduler
	deadline         time.Duration
	ignoredLanguages []string
	now              func() time.Time
}

func NewTracker(cfg config.Config, client HostingClient, detector FrameworkDetector) *Tracker {
	estimator := Estimator{
		GapThreshold: time.Duration(cfg.Tracker.SessionGapMinutes) * time.Minute,
		SessionCap:   time.Duration(cfg.Tracker.SessionCapMinutes) * time.Minute,
		MinSession:   time.Duration(cfg.Tracker.MinSessionMinutes) * time.Minute,
	}

	return &Tracker{
		client:           client,
		processor:        NewProcessor(client, detector, estimator),
		scheduler:        NewScheduler(cfg.Tasks.MaxParallelTasksAllowed, cfg.Tasks.TaskTimeout()),
		deadline:         cfg.Tasks.Deadline(),
		ignoredLanguages: cfg.Tracker.IgnoredLanguages,
		now:              time.Now,
	}
}

// Run computes the coding statistics of username over the last periodDays days.
// It always returns a usable result: failures and the internal deadline only make it partial.
// The caller context only carries values, cancelling it does not stop the run.
func (t *Tracker) Run(ctx context.Context, username string, periodDays int, maxRepos int, ignoreLanguages []string) model.AggregateResult {
	start := t.now()
	deadline := start.Add(t.deadline)
	ctx = context.WithoutCancel(ctx)

	logger := log.WithFields(log.Fields{
		"runID":      uuid.NewString(),
		"username":   username,
		"periodDays": periodDays,
		"maxRepos":   maxRepos,
	})

	aggregator := NewAggregator()

	listCtx, cancel := context.WithDeadline(ctx, deadline)
	repos, err := t.client.ListRepositories(listCtx, username, maxRepos)
	cancel()

	if err != nil {
		logger.WithError(err).Warning("unable to list repositories")
	}

	if len(repos) == 0 {
		logger.Info("no repositories found")
		return aggregator.Finalize(username, periodDays)
	}

	window := model.NewTimeWindow(start, periodDays)
	eligible := PushedWithin(repos, window)
	ignored := NewLanguageSet(t.ignoredLanguages, ignoreLanguages)

	logger.WithFields(log.Fields{
		"repositories": len(repos),
		"eligible":     len(eligible),
		"workers":      t.scheduler.PoolSize(len(eligible) + auxiliaryTasks),
	}).Debug("dispatching repositories")

	tasks := make([]Task, 0, len(eligible)+auxiliaryTasks)
	for _, repo := range eligible {
		tasks = append(tasks, t.repositoryTask(Job{
			Repo:             repo,
			Username:         username,
			Window:           window,
			IgnoredLanguages: ignored,
		}))
	}

	tasks = append(tasks, t.pullRequestsTask(username), t.issuesTask(username))

	summary := t.scheduler.Run(ctx, deadline, tasks, func(outcome Outcome) {
		switch {
		case outcome.Status == StatusFailed:
			logger.WithError(outcome.Err).WithField("task", outcome.Task).Warning("task failed, excluded from results")
		case outcome.Aux != nil:
			aggregator.AddAux(*outcome.Aux)
		case outcome.Repo != nil:
			aggregator.Add(*outcome.Repo)
		}
	})

	result := aggregator.Finalize(username, periodDays)
	result.Partial = summary.DeadlineExceeded

	logger.WithFields(log.Fields{
		"completed":  summary.Completed,
		"failed":     summary.Failed,
		"abandoned":  summary.Abandoned,
		"partial":    summary.DeadlineExceeded,
		"totalHours": result.TotalHours,
		"repoCount":  result.RepoCount,
		"duration":   t.now().Sub(start).String(),
	}).Info("tracker run finished")

	return result
}

func (t *Tracker) repositoryTask(job Job) Task {
	return Task{
		Name: job.Repo.FullName(),
		Run: func(ctx context.Context) Outcome {
			result, status := t.processor.Process(ctx, job)
			return Outcome{Status: status, Repo: &result}
		},
	}
}

func (t *Tracker) pullRequestsTask(username string) Task {
	return Task{
		Name: "pull-requests",
		Run: func(ctx context.Context) Outcome {
			count, err := t.client.CountPullRequests(ctx, username)
			if err != nil {
				return Outcome{Status: StatusFailed, Err: err}
			}

			return Outcome{Status: StatusOK, Aux: &model.AuxCounts{PullRequests: count}}
		},
	}
}

func (t *Tracker) issuesTask(username string) Task {
	return Task{
		Name: "issues",
		Run: func(ctx context.Context) Outcome {
			count, err := t.client.CountIssues(ctx, username)
			if err != nil {
				return Outcome{Status: StatusFailed, Err: err}
			}

			return Outcome{Status: StatusOK, Aux: &model.AuxCounts{Issues: count}}
		},
	}
}

// PushedWithin keeps the repositories pushed to during the window.
// Repositories with an unknown push date are kept.
func PushedWithin(repos []model.RepoDescriptor, window model.TimeWindow) []model.RepoDescriptor {
	eligible := make([]model.RepoDescriptor, 0, len(repos))
	for _, r := range repos {
		if r.PushedAt.IsZero() || !r.PushedAt.Before(window.Since) {
			eligible = append(eligible, r)
		}
	}

	return eligible
}
