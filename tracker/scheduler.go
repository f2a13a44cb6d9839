package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codestats/codestats-api/model"
	"github.com/remeh/sizedwaitgroup"
	"github.com/sourcegraph/conc/panics"
)

var ErrTaskTimeout = errors.New("TASK_TIMEOUT")

// Task is one unit of work dispatched by the scheduler
type Task struct {
	Name string
	Run  func(ctx context.Context) Outcome
}

// Outcome is the tagged result of a task.
// Repository tasks set Repo, auxiliary tasks set Aux.
type Outcome struct {
	Task   string
	Status Status
	Repo   *model.RepoResult
	Aux    *model.AuxCounts
	Err    error
}

// Summary describes how a scheduler run ended
type Summary struct {
	Submitted        int
	Completed        int
	Failed           int
	Abandoned        int
	DeadlineExceeded bool
}

// Scheduler dispatches tasks over a bounded pool of goroutines.
// Outcomes are handed to a single consumer in completion order, so the consumer
// never needs locking.
type Scheduler struct {
	maxWorkers  int
	taskTimeout time.Duration
}

func NewScheduler(maxWorkers int, taskTimeout time.Duration) *Scheduler {
	return &Scheduler{
		maxWorkers:  maxWorkers,
		taskTimeout: taskTimeout,
	}
}

// PoolSize returns the number of parallel workers used for the given number of tasks
func (s *Scheduler) PoolSize(tasks int) int {
	size := min(s.maxWorkers, tasks)
	if size < 1 {
		return 1
	}

	return size
}

// Run executes the tasks and calls consume once per delivered outcome, from the calling goroutine.
// Once the deadline is reached Run stops waiting and returns: tasks still running are
// abandoned and their outcomes are dropped.
func (s *Scheduler) Run(ctx context.Context, deadline time.Time, tasks []Task, consume func(Outcome)) Summary {
	summary := Summary{Submitted: len(tasks)}

	if len(tasks) == 0 {
		return summary
	}

	if !time.Now().Before(deadline) {
		summary.DeadlineExceeded = true
		summary.Abandoned = len(tasks)
		return summary
	}

	runCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	// buffered to the number of tasks so abandoned workers never block on send
	results := make(chan Outcome, len(tasks))
	swg := sizedwaitgroup.New(s.PoolSize(len(tasks)))

	go func() {
		for _, task := range tasks {
			if runCtx.Err() != nil {
				break
			}

			if err := swg.AddWithContext(runCtx); err != nil {
				break
			}

			go func(task Task) {
				defer swg.Done()
				results <- s.execute(runCtx, task)
			}(task)
		}

		swg.Wait()
		close(results)
	}()

	for {
		select {
		case outcome, ok := <-results:
			if !ok {
				// tasks cut by the deadline may all have reported before it was noticed here
				summary.DeadlineExceeded = runCtx.Err() != nil
				summary.Abandoned = summary.Submitted - summary.Completed - summary.Failed
				return summary
			}

			if outcome.Status == StatusFailed {
				summary.Failed++
			} else {
				summary.Completed++
			}

			consume(outcome)

		case <-runCtx.Done():
			summary.DeadlineExceeded = true
			summary.Abandoned = summary.Submitted - summary.Completed - summary.Failed
			return summary
		}
	}
}

// execute runs a task with its own timeout and turns a timeout or a panic into a failed outcome
func (s *Scheduler) execute(ctx context.Context, task Task) Outcome {
	taskCtx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()

	done := make(chan Outcome, 1)

	go func() {
		var outcome Outcome
		var catcher panics.Catcher

		catcher.Try(func() {
			outcome = task.Run(taskCtx)
		})

		if recovered := catcher.Recovered(); recovered != nil {
			outcome = Outcome{Status: StatusFailed, Err: recovered.AsError()}
		}

		outcome.Task = task.Name
		done <- outcome
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-taskCtx.Done():
		return Outcome{
			Task:   task.Name,
			Status: StatusFailed,
			Err:    fmt.Errorf("%w: %s", ErrTaskTimeout, task.Name),
		}
	}
}
