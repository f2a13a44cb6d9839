package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codestats/codestats-api/model"
	"github.com/stretchr/testify/assert"
)

// repoTask returns a task completing after delay with the given hours, unless ctx ends first
func repoTask(name string, hours float64, delay time.Duration) Task {
	return Task{
		Name: name,
		Run: func(ctx context.Context) Outcome {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return Outcome{Status: StatusFailed, Err: ctx.Err()}
			}

			result := model.RepoResult{Name: name, Hours: hours, Langs: model.LanguageBreakdown{"Go": 1}}
			return Outcome{Status: StatusOK, Repo: &result}
		},
	}
}

func TestSchedulerRunAllTasks(t *testing.T) {
	scheduler := NewScheduler(3, time.Second)

	tasks := make([]Task, 0, 10)
	for i := 0; i < 10; i++ {
		tasks = append(tasks, repoTask(fmt.Sprintf("repo-%d", i), 1, time.Millisecond))
	}

	seen := make(map[string]int)
	summary := scheduler.Run(context.Background(), time.Now().Add(5*time.Second), tasks, func(o Outcome) {
		seen[o.Task]++
	})

	assert.Equal(t, Summary{Submitted: 10, Completed: 10}, summary)
	assert.Len(t, seen, 10)

	// every outcome is delivered exactly once
	for name, count := range seen {
		assert.Equal(t, 1, count, name)
	}
}

func TestSchedulerBoundsConcurrency(t *testing.T) {
	scheduler := NewScheduler(2, time.Second)

	var running, peak int32
	tasks := make([]Task, 0, 8)
	for i := 0; i < 8; i++ {
		tasks = append(tasks, Task{
			Name: fmt.Sprintf("task-%d", i),
			Run: func(context.Context) Outcome {
				current := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if current <= old || atomic.CompareAndSwapInt32(&peak, old, current) {
						break
					}
				}

				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return Outcome{Status: StatusOK}
			},
		})
	}

	summary := scheduler.Run(context.Background(), time.Now().Add(5*time.Second), tasks, func(Outcome) {})

	assert.Equal(t, 8, summary.Completed)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestSchedulerDeadlineInThePast(t *testing.T) {
	scheduler := NewScheduler(4, time.Second)
	tasks := []Task{repoTask("a", 1, 0), repoTask("b", 1, 0)}

	delivered := 0
	done := make(chan Summary, 1)

	go func() {
		done <- scheduler.Run(context.Background(), time.Now().Add(-time.Second), tasks, func(Outcome) { delivered++ })
	}()

	select {
	case summary := <-done:
		assert.True(t, summary.DeadlineExceeded)
		assert.Equal(t, 2, summary.Abandoned)
		assert.Equal(t, 0, delivered)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not return with a past deadline")
	}
}

func TestSchedulerPartialResultsOnDeadline(t *testing.T) {
	scheduler := NewScheduler(4, 5*time.Second)
	tasks := []Task{
		repoTask("fast-1", 1, time.Millisecond),
		repoTask("fast-2", 1, time.Millisecond),
		{
			Name: "stuck",
			Run: func(context.Context) Outcome {
				// ignores its context on purpose
				time.Sleep(2 * time.Second)
				return Outcome{Status: StatusOK}
			},
		},
	}

	start := time.Now()
	delivered := make(map[string]Status)
	summary := scheduler.Run(context.Background(), start.Add(200*time.Millisecond), tasks, func(o Outcome) {
		delivered[o.Task] = o.Status
	})

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StatusOK, delivered["fast-1"])
	assert.Equal(t, StatusOK, delivered["fast-2"])
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 3, summary.Submitted)

	if status, found := delivered["stuck"]; found {
		assert.Equal(t, StatusFailed, status)
	}
}

func TestSchedulerTaskTimeout(t *testing.T) {
	scheduler := NewScheduler(2, 50*time.Millisecond)
	tasks := []Task{
		repoTask("ok", 1, time.Millisecond),
		{
			Name: "slow",
			Run: func(context.Context) Outcome {
				time.Sleep(500 * time.Millisecond)
				return Outcome{Status: StatusOK}
			},
		},
	}

	outcomes := make(map[string]Outcome)
	summary := scheduler.Run(context.Background(), time.Now().Add(5*time.Second), tasks, func(o Outcome) {
		outcomes[o.Task] = o
	})

	assert.False(t, summary.DeadlineExceeded)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, StatusOK, outcomes["ok"].Status)
	assert.Equal(t, StatusFailed, outcomes["slow"].Status)
	assert.True(t, errors.Is(outcomes["slow"].Err, ErrTaskTimeout))
}

func TestSchedulerRecoversPanics(t *testing.T) {
	scheduler := NewScheduler(2, time.Second)
	tasks := []Task{
		repoTask("ok", 1, 0),
		{
			Name: "boom",
			Run: func(context.Context) Outcome {
				panic("unexpected payload")
			},
		},
	}

	outcomes := make(map[string]Outcome)
	summary := scheduler.Run(context.Background(), time.Now().Add(time.Second), tasks, func(o Outcome) {
		outcomes[o.Task] = o
	})

	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, StatusFailed, outcomes["boom"].Status)
	assert.Error(t, outcomes["boom"].Err)
}

func TestSchedulerNoTasks(t *testing.T) {
	summary := NewScheduler(4, time.Second).Run(context.Background(), time.Now().Add(time.Second), nil, func(Outcome) {
		t.Fatal("nothing should be delivered")
	})

	assert.Equal(t, Summary{}, summary)
}

func TestSchedulerPoolSize(t *testing.T) {
	scheduler := NewScheduler(8, time.Second)

	assert.Equal(t, 8, scheduler.PoolSize(50))
	assert.Equal(t, 3, scheduler.PoolSize(3))
	assert.Equal(t, 1, scheduler.PoolSize(0))
	assert.Equal(t, 1, NewScheduler(0, time.Second).PoolSize(10))
}
