package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethanbaker/legal-assistant/internal/metrics"
)

// Sink receives failures of best-effort work
type Sink func(stage Stage, err error)

// TaskRunner runs best-effort work off the response path. Failures and panics go to
// the task's sink; nothing is returned to the caller
type TaskRunner struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

// NewTaskRunner creates a runner giving each task at most timeout to finish
func NewTaskRunner(timeout time.Duration) *TaskRunner {
	return &TaskRunner{timeout: timeout}
}

// Go starts fn in the background. The task keeps ctx's values but not its cancellation,
// so it can outlive the request that started it
func (r *TaskRunner) Go(ctx context.Context, stage Stage, sink Sink, fn func(ctx context.Context) error) {
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)

	r.wg.Add(1)
	metrics.BackgroundTasksInFlight.Inc()

	go func() {
		defer r.wg.Done()
		defer metrics.BackgroundTasksInFlight.Dec()
		defer cancel()
		defer func() {
			if p := recover(); p != nil {
				sink(stage, fmt.Errorf("task panicked: %v", p))
			}
		}()

		if err := fn(taskCtx); err != nil {
			sink(stage, err)
		}
	}()
}

// Wait blocks until every started task has finished
func (r *TaskRunner) Wait() {
	r.wg.Wait()
}
