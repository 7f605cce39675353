package tracker

import (
	"context"
	"time"
)

// Task is a handle to a function running on a fixed interval in the background.
type Task struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Every runs fn every interval until the task is stopped or ctx is cancelled.
// fn runs on the task goroutine, so a slow run delays the next one instead of overlapping it.
// The context passed to fn is cancelled by Stop.
func Every(ctx context.Context, interval time.Duration, fn func(context.Context)) *Task {
	taskCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		ctx:    taskCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-taskCtx.Done():
				return
			case <-ticker.C:
				// select picks randomly when both are ready
				if taskCtx.Err() != nil {
					return
				}
				fn(taskCtx)
			}
		}
	}()

	return t
}

// Stop cancels the task. It does not wait for an in-flight run to return,
// so it is safe to call from inside fn. Calling Stop more than once is a no-op.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.cancel()
}

// Running reports whether the task has not been stopped
func (t *Task) Running() bool {
	return t != nil && t.ctx.Err() == nil
}

// Done is closed once the task goroutine has exited
func (t *Task) Done() <-chan struct{} {
	return t.done
}
