package tracker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvery_RunsRepeatedly(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	task := Every(context.Background(), 5*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	t.Cleanup(task.Stop)

	require.True(t, task.Running())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestEvery_StopPreventsFurtherRuns(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	task := Every(context.Background(), 5*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	task.Stop()
	task.Stop()
	assert.False(t, task.Running())

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task goroutine did not exit")
	}

	after := runs.Load()
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestEvery_StopFromInsideRun(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	var task *Task
	started := make(chan struct{})
	task = Every(context.Background(), 5*time.Millisecond, func(ctx context.Context) {
		<-started
		runs.Add(1)
		task.Stop()
		assert.Error(t, ctx.Err())
	})
	close(started)

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task goroutine did not exit")
	}
	assert.Equal(t, int32(1), runs.Load())
}

func TestEvery_ParentCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	task := Every(ctx, time.Hour, func(context.Context) {})

	cancel()

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task goroutine did not exit")
	}
	assert.False(t, task.Running())
}

func TestTask_NilIsSafe(t *testing.T) {
	t.Parallel()

	var task *Task
	task.Stop()
	assert.False(t, task.Running())
}
