package usecase_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fse-compliance/internal/usecase"
)

// fakeSleep records requested cooldowns without waiting
type fakeSleep struct {
	mu    sync.Mutex
	calls []time.Duration
	err   error
}

func (f *fakeSleep) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, d)
	return f.err
}

func (f *fakeSleep) Calls() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.calls...)
}

func TestBatchRunner_Run(t *testing.T) {
	t.Run("seven tasks make three batches and two cooldowns", func(t *testing.T) {
		sleep := &fakeSleep{}
		runner := usecase.NewBatchRunner(3, time.Second, sleep.Sleep, zap.NewNop())

		var (
			mu   sync.Mutex
			seen []int
		)
		err := runner.Run(context.Background(), 7, func(ctx context.Context, i int) {
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
		})

		require.NoError(t, err)
		assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6}, seen)
		assert.Equal(t, []time.Duration{time.Second, time.Second}, sleep.Calls())
	})

	t.Run("single batch has no cooldown", func(t *testing.T) {
		sleep := &fakeSleep{}
		runner := usecase.NewBatchRunner(3, time.Second, sleep.Sleep, zap.NewNop())

		err := runner.Run(context.Background(), 3, func(ctx context.Context, i int) {})

		require.NoError(t, err)
		assert.Empty(t, sleep.Calls())
	})

	t.Run("zero tasks", func(t *testing.T) {
		sleep := &fakeSleep{}
		runner := usecase.NewBatchRunner(3, time.Second, sleep.Sleep, zap.NewNop())

		require.NoError(t, runner.Run(context.Background(), 0, func(ctx context.Context, i int) {
			t.Fatal("task must not run")
		}))
		assert.Empty(t, sleep.Calls())
	})

	t.Run("batches never interleave", func(t *testing.T) {
		runner := usecase.NewBatchRunner(2, 0, nil, zap.NewNop())

		var inFlight, maxInFlight int32
		err := runner.Run(context.Background(), 6, func(ctx context.Context, i int) {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				prev := atomic.LoadInt32(&maxInFlight)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		})

		require.NoError(t, err)
		assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(2))
	})

	t.Run("panic aborts the run", func(t *testing.T) {
		sleep := &fakeSleep{}
		runner := usecase.NewBatchRunner(3, time.Second, sleep.Sleep, zap.NewNop())

		var ran int32
		err := runner.Run(context.Background(), 6, func(ctx context.Context, i int) {
			atomic.AddInt32(&ran, 1)
			if i == 1 {
				panic("boom")
			}
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
		assert.Equal(t, int32(3), atomic.LoadInt32(&ran))
		assert.Empty(t, sleep.Calls())
	})

	t.Run("cancelled context stops before next batch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		runner := usecase.NewBatchRunner(1, 0, nil, zap.NewNop())

		var ran int32
		err := runner.Run(ctx, 3, func(ctx context.Context, i int) {
			atomic.AddInt32(&ran, 1)
			cancel()
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
	})

	t.Run("failing sleep aborts the run", func(t *testing.T) {
		sleep := &fakeSleep{err: context.DeadlineExceeded}
		runner := usecase.NewBatchRunner(1, time.Second, sleep.Sleep, zap.NewNop())

		err := runner.Run(context.Background(), 2, func(ctx context.Context, i int) {})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestContextSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, usecase.ContextSleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, usecase.ContextSleep(context.Background(), time.Millisecond))
}
