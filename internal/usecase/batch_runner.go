package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the default SleepFunc backed by a real timer
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BatchRunner runs tasks in fixed-size concurrent batches with a cooldown between batches
type BatchRunner struct {
	batchSize int
	cooldown  time.Duration
	sleep     SleepFunc
	logger    *zap.Logger
}

// NewBatchRunner creates a runner. batchSize < 1 is treated as 1, nil sleep uses ContextSleep.
func NewBatchRunner(batchSize int, cooldown time.Duration, sleep SleepFunc, logger *zap.Logger) *BatchRunner {
	if batchSize < 1 {
		batchSize = 1
	}
	if sleep == nil {
		sleep = ContextSleep
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRunner{
		batchSize: batchSize,
		cooldown:  cooldown,
		sleep:     sleep,
		logger:    logger,
	}
}

// BatchSize returns the configured batch size
func (r *BatchRunner) BatchSize() int {
	return r.batchSize
}

// Run calls task(ctx, i) for i in [0, n). Batches run strictly in sequence, tasks
// within a batch run concurrently. The cooldown is skipped after the final batch.
// A panicking task or a cancelled context aborts the run with an error.
func (r *BatchRunner) Run(ctx context.Context, n int, task func(ctx context.Context, i int)) error {
	batches := (n + r.batchSize - 1) / r.batchSize

	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch %d: %w", b, err)
		}

		start := b * r.batchSize
		end := start + r.batchSize
		if end > n {
			end = n
		}

		r.logger.Debug("Processing batch",
			zap.Int("batch", b+1),
			zap.Int("batches", batches),
			zap.Int("batch_size", end-start))

		if err := r.runBatch(ctx, start, end, task); err != nil {
			return fmt.Errorf("batch %d: %w", b, err)
		}

		if b < batches-1 && r.cooldown > 0 {
			if err := r.sleep(ctx, r.cooldown); err != nil {
				return fmt.Errorf("cooldown after batch %d: %w", b, err)
			}
		}
	}

	return nil
}

func (r *BatchRunner) runBatch(ctx context.Context, start, end int, task func(ctx context.Context, i int)) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		panicErr error
	)

	for i := start; i < end; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("Batch task panicked", zap.Int("index", i), zap.Any("panic", rec))
					mu.Lock()
					if panicErr == nil {
						panicErr = fmt.Errorf("task %d panicked: %v", i, rec)
					}
					mu.Unlock()
				}
			}()
			task(ctx, i)
		}(i)
	}

	wg.Wait()
	return panicErr
}
