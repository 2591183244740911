// Package runner repeats worker batches, once or continuously at an interval.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yunseokse0/viewtest/internal/config"
	"github.com/yunseokse0/viewtest/pkg/models"
)

// BatchRunner runs one fan-out of sessions
type BatchRunner interface {
	RunBatch(ctx context.Context, number int) models.Batch
}

// Sink receives every finished batch
type Sink func(models.Batch) error

// Runner drives batches according to RunConfig
type Runner struct {
	Config *config.RunConfig
	Pool   BatchRunner
	Sink   Sink
	Logger *zap.Logger
}

// New creates a runner. sink may be nil.
func New(cfg *config.RunConfig, pool BatchRunner, sink Sink, logger *zap.Logger) *Runner {
	return &Runner{
		Config: cfg,
		Pool:   pool,
		Sink:   sink,
		Logger: logger,
	}
}

// Run executes a single batch, or in continuous mode keeps running batches
// separated by Config.Interval until ctx is cancelled. Cancellation is the
// normal way to stop continuous mode and is not reported as an error.
func (r *Runner) Run(ctx context.Context) error {
	if !r.Config.Continuous {
		_, err := r.runOne(ctx, 1)
		return err
	}

	r.Logger.Info("continuous mode started", zap.Duration("interval", r.Config.Interval))

	for n := 1; ; n++ {
		if ctx.Err() != nil {
			break
		}
		if _, err := r.runOne(ctx, n); err != nil {
			return err
		}

		r.Logger.Info("next batch scheduled", zap.Duration("in", r.Config.Interval))
		if !wait(ctx, r.Config.Interval) {
			break
		}
	}

	r.Logger.Info("continuous mode stopped")
	return nil
}

func (r *Runner) runOne(ctx context.Context, n int) (models.Batch, error) {
	r.Logger.Info("batch started", zap.Int("batch", n))

	batch := r.Pool.RunBatch(ctx, n)
	ok, failed := batch.Counts()

	r.Logger.Info("batch finished",
		zap.Int("batch", n),
		zap.Int("succeeded", ok),
		zap.Int("failed", failed),
		zap.Duration("took", batch.Duration),
	)

	if r.Sink != nil {
		if err := r.Sink(batch); err != nil {
			return batch, fmt.Errorf("record batch %d: %w", n, err)
		}
	}

	if ctx.Err() != nil && !errors.Is(ctx.Err(), context.Canceled) {
		return batch, ctx.Err()
	}
	return batch, nil
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
