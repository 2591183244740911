package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yunseokse0/viewtest/internal/config"
	"github.com/yunseokse0/viewtest/internal/humanize"
	"github.com/yunseokse0/viewtest/pkg/models"
)

// Visitor runs one browser session and reports its outcome
type Visitor interface {
	Visit(ctx context.Context, workerID int) models.Result
}

// Pool starts one goroutine per session for each batch
type Pool struct {
	Config  *config.RunConfig
	Visitor Visitor
	Rand    *humanize.Rand
	Logger  *zap.Logger
}

// NewPool creates a new worker pool
func NewPool(cfg *config.RunConfig, visitor Visitor, rng *humanize.Rand, logger *zap.Logger) *Pool {
	return &Pool{
		Config:  cfg,
		Visitor: visitor,
		Rand:    rng,
		Logger:  logger,
	}
}

// RunBatch starts Config.Workers sessions, waiting a random stagger between
// consecutive starts, and returns once every started session has finished.
// If ctx is cancelled during a stagger no further sessions are started; the
// ones already running see the cancellation through their own context.
func (p *Pool) RunBatch(ctx context.Context, number int) models.Batch {
	start := time.Now()
	results := make([]models.Result, p.Config.Workers)

	var g errgroup.Group
	launched := 0

	for w := 1; w <= p.Config.Workers; w++ {
		id := w
		g.Go(func() error {
			p.Logger.Debug("worker started", zap.Int("worker", id))
			r := p.Visitor.Visit(ctx, id)
			r.Batch = number
			results[id-1] = r
			return nil
		})
		launched++

		if w == p.Config.Workers {
			break
		}
		if !p.stagger(ctx) {
			p.Logger.Info("batch interrupted, not starting remaining workers",
				zap.Int("started", launched),
				zap.Int("workers", p.Config.Workers),
			)
			break
		}
	}

	_ = g.Wait()

	return models.Batch{
		Number:   number,
		Started:  start,
		Duration: time.Since(start),
		Results:  results[:launched],
	}
}

// stagger sleeps for a random delay and reports false if ctx ended first.
func (p *Pool) stagger(ctx context.Context) bool {
	d := p.Rand.Duration(p.Config.StaggerMin, p.Config.StaggerMax)
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
