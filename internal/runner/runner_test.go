package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/yunseokse0/viewtest/internal/config"
	"github.com/yunseokse0/viewtest/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePool struct {
	mu      sync.Mutex
	numbers []int
	onBatch func(n int)
}

func (f *fakePool) RunBatch(ctx context.Context, number int) models.Batch {
	f.mu.Lock()
	f.numbers = append(f.numbers, number)
	f.mu.Unlock()

	if f.onBatch != nil {
		f.onBatch(number)
	}
	return models.Batch{
		Number:  number,
		Results: []models.Result{{WorkerID: 1}, {WorkerID: 2, Err: "boom"}},
	}
}

func (f *fakePool) batches() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.numbers...)
}

func TestRunSingleBatch(t *testing.T) {
	pool := &fakePool{}
	var sunk []models.Batch
	r := New(&config.RunConfig{Workers: 2}, pool, func(b models.Batch) error {
		sunk = append(sunk, b)
		return nil
	}, zap.NewNop())

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []int{1}, pool.batches())
	require.Len(t, sunk, 1)
	ok, failed := sunk[0].Counts()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
}

func TestContinuousStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := &fakePool{onBatch: func(n int) {
		if n == 3 {
			cancel()
		}
	}}
	r := New(&config.RunConfig{Workers: 1, Continuous: true, Interval: time.Millisecond}, pool, nil, zap.NewNop())

	require.NoError(t, r.Run(ctx))
	assert.Equal(t, []int{1, 2, 3}, pool.batches())
}

func TestContinuousInterruptedDuringInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := &fakePool{}
	r := New(&config.RunConfig{Workers: 1, Continuous: true, Interval: time.Hour}, pool, nil, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return len(pool.batches()) == 1 }, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("continuous run did not stop after cancel")
	}
	assert.Equal(t, []int{1}, pool.batches())
}

func TestContinuousAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := &fakePool{}
	r := New(&config.RunConfig{Workers: 1, Continuous: true}, pool, nil, zap.NewNop())

	require.NoError(t, r.Run(ctx))
	assert.Empty(t, pool.batches())
}

func TestSinkErrorStopsRun(t *testing.T) {
	pool := &fakePool{}
	errDisk := errors.New("disk full")
	r := New(&config.RunConfig{Workers: 1, Continuous: true}, pool, func(models.Batch) error {
		return errDisk
	}, zap.NewNop())

	err := r.Run(context.Background())
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, []int{1}, pool.batches())
}

func TestRunReportsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	pool := &fakePool{onBatch: func(int) { <-ctx.Done() }}
	r := New(&config.RunConfig{Workers: 1}, pool, nil, zap.NewNop())

	assert.ErrorIs(t, r.Run(ctx), context.DeadlineExceeded)
}
