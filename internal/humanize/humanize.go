// Package humanize draws the randomized timings and scroll amounts used to
// pace a browser session.
package humanize

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Rand is a goroutine-safe random source. The zero value is not usable;
// construct one with New or NewSeeded.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a Rand seeded from the runtime's entropy source.
func New() *Rand {
	return &Rand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a deterministic Rand, mainly for tests.
func NewSeeded(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntRange returns a uniform integer in [min, max]. If max <= min it returns min.
func (h *Rand) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return min + h.r.IntN(max-min+1)
}

// Duration returns a uniform duration in [min, max]. If max <= min it returns min.
func (h *Rand) Duration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return min + time.Duration(h.r.Int64N(int64(max-min)+1))
}

// Index returns a uniform index in [0, n). n must be positive.
func (h *Rand) Index(n int) int {
	return h.IntRange(0, n-1)
}

// ScrollBounds bounds a scroll plan
type ScrollBounds struct {
	MinSteps  int
	MaxSteps  int
	MinPixels int
	MaxPixels int
	MinPause  time.Duration
	MaxPause  time.Duration
}

// ScrollStep is one downward scroll followed by a pause
type ScrollStep struct {
	Pixels int
	Pause  time.Duration
}

// ScrollPlan draws a number of steps in [MinSteps, MaxSteps], each with a
// pixel offset and pause inside their bounds.
func (h *Rand) ScrollPlan(b ScrollBounds) []ScrollStep {
	n := h.IntRange(b.MinSteps, b.MaxSteps)
	steps := make([]ScrollStep, n)
	for i := range steps {
		steps[i] = ScrollStep{
			Pixels: h.IntRange(b.MinPixels, b.MaxPixels),
			Pause:  h.Duration(b.MinPause, b.MaxPause),
		}
	}
	return steps
}
