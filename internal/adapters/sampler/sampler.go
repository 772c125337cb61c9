package sampler

import (
	"math/rand"
	"sync"
	"time"
)

// Simulated is the default MetricsSampler: one seeded rand.Rand behind a
// mutex owns all of the core's randomness, so a fixed seed makes runs
// reproducible.
type Simulated struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a sampler from the given seed; a zero seed falls back to
// the clock.
func New(seed int64) *Simulated {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulated{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// SampleMemoryUsage returns a uniform memory usage figure in [20, 80).
func (s *Simulated) SampleMemoryUsage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 20 + s.rng.Float64()*60
}

func (s *Simulated) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
