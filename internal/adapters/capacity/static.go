package capacity

import (
	"sync"

	"github.com/ballast-run/ballast/internal/domain"
)

// Static serves a fixed capacity figure, optionally overridden per
// processor.
type Static struct {
	mu        sync.RWMutex
	value     float64
	overrides map[string]float64
}

func NewStatic(value float64) *Static {
	if value <= 0 {
		value = domain.DefaultCapacity
	}
	return &Static{
		value:     value,
		overrides: make(map[string]float64),
	}
}

// SetOverride pins a capacity for one processor, overriding the shared
// value.
func (s *Static) SetOverride(processorID string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[processorID] = value
}

func (s *Static) CapacityOf(processorID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.overrides[processorID]; ok {
		return v, nil
	}
	return s.value, nil
}
