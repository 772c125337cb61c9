package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ballast-run/ballast/internal/domain"
)

// Catalog is the static task-type registry. Entries are immutable once
// registered; registration happens at construction time, before any
// submission traffic.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]domain.TaskType
}

func New() *Catalog {
	return &Catalog{
		types: make(map[string]domain.TaskType),
	}
}

// NewWithBuiltins returns a catalog seeded with the four built-in
// resource profiles.
func NewWithBuiltins() *Catalog {
	c := New()
	for _, t := range Builtins() {
		c.types[t.Name] = t
	}
	return c
}

func Builtins() []domain.TaskType {
	return []domain.TaskType{
		{Name: "compute_intensive", CPUIntensity: 0.9, MemoryRequirement: 200, IOIntensity: 0.1},
		{Name: "memory_intensive", CPUIntensity: 0.3, MemoryRequirement: 800, IOIntensity: 0.2},
		{Name: "io_intensive", CPUIntensity: 0.2, MemoryRequirement: 100, IOIntensity: 0.9},
		{Name: "balanced", CPUIntensity: 0.5, MemoryRequirement: 400, IOIntensity: 0.5},
	}
}

func (c *Catalog) Register(t domain.TaskType) error {
	if t.Name == "" {
		return domain.NewBalancerError("catalog", "register",
			fmt.Errorf("%w: task type name must not be empty", domain.ErrInvalidConfig))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.types[t.Name]; exists {
		return domain.NewBalancerError("catalog", "register",
			fmt.Errorf("%w: task type %q already registered", domain.ErrInvalidConfig, t.Name))
	}

	c.types[t.Name] = t
	return nil
}

func (c *Catalog) Lookup(name string) (domain.TaskType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.types[name]
	return t, ok
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.types)
}
