// Package ballast provides an in-process dynamic task load balancer.
//
// Ballast distributes submitted tasks across a fixed pool of logical
// processors, each with a specialization affinity and a live load/health
// profile, and periodically rebalances pending work away from hotspots.
// Placement uses a weighted-cost heuristic: a processor's current load,
// discounted for specialization and inflated by cpu pressure and
// temperature. Every admitted task runs as its own execution unit and
// resolves after its execution time, feeding per-processor counters and
// derived metrics.
//
// Basic usage:
//
//	lb, err := ballast.New(4, logger)
//	if err != nil {
//	    return err
//	}
//	defer lb.Shutdown(context.Background())
//
//	lb.StartRebalancing()
//	lb.Submit("task-1", 1, 500*time.Millisecond, "compute_intensive")
//
//	stats := lb.Statistics()
package ballast

import (
	"context"
	"log/slog"
	"time"

	"github.com/ballast-run/ballast/internal/adapters/capacity"
	"github.com/ballast-run/ballast/internal/adapters/sampler"
	"github.com/ballast-run/ballast/internal/core"
	"github.com/ballast-run/ballast/internal/domain"
	"github.com/ballast-run/ballast/internal/ports"
)

// Balancer wraps the internal core to provide the public API.
type Balancer struct {
	internal *core.Balancer
}

// New creates a balancer with the given pool size and default settings:
// the built-in task catalog, rotating default specializations, weighted
// cost placement and a static capacity source.
func New(processors int, logger *slog.Logger) (*Balancer, error) {
	if processors <= 0 {
		return nil, domain.NewBalancerError("balancer", "new", domain.ErrEmptyProcessorPool)
	}
	cfg := domain.DefaultConfig()
	cfg.Pool.Processors = processors
	cfg.Logger = logger
	return NewWithConfig(cfg)
}

// NewWithConfig creates a balancer from a full configuration. Zero fields
// are filled from defaults.
func NewWithConfig(cfg *Config) (*Balancer, error) {
	internal, err := core.New(cfg, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Balancer{internal: internal}, nil
}

// NewWithCollaborators creates a balancer with injected capacity and
// sampling collaborators; either may be nil to use the default.
func NewWithCollaborators(cfg *Config, capacitySource CapacitySource, metricsSampler MetricsSampler) (*Balancer, error) {
	internal, err := core.New(cfg, capacitySource, metricsSampler)
	if err != nil {
		return nil, err
	}
	return &Balancer{internal: internal}, nil
}

// Submit places a task on the minimum-cost processor. It fails with
// ErrUnknownTaskType when the type name is not in the catalog and with
// ErrShutdown after Shutdown.
func (b *Balancer) Submit(taskID string, priority int, executionTime time.Duration, taskType string) error {
	return b.internal.Submit(taskID, priority, executionTime, taskType)
}

// Statistics returns a read-only aggregate over the pool.
func (b *Balancer) Statistics() Statistics {
	return b.internal.Statistics()
}

// StartRebalancing begins the periodic migration loop. Idempotent.
func (b *Balancer) StartRebalancing() error {
	return b.internal.StartRebalancing()
}

// Shutdown stops rebalancing and waits for outstanding execution units
// until the context expires; the rest are abandoned.
func (b *Balancer) Shutdown(ctx context.Context) error {
	return b.internal.Shutdown(ctx)
}

// OnTaskAdmitted registers a handler for admission events. The returned
// function unregisters it.
func (b *Balancer) OnTaskAdmitted(handler func(*TaskAdmittedEvent)) func() {
	return b.internal.Events().OnTaskAdmitted(handler)
}

// OnTaskResolved registers a handler for resolution events.
func (b *Balancer) OnTaskResolved(handler func(*TaskResolvedEvent)) func() {
	return b.internal.Events().OnTaskResolved(handler)
}

// OnRebalance registers a handler for rebalance events.
func (b *Balancer) OnRebalance(handler func(*RebalanceEvent)) func() {
	return b.internal.Events().OnRebalance(handler)
}

// RegisterTaskType adds a custom task type to the catalog.
func (b *Balancer) RegisterTaskType(t TaskType) error {
	return b.internal.Catalog().Register(t)
}

// TaskTypes lists the registered task type names.
func (b *Balancer) TaskTypes() []string {
	return b.internal.Catalog().Names()
}

// RebalancerMetrics reports the control loop's state and counters.
func (b *Balancer) RebalancerMetrics() map[string]interface{} {
	return b.internal.RebalancerMetrics()
}

// NewStaticCapacity returns a capacity source serving a fixed value.
func NewStaticCapacity(value float64) CapacitySource {
	return capacity.NewStatic(value)
}

// NewCPUFrequencyCapacity returns a capacity source backed by the host
// CPU's clock speed in MHz.
func NewCPUFrequencyCapacity() CapacitySource {
	return capacity.NewCPUFrequency()
}

// NewSeededSampler returns the simulated metrics sampler with a fixed
// seed for reproducible runs.
func NewSeededSampler(seed int64) MetricsSampler {
	return sampler.New(seed)
}

var _ ports.StatisticsQuery = (*Balancer)(nil)
