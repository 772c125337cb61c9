package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ballast-run/ballast/internal/adapters/capacity"
	"github.com/ballast-run/ballast/internal/adapters/catalog"
	"github.com/ballast-run/ballast/internal/adapters/events"
	"github.com/ballast-run/ballast/internal/adapters/placement"
	"github.com/ballast-run/ballast/internal/adapters/processor"
	"github.com/ballast-run/ballast/internal/adapters/rebalancer"
	"github.com/ballast-run/ballast/internal/adapters/sampler"
	"github.com/ballast-run/ballast/internal/domain"
	"github.com/ballast-run/ballast/internal/ports"
)

// Balancer owns the processor pool and wires submission through placement
// into the chosen queue. The pool is fixed at construction; only
// per-processor state mutates afterwards, so the pool slice itself is safe
// for unsynchronized iteration.
type Balancer struct {
	config     *domain.Config
	logger     *slog.Logger
	catalog    *catalog.Catalog
	events     *events.Manager
	sampler    ports.MetricsSampler
	queues     []*processor.Queue
	handles    []ports.Processor
	byID       map[string]*processor.Queue
	strategy   placement.Strategy
	rebalancer *rebalancer.Manager

	startTime      time.Time
	tasksSubmitted atomic.Int64

	mu       sync.Mutex
	shutdown bool
}

// New constructs a balancer from the config. The capacity source and the
// sampler are injectable; nil picks the defaults (a static capacity at
// the configured default value, and the clock-seeded simulated sampler).
func New(cfg *domain.Config, capacitySource ports.CapacitySource, metricsSampler ports.MetricsSampler) (*Balancer, error) {
	cfg, err := cfg.WithDefaults()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := buildCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	if capacitySource == nil {
		capacitySource = capacity.NewStatic(cfg.Pool.DefaultCapacity)
	}
	if metricsSampler == nil {
		metricsSampler = sampler.New(cfg.Sampler.Seed)
	}

	eventManager := events.NewManager(logger)

	queues := make([]*processor.Queue, 0, cfg.Pool.Processors)
	handles := make([]ports.Processor, 0, cfg.Pool.Processors)
	byID := make(map[string]*processor.Queue, cfg.Pool.Processors)

	specs := cfg.Pool.Specializations
	if len(specs) == 0 {
		specs = domain.DefaultSpecializations()
	}

	for i := 0; i < cfg.Pool.Processors; i++ {
		id := fmt.Sprintf("processor-%d", i)
		q := processor.New(id, specs[i%len(specs)], capacitySource, metricsSampler, eventManager,
			processor.Config{DefaultCapacity: cfg.Pool.DefaultCapacity}, logger)
		queues = append(queues, q)
		handles = append(handles, q)
		byID[id] = q
	}

	b := &Balancer{
		config:     cfg,
		logger:     logger.With("component", "balancer"),
		catalog:    cat,
		events:     eventManager,
		sampler:    metricsSampler,
		queues:     queues,
		handles:    handles,
		byID:       byID,
		strategy:   placement.New(cfg.Placement, logger),
		rebalancer: rebalancer.NewManager(handles, cfg.Rebalancer, eventManager, logger),
		startTime:  time.Now(),
	}

	b.logger.Info("balancer constructed",
		"processors", len(queues),
		"placement", b.strategy.Name(),
		"load_threshold", cfg.Rebalancer.LoadThreshold,
		"interval", cfg.Rebalancer.Interval)

	return b, nil
}

func buildCatalog(cfg domain.CatalogConfig) (*catalog.Catalog, error) {
	var cat *catalog.Catalog
	if cfg.IncludeBuiltins == nil || *cfg.IncludeBuiltins {
		cat = catalog.NewWithBuiltins()
	} else {
		cat = catalog.New()
	}

	for _, t := range cfg.Types {
		if err := cat.Register(t); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// Submit creates a task and places it on the minimum-cost processor. An
// unknown type name is rejected synchronously with no side effects.
func (b *Balancer) Submit(id string, priority int, executionTime time.Duration, typeName string) error {
	b.mu.Lock()
	if b.shutdown {
		b.mu.Unlock()
		return domain.NewBalancerError("balancer", "submit", domain.ErrShutdown)
	}
	b.mu.Unlock()

	taskType, ok := b.catalog.Lookup(typeName)
	if !ok {
		return domain.NewBalancerError("balancer", "submit",
			fmt.Errorf("%w: %q", domain.ErrUnknownTaskType, typeName))
	}

	task := &domain.Task{
		ID:            id,
		Priority:      priority,
		ExecutionTime: executionTime,
		ArrivalTime:   time.Since(b.startTime),
		Type:          taskType,
		Status:        domain.TaskStatusPending,
		Location:      domain.TaskLocation{State: domain.LocationUnassigned},
	}

	snapshots := b.snapshots()
	selected, err := b.strategy.SelectProcessor(task, snapshots)
	if err != nil {
		return err
	}

	queue, ok := b.byID[selected]
	if !ok {
		return domain.NewBalancerError("balancer", "submit",
			fmt.Errorf("placement selected unknown processor %q", selected))
	}

	queue.Admit(task)
	b.tasksSubmitted.Add(1)

	return nil
}

func (b *Balancer) snapshots() []domain.ProcessorSnapshot {
	snapshots := make([]domain.ProcessorSnapshot, 0, len(b.queues))
	for _, q := range b.queues {
		snapshots = append(snapshots, q.Snapshot())
	}
	return snapshots
}

// Statistics aggregates per-processor counters. It only reads; repeated
// calls without intervening mutations return identical results.
func (b *Balancer) Statistics() domain.Statistics {
	stats := domain.Statistics{
		TasksSubmitted: b.tasksSubmitted.Load(),
		Runtime:        time.Since(b.startTime),
		Processors:     make([]domain.ProcessorStats, 0, len(b.queues)),
	}

	for _, snap := range b.snapshots() {
		var avg time.Duration
		if snap.TasksProcessed > 0 {
			avg = snap.TotalExecutionTime / time.Duration(snap.TasksProcessed)
		}

		stats.Processors = append(stats.Processors, domain.ProcessorStats{
			ID:                 snap.ID,
			Specialization:     snap.Specialization,
			TasksProcessed:     snap.TasksProcessed,
			SuccessfulTasks:    snap.SuccessfulTasks,
			FailedTasks:        snap.FailedTasks,
			AvgExecutionTime:   avg,
			RecentSuccessRate:  snap.RecentSuccessRate,
			CurrentLoad:        snap.Load,
			PendingTasks:       snap.PendingCount,
			Temperature:        snap.Metrics.Temperature,
			PowerConsumption:   snap.Metrics.PowerConsumption,
			TotalExecutionTime: snap.TotalExecutionTime,
		})
	}

	return stats
}

// StartRebalancing begins the periodic migration loop. Idempotent.
func (b *Balancer) StartRebalancing() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shutdown {
		return domain.NewBalancerError("balancer", "start-rebalancing", domain.ErrShutdown)
	}
	return b.rebalancer.Start(context.Background())
}

// Shutdown stops the rebalancing loop and closes every queue. Outstanding
// execution units are awaited until the context expires, then abandoned.
func (b *Balancer) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	if b.shutdown {
		b.mu.Unlock()
		return nil
	}
	b.shutdown = true
	b.mu.Unlock()

	if b.rebalancer.IsRunning() {
		if err := b.rebalancer.Stop(); err != nil {
			b.logger.Warn("stopping rebalancer failed", "error", err)
		}
	}

	var firstErr error
	for _, q := range b.queues {
		if err := q.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	b.logger.Info("balancer shut down", "tasks_submitted", b.tasksSubmitted.Load())
	return firstErr
}

// Events exposes handler registration for admission, resolution and
// rebalance notifications.
func (b *Balancer) Events() *events.Manager {
	return b.events
}

// Catalog exposes the task-type registry.
func (b *Balancer) Catalog() *catalog.Catalog {
	return b.catalog
}

// RebalancerMetrics reports the control loop's counters and state.
func (b *Balancer) RebalancerMetrics() map[string]interface{} {
	return b.rebalancer.Metrics()
}
