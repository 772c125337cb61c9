package ballast

import (
	"github.com/ballast-run/ballast/internal/domain"
	"github.com/ballast-run/ballast/internal/ports"
)

// Config is the full balancer configuration tree.
type Config = domain.Config

type PoolConfig = domain.PoolConfig

type PlacementConfig = domain.PlacementConfig

type RebalancerConfig = domain.RebalancerConfig

type CatalogConfig = domain.CatalogConfig

type SamplerConfig = domain.SamplerConfig

// PlacementAlgorithm selects how incoming tasks are scored.
type PlacementAlgorithm = domain.PlacementAlgorithm

const (
	AlgorithmWeightedCost PlacementAlgorithm = domain.AlgorithmWeightedCost
	AlgorithmLeastLoaded  PlacementAlgorithm = domain.AlgorithmLeastLoaded
	AlgorithmRoundRobin   PlacementAlgorithm = domain.AlgorithmRoundRobin
)

// TaskType describes a task class's resource profile.
type TaskType = domain.TaskType

// Task is a submitted unit of work.
type Task = domain.Task

type TaskStatus = domain.TaskStatus

const (
	TaskStatusPending   TaskStatus = domain.TaskStatusPending
	TaskStatusRunning   TaskStatus = domain.TaskStatusRunning
	TaskStatusCompleted TaskStatus = domain.TaskStatusCompleted
	TaskStatusFailed    TaskStatus = domain.TaskStatusFailed
)

// ProcessorMetrics is a processor's derived health snapshot.
type ProcessorMetrics = domain.ProcessorMetrics

// ProcessorStats is the per-processor slice of Statistics.
type ProcessorStats = domain.ProcessorStats

// Statistics is the read-only aggregate over the whole pool.
type Statistics = domain.Statistics

// Event types for observability.

// TaskAdmittedEvent is emitted when a task enters a processor's queue.
type TaskAdmittedEvent = domain.TaskAdmittedEvent

// TaskResolvedEvent is emitted when a task's execution unit settles it.
type TaskResolvedEvent = domain.TaskResolvedEvent

// RebalanceEvent is emitted after a migration batch completes.
type RebalanceEvent = domain.RebalanceEvent

// Collaborator contracts.

// CapacitySource converts a processor identity into its capacity.
type CapacitySource = ports.CapacitySource

// CapacityFunc adapts a function to a CapacitySource.
type CapacityFunc = ports.CapacityFunc

// MetricsSampler owns the core's stochastic inputs.
type MetricsSampler = ports.MetricsSampler

// EventSink receives admission, resolution and rebalance notifications.
type EventSink = ports.EventSink

// Error sentinels, matchable with errors.Is.
var (
	ErrUnknownTaskType    = domain.ErrUnknownTaskType
	ErrEmptyProcessorPool = domain.ErrEmptyProcessorPool
	ErrShutdown           = domain.ErrShutdown
	ErrInvalidConfig      = domain.ErrInvalidConfig
)

// DefaultConfig returns the default configuration: one processor per CPU,
// rotating specializations, weighted-cost placement, 70-point threshold,
// one-second interval.
func DefaultConfig() *Config {
	return domain.DefaultConfig()
}

// LoadConfig reads a YAML or JSON configuration file and applies
// defaults.
func LoadConfig(path string) (*Config, error) {
	return domain.LoadConfig(path)
}
