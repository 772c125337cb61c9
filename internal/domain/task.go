package domain

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// TaskType describes the resource profile of a class of tasks. Catalog
// entries are created once and never mutated.
type TaskType struct {
	Name              string  `json:"name" yaml:"name"`
	CPUIntensity      float64 `json:"cpu_intensity" yaml:"cpu_intensity"`
	MemoryRequirement int     `json:"memory_requirement_mb" yaml:"memory_requirement_mb"`
	IOIntensity       float64 `json:"io_intensity" yaml:"io_intensity"`
}

type LocationState string

const (
	// LocationUnassigned: created but not yet admitted anywhere.
	LocationUnassigned LocationState = "unassigned"
	// LocationQueued: sitting in a processor's pending queue.
	LocationQueued LocationState = "queued"
	// LocationInTransit: withdrawn by the rebalancer, owned by neither queue.
	LocationInTransit LocationState = "in_transit"
	// LocationResolved: execution finished, record about to be discarded.
	LocationResolved LocationState = "resolved"
)

// TaskLocation tags which queue currently owns a task. It is mutated only
// under the lock of the queue performing the transition, so the migration
// ownership invariant is directly observable in tests.
type TaskLocation struct {
	State     LocationState `json:"state"`
	Processor string        `json:"processor,omitempty"`
}

// Task is a unit of work. All fields except Status and Location are
// immutable after construction.
type Task struct {
	ID            string        `json:"id"`
	Priority      int           `json:"priority"`
	ExecutionTime time.Duration `json:"execution_time"`
	ArrivalTime   time.Duration `json:"arrival_time"`
	Type          TaskType      `json:"task_type"`

	Status   TaskStatus   `json:"status"`
	Location TaskLocation `json:"location"`
}

// ProcessorMetrics is the derived health snapshot of a processor. Owned
// exclusively by the processor's queue and recomputed on every mutation.
type ProcessorMetrics struct {
	CPUUsage         float64 `json:"cpu_usage_percent"`
	MemoryUsage      float64 `json:"memory_usage_percent"`
	Temperature      float64 `json:"temperature_celsius"`
	PowerConsumption float64 `json:"power_consumption_watts"`
}

// ProcessorSnapshot is a consistent copy of one processor's observable
// state, taken under that processor's lock. Snapshots from different
// processors may be mutually stale.
type ProcessorSnapshot struct {
	ID                 string           `json:"id"`
	Specialization     []string         `json:"specialization"`
	Load               float64          `json:"load"`
	PendingCount       int              `json:"pending_count"`
	Metrics            ProcessorMetrics `json:"metrics"`
	TasksProcessed     int64            `json:"tasks_processed"`
	SuccessfulTasks    int64            `json:"successful_tasks"`
	FailedTasks        int64            `json:"failed_tasks"`
	TotalExecutionTime time.Duration    `json:"total_execution_time"`
	RecentSuccessRate  float64          `json:"recent_success_rate"`
}

// Specialized reports whether the snapshot's processor carries a
// specialization for the given task type name.
func (s *ProcessorSnapshot) Specialized(typeName string) bool {
	for _, name := range s.Specialization {
		if name == typeName {
			return true
		}
	}
	return false
}
