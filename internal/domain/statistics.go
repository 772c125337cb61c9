package domain

import (
	"time"
)

// ProcessorStats is the per-processor slice of a statistics snapshot.
type ProcessorStats struct {
	ID                 string        `json:"id"`
	Specialization     []string      `json:"specialization"`
	TasksProcessed     int64         `json:"tasks_processed"`
	SuccessfulTasks    int64         `json:"successful_tasks"`
	FailedTasks        int64         `json:"failed_tasks"`
	AvgExecutionTime   time.Duration `json:"avg_execution_time"`
	RecentSuccessRate  float64       `json:"recent_success_rate"`
	CurrentLoad        float64       `json:"current_load"`
	PendingTasks       int           `json:"pending_tasks"`
	Temperature        float64       `json:"temperature"`
	PowerConsumption   float64       `json:"power_consumption"`
	TotalExecutionTime time.Duration `json:"total_execution_time"`
}

// Statistics is a read-only aggregate over the whole pool. Fields from
// different processors may be mutually inconsistent by a few mutations;
// each processor's own fields are internally consistent.
type Statistics struct {
	TasksSubmitted int64            `json:"tasks_submitted"`
	Runtime        time.Duration    `json:"runtime"`
	Processors     []ProcessorStats `json:"processors"`
}
