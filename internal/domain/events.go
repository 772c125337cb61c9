package domain

import (
	"time"
)

type TaskAdmittedEvent struct {
	ProcessorID string        `json:"processor_id"`
	TaskID      string        `json:"task_id"`
	Priority    int           `json:"priority"`
	TaskType    string        `json:"task_type"`
	Load        float64       `json:"load"`
	Temperature float64       `json:"temperature"`
	Migrated    bool          `json:"migrated,omitempty"`
	ArrivalTime time.Duration `json:"arrival_time"`
	AdmittedAt  time.Time     `json:"admitted_at"`
}

type TaskResolvedEvent struct {
	ProcessorID string        `json:"processor_id"`
	TaskID      string        `json:"task_id"`
	Priority    int           `json:"priority"`
	TaskType    string        `json:"task_type"`
	Status      TaskStatus    `json:"status"`
	Load        float64       `json:"load"`
	CPUUsage    float64       `json:"cpu_usage"`
	Duration    time.Duration `json:"duration"`
	ResolvedAt  time.Time     `json:"resolved_at"`
}

type RebalanceEvent struct {
	FromProcessor string    `json:"from_processor"`
	ToProcessor   string    `json:"to_processor"`
	Requested     int       `json:"requested"`
	Moved         int       `json:"moved"`
	FromLoad      float64   `json:"from_load"`
	ToLoad        float64   `json:"to_load"`
	FromLoadAfter float64   `json:"from_load_after"`
	ToLoadAfter   float64   `json:"to_load_after"`
	OccurredAt    time.Time `json:"occurred_at"`
}
