package ports

import (
	"github.com/ballast-run/ballast/internal/domain"
)

// Processor is the surface the rebalancer and the statistics aggregation
// operate on. Admit and Withdraw are each atomic with respect to the
// processor's own state; no operation locks across processors.
type Processor interface {
	ID() string
	Admit(task *domain.Task)
	Withdraw() (*domain.Task, bool)
	CurrentLoad() float64
	Snapshot() domain.ProcessorSnapshot
}

// StatisticsQuery exposes the read-only aggregate over the pool.
type StatisticsQuery interface {
	Statistics() domain.Statistics
}
