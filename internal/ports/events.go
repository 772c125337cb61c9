package ports

import (
	"github.com/ballast-run/ballast/internal/domain"
)

// EventSink receives admission, resolution and rebalance notifications.
// A sink must never be able to corrupt core state: events are dispatched
// outside queue locks and sink panics are recovered by the caller.
type EventSink interface {
	TaskAdmitted(event *domain.TaskAdmittedEvent)
	TaskResolved(event *domain.TaskResolvedEvent)
	RebalanceCompleted(event *domain.RebalanceEvent)
}
