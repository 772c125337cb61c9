package events

import (
	"testing"

	"github.com/ballast-run/ballast/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHandlersReceiveEvents(t *testing.T) {
	m := NewManager(nil)

	var admitted []*domain.TaskAdmittedEvent
	var resolved []*domain.TaskResolvedEvent
	var rebalances []*domain.RebalanceEvent

	m.OnTaskAdmitted(func(e *domain.TaskAdmittedEvent) { admitted = append(admitted, e) })
	m.OnTaskResolved(func(e *domain.TaskResolvedEvent) { resolved = append(resolved, e) })
	m.OnRebalance(func(e *domain.RebalanceEvent) { rebalances = append(rebalances, e) })

	m.TaskAdmitted(&domain.TaskAdmittedEvent{TaskID: "a", ProcessorID: "p0"})
	m.TaskResolved(&domain.TaskResolvedEvent{TaskID: "a", Status: domain.TaskStatusCompleted})
	m.RebalanceCompleted(&domain.RebalanceEvent{FromProcessor: "p0", ToProcessor: "p1"})

	assert.Len(t, admitted, 1)
	assert.Equal(t, "a", admitted[0].TaskID)
	assert.Len(t, resolved, 1)
	assert.Equal(t, domain.TaskStatusCompleted, resolved[0].Status)
	assert.Len(t, rebalances, 1)
}

func TestMultipleHandlers(t *testing.T) {
	m := NewManager(nil)

	first, second := 0, 0
	m.OnTaskAdmitted(func(*domain.TaskAdmittedEvent) { first++ })
	m.OnTaskAdmitted(func(*domain.TaskAdmittedEvent) { second++ })

	m.TaskAdmitted(&domain.TaskAdmittedEvent{TaskID: "a"})

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestUnsubscribe(t *testing.T) {
	m := NewManager(nil)

	calls := 0
	unsubscribe := m.OnTaskAdmitted(func(*domain.TaskAdmittedEvent) { calls++ })

	m.TaskAdmitted(&domain.TaskAdmittedEvent{TaskID: "a"})
	unsubscribe()
	m.TaskAdmitted(&domain.TaskAdmittedEvent{TaskID: "b"})

	assert.Equal(t, 1, calls)
}

func TestPanickingHandlerIsolated(t *testing.T) {
	m := NewManager(nil)

	m.OnTaskAdmitted(func(*domain.TaskAdmittedEvent) { panic("handler down") })

	calls := 0
	m.OnTaskAdmitted(func(*domain.TaskAdmittedEvent) { calls++ })

	assert.NotPanics(t, func() {
		m.TaskAdmitted(&domain.TaskAdmittedEvent{TaskID: "a"})
	})
	assert.Equal(t, 1, calls)
}

func TestNoHandlersIsValid(t *testing.T) {
	m := NewManager(nil)

	assert.NotPanics(t, func() {
		m.TaskAdmitted(&domain.TaskAdmittedEvent{TaskID: "a"})
		m.TaskResolved(&domain.TaskResolvedEvent{TaskID: "a"})
		m.RebalanceCompleted(&domain.RebalanceEvent{})
	})
}
