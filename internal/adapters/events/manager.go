package events

import (
	"log/slog"
	"sync"

	"github.com/ballast-run/ballast/internal/domain"
	"github.com/google/uuid"
)

// Manager fans admission, resolution and rebalance events out to
// registered handlers. It implements ports.EventSink; a handler panic is
// recovered and logged so observability can never corrupt core state.
type Manager struct {
	logger *slog.Logger

	mu                sync.RWMutex
	admittedHandlers  map[string]func(*domain.TaskAdmittedEvent)
	resolvedHandlers  map[string]func(*domain.TaskResolvedEvent)
	rebalanceHandlers map[string]func(*domain.RebalanceEvent)
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		logger:            logger.With("component", "event-manager"),
		admittedHandlers:  make(map[string]func(*domain.TaskAdmittedEvent)),
		resolvedHandlers:  make(map[string]func(*domain.TaskResolvedEvent)),
		rebalanceHandlers: make(map[string]func(*domain.RebalanceEvent)),
	}
}

// OnTaskAdmitted registers a handler and returns a function that removes
// it again.
func (m *Manager) OnTaskAdmitted(handler func(*domain.TaskAdmittedEvent)) func() {
	id := uuid.New().String()

	m.mu.Lock()
	m.admittedHandlers[id] = handler
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.admittedHandlers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) OnTaskResolved(handler func(*domain.TaskResolvedEvent)) func() {
	id := uuid.New().String()

	m.mu.Lock()
	m.resolvedHandlers[id] = handler
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.resolvedHandlers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) OnRebalance(handler func(*domain.RebalanceEvent)) func() {
	id := uuid.New().String()

	m.mu.Lock()
	m.rebalanceHandlers[id] = handler
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.rebalanceHandlers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) TaskAdmitted(event *domain.TaskAdmittedEvent) {
	m.mu.RLock()
	handlers := make([]func(*domain.TaskAdmittedEvent), 0, len(m.admittedHandlers))
	for _, h := range m.admittedHandlers {
		handlers = append(handlers, h)
	}
	m.mu.RUnlock()

	for _, handler := range handlers {
		m.dispatch("task_admitted", func() { handler(event) })
	}
}

func (m *Manager) TaskResolved(event *domain.TaskResolvedEvent) {
	m.mu.RLock()
	handlers := make([]func(*domain.TaskResolvedEvent), 0, len(m.resolvedHandlers))
	for _, h := range m.resolvedHandlers {
		handlers = append(handlers, h)
	}
	m.mu.RUnlock()

	for _, handler := range handlers {
		m.dispatch("task_resolved", func() { handler(event) })
	}
}

func (m *Manager) RebalanceCompleted(event *domain.RebalanceEvent) {
	m.mu.RLock()
	handlers := make([]func(*domain.RebalanceEvent), 0, len(m.rebalanceHandlers))
	for _, h := range m.rebalanceHandlers {
		handlers = append(handlers, h)
	}
	m.mu.RUnlock()

	for _, handler := range handlers {
		m.dispatch("rebalance", func() { handler(event) })
	}
}

func (m *Manager) dispatch(kind string, invoke func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("event handler panicked", "event", kind, "panic", r)
		}
	}()
	invoke()
}
