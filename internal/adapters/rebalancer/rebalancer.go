package rebalancer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ballast-run/ballast/internal/domain"
	"github.com/ballast-run/ballast/internal/ports"
)

type State string

const (
	StateIdle        State = "idle"
	StateRebalancing State = "rebalancing"
)

// Manager is the periodic control loop that migrates pending tasks from
// the most-loaded to the least-loaded processor when the load skew
// strictly exceeds the threshold.
type Manager struct {
	processors []ports.Processor
	interval   time.Duration
	threshold  float64
	sink       ports.EventSink
	logger     *slog.Logger

	mu         sync.Mutex
	running    bool
	state      State
	rebalances int64
	tasksMoved int64
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewManager(processors []ports.Processor, cfg domain.RebalancerConfig,
	sink ports.EventSink, logger *slog.Logger) *Manager {

	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = domain.DefaultInterval
	}

	return &Manager{
		processors: processors,
		interval:   cfg.Interval,
		threshold:  cfg.LoadThreshold,
		sink:       sink,
		logger:     logger.With("component", "rebalancer"),
		state:      StateIdle,
	}
}

// Start begins the monitoring loop. Calling Start on a running manager is
// a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.running = true

	go m.loop()

	m.logger.Info("rebalancer started",
		"interval", m.interval,
		"load_threshold", m.threshold)
	return nil
}

// Stop halts the loop. In-flight task executions are unaffected.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return domain.NewBalancerError("rebalancer", "stop", domain.ErrNotStarted)
	}

	m.cancel()
	m.running = false

	m.logger.Info("rebalancer stopped")
	return nil
}

func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.rebalanceOnce()
		}
	}
}

type loadSample struct {
	processor ports.Processor
	load      float64
	pending   int
}

// rebalanceOnce performs a single tick: snapshot loads, detect skew,
// migrate. The snapshot takes no cross-processor lock, and the move count
// is fixed at decision time even if the source queue changes while the
// migration runs.
func (m *Manager) rebalanceOnce() {
	m.setState(StateRebalancing)
	defer m.setState(StateIdle)

	samples := make([]loadSample, 0, len(m.processors))
	for _, p := range m.processors {
		snap := p.Snapshot()
		samples = append(samples, loadSample{processor: p, load: snap.Load, pending: snap.PendingCount})
	}
	if len(samples) < 2 {
		return
	}

	most, least := samples[0], samples[0]
	for _, s := range samples[1:] {
		if s.load > most.load {
			most = s
		}
		if s.load < least.load {
			least = s
		}
	}

	if most.load-least.load <= m.threshold {
		return
	}

	toMove := most.pending / 2

	m.logger.Info("rebalancing",
		"from", most.processor.ID(),
		"to", least.processor.ID(),
		"from_load", most.load,
		"to_load", least.load,
		"tasks_to_move", toMove)

	moved := 0
	for i := 0; i < toMove; i++ {
		task, ok := most.processor.Withdraw()
		if !ok {
			break
		}
		least.processor.Admit(task)
		moved++
	}

	m.mu.Lock()
	m.rebalances++
	m.tasksMoved += int64(moved)
	m.mu.Unlock()

	event := &domain.RebalanceEvent{
		FromProcessor: most.processor.ID(),
		ToProcessor:   least.processor.ID(),
		Requested:     toMove,
		Moved:         moved,
		FromLoad:      most.load,
		ToLoad:        least.load,
		FromLoadAfter: most.processor.CurrentLoad(),
		ToLoadAfter:   least.processor.CurrentLoad(),
		OccurredAt:    time.Now(),
	}

	m.logger.Info("rebalance complete",
		"from", event.FromProcessor,
		"to", event.ToProcessor,
		"moved", moved,
		"from_load_after", event.FromLoadAfter,
		"to_load_after", event.ToLoadAfter)

	m.emit(event)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Manager) Metrics() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]interface{}{
		"state":       string(m.state),
		"running":     m.running,
		"rebalances":  m.rebalances,
		"tasks_moved": m.tasksMoved,
		"interval":    m.interval.String(),
		"threshold":   m.threshold,
	}
}

func (m *Manager) emit(event *domain.RebalanceEvent) {
	if m.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("event sink panicked", "event", "rebalance", "panic", r)
		}
	}()
	m.sink.RebalanceCompleted(event)
}
