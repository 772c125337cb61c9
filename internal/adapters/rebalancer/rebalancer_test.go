package rebalancer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ballast-run/ballast/internal/adapters/processor"
	"github.com/ballast-run/ballast/internal/domain"
	"github.com/ballast-run/ballast/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSampler struct{}

func (stubSampler) SampleMemoryUsage() float64 { return 50 }
func (stubSampler) Float64() float64           { return 0.5 }

type recordingSink struct {
	mu     sync.Mutex
	events []*domain.RebalanceEvent
}

func (r *recordingSink) TaskAdmitted(*domain.TaskAdmittedEvent) {}
func (r *recordingSink) TaskResolved(*domain.TaskResolvedEvent) {}

func (r *recordingSink) RebalanceCompleted(e *domain.RebalanceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newQueue(id string) *processor.Queue {
	source := ports.CapacityFunc(func(string) (float64, error) { return 100, nil })
	return processor.New(id, nil, source, stubSampler{}, nil, processor.Config{}, nil)
}

func fill(q *processor.Queue, n int) {
	for i := 0; i < n; i++ {
		q.Admit(&domain.Task{
			ID:            fmt.Sprintf("%s-%d", q.ID(), i),
			Priority:      1,
			ExecutionTime: time.Hour,
			Type:          domain.TaskType{Name: "balanced"},
			Status:        domain.TaskStatusPending,
		})
	}
}

func handles(queues ...*processor.Queue) []ports.Processor {
	out := make([]ports.Processor, len(queues))
	for i, q := range queues {
		out[i] = q
	}
	return out
}

func TestSkewAboveThresholdMigratesHalf(t *testing.T) {
	busy := newQueue("p0")
	idle := newQueue("p1")
	fill(busy, 11)

	sink := &recordingSink{}
	m := NewManager(handles(busy, idle), domain.RebalancerConfig{
		Interval:      time.Second,
		LoadThreshold: 10,
	}, sink, nil)

	m.rebalanceOnce()

	assert.Equal(t, 6, busy.PendingCount())
	assert.Equal(t, 5, idle.PendingCount())

	require.Equal(t, 1, sink.count())
	event := sink.events[0]
	assert.Equal(t, "p0", event.FromProcessor)
	assert.Equal(t, "p1", event.ToProcessor)
	assert.Equal(t, 5, event.Requested)
	assert.Equal(t, 5, event.Moved)
	assert.Equal(t, 11.0, event.FromLoad)
	assert.Equal(t, 0.0, event.ToLoad)
	assert.Equal(t, 6.0, event.FromLoadAfter)
	assert.Equal(t, 5.0, event.ToLoadAfter)
}

func TestSkewAtThresholdDoesNothing(t *testing.T) {
	busy := newQueue("p0")
	idle := newQueue("p1")
	fill(busy, 10)

	sink := &recordingSink{}
	m := NewManager(handles(busy, idle), domain.RebalancerConfig{
		Interval:      time.Second,
		LoadThreshold: 10,
	}, sink, nil)

	// Skew is exactly the threshold; migration requires strictly greater.
	m.rebalanceOnce()

	assert.Equal(t, 10, busy.PendingCount())
	assert.Equal(t, 0, idle.PendingCount())
	assert.Equal(t, 0, sink.count())
}

func TestNoTaskLostDuringMigration(t *testing.T) {
	busy := newQueue("p0")
	idle := newQueue("p1")
	spare := newQueue("p2")
	fill(busy, 17)
	fill(spare, 3)

	m := NewManager(handles(busy, idle, spare), domain.RebalancerConfig{
		Interval:      time.Second,
		LoadThreshold: 5,
	}, nil, nil)

	m.rebalanceOnce()

	total := busy.PendingCount() + idle.PendingCount() + spare.PendingCount()
	assert.Equal(t, 20, total)
	assert.Equal(t, 9, busy.PendingCount())
	assert.Equal(t, 8, idle.PendingCount())
}

func TestSingleProcessorIsNoOp(t *testing.T) {
	only := newQueue("p0")
	fill(only, 9)

	m := NewManager(handles(only), domain.RebalancerConfig{
		Interval:      time.Second,
		LoadThreshold: 1,
	}, nil, nil)

	m.rebalanceOnce()

	assert.Equal(t, 9, only.PendingCount())
}

func TestStartIsIdempotent(t *testing.T) {
	m := NewManager(handles(newQueue("p0"), newQueue("p1")), domain.RebalancerConfig{
		Interval:      10 * time.Millisecond,
		LoadThreshold: 70,
	}, nil, nil)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Start(context.Background()))
	assert.True(t, m.IsRunning())

	require.NoError(t, m.Stop())
	assert.False(t, m.IsRunning())

	err := m.Stop()
	assert.True(t, domain.IsNotStarted(err))
}

func TestLoopMigratesOnTick(t *testing.T) {
	busy := newQueue("p0")
	idle := newQueue("p1")
	fill(busy, 20)

	sink := &recordingSink{}
	m := NewManager(handles(busy, idle), domain.RebalancerConfig{
		Interval:      10 * time.Millisecond,
		LoadThreshold: 10,
	}, sink, nil)

	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Stop() }()

	require.Eventually(t, func() bool { return sink.count() >= 1 }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 20, busy.PendingCount()+idle.PendingCount())
}

func TestMetrics(t *testing.T) {
	busy := newQueue("p0")
	idle := newQueue("p1")
	fill(busy, 12)

	m := NewManager(handles(busy, idle), domain.RebalancerConfig{
		Interval:      time.Second,
		LoadThreshold: 10,
	}, nil, nil)

	metrics := m.Metrics()
	assert.Equal(t, string(StateIdle), metrics["state"])
	assert.Equal(t, false, metrics["running"])
	assert.Equal(t, int64(0), metrics["rebalances"])

	m.rebalanceOnce()

	metrics = m.Metrics()
	assert.Equal(t, int64(1), metrics["rebalances"])
	assert.Equal(t, int64(6), metrics["tasks_moved"])
}
