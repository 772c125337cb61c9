package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ballast-run/ballast/internal/domain"
	"github.com/ballast-run/ballast/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSampler struct {
	memory float64
	draw   float64
}

func (s *stubSampler) SampleMemoryUsage() float64 { return s.memory }
func (s *stubSampler) Float64() float64           { return s.draw }

func testConfig(processors int, specializations [][]string) *domain.Config {
	return &domain.Config{
		Pool: domain.PoolConfig{
			Processors:      processors,
			Specializations: specializations,
			DefaultCapacity: 100,
		},
		Placement: domain.PlacementConfig{
			Algorithm:              domain.AlgorithmWeightedCost,
			SpecializationDiscount: 0.7,
		},
		Rebalancer: domain.RebalancerConfig{
			Interval:      10 * time.Millisecond,
			LoadThreshold: 10,
		},
	}
}

func newBalancer(t *testing.T, processors int, specializations [][]string) *Balancer {
	t.Helper()

	b, err := New(testConfig(processors, specializations),
		ports.CapacityFunc(func(string) (float64, error) { return 100, nil }),
		&stubSampler{memory: 50, draw: 0.5})
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_ = b.Shutdown(ctx)
	})

	return b
}

func TestConstructionRejectsNegativePool(t *testing.T) {
	cfg := testConfig(-1, nil)

	_, err := New(cfg, nil, nil)
	assert.True(t, domain.IsEmptyProcessorPool(err))
}

func TestSubmitUnknownTypeRejected(t *testing.T) {
	b := newBalancer(t, 2, nil)

	err := b.Submit("t1", 1, time.Second, "quantum_intensive")
	assert.True(t, domain.IsUnknownTaskType(err))

	stats := b.Statistics()
	assert.Equal(t, int64(0), stats.TasksSubmitted)
	for _, p := range stats.Processors {
		assert.Equal(t, 0, p.PendingTasks)
	}
}

func TestSubmitRoutesToSpecializedProcessor(t *testing.T) {
	b := newBalancer(t, 2, [][]string{{"compute_intensive"}, {}})

	var mu sync.Mutex
	var admissions []string
	b.Events().OnTaskAdmitted(func(e *domain.TaskAdmittedEvent) {
		mu.Lock()
		defer mu.Unlock()
		admissions = append(admissions, e.ProcessorID)
	})

	// All processors start at zero load where every weight is zero, so
	// the first submission ties and lands on processor-0 — which also
	// carries the specialization.
	require.NoError(t, b.Submit("t1", 1, time.Hour, "compute_intensive"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, admissions, 1)
	assert.Equal(t, "processor-0", admissions[0])
}

func TestNoTaskLostAcrossPool(t *testing.T) {
	b := newBalancer(t, 3, nil)

	const total = 30
	for i := 0; i < total; i++ {
		require.NoError(t, b.Submit(fmt.Sprintf("t%d", i), 1, time.Hour, "balanced"))
	}

	stats := b.Statistics()
	assert.Equal(t, int64(total), stats.TasksSubmitted)

	pending := 0
	for _, p := range stats.Processors {
		pending += p.PendingTasks
	}
	assert.Equal(t, total, pending)
}

func TestStatisticsIdempotent(t *testing.T) {
	b := newBalancer(t, 2, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Submit(fmt.Sprintf("t%d", i), 1, time.Hour, "balanced"))
	}

	first := b.Statistics()
	second := b.Statistics()

	assert.Equal(t, first.TasksSubmitted, second.TasksSubmitted)
	assert.Equal(t, first.Processors, second.Processors)
}

func TestAvgExecutionTimeZeroWithoutResolutions(t *testing.T) {
	b := newBalancer(t, 2, nil)

	for _, p := range b.Statistics().Processors {
		assert.Equal(t, time.Duration(0), p.AvgExecutionTime)
		assert.Equal(t, int64(0), p.TasksProcessed)
	}
}

func TestResolutionFeedsStatistics(t *testing.T) {
	b := newBalancer(t, 1, [][]string{{}})

	require.NoError(t, b.Submit("t1", 1, 10*time.Millisecond, "balanced"))
	require.NoError(t, b.Submit("t2", 1, 30*time.Millisecond, "balanced"))

	require.Eventually(t, func() bool {
		return b.Statistics().Processors[0].TasksProcessed == 2
	}, 2*time.Second, 5*time.Millisecond)

	p := b.Statistics().Processors[0]
	assert.Equal(t, int64(2), p.SuccessfulTasks)
	assert.Equal(t, 20*time.Millisecond, p.AvgExecutionTime)
	assert.Equal(t, 0.0, p.CurrentLoad)
}

func TestRebalancingMovesWork(t *testing.T) {
	cfg := testConfig(2, [][]string{{"compute_intensive"}, {}})
	// Small capacity so each pending task is worth 10 load points.
	b, err := New(cfg, ports.CapacityFunc(func(string) (float64, error) { return 10, nil }),
		&stubSampler{memory: 50, draw: 0.5})
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_ = b.Shutdown(ctx)
	}()

	var mu sync.Mutex
	var rebalances []*domain.RebalanceEvent
	b.Events().OnRebalance(func(e *domain.RebalanceEvent) {
		mu.Lock()
		defer mu.Unlock()
		rebalances = append(rebalances, e)
	})

	// Load processor-0 far beyond the threshold before starting the loop.
	queue := b.byID["processor-0"]
	for i := 0; i < 8; i++ {
		queue.Admit(&domain.Task{
			ID:            fmt.Sprintf("t%d", i),
			Priority:      1,
			ExecutionTime: time.Hour,
			Type:          domain.TaskType{Name: "compute_intensive"},
		})
	}

	require.NoError(t, b.StartRebalancing())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(rebalances) >= 1
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	event := rebalances[0]
	mu.Unlock()

	assert.Equal(t, "processor-0", event.FromProcessor)
	assert.Equal(t, "processor-1", event.ToProcessor)
	assert.Equal(t, 4, event.Moved)

	pending := 0
	for _, p := range b.Statistics().Processors {
		pending += p.PendingTasks
	}
	assert.Equal(t, 8, pending)
}

func TestStartRebalancingIdempotent(t *testing.T) {
	b := newBalancer(t, 2, nil)

	require.NoError(t, b.StartRebalancing())
	require.NoError(t, b.StartRebalancing())

	metrics := b.RebalancerMetrics()
	assert.Equal(t, true, metrics["running"])
}

func TestShutdownRejectsFurtherWork(t *testing.T) {
	b := newBalancer(t, 2, nil)

	require.NoError(t, b.StartRebalancing())
	require.NoError(t, b.Shutdown(context.Background()))

	err := b.Submit("t1", 1, time.Second, "balanced")
	assert.True(t, domain.IsShutdown(err))

	err = b.StartRebalancing()
	assert.True(t, domain.IsShutdown(err))

	// Second shutdown is a no-op.
	assert.NoError(t, b.Shutdown(context.Background()))
}

func TestCustomCatalogTypes(t *testing.T) {
	cfg := testConfig(1, nil)
	cfg.Catalog.Types = []domain.TaskType{
		{Name: "gpu_intensive", CPUIntensity: 0.4, MemoryRequirement: 2000, IOIntensity: 0.3},
	}

	b, err := New(cfg, nil, &stubSampler{memory: 50, draw: 0.5})
	require.NoError(t, err)
	defer func() { _ = b.Shutdown(context.Background()) }()

	assert.NoError(t, b.Submit("t1", 1, time.Hour, "gpu_intensive"))
	assert.NoError(t, b.Submit("t2", 1, time.Hour, "balanced"))
}
