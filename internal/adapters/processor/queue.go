package processor

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ballast-run/ballast/internal/domain"
	"github.com/ballast-run/ballast/internal/ports"
)

const (
	baseSuccessChance   = 0.95
	specializationBonus = 0.05
	cpuPerPendingTask   = 20.0
)

type Config struct {
	DefaultCapacity float64
	HistoryCapacity int
}

// Queue owns one processor's pending tasks, counters and derived metrics.
// A single mutex guards all of it: admit, withdraw and resolve are each
// atomic with respect to this queue, and no lock is shared with any other
// queue. Every admitted task gets its own execution unit (a goroutine
// registered with the queue) that resolves it after its execution time.
type Queue struct {
	id              string
	specialization  map[string]struct{}
	specNames       []string
	capacity        ports.CapacitySource
	sampler         ports.MetricsSampler
	sink            ports.EventSink
	logger          *slog.Logger
	defaultCapacity float64

	mu                 sync.Mutex
	pending            []*domain.Task
	load               float64
	history            *LoadHistory
	metrics            domain.ProcessorMetrics
	tasksProcessed     int64
	successfulTasks    int64
	failedTasks        int64
	totalExecutionTime time.Duration
	outcomes           *RollingWindow
	closed             bool

	execCtx    context.Context
	execCancel context.CancelFunc
	execWG     sync.WaitGroup
}

func New(id string, specialization []string, capacity ports.CapacitySource,
	sampler ports.MetricsSampler, sink ports.EventSink, cfg Config, logger *slog.Logger) *Queue {

	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultCapacity <= 0 {
		cfg.DefaultCapacity = domain.DefaultCapacity
	}
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = domain.DefaultHistoryCapacity
	}

	specSet := make(map[string]struct{}, len(specialization))
	specNames := make([]string, 0, len(specialization))
	for _, name := range specialization {
		if _, exists := specSet[name]; exists {
			continue
		}
		specSet[name] = struct{}{}
		specNames = append(specNames, name)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Queue{
		id:              id,
		specialization:  specSet,
		specNames:       specNames,
		capacity:        capacity,
		sampler:         sampler,
		sink:            sink,
		logger:          logger.With("component", "processor", "processor_id", id),
		defaultCapacity: cfg.DefaultCapacity,
		history:         NewLoadHistory(cfg.HistoryCapacity),
		outcomes:        NewRollingWindow(cfg.HistoryCapacity),
		execCtx:         ctx,
		execCancel:      cancel,
	}
}

func (q *Queue) ID() string {
	return q.id
}

// Admit appends the task to the pending queue, refreshes load and
// metrics, and starts the task's execution unit.
func (q *Queue) Admit(task *domain.Task) {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("dropping admission on closed queue", "task_id", task.ID)
		return
	}

	migrated := task.Location.State == domain.LocationInTransit

	task.Status = domain.TaskStatusRunning
	task.Location = domain.TaskLocation{State: domain.LocationQueued, Processor: q.id}
	q.pending = append(q.pending, task)

	q.refreshLoad()
	q.refreshMetrics()

	event := &domain.TaskAdmittedEvent{
		ProcessorID: q.id,
		TaskID:      task.ID,
		Priority:    task.Priority,
		TaskType:    task.Type.Name,
		Load:        q.load,
		Temperature: q.metrics.Temperature,
		Migrated:    migrated,
		ArrivalTime: task.ArrivalTime,
		AdmittedAt:  time.Now(),
	}

	q.execWG.Add(1)
	go q.execute(task)

	q.mu.Unlock()

	q.logger.Debug("task admitted",
		"task_id", task.ID,
		"priority", task.Priority,
		"task_type", task.Type.Name,
		"load", event.Load,
		"temperature", event.Temperature,
		"migrated", migrated)

	q.emitAdmitted(event)
}

// Withdraw removes and returns the head of the pending queue. The task is
// owned by the caller until it is admitted elsewhere.
func (q *Queue) Withdraw() (*domain.Task, bool) {
	q.mu.Lock()

	if len(q.pending) == 0 {
		q.mu.Unlock()
		return nil, false
	}

	task := q.pending[0]
	q.pending = q.pending[1:]
	task.Location = domain.TaskLocation{State: domain.LocationInTransit}

	q.refreshLoad()
	q.refreshMetrics()

	q.mu.Unlock()

	return task, true
}

func (q *Queue) execute(task *domain.Task) {
	defer q.execWG.Done()

	timer := time.NewTimer(task.ExecutionTime)
	defer timer.Stop()

	select {
	case <-q.execCtx.Done():
		// Abandoned by shutdown; the task is never resolved.
		return
	case <-timer.C:
	}

	q.resolve(task)
}

// resolve removes the task from the pending queue if it is still here and
// settles its outcome. A task migrated away in the interim resolves on
// its new queue instead; here it is a silent no-op.
func (q *Queue) resolve(task *domain.Task) {
	q.mu.Lock()

	idx := -1
	for i, t := range q.pending {
		if t == task {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending[:idx], q.pending[idx+1:]...)

	chance := baseSuccessChance
	if _, ok := q.specialization[task.Type.Name]; ok {
		chance += specializationBonus
	}
	success := q.sampler.Float64() < chance

	if success {
		task.Status = domain.TaskStatusCompleted
		q.successfulTasks++
	} else {
		task.Status = domain.TaskStatusFailed
		q.failedTasks++
	}
	task.Location = domain.TaskLocation{State: domain.LocationResolved, Processor: q.id}

	q.tasksProcessed++
	q.totalExecutionTime += task.ExecutionTime
	q.outcomes.Record(success)

	q.refreshLoad()
	q.refreshMetrics()

	event := &domain.TaskResolvedEvent{
		ProcessorID: q.id,
		TaskID:      task.ID,
		Priority:    task.Priority,
		TaskType:    task.Type.Name,
		Status:      task.Status,
		Load:        q.load,
		CPUUsage:    q.metrics.CPUUsage,
		Duration:    task.ExecutionTime,
		ResolvedAt:  time.Now(),
	}

	q.mu.Unlock()

	q.logger.Debug("task resolved",
		"task_id", task.ID,
		"status", string(task.Status),
		"load", event.Load,
		"cpu_usage", event.CPUUsage)

	q.emitResolved(event)
}

// refreshLoad recomputes the load percentage from the pending count and
// appends it to the history. Callers hold q.mu.
func (q *Queue) refreshLoad() {
	q.load = float64(len(q.pending)) * 100 / q.capacityOrDefault()
	q.history.Append(q.load)
}

// refreshMetrics recomputes the derived health figures from the pending
// count. Callers hold q.mu.
func (q *Queue) refreshMetrics() {
	cpu := math.Min(100, float64(len(q.pending))*cpuPerPendingTask)
	q.metrics.CPUUsage = cpu
	q.metrics.MemoryUsage = q.sampler.SampleMemoryUsage()
	q.metrics.Temperature = 40 + cpu/2
	q.metrics.PowerConsumption = cpu * 2
}

func (q *Queue) capacityOrDefault() float64 {
	if q.capacity == nil {
		return q.defaultCapacity
	}
	capacity, err := q.capacity.CapacityOf(q.id)
	if err != nil || capacity <= 0 {
		return q.defaultCapacity
	}
	return capacity
}

func (q *Queue) CurrentLoad() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load
}

func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// History returns the load history oldest-first.
func (q *Queue) History() []float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.history.Values()
}

// Snapshot copies the queue's observable state under its lock.
func (q *Queue) Snapshot() domain.ProcessorSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	spec := make([]string, len(q.specNames))
	copy(spec, q.specNames)

	return domain.ProcessorSnapshot{
		ID:                 q.id,
		Specialization:     spec,
		Load:               q.load,
		PendingCount:       len(q.pending),
		Metrics:            q.metrics,
		TasksProcessed:     q.tasksProcessed,
		SuccessfulTasks:    q.successfulTasks,
		FailedTasks:        q.failedTasks,
		TotalExecutionTime: q.totalExecutionTime,
		RecentSuccessRate:  q.outcomes.SuccessRate(),
	}
}

// Close stops accepting admissions and waits for outstanding execution
// units. When the context expires first the remaining units are abandoned
// without resolving.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.execWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		q.execCancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) emitAdmitted(event *domain.TaskAdmittedEvent) {
	if q.sink == nil {
		return
	}
	defer q.recoverSink("admitted")
	q.sink.TaskAdmitted(event)
}

func (q *Queue) emitResolved(event *domain.TaskResolvedEvent) {
	if q.sink == nil {
		return
	}
	defer q.recoverSink("resolved")
	q.sink.TaskResolved(event)
}

func (q *Queue) recoverSink(kind string) {
	if r := recover(); r != nil {
		q.logger.Warn("event sink panicked", "event", kind, "panic", r)
	}
}
