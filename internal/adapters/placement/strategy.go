package placement

import (
	"log/slog"
	"sync/atomic"

	"github.com/ballast-run/ballast/internal/domain"
)

// Strategy picks a processor for an incoming task from a slice of
// per-processor snapshots. Snapshots are read without any cross-processor
// lock, so a selection may act on slightly stale data; the strategies are
// heuristics, not consistency-critical paths.
type Strategy interface {
	SelectProcessor(task *domain.Task, processors []domain.ProcessorSnapshot) (string, error)
	Name() string
}

// New builds the strategy named by the config, defaulting to weighted
// cost when the name is unknown.
func New(cfg domain.PlacementConfig, logger *slog.Logger) Strategy {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Algorithm {
	case domain.AlgorithmWeightedCost:
		return NewWeightedCost(cfg.SpecializationDiscount, logger)
	case domain.AlgorithmLeastLoaded:
		return NewLeastLoaded(logger)
	case domain.AlgorithmRoundRobin:
		return NewRoundRobin(logger)
	default:
		logger.Warn("unknown placement algorithm, using weighted cost", "algorithm", string(cfg.Algorithm))
		return NewWeightedCost(cfg.SpecializationDiscount, logger)
	}
}

// LeastLoaded picks the processor with the lowest raw load, ignoring
// specialization and derived metrics.
type LeastLoaded struct {
	logger *slog.Logger
}

func NewLeastLoaded(logger *slog.Logger) *LeastLoaded {
	return &LeastLoaded{logger: logger}
}

func (s *LeastLoaded) SelectProcessor(task *domain.Task, processors []domain.ProcessorSnapshot) (string, error) {
	if len(processors) == 0 {
		return "", domain.NewBalancerError("placement", "select", domain.ErrEmptyProcessorPool)
	}

	best := 0
	for i := 1; i < len(processors); i++ {
		if processors[i].Load < processors[best].Load {
			best = i
		}
	}

	s.logger.Debug("least loaded selection",
		"selected", processors[best].ID,
		"task_id", task.ID,
		"load", processors[best].Load)

	return processors[best].ID, nil
}

func (s *LeastLoaded) Name() string {
	return string(domain.AlgorithmLeastLoaded)
}

// RoundRobin cycles through the pool regardless of load.
type RoundRobin struct {
	counter uint64
	logger  *slog.Logger
}

func NewRoundRobin(logger *slog.Logger) *RoundRobin {
	return &RoundRobin{logger: logger}
}

func (s *RoundRobin) SelectProcessor(task *domain.Task, processors []domain.ProcessorSnapshot) (string, error) {
	if len(processors) == 0 {
		return "", domain.NewBalancerError("placement", "select", domain.ErrEmptyProcessorPool)
	}

	index := (atomic.AddUint64(&s.counter, 1) - 1) % uint64(len(processors))
	selected := processors[index]

	s.logger.Debug("round robin selection",
		"selected", selected.ID,
		"task_id", task.ID,
		"index", index)

	return selected.ID, nil
}

func (s *RoundRobin) Name() string {
	return string(domain.AlgorithmRoundRobin)
}
