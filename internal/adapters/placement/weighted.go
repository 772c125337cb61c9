package placement

import (
	"log/slog"
	"math"

	"github.com/ballast-run/ballast/internal/domain"
)

// WeightedCost scores every candidate with a load-based cost, discounted
// for specialization and inflated by cpu pressure and temperature, and
// picks the strict minimum. Ties resolve to the first candidate in
// enumeration order, so selection is deterministic for a fixed snapshot.
type WeightedCost struct {
	discount float64
	logger   *slog.Logger
}

func NewWeightedCost(discount float64, logger *slog.Logger) *WeightedCost {
	if discount <= 0 || discount > 1 {
		discount = domain.DefaultDiscount
	}
	return &WeightedCost{
		discount: discount,
		logger:   logger,
	}
}

// Weight computes the placement cost of one candidate for the task.
func (s *WeightedCost) Weight(task *domain.Task, p *domain.ProcessorSnapshot) float64 {
	weight := p.Load
	if p.Specialized(task.Type.Name) {
		weight *= s.discount
	}
	weight *= 1 + p.Metrics.CPUUsage/200
	weight *= 1 + (p.Metrics.Temperature-40)/100
	return weight
}

func (s *WeightedCost) SelectProcessor(task *domain.Task, processors []domain.ProcessorSnapshot) (string, error) {
	if len(processors) == 0 {
		return "", domain.NewBalancerError("placement", "select", domain.ErrEmptyProcessorPool)
	}

	best := ""
	bestWeight := math.MaxFloat64
	for i := range processors {
		weight := s.Weight(task, &processors[i])
		if weight < bestWeight {
			best = processors[i].ID
			bestWeight = weight
		}
	}

	s.logger.Debug("weighted cost selection",
		"selected", best,
		"task_id", task.ID,
		"task_type", task.Type.Name,
		"weight", bestWeight)

	return best, nil
}

func (s *WeightedCost) Name() string {
	return string(domain.AlgorithmWeightedCost)
}
