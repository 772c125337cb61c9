package domain

import (
	"log/slog"
	"time"
)

type Config struct {
	Logger *slog.Logger `json:"-" yaml:"-"`

	Pool       PoolConfig       `json:"pool" yaml:"pool"`
	Placement  PlacementConfig  `json:"placement" yaml:"placement"`
	Rebalancer RebalancerConfig `json:"rebalancer" yaml:"rebalancer"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog"`
	Sampler    SamplerConfig    `json:"sampler" yaml:"sampler"`
}

type PoolConfig struct {
	// Processors is the fixed pool size; the pool cannot grow or shrink
	// after construction.
	Processors int `json:"processors" yaml:"processors"`
	// Specializations assigns a specialization set per processor index.
	// When shorter than Processors, assignment wraps around.
	Specializations [][]string `json:"specializations,omitempty" yaml:"specializations,omitempty"`
	// DefaultCapacity is used whenever the capacity source fails or
	// reports a non-positive value.
	DefaultCapacity float64 `json:"default_capacity" yaml:"default_capacity"`
}

type PlacementAlgorithm string

const (
	AlgorithmWeightedCost PlacementAlgorithm = "weighted_cost"
	AlgorithmLeastLoaded  PlacementAlgorithm = "least_loaded"
	AlgorithmRoundRobin   PlacementAlgorithm = "round_robin"
)

type PlacementConfig struct {
	Algorithm PlacementAlgorithm `json:"algorithm" yaml:"algorithm"`
	// SpecializationDiscount multiplies the weight of a processor
	// specialized for the task's type. Lower weight wins.
	SpecializationDiscount float64 `json:"specialization_discount" yaml:"specialization_discount"`
}

type RebalancerConfig struct {
	Interval time.Duration `json:"interval" yaml:"interval"`
	// LoadThreshold is the skew, in load percentage points, that must be
	// strictly exceeded before tasks migrate.
	LoadThreshold float64 `json:"load_threshold" yaml:"load_threshold"`
}

type CatalogConfig struct {
	// IncludeBuiltins seeds the catalog with the four built-in profiles.
	IncludeBuiltins *bool      `json:"include_builtins,omitempty" yaml:"include_builtins,omitempty"`
	Types           []TaskType `json:"types,omitempty" yaml:"types,omitempty"`
}

type SamplerConfig struct {
	// Seed for the simulated metrics source; 0 seeds from the clock.
	Seed int64 `json:"seed" yaml:"seed"`
}
