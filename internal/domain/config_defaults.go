package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"dario.cat/mergo"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLoadThreshold   = 70.0
	DefaultInterval        = 1 * time.Second
	DefaultCapacity        = 100.0
	DefaultDiscount        = 0.7
	DefaultHistoryCapacity = 100
)

// DefaultSpecializations is the rotation applied to processors that have
// no explicit specialization set.
func DefaultSpecializations() [][]string {
	return [][]string{
		{"compute_intensive"},
		{"memory_intensive"},
		{"io_intensive"},
		{},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Pool: PoolConfig{
			Processors:      runtime.NumCPU(),
			Specializations: DefaultSpecializations(),
			DefaultCapacity: DefaultCapacity,
		},
		Placement: PlacementConfig{
			Algorithm:              AlgorithmWeightedCost,
			SpecializationDiscount: DefaultDiscount,
		},
		Rebalancer: RebalancerConfig{
			Interval:      DefaultInterval,
			LoadThreshold: DefaultLoadThreshold,
		},
	}
}

// WithDefaults fills every zero field of the config from DefaultConfig.
func (c *Config) WithDefaults() (*Config, error) {
	if c == nil {
		return DefaultConfig(), nil
	}

	merged := *c
	if err := mergo.Merge(&merged, *DefaultConfig()); err != nil {
		return nil, NewBalancerError("config", "merge-defaults", err)
	}
	return &merged, nil
}

func (c *Config) Validate() error {
	if c.Pool.Processors <= 0 {
		return NewBalancerError("config", "validate", ErrEmptyProcessorPool)
	}
	if c.Pool.DefaultCapacity <= 0 {
		return NewBalancerError("config", "validate",
			fmt.Errorf("%w: default capacity must be positive, got %v", ErrInvalidConfig, c.Pool.DefaultCapacity))
	}
	if c.Rebalancer.Interval <= 0 {
		return NewBalancerError("config", "validate",
			fmt.Errorf("%w: rebalance interval must be positive, got %v", ErrInvalidConfig, c.Rebalancer.Interval))
	}
	if c.Rebalancer.LoadThreshold < 0 {
		return NewBalancerError("config", "validate",
			fmt.Errorf("%w: load threshold must not be negative, got %v", ErrInvalidConfig, c.Rebalancer.LoadThreshold))
	}
	if c.Placement.SpecializationDiscount <= 0 || c.Placement.SpecializationDiscount > 1 {
		return NewBalancerError("config", "validate",
			fmt.Errorf("%w: specialization discount must be in (0,1], got %v", ErrInvalidConfig, c.Placement.SpecializationDiscount))
	}
	return nil
}

// LoadConfig reads a config file, choosing the codec from the extension
// (.yaml/.yml or .json), and applies defaults to whatever is missing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewBalancerError("config", "read", err)
	}

	var cfg Config
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, NewBalancerError("config", "parse-yaml", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, NewBalancerError("config", "parse-json", err)
		}
	default:
		return nil, NewBalancerError("config", "parse",
			fmt.Errorf("%w: unsupported config extension %q", ErrInvalidConfig, ext))
	}

	return cfg.WithDefaults()
}
