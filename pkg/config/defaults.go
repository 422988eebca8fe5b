// Package config defines default run parameters and their validation.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned by Validate for out-of-range parameters.
var ErrInvalidParameter = errors.New("invalid parameter")

// EvolutionConfig defines the parameters of the genetic search.
type EvolutionConfig struct {
	// Iterations is the number of generations evolved after the initial population.
	Iterations int `mapstructure:"iterations" json:"iterations" yaml:"iterations"`
	// PopulationSize is the number of individuals in every generation.
	PopulationSize int `mapstructure:"population_size" json:"population_size" yaml:"population_size"`
	// KeepRate is the chance a selected parent is copied unchanged.
	KeepRate float64 `mapstructure:"keep_rate" json:"keep_rate" yaml:"keep_rate"`
	// CrossoverRate is the chance a child is crossed with a second parent.
	CrossoverRate float64 `mapstructure:"crossover_rate" json:"crossover_rate" yaml:"crossover_rate"`
	// MutationRate is the per-item chance of toggling membership.
	MutationRate float64 `mapstructure:"mutation_rate" json:"mutation_rate" yaml:"mutation_rate"`
	// Seed makes a run reproducible. Zero picks a fresh seed.
	Seed uint64 `mapstructure:"seed" json:"seed" yaml:"seed"`
}

// OutputConfig defines where run artifacts go.
type OutputConfig struct {
	// LogFile receives one best-fitness line per generation.
	LogFile string `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	// LedgerPath is the JSONL run ledger. Empty disables it.
	LedgerPath string `mapstructure:"ledger" json:"ledger" yaml:"ledger"`
	// ExportPath writes the result; the extension picks the format.
	ExportPath string `mapstructure:"export" json:"export" yaml:"export"`
	// OutputDir is a local directory or an s3://bucket/prefix target.
	OutputDir string `mapstructure:"output_dir" json:"output_dir" yaml:"output_dir"`
}

// Defaults.
const (
	DefaultLogFile = "output.txt"
	DefaultAppDir  = ".knapsack"
)

// DefaultEvolutionConfig returns default search parameters.
func DefaultEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		Iterations:     100,
		PopulationSize: 50,
		KeepRate:       0.1,
		CrossoverRate:  0.7,
		MutationRate:   0.05,
	}
}

// DefaultOutputConfig returns default artifact locations.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		LogFile: DefaultLogFile,
	}
}

// Validate checks parameter ranges.
func (c EvolutionConfig) Validate() error {
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be >= 0, got %d", ErrInvalidParameter, c.Iterations)
	}
	if c.PopulationSize < 1 {
		return fmt.Errorf("%w: population size must be >= 1, got %d", ErrInvalidParameter, c.PopulationSize)
	}

	rates := []struct {
		name  string
		value float64
	}{
		{"keep rate", c.KeepRate},
		{"crossover rate", c.CrossoverRate},
		{"mutation rate", c.MutationRate},
	}
	for _, r := range rates {
		// NaN fails both comparisons
		if !(r.value >= 0 && r.value <= 1) {
			return fmt.Errorf("%w: %s must be within [0, 1], got %v", ErrInvalidParameter, r.name, r.value)
		}
	}
	return nil
}
