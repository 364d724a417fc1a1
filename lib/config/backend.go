package config

import "runtime"

// BackendConfig configures the in-process job backend.
type BackendConfig struct {
	// Concurrency is the maximum number of jobs running at once.
	Concurrency int `toml:"concurrency" yaml:"concurrency" json:"concurrency"`
	// StartRate limits how many jobs start per second. Zero means no limit.
	StartRate float64 `toml:"start-rate" yaml:"start-rate" json:"start-rate"`
	// StartBurst is the burst allowed by StartRate.
	StartBurst int `toml:"start-burst" yaml:"start-burst" json:"start-burst"`
}

// DefaultBackendConfig returns the default BackendConfig.
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		Concurrency: runtime.NumCPU(),
	}.Adjust()
}

// Adjust validates the BackendConfig and adjusts it
func (config BackendConfig) Adjust() BackendConfig {
	bc := config
	if bc.Concurrency <= 0 {
		bc.Concurrency = runtime.NumCPU()
	}
	if bc.StartRate < 0 {
		bc.StartRate = 0
	}
	if bc.StartRate > 0 && bc.StartBurst <= 0 {
		bc.StartBurst = 1
	}
	return bc
}
