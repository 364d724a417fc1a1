package config

import "time"

// PollConfig controls how completion of a batch is observed.
type PollConfig struct {
	// BatchInterval is the polling interval of plain batches.
	BatchInterval Duration `toml:"batch-interval" yaml:"batch-interval" json:"batch-interval"`
	// SearchInterval is the polling interval of searches that report
	// partial results.
	SearchInterval Duration `toml:"search-interval" yaml:"search-interval" json:"search-interval"`
	// Timeout bounds the wait for a whole batch. Zero waits forever.
	Timeout Duration `toml:"timeout" yaml:"timeout" json:"timeout"`
}

const minPollInterval = time.Millisecond

var defaultPollConfig = PollConfig{
	BatchInterval:  Duration(time.Second),
	SearchInterval: Duration(100 * time.Millisecond),
}.Adjust()

// Adjust validates the PollConfig and adjusts it
func (config PollConfig) Adjust() PollConfig {
	pc := config
	if pc.BatchInterval.Duration() < minPollInterval {
		pc.BatchInterval = Duration(minPollInterval)
	}
	if pc.SearchInterval.Duration() < minPollInterval {
		pc.SearchInterval = Duration(minPollInterval)
	}
	if pc.Timeout < 0 {
		pc.Timeout = 0
	}
	// a timeout shorter than one interval would expire before the first re-check
	longest := pc.BatchInterval
	if pc.SearchInterval > longest {
		longest = pc.SearchInterval
	}
	if pc.Timeout != 0 && pc.Timeout < longest {
		pc.Timeout = longest
	}
	return pc
}

func DefaultPollConfig() PollConfig {
	return defaultPollConfig
}
