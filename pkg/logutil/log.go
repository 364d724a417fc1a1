package logutil

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// Config is the logging section of the jobsweep configuration.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level" json:"level"`
	// Format is either text or json.
	Format string `toml:"format" yaml:"format" json:"format"`
	// File is the log file path. Logs go to stderr when it is empty.
	File string `toml:"file" yaml:"file" json:"file"`
}

// Adjust fills the unset fields with defaults.
func (c *Config) Adjust() {
	if c.Level == "" {
		c.Level = defaultLogLevel
	}
	if c.Format == "" {
		c.Format = defaultLogFormat
	}
}

// InitLogger builds a zap logger from cfg and installs it as the global
// logger returned by log.L(). It is the entry point for programs embedding
// the engine: pass it the log section of a loaded config.Config. The
// library packages never call it and log through whatever global logger
// is installed.
func InitLogger(cfg *Config) error {
	cfg.Adjust()
	logger, props, err := log.InitLogger(&log.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		File: log.FileLogConfig{
			Filename: cfg.File,
		},
	})
	if err != nil {
		return errors.Annotate(err, "init logger")
	}
	log.ReplaceGlobals(logger, props)
	log.L().Debug("logger initialized",
		zap.String("level", cfg.Level),
		zap.String("format", cfg.Format),
		zap.String("file", cfg.File))
	return nil
}
