// Package config contains the configuration of the parbench command line
// tool.
package config

import (
	"fmt"
	"slices"
)

const (
	DefaultTask     = "prime"
	DefaultSize     = 1_000_000
	DefaultDir      = "data"
	DefaultRounds   = 5
	DefaultStoreURI = "file:parbench.db"
)

// LogConfig defines the log output.
type LogConfig struct {
	// Format is the log format to use in the log output (e.g. 'text' or 'json')
	Format string

	// Level is the log level to use in the log output (e.g. 'none', 'debug', or 'info')
	Level string
}

// StoreConfig defines where benchmark results are recorded.
type StoreConfig struct {
	// URI is the SQLite data source name. An empty URI disables recording.
	URI string
}

// Config defines the configuration of a benchmark run. The mapstructure
// tags match the keys of the config file and the names of the flags.
type Config struct {
	// Task is the registered name of the task to benchmark.
	Task string `mapstructure:"task"`

	// Size is the number of generated values of numeric tasks.
	Size int `mapstructure:"size"`

	// MaxValue is the exclusive upper bound of generated values. 0
	// selects the task's default.
	MaxValue int `mapstructure:"max-value"`

	// Dir holds the *.txt files of file-backed tasks.
	Dir string `mapstructure:"dir"`

	// Rounds is the number of timed rounds per strategy.
	Rounds int `mapstructure:"rounds"`

	// Workers is the number of parts of the fixed-partition strategies. 0
	// selects the number of logical CPUs.
	Workers int `mapstructure:"workers"`

	Log   LogConfig   `mapstructure:"log"`
	Store StoreConfig `mapstructure:"store"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Task:   DefaultTask,
		Size:   DefaultSize,
		Dir:    DefaultDir,
		Rounds: DefaultRounds,
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Store: StoreConfig{
			URI: DefaultStoreURI,
		},
	}
}

// Verify returns an error if the configuration cannot be used for a run.
func (cfg *Config) Verify() error {
	if cfg.Task == "" {
		return fmt.Errorf("config 'task' must not be empty")
	}

	if cfg.Size < 1 {
		return fmt.Errorf("config 'size' must be positive, got %d", cfg.Size)
	}

	if cfg.MaxValue < 0 {
		return fmt.Errorf("config 'max-value' must not be negative, got %d", cfg.MaxValue)
	}

	if cfg.Rounds < 1 {
		return fmt.Errorf("config 'rounds' must be positive, got %d", cfg.Rounds)
	}

	if cfg.Workers < 0 {
		return fmt.Errorf("config 'workers' must not be negative, got %d", cfg.Workers)
	}

	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("config 'log.format' must be one of ['text', 'json']")
	}

	if !slices.Contains([]string{"none", "debug", "info", "warn", "error"}, cfg.Log.Level) {
		return fmt.Errorf("config 'log.level' must be one of ['none', 'debug', 'info', 'warn', 'error']")
	}

	return nil
}
