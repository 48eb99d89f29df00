package config

import (
	"codeberg.org/mutker/mmcqueues/internal/report"
	"codeberg.org/mutker/mmcqueues/internal/search"
)

// Provider defines the interface for accessing configuration values.
// All configuration values are immutable after loading.
type Provider interface {
	// Grid returns the sweep to search
	Grid() search.Grid

	// Report returns the output settings
	Report() report.Config

	// GetPrecision returns the significant digits kept by each calculation
	GetPrecision() int

	// GetWorkers returns how many pairs may be searched concurrently
	GetWorkers() int

	// GetLogLevel returns the configured logging level
	GetLogLevel() LogLevel
}

// Option defines a configuration option that can be passed to Load
type Option func(*options) error

// options holds internal configuration options
type options struct {
	configPath  string
	configPaths []string
	envPrefix   string
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configPath = path
		return nil
	}
}

// WithConfigPaths replaces the directories searched for mmcqueues.toml
func WithConfigPaths(dirs ...string) Option {
	return func(o *options) error {
		o.configPaths = dirs
		return nil
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "MMCQUEUES"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}
