// Package config holds runtime configuration with defaults, loaded through
// viper from flags, TRUTHGIT_* environment variables, and an optional
// ~/.truthgit/config.yaml.
package config

import (
	"fmt"

	"github.com/lumensyntax-org/truthgit/internal/validator"
)

// Backend names for the object/ref store.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config is the full runtime configuration.
type Config struct {
	// RepoPath is the repository directory.
	RepoPath string `yaml:"repo_path" mapstructure:"repo_path"`

	// Backend selects the storage engine: "file" or "badger".
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Threshold is the consensus score required to pass, in [0,1].
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`

	// Quorum is the minimum number of usable validator results.
	Quorum int `yaml:"quorum" mapstructure:"quorum"`

	// ValidatorTimeout bounds each validator call, in seconds.
	ValidatorTimeout int `yaml:"validator_timeout" mapstructure:"validator_timeout"`

	// MaxParallel caps concurrent validator calls.
	MaxParallel int `yaml:"max_parallel" mapstructure:"max_parallel"`

	// RateLimit is requests per second per validator; 0 disables.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`

	// RateBurst is the limiter burst size.
	RateBurst int `yaml:"rate_burst" mapstructure:"rate_burst"`

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	// Validator is the base backend configuration (model, endpoint,
	// timeout) shared by provider construction.
	Validator validator.Config `yaml:"validator" mapstructure:"validator"`

	// API configures the HTTP server.
	API APIConfig `yaml:"api" mapstructure:"api"`
}

// APIConfig configures the serve command.
type APIConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr" mapstructure:"addr"`

	// MaxConns caps simultaneous connections on the listener.
	MaxConns int `yaml:"max_conns" mapstructure:"max_conns"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RepoPath:         ".truth",
		Backend:          BackendFile,
		Threshold:        0.66,
		Quorum:           2,
		ValidatorTimeout: 60,
		MaxParallel:      8,
		RateLimit:        2,
		RateBurst:        4,
		LogLevel:         "info",
		Validator: validator.Config{
			Timeout:   60,
			MaxTokens: 256,
		},
		API: APIConfig{
			Addr:     ":8000",
			MaxConns: 256,
		},
	}
}

// Validate rejects settings the core invariants cannot hold under.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold %v outside [0,1]", c.Threshold)
	}
	if c.Quorum < 1 {
		return fmt.Errorf("quorum must be at least 1, got %d", c.Quorum)
	}
	if c.Backend != BackendFile && c.Backend != BackendBadger {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}
