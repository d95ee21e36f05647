package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "RANDPIPE"

// envOverrides mirrors the file keys as RANDPIPE_* variables. Unset
// variables leave the pointer nil.
type envOverrides struct {
	Generator       *string        `envconfig:"GENERATOR"`
	Count           *int           `envconfig:"COUNT"`
	ShutdownTimeout *time.Duration `envconfig:"SHUTDOWN_TIMEOUT"`
	LogLevel        *string        `envconfig:"LOG_LEVEL"`
}

// ApplyEnv layers RANDPIPE_* environment overrides on top of cfg.
func ApplyEnv(cfg Config) (Config, error) {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return Config{}, fmt.Errorf("read environment overrides: %w", err)
	}

	if env.Generator != nil {
		command, err := SplitCommand(*env.Generator)
		if err != nil {
			return Config{}, fmt.Errorf("%s_GENERATOR: %w", envPrefix, err)
		}
		cfg.Generator = command
	}
	if env.Count != nil {
		cfg.Session.Count = *env.Count
	}
	if env.ShutdownTimeout != nil {
		cfg.Session.ShutdownTimeout = *env.ShutdownTimeout
	}
	if env.LogLevel != nil {
		cfg.Log.Level = *env.LogLevel
	}
	return cfg, nil
}
