package config

import (
	"fmt"
	"strings"
	"time"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if len(cfg.Generator.Argv) == 0 {
		return nil, fmt.Errorf("generator command must not be empty")
	}
	if cfg.Session.Count <= 0 {
		return nil, fmt.Errorf("count must be > 0")
	}
	if cfg.Session.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("shutdown_timeout must be > 0")
	}
	if _, ok := validLogLevels[strings.ToLower(strings.TrimSpace(cfg.Log.Level))]; !ok {
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	if cfg.Session.ShutdownTimeout > time.Minute {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("shutdown_timeout %s is unusually long", cfg.Session.ShutdownTimeout)})
	}

	return warnings, nil
}
