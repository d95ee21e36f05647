package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultCount    = 100
	DefaultLogLevel = "info"

	generatorBinary = "generator"

	defaultShutdownTimeout = 3 * time.Second
)

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Generator: DefaultGenerator(),
		Session: SessionConfig{
			Count:           DefaultCount,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// DefaultGenerator prefers a generator binary installed next to the running
// executable and otherwise defers to PATH lookup.
func DefaultGenerator() CommandConfig {
	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), generatorBinary)
		if info, statErr := os.Stat(sibling); statErr == nil && !info.IsDir() {
			return CommandConfig{Raw: sibling, Argv: []string{sibling}}
		}
	}
	return CommandConfig{Raw: generatorBinary, Argv: []string{generatorBinary}}
}
