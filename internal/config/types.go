// Package config resolves, parses, validates, and defaults randpipe configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by the controller.
type Config struct {
	Generator CommandConfig
	Session   SessionConfig
	Log       LogConfig
}

// SessionConfig controls the request sequence and the shutdown bound.
type SessionConfig struct {
	Count           int
	ShutdownTimeout time.Duration
}

// LogConfig controls the JSONL logger.
type LogConfig struct {
	Level string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
