package config

import (
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// SplitCommand parses a generator command line with POSIX shell word rules.
// Quotes and backslash escapes are honored and $VARS expand from the
// environment; no command is executed.
func SplitCommand(raw string) (CommandConfig, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CommandConfig{Raw: raw}, nil
	}

	argv, err := shell.Fields(trimmed, os.Getenv)
	if err != nil {
		return CommandConfig{}, fmt.Errorf("parse command %q: %w", raw, err)
	}
	return CommandConfig{Raw: raw, Argv: argv}, nil
}
