package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type tomlConfig struct {
	Generator       *string        `toml:"generator"`
	Count           *int           `toml:"count"`
	ShutdownTimeout *time.Duration `toml:"shutdown_timeout"`
	Log             *tomlLog       `toml:"log"`
}

type tomlLog struct {
	Level *string `toml:"level"`
}

// Parse applies TOML content on top of base. Unknown keys are reported as
// warnings rather than errors. Values are not validated here; a later layer
// may still replace them.
func Parse(content string, base Config) (Config, []Warning, error) {
	cfg := base
	warnings := make([]Warning, 0)

	if strings.TrimSpace(content) != "" {
		var payload tomlConfig
		meta, err := toml.Decode(content, &payload)
		if err != nil {
			return Config{}, nil, wrapTOMLError(err)
		}

		for _, key := range meta.Undecoded() {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("unknown key %q ignored", key.String())})
		}

		if err := applyTOML(&cfg, payload); err != nil {
			return Config{}, nil, err
		}
	}

	return cfg, warnings, nil
}

func applyTOML(cfg *Config, payload tomlConfig) error {
	if payload.Generator != nil {
		command, err := SplitCommand(*payload.Generator)
		if err != nil {
			return fmt.Errorf("generator: %w", err)
		}
		cfg.Generator = command
	}
	if payload.Count != nil {
		cfg.Session.Count = *payload.Count
	}
	if payload.ShutdownTimeout != nil {
		cfg.Session.ShutdownTimeout = *payload.ShutdownTimeout
	}
	if payload.Log != nil && payload.Log.Level != nil {
		cfg.Log.Level = *payload.Log.Level
	}
	return nil
}

// wrapTOMLError keeps the offending line number from decoder errors.
func wrapTOMLError(err error) error {
	var parseErr toml.ParseError
	if errors.As(err, &parseErr) && parseErr.Position.Line > 0 {
		if parseErr.LastKey != "" {
			return fmt.Errorf("line %d (key %q): %s", parseErr.Position.Line, parseErr.LastKey, parseErr.Message)
		}
		return fmt.Errorf("line %d: %s", parseErr.Position.Line, parseErr.Message)
	}
	return err
}
