// Package doctor runs readiness diagnostics for config and the generator.
package doctor

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/randpipe/internal/config"
	"github.com/rbright/randpipe/internal/protocol"
	"github.com/rbright/randpipe/internal/session"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config and generator checks for a loaded config. The
// handshake check only runs when the generator binary resolves.
func Run(ctx context.Context, cfg config.Loaded, logger *slog.Logger) Report {
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMessage = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	binary := checkCommand(cfg.Config.Generator.Argv, "generator")
	checks = append(checks, binary)
	if binary.Pass {
		checks = append(checks, checkHandshake(ctx, cfg.Config, logger))
	}

	return Report{Checks: checks}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkHandshake spawns the generator and runs one greet and one random
// round trip before shutting it down.
func checkHandshake(ctx context.Context, cfg config.Config, logger *slog.Logger) Check {
	start := time.Now()
	var sample int

	opts := session.Options{Logger: logger, ShutdownTimeout: cfg.Session.ShutdownTimeout}
	err := session.Run(ctx, cfg.Generator.Argv, opts, func(_ context.Context, p *session.Process) error {
		if err := p.Greet(); err != nil {
			return err
		}
		n, err := p.RetrieveRandom()
		if err != nil {
			return err
		}
		if n < protocol.RandomMin || n > protocol.RandomMax {
			return fmt.Errorf("random %d outside [%d, %d]", n, protocol.RandomMin, protocol.RandomMax)
		}
		sample = n
		return nil
	})
	if err != nil {
		return Check{Name: "generator.handshake", Pass: false, Message: err.Error()}
	}

	return Check{
		Name:    "generator.handshake",
		Pass:    true,
		Message: fmt.Sprintf("greeted and sampled %d in %s", sample, time.Since(start).Round(time.Millisecond)),
	}
}
