package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/randpipe/internal/cli"
	"github.com/rbright/randpipe/internal/config"
	"github.com/rbright/randpipe/internal/doctor"
	"github.com/rbright/randpipe/internal/logging"
	"github.com/rbright/randpipe/internal/session"
	"github.com/rbright/randpipe/internal/stats"
	"github.com/rbright/randpipe/internal/version"
)

const binaryName = "controller"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	switch parsed.Mode {
	case cli.ModeHelp:
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	case cli.ModeVersion:
		fmt.Fprintln(r.Stdout, version.String(binaryName))
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	cfgLoaded.Config, err = applyFlags(cfgLoaded.Config, parsed)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 2
	}
	validateWarnings, err := config.Validate(cfgLoaded.Config)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: validate config: %v\n", err)
		return 1
	}
	cfgLoaded.Warnings = append(cfgLoaded.Warnings, validateWarnings...)

	logRuntime, err := logging.New(binaryName, cfgLoaded.Config.Log.Level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}
	logger = logger.With("session_id", uuid.NewString())

	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"mode", parsed.Mode,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
		"generator", cfgLoaded.Config.Generator.Argv,
		"count", cfgLoaded.Config.Session.Count,
	)

	if parsed.Mode == cli.ModeDoctor {
		report := doctor.Run(ctx, cfgLoaded, logger)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	}

	return r.commandSession(ctx, cfgLoaded.Config, logger)
}

// applyFlags layers CLI flags over the loaded configuration. Validation runs
// afterwards on the merged result.
func applyFlags(cfg config.Config, parsed cli.Parsed) (config.Config, error) {
	if parsed.Generator != "" {
		command, err := config.SplitCommand(parsed.Generator)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Generator = command
	}
	if parsed.Count > 0 {
		cfg.Session.Count = parsed.Count
	}
	if parsed.Timeout > 0 {
		cfg.Session.ShutdownTimeout = parsed.Timeout
	}
	return cfg, nil
}

func (r Runner) commandSession(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	startedAt := time.Now()
	opts := session.Options{
		Logger:          logger,
		Stderr:          r.Stderr,
		ShutdownTimeout: cfg.Session.ShutdownTimeout,
	}

	var summary stats.Summary
	err := session.Run(ctx, cfg.Generator.Argv, opts, func(ctx context.Context, p *session.Process) error {
		values, err := collect(ctx, p, cfg.Session.Count)
		if err != nil {
			return err
		}
		summary, err = stats.Summarize(values)
		if err != nil {
			return err
		}
		printSummary(r.Stdout, summary)
		return nil
	})

	fields := []any{
		"duration_ms", time.Since(startedAt).Milliseconds(),
		"count", len(summary.Sorted),
	}
	if err != nil {
		logger.Error("session failed", append(fields, "error", err.Error())...)
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logger.Info("session complete", append(fields, "median", summary.Median, "mean", summary.Mean)...)
	fmt.Fprintln(r.Stdout, "Generator process shut down successfully.")
	return 0
}

// collect greets the generator and then requests count integers in order.
func collect(ctx context.Context, p *session.Process, count int) ([]int, error) {
	if err := p.Greet(); err != nil {
		return nil, fmt.Errorf("greet: %w", err)
	}

	values := make([]int, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := p.RetrieveRandom()
		if err != nil {
			return nil, fmt.Errorf("random %d of %d: %w", i+1, count, err)
		}
		values = append(values, n)
	}
	return values, nil
}

func printSummary(w io.Writer, summary stats.Summary) {
	parts := make([]string, len(summary.Sorted))
	for i, v := range summary.Sorted {
		parts[i] = strconv.Itoa(v)
	}
	fmt.Fprintf(w, "Generated random integers: [%s]\n", strings.Join(parts, ", "))
	fmt.Fprintf(w, "Median: %s\n", formatMedian(summary))
	fmt.Fprintf(w, "Average: %s\n", formatFloat(summary.Mean))
}

// formatMedian keeps a decimal point on even-sized medians, e.g. 500.0.
func formatMedian(summary stats.Summary) string {
	text := formatFloat(summary.Median)
	if len(summary.Sorted)%2 == 0 && !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
