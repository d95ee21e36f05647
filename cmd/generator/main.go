// Package main provides the generator process entrypoint. It answers
// protocol commands on stdin/stdout and logs only to the JSONL log file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbright/randpipe/internal/cli"
	"github.com/rbright/randpipe/internal/config"
	"github.com/rbright/randpipe/internal/generator"
	"github.com/rbright/randpipe/internal/logging"
	"github.com/rbright/randpipe/internal/version"
)

const binaryName = "generator"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	parsed, err := cli.ParseGenerator(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n\n", err)
		fmt.Fprint(stderr, cli.GeneratorHelpText(binaryName))
		return 2
	}

	switch parsed.Mode {
	case cli.ModeHelp:
		fmt.Fprint(stdout, cli.GeneratorHelpText(binaryName))
		return 0
	case cli.ModeVersion:
		fmt.Fprintln(stdout, version.String(binaryName))
		return 0
	}

	level := config.DefaultLogLevel
	if cfg, err := config.ApplyEnv(config.Default()); err == nil {
		level = cfg.Log.Level
	}

	// stdout carries the protocol; a logging failure must not reach it.
	logRuntime, err := logging.New(binaryName, level)
	if err != nil {
		logRuntime = logging.Discard()
	}
	defer func() { _ = logRuntime.Close() }()
	logger := logRuntime.Logger

	logger.Info("generator start")
	result, err := generator.New(stdout, generator.WithLogger(logger)).Serve(ctx, stdin)
	if err != nil {
		logger.Error("generator failed", "error", err.Error(), "handled", result.Handled)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	logger.Info("generator stop", "reason", result.Reason, "handled", result.Handled, "ignored", result.Ignored)
	return 0
}
