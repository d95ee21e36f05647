// Package generator serves the line protocol on behalf of the generator process.
package generator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/rbright/randpipe/internal/protocol"
)

// StopReason records why the serve loop ended.
type StopReason string

const (
	StopShutdown  StopReason = "shutdown"
	StopEndOfFile StopReason = "eof"
	StopCancelled StopReason = "cancelled"
)

// Result summarizes one Serve invocation.
type Result struct {
	Reason  StopReason
	Handled int
	Ignored int
}

// errShutdown is raised by the shutdown handler to break the read loop.
var errShutdown = errors.New("shutdown requested")

// Generator answers protocol commands read from one input stream.
type Generator struct {
	logger *slog.Logger
	intN   func(n int) int
	out    *bufio.Writer
}

// Option customizes a Generator.
type Option func(*Generator)

// WithLogger routes dispatch logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithIntN replaces the random source; intN must return a value in [0, n).
func WithIntN(intN func(n int) int) Option {
	return func(g *Generator) { g.intN = intN }
}

// New constructs a generator writing responses to out.
func New(out io.Writer, opts ...Option) *Generator {
	g := &Generator{
		logger: slog.New(slog.DiscardHandler),
		intN:   rand.IntN,
		out:    bufio.NewWriter(out),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Serve reads commands from in until Shutdown, end of input, or ctx
// cancellation. Cancellation is observed between lines.
func (g *Generator) Serve(ctx context.Context, in io.Reader) (Result, error) {
	reader := bufio.NewReader(in)
	var result Result

	for {
		if ctx.Err() != nil {
			result.Reason = StopCancelled
			return result, nil
		}

		line, err := protocol.ReadLine(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				g.logger.Info("input closed; stopping")
				result.Reason = StopEndOfFile
				return result, nil
			}
			return result, fmt.Errorf("read command: %w", err)
		}

		cmd := protocol.ParseCommand(line)
		if cmd == protocol.CommandUnknown {
			result.Ignored++
			g.logger.Debug("ignoring unknown command", "line", line)
		} else {
			result.Handled++
		}

		if err := g.dispatch(cmd); err != nil {
			if errors.Is(err, errShutdown) {
				g.logger.Info("shutdown requested")
				result.Reason = StopShutdown
				return result, nil
			}
			return result, fmt.Errorf("handle %s: %w", cmd, err)
		}
	}
}

// dispatch runs the handler for cmd. Unknown commands fall to the no-op branch.
func (g *Generator) dispatch(cmd protocol.Command) error {
	switch cmd {
	case protocol.CommandGreet:
		return g.greet()
	case protocol.CommandGetRandom:
		return g.getRandom()
	case protocol.CommandShutdown:
		return errShutdown
	default:
		return nil
	}
}

func (g *Generator) greet() error {
	return protocol.WriteLine(g.out, protocol.GreetReply)
}

func (g *Generator) getRandom() error {
	n := protocol.RandomMin + g.intN(protocol.RandomMax-protocol.RandomMin+1)
	g.logger.Debug("generated random", "value", n)
	return protocol.WriteLine(g.out, strconv.Itoa(n))
}
