package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rbright/randpipe/internal/fsm"
	"github.com/rbright/randpipe/internal/protocol"
)

// DefaultShutdownTimeout bounds the wait for the generator to exit after Shutdown.
const DefaultShutdownTimeout = 3 * time.Second

// Options controls how a generator process is started and observed.
type Options struct {
	Logger *slog.Logger
	// Stderr receives the generator's stderr; defaults to os.Stderr.
	Stderr io.Writer
	// ShutdownTimeout bounds Close; DefaultShutdownTimeout when zero.
	ShutdownTimeout time.Duration
}

// Process is the controller-side handle to one generator child and its pipes.
type Process struct {
	logger *slog.Logger
	argv   []string
	cmd    *exec.Cmd

	stdin  io.Closer
	writer *bufio.Writer
	reader *bufio.Reader

	mu           sync.Mutex
	state        fsm.State
	stdinClosed  bool
	stdoutClosed bool

	closeOnce sync.Once
	closeErr  error
}

// Spawn starts argv with its stdin and stdout piped to the returned handle.
func Spawn(argv []string, opts Options) (*Process, error) {
	if len(argv) == 0 {
		return nil, &StartupError{Err: errors.New("generator command is empty")}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	// Descendants that inherit stderr must not stall Wait after the child exits.
	cmd.WaitDelay = time.Second

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &StartupError{Argv: argv, Err: fmt.Errorf("open stdin: %w", err)}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, &StartupError{Argv: argv, Err: fmt.Errorf("open stdout: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return nil, &StartupError{Argv: argv, Err: err}
	}

	p := newProcess(stdin, stdout, opts.Logger)
	p.argv = argv
	p.cmd = cmd
	p.logger = p.logger.With("pid", cmd.Process.Pid)
	p.logger.Info("generator started", "argv", argv)
	return p, nil
}

// NewProcess wraps already-open streams, typically in-memory ones. A nil
// stream makes the matching operation fail with InvalidStreamError.
func NewProcess(stdin io.Writer, stdout io.Reader, logger *slog.Logger) *Process {
	return newProcess(stdin, stdout, logger)
}

func newProcess(stdin io.Writer, stdout io.Reader, logger *slog.Logger) *Process {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Process{logger: logger, state: fsm.StateIdle}
	if stdin != nil {
		p.writer = bufio.NewWriter(stdin)
		if closer, ok := stdin.(io.Closer); ok {
			p.stdin = closer
		}
	}
	if stdout != nil {
		p.reader = bufio.NewReader(stdout)
	}
	_ = p.transition(fsm.EventSpawn)
	return p
}

// State returns the lifecycle state snapshot.
func (p *Process) State() fsm.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Pid returns the child's process id, or 0 for stream-only handles.
func (p *Process) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// transition applies one FSM event to the process state.
func (p *Process) transition(event fsm.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, err := fsm.Transition(p.state, event)
	if err != nil {
		return err
	}
	p.state = next
	return nil
}

// SendMessage writes text as one line and flushes it to the generator.
func (p *Process) SendMessage(text string) error {
	if p.writer == nil {
		return &InvalidStreamError{Stream: "stdin"}
	}
	p.mu.Lock()
	closed := p.stdinClosed
	p.mu.Unlock()
	if closed {
		return &InvalidStreamError{Stream: "stdin", Closed: true}
	}

	if err := protocol.WriteLine(p.writer, text); err != nil {
		return fmt.Errorf("send %q: %w", text, err)
	}
	p.logger.Debug("sent message", "message", text)
	return nil
}

// ReadMessage reads one response line with surrounding whitespace removed.
// End of stream yields an empty string and no error.
func (p *Process) ReadMessage() (string, error) {
	if p.reader == nil {
		return "", &InvalidStreamError{Stream: "stdout"}
	}
	p.mu.Lock()
	closed := p.stdoutClosed
	p.mu.Unlock()
	if closed {
		return "", &InvalidStreamError{Stream: "stdout", Closed: true}
	}

	line, err := protocol.ReadLine(p.reader)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			p.logger.Warn("generator output reached end of stream")
			return "", nil
		}
		return "", fmt.Errorf("read response: %w", err)
	}
	p.logger.Debug("read message", "message", line)
	return line, nil
}

// Greet performs the Hi round trip.
func (p *Process) Greet() error {
	cmd := protocol.CommandGreet
	if err := p.SendMessage(string(cmd)); err != nil {
		return err
	}
	resp, err := p.ReadMessage()
	if err != nil {
		return err
	}
	if resp != protocol.GreetReply {
		return &UnexpectedResponseError{Command: cmd, Response: resp}
	}
	return nil
}

// RetrieveRandom requests one random integer from the generator.
func (p *Process) RetrieveRandom() (int, error) {
	cmd := protocol.CommandGetRandom
	if err := p.SendMessage(string(cmd)); err != nil {
		return 0, err
	}
	resp, err := p.ReadMessage()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(resp)
	if err != nil {
		return 0, &UnexpectedResponseError{Command: cmd, Response: resp, Err: err}
	}
	return n, nil
}

// Shutdown asks the generator to exit without waiting for a reply. It is a
// no-op once shutdown was requested or the process is gone, and a broken
// pipe from an already-exited generator is not an error.
func (p *Process) Shutdown() error {
	if state := p.State(); fsm.Terminal(state) {
		p.logger.Debug("shutdown skipped; generator already gone", "state", state)
		return nil
	}
	if err := p.transition(fsm.EventShutdown); err != nil {
		p.logger.Debug("shutdown already requested", "state", p.State())
		return nil
	}

	err := p.SendMessage(string(protocol.CommandShutdown))
	if err == nil {
		return nil
	}
	var streamErr *InvalidStreamError
	if errors.As(err, &streamErr) && streamErr.Closed {
		return nil
	}
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
		p.logger.Info("generator already exited before shutdown")
		return nil
	}
	return err
}

// Close releases the pipes and waits up to timeout for the generator to
// exit, killing it when the wait expires. Repeated calls return the first
// result.
func (p *Process) Close(timeout time.Duration) error {
	p.closeOnce.Do(func() {
		p.closeErr = p.close(timeout)
	})
	return p.closeErr
}

func (p *Process) close(timeout time.Duration) error {
	p.mu.Lock()
	p.stdinClosed = true
	p.mu.Unlock()
	if p.stdin != nil {
		_ = p.stdin.Close()
	}

	if p.cmd == nil {
		p.mu.Lock()
		p.stdoutClosed = true
		p.mu.Unlock()
		_ = p.transition(fsm.EventExit)
		return nil
	}

	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	done := make(chan error, 1)
	go func() {
		done <- p.cmd.Wait()
	}()
	defer func() {
		p.mu.Lock()
		p.stdoutClosed = true
		p.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		_ = p.transition(fsm.EventExit)
		if err != nil {
			p.logger.Error("generator exited uncleanly", "error", err.Error())
			return fmt.Errorf("generator exited uncleanly: %w", err)
		}
		p.logger.Info("generator exited")
		return nil
	case <-timer.C:
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.logger.Error("kill generator failed", "error", err.Error())
		}
		<-done
		_ = p.transition(fsm.EventKill)
		p.logger.Error("generator killed after shutdown timeout", "timeout", timeout.String())
		return &ShutdownTimeoutError{Timeout: timeout}
	}
}
