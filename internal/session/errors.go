package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/rbright/randpipe/internal/protocol"
)

// StartupError reports that the generator executable could not be launched.
type StartupError struct {
	Argv []string
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("could not start generator %q: %v", strings.Join(e.Argv, " "), e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// InvalidStreamError reports that a pipe needed for an operation is missing or closed.
type InvalidStreamError struct {
	Stream string
	Closed bool
}

func (e *InvalidStreamError) Error() string {
	if e.Closed {
		return fmt.Sprintf("generator %s is closed", e.Stream)
	}
	return fmt.Sprintf("generator %s is not available", e.Stream)
}

// UnexpectedResponseError reports a response line that violates the
// contract of the command that produced it.
type UnexpectedResponseError struct {
	Command  protocol.Command
	Response string
	Err      error
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("message %s produced an unexpected response: %q", e.Command, e.Response)
}

func (e *UnexpectedResponseError) Unwrap() error {
	return e.Err
}

// ShutdownTimeoutError reports that the generator outlived the shutdown
// wait and was killed.
type ShutdownTimeoutError struct {
	Timeout time.Duration
}

func (e *ShutdownTimeoutError) Error() string {
	return fmt.Sprintf("generator did not shut down within %s and had to be killed", e.Timeout)
}
