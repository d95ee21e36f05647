// Package session owns the generator child process: spawning it, speaking the
// line protocol over its pipes, and guaranteeing it is shut down and reaped.
package session

import (
	"context"
	"errors"
	"time"
)

// Body is the work performed while a generator process is held.
type Body func(context.Context, *Process) error

// Run spawns argv, hands the process to body, and always requests shutdown
// and waits for exit afterwards, whichever way body returns. Body and
// cleanup failures are joined.
func Run(ctx context.Context, argv []string, opts Options, body Body) (err error) {
	p, err := Spawn(argv, opts)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, p.release(opts.ShutdownTimeout))
	}()

	return body(ctx, p)
}

// release sends Shutdown and reaps the process within timeout.
func (p *Process) release(timeout time.Duration) error {
	if err := p.Shutdown(); err != nil {
		p.logger.Warn("shutdown request failed", "error", err.Error())
	}
	return p.Close(timeout)
}
