package session

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/rbright/randpipe/internal/fsm"
	"github.com/rbright/randpipe/internal/generator"
	"github.com/rbright/randpipe/internal/protocol"
	"github.com/stretchr/testify/require"
)

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	mode := ""
	for i, arg := range os.Args {
		if arg == "--" && i+1 < len(os.Args) {
			mode = os.Args[i+1]
			break
		}
	}

	switch mode {
	case "generator":
		if _, err := generator.New(os.Stdout).Serve(context.Background(), os.Stdin); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	case "stubborn":
		_, _ = io.Copy(io.Discard, os.Stdin)
		time.Sleep(time.Minute)
		os.Exit(0)
	case "hangup":
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
		os.Exit(0)
	case "exit":
		os.Exit(0)
	}
	os.Exit(2)
}

func helperArgv(t *testing.T, mode string) []string {
	t.Helper()
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	return []string{os.Args[0], "-test.run=TestHelperProcess", "--", mode}
}

func requireReaped(t *testing.T, p *Process) {
	t.Helper()
	require.NotNil(t, p.cmd.ProcessState)
	require.ErrorIs(t, p.cmd.Process.Signal(syscall.Signal(0)), os.ErrProcessDone)
}

func TestRunEndToEndWithRealGenerator(t *testing.T) {
	argv := helperArgv(t, "generator")

	var held *Process
	values := make([]int, 0, 100)
	start := time.Now()

	err := Run(context.Background(), argv, Options{}, func(_ context.Context, p *Process) error {
		held = p
		require.Greater(t, p.Pid(), 0)
		if err := p.Greet(); err != nil {
			return err
		}
		for range 100 {
			n, err := p.RetrieveRandom()
			if err != nil {
				return err
			}
			values = append(values, n)
		}
		return p.Shutdown()
	})
	require.NoError(t, err)
	require.Less(t, time.Since(start), DefaultShutdownTimeout+5*time.Second)

	require.Len(t, values, 100)
	for _, n := range values {
		require.GreaterOrEqual(t, n, protocol.RandomMin)
		require.LessOrEqual(t, n, protocol.RandomMax)
	}

	require.Equal(t, fsm.StateStopped, held.State())
	requireReaped(t, held)
}

func TestRunToleratesDoubleShutdownOnExitedProcess(t *testing.T) {
	argv := helperArgv(t, "exit")

	var held *Process
	err := Run(context.Background(), argv, Options{}, func(_ context.Context, p *Process) error {
		held = p
		require.NoError(t, p.Shutdown())
		return p.Shutdown()
	})
	require.NoError(t, err)
	requireReaped(t, held)
}

func TestRunKillsGeneratorThatIgnoresShutdown(t *testing.T) {
	argv := helperArgv(t, "stubborn")

	var held *Process
	start := time.Now()
	err := Run(context.Background(), argv, Options{ShutdownTimeout: 200 * time.Millisecond}, func(_ context.Context, p *Process) error {
		held = p
		return nil
	})

	var timeoutErr *ShutdownTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.Equal(t, 200*time.Millisecond, timeoutErr.Timeout)
	require.Less(t, time.Since(start), 10*time.Second)
	require.Equal(t, fsm.StateKilled, held.State())
	requireReaped(t, held)
}

func TestRunCleansUpWhenBodyFails(t *testing.T) {
	argv := helperArgv(t, "hangup")

	var held *Process
	err := Run(context.Background(), argv, Options{}, func(_ context.Context, p *Process) error {
		held = p
		return p.Greet()
	})

	var respErr *UnexpectedResponseError
	require.ErrorAs(t, err, &respErr)
	require.Equal(t, "", respErr.Response)
	requireReaped(t, held)
}

func TestRunJoinsBodyAndCleanupErrors(t *testing.T) {
	argv := helperArgv(t, "stubborn")
	bodyErr := errors.New("body failed")

	err := Run(context.Background(), argv, Options{ShutdownTimeout: 100 * time.Millisecond}, func(context.Context, *Process) error {
		return bodyErr
	})
	require.ErrorIs(t, err, bodyErr)

	var timeoutErr *ShutdownTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}

func TestRunReportsStartupError(t *testing.T) {
	called := false
	err := Run(context.Background(), []string{"/definitely/not/a/generator"}, Options{}, func(context.Context, *Process) error {
		called = true
		return nil
	})

	var startupErr *StartupError
	require.ErrorAs(t, err, &startupErr)
	require.Equal(t, []string{"/definitely/not/a/generator"}, startupErr.Argv)
	require.False(t, called)
}

func TestSpawnRejectsEmptyCommand(t *testing.T) {
	_, err := Spawn(nil, Options{})
	var startupErr *StartupError
	require.ErrorAs(t, err, &startupErr)
	require.Contains(t, err.Error(), "empty")
}

func TestCloseAfterCloseReturnsSameResult(t *testing.T) {
	argv := helperArgv(t, "generator")

	p, err := Spawn(argv, Options{})
	require.NoError(t, err)
	require.NoError(t, p.Greet())

	require.NoError(t, p.Close(DefaultShutdownTimeout))
	require.NoError(t, p.Close(DefaultShutdownTimeout))
	require.NoError(t, p.Shutdown())
	requireReaped(t, p)
}
