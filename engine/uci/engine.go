//go:build !windows

package uci

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/avast/retry-go/v4"

	"github.com/fenwick/ucirun"
)

// Engine starts and validates UCI engine subprocesses.
type Engine struct {
	path string
	opts EngineOptions
}

// Compile-time interface satisfaction check.
var _ ucirun.Engine = (*Engine)(nil)

// NewEngine creates an engine for the given binary path or name.
// Use EngineOption functions to customize buffers, timeouts, and the
// shutdown grace period.
func NewEngine(path string, opts ...EngineOption) *Engine {
	return &Engine{
		path: path,
		opts: resolveEngineOptions(opts...),
	}
}

// Validate checks that the engine binary is available on PATH.
func (e *Engine) Validate() error {
	if e.path == "" {
		return errors.New("uci: empty engine path")
	}
	if _, err := exec.LookPath(e.path); err != nil {
		return fmt.Errorf("uci: engine unavailable: %w", err)
	}
	return nil
}

// Start spawns the engine subprocess, performs the uci handshake, and
// probes readiness (retried — engines loading large evaluation nets can
// be slow to answer the first isready). The returned channel is live
// and ready for a session; on handshake failure the subprocess is torn
// down before the error is returned.
func (e *Engine) Start(ctx context.Context) (ucirun.Channel, error) {
	binary, err := exec.LookPath(e.path)
	if err != nil {
		return nil, fmt.Errorf("uci: engine unavailable: %w", err)
	}

	cmd := exec.Command(binary, e.opts.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("uci: start %s: %w", binary, err)
	}

	ch := newChannel(cmd, stdin, stdout, e.opts)

	if err := e.handshake(ctx, ch); err != nil {
		_ = ch.Close(ctx)
		return nil, err
	}
	return ch, nil
}

// handshake identifies the protocol and waits for the engine to settle.
func (e *Engine) handshake(ctx context.Context, ch *channel) error {
	if err := ch.expect(ctx, "uci", "uciok", e.opts.HandshakeTimeout); err != nil {
		return fmt.Errorf("uci: handshake: %w", err)
	}

	err := retry.Do(
		func() error {
			return ch.expect(ctx, "isready", "readyok", e.opts.HandshakeTimeout)
		},
		retry.Attempts(uint(e.opts.ReadyAttempts)),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("uci: readiness probe: %w", err)
	}
	return nil
}

// ExitError represents an engine subprocess that exited with a non-zero
// status. Wraps the underlying error so consumers can errors.As to
// *exec.ExitError for OS-level detail.
//
// Code semantics: positive = exit status, negative (-1) = signal-killed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "uci: exit status " + strconv.Itoa(e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// wrapExitError converts a non-zero *exec.ExitError to *ExitError.
// nil → nil, non-ExitError → passthrough, code 0 → nil (clean exit).
func wrapExitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return err
	}
	if ee.ExitCode() == 0 {
		return nil
	}
	return &ExitError{Code: ee.ExitCode(), Err: err}
}
