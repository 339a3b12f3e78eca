//go:build !windows

package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/fenwick/ucirun"
)

// channel implements ucirun.Channel for an engine subprocess.
type channel struct {
	opts EngineOptions
	log  zerolog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	handler ucirun.LineHandler

	pumpDone chan struct{} // closed when the read loop has exited
	done     chan struct{} // closed exactly once by finish()
	termErr  error         // set by finish(), read after done closes

	stopping   atomic.Bool
	stopOnce   sync.Once
	finishOnce sync.Once
}

var _ ucirun.Channel = (*channel)(nil)

// newChannel wires a started command into a channel and begins pumping
// its stdout.
func newChannel(cmd *exec.Cmd, stdin io.WriteCloser, stdout io.ReadCloser, opts EngineOptions) *channel {
	c := &channel{
		opts:     opts,
		log:      opts.Logger.With().Str("engine", cmd.Path).Logger(),
		cmd:      cmd,
		stdin:    stdin,
		pumpDone: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.readLoop(stdout)
	return c
}

// Send writes one command line to the engine's stdin.
func (c *channel) Send(_ context.Context, command string) error {
	select {
	case <-c.done:
		if c.termErr != nil {
			return fmt.Errorf("uci: channel closed: %w", c.termErr)
		}
		return errors.New("uci: channel closed")
	default:
	}

	c.mu.Lock()
	stdin := c.stdin
	c.mu.Unlock()
	if stdin == nil {
		return errors.New("uci: channel closed")
	}
	if _, err := io.WriteString(stdin, command+"\n"); err != nil {
		return fmt.Errorf("uci: write %q: %w", command, err)
	}
	c.log.Trace().Str("command", command).Msg("sent")
	return nil
}

// SetLineHandler attaches or detaches (nil) the line callback.
func (c *channel) SetLineHandler(h ucirun.LineHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Done is closed when the subprocess ends, whether by Close or on its own.
func (c *channel) Done() <-chan struct{} { return c.done }

// Err returns the terminal error after Done is closed, or nil while the
// channel is live or after a clean shutdown.
func (c *channel) Err() error {
	select {
	case <-c.done:
		return c.termErr
	default:
		return nil
	}
}

// Close shuts the engine down: quit, stdin close, then SIGKILL after
// the grace period. Safe to call multiple times; blocks until the read
// loop has exited.
func (c *channel) Close(ctx context.Context) error {
	c.stopOnce.Do(func() {
		c.stopping.Store(true)

		// Ask nicely first. Errors are expected if the engine already died.
		_ = c.Send(ctx, "quit")

		c.mu.Lock()
		if c.stdin != nil {
			_ = c.stdin.Close()
			c.stdin = nil
		}
		cmd := c.cmd
		c.mu.Unlock()

		select {
		case <-c.pumpDone:
		case <-time.After(c.opts.GracePeriod):
			c.log.Debug().Msg("grace period elapsed, killing engine")
			_ = killProcess(cmd)
			<-c.pumpDone
		case <-ctx.Done():
			_ = killProcess(cmd)
			<-c.pumpDone
		}
	})

	<-c.done
	return c.termErr
}

// expect performs one handshake exchange: attach a matcher, send the
// command, and wait for a line starting with token. Used only at
// startup, before any session owns the channel.
func (c *channel) expect(ctx context.Context, command, token string, timeout time.Duration) error {
	found := make(chan struct{})
	var once sync.Once
	c.SetLineHandler(func(line string) {
		if strings.HasPrefix(strings.TrimSpace(line), token) {
			once.Do(func() { close(found) })
		}
	})
	defer c.SetLineHandler(nil)

	if err := c.Send(ctx, command); err != nil {
		return err
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case <-found:
		return nil
	case <-deadline.C:
		return fmt.Errorf("no %q within %s of %q", token, timeout, command)
	case <-c.done:
		if c.termErr != nil {
			return c.termErr
		}
		return errors.New("channel closed during handshake")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finish sets the terminal error and closes done. Called exactly once.
func (c *channel) finish(err error) {
	c.finishOnce.Do(func() {
		c.termErr = err
		close(c.done)
	})
}

// readLoop pumps engine stdout to the attached handler, one line at a
// time in delivery order. Lines arriving while detached are dropped.
func (c *channel) readLoop(stdout io.ReadCloser) {
	var scanErr error

	defer func() {
		waitErr := c.cmd.Wait()
		switch {
		case scanErr != nil:
			waitErr = fmt.Errorf("uci: scanner: %w", scanErr)
		default:
			waitErr = wrapExitError(waitErr)
		}
		if c.stopping.Load() {
			// User-initiated shutdown is a clean exit regardless of how
			// the subprocess went down.
			waitErr = nil
		}
		c.finish(waitErr)
		close(c.pumpDone)
	}()

	scanner := bufio.NewScanner(stdout)
	initCap := min(4096, c.opts.ScannerBuffer)
	scanner.Buffer(make([]byte, 0, initCap), c.opts.ScannerBuffer)

	for scanner.Scan() {
		line := scanner.Text()

		c.mu.Lock()
		h := c.handler
		c.mu.Unlock()

		if h == nil {
			c.log.Debug().Str("line", line).Msg("no handler attached, dropping line")
			continue
		}
		h(line)
	}
	scanErr = scanner.Err()
}

// killProcess force-kills the subprocess, tolerating an already-exited one.
func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
