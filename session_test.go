package ucirun_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fenwick/ucirun"
	"github.com/fenwick/ucirun/enginetest"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// newScriptSession builds a session over a scripted channel with the
// readiness probe pre-wired and fast test deadlines.
func newScriptSession(t *testing.T, opts ...ucirun.SessionOption) (*ucirun.Session, *enginetest.Script) {
	t.Helper()
	script := enginetest.New()
	script.On("isready", "readyok")
	opts = append([]ucirun.SessionOption{
		ucirun.WithSetupTimeout(time.Second),
	}, opts...)
	sess := ucirun.NewSession(script, opts...)
	t.Cleanup(func() { _ = sess.Shutdown(context.Background()) })
	return sess, script
}

func TestBestMove_EndToEnd(t *testing.T) {
	sess, script := newScriptSession(t)
	script.On("go depth 5", "bestmove e2e4 ponder e7e5")

	mv, err := sess.BestMove(context.Background(), startFEN, 5)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if mv.Move != "e2e4" {
		t.Errorf("Move = %q, want e2e4", mv.Move)
	}
	if mv.Ponder != "e7e5" {
		t.Errorf("Ponder = %q, want e7e5", mv.Ponder)
	}

	want := []string{
		"ucinewgame",
		"isready",
		"setoption name Skill Level value 10",
		"position fen " + startFEN,
		"go depth 5",
	}
	sent := script.Sent()
	if len(sent) != len(want) {
		t.Fatalf("sent %d commands %v, want %d", len(sent), sent, len(want))
	}
	for i, w := range want {
		if sent[i] != w {
			t.Errorf("sent[%d] = %q, want %q", i, sent[i], w)
		}
	}
}

func TestBestMove_InvalidDepth(t *testing.T) {
	sess, script := newScriptSession(t)

	_, err := sess.BestMove(context.Background(), startFEN, 0)
	if !errors.Is(err, ucirun.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if len(script.Sent()) != 0 {
		t.Errorf("local validation must not reach the channel, sent %v", script.Sent())
	}
}

func TestBestMove_TimeoutLeavesSessionUsable(t *testing.T) {
	sess, script := newScriptSession(t, ucirun.WithSearchTimeout(80*time.Millisecond))

	// No scripted reply to go: the search deadline must fire.
	_, err := sess.BestMove(context.Background(), startFEN, 3)
	if !errors.Is(err, ucirun.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}

	// The slot is free again; a now-responsive engine resolves normally.
	script.On("go", "bestmove d2d4")
	mv, err := sess.BestMove(context.Background(), startFEN, 3)
	if err != nil {
		t.Fatalf("second BestMove: %v", err)
	}
	if mv.Move != "d2d4" {
		t.Errorf("Move = %q, want d2d4", mv.Move)
	}
}

func TestBestMove_NoMoveSentinel(t *testing.T) {
	sess, script := newScriptSession(t)
	script.On("go", "No bestmove found")

	_, err := sess.BestMove(context.Background(), startFEN, 4)
	if !errors.Is(err, ucirun.ErrNoMoveFound) {
		t.Fatalf("err = %v, want ErrNoMoveFound", err)
	}
}

func TestBestMove_BareTerminalMarker(t *testing.T) {
	sess, script := newScriptSession(t)
	script.On("go", "bestmove")

	_, err := sess.BestMove(context.Background(), startFEN, 4)
	if !errors.Is(err, ucirun.ErrNoMoveFound) {
		t.Fatalf("err = %v, want ErrNoMoveFound", err)
	}
}

func TestBestMove_NoneMoveToken(t *testing.T) {
	sess, script := newScriptSession(t)
	script.On("go", "bestmove (none)")

	_, err := sess.BestMove(context.Background(), startFEN, 4)
	if !errors.Is(err, ucirun.ErrNoMoveFound) {
		t.Fatalf("err = %v, want ErrNoMoveFound", err)
	}
}

func TestBestMove_IgnoresChatter(t *testing.T) {
	sess, script := newScriptSession(t)
	script.Inject("Stockfish 16 by the Stockfish developers")
	script.On("go", "info string NNUE evaluation enabled", "junk line", "bestmove c7c5")

	mv, err := sess.BestMove(context.Background(), startFEN, 2)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if mv.Move != "c7c5" {
		t.Errorf("Move = %q, want c7c5", mv.Move)
	}
}

func TestBestMove_ConcurrentCallsSerialize(t *testing.T) {
	sess, script := newScriptSession(t)
	script.On("go depth 3", "bestmove a7a6")
	script.On("go depth 4", "bestmove b7b6")

	var wg sync.WaitGroup
	results := make([]ucirun.Move, 2)
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = sess.BestMove(context.Background(), startFEN, 3)
	}()
	go func() {
		defer wg.Done()
		results[1], errs[1] = sess.BestMove(context.Background(), startFEN, 4)
	}()
	wg.Wait()

	if errs[0] != nil || errs[1] != nil {
		t.Fatalf("errors: %v, %v", errs[0], errs[1])
	}
	if results[0].Move != "a7a6" {
		t.Errorf("depth-3 call got %q, want its own reply a7a6", results[0].Move)
	}
	if results[1].Move != "b7b6" {
		t.Errorf("depth-4 call got %q, want its own reply b7b6", results[1].Move)
	}

	// Conversations must not interleave: every go command is directly
	// preceded by its own position command.
	sent := script.Sent()
	for i, cmd := range sent {
		if strings.HasPrefix(cmd, "go ") {
			if i == 0 || !strings.HasPrefix(sent[i-1], "position ") {
				t.Errorf("go at index %d not preceded by position: %v", i, sent)
			}
		}
	}
}

func TestConfigure(t *testing.T) {
	sess, script := newScriptSession(t)

	if err := sess.Configure(0, 5); !errors.Is(err, ucirun.ErrInvalidParameter) {
		t.Errorf("depth 0: err = %v, want ErrInvalidParameter", err)
	}
	if err := sess.Configure(8, 21); !errors.Is(err, ucirun.ErrInvalidParameter) {
		t.Errorf("skill 21: err = %v, want ErrInvalidParameter", err)
	}
	if err := sess.Configure(8, 3); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	script.On("go", "bestmove e2e4")
	if _, err := sess.BestMove(context.Background(), startFEN, 8); err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	for _, cmd := range script.Sent() {
		if cmd == "setoption name Skill Level value 3" {
			return
		}
	}
	t.Errorf("configured skill not sent: %v", script.Sent())
}

func TestNewGame(t *testing.T) {
	sess, script := newScriptSession(t)

	if err := sess.NewGame(context.Background()); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	sent := script.Sent()
	if len(sent) != 2 || sent[0] != "ucinewgame" || sent[1] != "isready" {
		t.Errorf("sent = %v", sent)
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	sess, _ := newScriptSession(t)

	if err := sess.Shutdown(context.Background()); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := sess.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown = %v, want nil", err)
	}

	_, err := sess.BestMove(context.Background(), startFEN, 3)
	if !errors.Is(err, ucirun.ErrSessionDown) {
		t.Errorf("post-shutdown err = %v, want ErrSessionDown", err)
	}
	if err := sess.NewGame(context.Background()); !errors.Is(err, ucirun.ErrSessionDown) {
		t.Errorf("post-shutdown NewGame err = %v, want ErrSessionDown", err)
	}
}

func TestChannelFailure_FailsPendingAndFuture(t *testing.T) {
	sess, script := newScriptSession(t, ucirun.WithSearchTimeout(5*time.Second))

	// No scripted reply to go: the request stays pending until the
	// transport dies underneath it.
	done := make(chan error, 1)
	go func() {
		_, err := sess.BestMove(context.Background(), startFEN, 3)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	script.Fail(errors.New("engine crashed"))

	select {
	case err := <-done:
		if !errors.Is(err, ucirun.ErrChannel) {
			t.Errorf("pending err = %v, want ErrChannel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pending request not failed by channel death")
	}

	_, err := sess.BestMove(context.Background(), startFEN, 3)
	if !errors.Is(err, ucirun.ErrChannel) && !errors.Is(err, ucirun.ErrSessionDown) {
		t.Errorf("future err = %v, want ErrChannel or ErrSessionDown", err)
	}
}

func TestSession_IDStable(t *testing.T) {
	sess, _ := newScriptSession(t)
	if sess.ID() == "" {
		t.Error("session ID must be non-empty")
	}
	if sess.ID() != sess.ID() {
		t.Error("session ID must be stable")
	}
}

// overlapChannel mimics an engine that keeps searching past the
// caller's deadline while answering setup probes out of band: isready
// gets an immediate readyok even mid-search, the first go's bestmove
// arrives long after dispatch, and later searches resolve instantly.
// A FIFO-scripted channel cannot express this interleaving.
type overlapChannel struct {
	mu      sync.Mutex
	handler ucirun.LineHandler
	goCount int

	done      chan struct{}
	closeOnce sync.Once
}

func newOverlapChannel() *overlapChannel {
	return &overlapChannel{done: make(chan struct{})}
}

func (c *overlapChannel) Send(_ context.Context, command string) error {
	select {
	case <-c.done:
		return errors.New("overlap: channel closed")
	default:
	}

	switch {
	case command == "isready":
		c.deliver("readyok")
	case strings.HasPrefix(command, "go"):
		c.mu.Lock()
		c.goCount++
		n := c.goCount
		c.mu.Unlock()
		if n == 1 {
			go func() {
				select {
				case <-time.After(250 * time.Millisecond):
					c.deliver("bestmove a1a1")
				case <-c.done:
				}
			}()
			return nil
		}
		c.deliver("bestmove d2d4")
	}
	return nil
}

func (c *overlapChannel) SetLineHandler(h ucirun.LineHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *overlapChannel) Done() <-chan struct{} { return c.done }

func (c *overlapChannel) Err() error { return nil }

func (c *overlapChannel) Close(context.Context) error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func (c *overlapChannel) deliver(lines ...string) {
	go func() {
		for _, ln := range lines {
			c.mu.Lock()
			h := c.handler
			c.mu.Unlock()
			if h != nil {
				h(ln)
			}
		}
	}()
}

func TestBestMove_TimeoutAbsorbsLateBestMove(t *testing.T) {
	ch := newOverlapChannel()
	sess := ucirun.NewSession(ch,
		ucirun.WithSearchTimeout(100*time.Millisecond),
		ucirun.WithSetupTimeout(time.Second),
	)
	t.Cleanup(func() { _ = sess.Shutdown(context.Background()) })

	// First search times out; its bestmove is still in flight.
	_, err := sess.BestMove(context.Background(), startFEN, 3)
	if !errors.Is(err, ucirun.ErrTimeout) {
		t.Fatalf("first err = %v, want ErrTimeout", err)
	}

	// The abandoned search's a1a1 must not resolve this conversation.
	mv, err := sess.BestMove(context.Background(), startFEN, 3)
	if err != nil {
		t.Fatalf("second BestMove: %v", err)
	}
	if mv.Move != "d2d4" {
		t.Errorf("Move = %q, want d2d4, not the abandoned search's reply", mv.Move)
	}
}
