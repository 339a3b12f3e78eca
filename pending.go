package ucirun

import (
	"context"
	"fmt"
	"time"
)

// attach wires the channel's line callback to a fresh classified-line
// feed and returns it together with a detach function. Exactly one feed
// is live at a time: detach must run before the conversation slot is
// released, so lines from a settled request cannot reach a later one.
//
// The callback never blocks the transport: if the feed is full the line
// is dropped with a warning. Classification errors (no-move terminals)
// still produce a routable Line — the awaiting caller inspects the
// payload and maps it to [ErrNoMoveFound].
func (s *Session) attach() (<-chan Line, func()) {
	lines := make(chan Line, s.opts.LineBuffer)
	s.channel.SetLineHandler(func(raw string) {
		ln, _ := Classify(raw)
		select {
		case lines <- ln:
		default:
			s.log.Warn().Str("line", raw).Msg("line feed full, dropping")
		}
	})
	return lines, func() { s.channel.SetLineHandler(nil) }
}

// roundTrip dispatches one command and blocks until the first line
// satisfying done arrives, the deadline elapses, the session is torn
// down, or ctx is cancelled. Non-terminal lines are discarded. Callers
// must hold the conversation slot.
//
// Resolution is single-shot by construction: this goroutine is the only
// consumer of the line feed, and the handler is detached on return.
func (s *Session) roundTrip(ctx context.Context, command string, timeout time.Duration, done func(Line) bool) (Line, error) {
	lines, detach := s.attach()
	defer detach()

	if err := s.send(ctx, command); err != nil {
		return Line{}, err
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case ln := <-lines:
			if done(ln) {
				return ln, nil
			}

		case <-deadline.C:
			s.log.Debug().Str("command", command).Dur("timeout", timeout).Msg("request deadline elapsed")
			return Line{}, fmt.Errorf("%w: no reply to %q within %s", ErrTimeout, command, timeout)

		case <-s.down:
			return Line{}, s.cause()

		case <-ctx.Done():
			return Line{}, ctx.Err()
		}
	}
}

// drainAfterStop issues the advisory stop command and keeps listening on
// the feed until the engine's final terminal line arrives or a short
// grace deadline elapses. Stop is advisory: the engine may still emit a
// bestmove afterward, and absorbing it here keeps it from leaking into
// the next conversation.
func (s *Session) drainAfterStop(ctx context.Context, lines <-chan Line) (Line, bool) {
	if err := s.send(ctx, EncodeStop()); err != nil {
		return Line{}, false
	}

	grace := time.NewTimer(s.opts.SetupTimeout)
	defer grace.Stop()

	for {
		select {
		case ln := <-lines:
			if ln.Type == LineBestMove {
				return ln, true
			}
		case <-grace.C:
			return Line{}, false
		case <-s.down:
			return Line{}, false
		case <-ctx.Done():
			return Line{}, false
		}
	}
}
