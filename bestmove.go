package ucirun

import (
	"context"
	"fmt"
	"time"
)

// Move is the engine's answer to a single-shot best-move request.
type Move struct {
	// Move is the best move in coordinate notation (e.g. "e2e4").
	Move string

	// Ponder is the engine's suggested reply to think on, if offered.
	Ponder string
}

// BestMove asks the engine for the best move in the given position.
//
// The conversation runs new-game, readiness probe, skill option, and
// position setup under short fixed deadlines, then a fixed-depth search
// awaited on the terminal bestmove line under a depth-scaled deadline.
// A setup failure aborts the whole call. A search timeout stops the
// engine, absorbs the abandoned search's late terminal line, and is
// returned as [ErrTimeout], leaving the session usable for subsequent
// calls. No automatic retry is performed.
func (s *Session) BestMove(ctx context.Context, fen string, depth int) (Move, error) {
	if err := validateDepth(depth); err != nil {
		return Move{}, err
	}
	if err := sanitizeFEN(fen); err != nil {
		return Move{}, err
	}
	searchCmd, err := EncodeSearch(depth, SearchFixedDepth)
	if err != nil {
		return Move{}, err
	}

	if err := s.acquire(ctx); err != nil {
		return Move{}, err
	}
	defer s.release()

	s.mu.Lock()
	skill := s.skill
	s.mu.Unlock()

	log := s.log.With().Str("fen", fen).Int("depth", depth).Logger()
	log.Debug().Msg("best-move conversation start")

	if err := s.resetAndProbe(ctx); err != nil {
		return Move{}, err
	}
	if err := s.send(ctx, EncodeSkillLevel(skill)); err != nil {
		return Move{}, err
	}
	if err := s.send(ctx, EncodeSetPosition(fen)); err != nil {
		return Move{}, err
	}

	lines, detach := s.attach()
	defer detach()

	if err := s.send(ctx, searchCmd); err != nil {
		return Move{}, err
	}

	timeout := s.searchDeadline(depth)
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case ln := <-lines:
			if ln.Type != LineBestMove {
				continue
			}
			if ln.Move == "" {
				return Move{}, fmt.Errorf("%w: terminal line %q", ErrNoMoveFound, ln.Raw)
			}
			s.mu.Lock()
			s.fen = fen
			s.mu.Unlock()
			log.Debug().Str("move", ln.Move).Str("ponder", ln.Ponder).Msg("best-move resolved")
			return Move{Move: ln.Move, Ponder: ln.Ponder}, nil

		case <-deadline.C:
			// The engine may still be searching. Halt it and absorb its
			// late terminal line before the slot is released, so the stale
			// bestmove cannot be attributed to a later conversation.
			_, _ = s.drainAfterStop(ctx, lines)
			log.Debug().Dur("timeout", timeout).Msg("search deadline elapsed")
			return Move{}, fmt.Errorf("%w: no reply to %q within %s", ErrTimeout, searchCmd, timeout)

		case <-s.down:
			return Move{}, s.cause()

		case <-ctx.Done():
			_, _ = s.drainAfterStop(ctx, lines)
			return Move{}, ctx.Err()
		}
	}
}
