package ucirun

import (
	"context"
	"time"
)

// Analysis is the aggregated result of one streaming analysis call:
// the most recent retained info lines, plus the terminal best move when
// the engine produced one before the call resolved.
type Analysis struct {
	Lines    []string
	BestMove string
}

// Empty reports whether the analysis produced nothing at all.
func (a Analysis) Empty() bool {
	return len(a.Lines) == 0 && a.BestMove == ""
}

// Text renders the analysis for display. An empty analysis renders the
// "no analysis available" sentinel rather than a blank panel.
func (a Analysis) Text() string {
	if a.Empty() {
		return "no analysis available"
	}
	out := ""
	for _, l := range a.Lines {
		out += l + "\n"
	}
	if a.BestMove != "" {
		out += "best move: " + a.BestMove + "\n"
	}
	return out
}

// accumulator retains the most recent max display lines. Scoped to one
// Analyze call; never outlives it.
type accumulator struct {
	max   int
	lines []string
}

func (a *accumulator) add(line string) {
	a.lines = append(a.lines, line)
	if len(a.lines) > a.max {
		a.lines = a.lines[len(a.lines)-a.max:]
	}
}

func (a *accumulator) snapshot() []string {
	if len(a.lines) == 0 {
		return nil
	}
	out := make([]string, len(a.lines))
	copy(out, a.lines)
	return out
}

// Analyze runs a streaming analysis of the given position.
//
// Every kept info line enters a bounded buffer of the most recent lines
// and is echoed to onProgress (when non-nil) for live display. The call
// resolves on the first of:
//
//   - a terminal bestmove line — the move is attached to the result;
//   - quiescence — no new info line within the quiescence window after
//     at least one arrived; a stop is issued, the engine's late terminal
//     line (if any) is absorbed, and the buffered lines are returned;
//   - the overall depth-scaled deadline — buffered lines are returned,
//     which with zero info lines yields the empty-analysis sentinel.
//
// Later resolution paths are inert: the first one to fire detaches the
// line handler and settles the call.
func (s *Session) Analyze(ctx context.Context, fen string, depth int, onProgress func([]string)) (Analysis, error) {
	if err := validateDepth(depth); err != nil {
		return Analysis{}, err
	}
	if err := sanitizeFEN(fen); err != nil {
		return Analysis{}, err
	}
	searchCmd, err := EncodeSearch(depth, SearchFixedDepth)
	if err != nil {
		return Analysis{}, err
	}

	if err := s.acquire(ctx); err != nil {
		return Analysis{}, err
	}
	defer s.release()

	log := s.log.With().Str("fen", fen).Int("depth", depth).Logger()
	log.Debug().Msg("analysis conversation start")

	if err := s.resetAndProbe(ctx); err != nil {
		return Analysis{}, err
	}
	if err := s.send(ctx, EncodeSetPosition(fen)); err != nil {
		return Analysis{}, err
	}

	keep := s.opts.InfoFilter
	if keep == nil {
		keep = func(Line) bool { return true }
	}

	lines, detach := s.attach()
	defer detach()

	if err := s.send(ctx, searchCmd); err != nil {
		return Analysis{}, err
	}

	acc := &accumulator{max: s.opts.Retention}
	overall := time.NewTimer(s.searchDeadline(depth))
	defer overall.Stop()

	// The quiescence timer is armed by the first info line and re-armed
	// by every subsequent one.
	var quiesce *time.Timer
	var quiesceC <-chan time.Time
	defer func() {
		if quiesce != nil {
			quiesce.Stop()
		}
	}()

	s.mu.Lock()
	s.fen = fen
	s.mu.Unlock()

	for {
		select {
		case ln := <-lines:
			switch ln.Type {
			case LineBestMove:
				log.Debug().Str("move", ln.Move).Int("lines", len(acc.lines)).Msg("analysis resolved on bestmove")
				return Analysis{Lines: acc.snapshot(), BestMove: ln.Move}, nil

			case LineInfo:
				if !keep(ln) {
					continue
				}
				acc.add(ln.Display())
				if onProgress != nil {
					onProgress(acc.snapshot())
				}
				if quiesce == nil {
					quiesce = time.NewTimer(s.opts.QuiescenceWindow)
					quiesceC = quiesce.C
				} else {
					if !quiesce.Stop() {
						select {
						case <-quiesce.C:
						default:
						}
					}
					quiesce.Reset(s.opts.QuiescenceWindow)
				}
			}

		case <-quiesceC:
			// Output has settled. Halt further engine work and absorb a
			// late terminal line so it cannot bleed into the next call.
			ln, ok := s.drainAfterStop(ctx, lines)
			res := Analysis{Lines: acc.snapshot()}
			if ok {
				res.BestMove = ln.Move
			}
			log.Debug().Int("lines", len(res.Lines)).Msg("analysis resolved on quiescence")
			return res, nil

		case <-overall.C:
			_, _ = s.drainAfterStop(ctx, lines)
			log.Debug().Int("lines", len(acc.lines)).Msg("analysis resolved on overall deadline")
			return Analysis{Lines: acc.snapshot()}, nil

		case <-s.down:
			return Analysis{}, s.cause()

		case <-ctx.Done():
			_, _ = s.drainAfterStop(ctx, lines)
			return Analysis{}, ctx.Err()
		}
	}
}
