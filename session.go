package ucirun

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session coordinates conversations with one engine over one [Channel].
//
// The channel delivers unsolicited, unlabelled lines; Session enforces
// the discipline that makes them attributable: at most one conversation
// owns the channel at any instant. Concurrent callers are admitted
// through a single-slot queue in submission order, and each awaited
// request attaches the line handler at dispatch and detaches it at
// resolution, so lines from a settled request are never misrouted to a
// later one.
//
// Configuration fields (position, skill, depth) are mutated only by
// caller-issued operations, never from the channel's line callback.
type Session struct {
	channel Channel
	id      string
	opts    SessionOptions
	log     zerolog.Logger

	// slot is the conversation admission queue: a capacity-1 semaphore
	// held for the whole setup+search sequence of a high-level call.
	slot chan struct{}

	downOnce sync.Once
	down     chan struct{}
	downErr  error // written once inside downOnce, read after down closes

	mu    sync.Mutex
	fen   string
	depth int
	skill int
}

// NewSession creates a coordinator bound to ch. The session owns the
// channel handle: tear it down with Shutdown when the owning context
// ends. A channel that dies on its own tears the session down and fails
// the pending request with [ErrChannel].
func NewSession(ch Channel, opts ...SessionOption) *Session {
	o := resolveSessionOptions(opts...)
	s := &Session{
		channel: ch,
		id:      uuid.NewString(),
		opts:    o,
		slot:    make(chan struct{}, 1),
		down:    make(chan struct{}),
		depth:   o.SearchDepth,
		skill:   o.SkillLevel,
	}
	s.log = o.Logger.With().Str("session_id", s.id).Logger()

	// Channel watchdog: transport death fails the pending request and
	// everything after it.
	go func() {
		<-ch.Done()
		if err := ch.Err(); err != nil {
			s.teardown(fmt.Errorf("%w: %w", ErrChannel, err))
			return
		}
		s.teardown(ErrSessionDown)
	}()
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Configure sets the session's default search depth and skill level.
// Validation is local; nothing is sent to the engine until the next
// conversation.
func (s *Session) Configure(depth, skill int) error {
	if err := validateDepth(depth); err != nil {
		return err
	}
	if err := validateSkill(skill); err != nil {
		return err
	}
	s.mu.Lock()
	s.depth = depth
	s.skill = skill
	s.mu.Unlock()
	return nil
}

// Position returns the board encoding of the last position sent to the
// engine, or the empty string before any search.
func (s *Session) Position() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fen
}

// NewGame resets the engine's game state and waits for it to become
// ready again.
func (s *Session) NewGame(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return s.resetAndProbe(ctx)
}

// Shutdown tears the session down and closes the channel. Idempotent:
// a second call is a no-op returning nil. Any in-flight request fails
// with [ErrSessionDown]; so does every operation issued afterward.
func (s *Session) Shutdown(ctx context.Context) error {
	s.teardown(ErrSessionDown)
	return s.channel.Close(ctx)
}

// teardown latches the session's terminal cause. First caller wins.
func (s *Session) teardown(cause error) {
	s.downOnce.Do(func() {
		s.downErr = cause
		close(s.down)
		s.log.Debug().AnErr("cause", cause).Msg("session torn down")
	})
}

// cause returns the teardown error, or nil while the session is live.
func (s *Session) cause() error {
	select {
	case <-s.down:
		if s.downErr != nil {
			return s.downErr
		}
		return ErrSessionDown
	default:
		return nil
	}
}

// acquire admits the caller into the conversation slot, honoring queue
// order, teardown, and the caller's context.
func (s *Session) acquire(ctx context.Context) error {
	if err := s.cause(); err != nil {
		return err
	}
	select {
	case s.slot <- struct{}{}:
		// Teardown may have raced the admission; a torn-down session
		// must not start a conversation.
		if err := s.cause(); err != nil {
			s.release()
			return err
		}
		return nil
	case <-s.down:
		return s.cause()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) release() { <-s.slot }

// send writes one command to the channel. A transport failure is
// terminal for the session.
func (s *Session) send(ctx context.Context, command string) error {
	if err := s.cause(); err != nil {
		return err
	}
	if err := s.channel.Send(ctx, command); err != nil {
		wrapped := fmt.Errorf("%w: send %q: %w", ErrChannel, command, err)
		s.teardown(wrapped)
		return wrapped
	}
	s.log.Trace().Str("command", command).Msg("sent")
	return nil
}

// resetAndProbe runs the new-game sub-request followed by the readiness
// probe. Callers must hold the conversation slot.
func (s *Session) resetAndProbe(ctx context.Context) error {
	if err := s.send(ctx, EncodeNewGame()); err != nil {
		return err
	}
	_, err := s.roundTrip(ctx, EncodeReady(), s.opts.SetupTimeout, func(l Line) bool {
		return l.Type == LineReady
	})
	return err
}

func validateDepth(depth int) error {
	if depth < 1 {
		return fmt.Errorf("%w: search depth %d", ErrInvalidParameter, depth)
	}
	return nil
}

func validateSkill(skill int) error {
	if skill < 0 || skill > 20 {
		return fmt.Errorf("%w: skill level %d (want 0-20)", ErrInvalidParameter, skill)
	}
	return nil
}
