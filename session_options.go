package ucirun

import (
	"time"

	"github.com/rs/zerolog"
)

// Default session configuration values.
const (
	defaultSkillLevel  = 10
	defaultSearchDepth = 12

	// defaultSetupTimeout bounds each setup sub-request (readiness probe
	// and friends). Setup replies are near-instant on a healthy engine.
	defaultSetupTimeout = 2 * time.Second

	// Depth-scaled search deadline: engines think longer at higher
	// depths, so the timeout grows with the requested depth.
	searchTimeoutBase   = 5 * time.Second
	searchTimeoutPerPly = time.Second

	// defaultQuiescenceWindow is how long a streaming analysis waits for
	// another info line before treating the output as settled.
	defaultQuiescenceWindow = 500 * time.Millisecond

	// defaultRetention is how many recent info lines an analysis keeps.
	defaultRetention = 5

	// defaultLineBuffer is the classified-line channel depth between the
	// transport callback and the awaiting conversation.
	defaultLineBuffer = 64
)

// SessionOptions holds resolved construction-time configuration for a
// Session. Use NewSession with SessionOption functions to customize.
type SessionOptions struct {
	// SkillLevel is the engine strength sent before best-move searches.
	SkillLevel int

	// SearchDepth is the default depth used by Configure-less sessions.
	SearchDepth int

	// SetupTimeout bounds each setup sub-request and the post-stop drain.
	SetupTimeout time.Duration

	// SearchTimeout, when positive, overrides the depth-scaled search
	// deadline with a fixed one.
	SearchTimeout time.Duration

	// QuiescenceWindow is the silence interval after which a streaming
	// analysis resolves with its accumulated lines.
	QuiescenceWindow time.Duration

	// Retention is the bounded analysis buffer size (most recent lines).
	Retention int

	// LineBuffer is the classified-line channel depth. Lines beyond it
	// are dropped with a warning rather than blocking the transport.
	LineBuffer int

	// InfoFilter selects which info lines a streaming analysis keeps.
	// Nil keeps all of them. See the filter package for combinators.
	InfoFilter func(Line) bool

	// Logger receives session diagnostics. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// SessionOption configures a Session at construction time.
type SessionOption func(*SessionOptions)

// WithSkillLevel sets the engine strength (0-20) for best-move searches.
// Out-of-range values are ignored.
func WithSkillLevel(level int) SessionOption {
	return func(o *SessionOptions) {
		if level >= 0 && level <= 20 {
			o.SkillLevel = level
		}
	}
}

// WithSearchDepth sets the session's default search depth.
// Values < 1 are ignored.
func WithSearchDepth(depth int) SessionOption {
	return func(o *SessionOptions) {
		if depth >= 1 {
			o.SearchDepth = depth
		}
	}
}

// WithSetupTimeout sets the per-sub-request setup deadline.
// Values <= 0 are ignored.
func WithSetupTimeout(d time.Duration) SessionOption {
	return func(o *SessionOptions) {
		if d > 0 {
			o.SetupTimeout = d
		}
	}
}

// WithSearchTimeout replaces the depth-scaled search deadline with a
// fixed one. Values <= 0 are ignored.
func WithSearchTimeout(d time.Duration) SessionOption {
	return func(o *SessionOptions) {
		if d > 0 {
			o.SearchTimeout = d
		}
	}
}

// WithQuiescenceWindow sets the streaming-analysis silence window.
// Values <= 0 are ignored.
func WithQuiescenceWindow(d time.Duration) SessionOption {
	return func(o *SessionOptions) {
		if d > 0 {
			o.QuiescenceWindow = d
		}
	}
}

// WithRetention sets how many recent info lines an analysis keeps.
// Values <= 0 are ignored.
func WithRetention(n int) SessionOption {
	return func(o *SessionOptions) {
		if n > 0 {
			o.Retention = n
		}
	}
}

// WithLineBuffer sets the classified-line channel depth.
// Values <= 0 are ignored.
func WithLineBuffer(n int) SessionOption {
	return func(o *SessionOptions) {
		if n > 0 {
			o.LineBuffer = n
		}
	}
}

// WithInfoFilter selects which info lines streaming analysis keeps.
func WithInfoFilter(keep func(Line) bool) SessionOption {
	return func(o *SessionOptions) {
		o.InfoFilter = keep
	}
}

// WithLogger installs a logger for session diagnostics.
func WithLogger(log zerolog.Logger) SessionOption {
	return func(o *SessionOptions) {
		o.Logger = log
	}
}

func resolveSessionOptions(opts ...SessionOption) SessionOptions {
	o := SessionOptions{
		SkillLevel:       defaultSkillLevel,
		SearchDepth:      defaultSearchDepth,
		SetupTimeout:     defaultSetupTimeout,
		QuiescenceWindow: defaultQuiescenceWindow,
		Retention:        defaultRetention,
		LineBuffer:       defaultLineBuffer,
		Logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// searchDeadline computes the deadline for a search sub-request.
func (s *Session) searchDeadline(depth int) time.Duration {
	if s.opts.SearchTimeout > 0 {
		return s.opts.SearchTimeout
	}
	return searchTimeoutBase + time.Duration(depth)*searchTimeoutPerPly
}
