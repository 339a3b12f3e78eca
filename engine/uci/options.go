package uci

import (
	"time"

	"github.com/rs/zerolog"
)

// Default engine configuration values.
const (
	defaultScannerBuffer    = 1 << 20 // 1 MB
	defaultGracePeriod      = 3 * time.Second
	defaultHandshakeTimeout = 5 * time.Second
	defaultReadyAttempts    = 3
)

// EngineOptions holds resolved construction-time configuration for a
// subprocess engine. Use NewEngine with EngineOption functions to
// customize these values.
type EngineOptions struct {
	// Args are extra command-line arguments for the engine binary.
	Args []string

	// ScannerBuffer is the maximum line size in bytes for the stdout
	// scanner. Long principal variations need room.
	ScannerBuffer int

	// GracePeriod is how long Close waits after quit before SIGKILL.
	GracePeriod time.Duration

	// HandshakeTimeout bounds each startup handshake exchange.
	HandshakeTimeout time.Duration

	// ReadyAttempts is how many times the startup readiness probe is
	// retried before Start gives up. Engines loading large nets can
	// need more than one.
	ReadyAttempts int

	// Logger receives channel diagnostics. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*EngineOptions)

// WithArgs sets extra command-line arguments for the engine binary.
func WithArgs(args ...string) EngineOption {
	return func(o *EngineOptions) {
		o.Args = args
	}
}

// WithScannerBuffer sets the maximum line size in bytes for the stdout
// scanner. Values <= 0 are ignored.
func WithScannerBuffer(size int) EngineOption {
	return func(o *EngineOptions) {
		if size > 0 {
			o.ScannerBuffer = size
		}
	}
}

// WithGracePeriod sets the duration Close waits before SIGKILL.
// Values <= 0 are ignored.
func WithGracePeriod(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		if d > 0 {
			o.GracePeriod = d
		}
	}
}

// WithHandshakeTimeout bounds each startup handshake exchange.
// Values <= 0 are ignored.
func WithHandshakeTimeout(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		if d > 0 {
			o.HandshakeTimeout = d
		}
	}
}

// WithReadyAttempts sets the startup readiness probe retry budget.
// Values <= 0 are ignored.
func WithReadyAttempts(n int) EngineOption {
	return func(o *EngineOptions) {
		if n > 0 {
			o.ReadyAttempts = n
		}
	}
}

// WithLogger installs a logger for channel diagnostics.
func WithLogger(log zerolog.Logger) EngineOption {
	return func(o *EngineOptions) {
		o.Logger = log
	}
}

func resolveEngineOptions(opts ...EngineOption) EngineOptions {
	o := EngineOptions{
		ScannerBuffer:    defaultScannerBuffer,
		GracePeriod:      defaultGracePeriod,
		HandshakeTimeout: defaultHandshakeTimeout,
		ReadyAttempts:    defaultReadyAttempts,
		Logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
