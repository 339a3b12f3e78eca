package ucirun

import "context"

// LineHandler receives one raw engine output line.
//
// The channel invokes the handler from its read goroutine, one line at a
// time, in delivery order. Handlers must not block for long: a slow
// handler stalls the channel's read loop.
type LineHandler func(line string)

// Channel is a bidirectional, line-oriented connection to an engine
// process. It carries no request/response correlation of its own — the
// engine's output lines are unsolicited and unlabelled, and exactly one
// handler may be attached at a time. [Session] layers the conversation
// discipline on top.
//
// Channel is an interface to enable scripted test doubles (enginetest)
// and wrapping with logging or metrics middleware.
type Channel interface {
	// Send writes one protocol command to the engine. The trailing
	// newline is the channel's concern, not the caller's. A transport
	// failure is terminal: Done is closed and Err reports the cause.
	Send(ctx context.Context, command string) error

	// SetLineHandler attaches the handler invoked for every output line.
	// Passing nil detaches; lines arriving while detached are dropped.
	// Replaces any previously attached handler.
	SetLineHandler(h LineHandler)

	// Done is closed when the channel terminates, whether by Close or by
	// transport failure. No lines are delivered after Done closes.
	Done() <-chan struct{}

	// Err returns the terminal error after Done is closed, or nil while
	// the channel is live or after a clean Close.
	Err() error

	// Close tears down the transport. Safe to call multiple times.
	Close(ctx context.Context) error
}
