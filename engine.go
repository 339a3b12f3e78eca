package ucirun

import "context"

// Engine starts and validates engine channels.
//
// Implementations include the UCI subprocess engine (engine/uci) and the
// scripted in-memory engine used in tests (enginetest). Use Validate to
// check that the engine's prerequisites are met before calling Start.
type Engine interface {
	// Start launches the engine process, performs any protocol handshake,
	// and returns a live Channel ready for a Session.
	Start(ctx context.Context) (Channel, error)

	// Validate checks that the engine is available and ready.
	// For subprocess engines, this verifies the binary exists on PATH.
	Validate() error
}
