package ucirun

import "errors"

// Sentinel errors for session operations.
var (
	// ErrInvalidParameter indicates a locally rejected parameter
	// (negative depth, out-of-range skill). Never reaches the channel.
	ErrInvalidParameter = errors.New("ucirun: invalid parameter")

	// ErrTimeout indicates a request deadline elapsed before a matching
	// line arrived. The session returns to idle and remains usable.
	ErrTimeout = errors.New("ucirun: engine timeout")

	// ErrNoMoveFound indicates the engine produced its terminal marker
	// without a parseable move token, or reported the explicit
	// "No bestmove found" sentinel.
	ErrNoMoveFound = errors.New("ucirun: no move found")

	// ErrSessionDown indicates an operation was attempted after the
	// session was torn down (Shutdown or channel failure).
	ErrSessionDown = errors.New("ucirun: session torn down")

	// ErrChannel indicates a transport-level failure reported by the
	// message channel. The session is torn down: the pending request and
	// all future requests fail.
	ErrChannel = errors.New("ucirun: channel failure")
)
