// Package ucirun coordinates request/response conversations with a UCI
// chess engine over a line-oriented message channel.
//
// UCI engines emit unsolicited, unlabelled output: there are no request
// identifiers on the wire, and lines belonging to distinct logical
// requests are indistinguishable once they interleave. ucirun removes
// that hazard by funnelling every command through a single-slot request
// queue — one conversation owns the channel at a time, with its own
// completion predicate, deadline, and single-assignment result.
//
// # Core Types
//
//   - [Engine] — starts and validates engine channels
//   - [Channel] — a live line-oriented connection to an engine process
//   - [Session] — the coordinator owning one channel and its request slot
//   - [Line] — a classified engine output line
//   - [Analysis] — the aggregated result of a streaming analysis call
//
// # Quick Start
//
//	eng := uci.NewEngine("stockfish")
//	ch, err := eng.Start(ctx)
//	if err != nil { log.Fatal(err) }
//	sess := ucirun.NewSession(ch)
//	defer sess.Shutdown(ctx)
//	mv, err := sess.BestMove(ctx, fen, 12)
//
// The engine/uci package provides the subprocess-backed [Channel];
// enginetest provides a scripted in-memory one for tests.
package ucirun
