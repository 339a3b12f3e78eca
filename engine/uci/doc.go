// Package uci provides the subprocess-backed [ucirun.Channel]: it
// spawns a UCI engine binary (Stockfish and friends), pumps its stdout
// line by line to the attached handler, and performs the uci/isready
// startup handshake before handing the channel to a session.
//
// The package is Unix-only; shutdown escalates quit → stdin close →
// SIGKILL after a grace period.
package uci
