package ucirun

import (
	"fmt"
	"strconv"
	"strings"
)

// SearchMode selects how a search command bounds the engine's work.
type SearchMode int

const (
	// SearchFixedDepth searches to an exact ply depth (`go depth N`).
	SearchFixedDepth SearchMode = iota

	// SearchInfinite searches until stopped (`go infinite`).
	SearchInfinite
)

// EncodeSetPosition builds the position command for a FEN string.
// The empty string encodes the standard starting position.
func EncodeSetPosition(fen string) string {
	if fen == "" {
		return "position startpos"
	}
	return "position fen " + fen
}

// EncodeSetOption builds a setoption command.
func EncodeSetOption(name, value string) string {
	return "setoption name " + name + " value " + value
}

// EncodeSearch builds a go command for the given mode. Fixed-depth
// searches require depth >= 1; infinite searches ignore depth.
func EncodeSearch(depth int, mode SearchMode) (string, error) {
	switch mode {
	case SearchInfinite:
		return "go infinite", nil
	case SearchFixedDepth:
		if depth < 1 {
			return "", fmt.Errorf("%w: search depth %d", ErrInvalidParameter, depth)
		}
		return "go depth " + strconv.Itoa(depth), nil
	default:
		return "", fmt.Errorf("%w: search mode %d", ErrInvalidParameter, int(mode))
	}
}

// EncodeStop builds the advisory stop command. The engine may still emit
// a final bestmove line afterward.
func EncodeStop() string { return "stop" }

// EncodeNewGame builds the new-game command.
func EncodeNewGame() string { return "ucinewgame" }

// EncodeReady builds the readiness probe. The engine answers readyok
// once all preceding commands have been absorbed.
func EncodeReady() string { return "isready" }

// EncodeSkillLevel builds the skill option command for the conventional
// "Skill Level" engine option.
func EncodeSkillLevel(level int) string {
	return EncodeSetOption("Skill Level", strconv.Itoa(level))
}

// sanitizeFEN rejects FEN strings that would break the line protocol.
func sanitizeFEN(fen string) error {
	if strings.ContainsAny(fen, "\r\n") {
		return fmt.Errorf("%w: position contains line breaks", ErrInvalidParameter)
	}
	return nil
}
