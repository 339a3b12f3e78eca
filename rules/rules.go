// Package rules wraps the chess rules library behind the narrow surface
// the rest of the module consumes: board encodings (FEN) out, validated
// moves in. The session coordinator never parses or validates moves
// itself — it passes encodings opaquely between this package and the
// engine.
package rules

import (
	"fmt"

	"github.com/corentings/chess"
)

// StartingFEN is the board encoding of the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Board is a live game position.
type Board struct {
	game *chess.Game
}

// New returns a board at the starting position.
func New() *Board {
	return &Board{game: chess.NewGame()}
}

// FromFEN returns a board at the given encoded position.
func FromFEN(fen string) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("rules: parse fen %q: %w", fen, err)
	}
	return &Board{game: chess.NewGame(opt)}, nil
}

// FEN returns the board's current encoding.
func (b *Board) FEN() string {
	return b.game.Position().String()
}

// ApplyUCI validates and applies a move in coordinate notation
// (e.g. "e2e4", "e7e8q").
func (b *Board) ApplyUCI(move string) error {
	m, err := chess.UCINotation{}.Decode(b.game.Position(), move)
	if err != nil {
		return fmt.Errorf("rules: bad move %q: %w", move, err)
	}
	if err := b.game.Move(m); err != nil {
		return fmt.Errorf("rules: illegal move %q: %w", move, err)
	}
	return nil
}

// GameOver reports whether the game has a decided outcome.
func (b *Board) GameOver() bool {
	return b.game.Outcome() != chess.NoOutcome
}

// Outcome describes the result ("1-0", "0-1", "1/2-1/2", or "*" while
// the game is in progress).
func (b *Board) Outcome() string {
	return b.game.Outcome().String()
}

// SideToMove returns "white" or "black".
func (b *Board) SideToMove() string {
	if b.game.Position().Turn() == chess.White {
		return "white"
	}
	return "black"
}
