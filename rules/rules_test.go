package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StartsAtInitialPosition(t *testing.T) {
	b := New()
	assert.Equal(t, StartingFEN, b.FEN())
	assert.Equal(t, "white", b.SideToMove())
	assert.False(t, b.GameOver())
}

func TestFromFEN_RoundTrips(t *testing.T) {
	const sicilian = "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2"
	b, err := FromFEN(sicilian)
	require.NoError(t, err)
	assert.Equal(t, sicilian, b.FEN())
}

func TestFromFEN_RejectsGarbage(t *testing.T) {
	_, err := FromFEN("not a position at all")
	assert.Error(t, err)
}

func TestApplyUCI_LegalMove(t *testing.T) {
	b := New()
	require.NoError(t, b.ApplyUCI("e2e4"))
	assert.Equal(t, "black", b.SideToMove())
	assert.NotEqual(t, StartingFEN, b.FEN())
}

func TestApplyUCI_IllegalMove(t *testing.T) {
	b := New()
	assert.Error(t, b.ApplyUCI("e2e5"), "pawn cannot triple-step")
	assert.Error(t, b.ApplyUCI("zz99"), "not coordinate notation")
	// Board unchanged after rejections.
	assert.Equal(t, StartingFEN, b.FEN())
}

func TestOutcome_FoolsMate(t *testing.T) {
	b := New()
	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		require.NoError(t, b.ApplyUCI(mv))
	}
	assert.True(t, b.GameOver())
	assert.Equal(t, "0-1", b.Outcome())
}
