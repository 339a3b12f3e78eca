package ucirun

import (
	"errors"
	"testing"
)

func TestClassify_Ready(t *testing.T) {
	ln, err := Classify("readyok")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if ln.Type != LineReady {
		t.Errorf("Type = %q, want ready", ln.Type)
	}
}

func TestClassify_Option(t *testing.T) {
	ln, err := Classify("option name Skill Level type spin default 20 min 0 max 20")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if ln.Type != LineOption {
		t.Errorf("Type = %q, want option", ln.Type)
	}
}

func TestClassify_Info(t *testing.T) {
	ln, err := Classify("info depth 12 seldepth 18 score cp 34 nodes 90210 pv e2e4 e7e5 g1f3")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if ln.Type != LineInfo {
		t.Fatalf("Type = %q, want info", ln.Type)
	}
	if ln.Depth != 12 {
		t.Errorf("Depth = %d, want 12", ln.Depth)
	}
	if ln.Score != "cp 34" {
		t.Errorf("Score = %q, want cp 34", ln.Score)
	}
	if ln.PV != "e2e4 e7e5 g1f3" {
		t.Errorf("PV = %q", ln.PV)
	}
}

func TestClassify_InfoMateScore(t *testing.T) {
	ln, _ := Classify("info depth 20 score mate 3 pv h5f7")
	if ln.Score != "mate 3" {
		t.Errorf("Score = %q, want mate 3", ln.Score)
	}
}

func TestClassify_InfoMalformedDegradesToRaw(t *testing.T) {
	const raw = "info depth banana score cp soup pv"
	ln, err := Classify(raw)
	if err != nil {
		t.Fatalf("malformed info must not be a classification error: %v", err)
	}
	if ln.Type != LineInfo {
		t.Fatalf("Type = %q, want info", ln.Type)
	}
	if ln.Depth != 0 || ln.Score != "" {
		t.Errorf("malformed fields must stay zero: depth=%d score=%q", ln.Depth, ln.Score)
	}
	if ln.Display() != raw {
		t.Errorf("Display = %q, want the raw line", ln.Display())
	}
}

func TestClassify_BestMove(t *testing.T) {
	ln, err := Classify("bestmove e2e4 ponder e7e5")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if ln.Type != LineBestMove || ln.Move != "e2e4" || ln.Ponder != "e7e5" {
		t.Errorf("got %+v", ln)
	}
}

func TestClassify_BestMoveNoPonder(t *testing.T) {
	ln, _ := Classify("bestmove g8f6")
	if ln.Move != "g8f6" || ln.Ponder != "" {
		t.Errorf("got move=%q ponder=%q", ln.Move, ln.Ponder)
	}
}

func TestClassify_BareBestMove(t *testing.T) {
	ln, err := Classify("bestmove")
	if !errors.Is(err, ErrNoMoveFound) {
		t.Fatalf("err = %v, want ErrNoMoveFound", err)
	}
	if ln.Type != LineBestMove {
		t.Errorf("Type = %q, want bestmove (distinct from unknown)", ln.Type)
	}
}

func TestClassify_BestMoveNone(t *testing.T) {
	// Stockfish's reply in mated and stalemated positions.
	ln, err := Classify("bestmove (none)")
	if !errors.Is(err, ErrNoMoveFound) {
		t.Fatalf("err = %v, want ErrNoMoveFound", err)
	}
	if ln.Type != LineBestMove {
		t.Errorf("Type = %q, want bestmove", ln.Type)
	}
	if ln.Move != "" {
		t.Errorf("Move = %q, (none) is not a playable move", ln.Move)
	}
}

func TestClassify_NoBestMoveSentinel(t *testing.T) {
	ln, err := Classify("No bestmove found")
	if !errors.Is(err, ErrNoMoveFound) {
		t.Fatalf("err = %v, want ErrNoMoveFound", err)
	}
	if ln.Type != LineBestMove {
		t.Errorf("Type = %q, want bestmove", ln.Type)
	}
}

func TestClassify_Unrecognized(t *testing.T) {
	for _, raw := range []string{"", "   ", "id name Stockfish 16", "uciok", "Stockfish by the Stockfish team"} {
		ln, err := Classify(raw)
		if err != nil {
			t.Errorf("Classify(%q) err = %v, want nil", raw, err)
		}
		if ln.Type != LineUnknown {
			t.Errorf("Classify(%q).Type = %q, want unknown", raw, ln.Type)
		}
	}
}

func TestLineDisplay_Info(t *testing.T) {
	ln, _ := Classify("info depth 5 score cp -13 pv d7d5 c2c4")
	if got := ln.Display(); got != "depth 5 score cp -13 pv d7d5 c2c4" {
		t.Errorf("Display = %q", got)
	}
}
