package ucirun

import (
	"fmt"
	"strconv"
	"strings"
)

// LineType identifies the kind of output line from an engine.
type LineType string

const (
	// LineReady is the readiness acknowledgement (readyok).
	LineReady LineType = "ready"

	// LineOption is an option acknowledgement/description line.
	LineOption LineType = "option"

	// LineInfo is a search progress line carrying depth, score, and
	// principal variation.
	LineInfo LineType = "info"

	// LineBestMove is the terminal search result.
	LineBestMove LineType = "bestmove"

	// LineUnknown is any line matching no known marker. Unknown lines
	// are valid classifications, not errors — engines chatter freely.
	LineUnknown LineType = "unknown"
)

// Line is a classified engine output line.
//
// For LineInfo, Depth/Score/PV are best-effort extractions for display:
// malformed numeric fields degrade to the raw line rather than failing
// classification, so the aggregator can still retain the line.
type Line struct {
	// Type identifies the kind of line.
	Type LineType

	// Move is the best-move token (LineBestMove only).
	Move string

	// Ponder is the suggested ponder move, if the engine offered one.
	Ponder string

	// Depth is the search depth reported by an info line, 0 if absent
	// or unparseable.
	Depth int

	// Score is the raw score clause ("cp 34", "mate 3"), empty if absent.
	Score string

	// PV is the principal variation as a space-joined move list.
	PV string

	// Raw is the original unparsed line.
	Raw string
}

// noBestMoveSentinel is the error line some engines print instead of a
// bestmove when no legal move exists.
const noBestMoveSentinel = "no bestmove"

// Classify inspects one engine output line and returns its classification.
//
// A bestmove marker with no playable move token ("bestmove",
// "bestmove (none)"), and the explicit "No bestmove found" sentinel,
// classify as LineBestMove with [ErrNoMoveFound] — distinct from
// LineUnknown, which matches no marker at all and carries no error.
func Classify(raw string) (Line, error) {
	ln := Line{Type: LineUnknown, Raw: raw}

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ln, nil
	}

	switch fields[0] {
	case "readyok":
		ln.Type = LineReady
		return ln, nil

	case "option":
		ln.Type = LineOption
		return ln, nil

	case "info":
		ln.Type = LineInfo
		classifyInfo(fields[1:], &ln)
		return ln, nil

	case "bestmove":
		ln.Type = LineBestMove
		if len(fields) < 2 {
			return ln, fmt.Errorf("%w: bare bestmove marker in %q", ErrNoMoveFound, raw)
		}
		// Stockfish prints "bestmove (none)" in mated and stalemated
		// positions; it carries no playable move.
		if fields[1] == "(none)" {
			return ln, fmt.Errorf("%w: engine reported %q", ErrNoMoveFound, raw)
		}
		ln.Move = fields[1]
		for i := 2; i < len(fields)-1; i++ {
			if fields[i] == "ponder" {
				ln.Ponder = fields[i+1]
				break
			}
		}
		return ln, nil
	}

	if strings.HasPrefix(strings.ToLower(raw), noBestMoveSentinel) {
		ln.Type = LineBestMove
		return ln, fmt.Errorf("%w: engine reported %q", ErrNoMoveFound, strings.TrimSpace(raw))
	}

	return ln, nil
}

// classifyInfo extracts depth, score, and pv from an info line's fields.
// Extraction is best-effort: a malformed field leaves its slot zero and
// the caller falls back to Line.Raw for display.
func classifyInfo(fields []string, ln *Line) {
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				if d, err := strconv.Atoi(fields[i+1]); err == nil && d >= 0 {
					ln.Depth = d
				}
				i++
			}
		case "score":
			// Score is a two-token clause: "cp N" or "mate N".
			if i+2 < len(fields) {
				unit, val := fields[i+1], fields[i+2]
				if unit == "cp" || unit == "mate" {
					if _, err := strconv.Atoi(val); err == nil {
						ln.Score = unit + " " + val
					}
					i += 2
				}
			}
		case "pv":
			if i+1 < len(fields) {
				ln.PV = strings.Join(fields[i+1:], " ")
			}
			return
		}
	}
}

// Display renders a classified line for user-facing output. Info lines
// with usable fields render compactly; everything else falls back to the
// raw line.
func (l Line) Display() string {
	if l.Type != LineInfo || l.Depth == 0 {
		return l.Raw
	}
	var b strings.Builder
	fmt.Fprintf(&b, "depth %d", l.Depth)
	if l.Score != "" {
		b.WriteString(" score " + l.Score)
	}
	if l.PV != "" {
		b.WriteString(" pv " + l.PV)
	}
	return b.String()
}
