// Package filter provides composable predicates over classified engine
// lines. Sessions use them as the streaming keep filter
// (ucirun.WithInfoFilter); the CLI builds them from flags such as
// --min-depth.
package filter

import "github.com/fenwick/ucirun"

// Keep decides whether a streaming analysis retains a line.
type Keep func(ucirun.Line) bool

// Type keeps lines of the given types.
func Type(types ...ucirun.LineType) Keep {
	allowed := make(map[ucirun.LineType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return func(ln ucirun.Line) bool {
		_, ok := allowed[ln.Type]
		return ok
	}
}

// MinDepth keeps info lines whose reported depth is at least n.
// Lines without a parseable depth are dropped.
func MinDepth(n int) Keep {
	return func(ln ucirun.Line) bool {
		return ln.Depth >= n
	}
}

// Scored keeps info lines that carry a score clause. Engines emit
// housekeeping info lines (hashfull, currmove) with no score; this
// drops them.
func Scored() Keep {
	return func(ln ucirun.Line) bool {
		return ln.Score != ""
	}
}

// All keeps lines accepted by every given predicate.
func All(keeps ...Keep) Keep {
	return func(ln ucirun.Line) bool {
		for _, k := range keeps {
			if !k(ln) {
				return false
			}
		}
		return true
	}
}

// Any keeps lines accepted by at least one given predicate.
func Any(keeps ...Keep) Keep {
	return func(ln ucirun.Line) bool {
		for _, k := range keeps {
			if k(ln) {
				return true
			}
		}
		return false
	}
}
