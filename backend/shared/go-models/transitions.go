// go-models/transitions.go
package models

import "slices"

// TransitionTable maps a status to the set of statuses it may move to.
// A status with an empty (or missing) entry is terminal.
type TransitionTable[S ~string] map[S][]S

// CanTransition is the single check shared by every status-changing entry point.
func (t TransitionTable[S]) CanTransition(from, to S) bool {
	allowed, ok := t[from]
	if !ok {
		return false
	}
	return slices.Contains(allowed, to)
}

// Next returns a copy of the statuses reachable from s.
func (t TransitionTable[S]) Next(s S) []S {
	return slices.Clone(t[s])
}

func (t TransitionTable[S]) IsTerminal(s S) bool {
	return len(t[s]) == 0
}

// Known reports whether s appears as a key of the table.
func (t TransitionTable[S]) Known(s S) bool {
	_, ok := t[s]
	return ok
}
