package jobctl

import "sync"

// Gate is kiln's translation of the POSIX "block SIGCHLD around any
// Job Table access" discipline (SPEC_FULL.md §4.2). Go delivers SIGCHLD
// through a dedicated runtime goroutine rather than a true async-signal
// context, so there is nothing to literally mask; the idiomatic
// equivalent is mutual exclusion between the goroutine that reads
// console input and dispatches commands (the "main thread of control")
// and the Reaper's background goroutine, the only other place that
// touches the table.
//
// The main thread of control uses Block/Unblock, which are re-entrant
// (a holder may Block again; only the outermost Unblock releases). Both
// Launch and the `fg` builtin hold the gate across the same WaitForJob
// loop. The Reaper's background
// goroutine bypasses the depth counter and locks raw directly, so a
// Block from the main goroutine still queues behind a reap in progress.
type Gate struct {
	raw   sync.Mutex
	depth int
}

// NewGate returns an unblocked gate.
func NewGate() *Gate {
	return &Gate{}
}

// Block acquires the gate, reentrantly.
func (g *Gate) Block() {
	if g.depth == 0 {
		g.raw.Lock()
	}
	g.depth++
}

// Unblock releases one level of a Block call.
func (g *Gate) Unblock() {
	g.depth--
	if g.depth == 0 {
		g.raw.Unlock()
	}
}

// IsBlocked reports whether the main thread of control currently holds
// the gate. Used to assert invariants at entry points that must only run
// with the Job Table protected.
func (g *Gate) IsBlocked() bool {
	return g.depth > 0
}
