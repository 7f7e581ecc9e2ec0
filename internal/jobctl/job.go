// Package jobctl is kiln's job-control engine: the Job Table, the
// Stopped-Job Stack, the Signal Gate, the Child-Status Reaper, the
// Pipeline Launcher, and the Builtin Dispatcher described in
// SPEC_FULL.md §4. It is the core this whole exercise is about — the
// state machine that must stay race-free against asynchronous child
// status changes while it hands the controlling terminal back and
// forth between the shell and whichever job currently owns it.
package jobctl

import (
	"github.com/kilnsh/kiln/internal/lineparser"
	"github.com/kilnsh/kiln/internal/termstate"
)

// Status is a job's place in the state machine of SPEC_FULL.md §3.
type Status int

const (
	Foreground Status = iota
	Background
	Stopped
	NeedsTerminal
)

func (s Status) String() string {
	switch s {
	case Foreground:
		return "Foreground"
	case Background:
		return "Running"
	case Stopped:
		return "Stopped"
	case NeedsTerminal:
		return "Stopped (tty)"
	default:
		return "Unknown"
	}
}

// Pgid is a POSIX process group id, kept as its own type so it's never
// confused with a bare pid in a function signature.
type Pgid int

// Job is the shell's record of one launched pipeline.
type Job struct {
	JID      int
	Pipeline lineparser.Pipeline
	Cmdline  string

	Pgid       Pgid
	PIDs       []int
	AliveCount int
	Status     Status

	// SavedTTY is valid iff the job has ever held the terminal and is not
	// currently holding it (SPEC_FULL.md §3). HasSavedTTY distinguishes a
	// populated snapshot from the zero value.
	SavedTTY    termstate.Snapshot
	HasSavedTTY bool
}

// hasPID reports whether pid belongs to one of this job's processes,
// either as the pgid-defining first child or as any later process in the
// pipeline — the two ways the reaper's ingestion routine is allowed to
// attribute a reaped pid to a job (SPEC_FULL.md §4.5 step 1).
func (j *Job) hasPID(pid int) bool {
	if int(j.Pgid) == pid {
		return true
	}
	for _, p := range j.PIDs {
		if p == pid {
			return true
		}
	}
	return false
}
