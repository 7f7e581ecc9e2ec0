package jobctl

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// signalCause maps the signal that killed a job to the short diagnostic
// SPEC_FULL.md §4.5 says the reaper prints for an abnormal exit. Signals
// a job exits normally from (SIGTERM sent by `kill`, for instance) still
// get a line — the original cush.c prints one for every signal death,
// not just the "crash" ones, and kiln matches that.
func signalCause(sig unix.Signal) string {
	switch sig {
	case unix.SIGABRT:
		return "Aborted"
	case unix.SIGFPE:
		return "Floating point exception"
	case unix.SIGILL:
		return "Illegal instruction"
	case unix.SIGKILL:
		return "Killed"
	case unix.SIGSEGV:
		return "Segmentation fault"
	case unix.SIGTERM:
		return "Terminated"
	case unix.SIGBUS:
		return "Bus error"
	case unix.SIGPIPE:
		return "Broken pipe"
	case unix.SIGQUIT:
		return "Quit"
	default:
		return fmt.Sprintf("Terminated by signal %d", sig)
	}
}
