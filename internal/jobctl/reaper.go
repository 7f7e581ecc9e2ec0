package jobctl

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
	"gopkg.in/tomb.v2"

	"github.com/kilnsh/kiln/internal/logger"
)

// Reaper owns both ends of child-status collection described in
// SPEC_FULL.md §4.5: the asynchronous path, woken by SIGCHLD and
// draining every reapable status with WNOHANG, and the synchronous
// path a launch blocks on while its job holds the foreground. Both
// paths funnel through the same ingestion routine so the Job Table
// only ever gets one kind of update, whichever goroutine produced it.
//
// The asynchronous path runs on a tomb.Tomb goroutine, the same
// lifecycle primitive the teacher uses for its own background loops.
type Reaper struct {
	gate  *Gate
	table *JobTable
	stack *StoppedStack

	// Stderr receives abnormal-exit diagnostics and Stdout receives stop
	// notices. Default to os.Stderr/os.Stdout; overridable for tests.
	Stderr io.Writer
	Stdout io.Writer

	t tomb.Tomb
}

// NewReaper wires a reaper to the shared Job Table, Stopped-Job Stack
// and Signal Gate.
func NewReaper(gate *Gate, table *JobTable, stack *StoppedStack) *Reaper {
	return &Reaper{
		gate:   gate,
		table:  table,
		stack:  stack,
		Stderr: os.Stderr,
		Stdout: os.Stdout,
	}
}

// Start begins listening for SIGCHLD on a background goroutine.
func (r *Reaper) Start() {
	sigChld := make(chan os.Signal, 1)
	signal.Notify(sigChld, unix.SIGCHLD)
	r.t.Go(func() error {
		defer signal.Stop(sigChld)
		for {
			select {
			case <-sigChld:
				r.reapAvailable()
			case <-r.t.Dying():
				return nil
			}
		}
	})
}

// Stop shuts the background goroutine down and waits for it to exit.
func (r *Reaper) Stop() {
	r.t.Kill(nil)
	_ = r.t.Wait()
}

// reapAvailable drains every currently-reapable child status without
// blocking, the asynchronous entry point of SPEC_FULL.md §4.5.
func (r *Reaper) reapAvailable() {
	r.gate.raw.Lock()
	defer r.gate.raw.Unlock()
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		if err == unix.ECHILD || pid <= 0 {
			return
		}
		if err != nil {
			logger.Noticef("reaper: wait4: %v", err)
			return
		}
		r.ingest(pid, status)
	}
}

// WaitForJob is the synchronous entry point: it blocks, reaping whatever
// status changes arrive, until job is no longer both Foreground and
// alive. Callers must hold the Signal Gate across the whole call — it's
// how the asynchronous path is kept from racing a foreground wait.
func (r *Reaper) WaitForJob(job *Job) error {
	if !r.gate.IsBlocked() {
		logger.Panicf("jobctl: WaitForJob called without the Signal Gate held")
	}
	for job.Status == Foreground && job.AliveCount > 0 {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WUNTRACED|unix.WCONTINUED, nil)
		if err != nil {
			return fmt.Errorf("wait4: %w", err)
		}
		r.ingest(pid, status)
	}
	return nil
}

// ingest is the single routine both reap paths call to apply one child's
// status change to the Job Table. Callers hold the gate.
func (r *Reaper) ingest(pid int, status unix.WaitStatus) {
	job, ok := r.table.LookupByPid(pid)
	if !ok {
		return // status for a pid kiln never launched, or already reclaimed
	}

	switch {
	case status.Exited() || status.Signaled():
		job.AliveCount--
		if job.AliveCount == 0 {
			// A job that dies while stopped must not linger on the stack.
			r.stack.Remove(job.JID)
		}
		if status.Signaled() {
			fmt.Fprintf(r.Stderr, "%s: %s\n", job.Cmdline, signalCause(status.Signal()))
		}

	case status.Stopped():
		if job.Status == Stopped || job.Status == NeedsTerminal {
			return // already recorded, e.g. by the `stop` builtin racing this notification
		}
		if status.StopSignal() == unix.SIGTTIN || status.StopSignal() == unix.SIGTTOU {
			job.Status = NeedsTerminal
		} else {
			job.Status = Stopped
		}
		r.stack.Push(job.JID)
		fmt.Fprintf(r.Stdout, "[%d]\t%s\t\t(%s)\n", job.JID, job.Status, job.Cmdline)

	case status.Continued():
		// Nothing to do: the builtin or launcher that sent SIGCONT already
		// updated job.Status before this notification can arrive.
	}
}
