// Package termstate is kiln's Terminal Controller: the thin POSIX wrapper
// described in SPEC_FULL.md §4.1. It saves and restores line-discipline
// (termios) state and transfers the controlling terminal's foreground
// process group between the shell and whichever job currently owns it.
//
// Everything here is adapted from the teacher's ptyutil package, which
// wraps the same termios/ioctl primitives for container ptys; kiln needs
// the subset that deals with an already-open controlling terminal rather
// than allocating a new pty pair.
package termstate

import (
	"fmt"
	"os/signal"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Snapshot is a point-in-time copy of a terminal's line-discipline state.
type Snapshot struct {
	termios unix.Termios
}

// Controller owns the handoff protocol for one controlling terminal. It is
// created once at shell startup by Init and then shared by every pipeline
// launch and job-control builtin for the life of the process.
type Controller struct {
	fd    int
	pgid  int
	shell Snapshot
}

// Init captures the shell's own line-discipline snapshot, places the shell
// in its own process group, and claims fd (normally 0) as the controlling
// terminal's foreground group. It must be called exactly once at startup,
// before any pipeline is launched.
func Init(fd int) (*Controller, error) {
	// Wait until we are actually the foreground process group of the
	// terminal: a shell started from another shell's pipeline, or under a
	// debugger, may be launched into the background of its own session.
	shellPgid := unix.Getpgrp()
	for {
		fg, err := getForeground(fd)
		if err != nil {
			return nil, fmt.Errorf("cannot read foreground process group: %w", err)
		}
		if fg == shellPgid {
			break
		}
		_ = unix.Kill(-shellPgid, unix.SIGTTIN)
		shellPgid = unix.Getpgrp()
	}

	// The shell ignores job-control signals itself: they are meaningful
	// only for whichever process group currently owns the terminal, and
	// the shell surrenders ownership before a job can ever receive one.
	signal.Ignore(unix.SIGINT, unix.SIGQUIT, unix.SIGTSTP, unix.SIGTTIN, unix.SIGTTOU)

	if err := unix.Setpgid(0, 0); err != nil {
		return nil, fmt.Errorf("cannot put shell in its own process group: %w", err)
	}
	shellPgid = unix.Getpgrp()

	if err := setForeground(fd, shellPgid); err != nil {
		return nil, fmt.Errorf("cannot claim controlling terminal: %w", err)
	}

	snap, err := getTermios(fd)
	if err != nil {
		return nil, fmt.Errorf("cannot read terminal state: %w", err)
	}

	return &Controller{fd: fd, pgid: shellPgid, shell: snap}, nil
}

// ShellPgid returns the shell's own process group id.
func (c *Controller) ShellPgid() int {
	return c.pgid
}

// Foreground reports the process group that currently owns the terminal.
func (c *Controller) Foreground() (int, error) {
	return getForeground(c.fd)
}

// Save copies the terminal's current line-discipline state into dst.
func (c *Controller) Save(dst *Snapshot) error {
	snap, err := getTermios(c.fd)
	if err != nil {
		return err
	}
	*dst = snap
	return nil
}

// GiveTo restores snapshot (if non-nil) and transfers the controlling
// terminal's foreground process group to pgid. The first time a given job
// is handed the terminal, snapshot is the shell's own freshly captured
// state (SPEC_FULL.md §4.6 step 7); on subsequent resumes it is the job's
// own saved_tty from when it last held the terminal.
func (c *Controller) GiveTo(pgid int, snapshot *Snapshot) error {
	if snapshot != nil {
		if err := setTermios(c.fd, *snapshot); err != nil {
			return err
		}
	}
	return setForeground(c.fd, pgid)
}

// GiveBackToShell reclaims the terminal for the shell's own process group.
// If dst is non-nil (a foreground job is relinquishing the terminal), the
// terminal's current state is snapshotted into dst before the shell's own
// state is restored — this is how a stopped or exited foreground job's
// saved_tty gets populated.
func (c *Controller) GiveBackToShell(dst *Snapshot) error {
	if dst != nil {
		if err := c.Save(dst); err != nil {
			return err
		}
	}
	if err := setTermios(c.fd, c.shell); err != nil {
		return err
	}
	return setForeground(c.fd, c.pgid)
}

func getTermios(fd int) (Snapshot, error) {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{termios: *t}, nil
}

func setTermios(fd int, snap Snapshot) error {
	t := snap.termios
	return termios.Tcsetattr(uintptr(fd), termios.TCSANOW, &t)
}

// IsTerminal reports whether fd refers to a terminal device.
func IsTerminal(fd int) bool {
	_, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	return err == nil
}
