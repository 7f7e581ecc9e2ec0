package jobctl

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/kilnsh/kiln/internal/lineparser"
	"github.com/kilnsh/kiln/internal/logger"
	"github.com/kilnsh/kiln/internal/termstate"
)

// Launcher implements the Pipeline Launcher of SPEC_FULL.md §4.6: it
// wires N-1 pipes between a pipeline's commands, starts each one with
// its process group elected from the first, and brackets the launch
// with the terminal hand-off a foreground job needs.
//
// kiln builds each child with os/exec.Cmd rather than a hand-rolled
// fork/dup2/exec sequence: passing *os.File values for Stdin/Stdout/
// Stderr makes exec.Cmd dup them directly onto fd 0/1/2 in the child
// during its own fork+exec (close-on-exec is already the default for
// fds os.Pipe and os.OpenFile create), which is exactly the dup+close
// discipline SPEC_FULL.md §4.6 describes — without needing unsafe
// per-goroutine fork semantics Go's runtime doesn't offer.
type Launcher struct {
	Gate   *Gate
	Table  *JobTable
	Stack  *StoppedStack
	Reaper *Reaper
	Term   *termstate.Controller

	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// redirectMode is the file creation mode SPEC_FULL.md §4.6 assigns
// redirection targets kiln creates.
const redirectMode = 0750

// Launch starts pl as a new job and, if it's a foreground pipeline,
// blocks until it exits or stops.
func (l *Launcher) Launch(pl lineparser.Pipeline) error {
	job, err := l.Table.Create(pl, pl.Source())
	if err != nil {
		logger.Panicf("jobctl: %v", err)
	}
	if pl.Background {
		job.Status = Background
	} else {
		job.Status = Foreground
	}

	l.Gate.Block()
	defer l.Gate.Unblock()

	n := len(pl.Commands)
	pipes := make([]*os.File, 0, (n-1)*2)
	readEnds := make([]*os.File, n-1)
	writeEnds := make([]*os.File, n-1)
	for i := 0; i < n-1; i++ {
		r, w, perr := os.Pipe()
		if perr != nil {
			closeAll(pipes)
			l.Table.Reclaim(job)
			return fmt.Errorf("pipe: %w", perr)
		}
		readEnds[i], writeEnds[i] = r, w
		pipes = append(pipes, r, w)
	}

	var inFile, outFile *os.File
	if pl.InputRedirect != "" {
		f, oerr := os.Open(pl.InputRedirect)
		if oerr != nil {
			// SPEC_FULL.md §4.6: a missing input file is a documented
			// ambiguity inherited from the original shell — the child
			// starts with /dev/null opened write-only as its stdin, so
			// the failure surfaces the first time it actually reads
			// (EBADF), not as a launch-time diagnostic.
			inFile, _ = os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		} else {
			inFile = f
		}
	}
	if pl.OutputRedirect != "" {
		flags := os.O_CREATE | os.O_WRONLY
		if pl.AppendOutput {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, oerr := os.OpenFile(pl.OutputRedirect, flags, redirectMode)
		if oerr != nil {
			closeAll(pipes)
			fmt.Fprintf(l.Stderr, "%s: %v\n", pl.OutputRedirect, oerr)
			l.Table.Reclaim(job)
			return nil
		}
		outFile = f
	}

	cmds := make([]*exec.Cmd, n)
	for i, spec := range pl.Commands {
		c := exec.Command(spec.Argv[0], spec.Argv[1:]...)

		switch {
		case i == 0 && inFile != nil:
			c.Stdin = inFile
		case i == 0:
			c.Stdin = l.stdin()
		default:
			c.Stdin = readEnds[i-1]
		}

		switch {
		case i == n-1 && outFile != nil:
			c.Stdout = outFile
		case i == n-1:
			c.Stdout = l.stdout()
		default:
			c.Stdout = writeEnds[i]
		}

		c.Stderr = l.stderr()
		if spec.DupStderrToStdout {
			c.Stderr = c.Stdout
		}

		// A pgid of 0 in SysProcAttr elects the child itself as the new
		// group leader. job.Pgid stays 0 until some command actually
		// starts, so if command 0 fails to start (a missing executable,
		// say) the next command to start still gets to elect the pgid.
		c.SysProcAttr = &unix.SysProcAttr{Setpgid: true, Pgid: int(job.Pgid)}

		if err := c.Start(); err != nil {
			fmt.Fprintf(l.Stderr, "%s: %v\n", spec.Argv[0], err)
			continue
		}
		cmds[i] = c
		pid := c.Process.Pid
		if job.Pgid == 0 {
			job.Pgid = Pgid(pid)
		}
		// Both parent and child race to set the pgid; both calls are
		// idempotent once either succeeds (classic APUE shell dance).
		_ = unix.Setpgid(pid, int(job.Pgid))
		job.PIDs = append(job.PIDs, pid)
		job.AliveCount++
	}

	// Parent closes every pipe and redirection fd it opened: a command
	// further down the pipeline must see EOF once its upstream has
	// exited, not hang waiting on a write end the parent is still
	// holding open (SPEC_FULL.md §4.6).
	closeAll(pipes)
	if inFile != nil {
		inFile.Close()
	}
	if outFile != nil {
		outFile.Close()
	}

	if job.AliveCount == 0 {
		l.Table.Reclaim(job)
		return nil
	}

	if job.Status == Background {
		fmt.Fprintf(l.Stdout, "[%d] %d\n", job.JID, job.Pgid)
		return nil
	}

	if err := l.Term.Save(&job.SavedTTY); err != nil {
		return fmt.Errorf("save terminal state: %w", err)
	}
	job.HasSavedTTY = true
	if err := l.Term.GiveTo(int(job.Pgid), &job.SavedTTY); err != nil {
		return fmt.Errorf("hand terminal to job: %w", err)
	}

	waitErr := l.Reaper.WaitForJob(job)

	if job.AliveCount == 0 {
		l.Table.Reclaim(job)
	}
	if tErr := l.Term.GiveBackToShell(&job.SavedTTY); tErr != nil && waitErr == nil {
		waitErr = fmt.Errorf("reclaim terminal: %w", tErr)
	}
	return waitErr
}

func (l *Launcher) stdin() io.Reader {
	if l.Stdin != nil {
		return l.Stdin
	}
	return os.Stdin
}

func (l *Launcher) stdout() io.Writer {
	if l.Stdout != nil {
		return l.Stdout
	}
	return os.Stdout
}

func (l *Launcher) stderr() io.Writer {
	if l.Stderr != nil {
		return l.Stderr
	}
	return os.Stderr
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}
