package jobctl

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// ErrExit is returned by a builtin to ask the REPL to stop, carrying the
// process exit status: the `exit` verb's optional argument, 0 without one.
type ErrExit struct{ Code int }

func (e ErrExit) Error() string { return fmt.Sprintf("exit %d", e.Code) }

// Dispatcher runs the builtin verbs of SPEC_FULL.md §4.7 — the only
// commands kiln itself ever executes rather than handing to the
// Pipeline Launcher.
type Dispatcher struct {
	Table    *JobTable
	Stack    *StoppedStack
	Reaper   *Reaper
	Launcher *Launcher // reused for its Term controller and Signal Gate

	Prompt *Prompt

	Stdout, Stderr io.Writer
}

// builtinVerbs lists the verbs Dispatcher handles directly.
var builtinVerbs = map[string]bool{
	"exit": true, "jobs": true, "kill": true, "stop": true,
	"fg": true, "bg": true, "prompt": true, "jid": true, "help": true,
}

// IsBuiltin reports whether argv[0] names a builtin verb.
func IsBuiltin(name string) bool {
	return builtinVerbs[name]
}

// Dispatch runs the builtin named by argv[0]. argv is assumed non-empty
// and IsBuiltin(argv[0]) true.
func (d *Dispatcher) Dispatch(argv []string) error {
	switch argv[0] {
	case "exit":
		return d.exit(argv)
	case "jobs":
		return d.jobs()
	case "kill":
		return d.signalJob(argv, unix.SIGTERM, "kill")
	case "stop":
		return d.stop(argv)
	case "fg":
		return d.fg(argv)
	case "bg":
		return d.bg(argv)
	case "prompt":
		return d.prompt(argv)
	case "jid":
		return d.jid()
	case "help":
		return d.help()
	}
	return fmt.Errorf("%s: not a builtin", argv[0])
}

func (d *Dispatcher) exit(argv []string) error {
	code := 0
	if len(argv) > 1 {
		fmt.Sscanf(argv[1], "%d", &code)
	}
	return ErrExit{Code: code}
}

func (d *Dispatcher) jobs() error {
	for _, j := range d.Table.Iterate() {
		fmt.Fprintf(d.Stdout, "[%d]\t%s\t\t(%s)\n", j.JID, j.Status, j.Cmdline)
	}
	return nil
}

func (d *Dispatcher) jid() error {
	jobs := d.Table.Iterate()
	if len(jobs) == 0 {
		fmt.Fprintln(d.Stderr, "jid: no jobs")
		return nil
	}
	fmt.Fprintln(d.Stdout, jobs[len(jobs)-1].JID)
	return nil
}

func (d *Dispatcher) help() error {
	fmt.Fprintln(d.Stdout, "builtins: exit [code], jobs, kill <jid>, stop <jid>, fg [jid], bg [jid], prompt [template], jid, help")
	return nil
}

func (d *Dispatcher) resolveJid(argv []string, verb string) (*Job, error) {
	if len(argv) < 2 {
		return nil, fmt.Errorf("%s: missing job id", verb)
	}
	var jid int
	if _, err := fmt.Sscanf(argv[1], "%d", &jid); err != nil {
		return nil, fmt.Errorf("%s: %q is not a job id", verb, argv[1])
	}
	job, ok := d.Table.Lookup(jid)
	if !ok {
		return nil, fmt.Errorf("%s: no such job %d", verb, jid)
	}
	return job, nil
}

func (d *Dispatcher) signalJob(argv []string, sig unix.Signal, verb string) error {
	job, err := d.resolveJid(argv, verb)
	if err != nil {
		return err
	}
	if err := unix.Kill(-int(job.Pgid), sig); err != nil {
		return fmt.Errorf("%s: %w", verb, err)
	}
	return nil
}

func (d *Dispatcher) stop(argv []string) error {
	job, err := d.resolveJid(argv, "stop")
	if err != nil {
		return err
	}
	if err := d.Launcher.Term.Save(&job.SavedTTY); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	job.HasSavedTTY = true
	if err := unix.Kill(-int(job.Pgid), unix.SIGSTOP); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	if job.Status != Stopped && job.Status != NeedsTerminal {
		job.Status = Stopped
		d.Stack.Push(job.JID)
	}
	return nil
}

// fg resumes a job in the foreground. With no explicit jid it targets
// the most recently stopped job; an explicit jid naming a job that is
// already running (Background, not stopped) is rejected, matching the
// original shell's behavior (SPEC_FULL.md §9).
func (d *Dispatcher) fg(argv []string) error {
	job, err := d.resolveFgBgTarget(argv, "fg")
	if err != nil {
		return err
	}

	// WaitForJob below must run with the Signal Gate held, as in Launch.
	d.Launcher.Gate.Block()
	defer d.Launcher.Gate.Unblock()

	d.Stack.Remove(job.JID)
	if err := d.Launcher.Term.GiveTo(int(job.Pgid), &job.SavedTTY); err != nil {
		return fmt.Errorf("fg: %w", err)
	}
	if err := unix.Kill(-int(job.Pgid), unix.SIGCONT); err != nil {
		return fmt.Errorf("fg: %w", err)
	}
	job.Status = Foreground
	fmt.Fprintf(d.Stdout, "[%d]\t%s\t\t(%s)\n", job.JID, job.Status, job.Cmdline)

	waitErr := d.Reaper.WaitForJob(job)
	if job.AliveCount == 0 {
		d.Table.Reclaim(job)
	}
	if tErr := d.Launcher.Term.GiveBackToShell(&job.SavedTTY); tErr != nil && waitErr == nil {
		waitErr = tErr
	}
	return waitErr
}

func (d *Dispatcher) bg(argv []string) error {
	var job *Job
	var err error
	if len(argv) > 1 {
		job, err = d.resolveJid(argv, "bg")
		if err != nil {
			return err
		}
		if job.Status != Stopped && job.Status != NeedsTerminal {
			return fmt.Errorf("bg: job %d is not stopped", job.JID)
		}
	} else {
		jid, ok := d.Stack.PeekLast()
		if !ok {
			return fmt.Errorf("bg: no stopped jobs")
		}
		job, _ = d.Table.Lookup(jid)
	}

	d.Stack.Remove(job.JID)
	if err := unix.Kill(-int(job.Pgid), unix.SIGCONT); err != nil {
		return fmt.Errorf("bg: %w", err)
	}
	job.Status = Background
	fmt.Fprintf(d.Stdout, "[%d]\t%s\t\t(%s)\n", job.JID, job.Status, job.Cmdline)
	return nil
}

func (d *Dispatcher) resolveFgBgTarget(argv []string, verb string) (*Job, error) {
	if len(argv) > 1 {
		job, err := d.resolveJid(argv, verb)
		if err != nil {
			return nil, err
		}
		if job.Status != Stopped && job.Status != NeedsTerminal {
			return nil, fmt.Errorf("%s: job %d is already running", verb, job.JID)
		}
		return job, nil
	}
	jid, ok := d.Stack.PeekLast()
	if !ok {
		return nil, fmt.Errorf("%s: no stopped jobs", verb)
	}
	job, _ := d.Table.Lookup(jid)
	return job, nil
}

func (d *Dispatcher) prompt(argv []string) error {
	if len(argv) < 2 {
		fmt.Fprintln(d.Stdout, d.Prompt.Template)
		return nil
	}
	d.Prompt.Template = argv[1]
	return nil
}
