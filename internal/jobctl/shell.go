package jobctl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/kilnsh/kiln/internal/lineparser"
	"github.com/kilnsh/kiln/internal/logger"
	"github.com/kilnsh/kiln/internal/termstate"
)

// Shell wires the Job Table, Stopped-Job Stack, Signal Gate, Reaper,
// Launcher and Dispatcher together and drives the read-dispatch-sweep
// loop of SPEC_FULL.md §4.8.
type Shell struct {
	gate   *Gate
	table  *JobTable
	stack  *StoppedStack
	reaper *Reaper

	launcher   *Launcher
	dispatcher *Dispatcher
	prompt     *Prompt

	in  *bufio.Reader
	out io.Writer
	err io.Writer

	// showPrompt mirrors the original shell's `isatty(0) ? build_prompt()
	// : NULL`: input that is not a terminal gets no prompt line at all.
	// cmd/kiln itself still exits at startup when its stdin is not a
	// terminal, because termstate.Init needs one.
	showPrompt bool
}

// NewShell builds a Shell around an already-initialized terminal
// controller. in is the REPL's own console input; launched children read
// os.Stdin directly. out and errOut serve the REPL and are also handed to
// the launcher: an unredirected last command writes its stdout to out,
// and every launched command writes its stderr to errOut.
func NewShell(term *termstate.Controller, promptTemplate string, in io.Reader, out, errOut io.Writer) *Shell {
	gate := NewGate()
	table := NewJobTable()
	stack := NewStoppedStack()
	reaper := NewReaper(gate, table, stack)
	reaper.Stdout = out
	reaper.Stderr = errOut

	launcher := &Launcher{
		Gate: gate, Table: table, Stack: stack, Reaper: reaper, Term: term,
		Stdout: out, Stderr: errOut,
	}
	prompt := NewPrompt(promptTemplate)
	dispatcher := &Dispatcher{
		Table: table, Stack: stack, Reaper: reaper, Launcher: launcher,
		Prompt: prompt, Stdout: out, Stderr: errOut,
	}

	return &Shell{
		gate: gate, table: table, stack: stack, reaper: reaper,
		launcher: launcher, dispatcher: dispatcher, prompt: prompt,
		in: bufio.NewReader(in), out: out, err: errOut,
		showPrompt: isTerminalReader(in),
	}
}

func isTerminalReader(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Run drives the REPL until end of input or an `exit` builtin, returning
// the process exit status (SPEC_FULL.md §4.8, §7).
func (s *Shell) Run() int {
	s.reaper.Start()
	defer s.reaper.Stop()

	for {
		s.sweepReclaimable()
		prompt := s.prompt.Render()
		if s.showPrompt {
			fmt.Fprint(s.out, prompt)
		}

		line, err := s.readLine()
		if err == io.EOF {
			return 0
		}
		if err != nil {
			logger.Noticef("shell: read error: %v", err)
			return 1
		}

		cl, perr := lineparser.Parse(line)
		if perr != nil {
			// SPEC_FULL.md §6: a malformed line is discarded silently.
			continue
		}

		for _, pl := range cl.Pipelines {
			if code, done := s.dispatchOne(pl); done {
				return code
			}
		}
	}
}

// dispatchOne runs a single pipeline, either as a builtin or through the
// Pipeline Launcher. done is true if the shell should terminate, in
// which case code is the process exit status.
func (s *Shell) dispatchOne(pl lineparser.Pipeline) (code int, done bool) {
	if len(pl.Commands) == 1 && IsBuiltin(pl.Commands[0].Argv[0]) {
		err := s.dispatcher.Dispatch(pl.Commands[0].Argv)
		if exitErr, ok := err.(ErrExit); ok {
			return exitErr.Code, true
		}
		if err != nil {
			fmt.Fprintf(s.err, "%s\n", err)
		}
		return 0, false
	}

	if err := s.launcher.Launch(pl); err != nil {
		fmt.Fprintf(s.err, "%s\n", err)
	}
	return 0, false
}

// sweepReclaimable removes any job the asynchronous reaper fully reaped
// in the background (AliveCount reached zero without a synchronous
// waiter ever observing it — the normal fate of a backgrounded job).
func (s *Shell) sweepReclaimable() {
	s.gate.Block()
	defer s.gate.Unblock()
	for _, j := range s.table.Iterate() {
		if j.Status != Foreground && j.AliveCount == 0 {
			s.table.Reclaim(j)
		}
	}
}

func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}
