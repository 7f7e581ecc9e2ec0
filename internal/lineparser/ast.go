// Package lineparser is the external Parser collaborator described in
// SPEC_FULL.md §6: given a raw line, it produces an ordered sequence of
// pipelines. It is deliberately simple — scripting constructs, globbing,
// and quoting semantics beyond basic word-splitting are an explicit
// Non-goal (spec.md §1) — and stands in for the lexer/parser that
// spec.md treats as an out-of-scope collaborator.
package lineparser

// Command is one stage of a pipeline: a program name plus arguments, and
// whether its stderr should be duplicated onto its stdout.
type Command struct {
	Argv              []string
	DupStderrToStdout bool
}

// Pipeline is an ordered sequence of commands connected stdout-to-stdin,
// with optional redirection at its endpoints and an optional background
// flag.
type Pipeline struct {
	Commands       []Command
	InputRedirect  string // "" if none
	OutputRedirect string // "" if none
	AppendOutput   bool
	Background     bool
}

// CommandLine is the result of parsing one raw input line: zero or more
// pipelines, in the order they appeared.
type CommandLine struct {
	Pipelines []Pipeline
}

// Source renders pl back into shell-like text for job announcements
// (`jobs`, stop/resume notices). It is a best-effort rendering, not a
// faithful re-lexing — quoting is not reconstructed.
func (pl Pipeline) Source() string {
	var b []byte
	for i, cmd := range pl.Commands {
		if i > 0 {
			b = append(b, '|', ' ')
		}
		for j, arg := range cmd.Argv {
			if j > 0 {
				b = append(b, ' ')
			}
			b = append(b, arg...)
		}
	}
	return string(b)
}
