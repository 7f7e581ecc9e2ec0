package lineparser_test

import (
	"testing"

	"github.com/kilnsh/kiln/internal/lineparser"
)

func mustParse(t *testing.T, line string) *lineparser.CommandLine {
	t.Helper()
	cl, err := lineparser.Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	if cl == nil {
		t.Fatalf("Parse(%q): got nil CommandLine with no error", line)
	}
	return cl
}

func TestParseSimpleCommand(t *testing.T) {
	cl := mustParse(t, "echo hi there")
	if len(cl.Pipelines) != 1 {
		t.Fatalf("expected 1 pipeline, got %d", len(cl.Pipelines))
	}
	pl := cl.Pipelines[0]
	if len(pl.Commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(pl.Commands))
	}
	want := []string{"echo", "hi", "there"}
	got := pl.Commands[0].Argv
	if len(got) != len(want) {
		t.Fatalf("argv = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("argv = %v, want %v", got, want)
		}
	}
}

func TestParseBlankLine(t *testing.T) {
	cl := mustParse(t, "   ")
	if len(cl.Pipelines) != 0 {
		t.Fatalf("expected no pipelines, got %d", len(cl.Pipelines))
	}
}

func TestParsePipeline(t *testing.T) {
	cl := mustParse(t, "cat | wc -l")
	pl := cl.Pipelines[0]
	if len(pl.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(pl.Commands))
	}
	if pl.Commands[0].Argv[0] != "cat" || pl.Commands[1].Argv[0] != "wc" {
		t.Fatalf("unexpected commands: %+v", pl.Commands)
	}
}

func TestParseBackgroundFlag(t *testing.T) {
	cl := mustParse(t, "sleep 100 &")
	if !cl.Pipelines[0].Background {
		t.Fatal("expected background flag to be set")
	}
	if cl.Pipelines[0].Commands[0].Argv[1] != "100" {
		t.Fatalf("unexpected argv: %v", cl.Pipelines[0].Commands[0].Argv)
	}
}

func TestParseRedirections(t *testing.T) {
	cl := mustParse(t, "sort < in.txt >> out.txt")
	pl := cl.Pipelines[0]
	if pl.InputRedirect != "in.txt" {
		t.Fatalf("unexpected input redirect: %q", pl.InputRedirect)
	}
	if pl.OutputRedirect != "out.txt" || !pl.AppendOutput {
		t.Fatalf("unexpected output redirect: %q append=%v", pl.OutputRedirect, pl.AppendOutput)
	}
}

func TestParseTruncatingRedirect(t *testing.T) {
	cl := mustParse(t, "ls > /tmp/out")
	pl := cl.Pipelines[0]
	if pl.OutputRedirect != "/tmp/out" || pl.AppendOutput {
		t.Fatalf("unexpected output redirect: %q append=%v", pl.OutputRedirect, pl.AppendOutput)
	}
}

func TestParseDupStderr(t *testing.T) {
	cl := mustParse(t, "make 2>&1 | less")
	pl := cl.Pipelines[0]
	if !pl.Commands[0].DupStderrToStdout {
		t.Fatal("expected first command to dup stderr onto stdout")
	}
	if pl.Commands[1].DupStderrToStdout {
		t.Fatal("did not expect second command to dup stderr")
	}
}

func TestParseQuotedWord(t *testing.T) {
	cl := mustParse(t, `echo "hello world" 'literal $HOME'`)
	argv := cl.Pipelines[0].Commands[0].Argv
	if argv[1] != "hello world" {
		t.Fatalf("unexpected double-quoted word: %q", argv[1])
	}
	if argv[2] != "literal $HOME" {
		t.Fatalf("unexpected single-quoted word: %q", argv[2])
	}
}

func TestParseMultiplePipelinesSeparatedBySemicolon(t *testing.T) {
	cl := mustParse(t, "echo one; echo two &")
	if len(cl.Pipelines) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(cl.Pipelines))
	}
	if cl.Pipelines[0].Background {
		t.Fatal("first pipeline should not be backgrounded")
	}
	if !cl.Pipelines[1].Background {
		t.Fatal("second pipeline should be backgrounded")
	}
}

func TestParseUnterminatedQuoteIsMalformed(t *testing.T) {
	cl, err := lineparser.Parse(`echo "unterminated`)
	if err == nil || cl != nil {
		t.Fatalf("expected malformed-line error, got cl=%v err=%v", cl, err)
	}
}

func TestParseDanglingRedirectIsMalformed(t *testing.T) {
	cl, err := lineparser.Parse("cat >")
	if err == nil || cl != nil {
		t.Fatalf("expected malformed-line error, got cl=%v err=%v", cl, err)
	}
}

func TestParseEmptyPipeSegmentIsMalformed(t *testing.T) {
	cl, err := lineparser.Parse("cat | | wc")
	if err == nil || cl != nil {
		t.Fatalf("expected malformed-line error, got cl=%v err=%v", cl, err)
	}
}

func TestSourceRendersCommandLine(t *testing.T) {
	cl := mustParse(t, "sleep 100")
	if got := cl.Pipelines[0].Source(); got != "sleep 100" {
		t.Fatalf("unexpected rendering: %q", got)
	}
}
