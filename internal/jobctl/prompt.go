package jobctl

import (
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"
)

// DefaultPromptTemplate is used when no config file and no `prompt`
// builtin invocation overrides it.
const DefaultPromptTemplate = `\!:\u@\h:\W\$ `

// Prompt expands the template-escape prompt syntax of SPEC_FULL.md §6:
// a small set of backslash escapes describing user, host, working
// directory and a monotonically increasing command counter, rendered
// fresh before each read.
type Prompt struct {
	Template string
	counter  int
}

// NewPrompt returns a Prompt that expands template.
func NewPrompt(template string) *Prompt {
	return &Prompt{Template: template}
}

// Render expands the current template. It increments the internal
// command counter every time it's called, matching \! semantics (the
// counter reflects "the command about to be read", the same contract a
// real shell's PS1 \! gives).
func (p *Prompt) Render() string {
	p.counter++
	var b strings.Builder
	r := []rune(p.Template)
	for i := 0; i < len(r); i++ {
		if r[i] != '\\' || i+1 >= len(r) {
			b.WriteRune(r[i])
			continue
		}
		esc := r[i+1]
		i++
		switch esc {
		case 'u':
			b.WriteString(currentUsername())
		case 'h':
			b.WriteString(currentHostname())
		case 'w':
			b.WriteString(currentDir(false))
		case 'W':
			b.WriteString(currentDir(true))
		case 'd':
			b.WriteString(time.Now().Format("01-02-2006"))
		case 'T':
			b.WriteString(time.Now().Format("15:04"))
		case 'c':
			b.WriteString("kiln")
		case 'n':
			b.WriteRune('\n')
		case '$':
			if os.Geteuid() == 0 {
				b.WriteRune('#')
			} else {
				b.WriteRune('$')
			}
		case '!':
			b.WriteString(strconv.Itoa(p.counter))
		default:
			// Unrecognized escape: kept literally, backslash and all.
			b.WriteRune('\\')
			b.WriteRune(esc)
		}
	}
	return b.String()
}

func currentUsername() string {
	u, err := user.Current()
	if err != nil {
		return "?"
	}
	return u.Username
}

func currentHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "?"
	}
	return h
}

func currentDir(base bool) string {
	dir, err := os.Getwd()
	if err != nil {
		return "?"
	}
	if home, herr := os.UserHomeDir(); herr == nil && strings.HasPrefix(dir, home) {
		dir = "~" + strings.TrimPrefix(dir, home)
	}
	if !base {
		return dir
	}
	if idx := strings.LastIndexByte(dir, '/'); idx >= 0 && idx+1 < len(dir) {
		return dir[idx+1:]
	}
	return dir
}
