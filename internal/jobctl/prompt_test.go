package jobctl_test

import (
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kilnsh/kiln/internal/jobctl"
)

func TestPromptRendersLiteralText(t *testing.T) {
	p := jobctl.NewPrompt("kiln> ")
	if got := p.Render(); got != "kiln> " {
		t.Fatalf("Render() = %q, want %q", got, "kiln> ")
	}
}

func TestPromptExpandsHostname(t *testing.T) {
	host, err := os.Hostname()
	if err != nil {
		t.Skip("hostname unavailable in this sandbox")
	}
	p := jobctl.NewPrompt(`\h$ `)
	if got := p.Render(); !strings.HasPrefix(got, host) {
		t.Fatalf("Render() = %q, want prefix %q", got, host)
	}
}

func TestPromptCounterIncrementsEachRender(t *testing.T) {
	p := jobctl.NewPrompt(`\!`)
	first := p.Render()
	second := p.Render()
	if first == second {
		t.Fatalf("expected counter to advance, got %q then %q", first, second)
	}
}

func TestPromptKeepsUnknownEscapeLiteral(t *testing.T) {
	p := jobctl.NewPrompt(`\x`)
	if got := p.Render(); got != `\x` {
		t.Fatalf("Render() = %q, want literal %q", got, `\x`)
	}
}

func TestPromptNewlineEscape(t *testing.T) {
	p := jobctl.NewPrompt(`a\nb`)
	if got := p.Render(); got != "a\nb" {
		t.Fatalf("Render() = %q, want %q", got, "a\nb")
	}
}

func TestPromptDateEscapeUsesMMDDYYYY(t *testing.T) {
	p := jobctl.NewPrompt(`\d`)
	want := time.Now().Format("01-02-2006")
	if got := p.Render(); got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestPromptTimeEscapeUsesHHMM(t *testing.T) {
	p := jobctl.NewPrompt(`\T`)
	if got := p.Render(); !regexp.MustCompile(`^\d{2}:\d{2}$`).MatchString(got) {
		t.Fatalf("Render() = %q, want HH:MM", got)
	}
}

func TestPromptShellNameEscape(t *testing.T) {
	p := jobctl.NewPrompt(`\c`)
	if got := p.Render(); got != "kiln" {
		t.Fatalf("Render() = %q, want %q", got, "kiln")
	}
}

func TestDefaultPromptTemplateIncludesCounterAndBasename(t *testing.T) {
	p := jobctl.NewPrompt(jobctl.DefaultPromptTemplate)
	first := p.Render()
	if !strings.Contains(first, "1:") {
		t.Fatalf("Render() = %q, want command counter prefix", first)
	}
}
