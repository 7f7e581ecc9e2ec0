package jobctl_test

import (
	"testing"

	"github.com/kilnsh/kiln/internal/jobctl"
)

func TestStoppedStackPeekLastIsMostRecentPush(t *testing.T) {
	s := jobctl.NewStoppedStack()
	s.Push(1)
	s.Push(2)
	s.Push(3)
	got, ok := s.PeekLast()
	if !ok || got != 3 {
		t.Fatalf("PeekLast() = %d,%v want 3,true", got, ok)
	}
}

func TestStoppedStackRemoveFromMiddle(t *testing.T) {
	s := jobctl.NewStoppedStack()
	s.Push(1)
	s.Push(2)
	s.Push(3)
	s.Remove(2)
	if s.Contains(2) {
		t.Fatal("expected jid 2 removed")
	}
	got, ok := s.PeekLast()
	if !ok || got != 3 {
		t.Fatalf("PeekLast() = %d,%v want 3,true", got, ok)
	}
}

func TestStoppedStackPeekLastEmpty(t *testing.T) {
	s := jobctl.NewStoppedStack()
	if _, ok := s.PeekLast(); ok {
		t.Fatal("expected no entries on a fresh stack")
	}
}

func TestStoppedStackRemoveMissingIsNoop(t *testing.T) {
	s := jobctl.NewStoppedStack()
	s.Push(1)
	s.Remove(42)
	if !s.Contains(1) {
		t.Fatal("expected unrelated remove to leave existing entries alone")
	}
}
