package jobctl_test

import (
	"testing"

	"github.com/kilnsh/kiln/internal/jobctl"
	"github.com/kilnsh/kiln/internal/lineparser"
)

func TestCreateAssignsLowestUnusedJid(t *testing.T) {
	table := jobctl.NewJobTable()
	j1, err := table.Create(lineparser.Pipeline{}, "a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	j2, err := table.Create(lineparser.Pipeline{}, "b")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if j1.JID != 1 || j2.JID != 2 {
		t.Fatalf("expected jids 1,2 got %d,%d", j1.JID, j2.JID)
	}
	table.Reclaim(j1)
	j3, err := table.Create(lineparser.Pipeline{}, "c")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if j3.JID != 1 {
		t.Fatalf("expected reclaimed jid 1 reused, got %d", j3.JID)
	}
}

func TestLookupByPidMatchesPgidOrMember(t *testing.T) {
	table := jobctl.NewJobTable()
	j, _ := table.Create(lineparser.Pipeline{}, "cmd")
	j.Pgid = 100
	j.PIDs = []int{100, 101, 102}

	if got, ok := table.LookupByPid(100); !ok || got != j {
		t.Fatalf("expected lookup by pgid to find job")
	}
	if got, ok := table.LookupByPid(102); !ok || got != j {
		t.Fatalf("expected lookup by member pid to find job")
	}
	if _, ok := table.LookupByPid(999); ok {
		t.Fatalf("expected no match for unrelated pid")
	}
}

func TestIterateReturnsInsertionOrder(t *testing.T) {
	table := jobctl.NewJobTable()
	a, _ := table.Create(lineparser.Pipeline{}, "a")
	b, _ := table.Create(lineparser.Pipeline{}, "b")
	c, _ := table.Create(lineparser.Pipeline{}, "c")

	got := table.Iterate()
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("unexpected iteration order: %+v", got)
	}
}

func TestReclaimRemovesFromIteration(t *testing.T) {
	table := jobctl.NewJobTable()
	a, _ := table.Create(lineparser.Pipeline{}, "a")
	b, _ := table.Create(lineparser.Pipeline{}, "b")
	table.Reclaim(a)

	got := table.Iterate()
	if len(got) != 1 || got[0] != b {
		t.Fatalf("expected only job b left, got %+v", got)
	}
	if _, ok := table.Lookup(a.JID); ok {
		t.Fatalf("expected reclaimed jid to be gone")
	}
}
