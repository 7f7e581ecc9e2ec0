package jobctl

import (
	"fmt"

	"github.com/kilnsh/kiln/internal/lineparser"
)

// maxJobs bounds the Job Table's dense array (SPEC_FULL.md §4.3): valid
// job ids run 1..maxJobs-1, slot 0 is never issued.
const maxJobs = 65536

// ErrTableFull is returned by Create when every jid is in use. SPEC_FULL.md
// §7 treats this as a fatal invariant violation: Launch aborts the shell
// through logger.Panicf when it sees it.
var ErrTableFull = fmt.Errorf("job table: no jid available")

// JobTable is the dense array of live jobs keyed by jid, plus the
// insertion order `jobs`/announcements iterate in.
type JobTable struct {
	slots [maxJobs]*Job
	order []int
}

// NewJobTable returns an empty table.
func NewJobTable() *JobTable {
	return &JobTable{}
}

// Create allocates the lowest unused jid and installs a new Job for pl.
func (t *JobTable) Create(pl lineparser.Pipeline, cmdline string) (*Job, error) {
	for jid := 1; jid < maxJobs; jid++ {
		if t.slots[jid] == nil {
			job := &Job{JID: jid, Pipeline: pl, Cmdline: cmdline}
			t.slots[jid] = job
			t.order = append(t.order, jid)
			return job, nil
		}
	}
	return nil, ErrTableFull
}

// Lookup returns the job for jid, if any.
func (t *JobTable) Lookup(jid int) (*Job, bool) {
	if jid <= 0 || jid >= maxJobs {
		return nil, false
	}
	j := t.slots[jid]
	return j, j != nil
}

// LookupByPid returns the job owning pid, matched either as the job's
// pgid (the pipeline's first process) or as any later process recorded
// in Job.PIDs (SPEC_FULL.md §4.5 step 1).
func (t *JobTable) LookupByPid(pid int) (*Job, bool) {
	for _, jid := range t.order {
		j := t.slots[jid]
		if j != nil && j.hasPID(pid) {
			return j, true
		}
	}
	return nil, false
}

// Iterate returns the live jobs in insertion order. The returned slice is
// a snapshot; callers hold the Signal Gate across both the call and any
// use of the result to keep it consistent with the live table.
func (t *JobTable) Iterate() []*Job {
	out := make([]*Job, 0, len(t.order))
	for _, jid := range t.order {
		if j := t.slots[jid]; j != nil {
			out = append(out, j)
		}
	}
	return out
}

// Reclaim removes job from the table, freeing its jid for reuse.
func (t *JobTable) Reclaim(job *Job) {
	if job == nil {
		return
	}
	if t.slots[job.JID] != job {
		return
	}
	t.slots[job.JID] = nil
	for i, jid := range t.order {
		if jid == job.JID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}
