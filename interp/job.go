package interp

import (
	"sort"
	"sync"

	"github.com/home-lang/den/syntax"
)

// Job tracks one background pipeline: its process-group id (when it has
// real OS processes) and completion status.
type Job struct {
	ID   int
	PGID int
	Stmt *syntax.Stmt

	mu     sync.Mutex
	done   bool
	status uint8
}

func (j *Job) Finish(status uint8) {
	j.mu.Lock()
	j.done, j.status = true, status
	j.mu.Unlock()
}

func (j *Job) State() (done bool, status uint8) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done, j.status
}

// JobTable assigns job numbers and tracks every background job started
// with "&", for "jobs"/"fg"/"bg"/"wait".
type JobTable struct {
	mu   sync.Mutex
	next int
	jobs map[int]*Job
}

func NewJobTable() *JobTable { return &JobTable{next: 1, jobs: map[int]*Job{}} }

func (t *JobTable) New(stmt *syntax.Stmt) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	j := &Job{ID: id, Stmt: stmt}
	t.jobs[id] = j
	return j
}

func (t *JobTable) Get(id int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	return j, ok
}

// List returns jobs sorted by ID, for the "jobs" builtin.
func (t *JobTable) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	var ids []int
	for id := range t.jobs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*Job, len(ids))
	for i, id := range ids {
		out[i] = t.jobs[id]
	}
	return out
}

func (t *JobTable) Remove(id int) {
	t.mu.Lock()
	delete(t.jobs, id)
	t.mu.Unlock()
}
