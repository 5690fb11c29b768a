package jobs

import (
	"container/list"
	"sync"
)

type Job struct {
	Pid        int
	CmdArgs    []string
	Background bool
}

// Table holds every spawned job that has not been reaped yet, in spawn order.
// It is shared with the reaper goroutine.
type Table struct {
	mu       sync.Mutex
	jobs     *list.List
	launched int
}

func NewTable() *Table {
	return &Table{jobs: list.New()}
}

func (t *Table) Add(job Job) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.jobs.PushBack(job)
	t.launched++
}

// Remove drops the job with the given pid, reporting whether it was present.
func (t *Table) Remove(pid int) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for e := t.jobs.Front(); e != nil; e = e.Next() {
		if job := e.Value.(Job); job.Pid == pid {
			t.jobs.Remove(e)
			return job, true
		}
	}
	return Job{}, false
}

func (t *Table) Get(pid int) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for e := t.jobs.Front(); e != nil; e = e.Next() {
		if job := e.Value.(Job); job.Pid == pid {
			return job, true
		}
	}
	return Job{}, false
}

func (t *Table) Pids() []int {
	return t.pids(func(Job) bool { return true })
}

// BackgroundPids lists the background jobs still running.
func (t *Table) BackgroundPids() []int {
	return t.pids(func(job Job) bool { return job.Background })
}

func (t *Table) pids(keep func(Job) bool) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	pids := make([]int, 0, t.jobs.Len())
	for e := t.jobs.Front(); e != nil; e = e.Next() {
		if job := e.Value.(Job); keep(job) {
			pids = append(pids, job.Pid)
		}
	}
	return pids
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.jobs.Len()
}

// Launched counts every job ever added, reaped or not.
func (t *Table) Launched() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.launched
}
