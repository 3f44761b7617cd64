package engine

import (
	"sync"

	"ollamaedit/text"
)

// TaskStatus is the observable state of a proposal task
type TaskStatus int

const (
	TaskInProgress TaskStatus = iota
	TaskDone
	TaskError
)

// String returns a human-readable name for the status
func (s TaskStatus) String() string {
	switch s {
	case TaskInProgress:
		return "InProgress"
	case TaskDone:
		return "Done"
	case TaskError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Task is the single-slot result cell between the background proposal
// goroutine and the thread that owns the buffer. Exactly one producer
// writes it; consumers poll Status and read the result once Done. A result
// the consumer never reads is simply dropped when the task is replaced.
type Task struct {
	mu sync.Mutex

	status TaskStatus
	script []text.Record
	err    error

	// coordinates captured at start, needed to materialize the session
	startLine  int
	inlineDiff bool
}

func newTask(startLine int, inlineDiff bool) *Task {
	return &Task{status: TaskInProgress, startLine: startLine, inlineDiff: inlineDiff}
}

func (t *Task) complete(script []text.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.script = script
	t.status = TaskDone
}

func (t *Task) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
	t.status = TaskError
}

// Status returns the task's current state
func (t *Task) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Result returns the edit script once the task is Done, or the failure
// once it is Error. Calling it while InProgress is a caller error guarded
// by polling Status first.
func (t *Task) Result() ([]text.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == TaskError {
		return nil, t.err
	}
	return t.script, nil
}
