package engine

import (
	"context"
	"sync"
)

// Task is a handle to a fetch started with Engine.Go.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func newTask(cancel context.CancelFunc) *Task {
	return &Task{cancel: cancel, done: make(chan struct{})}
}

// Cancel stops the fetch. If it lands before delivery the callback never
// fires and the cache is left untouched.
func (t *Task) Cancel() { t.cancel() }

// Done is closed when the fetch has finished and the callback, if any,
// has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task is done and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.Err()
}

// Err returns the failure of a finished task, or nil while it is running
// or after it succeeded.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) finish(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
	close(t.done)
}
