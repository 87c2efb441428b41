package dispatch

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Executor runs tasks on an execution context.
// Execute must never block the caller.
type Executor interface {
	Execute(task func())
}

// ExecutorFunc is a function adapter that implements Executor.
type ExecutorFunc func(task func())

// Execute calls the underlying function.
func (f ExecutorFunc) Execute(task func()) { f(task) }

// Inline runs each task synchronously on the calling goroutine. It is meant
// for delivering callbacks and must not be used as the home of a launched task.
var Inline Executor = ExecutorFunc(func(task func()) { task() })

// Pool is a background execution context. Each task runs on its own goroutine
// once one of the pool's slots is free.
type Pool struct {
	name string
	size int
	sem  *semaphore.Weighted
}

// NewPool creates a pool running at most workers tasks at a time.
// Values below 1 are raised to 1.
func NewPool(name string, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		name: name,
		size: workers,
		sem:  semaphore.NewWeighted(int64(workers)),
	}
}

// Execute schedules task. The call returns immediately; the task waits for a
// free slot on its own goroutine.
func (p *Pool) Execute(task func()) {
	go func() {
		// Acquire only fails when its context is done.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		task()
	}()
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Size returns the maximum number of concurrently running tasks.
func (p *Pool) Size() int { return p.size }
