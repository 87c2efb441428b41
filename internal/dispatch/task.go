package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// PanicError carries a panic recovered from a task body or a hopped function.
type PanicError struct {
	Value any
	Stack []byte
}

// Error returns a formatted message describing the panic.
func (e *PanicError) Error() string {
	return fmt.Sprintf("dispatch: task panicked: %v", e.Value)
}

// Job is the handle of an asynchronous unit of work. It completes exactly once.
type Job struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewJob returns an incomplete job and the function that completes it.
// Only the first call to complete has an effect.
func NewJob() (*Job, func(error)) {
	j := &Job{done: make(chan struct{})}
	return j, j.complete
}

func (j *Job) complete(err error) {
	j.once.Do(func() {
		j.err = err
		close(j.done)
	})
}

// Done is closed when the job completes.
func (j *Job) Done() <-chan struct{} { return j.done }

// Err returns the job error once the job has completed, and nil before.
func (j *Job) Err() error {
	select {
	case <-j.done:
		return j.err
	default:
		return nil
	}
}

// Wait blocks until the job completes or ctx is done.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scope is the handle a launched task uses to suspend. It must only be used
// from the task's own body.
type Scope struct {
	ctx    context.Context
	home   Executor
	gid    int64
	resume chan struct{}
	yield  chan struct{}
}

// Context returns the context the task was launched with.
func (s *Scope) Context() context.Context { return s.ctx }

type lender interface {
	lend(gid int64) (restore func())
}

// Launch starts body as a sequential task confined to home. The body's code
// between suspension points only runs while home is executing one of the
// task's steps. A panic in body is recovered and reported as a *PanicError.
func Launch(ctx context.Context, home Executor, body func(s *Scope) error) *Job {
	s := &Scope{
		ctx:    ctx,
		home:   home,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
	job, complete := NewJob()

	ready := make(chan struct{})
	go func() {
		s.gid = goroutineID()
		close(ready)

		<-s.resume
		err := runBody(s, body)
		s.yield <- struct{}{}
		complete(err)
	}()
	<-ready

	home.Execute(s.step)
	return job
}

func runBody(s *Scope, body func(s *Scope) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return body(s)
}

// step runs one slice of the task on the calling executor: it wakes the task
// and waits until the task suspends or returns.
func (s *Scope) step() {
	if l, ok := s.home.(lender); ok {
		defer l.lend(s.gid)()
	}
	s.resume <- struct{}{}
	<-s.yield
}

// park gives the home executor back and waits for the next step.
func (s *Scope) park() {
	s.yield <- struct{}{}
	<-s.resume
}

// Suspend parks the task until the resume function handed to register is
// called, then continues on the task's home executor. register runs on the
// task's goroutine; resume may be called from any goroutine. Calls after the
// first are ignored.
func Suspend[T any](s *Scope, register func(resume func(T, error))) (T, error) {
	var (
		once   sync.Once
		result T
		err    error
	)
	register(func(v T, e error) {
		once.Do(func() {
			result, err = v, e
			s.home.Execute(s.step)
		})
	})
	s.park()
	return result, err
}

// WithContext runs fn on target and resumes the task on its home executor
// with fn's result. A panic in fn is returned as a *PanicError.
func WithContext[T any](s *Scope, target Executor, fn func() (T, error)) (T, error) {
	return Suspend(s, func(resume func(T, error)) {
		target.Execute(func() {
			resume(call(fn))
		})
	})
}

func call[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
