package dispatch

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// ErrLoopRunning is returned by Run when the loop is already being driven.
var ErrLoopRunning = errors.New("dispatch: loop already running")

// Loop is a single-goroutine execution context with an unbounded FIFO queue.
// Tasks run one at a time, in submission order, on the goroutine that called Run.
type Loop struct {
	name string

	mu     sync.Mutex
	queue  []func()
	closed bool

	wake    chan struct{}
	done    chan struct{}
	running atomic.Bool

	// owner is the id of the goroutine currently allowed to act on behalf of
	// the loop: the loop goroutine while it runs a task, or a launched task's
	// goroutine while the loop has lent it a step.
	owner atomic.Int64
}

// NewLoop creates a loop. It does nothing until Run is called.
func NewLoop(name string) *Loop {
	return &Loop{
		name: name,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Name returns the loop name.
func (l *Loop) Name() string { return l.name }

// Execute appends task to the queue. It never blocks.
func (l *Loop) Execute(task func()) {
	l.mu.Lock()
	l.queue = append(l.queue, task)
	l.mu.Unlock()
	l.signal()
}

// Run drives the loop on the calling goroutine until ctx is done, or until
// Close has been called and the queue is empty.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer close(l.done)

	self := goroutineID()
	for {
		if task, ok := l.next(); ok {
			l.owner.Store(self)
			task()
			l.owner.Store(0)
			continue
		}
		if l.isClosed() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start(ctx context.Context) {
	go func() { _ = l.Run(ctx) }()
}

// Close asks the loop to return from Run once its queue is drained.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.signal()
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Owns reports whether the calling goroutine is currently acting on behalf of
// the loop. Code running inside a loop task, or inside a task launched on the
// loop between two suspension points, observes true.
func (l *Loop) Owns() bool {
	owner := l.owner.Load()
	return owner != 0 && owner == goroutineID()
}

// lend hands loop ownership to the goroutine gid for the duration of a step.
func (l *Loop) lend(gid int64) (restore func()) {
	prev := l.owner.Swap(gid)
	return func() { l.owner.Store(prev) }
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// goroutineID parses the current goroutine id from the runtime stack header
// ("goroutine 42 [running]:").
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	end := bytes.IndexByte(header, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseInt(string(header[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
