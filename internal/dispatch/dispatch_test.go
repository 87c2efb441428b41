package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const testTimeout = 5 * time.Second

func startLoop(t *testing.T) *Loop {
	t.Helper()
	loop := NewLoop("ui")
	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)
	t.Cleanup(func() {
		loop.Close()
		cancel()
		<-loop.Done()
	})
	return loop
}

func waitJob(t *testing.T, job *Job) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	err := job.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("job did not complete in time")
	}
	return err
}

func TestLoop_RunsTasksInOrder(t *testing.T) {
	t.Parallel()
	loop := startLoop(t)

	var (
		mu    sync.Mutex
		order []int
		owned []bool
	)
	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		i := i
		loop.Execute(func() {
			mu.Lock()
			order = append(order, i)
			owned = append(owned, loop.Owns())
			mu.Unlock()
			if i == 49 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("loop did not drain its queue")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
		if !owned[i] {
			t.Errorf("task %d should observe Owns() == true", i)
		}
	}
	if loop.Owns() {
		t.Error("test goroutine must not own the loop")
	}
}

func TestLoop_CloseDrainsQueue(t *testing.T) {
	t.Parallel()
	loop := NewLoop("ui")
	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		loop.Execute(func() { ran.Add(1) })
	}
	loop.Close()

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if got := ran.Load(); got != 10 {
		t.Errorf("expected 10 tasks to run before Run returned, got %d", got)
	}
	if err := loop.Run(context.Background()); !errors.Is(err, ErrLoopRunning) {
		t.Errorf("second Run should fail with ErrLoopRunning, got %v", err)
	}
}

func TestLoop_RunStopsOnContext(t *testing.T) {
	t.Parallel()
	loop := NewLoop("ui")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	t.Parallel()
	pool := NewPool("io", 2)

	var (
		current atomic.Int32
		peak    atomic.Int32
		wg      sync.WaitGroup
	)
	wg.Add(12)
	for i := 0; i < 12; i++ {
		pool.Execute(func() {
			defer wg.Done()
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			current.Add(-1)
		})
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("expected at most 2 concurrent tasks, saw %d", got)
	}
	if pool.Size() != 2 || pool.Name() != "io" {
		t.Errorf("unexpected pool identity %q/%d", pool.Name(), pool.Size())
	}
}

func TestNewPool_ClampsWorkers(t *testing.T) {
	t.Parallel()
	if got := NewPool("p", 0).Size(); got != 1 {
		t.Errorf("expected size 1, got %d", got)
	}
}

func TestLaunch_BodyIsConfinedToHome(t *testing.T) {
	t.Parallel()
	loop := startLoop(t)
	pool := NewPool("io", 2)

	var ownedBefore, ownedInside, ownedAfter bool
	job := Launch(context.Background(), loop, func(s *Scope) error {
		ownedBefore = loop.Owns()
		_, err := WithContext(s, pool, func() (struct{}, error) {
			ownedInside = loop.Owns()
			return struct{}{}, nil
		})
		ownedAfter = loop.Owns()
		return err
	})

	if err := waitJob(t, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ownedBefore || !ownedAfter {
		t.Errorf("body should run on the loop: before=%v after=%v", ownedBefore, ownedAfter)
	}
	if ownedInside {
		t.Error("function hopped to the pool must not run on the loop")
	}
}

func TestLaunch_SuspensionReleasesLoop(t *testing.T) {
	t.Parallel()
	loop := startLoop(t)
	pool := NewPool("default", 1)

	tick := make(chan struct{})
	job := Launch(context.Background(), loop, func(s *Scope) error {
		_, err := WithContext(s, pool, func() (int, error) {
			// Only completes if the loop keeps processing while we wait.
			select {
			case <-tick:
				return 1, nil
			case <-time.After(testTimeout):
				return 0, errors.New("loop was starved")
			}
		})
		return err
	})
	loop.Execute(func() { close(tick) })

	if err := waitJob(t, job); err != nil {
		t.Fatal(err)
	}
}

func TestLaunch_HopBackToLoopFromPool(t *testing.T) {
	t.Parallel()
	loop := startLoop(t)
	pool := NewPool("io", 1)

	var onLoop, onPool bool
	job := Launch(context.Background(), pool, func(s *Scope) error {
		onPool = !loop.Owns()
		_, err := WithContext(s, loop, func() (struct{}, error) {
			onLoop = loop.Owns()
			return struct{}{}, nil
		})
		return err
	})

	if err := waitJob(t, job); err != nil {
		t.Fatal(err)
	}
	if !onPool || !onLoop {
		t.Errorf("expected body on pool and hop on loop: onPool=%v onLoop=%v", onPool, onLoop)
	}
}

func TestLaunch_SequentialErrorShortCircuits(t *testing.T) {
	t.Parallel()
	loop := startLoop(t)
	pool := NewPool("io", 2)
	sentinel := errors.New("step two failed")

	var steps []int
	job := Launch(context.Background(), loop, func(s *Scope) error {
		for i := 1; i <= 3; i++ {
			i := i
			_, err := WithContext(s, pool, func() (int, error) {
				if i == 2 {
					return 0, sentinel
				}
				return i, nil
			})
			if err != nil {
				return err
			}
			steps = append(steps, i)
		}
		return nil
	})

	if err := waitJob(t, job); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if len(steps) != 1 || steps[0] != 1 {
		t.Errorf("expected only step 1 to complete, got %v", steps)
	}
}

func TestSuspend_SynchronousResume(t *testing.T) {
	t.Parallel()
	loop := startLoop(t)

	var got int
	job := Launch(context.Background(), loop, func(s *Scope) error {
		v, err := Suspend(s, func(resume func(int, error)) {
			resume(42, nil)
			resume(7, nil) // ignored
		})
		got = v
		return err
	})

	if err := waitJob(t, job); err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Errorf("expected first resume value 42, got %d", got)
	}
}

func TestLaunch_RecoversPanics(t *testing.T) {
	t.Parallel()
	loop := startLoop(t)
	pool := NewPool("io", 1)

	t.Run("panic in body", func(t *testing.T) {
		job := Launch(context.Background(), loop, func(s *Scope) error {
			panic("boom")
		})
		var panicErr *PanicError
		if err := waitJob(t, job); !errors.As(err, &panicErr) || panicErr.Value != "boom" {
			t.Errorf("expected PanicError(boom), got %v", err)
		}
	})

	t.Run("panic in hopped function", func(t *testing.T) {
		job := Launch(context.Background(), loop, func(s *Scope) error {
			_, err := WithContext(s, pool, func() (int, error) {
				panic("io boom")
			})
			return err
		})
		var panicErr *PanicError
		if err := waitJob(t, job); !errors.As(err, &panicErr) {
			t.Errorf("expected PanicError, got %v", err)
		}
	})
}

func TestJob(t *testing.T) {
	t.Parallel()
	job, complete := NewJob()
	if job.Err() != nil {
		t.Error("Err must be nil before completion")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := job.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline, got %v", err)
	}

	sentinel := errors.New("first")
	complete(sentinel)
	complete(nil)
	if !errors.Is(job.Err(), sentinel) {
		t.Errorf("expected first completion to win, got %v", job.Err())
	}
	select {
	case <-job.Done():
	default:
		t.Error("Done should be closed")
	}
}

// TestJob_WaitersRacingCompletion checks that no waiter misses a completion
// that happens while it is starting to wait, and that the error is returned
// as a value to every one of them.
func TestJob_WaitersRacingCompletion(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("author step failed")
	for round := 0; round < 200; round++ {
		job, complete := NewJob()
		var (
			wg     sync.WaitGroup
			missed atomic.Int32
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
				defer cancel()
				if err := job.Wait(ctx); !errors.Is(err, sentinel) {
					missed.Add(1)
				}
			}()
		}
		go complete(sentinel)
		wg.Wait()
		if n := missed.Load(); n != 0 {
			t.Fatalf("round %d: %d waiters did not observe the completion", round, n)
		}
	}
}

func TestInline(t *testing.T) {
	t.Parallel()
	ran := false
	Inline.Execute(func() { ran = true })
	if !ran {
		t.Error("Inline should run the task synchronously")
	}
}
