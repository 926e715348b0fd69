package task

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestDispatcher_SingleFlight(t *testing.T) {
	d := NewDispatcher(nil)

	release := make(chan struct{})
	started := make(chan struct{})

	err := d.Dispatch("run", func() error {
		close(started)
		<-release
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("first Dispatch: %v", err)
	}
	<-started

	// Second request while Busy is rejected, not queued.
	err = d.Dispatch("compile", func() error { return nil }, nil)
	if !errors.Is(err, ErrBusy) {
		t.Errorf("second Dispatch err = %v, want ErrBusy", err)
	}

	close(release)
	d.Wait()

	if d.Busy() {
		t.Error("Busy() = true after task completion")
	}
}

func TestDispatcher_IdleAfterError(t *testing.T) {
	d := NewDispatcher(nil)

	var got Run
	done := make(chan struct{})
	err := d.Dispatch("run", func() error {
		return fmt.Errorf("boom")
	}, func(r Run) {
		got = r
		close(done)
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	<-done
	d.Wait()

	if d.Busy() {
		t.Error("Busy() = true after failed task")
	}
	if got.Err == nil || got.Err.Error() != "boom" {
		t.Errorf("Run.Err = %v, want boom", got.Err)
	}
}

func TestDispatcher_IdleAfterPanic(t *testing.T) {
	d := NewDispatcher(nil)

	var got Run
	done := make(chan struct{})
	err := d.Dispatch("run", func() error {
		panic("kaboom")
	}, func(r Run) {
		got = r
		close(done)
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	<-done
	d.Wait()

	if d.Busy() {
		t.Error("Busy() = true after panicking task")
	}
	if got.Err == nil {
		t.Fatal("Run.Err = nil, want panic error")
	}
	if got.Err.Error() != "task panic: kaboom" {
		t.Errorf("Run.Err = %v", got.Err)
	}
}

func TestDispatcher_DoneRunsAfterFlagClears(t *testing.T) {
	d := NewDispatcher(nil)

	done := make(chan bool, 1)
	err := d.Dispatch("run", func() error { return nil }, func(Run) {
		// The flag must already be Idle when the completion callback
		// fires, so a follow-up dispatch from the callback succeeds.
		done <- d.Busy()
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if busy := <-done; busy {
		t.Error("running flag still set inside done callback")
	}
}

func TestDispatcher_PostDelivery(t *testing.T) {
	var mu sync.Mutex
	var posted []func()

	d := NewDispatcher(func(fn func()) {
		mu.Lock()
		posted = append(posted, fn)
		mu.Unlock()
	})

	called := false
	if err := d.Dispatch("run", func() error { return nil }, func(Run) {
		called = true
	}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	d.Wait()

	// Completion was handed to the post queue, not run on the worker.
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(posted) == 1
	})
	if called {
		t.Error("done callback ran before the UI drained the post queue")
	}

	mu.Lock()
	posted[0]()
	mu.Unlock()
	if !called {
		t.Error("done callback did not run when posted function executed")
	}
}

func TestDispatcher_SequentialRuns(t *testing.T) {
	d := NewDispatcher(nil)

	for i := 0; i < 5; i++ {
		done := make(chan struct{})
		err := d.Dispatch("run", func() error { return nil }, func(Run) { close(done) })
		if err != nil {
			t.Fatalf("Dispatch %d: %v", i, err)
		}
		<-done
	}
}

func TestRun_Identity(t *testing.T) {
	d := NewDispatcher(nil)

	runs := make(chan Run, 2)
	for i := 0; i < 2; i++ {
		done := make(chan struct{})
		if err := d.Dispatch("compile", func() error { return nil }, func(r Run) {
			runs <- r
			close(done)
		}); err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
		<-done
	}

	a, b := <-runs, <-runs
	if a.ID == "" || b.ID == "" {
		t.Error("run IDs empty")
	}
	if a.ID == b.ID {
		t.Error("run IDs not unique")
	}
	if a.Label != "compile" {
		t.Errorf("Label = %q, want compile", a.Label)
	}
	if a.Started.IsZero() {
		t.Error("Started not set")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
