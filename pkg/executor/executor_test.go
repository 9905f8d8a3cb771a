package executor

import (
	"sync"
	"testing"
	"time"
)

func TestExecutor_PostRunsInOrder(t *testing.T) {
	e := New(nil)
	go e.Run()
	defer e.Stop()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})

	for i := 0; i < 5; i++ {
		i := i
		e.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			if i == 4 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("posted work never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Fatalf("expected order[%d]=%d, got %d", i, i, v)
		}
	}
}

func TestExecutor_PostAfterStopIsNoOp(t *testing.T) {
	e := New(nil)
	go e.Run()
	e.Stop()

	ran := false
	e.Post(func() { ran = true })

	time.Sleep(10 * time.Millisecond)
	if ran {
		t.Fatal("expected Post after Stop to be dropped")
	}
}

func TestTimer_RestartFiresCallback(t *testing.T) {
	e := New(nil)
	go e.Run()
	defer e.Stop()

	timer := e.NewTimer()
	fired := make(chan struct{})
	timer.Restart(e.GetTime().Add(10*time.Millisecond), func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimer_CancelProducesNoCallback(t *testing.T) {
	e := New(nil)
	go e.Run()
	defer e.Stop()

	timer := e.NewTimer()
	fired := false
	timer.Restart(e.GetTime().Add(20*time.Millisecond), func() {
		fired = true
	})
	timer.Cancel()

	time.Sleep(60 * time.Millisecond)
	if fired {
		t.Fatal("cancelled timer fired its callback")
	}
	if timer.IsArmed() {
		t.Fatal("cancelled timer reports armed")
	}
}

func TestTimer_RestartReplacesPendingCallback(t *testing.T) {
	e := New(nil)
	go e.Run()
	defer e.Stop()

	timer := e.NewTimer()
	firstFired := false
	timer.Restart(e.GetTime().Add(5*time.Millisecond), func() {
		firstFired = true
	})

	secondFired := make(chan struct{})
	timer.Restart(e.GetTime().Add(5*time.Millisecond), func() {
		close(secondFired)
	})

	select {
	case <-secondFired:
	case <-time.After(time.Second):
		t.Fatal("second timer never fired")
	}
	if firstFired {
		t.Fatal("superseded callback fired")
	}
}

func TestTimer_ImmediateDeadlineFiresRightAway(t *testing.T) {
	e := New(nil)
	go e.Run()
	defer e.Stop()

	timer := e.NewTimer()
	fired := make(chan struct{})
	timer.Restart(e.GetTime().Add(-time.Second), func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("past-deadline timer never fired")
	}
}
