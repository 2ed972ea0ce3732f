package main

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CollapsesBurst(t *testing.T) {
	var fired int32
	d := NewDebouncer(40*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	t.Cleanup(d.CancelAndWait)

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(10 * time.Millisecond)
	}
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Fatalf("fired during burst: %d", got)
	}

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("fired = %d, want 1", got)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	var fired int32
	d := NewDebouncer(30*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	d.Cancel() // nothing pending
	d.Trigger()
	d.Cancel()
	d.CancelAndWait()

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("fired = %d after cancel, want 0", got)
	}
}

func TestDebouncer_CancelAndWaitDrainsRunningCall(t *testing.T) {
	started := make(chan struct{})
	var finished int32
	d := NewDebouncer(time.Millisecond, func() {
		close(started)
		time.Sleep(30 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
	})

	d.Trigger()
	<-started
	d.CancelAndWait()
	if atomic.LoadInt32(&finished) != 1 {
		t.Error("CancelAndWait returned before the running call finished")
	}
}
