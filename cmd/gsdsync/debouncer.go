package main

import (
	"sync"
	"time"
)

// Debouncer collapses a burst of Trigger calls into one call of fire, made
// once the triggers have been quiet for the configured delay.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fire  func()
	timer *time.Timer
	gen   uint64 // bumped on every Trigger; stale timers compare and bail
	inFly sync.WaitGroup
}

func NewDebouncer(delay time.Duration, fire func()) *Debouncer {
	return &Debouncer{delay: delay, fire: fire}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen

	d.inFly.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.inFly.Done()

		d.mu.Lock()
		if d.gen != gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		d.fire()
	})
}

// Cancel drops a pending call. A call already running is not interrupted.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// CancelAndWait drops a pending call and waits for a running one to return.
func (d *Debouncer) CancelAndWait() {
	d.Cancel()
	d.inFly.Wait()
}

func (d *Debouncer) stopLocked() {
	if d.timer == nil {
		return
	}
	if d.timer.Stop() {
		d.inFly.Done()
	}
	d.timer = nil
}
