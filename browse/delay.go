package browse

import (
	"sync"
	"time"
)

// Timer is the handle returned by Clock.AfterFunc
type Timer interface {
	Stop() bool
}

// Clock schedules delayed callbacks
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is the wall clock
var RealClock Clock = realClock{}

// DelayedTask runs fn once after a quiet period. Scheduling again before the
// period elapses cancels the pending run and restarts the window.
type DelayedTask struct {
	mu    sync.Mutex
	clock Clock
	fn    func()
	timer Timer
	seq   uint64
	// runs of fn that have started and not returned
	running int
}

// NewDelayedTask creates a task that calls fn when its window elapses
func NewDelayedTask(clock Clock, fn func()) *DelayedTask {
	if clock == nil {
		clock = RealClock
	}
	return &DelayedTask{clock: clock, fn: fn}
}

// Schedule (re)starts the quiet period
func (t *DelayedTask) Schedule(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.seq++
	seq := t.seq
	t.timer = t.clock.AfterFunc(d, func() {
		t.mu.Lock()
		// A timer that already fired cannot be stopped, so check it was not superseded.
		if seq != t.seq {
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.running++
		t.mu.Unlock()

		t.fn()

		t.mu.Lock()
		t.running--
		t.mu.Unlock()
	})
}

// Cancel drops the pending run, reporting whether one existed
func (t *DelayedTask) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	t.seq++
	return true
}

// Pending reports whether a run is scheduled
func (t *DelayedTask) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

// Idle reports whether no run is scheduled or executing
func (t *DelayedTask) Idle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer == nil && t.running == 0
}
