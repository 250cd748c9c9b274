// Package countdown provides the per-item recall timer.
//
// A Timer measures elapsed time against a budget by sampling a Clock on every
// scheduled tick. It never uses a fixed-period ticker: each tick re-arms a
// single callback through the Scheduler, so a throttled or late tick only
// delays the expiry check and never accumulates drift.
//
// Every arm carries a generation number. Cancel bumps the generation, so a
// callback that was already in flight when Cancel ran is discarded.
package countdown

import (
	"sync"
	"time"
)

// DefaultTick is the sampling interval used when none is configured.
const DefaultTick = 50 * time.Millisecond

// Clock abstracts time to keep the timer deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. time.Now carries a monotonic reading, so
// differences between two samples are immune to wall-clock adjustments.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Handle cancels a scheduled callback.
type Handle interface {
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
}

// RealScheduler schedules callbacks with time.AfterFunc.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}

// ExpireFunc is invoked once when an armed countdown runs out. gen identifies
// the arm that expired.
type ExpireFunc func(gen uint64)

// Timer is a cancellable countdown. The zero value is not usable; use New.
type Timer struct {
	clock Clock
	sched Scheduler
	tick  time.Duration

	mu        sync.Mutex
	gen       uint64
	running   bool
	budget    time.Duration
	remaining time.Duration
	armedAt   time.Time
	handle    Handle
	onExpire  ExpireFunc
}

// Option configures a Timer.
type Option func(*Timer)

// WithTick overrides the sampling interval.
func WithTick(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.tick = d
		}
	}
}

// New returns a stopped Timer. Nil clock or scheduler fall back to the real ones.
func New(clock Clock, sched Scheduler, opts ...Option) *Timer {
	if clock == nil {
		clock = SystemClock{}
	}
	if sched == nil {
		sched = RealScheduler{}
	}
	t := &Timer{clock: clock, sched: sched, tick: DefaultTick}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start arms the countdown with the given budget, resuming from remaining.
// A remaining value outside (0, budget] is treated as a fresh budget. Any
// previous arm is cancelled first. The returned generation is passed to
// onExpire when this arm runs out.
func (t *Timer) Start(budget, remaining time.Duration, onExpire ExpireFunc) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked()
	if remaining <= 0 || remaining > budget {
		remaining = budget
	}
	t.budget = budget
	t.remaining = remaining
	t.armedAt = t.clock.Now()
	t.onExpire = onExpire
	t.running = true
	t.scheduleLocked(t.gen)
	return t.gen
}

// Cancel stops the countdown and returns the remaining time at the moment of
// cancellation. It is idempotent: cancelling a stopped or expired timer is a
// no-op that returns the last known remaining value.
func (t *Timer) Cancel() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	return t.remaining
}

// Running reports whether a countdown is armed.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Generation returns the current arm generation.
func (t *Timer) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Remaining returns the time left on the countdown.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingLocked(t.clock.Now())
}

// Budget returns the configured budget of the current or last arm.
func (t *Timer) Budget() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.budget
}

// Fraction returns elapsed/budget clamped to [0, 1].
func (t *Timer) Fraction() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.budget <= 0 {
		return 0
	}
	elapsed := t.budget - t.remainingLocked(t.clock.Now())
	frac := float64(elapsed) / float64(t.budget)
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

func (t *Timer) remainingLocked(now time.Time) time.Duration {
	if !t.running {
		return t.remaining
	}
	left := t.remaining - now.Sub(t.armedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (t *Timer) cancelLocked() {
	if t.running {
		t.remaining = t.remainingLocked(t.clock.Now())
	}
	t.gen++
	t.running = false
	if t.handle != nil {
		t.handle.Stop()
		t.handle = nil
	}
}

func (t *Timer) scheduleLocked(gen uint64) {
	wait := t.remainingLocked(t.clock.Now())
	if wait > t.tick {
		wait = t.tick
	}
	t.handle = t.sched.AfterFunc(wait, func() { t.fire(gen) })
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || !t.running {
		t.mu.Unlock()
		return
	}
	now := t.clock.Now()
	if t.remainingLocked(now) > 0 {
		t.scheduleLocked(gen)
		t.mu.Unlock()
		return
	}
	t.running = false
	t.remaining = 0
	t.handle = nil
	t.gen++
	cb := t.onExpire
	t.mu.Unlock()

	if cb != nil {
		cb(gen)
	}
}
