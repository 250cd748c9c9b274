// Package countdowntest provides a manual clock and scheduler for timer tests.
package countdowntest

import (
	"sort"
	"sync"
	"time"

	"github.com/verte-zerg/mnemo/internal/countdown"
)

// Clock is a manually advanced countdown.Clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock fixed at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now implements countdown.Clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t without running callbacks.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Add moves the clock forward without running callbacks.
func (c *Clock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type pending struct {
	mu        *sync.Mutex
	id        int
	at        time.Time
	f         func()
	cancelled bool
	done      bool
}

func (p *pending) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	wasActive := !p.cancelled && !p.done
	p.cancelled = true
	return wasActive
}

// Scheduler queues callbacks until the test advances time.
type Scheduler struct {
	clock *Clock

	mu      sync.Mutex
	nextID  int
	queue   []*pending
	history []*pending
}

// NewScheduler returns a scheduler driven by clock.
func NewScheduler(clock *Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// AfterFunc implements countdown.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) countdown.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := &pending{mu: &s.mu, id: s.nextID, at: s.clock.Now().Add(d), f: f}
	s.queue = append(s.queue, p)
	s.history = append(s.history, p)
	return p
}

// Pending returns the number of callbacks that are scheduled and not stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.queue {
		if !p.cancelled && !p.done {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every callback that falls due
// in time order. Callbacks scheduled while advancing run too if they are due.
func (s *Scheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)
	for {
		p := s.popDue(target)
		if p == nil {
			break
		}
		if p.at.After(s.clock.Now()) {
			s.clock.Set(p.at)
		}
		p.f()
	}
	s.clock.Set(target)
}

// FireStale runs every stopped callback, simulating a cancelled timer whose
// callback raced past cancellation.
func (s *Scheduler) FireStale() {
	s.mu.Lock()
	var stale []*pending
	for _, p := range s.history {
		if p.cancelled && !p.done {
			p.done = true
			stale = append(stale, p)
		}
	}
	s.mu.Unlock()
	for _, p := range stale {
		p.f()
	}
}

func (s *Scheduler) popDue(target time.Time) *pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.queue[:0]
	for _, p := range s.queue {
		if !p.cancelled && !p.done {
			live = append(live, p)
		}
	}
	s.queue = live
	sort.SliceStable(s.queue, func(i, j int) bool {
		if s.queue[i].at.Equal(s.queue[j].at) {
			return s.queue[i].id < s.queue[j].id
		}
		return s.queue[i].at.Before(s.queue[j].at)
	})
	if len(s.queue) == 0 || s.queue[0].at.After(target) {
		return nil
	}
	p := s.queue[0]
	s.queue = s.queue[1:]
	p.done = true
	return p
}
