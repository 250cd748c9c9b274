package session

import (
	"time"

	"github.com/verte-zerg/mnemo/internal/model"
)

// EventKind identifies a session transition.
type EventKind int

// Event kinds.
const (
	EventConfigured EventKind = iota
	EventStarted
	EventItem
	EventRecorded
	EventAnswerShown
	EventTimeout
	EventPaused
	EventResumed
	EventLap
	EventStopped
	EventResultsAvailable
	EventReplayPrimed
)

var eventNames = map[EventKind]string{
	EventConfigured:       "configured",
	EventStarted:          "started",
	EventItem:             "item",
	EventRecorded:         "recorded",
	EventAnswerShown:      "answer_shown",
	EventTimeout:          "timeout",
	EventPaused:           "paused",
	EventResumed:          "resumed",
	EventLap:              "lap",
	EventStopped:          "stopped",
	EventResultsAvailable: "results_available",
	EventReplayPrimed:     "replay_primed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event describes one transition. Mode is the mode after the transition.
type Event struct {
	Kind  EventKind
	Mode  Mode
	Index int
	Item  model.Item
	// Entry is set for EventRecorded.
	Entry model.ResultEntry
	// Pass is set for EventResultsAvailable.
	Pass *model.PassRecord
	// Replay is set for EventReplayPrimed and EventStarted.
	Replay model.ReplayKind
}

// Listener receives events after the session lock is released. Listeners
// may call back into the session; events caused by such a call are delivered
// after the current event has reached every listener.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) emitLocked(kind EventKind) {
	ev := Event{Kind: kind, Mode: s.mode, Index: s.index, Replay: s.replay}
	if item, ok := s.currentLocked(); ok {
		ev.Item = item
	}
	s.pending = append(s.pending, ev)
}

func (s *Session) emitEventLocked(ev Event) {
	ev.Mode = s.mode
	s.pending = append(s.pending, ev)
}

// unlockAndDispatch releases the session lock and delivers queued events.
// Only one goroutine delivers at a time. Events emitted by a nested or
// concurrent call are appended to the outbox and delivered by the active
// dispatcher, so listeners always see transitions in the order they happened.
func (s *Session) unlockAndDispatch() {
	s.outbox = append(s.outbox, s.pending...)
	s.pending = nil
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	for len(s.outbox) > 0 {
		events := s.outbox
		s.outbox = nil
		subs := make([]subscription, len(s.subs))
		copy(subs, s.subs)
		s.mu.Unlock()

		for _, ev := range events {
			s.logger.Debug("session event", "event", ev.Kind.String(), "mode", ev.Mode.String(), "index", ev.Index)
			for _, sub := range subs {
				sub.fn(ev)
			}
		}

		s.mu.Lock()
	}
	s.dispatching = false
	s.mu.Unlock()
}

func newPassRecord(s *Session, ended time.Time, entries []model.ResultEntry) *model.PassRecord {
	return &model.PassRecord{
		StartedAt: s.passStart,
		EndedAt:   ended,
		Category:  s.settings.Category,
		From:      s.settings.From,
		To:        s.settings.To,
		Learning:  s.learning,
		Replay:    s.replay,
		BudgetMs:  s.settings.Budget.Milliseconds(),
		Entries:   entries,
	}
}
