package session

import (
	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/results"
)

// Controls is the set of actions the presentation layer should enable.
type Controls struct {
	Start      bool
	Pause      bool
	Resume     bool
	Stop       bool
	ShowAnswer bool
	Next       bool
}

// ControlsFor derives button enablement from mode, learning mode and whether
// the current answer is revealed.
func ControlsFor(mode Mode, learning, answerShown bool) Controls {
	switch mode {
	case Running:
		awaitingNext := answerShown && !learning
		return Controls{
			Pause:      !awaitingNext,
			Stop:       true,
			ShowAnswer: !learning && !answerShown,
			Next:       true,
		}
	case Paused:
		return Controls{Resume: true, Stop: true}
	default:
		return Controls{Start: true}
	}
}

// Availability reports which replay builders would produce a dataset.
type Availability struct {
	All   bool
	Slow  bool
	Shown bool
}

// Snapshot is a consistent read of the session for rendering.
type Snapshot struct {
	Mode        Mode
	Index       int
	Total       int
	Item        model.Item
	HasItem     bool
	AnswerShown bool
	Learning    bool
	Replay      model.ReplayKind
	Primed      bool
	RangeHidden bool
	Progress    float64
	Settings    Settings
	Controls    Controls
	Replays     Availability
	Results     []model.ResultEntry
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.currentLocked()
	return Snapshot{
		Mode:        s.mode,
		Index:       s.index,
		Total:       len(s.working),
		Item:        item,
		HasItem:     ok,
		AnswerShown: s.answerShown,
		Learning:    s.learning,
		Replay:      s.replay,
		Primed:      s.primed,
		RangeHidden: s.rangeHidden,
		Progress:    s.progressLocked(),
		Settings:    s.settings,
		Controls:    ControlsFor(s.mode, s.learning, s.answerShown),
		Replays:     s.availabilityLocked(),
		Results:     s.results.Entries(),
	}
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Prompt returns the current item's prompt, or "" when stopped.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, _ := s.currentLocked()
	return item.Prompt
}

// RevealText returns the current answer when revealed, Mask while hidden and
// "" when there is no current item.
func (s *Session) RevealText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.currentLocked()
	if !ok {
		return ""
	}
	if s.answerShown {
		return item.Answer
	}
	return Mask
}

// Progress returns elapsed/budget for the current item in [0, 1].
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

// Controls returns the current button enablement.
func (s *Session) Controls() Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ControlsFor(s.mode, s.learning, s.answerShown)
}

// Results returns the entries recorded in the current or last pass. In
// learning mode that is the current lap only.
func (s *Session) Results() []model.ResultEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results.Entries()
}

// Learning reports whether learning mode is on.
func (s *Session) Learning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.learning
}

// Replay reports how the current or primed working dataset was derived.
func (s *Session) Replay() model.ReplayKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replay
}

// RangeHidden reports whether a replay builder asked to hide range controls.
func (s *Session) RangeHidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rangeHidden
}

// Availability reports which replay actions are currently usable.
func (s *Session) Availability() Availability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availabilityLocked()
}

// Master returns a copy of the master dataset.
func (s *Session) Master() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.master)
}

// Original returns a copy of the dataset of the last normal start.
func (s *Session) Original() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.original)
}

// Working returns a copy of the working dataset.
func (s *Session) Working() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.working)
}

func (s *Session) progressLocked() float64 {
	if s.mode == Stopped {
		return 0
	}
	return s.timer.Fraction()
}

func (s *Session) availabilityLocked() Availability {
	if s.mode != Stopped {
		return Availability{}
	}
	return Availability{
		All:   len(s.original) > 0,
		Slow:  len(s.master) > 0 && results.SlowOrShownCount(s.results.Entries()) > 0,
		Shown: len(s.master) > 0 && s.results.ShownCount() > 0,
	}
}
