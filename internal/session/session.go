// Package session implements the timed recall drill.
//
// A Session walks a working dataset one item at a time. Each item gets a
// countdown budget; the item ends when the user advances, when the budget
// runs out, or when the pass is stopped. Every consumed item produces exactly
// one result entry per pass.
//
// Three datasets are retained between passes:
//
//   - master: the first range selected after Configure; basis for replay slow/shown.
//   - original: the range used by the most recent normal start; basis for replay all.
//   - working: the items consumed by the current pass.
//
// All state is guarded by one mutex. Countdown callbacks enter through the
// same mutex and are matched against the generation of the arm they belong to,
// so a fire that races with pause, reveal or stop is dropped.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/mnemo/internal/countdown"
	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/results"
)

// DefaultBudget is used when Settings.Budget is not positive.
const DefaultBudget = 5 * time.Second

// Mask replaces the answer while it is hidden.
const Mask = "???"

// Mode is the top-level session state.
type Mode int

// Session modes.
const (
	Stopped Mode = iota
	Running
	Paused
)

func (m Mode) String() string {
	switch m {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Provider supplies contiguous ranges of a category's dataset.
type Provider interface {
	GetRange(ctx context.Context, category string, from, to int) ([]model.Item, error)
}

// Shuffler reorders items in place.
type Shuffler interface {
	Shuffle(items []model.Item)
}

// Settings selects what a session drills.
type Settings struct {
	Category string
	From     int
	To       int
	Budget   time.Duration
	Learning bool
}

// Options wires the session's collaborators. Zero values use real implementations.
type Options struct {
	Clock     countdown.Clock
	Scheduler countdown.Scheduler
	Tick      time.Duration
	Logger    *slog.Logger
}

// Session is a single drilling session.
//
// In learning mode the working set wraps around, and each lap starts with an
// empty results log. Results therefore only covers the current lap, and
// learning passes never produce EventResultsAvailable.
type Session struct {
	provider Provider
	clock    countdown.Clock
	timer    *countdown.Timer
	shuffler Shuffler
	logger   *slog.Logger

	mu        sync.Mutex
	subs      []subscription
	nextSubID int
	pending   []Event
	// outbox holds events awaiting delivery while dispatching is set.
	outbox      []Event
	dispatching bool

	settings    Settings
	configured  bool
	learning    bool
	rangeHidden bool

	master   []model.Item
	original []model.Item
	working  []model.Item
	primed   bool
	replay   model.ReplayKind

	mode        Mode
	index       int
	itemStart   time.Time
	pausedAccum time.Duration
	remaining   time.Duration
	answerShown bool
	recorded    bool
	armedGen    uint64
	passStart   time.Time
	results     *results.Recorder
}

// New returns an unconfigured, stopped session.
func New(provider Provider, shuffler Shuffler, opts Options) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = countdown.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var timerOpts []countdown.Option
	if opts.Tick > 0 {
		timerOpts = append(timerOpts, countdown.WithTick(opts.Tick))
	}
	if shuffler == nil {
		shuffler = noShuffle{}
	}
	return &Session{
		provider: provider,
		clock:    clock,
		timer:    countdown.New(clock, opts.Scheduler, timerOpts...),
		shuffler: shuffler,
		logger:   logger,
		results:  results.New(),
	}
}

type noShuffle struct{}

func (noShuffle) Shuffle([]model.Item) {}

// Configure resets the session for a new category and range. All retained
// datasets, including master, are discarded. It is only valid while stopped.
func (s *Session) Configure(settings Settings) error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Stopped {
		return ErrInvalidTransition
	}
	if settings.Budget <= 0 {
		settings.Budget = DefaultBudget
	}
	s.settings = settings
	s.configured = true
	s.learning = settings.Learning
	s.rangeHidden = false
	s.master = nil
	s.original = nil
	s.working = nil
	s.primed = false
	s.replay = model.ReplayNone
	s.results.Reset()
	s.resetItemLocked()
	s.emitLocked(EventConfigured)
	return nil
}

// SetLearningMode toggles learning mode. It is only valid while stopped.
func (s *Session) SetLearningMode(on bool) error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Stopped {
		return ErrInvalidTransition
	}
	s.learning = on
	return nil
}

// Start begins a pass. A normal start selects the configured range, shuffles
// it outside learning mode and refreshes original (and master if empty). A
// start after a replay builder consumes the replay dataset as-is.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Stopped {
		return ErrInvalidTransition
	}
	if !s.configured {
		return ErrNotConfigured
	}
	if s.primed {
		if len(s.working) == 0 {
			return ErrEmptyDataset
		}
	} else {
		items, err := s.provider.GetRange(ctx, s.settings.Category, s.settings.From, s.settings.To)
		if err != nil {
			return fmt.Errorf("failed to load range: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyDataset
		}
		s.working = items
		s.original = cloneItems(items)
		if len(s.master) == 0 {
			s.master = cloneItems(items)
		}
		s.replay = model.ReplayNone
		if !s.learning {
			s.shuffler.Shuffle(s.working)
		}
	}
	s.primed = false
	s.results.Reset()
	now := s.clock.Now()
	s.passStart = now
	s.index = 0
	s.mode = Running
	s.emitLocked(EventStarted)
	s.beginItemLocked(now)
	s.logger.Info("pass started", "category", s.settings.Category, "items", len(s.working), "learning", s.learning, "replay", string(s.replay))
	return nil
}

// Pause freezes the current item. Not valid while the answer is revealed in
// training mode.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Running || s.awaitingNextLocked() {
		return ErrInvalidTransition
	}
	now := s.clock.Now()
	s.cancelTimerLocked()
	s.pausedAccum = now.Sub(s.itemStart)
	s.mode = Paused
	s.emitLocked(EventPaused)
	return nil
}

// Resume continues a paused item. Elapsed time and the countdown continue
// from where they were frozen.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Paused {
		return ErrInvalidTransition
	}
	now := s.clock.Now()
	s.itemStart = now.Add(-s.pausedAccum)
	s.mode = Running
	s.emitLocked(EventResumed)
	if s.remaining <= 0 {
		// Paused on the expiry tick: the budget is already spent.
		s.emitLocked(EventTimeout)
		s.advanceLocked(now, true)
		return nil
	}
	s.armTimerLocked(s.remaining)
	return nil
}

// ShowAnswer reveals the current answer in training mode and records the item
// as shown. Afterwards only Next and Stop are valid for this item.
func (s *Session) ShowAnswer() error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Running || s.learning || s.answerShown {
		return ErrInvalidTransition
	}
	spent := s.elapsedLocked(s.clock.Now())
	s.cancelTimerLocked()
	s.pausedAccum = spent
	s.answerShown = true
	s.emitLocked(EventAnswerShown)
	s.recordLocked(spent)
	return nil
}

// Next advances to the following item, recording the current one if needed.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Running {
		return ErrInvalidTransition
	}
	s.advanceLocked(s.clock.Now(), false)
	return nil
}

// Stop ends the pass. An in-progress item without a result is recorded with
// the time elapsed so far.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode == Stopped {
		return ErrInvalidTransition
	}
	now := s.clock.Now()
	if _, ok := s.currentLocked(); ok && !s.recorded {
		s.recordLocked(s.elapsedLocked(now))
	}
	s.finishLocked(now)
	return nil
}

func (s *Session) onExpire(gen uint64) {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Running || gen == 0 || gen != s.armedGen {
		s.logger.Debug("discarding stale timer fire", "gen", gen, "armed", s.armedGen)
		return
	}
	s.armedGen = 0
	s.emitLocked(EventTimeout)
	s.advanceLocked(s.clock.Now(), true)
}

func (s *Session) advanceLocked(now time.Time, timeout bool) {
	if _, ok := s.currentLocked(); ok && !s.recorded {
		spent := s.elapsedLocked(now)
		if timeout {
			spent = s.settings.Budget
		}
		s.recordLocked(spent)
	}
	s.cancelTimerLocked()
	s.index++
	if s.index < len(s.working) {
		s.beginItemLocked(now)
		return
	}
	if s.learning {
		s.index = 0
		s.results.Reset()
		s.emitLocked(EventLap)
		s.beginItemLocked(now)
		return
	}
	s.finishLocked(now)
}

func (s *Session) finishLocked(now time.Time) {
	s.cancelTimerLocked()
	s.mode = Stopped
	s.resetItemLocked()
	s.emitLocked(EventStopped)
	s.logger.Info("pass stopped", "category", s.settings.Category, "results", s.results.Len())
	if s.results.Len() > 0 && !s.learning {
		s.emitEventLocked(Event{
			Kind:   EventResultsAvailable,
			Replay: s.replay,
			Pass:   newPassRecord(s, now, s.results.Entries()),
		})
	}
}

func (s *Session) beginItemLocked(now time.Time) {
	s.itemStart = now
	s.pausedAccum = 0
	s.remaining = s.settings.Budget
	s.answerShown = s.learning
	s.recorded = false
	s.armTimerLocked(s.settings.Budget)
	s.emitLocked(EventItem)
}

func (s *Session) resetItemLocked() {
	s.index = 0
	s.itemStart = time.Time{}
	s.pausedAccum = 0
	s.remaining = 0
	s.answerShown = false
	s.recorded = false
}

func (s *Session) recordLocked(spent time.Duration) {
	item, ok := s.currentLocked()
	if !ok || s.recorded {
		return
	}
	entry := s.results.Record(item, spent, s.answerShown)
	s.recorded = true
	s.emitEventLocked(Event{Kind: EventRecorded, Index: s.index, Item: item, Entry: entry, Replay: s.replay})
}

func (s *Session) armTimerLocked(remaining time.Duration) {
	s.armedGen = s.timer.Start(s.settings.Budget, remaining, s.onExpire)
}

func (s *Session) cancelTimerLocked() {
	if s.armedGen == 0 {
		return
	}
	s.remaining = s.timer.Cancel()
	s.armedGen = 0
}

func (s *Session) elapsedLocked(now time.Time) time.Duration {
	switch s.mode {
	case Running:
		if s.awaitingNextLocked() {
			return s.pausedAccum
		}
		return now.Sub(s.itemStart)
	case Paused:
		return s.pausedAccum
	default:
		return 0
	}
}

// awaitingNextLocked reports the revealed-in-training sub-state.
func (s *Session) awaitingNextLocked() bool {
	return s.answerShown && !s.learning
}

func (s *Session) currentLocked() (model.Item, bool) {
	if s.mode == Stopped || s.index < 0 || s.index >= len(s.working) {
		return model.Item{}, false
	}
	return s.working[s.index], true
}

func cloneItems(items []model.Item) []model.Item {
	if items == nil {
		return nil
	}
	out := make([]model.Item, len(items))
	copy(out, items)
	return out
}
