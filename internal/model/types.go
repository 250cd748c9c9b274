// Package model defines shared data structures.
package model

import "time"

// SlowThreshold is the recall time above which an entry counts as slow.
const SlowThreshold = 2 * time.Second

// MinTimeSpent is the floor applied to measured recall times.
const MinTimeSpent = 100 * time.Millisecond

// Item is a single prompt/answer pair. Index is the item's position in its category deck.
type Item struct {
	Index  int
	Prompt string
	Answer string
}

// ResultEntry is the outcome of one consumed item in a pass.
type ResultEntry struct {
	Item      Item
	TimeSpent time.Duration
	Shown     bool
}

// Seconds returns the time spent in seconds.
func (e ResultEntry) Seconds() float64 {
	return e.TimeSpent.Seconds()
}

// Slow reports whether the entry took longer than SlowThreshold.
func (e ResultEntry) Slow() bool {
	return e.TimeSpent > SlowThreshold
}

// DrillConfig defines drill settings.
type DrillConfig struct {
	Category string        `validate:"required"`
	From     int           `validate:"gte=0"`
	To       int           `validate:"gte=0"`
	Budget   time.Duration `validate:"gte=100000000"`
	Learning bool
	Vibrate  bool
	OnActive string
	OnIdle   string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Category    string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// ReplayKind identifies how a pass dataset was derived.
type ReplayKind string

// Replay kinds.
const (
	ReplayNone  ReplayKind = ""
	ReplayAll   ReplayKind = "all"
	ReplaySlow  ReplayKind = "slow"
	ReplayShown ReplayKind = "shown"
)

// PassRecord captures a completed drill pass.
type PassRecord struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Category  string
	From      int
	To        int
	Learning  bool
	Replay    ReplayKind
	BudgetMs  int64
	Entries   []ResultEntry
}

// PassAggregate summarizes a stored pass for reporting.
type PassAggregate struct {
	PassID    string
	EndedAt   time.Time
	Category  string
	Replay    ReplayKind
	Items     int
	Shown     int
	Slow      int
	TimeSumMs int64
	// UnshownSumMs and UnshownCount cover entries answered without a reveal.
	UnshownSumMs int64
	UnshownCount int
}

// PromptAggregate aggregates entries for one deck item across passes.
type PromptAggregate struct {
	Category  string
	Index     int
	Prompt    string
	Attempts  int
	Shown     int
	Slow      int
	TimeSumMs int64
}
