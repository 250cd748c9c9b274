// Package results accumulates per-item outcomes for a drill pass.
package results

import (
	"time"

	"github.com/verte-zerg/mnemo/internal/model"
)

// Recorder holds the result entries of the current pass in consumption order.
type Recorder struct {
	entries []model.ResultEntry
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// Record appends an entry. TimeSpent is floored at model.MinTimeSpent.
func (r *Recorder) Record(item model.Item, spent time.Duration, shown bool) model.ResultEntry {
	if spent < model.MinTimeSpent {
		spent = model.MinTimeSpent
	}
	entry := model.ResultEntry{Item: item, TimeSpent: spent, Shown: shown}
	r.entries = append(r.entries, entry)
	return entry
}

// Reset clears the log.
func (r *Recorder) Reset() {
	r.entries = nil
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []model.ResultEntry {
	out := make([]model.ResultEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ShownCount returns the number of entries whose answer was revealed.
func (r *Recorder) ShownCount() int {
	return ShownCount(r.entries)
}

// SlowOrShownCount returns the number of entries that were revealed or slow.
func (r *Recorder) SlowOrShownCount() int {
	return SlowOrShownCount(r.entries)
}

// AverageTime returns the mean time of unrevealed entries.
func (r *Recorder) AverageTime() (time.Duration, bool) {
	return AverageTime(r.entries)
}

// ShownCount counts revealed entries.
func ShownCount(entries []model.ResultEntry) int {
	n := 0
	for _, e := range entries {
		if e.Shown {
			n++
		}
	}
	return n
}

// SlowOrShownCount counts entries that were revealed or took longer than model.SlowThreshold.
func SlowOrShownCount(entries []model.ResultEntry) int {
	n := 0
	for _, e := range entries {
		if e.Shown || e.Slow() {
			n++
		}
	}
	return n
}

// AverageTime averages TimeSpent over unrevealed entries. ok is false when
// every entry was revealed or there are none.
func AverageTime(entries []model.ResultEntry) (avg time.Duration, ok bool) {
	var sum time.Duration
	n := 0
	for _, e := range entries {
		if e.Shown {
			continue
		}
		sum += e.TimeSpent
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / time.Duration(n), true
}
