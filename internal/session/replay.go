package session

import "github.com/verte-zerg/mnemo/internal/model"

// Items are matched to results by Item.Index, their position in the category
// deck, so duplicate prompts do not collapse into one replay item.

// ReplayAll primes the next start with the range of the last normal start,
// in its unshuffled order.
func (s *Session) ReplayAll() error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Stopped {
		return ErrInvalidTransition
	}
	if len(s.original) == 0 {
		return ErrEmptyDataset
	}
	s.primeLocked(cloneItems(s.original), model.ReplayAll)
	return nil
}

// ReplaySlow primes the next start with the master items that were revealed
// or slower than model.SlowThreshold in the last pass, in master order. It
// switches to learning mode and hides the range controls.
func (s *Session) ReplaySlow() error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Stopped {
		return ErrInvalidTransition
	}
	items := SlowItems(s.master, s.results.Entries())
	if len(items) == 0 {
		return ErrEmptyDataset
	}
	s.learning = true
	s.rangeHidden = true
	s.primeLocked(items, model.ReplaySlow)
	return nil
}

// ReplayShown primes the next start with the master items whose answer was
// revealed in the last pass, in result order. It switches to learning mode
// and hides the range controls.
func (s *Session) ReplayShown() error {
	s.mu.Lock()
	defer s.unlockAndDispatch()
	if s.mode != Stopped {
		return ErrInvalidTransition
	}
	items := ShownItems(s.master, s.results.Entries())
	if len(items) == 0 {
		return ErrEmptyDataset
	}
	s.learning = true
	s.rangeHidden = true
	s.primeLocked(items, model.ReplayShown)
	return nil
}

func (s *Session) primeLocked(items []model.Item, kind model.ReplayKind) {
	s.working = items
	s.primed = true
	s.replay = kind
	s.emitLocked(EventReplayPrimed)
}

// SlowItems returns the distinct master items that have a slow or revealed
// entry, in master order.
func SlowItems(master []model.Item, entries []model.ResultEntry) []model.Item {
	flagged := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		if e.Shown || e.Slow() {
			flagged[e.Item.Index] = struct{}{}
		}
	}
	var out []model.Item
	for _, it := range master {
		if _, ok := flagged[it.Index]; !ok {
			continue
		}
		out = append(out, it)
		delete(flagged, it.Index)
	}
	return out
}

// ShownItems returns the distinct master items that have a revealed entry,
// in the order the entries were recorded.
func ShownItems(master []model.Item, entries []model.ResultEntry) []model.Item {
	byIndex := make(map[int]model.Item, len(master))
	for _, it := range master {
		byIndex[it.Index] = it
	}
	seen := make(map[int]struct{}, len(entries))
	var out []model.Item
	for _, e := range entries {
		if !e.Shown {
			continue
		}
		if _, dup := seen[e.Item.Index]; dup {
			continue
		}
		it, ok := byIndex[e.Item.Index]
		if !ok {
			continue
		}
		seen[e.Item.Index] = struct{}{}
		out = append(out, it)
	}
	return out
}
