package deck

import "github.com/verte-zerg/mnemo/internal/model"

// ClampRange clamps inclusive bounds to [0, n-1] and swaps them when from > to.
// ok is false when n is zero.
func ClampRange(n, from, to int) (lo, hi int, ok bool) {
	if n <= 0 {
		return 0, 0, false
	}
	lo = clamp(from, 0, n-1)
	hi = clamp(to, 0, n-1)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

// SelectRange returns a copy of items[from..to] using ClampRange rules.
func SelectRange(items []model.Item, from, to int) []model.Item {
	lo, hi, ok := ClampRange(len(items), from, to)
	if !ok {
		return nil
	}
	out := make([]model.Item, hi-lo+1)
	copy(out, items[lo:hi+1])
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
