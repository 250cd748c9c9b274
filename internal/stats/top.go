package stats

import (
	"sort"

	"github.com/verte-zerg/mnemo/internal/model"
)

// TopPromptsByAttempts returns the n most practised prompts.
func TopPromptsByAttempts(aggs []model.PromptAggregate, n int) []model.PromptAggregate {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	out := append([]model.PromptAggregate(nil), aggs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Attempts == out[j].Attempts {
			return out[i].Index < out[j].Index
		}
		return out[i].Attempts > out[j].Attempts
	})
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}
