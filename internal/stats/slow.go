package stats

import (
	"sort"

	"github.com/verte-zerg/mnemo/internal/model"
)

// SelectSlowPrompts ranks prompts by how often they needed a reveal, then by
// average time, and returns the top entries that were revealed or slow at
// least once. top <= 0 returns every such prompt.
func SelectSlowPrompts(aggs []model.PromptAggregate, top int) []model.PromptAggregate {
	candidates := make([]model.PromptAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Shown > 0 || agg.Slow > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := revealRate(candidates[i]), revealRate(candidates[j])
		if ri != rj {
			return ri > rj
		}
		ai, aj := PromptAvgSeconds(candidates[i]), PromptAvgSeconds(candidates[j])
		if ai != aj {
			return ai > aj
		}
		return candidates[i].Index < candidates[j].Index
	})
	if top > 0 && top < len(candidates) {
		candidates = candidates[:top]
	}
	return candidates
}

func revealRate(agg model.PromptAggregate) float64 {
	if agg.Attempts == 0 {
		return 0
	}
	return float64(agg.Shown) / float64(agg.Attempts)
}
