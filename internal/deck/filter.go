package deck

import (
	"strings"

	"github.com/verte-zerg/mnemo/internal/model"
)

// Clean drops pairs with an empty prompt or answer and renumbers Index to the
// position in the cleaned deck.
func Clean(items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if !keep(it) {
			continue
		}
		it.Index = len(out)
		out = append(out, it)
	}
	return out
}

func keep(it model.Item) bool {
	return strings.TrimSpace(it.Prompt) != "" && strings.TrimSpace(it.Answer) != ""
}

// DuplicatePrompts returns prompts that appear more than once, in first-seen order.
func DuplicatePrompts(items []model.Item) []string {
	seen := make(map[string]int, len(items))
	var dups []string
	for _, it := range items {
		seen[it.Prompt]++
		if seen[it.Prompt] == 2 {
			dups = append(dups, it.Prompt)
		}
	}
	return dups
}
