package deck

import (
	"testing"

	"github.com/verte-zerg/mnemo/internal/model"
)

func TestCleanDropsIncompletePairs(t *testing.T) {
	items := []model.Item{
		{Prompt: "0", Answer: "hero"},
		{Prompt: " ", Answer: "bun"},
		{Prompt: "2", Answer: ""},
		{Prompt: "3", Answer: "tree"},
	}
	got := Clean(items)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[1].Prompt != "3" || got[1].Index != 1 {
		t.Fatalf("unexpected second item: %+v", got[1])
	}
}

func TestDuplicatePrompts(t *testing.T) {
	items := []model.Item{
		{Prompt: "a"}, {Prompt: "b"}, {Prompt: "a"}, {Prompt: "a"}, {Prompt: "b"},
	}
	dups := DuplicatePrompts(items)
	if len(dups) != 2 || dups[0] != "a" || dups[1] != "b" {
		t.Fatalf("unexpected duplicates: %v", dups)
	}
}
