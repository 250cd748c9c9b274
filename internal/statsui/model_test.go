package statsui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "mnemo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := st.InsertPass(context.Background(), model.PassRecord{
			StartedAt: base.Add(time.Duration(i)*time.Hour - time.Minute),
			EndedAt:   base.Add(time.Duration(i) * time.Hour),
			Category:  "pegs",
			To:        1,
			BudgetMs:  5000,
			Entries: []model.ResultEntry{
				{Item: model.Item{Index: 0, Prompt: "0", Answer: "hose"}, TimeSpent: time.Second},
				{Item: model.Item{Index: 1, Prompt: "1", Answer: "tie"}, TimeSpent: 3 * time.Second, Shown: i == 1},
			},
		})
		if err != nil {
			t.Fatalf("insert pass: %v", err)
		}
	}
	return st
}

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestViewFillsWindow(t *testing.T) {
	m := sized(NewModel(seededStore(t), model.StatsConfig{CurveWindow: 1}))
	view := m.View()
	if got := lipgloss.Height(view); got != 30 {
		t.Fatalf("expected 30 lines, got %d", got)
	}
	for _, want := range []string{"Overview", "Prompts", "Passes", "category=any", "Avg Recall"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view", want)
		}
	}
}

func TestPromptsTabFlaggedToggle(t *testing.T) {
	m := sized(NewModel(seededStore(t), model.StatsConfig{CurveWindow: 1}))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabPrompts {
		t.Fatalf("expected prompts tab, got %d", m.activeTab)
	}
	if n := len(m.prompts.t.Rows()); n != 2 {
		t.Fatalf("expected 2 prompt rows, got %d", n)
	}
	if first := m.prompts.t.Rows()[0][1]; first != "1" {
		t.Fatalf("expected slowest prompt first, got %q", first)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	if !m.flaggedOnly || len(m.prompts.t.Rows()) != 1 {
		t.Fatalf("expected only the flagged prompt, got %d rows", len(m.prompts.t.Rows()))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if !m.windowScope {
		t.Fatalf("expected window scope")
	}
	if row := m.prompts.t.Rows()[0]; row[3] != "1" {
		t.Fatalf("expected one attempt in the last pass, got %q", row[3])
	}
}

func TestPassesTabOpensDetail(t *testing.T) {
	m := sized(NewModel(seededStore(t), model.StatsConfig{CurveWindow: 1}))
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabPasses {
		t.Fatalf("expected tabs to wrap to passes, got %d", m.activeTab)
	}
	if len(m.passOrder) != 2 || !m.passOrder[0].EndedAt.After(m.passOrder[1].EndedAt) {
		t.Fatalf("expected newest pass first: %+v", m.passOrder)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.detailOpen {
		t.Fatalf("expected detail view")
	}
	view := m.View()
	for _, want := range []string{"Pass 1 of 2", "0 → hose", "1 → tie", "(revealed)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in detail view:\n%s", want, view)
		}
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.detailOpen {
		t.Fatalf("expected esc to close the detail view")
	}
}

func TestFilterFormAppliesCategory(t *testing.T) {
	m := sized(NewModel(seededStore(t), model.StatsConfig{CurveWindow: 1}))
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("nato")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter to apply, got error %q", m.filterError)
	}
	if m.cfg.Category != "nato" {
		t.Fatalf("expected category filter, got %q", m.cfg.Category)
	}
	if len(m.report.Passes) != 0 {
		t.Fatalf("expected no nato passes, got %d", len(m.report.Passes))
	}
}

func TestParseFilterRejectsBadInput(t *testing.T) {
	m := NewModel(failingStore{}, model.StatsConfig{})
	cases := map[int]string{
		fieldSince:  "yesterday",
		fieldLast:   "-1",
		fieldWindow: "0",
	}
	for field, value := range cases {
		m.setInputsFromConfig()
		m.filterInputs[field].SetValue(value)
		if _, err := parseFilter(m.filterInputs); err == nil {
			t.Fatalf("expected error for field %d value %q", field, value)
		}
	}
}

type failingStore struct{}

func (failingStore) ListPasses(context.Context, model.StatsConfig) ([]model.PassAggregate, error) {
	return nil, errors.New("db locked")
}

func (failingStore) ListPromptAggregates(context.Context, []string) ([]model.PromptAggregate, error) {
	return nil, nil
}

func (failingStore) GetPassEntries(context.Context, string) ([]model.ResultEntry, error) {
	return nil, nil
}

func TestReportErrorShownInFooter(t *testing.T) {
	m := sized(NewModel(failingStore{}, model.StatsConfig{}))
	view := m.View()
	if !strings.Contains(view, "db locked") || !strings.Contains(view, "Failed to load stats.") {
		t.Fatalf("expected error in view:\n%s", view)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d): expected %d, got %d", tc.in, tc.next, got)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d): expected %d, got %d", tc.in, tc.prev, got)
		}
	}
}

func TestFitLines(t *testing.T) {
	got := fitLines("a\nbb\nccc", 4, 2)
	if got != "a   \nbb  " {
		t.Fatalf("unexpected fit: %q", got)
	}
	padded := fitLines("x", 2, 3)
	if strings.Count(padded, "\n") != 2 {
		t.Fatalf("expected 3 lines, got %q", padded)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLine("日本語テキスト", 7); got != "日本..." {
		t.Fatalf("unexpected wide truncation %q", got)
	}
	if got := truncateLine("short", 10); got != "short" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
