package statsui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/stats"
)

// gridTable is a bubbles table that fills the body height exactly.
type gridTable struct {
	t      table.Model
	width  int
	height int
}

func newGridTable(cols []table.Column) gridTable {
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(1),
	)
	t.SetStyles(gridStyles())
	return gridTable{t: t}
}

func gridStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (g *gridTable) setRows(rows []table.Row) {
	g.t.SetRows(rows)
	if g.t.Cursor() >= len(rows) {
		g.t.SetCursor(maxInt(0, len(rows)-1))
	}
	if g.width > 0 {
		g.fit(g.height)
	}
}

func (g *gridTable) resize(width, bodyHeight int) {
	if g.width == width && g.height == bodyHeight {
		return
	}
	g.width = width
	g.height = bodyHeight
	g.t.SetWidth(width)
	g.fit(bodyHeight)
}

// fit sizes the table so its rendered view, header included, is bodyHeight
// lines tall.
func (g *gridTable) fit(bodyHeight int) {
	target := maxInt(1, bodyHeight)
	g.t.SetHeight(maxInt(1, target-1))
	for i := 0; i < 2; i++ {
		diff := target - lipgloss.Height(g.t.View())
		if diff == 0 {
			return
		}
		g.t.SetHeight(maxInt(1, g.t.Height()+diff))
	}
}

func promptColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 5},
		{Title: "Prompt", Width: 18},
		{Title: "Avg (s)", Width: 8},
		{Title: "Attempts", Width: 8},
		{Title: "Revealed", Width: 8},
		{Title: "Slow", Width: 5},
	}
}

func passColumns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Category", Width: 12},
		{Title: "Replay", Width: 6},
		{Title: "Items", Width: 5},
		{Title: "Recall (s)", Width: 10},
		{Title: "Revealed", Width: 8},
		{Title: "Slow", Width: 5},
	}
}

func (m *Model) visiblePromptAggs() []model.PromptAggregate {
	aggs := m.report.PromptAggsAll
	if m.windowScope {
		aggs = m.report.PromptAggsWindow
	}
	if m.flaggedOnly {
		return stats.SelectSlowPrompts(aggs, 0)
	}
	return stats.SortSlowestFirst(aggs)
}

func (m *Model) applyPromptRows() {
	aggs := m.visiblePromptAggs()
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, table.Row(stats.PromptRow(agg)))
	}
	m.prompts.setRows(rows)
}

// applyPassRows lists passes newest first.
func (m *Model) applyPassRows() {
	passes := m.report.Passes
	m.passOrder = make([]model.PassAggregate, 0, len(passes))
	rows := make([]table.Row, 0, len(passes))
	for i := len(passes) - 1; i >= 0; i-- {
		p := passes[i]
		m.passOrder = append(m.passOrder, p)
		rows = append(rows, passRow(p))
	}
	m.passes.setRows(rows)
}

func passRow(p model.PassAggregate) table.Row {
	metrics := stats.PassMetrics(p)
	recall := "-"
	if metrics.HasRecall {
		recall = fmt.Sprintf("%.2f", metrics.AvgRecall)
	}
	replay := string(p.Replay)
	if replay == "" {
		replay = "-"
	}
	return table.Row{
		p.EndedAt.Local().Format("2006-01-02 15:04"),
		p.Category,
		replay,
		fmt.Sprintf("%d", p.Items),
		recall,
		fmt.Sprintf("%.0f%%", metrics.RevealRate*100),
		fmt.Sprintf("%d", p.Slow),
	}
}
