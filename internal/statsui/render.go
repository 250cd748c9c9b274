package statsui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/stats"
)

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	category := m.cfg.Category
	if category == "" {
		category = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: category=%s  since=%s  last=%s  window=%d", category, since, last, m.cfg.CurveWindow)
	if m.activeTab == tabPrompts {
		scope := "all passes"
		if m.windowScope {
			scope = fmt.Sprintf("last %d passes", m.cfg.CurveWindow)
		}
		summary += "  scope=" + scope
		if m.flaggedOnly {
			summary += "  flagged only"
		}
	}
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	switch {
	case m.detailOpen:
		help = "Scroll: up/down/pgup/pgdn  Back: esc  Quit: q"
	case m.activeTab == tabPrompts:
		help = "Nav: left/right  Flagged: f  Recent: r  Window: -/=  Settings: /  Quit: q"
	case m.activeTab == tabPasses:
		help = "Nav: left/right  Select: up/down  Open: enter  Settings: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	switch m.activeTab {
	case tabPrompts:
		switch {
		case len(m.report.Passes) == 0:
			return fitLines("No passes found.", m.width, height)
		case len(m.prompts.t.Rows()) == 0:
			return fitLines("No prompt stats found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.prompts.t.View()), m.width, height)
	case tabPasses:
		if len(m.passOrder) == 0 {
			return fitLines("No passes found.", m.width, height)
		}
		if m.detailOpen {
			title := headerStyle.Render(fmt.Sprintf("Pass %d of %d", m.detailPassIdx+1, len(m.passOrder)))
			if m.detailErr != "" {
				title = errorStyle.Render(m.detailErr)
			}
			return fitLines(title+"\n"+m.detail.View(), m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.passes.t.View()), m.width, height)
	}
	return fitLines(m.overview.View(), m.width, height)
}

func renderOverview(passes []model.PassAggregate, window, width int) string {
	if len(passes) == 0 {
		return "No passes found."
	}
	summary := renderSummaryCards(passes, width)
	curves := renderCurves(passes, window, width)
	return strings.TrimRight(summary+"\n\n"+curves, "\n")
}

func renderSummaryCards(passes []model.PassAggregate, width int) string {
	sum := stats.Summarize(passes)
	recall, best := "-", "-"
	if sum.AvgRecall > 0 {
		recall = fmt.Sprintf("%.2fs", sum.AvgRecall)
	}
	if sum.BestRecall > 0 {
		best = fmt.Sprintf("%.2fs", sum.BestRecall)
	}
	cards := []string{
		metricCard("Passes", strconv.Itoa(sum.Passes)),
		metricCard("Avg Recall", recall),
		metricCard("Best Pass", best),
		metricCard("Items", strconv.Itoa(sum.Items)),
		metricCard("Revealed", fmt.Sprintf("%.1f%%", sum.RevealRate*100)),
		metricCard("Slow", fmt.Sprintf("%.1f%%", sum.SlowRate*100)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCurves(passes []model.PassAggregate, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, passes, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// renderPassDetail lists one pass's entries in the order they were answered.
func renderPassDetail(pass model.PassAggregate, entries []model.ResultEntry) string {
	lines := []string{
		cardValueStyle.Render(fmt.Sprintf("%s  %s", pass.Category, pass.EndedAt.Local().Format("2006-01-02 15:04:05"))),
	}
	if pass.Replay != model.ReplayNone {
		lines = append(lines, headerStyle.Render("replay: "+string(pass.Replay)))
	}
	if len(entries) == 0 {
		return strings.Join(append(lines, "No entries recorded."), "\n")
	}
	lines = append(lines, "")
	for i, e := range entries {
		line := fmt.Sprintf("%3d  %6.2fs  %s → %s", i+1, e.Seconds(), e.Item.Prompt, e.Item.Answer)
		switch {
		case e.Shown:
			line = flaggedStyle.Render(line + "  (revealed)")
		case e.Slow():
			line = flaggedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
