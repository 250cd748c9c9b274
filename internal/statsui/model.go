// Package statsui provides the Bubble Tea pass history browser.
package statsui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/stats"
)

const (
	tabOverview = iota
	tabPrompts
	tabPasses
)

const plotHeight = 10

// Store is the persistence surface the browser reads from.
type Store interface {
	stats.Source
	GetPassEntries(ctx context.Context, passID string) ([]model.ResultEntry, error)
}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	flaggedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model

	prompts       gridTable
	flaggedOnly   bool
	windowScope   bool
	passes        gridTable
	passOrder     []model.PassAggregate
	detailOpen    bool
	detail        viewport.Model
	detailErr     string
	detailPassIdx int

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(st Store, cfg model.StatsConfig) *Model {
	if cfg.CurveWindow < 1 {
		cfg.CurveWindow = 1
	}
	m := &Model{
		store:    st,
		cfg:      cfg,
		tabs:     []string{"Overview", "Prompts", "Passes"},
		overview: viewport.New(0, 0),
		detail:   viewport.New(0, 0),
		prompts:  newGridTable(promptColumns()),
		passes:   newGridTable(passColumns()),
	}
	m.initInputs()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (msg.String() == "q" && !m.filterMode) {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.detailOpen {
			return m.updateDetail(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.syncFocus()
	switch msg.String() {
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "=":
		m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
		m.refreshReport()
		return m, nil
	case "-":
		m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
		m.refreshReport()
		return m, nil
	case "/":
		return m.startFilter()
	case "f":
		if m.activeTab == tabPrompts {
			m.flaggedOnly = !m.flaggedOnly
			m.applyPromptRows()
		}
		return m, nil
	case "r":
		if m.activeTab == tabPrompts {
			m.windowScope = !m.windowScope
			m.applyPromptRows()
		}
		return m, nil
	case "enter":
		if m.activeTab == tabPasses {
			m.openDetail(m.passes.t.Cursor())
		}
		return m, nil
	case "g", "home":
		m.scrollActive(true)
		return m, nil
	case "G", "end":
		m.scrollActive(false)
		return m, nil
	}
	var cmd tea.Cmd
	switch m.activeTab {
	case tabPrompts:
		m.prompts.t, cmd = m.prompts.t.Update(msg)
	case tabPasses:
		m.passes.t, cmd = m.passes.t.Update(msg)
	default:
		m.overview, cmd = m.overview.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.detailOpen = false
		return m, tea.ClearScreen
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *Model) scrollActive(top bool) {
	switch m.activeTab {
	case tabPrompts:
		if top {
			m.prompts.t.GotoTop()
		} else {
			m.prompts.t.GotoBottom()
		}
	case tabPasses:
		if top {
			m.passes.t.GotoTop()
		} else {
			m.passes.t.GotoBottom()
		}
	default:
		if top {
			m.overview.GotoTop()
		} else {
			m.overview.GotoBottom()
		}
	}
}

func (m *Model) syncFocus() {
	m.prompts.t.Blur()
	m.passes.t.Blur()
	switch m.activeTab {
	case tabPrompts:
		m.prompts.t.Focus()
	case tabPasses:
		m.passes.t.Focus()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.detail.Width = m.width
	m.detail.Height = maxInt(1, bodyHeight-1)
	m.prompts.resize(m.width, bodyHeight)
	m.passes.resize(m.width, bodyHeight)
	m.resizeInputs()
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	m.activeTab = (m.activeTab + delta + count) % count
	m.syncFocus()
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{}
		m.overview.SetContent("Failed to load stats.")
		m.applyPromptRows()
		m.applyPassRows()
		return
	}
	m.errMsg = ""
	m.report = report
	m.applyPromptRows()
	m.applyPassRows()
	m.updateLayout()
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		m.overview.SetContent("Failed to load stats.")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report.Passes, m.cfg.CurveWindow, width))
}

func (m *Model) openDetail(row int) {
	if row < 0 || row >= len(m.passOrder) {
		return
	}
	pass := m.passOrder[row]
	m.detailOpen = true
	m.detailPassIdx = row
	m.detailErr = ""
	entries, err := m.store.GetPassEntries(context.Background(), pass.PassID)
	if err != nil {
		m.detailErr = err.Error()
		m.detail.SetContent("Failed to load pass.")
		return
	}
	m.detail.SetContent(renderPassDetail(pass, entries))
	m.detail.GotoTop()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
