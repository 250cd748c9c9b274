// Package tui provides the Bubble Tea drill screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mnemo/internal/logging"
	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/results"
	"github.com/verte-zerg/mnemo/internal/session"
	statsPkg "github.com/verte-zerg/mnemo/internal/stats"
)

const (
	tickInterval   = 50 * time.Millisecond
	maxBarWidth    = 40
	maxResultLines = 8
)

// PassStore persists finished passes and reads them back for the footer.
type PassStore interface {
	InsertPass(ctx context.Context, rec model.PassRecord) (string, error)
	ListPasses(ctx context.Context, cfg model.StatsConfig) ([]model.PassAggregate, error)
}

// Options configures the drill screen.
type Options struct {
	Session *session.Session
	Bridge  *Bridge
	Store   PassStore
	// DeckLen bounds the range controls. Zero disables range adjustment.
	DeckLen int
	Logger  *slog.Logger
}

type tickMsg time.Time

type savedMsg struct {
	id  string
	err error
}

type footerMsg struct {
	passes []model.PassAggregate
	err    error
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	sess    *session.Session
	bridge  *Bridge
	store   PassStore
	deckLen int
	logger  *slog.Logger

	keys keyMap
	help help.Model

	width  int
	height int

	ticking bool
	status  string
	errText string

	lastRecall float64
	lastReveal float64
	hasLast    bool
	allTime    statsPkg.Summary
}

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	maskStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAF87"))
	barLowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	barEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	slowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the drill screen. The bridge must already be subscribed
// to the session.
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	bridge := opts.Bridge
	if bridge == nil {
		bridge = NewBridge()
		opts.Session.Subscribe(bridge.Listen)
	}
	m := &Model{
		sess:    opts.Session,
		bridge:  bridge,
		store:   opts.Store,
		deckLen: opts.DeckLen,
		logger:  logger,
		keys:    newKeyMap(),
		help:    help.New(),
	}
	m.keys.sync(m.sess.Snapshot())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadFooterCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			_ = m.sess.Stop()
			return m, tea.Sequence(m.drainEvents(), tea.Quit)
		}
		m.handleKey(msg)
		return m, tea.Batch(m.drainEvents(), m.ensureTicking())
	case eventsReadyMsg:
		return m, tea.Batch(m.drainEvents(), m.ensureTicking())
	case tickMsg:
		if m.sess.Mode() == session.Stopped {
			m.ticking = false
			return m, nil
		}
		return m, tickCmd()
	case savedMsg:
		if msg.err != nil {
			m.logger.Error("failed to save pass", "error", msg.err)
			m.errText = fmt.Sprintf("failed to save pass: %v", msg.err)
			return m, nil
		}
		m.logger.Info("pass saved", "pass_id", msg.id)
		return m, m.loadFooterCmd()
	case footerMsg:
		if msg.err != nil {
			m.logger.Warn("failed to load pass stats", "error", msg.err)
			return m, nil
		}
		m.applyFooter(msg.passes)
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	snap := m.sess.Snapshot()
	m.keys.sync(snap)
	m.status = ""
	m.errText = ""

	var err error
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Start):
		err = m.sess.Start(context.Background())
	case key.Matches(msg, m.keys.Next):
		err = m.sess.Next()
	case key.Matches(msg, m.keys.Pause):
		err = m.sess.Pause()
	case key.Matches(msg, m.keys.Resume):
		err = m.sess.Resume()
	case key.Matches(msg, m.keys.ShowAnswer):
		err = m.sess.ShowAnswer()
	case key.Matches(msg, m.keys.Stop):
		err = m.sess.Stop()
	case key.Matches(msg, m.keys.Learning):
		err = m.sess.SetLearningMode(!snap.Learning)
	case key.Matches(msg, m.keys.FromDown):
		err = m.adjustRange(snap.Settings, -1, 0)
	case key.Matches(msg, m.keys.FromUp):
		err = m.adjustRange(snap.Settings, 1, 0)
	case key.Matches(msg, m.keys.ToDown):
		err = m.adjustRange(snap.Settings, 0, -1)
	case key.Matches(msg, m.keys.ToUp):
		err = m.adjustRange(snap.Settings, 0, 1)
	case key.Matches(msg, m.keys.ReplayAll):
		err = m.prime(m.sess.ReplayAll)
	case key.Matches(msg, m.keys.ReplaySlow):
		err = m.prime(m.sess.ReplaySlow)
	case key.Matches(msg, m.keys.ReplayShown):
		err = m.prime(m.sess.ReplayShown)
	}
	m.reportErr(err)
	m.keys.sync(m.sess.Snapshot())
}

func (m *Model) prime(build func() error) error {
	if err := build(); err != nil {
		return err
	}
	m.status = "Replay ready, press space to start"
	return nil
}

// adjustRange moves the configured bounds inside the deck. Reconfiguring
// discards the retained datasets.
func (m *Model) adjustRange(settings session.Settings, dFrom, dTo int) error {
	if m.deckLen <= 0 {
		return nil
	}
	next := settings
	next.From = clamp(settings.From+dFrom, 0, m.deckLen-1)
	next.To = clamp(settings.To+dTo, 0, m.deckLen-1)
	if next.From == settings.From && next.To == settings.To {
		return nil
	}
	next.Learning = m.sess.Learning()
	return m.sess.Configure(next)
}

func (m *Model) reportErr(err error) {
	switch {
	case err == nil:
	case errors.Is(err, session.ErrInvalidTransition):
		m.logger.Debug("ignored key", "error", err)
	case errors.Is(err, session.ErrEmptyDataset):
		m.status = "Nothing to drill in this selection"
	default:
		m.logger.Error("session action failed", "error", err)
		m.errText = err.Error()
	}
}

func (m *Model) drainEvents() tea.Cmd {
	var cmds []tea.Cmd
	for _, ev := range m.bridge.Drain() {
		switch ev.Kind {
		case session.EventStarted:
			m.status = ""
		case session.EventTimeout:
			m.status = "Time's up"
		case session.EventLap:
			m.status = "Lap complete, starting over"
		case session.EventConfigured:
			m.status = ""
		case session.EventResultsAvailable:
			if ev.Pass != nil {
				cmds = append(cmds, m.saveCmd(*ev.Pass))
			}
		}
	}
	m.keys.sync(m.sess.Snapshot())
	return tea.Batch(cmds...)
}

func (m *Model) ensureTicking() tea.Cmd {
	if m.ticking || m.sess.Mode() == session.Stopped {
		return nil
	}
	m.ticking = true
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) saveCmd(rec model.PassRecord) tea.Cmd {
	if m.store == nil {
		return nil
	}
	st := m.store
	return func() tea.Msg {
		id, err := st.InsertPass(context.Background(), rec)
		return savedMsg{id: id, err: err}
	}
}

func (m *Model) loadFooterCmd() tea.Cmd {
	if m.store == nil {
		return nil
	}
	st := m.store
	category := m.sess.Snapshot().Settings.Category
	return func() tea.Msg {
		passes, err := st.ListPasses(context.Background(), model.StatsConfig{Category: category})
		return footerMsg{passes: passes, err: err}
	}
}

func (m *Model) applyFooter(passes []model.PassAggregate) {
	if len(passes) == 0 {
		m.hasLast = false
		m.allTime = statsPkg.Summary{}
		return
	}
	last := statsPkg.PassMetrics(passes[len(passes)-1])
	m.lastRecall = last.AvgRecall
	m.lastReveal = last.RevealRate
	m.hasLast = true
	m.allTime = statsPkg.Summarize(passes)
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.sess.Snapshot()
	contentWidth := m.width * 7 / 10
	if contentWidth < 1 {
		contentWidth = maxBarWidth
	}

	blocks := []string{m.renderHeader(snap), ""}
	if snap.Mode == session.Stopped {
		blocks = append(blocks, m.renderStopped(snap, contentWidth)...)
	} else {
		blocks = append(blocks, m.renderItem(snap, contentWidth)...)
	}
	if m.status != "" {
		blocks = append(blocks, "", statusStyle.Render(m.status))
	}
	if m.errText != "" {
		blocks = append(blocks, "", errorStyle.Render(truncate(m.errText, contentWidth)))
	}
	blocks = append(blocks, "", m.help.View(m.keys))
	content := lipgloss.NewStyle().Width(contentWidth).Render(strings.Join(blocks, "\n"))

	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter(snap)
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader(snap session.Snapshot) string {
	parts := []string{snap.Settings.Category}
	if !snap.RangeHidden {
		parts = append(parts, fmt.Sprintf("%d-%d", snap.Settings.From, snap.Settings.To))
	}
	if snap.Learning {
		parts = append(parts, "learning")
	} else {
		parts = append(parts, "training")
	}
	if snap.Replay != model.ReplayNone {
		parts = append(parts, "replay "+string(snap.Replay))
	}
	if snap.Mode == session.Paused {
		parts = append(parts, "paused")
	}
	return headerStyle.Render(strings.Join(parts, " · "))
}

func (m *Model) renderItem(snap session.Snapshot, width int) []string {
	var lines []string
	for _, l := range wrapText(snap.Item.Prompt, width) {
		lines = append(lines, promptStyle.Render(l))
	}
	lines = append(lines, "")
	if snap.AnswerShown {
		for _, l := range wrapText(snap.Item.Answer, width) {
			lines = append(lines, answerStyle.Render(l))
		}
	} else {
		lines = append(lines, maskStyle.Render(session.Mask))
	}
	lines = append(lines, "", renderCountdown(snap.Progress, snap.Settings.Budget, width))
	lines = append(lines, headerStyle.Render(fmt.Sprintf("%d/%d", snap.Index+1, snap.Total)))
	return lines
}

// renderCountdown draws the remaining share of the budget as a bar.
func renderCountdown(progress float64, budget time.Duration, width int) string {
	barWidth := width - 6
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	if barWidth < 1 {
		barWidth = 1
	}
	left := 1 - progress
	if left < 0 {
		left = 0
	}
	filled := int(left*float64(barWidth) + 0.5)
	style := barStyle
	if left < 0.25 {
		style = barLowStyle
	}
	bar := style.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
	remaining := time.Duration(float64(budget) * left)
	return fmt.Sprintf("%s %4.1fs", bar, remaining.Seconds())
}

func (m *Model) renderStopped(snap session.Snapshot, width int) []string {
	if len(snap.Results) == 0 {
		if snap.Primed {
			return []string{fmt.Sprintf("%d items ready", snap.Total)}
		}
		return []string{"Press space to start"}
	}
	lines := []string{renderResultSummary(snap.Results), ""}
	lines = append(lines, renderResultEntries(snap.Results, width)...)
	lines = append(lines, "", m.renderReplays(snap.Replays))
	return lines
}

func renderResultSummary(entries []model.ResultEntry) string {
	avg := "n/a"
	if d, ok := results.AverageTime(entries); ok {
		avg = fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%d items · avg %s · %d revealed · %d to review",
		len(entries), avg, results.ShownCount(entries), results.SlowOrShownCount(entries))
}

// renderResultEntries lists flagged entries first, then the rest, up to maxResultLines.
func renderResultEntries(entries []model.ResultEntry, width int) []string {
	ordered := make([]model.ResultEntry, 0, len(entries))
	for _, e := range entries {
		if e.Shown || e.Slow() {
			ordered = append(ordered, e)
		}
	}
	for _, e := range entries {
		if !e.Shown && !e.Slow() {
			ordered = append(ordered, e)
		}
	}
	var lines []string
	for i, e := range ordered {
		if i == maxResultLines {
			lines = append(lines, headerStyle.Render(fmt.Sprintf("… %d more", len(ordered)-i)))
			break
		}
		line := truncate(fmt.Sprintf("%5.2fs  %s → %s", e.Seconds(), e.Item.Prompt, e.Item.Answer), width)
		switch {
		case e.Shown:
			line = slowStyle.Render(line + " (revealed)")
		case e.Slow():
			line = slowStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *Model) renderReplays(avail session.Availability) string {
	option := func(b key.Binding, on bool) string {
		text := fmt.Sprintf("[%s] %s", b.Help().Key, b.Help().Desc)
		if !on {
			return disabledStyle.Render(text)
		}
		return text
	}
	return strings.Join([]string{
		option(m.keys.ReplayAll, avail.All),
		option(m.keys.ReplaySlow, avail.Slow),
		option(m.keys.ReplayShown, avail.Shown),
	}, "  ")
}

func (m *Model) renderFooter(snap session.Snapshot) string {
	var segments []string
	if snap.Mode != session.Stopped && snap.Total > 0 {
		segments = append(segments, fmt.Sprintf("Progress %d%%", snap.Index*100/snap.Total))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.2fs · %.1f%% revealed", m.lastRecall, m.lastReveal*100))
	}
	if m.allTime.Passes > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.2fs · %.1f%% revealed · %d passes",
			m.allTime.AvgRecall, m.allTime.RevealRate*100, m.allTime.Passes))
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
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
