package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mnemo/internal/countdown/countdowntest"
	"github.com/verte-zerg/mnemo/internal/deck"
	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/session"
)

type fakeStore struct {
	mu     sync.Mutex
	passes []model.PassRecord
	list   []model.PassAggregate
}

func (f *fakeStore) InsertPass(_ context.Context, rec model.PassRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passes = append(f.passes, rec)
	return "pass-1", nil
}

func (f *fakeStore) ListPasses(context.Context, model.StatsConfig) ([]model.PassAggregate, error) {
	return f.list, nil
}

type fixture struct {
	m     *Model
	sess  *session.Session
	sched *countdowntest.Scheduler
	store *fakeStore
}

func newFixture(t *testing.T, learning bool) *fixture {
	t.Helper()
	clock := countdowntest.NewClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	sched := countdowntest.NewScheduler(clock)
	lib := deck.NewLibrary(deck.Deck{Name: "pegs", Items: []model.Item{
		{Index: 0, Prompt: "0", Answer: "hose"},
		{Index: 1, Prompt: "1", Answer: "tie"},
		{Index: 2, Prompt: "2", Answer: "noah"},
	}})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(lib, nil, session.Options{Clock: clock, Scheduler: sched, Logger: logger})
	require.NoError(t, sess.Configure(session.Settings{Category: "pegs", From: 0, To: 1, Budget: 5 * time.Second, Learning: learning}))
	st := &fakeStore{}
	m := NewModel(Options{Session: sess, Store: st, DeckLen: 3, Logger: logger})
	m.drainEvents()
	return &fixture{m: m, sess: sess, sched: sched, store: st}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func TestSpaceStartsAndRendersPrompt(t *testing.T) {
	f := newFixture(t, false)

	f.m.Update(spaceKey)
	assert.Equal(t, session.Running, f.sess.Mode())

	view := f.m.View()
	assert.Contains(t, view, "pegs · 0-1 · training")
	assert.Contains(t, view, session.Mask)
	assert.Contains(t, view, "1/2")
}

func TestShowAnswerRevealsAndDisablesPause(t *testing.T) {
	f := newFixture(t, false)
	f.m.Update(spaceKey)
	prompt := f.sess.Snapshot().Item

	f.m.Update(runeKey('s'))
	assert.Contains(t, f.m.View(), prompt.Answer)
	assert.False(t, f.m.keys.Pause.Enabled())
	assert.True(t, f.m.keys.Next.Enabled())

	f.m.Update(runeKey('p'))
	assert.Equal(t, session.Running, f.sess.Mode(), "pause is ignored while awaiting next")
	assert.Empty(t, f.m.errText)
}

func TestFinishedPassIsSaved(t *testing.T) {
	f := newFixture(t, false)
	f.m.handleKey(spaceKey)
	f.m.drainEvents()
	f.m.handleKey(spaceKey)
	f.m.drainEvents()
	f.m.handleKey(spaceKey)

	cmd := f.m.drainEvents()
	require.NotNil(t, cmd)
	msg := cmd()
	saved, ok := msg.(savedMsg)
	require.True(t, ok, "expected savedMsg, got %T", msg)
	assert.NoError(t, saved.err)

	require.Len(t, f.store.passes, 1)
	rec := f.store.passes[0]
	assert.Equal(t, "pegs", rec.Category)
	assert.Len(t, rec.Entries, 2)

	view := f.m.View()
	assert.Contains(t, view, "2 items")
	assert.Contains(t, view, "[a] replay all")
}

func TestTimeoutShowsStatus(t *testing.T) {
	f := newFixture(t, false)
	f.m.handleKey(spaceKey)
	f.m.drainEvents()

	f.sched.Advance(5 * time.Second)
	f.m.Update(eventsReadyMsg{})
	assert.Equal(t, "Time's up", f.m.status)
	assert.Equal(t, 1, f.sess.Snapshot().Index)
}

func TestLearningModeShowsAnswerImmediately(t *testing.T) {
	f := newFixture(t, true)
	f.m.Update(spaceKey)
	item := f.sess.Snapshot().Item

	view := f.m.View()
	assert.Contains(t, view, "learning")
	assert.Contains(t, view, item.Answer)
	assert.False(t, f.m.keys.ShowAnswer.Enabled())
}

func TestStopKeyRecordsAndSaves(t *testing.T) {
	f := newFixture(t, false)
	f.m.handleKey(spaceKey)
	f.m.drainEvents()

	f.m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, session.Stopped, f.sess.Mode())
	cmd := f.m.drainEvents()
	require.NotNil(t, cmd)
	cmd()
	require.Len(t, f.store.passes, 1)
	assert.Len(t, f.store.passes[0].Entries, 1)
}

func TestRangeKeysReconfigure(t *testing.T) {
	f := newFixture(t, false)

	f.m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, f.sess.Snapshot().Settings.To)

	f.m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, f.sess.Snapshot().Settings.To, "to is clamped to the deck")

	f.m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, f.sess.Snapshot().Settings.From)

	f.m.Update(spaceKey)
	f.m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, f.sess.Snapshot().Settings.From, "range is locked while running")
}

func TestReplayKeysFollowAvailability(t *testing.T) {
	f := newFixture(t, false)
	assert.False(t, f.m.keys.ReplayAll.Enabled())

	f.m.handleKey(spaceKey)
	f.m.handleKey(runeKey('s'))
	f.m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	f.m.drainEvents()

	assert.True(t, f.m.keys.ReplayAll.Enabled())
	assert.True(t, f.m.keys.ReplayShown.Enabled())

	f.m.handleKey(runeKey('r'))
	snap := f.sess.Snapshot()
	assert.True(t, snap.Primed)
	assert.Equal(t, model.ReplayShown, snap.Replay)
	assert.Equal(t, "Replay ready, press space to start", f.m.status)
	assert.NotContains(t, f.m.renderHeader(snap), "0-1")
}

func TestFooterShowsLastAndAllTime(t *testing.T) {
	f := newFixture(t, false)
	f.m.width, f.m.height = 100, 30
	f.m.Update(footerMsg{passes: []model.PassAggregate{
		{Items: 2, Shown: 1, UnshownSumMs: 1000, UnshownCount: 1},
		{Items: 2, UnshownSumMs: 3000, UnshownCount: 2},
	}})

	footer := f.m.renderFooter(f.sess.Snapshot())
	assert.Contains(t, footer, "Last 1.50s · 0.0% revealed")
	assert.Contains(t, footer, "All-time 1.33s · 25.0% revealed · 2 passes")
	assert.Contains(t, f.m.View(), "All-time")
}

func TestRenderCountdown(t *testing.T) {
	full := renderCountdown(0, 5*time.Second, 16)
	assert.Contains(t, full, "5.0s")
	assert.Equal(t, 10, strings.Count(full, "█"))

	low := renderCountdown(0.9, 5*time.Second, 16)
	assert.Contains(t, low, "0.5s")
	assert.Equal(t, 1, strings.Count(low, "█"))
	assert.Equal(t, 9, strings.Count(low, "░"))
}
