package device

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mnemo/internal/countdown/countdowntest"
	"github.com/verte-zerg/mnemo/internal/deck"
	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/session"
)

type recorder struct {
	sigs []Signal
	err  error
}

func (r *recorder) Notify(_ context.Context, sig Signal) error {
	r.sigs = append(r.sigs, sig)
	return r.err
}

func TestListenerTracksActivity(t *testing.T) {
	rec := &recorder{}
	l := Listener(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), rec)

	l(session.Event{Kind: session.EventConfigured, Mode: session.Stopped})
	l(session.Event{Kind: session.EventStarted, Mode: session.Running})
	l(session.Event{Kind: session.EventItem, Mode: session.Running})
	l(session.Event{Kind: session.EventTimeout, Mode: session.Running})
	l(session.Event{Kind: session.EventPaused, Mode: session.Paused})
	l(session.Event{Kind: session.EventResumed, Mode: session.Running})
	l(session.Event{Kind: session.EventAnswerShown, Mode: session.Running})
	l(session.Event{Kind: session.EventStopped, Mode: session.Stopped})

	assert.Equal(t, []Signal{
		SignalActive,
		SignalAlert,
		SignalIdle,
		SignalActive,
		SignalAlert,
		SignalIdle,
	}, rec.sigs)
}

func TestListenerLogsHookFailures(t *testing.T) {
	var logs bytes.Buffer
	failing := &recorder{err: errors.New("boom")}
	ok := &recorder{}
	l := Listener(slog.New(slog.NewTextHandler(&logs, nil)), failing, ok)

	l(session.Event{Kind: session.EventStarted, Mode: session.Running})
	assert.Equal(t, []Signal{SignalActive}, ok.sigs)
	assert.Contains(t, logs.String(), "device hook failed")
	assert.Contains(t, logs.String(), "boom")
}

func TestCommandHookRunsConfiguredCommands(t *testing.T) {
	var calls []string
	h := &CommandHook{
		OnActive: "caffeinate -d -i",
		OnIdle:   "",
		Run: func(_ context.Context, name string, args ...string) error {
			calls = append(calls, name+" "+strings.Join(args, " "))
			return nil
		},
	}
	require.NoError(t, h.Notify(context.Background(), SignalActive))
	require.NoError(t, h.Notify(context.Background(), SignalIdle))
	require.NoError(t, h.Notify(context.Background(), SignalAlert))
	assert.Equal(t, []string{"caffeinate -d -i"}, calls)
}

func TestCommandHookWrapsErrors(t *testing.T) {
	h := &CommandHook{
		OnIdle: "notify",
		Run: func(context.Context, string, ...string) error {
			return errors.New("not found")
		},
	}
	err := h.Notify(context.Background(), SignalIdle)
	assert.EqualError(t, err, "failed to run idle hook: not found")
}

func TestBellRingsOnAlertOnly(t *testing.T) {
	var buf bytes.Buffer
	b := NewBell(&buf)
	require.NoError(t, b.Notify(context.Background(), SignalActive))
	require.NoError(t, b.Notify(context.Background(), SignalAlert))
	require.NoError(t, b.Notify(context.Background(), SignalIdle))
	assert.Equal(t, "\a", buf.String())
}

func TestPauseDuringTimeoutLeavesHooksIdle(t *testing.T) {
	clock := countdowntest.NewClock(time.Unix(0, 0))
	sched := countdowntest.NewScheduler(clock)
	lib := deck.NewLibrary(deck.Deck{Name: "pegs", Items: []model.Item{
		{Index: 0, Prompt: "0", Answer: "hose"},
		{Index: 1, Prompt: "1", Answer: "tie"},
		{Index: 2, Prompt: "2", Answer: "noah"},
	}})
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s := session.New(lib, nil, session.Options{Clock: clock, Scheduler: sched, Logger: logger})
	require.NoError(t, s.Configure(session.Settings{Category: "pegs", From: 0, To: 2, Budget: time.Second}))

	s.Subscribe(func(ev session.Event) {
		if ev.Kind == session.EventTimeout {
			assert.NoError(t, s.Pause())
		}
	})
	rec := &recorder{}
	s.Subscribe(Listener(logger, rec))

	require.NoError(t, s.Start(context.Background()))
	sched.Advance(time.Second)

	require.Equal(t, session.Paused, s.Mode())
	var last Signal
	for _, sig := range rec.sigs {
		if sig != SignalAlert {
			last = sig
		}
	}
	assert.Equal(t, SignalIdle, last)
}
