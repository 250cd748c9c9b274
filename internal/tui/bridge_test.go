package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mnemo/internal/session"
)

func TestBridgeQueuesUntilAttached(t *testing.T) {
	b := NewBridge()
	b.Listen(session.Event{Kind: session.EventConfigured})
	b.Listen(session.Event{Kind: session.EventStarted})

	events := b.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, session.EventStarted, events[1].Kind)
	assert.Empty(t, b.Drain())
}

func TestBridgeWakesOncePerDrain(t *testing.T) {
	b := NewBridge()
	sent := make(chan tea.Msg, 4)
	b.Attach(func(msg tea.Msg) { sent <- msg })

	b.Listen(session.Event{Kind: session.EventItem})
	b.Listen(session.Event{Kind: session.EventTimeout})

	select {
	case msg := <-sent:
		assert.IsType(t, eventsReadyMsg{}, msg)
	case <-time.After(time.Second):
		t.Fatal("expected a wake-up message")
	}
	select {
	case <-sent:
		t.Fatal("expected a single wake-up before drain")
	case <-time.After(20 * time.Millisecond):
	}

	assert.Len(t, b.Drain(), 2)
	b.Listen(session.Event{Kind: session.EventItem})
	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("expected a wake-up after drain")
	}
}
