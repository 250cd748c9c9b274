package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mnemo/internal/session"
)

// eventsReadyMsg signals that the bridge holds undelivered session events.
type eventsReadyMsg struct{}

// Bridge queues session events for the Bubble Tea loop. Listeners run on
// whichever goroutine drove the session, including the program loop itself,
// so the bridge never sends synchronously.
type Bridge struct {
	mu       sync.Mutex
	queue    []session.Event
	send     func(tea.Msg)
	notified bool
}

// NewBridge returns a bridge without a program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the function used to wake the program, usually (*tea.Program).Send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

// Listen implements session.Listener.
func (b *Bridge) Listen(ev session.Event) {
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	send := b.send
	wake := send != nil && !b.notified
	if wake {
		b.notified = true
	}
	b.mu.Unlock()
	if wake {
		go send(eventsReadyMsg{})
	}
}

// Drain returns and clears queued events in dispatch order.
func (b *Bridge) Drain() []session.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.queue
	b.queue = nil
	b.notified = false
	return events
}
