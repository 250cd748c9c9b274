// Package device reacts to drill activity outside the terminal UI: it runs
// user commands when a drill becomes active or idle and rings the terminal
// bell as a vibration stand-in.
package device

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/mnemo/internal/session"
)

// Signal is a device-level notification derived from session events.
type Signal int

// Signals.
const (
	SignalActive Signal = iota
	SignalIdle
	SignalAlert
)

func (s Signal) String() string {
	switch s {
	case SignalActive:
		return "active"
	case SignalIdle:
		return "idle"
	case SignalAlert:
		return "alert"
	default:
		return "unknown"
	}
}

// Hook handles device signals.
type Hook interface {
	Notify(ctx context.Context, sig Signal) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, sig Signal) error

// Notify implements Hook.
func (f HookFunc) Notify(ctx context.Context, sig Signal) error {
	return f(ctx, sig)
}

// hookTimeout bounds a single hook invocation.
const hookTimeout = 5 * time.Second

// Listener translates session events into signals for hooks. Active fires when
// the session enters Running and idle when it leaves it; alert fires on
// timeouts and reveals. Hook failures are logged and otherwise ignored.
func Listener(logger *slog.Logger, hooks ...Hook) session.Listener {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		mu     sync.Mutex
		active bool
	)
	notify := func(sig Signal) {
		for _, h := range hooks {
			ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
			if err := h.Notify(ctx, sig); err != nil {
				logger.Warn("device hook failed", "signal", sig.String(), "error", err)
			}
			cancel()
		}
	}
	return func(ev session.Event) {
		var sigs []Signal
		mu.Lock()
		now := ev.Mode == session.Running
		if now != active {
			active = now
			if now {
				sigs = append(sigs, SignalActive)
			} else {
				sigs = append(sigs, SignalIdle)
			}
		}
		mu.Unlock()
		if ev.Kind == session.EventTimeout || ev.Kind == session.EventAnswerShown {
			sigs = append(sigs, SignalAlert)
		}
		for _, sig := range sigs {
			notify(sig)
		}
	}
}
