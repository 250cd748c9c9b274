package device

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner starts a command. It must not block until the command exits.
type Runner func(ctx context.Context, name string, args ...string) error

// CommandHook runs shell commands when the drill becomes active or idle.
type CommandHook struct {
	OnActive string
	OnIdle   string
	Run      Runner
}

// NewCommandHook returns a hook that starts commands in the background.
// Empty commands are skipped.
func NewCommandHook(onActive, onIdle string, logger *slog.Logger) *CommandHook {
	return &CommandHook{OnActive: onActive, OnIdle: onIdle, Run: backgroundRunner(logger)}
}

// Notify implements Hook.
func (h *CommandHook) Notify(ctx context.Context, sig Signal) error {
	var line string
	switch sig {
	case SignalActive:
		line = h.OnActive
	case SignalIdle:
		line = h.OnIdle
	default:
		return nil
	}
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	if err := h.Run(ctx, parts[0], parts[1:]...); err != nil {
		return fmt.Errorf("failed to run %s hook: %w", sig, err)
	}
	return nil
}

func backgroundRunner(logger *slog.Logger) Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return func(_ context.Context, name string, args ...string) error {
		cmd := exec.Command(name, args...)
		if err := cmd.Start(); err != nil {
			return err
		}
		go func() {
			if err := cmd.Wait(); err != nil {
				logger.Warn("hook command exited with error", "command", name, "error", err)
			}
		}()
		return nil
	}
}
