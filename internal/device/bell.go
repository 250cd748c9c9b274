package device

import (
	"context"
	"io"
)

// Bell writes the terminal bell on alerts.
type Bell struct {
	w io.Writer
}

// NewBell returns a Bell writing to w.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// Notify implements Hook.
func (b *Bell) Notify(_ context.Context, sig Signal) error {
	if sig != SignalAlert {
		return nil
	}
	_, err := io.WriteString(b.w, "\a")
	return err
}
