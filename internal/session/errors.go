package session

import "errors"

var (
	// ErrInvalidTransition is returned when an action is not valid in the
	// current state. The session is left unchanged.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrEmptyDataset is returned when a range or replay set has no items.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrNotConfigured is returned by Start before Configure was called.
	ErrNotConfigured = errors.New("session is not configured")
)
