package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNilDocument is returned when no control document is supplied.
	ErrNilDocument = errors.New("tui: document is nil")
	// ErrTooManyAttempts stops a prompt that keeps receiving invalid input.
	ErrTooManyAttempts = errors.New("tui: too many invalid attempts")
)
