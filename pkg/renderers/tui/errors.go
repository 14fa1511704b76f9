package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoFields is returned by Edit when the form has nothing to prompt for.
	ErrNoFields = errors.New("tui: form has no editable fields")
)
