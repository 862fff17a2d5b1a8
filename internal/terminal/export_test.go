package terminal

import "testing"

// NewTestTTY exposes an in-memory TTY to external tests. The returned
// function reports everything written to the terminal.
func NewTestTTY(t *testing.T) (*TTY, func() string) {
	t.Helper()
	tty, f := newTestTTY(t)
	return tty, f.written
}
