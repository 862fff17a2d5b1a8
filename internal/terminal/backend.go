// Package terminal provides the terminal backend used by the input decoder.
//
// A Backend supplies raw input units (bytes below 256, key codes at or above
// 256), answers size and mouse queries, looks up terminfo strings and keeps
// the table of escape sequences that it folds into single key codes. TTY is
// the production implementation; the script subpackage provides a scripted
// one for tests and replays.
package terminal

import (
	"errors"
	"time"
)

// Binding errors returned by KeyCode and DefineKey.
var (
	// ErrNotDefined means no binding exists for the sequence.
	ErrNotDefined = errors.New("key sequence not defined")

	// ErrConflict means the sequence is a prefix of an existing binding, or
	// an existing binding is a prefix of it, or it is bound to another code.
	ErrConflict = errors.New("key sequence conflicts with an existing binding")

	// ErrUnsupported means the backend cannot bind escape sequences.
	ErrUnsupported = errors.New("key binding not supported")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("terminal closed")

	// ErrInterrupted is returned by ReadUnit after Interrupt. The backend
	// stays open so the caller can restore the terminal before closing it.
	ErrInterrupted = errors.New("terminal read interrupted")
)

// Mouse button state bits, laid out as in curses mouse version 2.
const (
	Button1Released uint32 = 1 << 0
	Button1Pressed  uint32 = 1 << 1
	Button2Released uint32 = 1 << 5
	Button2Pressed  uint32 = 1 << 6
	Button3Released uint32 = 1 << 10
	Button3Pressed  uint32 = 1 << 11
	Button4Released uint32 = 1 << 15
	Button4Pressed  uint32 = 1 << 16
	Button5Released uint32 = 1 << 20
	Button5Pressed  uint32 = 1 << 21

	ButtonCtrl          uint32 = 1 << 25
	ButtonShift         uint32 = 1 << 26
	ButtonAlt           uint32 = 1 << 27
	ReportMousePosition uint32 = 1 << 28

	// ButtonModifiers is the set of modifier bits carried in a button mask.
	ButtonModifiers = ButtonCtrl | ButtonShift | ButtonAlt

	// AllMouseEvents requests every button event class.
	AllMouseEvents uint32 = ReportMousePosition - 1
)

// MouseState is the answer to a mouse query made after a KeyMouse unit.
type MouseState struct {
	DeviceID uint16
	X        int
	Y        int
	Buttons  uint32
}

// Backend is the terminal control surface consumed by the input decoder.
type Backend interface {
	// ReadUnit blocks until one input unit is available. Values below 256
	// are raw bytes; larger values are key codes.
	ReadUnit() (int, error)

	// Size returns the current terminal dimensions in cells.
	Size() (width, height int, err error)

	// MouseState returns the state of the last reported mouse event.
	MouseState() (MouseState, error)

	// SetRawMode disables line buffering, echo and signal keys.
	SetRawMode() error

	// SetKeypad turns escape-sequence folding on or off.
	SetKeypad(on bool) error

	// EnableMouse requests the given mouse event classes.
	EnableMouse(mask uint32) error

	// TerminfoString looks up a string capability by its short name,
	// including extended (user-defined) capabilities.
	TerminfoString(name string) (string, bool)

	// KeyCode returns the code bound to seq, or ErrNotDefined, ErrConflict
	// or ErrUnsupported.
	KeyCode(seq string) (int, error)

	// DefineKey binds seq to code.
	DefineKey(seq string, code int) error

	// WriteRaw sends bytes to the terminal unchanged.
	WriteRaw(p []byte) error

	// LookupEnv reads the environment the terminal was opened with.
	LookupEnv(name string) (string, bool)

	// SetEscapeDelay sets how long to wait for the rest of a sequence after
	// an escape byte before delivering the bytes as they are.
	SetEscapeDelay(d time.Duration)

	// Unget queues a key code for ReadUnit. Queued codes come back in the
	// order they were queued, ahead of any further input.
	Unget(code int) error
}
