// Package script provides a scripted terminal backend. It feeds a fixed
// sequence of input units and answers size, mouse, terminfo, environment and
// binding queries from programmed values, recording everything written to
// the terminal. It is used by tests and to replay recorded sessions.
package script

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dshills/terminput/internal/terminal"
)

// ErrNoMouseState is returned by MouseState when no state is queued.
var ErrNoMouseState = errors.New("no mouse state scripted")

type step struct {
	unit int
	err  error
}

// Backend is a scripted terminal.Backend. The zero value is not usable; use
// New or NewUnsupported.
type Backend struct {
	steps   []step
	pending []int

	width, height int
	sizes         [][2]int
	sizeErr       error
	mice          []terminal.MouseState

	keys        *terminal.Keymap
	unsupported bool
	terminfo    map[string]string
	env         map[string]string
	writeErrs   map[string]error

	writes      []string
	rawMode     bool
	keypad      bool
	mouseMask   uint32
	escDelay    time.Duration
	escDelaySet bool
}

// New returns a backend with binding support, an 80x24 window and nothing
// scripted.
func New() *Backend {
	return &Backend{
		width:     80,
		height:    24,
		keys:      terminal.NewKeymap(),
		terminfo:  make(map[string]string),
		env:       make(map[string]string),
		writeErrs: make(map[string]error),
	}
}

// NewUnsupported returns a backend whose KeyCode and DefineKey report
// terminal.ErrUnsupported.
func NewUnsupported() *Backend {
	b := New()
	b.unsupported = true
	return b
}

// Push appends input units.
func (b *Backend) Push(units ...int) *Backend {
	for _, u := range units {
		b.steps = append(b.steps, step{unit: u})
	}
	return b
}

// PushString appends the bytes of s as input units.
func (b *Backend) PushString(s string) *Backend {
	for i := 0; i < len(s); i++ {
		b.steps = append(b.steps, step{unit: int(s[i])})
	}
	return b
}

// PushError appends a read failure.
func (b *Backend) PushError(err error) *Backend {
	b.steps = append(b.steps, step{err: err})
	return b
}

// PushMouse queues an answer for MouseState.
func (b *Backend) PushMouse(ms terminal.MouseState) *Backend {
	b.mice = append(b.mice, ms)
	return b
}

// SetSize sets the window size reported by Size.
func (b *Backend) SetSize(width, height int) *Backend {
	b.width, b.height = width, height
	return b
}

// PushSize queues a window size. Queued sizes are reported in order; the
// last one sticks.
func (b *Backend) PushSize(width, height int) *Backend {
	b.sizes = append(b.sizes, [2]int{width, height})
	return b
}

// SetSizeError makes Size fail with err.
func (b *Backend) SetSizeError(err error) *Backend {
	b.sizeErr = err
	return b
}

// SetTerminfo sets a string capability.
func (b *Backend) SetTerminfo(name, value string) *Backend {
	b.terminfo[name] = value
	return b
}

// SetEnv sets an environment variable.
func (b *Backend) SetEnv(name, value string) *Backend {
	b.env[name] = value
	return b
}

// Bind binds seq to code in the backend's keymap, as a terminal database
// would before any client runs.
func (b *Backend) Bind(seq string, code int) *Backend {
	_ = b.keys.Define(seq, code)
	return b
}

// FailWrite makes WriteRaw fail with err when asked to write seq.
func (b *Backend) FailWrite(seq string, err error) *Backend {
	b.writeErrs[seq] = err
	return b
}

// ReadUnit returns ungotten codes first, in the order they were queued, then
// scripted units, then io.EOF.
func (b *Backend) ReadUnit() (int, error) {
	if len(b.pending) > 0 {
		code := b.pending[0]
		b.pending = b.pending[1:]
		return code, nil
	}
	if len(b.steps) == 0 {
		return 0, io.EOF
	}
	s := b.steps[0]
	b.steps = b.steps[1:]
	if s.err != nil {
		return 0, s.err
	}
	return s.unit, nil
}

// Remaining reports how many scripted units have not been read.
func (b *Backend) Remaining() int {
	return len(b.steps) + len(b.pending)
}

func (b *Backend) Size() (int, int, error) {
	if b.sizeErr != nil {
		return 0, 0, b.sizeErr
	}
	if len(b.sizes) > 0 {
		b.width, b.height = b.sizes[0][0], b.sizes[0][1]
		b.sizes = b.sizes[1:]
	}
	return b.width, b.height, nil
}

func (b *Backend) MouseState() (terminal.MouseState, error) {
	if len(b.mice) == 0 {
		return terminal.MouseState{}, ErrNoMouseState
	}
	ms := b.mice[0]
	b.mice = b.mice[1:]
	return ms, nil
}

func (b *Backend) SetRawMode() error {
	b.rawMode = true
	return nil
}

func (b *Backend) SetKeypad(on bool) error {
	b.keypad = on
	return nil
}

func (b *Backend) EnableMouse(mask uint32) error {
	b.mouseMask = mask
	return nil
}

func (b *Backend) TerminfoString(name string) (string, bool) {
	s, ok := b.terminfo[name]
	return s, ok && s != ""
}

func (b *Backend) KeyCode(seq string) (int, error) {
	if b.unsupported {
		return 0, terminal.ErrUnsupported
	}
	return b.keys.Lookup(seq)
}

func (b *Backend) DefineKey(seq string, code int) error {
	if b.unsupported {
		return terminal.ErrUnsupported
	}
	return b.keys.Define(seq, code)
}

func (b *Backend) WriteRaw(p []byte) error {
	if err := b.writeErrs[string(p)]; err != nil {
		return err
	}
	b.writes = append(b.writes, string(p))
	return nil
}

func (b *Backend) LookupEnv(name string) (string, bool) {
	v, ok := b.env[name]
	return v, ok
}

func (b *Backend) SetEscapeDelay(d time.Duration) {
	b.escDelay = d
	b.escDelaySet = true
}

// Unget queues code behind any codes already ungotten.
func (b *Backend) Unget(code int) error {
	b.pending = append(b.pending, code)
	return nil
}

// Writes returns every successful WriteRaw payload in order.
func (b *Backend) Writes() []string {
	return append([]string(nil), b.writes...)
}

// Written returns all writes concatenated.
func (b *Backend) Written() string {
	return strings.Join(b.writes, "")
}

// RawMode reports whether SetRawMode was called.
func (b *Backend) RawMode() bool { return b.rawMode }

// Keypad reports the last SetKeypad value.
func (b *Backend) Keypad() bool { return b.keypad }

// MouseMask returns the last EnableMouse mask.
func (b *Backend) MouseMask() uint32 { return b.mouseMask }

// EscapeDelay returns the last SetEscapeDelay value and whether it was set.
func (b *Backend) EscapeDelay() (time.Duration, bool) {
	return b.escDelay, b.escDelaySet
}

var _ terminal.Backend = (*Backend)(nil)
