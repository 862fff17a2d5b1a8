package terminal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/xo/terminfo"

	"github.com/dshills/terminput/internal/input/key"
)

// DefaultEscapeDelay is the escape delay used when ESCDELAY is not set.
const DefaultEscapeDelay = time.Second

// codeMouseSGR is bound to the SGR mouse report prefix. It never leaves the
// TTY: a full report is parsed and delivered as key.KeyMouse.
const codeMouseSGR = 0x7fff0000

const (
	mouseOn  = "\x1b[?1000h\x1b[?1002h\x1b[?1006h"
	mouseOff = "\x1b[?1006l\x1b[?1002l\x1b[?1000l"
)

// TTY implements Backend on a tcell tty with terminfo-driven keypad
// emulation and SGR mouse reporting.
//
// ReadUnit, Unget and the binding methods must be called from a single
// goroutine. Interrupt, Close and the methods that write to the terminal may
// be called from any goroutine. Resize notifications arrive on tcell's
// callback and are queued.
type TTY struct {
	tty    tcell.Tty
	logger zerolog.Logger
	env    map[string]string
	term   string

	caps     map[string]string
	keys     *Keymap
	escDelay time.Duration

	// mu guards the terminal modes and serializes writes against Close.
	mu      sync.Mutex
	started bool
	keypad  bool
	mouseOn bool

	mouse MouseState

	pending   []int
	lookahead []byte
	readErr   error

	bytes  chan byte
	errc   chan error
	resize chan struct{}
	done   chan struct{}

	interrupt     chan struct{}
	interruptOnce sync.Once
	closeOnce     sync.Once
	closeErr      error
}

// Option configures a TTY.
type Option func(*TTY)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(t *TTY) {
		t.logger = l
	}
}

// WithEnviron replaces the process environment as seen by the TTY.
func WithEnviron(env []string) Option {
	return func(t *TTY) {
		t.env = parseEnviron(env)
	}
}

// WithTerm overrides the terminal type used for the terminfo lookup.
func WithTerm(name string) Option {
	return func(t *TTY) {
		t.term = name
	}
}

// Open opens the controlling terminal.
func Open(opts ...Option) (*TTY, error) {
	tty, err := tcell.NewDevTty()
	if err != nil {
		return nil, fmt.Errorf("opening tty: %w", err)
	}
	return New(tty, opts...), nil
}

// New wraps an existing tcell tty. The tty is not started until SetRawMode
// or the first ReadUnit.
func New(tty tcell.Tty, opts ...Option) *TTY {
	t := &TTY{
		tty:      tty,
		logger:   zerolog.Nop(),
		env:      parseEnviron(os.Environ()),
		caps:     make(map[string]string),
		keys:     NewKeymap(),
		escDelay: DefaultEscapeDelay,
		bytes:    make(chan byte, 256),
		errc:     make(chan error, 1),
		resize:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		interrupt: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.term == "" {
		t.term = t.env["TERM"]
	}

	if ms, ok := t.env["ESCDELAY"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(ms)); err == nil && n >= 0 {
			t.escDelay = time.Duration(n) * time.Millisecond
		}
	}

	t.loadTerminfo()
	t.keys.Define("\x1b[<", codeMouseSGR) //nolint:errcheck // constant, non-empty sequence
	return t
}

// loadTerminfo reads the terminfo entry for t.term and binds its keys.
func (t *TTY) loadTerminfo() {
	if t.term == "" {
		t.logger.Debug().Msg("TERM not set, keypad has no terminfo keys")
		return
	}
	ti, err := terminfo.Load(t.term)
	if err != nil {
		t.logger.Debug().Err(err).Str("term", t.term).Msg("terminfo load failed")
		return
	}

	for name, seq := range ti.StringCapsShort() {
		t.caps[name] = string(seq)
	}
	ext := ti.ExtStringCapsShort()
	extended := make([]string, 0, len(ext))
	for name, seq := range ext {
		t.caps[name] = string(seq)
		extended = append(extended, name)
	}

	n := t.keys.LoadKeys(t.caps, extended)
	t.logger.Debug().
		Str("term", t.term).
		Int("caps", len(t.caps)).
		Int("keys", n).
		Msg("terminfo loaded")
}

// SetRawMode starts the tty, which puts it in raw mode, and begins reading.
func (t *TTY) SetRawMode() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return nil
	}
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	if err := t.tty.Start(); err != nil {
		return fmt.Errorf("starting tty: %w", err)
	}
	t.started = true
	t.tty.NotifyResize(func() {
		select {
		case t.resize <- struct{}{}:
		default:
		}
	})
	go t.readLoop()
	return nil
}

// readLoop copies bytes from the tty into t.bytes until the tty fails or the
// TTY is closed.
func (t *TTY) readLoop() {
	buf := make([]byte, 128)
	for {
		n, err := t.tty.Read(buf)
		for _, b := range buf[:n] {
			select {
			case t.bytes <- b:
			case <-t.done:
				return
			}
		}
		if err != nil {
			select {
			case t.errc <- err:
			case <-t.done:
			}
			return
		}
	}
}

// SetKeypad turns sequence folding on or off, sending smkx/rmkx.
func (t *TTY) SetKeypad(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setKeypadLocked(on)
}

func (t *TTY) setKeypadLocked(on bool) error {
	capName := "rmkx"
	if on {
		capName = "smkx"
	}
	t.keypad = on
	if seq := t.caps[capName]; seq != "" {
		return t.writeLocked([]byte(seq))
	}
	return nil
}

func (t *TTY) keypadOn() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.keypad
}

// EnableMouse turns on SGR mouse reporting. A zero mask turns it off.
func (t *TTY) EnableMouse(mask uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enableMouseLocked(mask)
}

func (t *TTY) enableMouseLocked(mask uint32) error {
	if mask == 0 {
		if !t.mouseOn {
			return nil
		}
		t.mouseOn = false
		return t.writeLocked([]byte(mouseOff))
	}
	t.mouseOn = true
	return t.writeLocked([]byte(mouseOn))
}

// Size returns the window size in cells.
func (t *TTY) Size() (int, int, error) {
	ws, err := t.tty.WindowSize()
	if err != nil {
		return 0, 0, fmt.Errorf("querying window size: %w", err)
	}
	return ws.Width, ws.Height, nil
}

// MouseState returns the last parsed mouse report.
func (t *TTY) MouseState() (MouseState, error) {
	return t.mouse, nil
}

// TerminfoString returns a string capability by short name.
func (t *TTY) TerminfoString(name string) (string, bool) {
	s, ok := t.caps[name]
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// KeyCode returns the code bound to seq.
func (t *TTY) KeyCode(seq string) (int, error) {
	return t.keys.Lookup(seq)
}

// DefineKey binds seq to code.
func (t *TTY) DefineKey(seq string, code int) error {
	return t.keys.Define(seq, code)
}

// WriteRaw writes p to the terminal.
func (t *TTY) WriteRaw(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writeLocked(p)
}

func (t *TTY) writeLocked(p []byte) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	if _, err := t.tty.Write(p); err != nil {
		return fmt.Errorf("writing to tty: %w", err)
	}
	return nil
}

// LookupEnv reads the environment captured at construction.
func (t *TTY) LookupEnv(name string) (string, bool) {
	v, ok := t.env[name]
	return v, ok
}

// SetEscapeDelay sets the sequence completion timeout.
func (t *TTY) SetEscapeDelay(d time.Duration) {
	t.escDelay = d
}

// Unget queues a key code for the next ReadUnit.
func (t *TTY) Unget(code int) error {
	t.pending = append(t.pending, code)
	return nil
}

// ReadUnit returns the next byte or key code.
func (t *TTY) ReadUnit() (int, error) {
	if len(t.pending) > 0 {
		code := t.pending[0]
		t.pending = t.pending[1:]
		return code, nil
	}
	if err := t.SetRawMode(); err != nil {
		return 0, err
	}

	b, resized, err := t.waitByte()
	if err != nil {
		return 0, err
	}
	if resized {
		return key.KeyResize, nil
	}
	if !t.keypadOn() {
		return int(b), nil
	}

	seq := []byte{b}
	best, bestLen := 0, 0
	for {
		code, exact, more := t.keys.Match(string(seq))
		if exact {
			best, bestLen = code, len(seq)
		}
		if !more {
			break
		}
		nb, ok := t.nextByte(t.escDelay)
		if !ok {
			break
		}
		seq = append(seq, nb)
	}

	if bestLen == 0 {
		t.unread(seq[1:])
		return int(seq[0]), nil
	}
	t.unread(seq[bestLen:])
	if best == codeMouseSGR {
		return t.readMouseReport()
	}
	return best, nil
}

// waitByte blocks for the first byte of a unit, or a resize.
func (t *TTY) waitByte() (byte, bool, error) {
	if len(t.lookahead) > 0 {
		b := t.lookahead[0]
		t.lookahead = t.lookahead[1:]
		return b, false, nil
	}
	select {
	case <-t.done:
		return 0, false, ErrClosed
	case <-t.interrupt:
		return 0, false, ErrInterrupted
	default:
	}
	if t.readErr != nil {
		return 0, false, t.readErr
	}
	select {
	case b := <-t.bytes:
		return b, false, nil
	case <-t.resize:
		return 0, true, nil
	case err := <-t.errc:
		t.readErr = fmt.Errorf("reading tty: %w", err)
		return 0, false, t.readErr
	case <-t.interrupt:
		return 0, false, ErrInterrupted
	case <-t.done:
		return 0, false, ErrClosed
	}
}

// nextByte waits up to d for a continuation byte. A read error is recorded
// and reported by the next waitByte.
func (t *TTY) nextByte(d time.Duration) (byte, bool) {
	if len(t.lookahead) > 0 {
		b := t.lookahead[0]
		t.lookahead = t.lookahead[1:]
		return b, true
	}
	if t.readErr != nil {
		return 0, false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case b := <-t.bytes:
		return b, true
	case err := <-t.errc:
		t.readErr = fmt.Errorf("reading tty: %w", err)
		return 0, false
	case <-timer.C:
		return 0, false
	case <-t.interrupt:
		return 0, false
	case <-t.done:
		return 0, false
	}
}

// unread puts bytes back in front of the lookahead.
func (t *TTY) unread(p []byte) {
	if len(p) == 0 {
		return
	}
	t.lookahead = append(append([]byte(nil), p...), t.lookahead...)
}

// Interrupt makes a blocked or later ReadUnit return ErrInterrupted. The
// terminal stays writable until Close.
func (t *TTY) Interrupt() {
	t.interruptOnce.Do(func() { close(t.interrupt) })
}

// Close restores the terminal. It is safe to call more than once.
func (t *TTY) Close() error {
	t.closeOnce.Do(func() {
		var errs []error
		t.mu.Lock()
		if t.mouseOn {
			errs = append(errs, t.enableMouseLocked(0))
		}
		if t.keypad {
			errs = append(errs, t.setKeypadLocked(false))
		}
		close(t.done)
		started := t.started
		t.mu.Unlock()
		if started {
			errs = append(errs, t.tty.Drain(), t.tty.Stop())
		}
		errs = append(errs, t.tty.Close())
		t.closeErr = errors.Join(errs...)
	})
	return t.closeErr
}

// parseEnviron converts KEY=VALUE pairs into a map.
func parseEnviron(env []string) map[string]string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}
