package stream

import (
	"errors"
	"fmt"

	"github.com/dshills/terminput/internal/input/key"
	"github.com/dshills/terminput/internal/terminal"
)

// Private key code ranges bound during negotiation.
const (
	codeGridBase = 2300
	codeGridMax  = 2399
	codeAltBase  = 3000
	codeAltMin   = 3001
	codeAltMax   = 3255
)

// extendedKeys lists the extended terminfo capabilities for modified
// navigation keys. The numeric suffix n (3..8) carries modifiers n-1 in wire
// layout.
var extendedKeys = []struct {
	prefix string
	code   int
}{
	{"kDC", key.KeyDC},
	{"kLFT", key.KeyLeft},
	{"kRIT", key.KeyRight},
	{"kUP", key.KeyUp},
	{"kDN", key.KeyDown},
	{"kHOM", key.KeyHome},
	{"kEND", key.KeyEnd},
	{"kPRV", key.KeyPPage},
	{"kNXT", key.KeyNPage},
}

// gridKeys is indexed by code % 10 within the XTerm grid.
var gridKeys = [...]int{
	key.KeyUp,
	key.KeyDown,
	key.KeyRight,
	key.KeyLeft,
	key.KeyHome,
	key.KeyEnd,
	key.KeyPPage,
	key.KeyNPage,
	key.KeyDC,
}

// negotiate prepares the terminal and fills s.guards and s.bound. No step can
// fail the stream; failures are logged and the feature stays off.
func (s *Stream) negotiate() {
	b := s.backend
	log := s.logger

	if err := b.SetRawMode(); err != nil {
		log.Debug().Err(err).Msg("raw mode not set")
	}
	if err := b.SetKeypad(true); err != nil {
		log.Debug().Err(err).Msg("keypad not enabled")
	}
	if err := b.EnableMouse(terminal.AllMouseEvents); err != nil {
		log.Debug().Err(err).Msg("mouse reporting not enabled")
	}

	for _, spec := range protocolSpecs {
		if !s.opts.allows(spec.protocol) {
			log.Debug().Stringer("protocol", spec.protocol).Msg("protocol disabled by option")
			continue
		}
		if g := s.startProtocol(spec); g != nil {
			s.guards = append(s.guards, g)
		}
	}

	if _, ok := b.LookupEnv("ESCDELAY"); !ok {
		b.SetEscapeDelay(s.opts.escapeDelay)
	}

	s.bound = s.learnExtendedKeys()
	s.bindRxvtFamily()
	s.bindXTermFamily()
	s.bindAltPrefix()

	if err := b.Unget(key.KeyResize); err != nil {
		log.Debug().Err(err).Msg("initial resize not queued")
	}
}

func (o options) allows(p Protocol) bool {
	switch p {
	case BracketedPaste:
		return o.bracketedPaste
	case ModifyOtherKeys:
		return o.modifyOtherKeys
	case KittyFullMode:
		return o.kitty
	}
	return false
}

// startProtocol reserves the protocol's sequences and, if every reservation
// holds, sends the enable sequence.
func (s *Stream) startProtocol(spec protocolSpec) *Guard {
	for _, r := range spec.reservations {
		if !s.reserve(r.seq, r.code) {
			s.logger.Debug().
				Stringer("protocol", spec.protocol).
				Str("seq", fmt.Sprintf("%q", r.seq)).
				Msg("sequence not reserved, protocol stays off")
			return nil
		}
	}
	if err := s.backend.WriteRaw([]byte(spec.enable)); err != nil {
		s.logger.Debug().Err(err).Stringer("protocol", spec.protocol).Msg("enable failed")
		return nil
	}
	s.logger.Debug().Stringer("protocol", spec.protocol).Msg("protocol enabled")
	return &Guard{protocol: spec.protocol, disable: spec.disable, backend: s.backend}
}

// reserve makes seq produce code. It succeeds when seq was unbound and could
// be bound, or was already bound to code.
func (s *Stream) reserve(seq string, code int) bool {
	got, err := s.backend.KeyCode(seq)
	switch {
	case err == nil:
		return got == code
	case unbound(err):
		return s.backend.DefineKey(seq, code) == nil
	default:
		return false
	}
}

// defineIfNecessary binds seq to code unless seq already means something.
func (s *Stream) defineIfNecessary(seq string, code int) {
	if _, err := s.backend.KeyCode(seq); unbound(err) {
		_ = s.backend.DefineKey(seq, code)
	}
}

// boundTo reports whether seq currently produces code.
func (s *Stream) boundTo(seq string, code int) bool {
	got, err := s.backend.KeyCode(seq)
	return err == nil && got == code
}

// unbound treats a backend without binding support like an unbound sequence.
func unbound(err error) bool {
	return errors.Is(err, terminal.ErrNotDefined) || errors.Is(err, terminal.ErrUnsupported)
}

// learnExtendedKeys maps the codes of the extended modified-key
// capabilities to their events.
func (s *Stream) learnExtendedKeys() map[int]key.Event {
	bound := make(map[int]key.Event)
	for _, ek := range extendedKeys {
		for n := 3; n <= 8; n++ {
			name := fmt.Sprintf("%s%d", ek.prefix, n)
			seq, ok := s.backend.TerminfoString(name)
			if !ok {
				continue
			}
			code, err := s.backend.KeyCode(seq)
			if err != nil {
				continue
			}
			bound[code] = key.Press(key.ModifierFromWire(uint32(n-1)), key.Special(ek.code))
		}
	}
	if len(bound) > 0 {
		s.logger.Debug().Int("keys", len(bound)).Msg("extended terminfo keys learned")
	}
	return bound
}

// bindRxvtFamily adds Alt and Alt+Shift arrows for terminals that encode
// arrows as ESC [ A..D and shifted arrows as ESC [ a..d.
func (s *Stream) bindRxvtFamily() {
	if !s.boundTo("\x1b[A", key.KeyUp) ||
		!s.boundTo("\x1b[B", key.KeyDown) ||
		!s.boundTo("\x1b[C", key.KeyRight) ||
		!s.boundTo("\x1b[D", key.KeyLeft) ||
		!s.boundTo("\x1b[c", key.KeySRight) ||
		!s.boundTo("\x1b[d", key.KeySLeft) {
		return
	}
	s.logger.Debug().Msg("rxvt key family detected")

	for i, c := range "abcd" {
		s.defineIfNecessary("\x1bO"+string(c), codeGridBase+40+i)
		s.defineIfNecessary("\x1b\x1bO"+string(c), codeGridBase+60+i)
	}
	for i, c := range "ABCD" {
		s.defineIfNecessary("\x1b\x1b["+string(c), codeGridBase+20+i)
	}
	for i, c := range "abcd" {
		s.defineIfNecessary("\x1b\x1b["+string(c), codeGridBase+30+i)
	}

	if s.boundTo("\x1b[3~", key.KeyDC) {
		s.defineIfNecessary("\x1b[3^", codeGridBase+48)
		s.defineIfNecessary("\x1b\x1b[3^", codeGridBase+68)
	}
}

// bindXTermFamily adds the modifier grid for terminals that encode arrows as
// ESC O A..D and modified keys as ESC [ 1 ; m X.
func (s *Stream) bindXTermFamily() {
	if !s.boundTo("\x1bOA", key.KeyUp) ||
		!s.boundTo("\x1bOB", key.KeyDown) ||
		!s.boundTo("\x1bOC", key.KeyRight) ||
		!s.boundTo("\x1bOD", key.KeyLeft) ||
		!s.boundTo("\x1b[1;2C", key.KeySRight) ||
		!s.boundTo("\x1b[1;2D", key.KeySLeft) {
		return
	}
	s.logger.Debug().Msg("xterm key family detected")

	for mode := 2; mode <= 7; mode++ {
		for i, c := range "ABCDHF" {
			seq := fmt.Sprintf("\x1b[1;%d%c", 1+mode, c)
			s.defineIfNecessary(seq, codeGridBase+mode*10+i)
		}
	}

	if !s.boundTo("\x1b[3~", key.KeyDC) ||
		!s.boundTo("\x1b[5~", key.KeyPPage) ||
		!s.boundTo("\x1b[6~", key.KeyNPage) {
		return
	}
	tilde := []struct {
		indicator byte
		index     int
	}{{'3', 8}, {'5', 6}, {'6', 7}}
	for mode := 2; mode <= 7; mode++ {
		for _, t := range tilde {
			seq := fmt.Sprintf("\x1b[%c;%d~", t.indicator, 1+mode)
			s.defineIfNecessary(seq, codeGridBase+mode*10+t.index)
		}
	}
}

// bindAltPrefix binds ESC followed by a control code, digit or letter so
// that Alt is recognised on terminals without a modifier protocol.
func (s *Stream) bindAltPrefix() {
	ranges := [][2]int{{1, 26}, {48, 57}, {65, 90}, {97, 122}}
	for _, r := range ranges {
		for c := r[0]; c <= r[1]; c++ {
			s.defineIfNecessary(string([]byte{0x1b, byte(c)}), codeAltBase+c)
		}
	}
}
