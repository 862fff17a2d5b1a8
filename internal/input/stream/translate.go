package stream

import (
	"fmt"

	"github.com/dshills/terminput/internal/input/key"
	"github.com/dshills/terminput/internal/terminal"
)

// shiftedKeys maps curses shifted-key codes to the key they shift.
var shiftedKeys = map[int]key.KeyInput{
	key.KeySLeft:     key.Special(key.KeyLeft),
	key.KeySRight:    key.Special(key.KeyRight),
	key.KeySR:        key.Special(key.KeyUp),
	key.KeySF:        key.Special(key.KeyDown),
	key.KeySHome:     key.Special(key.KeyHome),
	key.KeySEnd:      key.Special(key.KeyEnd),
	key.KeySDC:       key.Special(key.KeyDC),
	key.KeyBTab:      key.Codepoint('\t'),
	key.KeySBeg:      key.Special(key.KeyBeg),
	key.KeySCancel:   key.Special(key.KeyCancel),
	key.KeySCommand:  key.Special(key.KeyCommand),
	key.KeySCopy:     key.Special(key.KeyCopy),
	key.KeySCreate:   key.Special(key.KeyCreate),
	key.KeySDL:       key.Special(key.KeyDL),
	key.KeySEOL:      key.Special(key.KeyEOL),
	key.KeySExit:     key.Special(key.KeyExit),
	key.KeySFind:     key.Special(key.KeyFind),
	key.KeySHelp:     key.Special(key.KeyHelp),
	key.KeySIC:       key.Special(key.KeyIC),
	key.KeySMessage:  key.Special(key.KeyMessage),
	key.KeySMove:     key.Special(key.KeyMove),
	key.KeySNext:     key.Special(key.KeyNext),
	key.KeySOptions:  key.Special(key.KeyOptions),
	key.KeySPrevious: key.Special(key.KeyPrevious),
	key.KeySPrint:    key.Special(key.KeyPrint),
	key.KeySRedo:     key.Special(key.KeyRedo),
	key.KeySReplace:  key.Special(key.KeyReplace),
	key.KeySResume:   key.Special(key.KeyResume),
	key.KeySSave:     key.Special(key.KeySave),
	key.KeySUndo:     key.Special(key.KeyUndo),
}

// suspendKeys maps the curses suspend codes to their control chords.
var suspendKeys = map[int]key.KeyPress{
	key.KeySuspend:  key.Press(key.ModCtrl, key.Codepoint('z')),
	key.KeySSuspend: key.Press(key.ModCtrl|key.ModShift, key.Codepoint('z')),
}

// translate runs the fixed passes over one resolved input. It returns a nil
// event when the input was consumed by a protocol parser.
func (s *Stream) translate(in key.KeyInput) (key.Event, error) {
	code, special := in.Code()

	if special {
		if ev, ok := s.bound[code]; ok {
			return ev, nil
		}
		switch code {
		case key.KeyResize:
			return s.resize()
		case key.KeyMouse:
			return s.mouse()
		case codePasteBegin:
			return key.PasteBegin{}, nil
		case codePasteEnd:
			return key.PasteEnd{}, nil
		}
		if base, ok := shiftedKeys[code]; ok {
			return key.Press(key.ModShift, base), nil
		}
	}

	if r, ok := in.Rune(); ok {
		if ev, ok := controlKey(r); ok {
			return ev, nil
		}
	}

	if special {
		if ev, ok := altPrefixKey(code); ok {
			return ev, nil
		}
		if ev, ok := gridKey(code); ok {
			return ev, nil
		}
		if ev, ok := suspendKeys[code]; ok {
			return ev, nil
		}
	}

	if in.IsSpecial(codeXTermEntry) {
		s.xterm.begin()
		return nil, nil
	}
	ev, st, err := s.xterm.feed(in)
	switch st {
	case parseConsumed:
		return nil, nil
	case parseDropped:
		s.logger.Debug().Msg("xterm modify-keys sequence with mode 0 dropped")
		return nil, nil
	case parseDone:
		return ev, err
	}

	if in.IsSpecial(codeKittyEntry) {
		s.kitty.begin()
		return nil, nil
	}
	ev, st = s.kitty.feed(in)
	switch st {
	case parseConsumed:
		return nil, nil
	case parseDone:
		return ev, nil
	}

	return key.Press(key.ModNone, in), nil
}

func (s *Stream) resize() (key.Event, error) {
	w, h, err := s.backend.Size()
	if err != nil {
		return nil, fmt.Errorf("querying terminal size: %w", err)
	}
	return key.Resize{Width: w, Height: h}, nil
}

func (s *Stream) mouse() (key.Event, error) {
	ms, err := s.backend.MouseState()
	if err != nil {
		return nil, fmt.Errorf("querying mouse state: %w", err)
	}
	mods := key.ModNone
	if ms.Buttons&terminal.ButtonCtrl != 0 {
		mods |= key.ModCtrl
	}
	if ms.Buttons&terminal.ButtonAlt != 0 {
		mods |= key.ModAlt
	}
	if ms.Buttons&terminal.ButtonShift != 0 {
		mods |= key.ModShift
	}
	return key.Mouse{
		DeviceID:  ms.DeviceID,
		X:         ms.X,
		Y:         ms.Y,
		Buttons:   ms.Buttons &^ terminal.ButtonModifiers,
		Modifiers: mods,
	}, nil
}

// controlKey interprets control characters as the chords that produce them.
func controlKey(r rune) (key.KeyPress, bool) {
	switch {
	case r == 0x7f:
		return key.Press(key.ModNone, key.Special(key.KeyBackspace)), true
	case r == 0:
		return key.Press(key.ModCtrl, key.Codepoint(' ')), true
	case r >= 1 && r <= 26 && r != '\t' && r != '\n' && r != '\b':
		return key.Press(key.ModCtrl, key.Codepoint(r+96)), true
	case r >= 129 && r <= 154:
		return key.Press(key.ModCtrl|key.ModAlt, key.Codepoint(r-32)), true
	}
	return key.KeyPress{}, false
}

// altPrefixKey decodes codes bound to ESC <byte>. The Enter key sends a
// carriage return, so ESC CR is Alt+Newline; other control codes are taken
// as Ctrl chords, except Backspace and Tab.
func altPrefixKey(code int) (key.KeyPress, bool) {
	if code < codeAltMin || code > codeAltMax {
		return key.KeyPress{}, false
	}
	c := rune(code - codeAltBase)
	switch {
	case c < 27 && c != '\b' && c != '\t' && c != '\r':
		return key.Press(key.ModCtrl|key.ModAlt, key.Codepoint(c+96)), true
	case c == '\r':
		return key.Press(key.ModAlt, key.Codepoint('\n')), true
	default:
		return key.Press(key.ModAlt, key.Codepoint(c)), true
	}
}

// gridKey decodes the XTerm modifier grid: tens carry the modifiers, units
// index gridKeys.
func gridKey(code int) (key.KeyPress, bool) {
	if code < codeGridBase || code > codeGridMax {
		return key.KeyPress{}, false
	}
	base := code - codeGridBase
	idx := base % 10
	if idx >= len(gridKeys) {
		return key.KeyPress{}, false
	}
	return key.Press(key.ModifierFromWire(uint32(base/10)), key.Special(gridKeys[idx])), true
}
