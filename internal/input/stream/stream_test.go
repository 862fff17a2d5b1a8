package stream

import (
	"errors"
	"io"
	"testing"
	"unicode/utf8"

	"github.com/dshills/terminput/internal/input/key"
	"github.com/dshills/terminput/internal/terminal"
	"github.com/dshills/terminput/internal/terminal/script"
)

// open negotiates a stream over b and consumes the initial Resize.
func open(t *testing.T, b *script.Backend, opts ...Option) *Stream {
	t.Helper()
	s := New(b, opts...)
	t.Cleanup(func() { _ = s.Close() })

	ev, err := s.NextEvent()
	if err != nil {
		t.Fatalf("first NextEvent() error = %v", err)
	}
	if _, ok := ev.(key.Resize); !ok {
		t.Fatalf("first event = %v, want Resize", ev)
	}
	return s
}

func next(t *testing.T, s *Stream) key.Event {
	t.Helper()
	ev, err := s.NextEvent()
	if err != nil {
		t.Fatalf("NextEvent() error = %v", err)
	}
	return ev
}

func TestFirstEventIsResize(t *testing.T) {
	b := script.New().SetSize(80, 24)
	s := New(b)
	defer s.Close()

	ev, err := s.NextEvent()
	if err != nil {
		t.Fatalf("NextEvent() error = %v", err)
	}
	if want := (key.Resize{Width: 80, Height: 24}); ev != want {
		t.Errorf("first event = %v, want %v", ev, want)
	}
}

func TestUTF8RoundTrip(t *testing.T) {
	runes := []rune{'a', '~', 'é', 'ß', 'ж', 0x07ff, 0x0800, '€', 0xfffd, 0xffff, 0x10000, '😀', 0x10ffff}
	for r := rune(0x20); r <= utf8.MaxRune; r += 997 {
		runes = append(runes, r)
	}

	b := script.New()
	var want []rune
	for _, r := range runes {
		if r == 0x7f || (r >= 129 && r <= 154) || !utf8.ValidRune(r) {
			continue
		}
		b.PushString(string(r))
		want = append(want, r)
	}
	s := open(t, b)

	for _, r := range want {
		ev := next(t, s)
		if exp := key.Press(key.ModNone, key.Codepoint(r)); ev != exp {
			t.Fatalf("decoding U+%04X: got %v, want %v", r, ev, exp)
		}
	}
	if b.Remaining() != 0 {
		t.Errorf("%d units left unread", b.Remaining())
	}
}

func TestMalformedUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []key.Event
	}{
		{
			name:  "lead byte followed by ASCII",
			input: "\xc0\x41b",
			want: []key.Event{
				key.Press(key.ModNone, key.Byte(0x41)),
				key.Press(key.ModNone, key.Codepoint('b')),
			},
		},
		{
			name:  "stray continuation byte",
			input: "\x80x",
			want: []key.Event{
				key.Press(key.ModNone, key.Byte(0x80)),
				key.Press(key.ModNone, key.Codepoint('x')),
			},
		},
		{
			name:  "invalid lead byte",
			input: "\xff",
			want:  []key.Event{key.Press(key.ModNone, key.Byte(0xff))},
		},
		{
			name:  "truncated three-byte sequence",
			input: "\xe2\x82é",
			want:  []key.Event{key.Press(key.ModNone, key.Codepoint('é'))},
		},
		{
			name:  "lead byte restarts sequence",
			input: "\xc3\xc3\xa9x",
			want: []key.Event{
				key.Press(key.ModNone, key.Codepoint('é')),
				key.Press(key.ModNone, key.Codepoint('x')),
			},
		},
		{
			name:  "invalid lead byte interrupts sequence",
			input: "\xe2\xff",
			want:  []key.Event{key.Press(key.ModNone, key.Byte(0xff))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t, script.New().PushString(tt.input))
			for i, want := range tt.want {
				if got := next(t, s); got != want {
					t.Errorf("event %d = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestInvalidScalarIsRecoverable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		value uint32
	}{
		{"surrogate", "\xed\xa0\x80", 0xd800},
		{"above max rune", "\xf4\x90\x80\x80", 0x110000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t, script.New().PushString(tt.input+"x"))

			_, err := s.NextEvent()
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("NextEvent() error = %v, want *DecodeError", err)
			}
			if de.Value != tt.value {
				t.Errorf("DecodeError.Value = %#x, want %#x", de.Value, tt.value)
			}
			if !errors.Is(err, ErrInvalidScalar) {
				t.Error("DecodeError should match ErrInvalidScalar")
			}
			if IsFatal(err) {
				t.Error("DecodeError should not be fatal")
			}

			if got, want := next(t, s), key.Press(key.ModNone, key.Codepoint('x')); got != want {
				t.Errorf("event after error = %v, want %v", got, want)
			}
		})
	}
}

func TestControlCharacters(t *testing.T) {
	tests := []struct {
		input string
		want  key.KeyPress
	}{
		{"\x01", key.Press(key.ModCtrl, key.Codepoint('a'))},
		{"\x00", key.Press(key.ModCtrl, key.Codepoint(' '))},
		{"\x7f", key.Press(key.ModNone, key.Special(key.KeyBackspace))},
		{"\x1a", key.Press(key.ModCtrl, key.Codepoint('z'))},
		{"\x0d", key.Press(key.ModCtrl, key.Codepoint('m'))},
		{"\t", key.Press(key.ModNone, key.Codepoint('\t'))},
		{"\n", key.Press(key.ModNone, key.Codepoint('\n'))},
		{"\b", key.Press(key.ModNone, key.Codepoint('\b'))},
		{"\x1b", key.Press(key.ModNone, key.Codepoint(0x1b))},
		{"\u0081", key.Press(key.ModCtrl|key.ModAlt, key.Codepoint('a'))},
		{"\u009a", key.Press(key.ModCtrl|key.ModAlt, key.Codepoint('z'))},
		{"\u009b", key.Press(key.ModNone, key.Codepoint(0x9b))},
	}

	for _, tt := range tests {
		s := open(t, script.New().PushString(tt.input))
		if got := next(t, s); got != tt.want {
			t.Errorf("input %q = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSpecialCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want key.Event
	}{
		{"paste begin", codePasteBegin, key.PasteBegin{}},
		{"paste end", codePasteEnd, key.PasteEnd{}},
		{"shift left", key.KeySLeft, key.Press(key.ModShift, key.Special(key.KeyLeft))},
		{"shift up", key.KeySR, key.Press(key.ModShift, key.Special(key.KeyUp))},
		{"shift delete", key.KeySDC, key.Press(key.ModShift, key.Special(key.KeyDC))},
		{"shift undo", key.KeySUndo, key.Press(key.ModShift, key.Special(key.KeyUndo))},
		{"back tab", key.KeyBTab, key.Press(key.ModShift, key.Codepoint('\t'))},
		{"suspend", key.KeySuspend, key.Press(key.ModCtrl, key.Codepoint('z'))},
		{"shift suspend", key.KeySSuspend, key.Press(key.ModCtrl|key.ModShift, key.Codepoint('z'))},
		{"alt ctrl a", 3001, key.Press(key.ModCtrl|key.ModAlt, key.Codepoint('a'))},
		{"alt ctrl z", 3026, key.Press(key.ModCtrl|key.ModAlt, key.Codepoint('z'))},
		{"alt enter", 3013, key.Press(key.ModAlt, key.Codepoint('\n'))},
		{"alt tab", 3009, key.Press(key.ModAlt, key.Codepoint('\t'))},
		{"alt backspace", 3008, key.Press(key.ModAlt, key.Codepoint('\b'))},
		{"alt digit", 3048, key.Press(key.ModAlt, key.Codepoint('0'))},
		{"alt upper", 3065, key.Press(key.ModAlt, key.Codepoint('A'))},
		{"alt lower", 3097, key.Press(key.ModAlt, key.Codepoint('a'))},
		{"grid ctrl up", 2340, key.Press(key.ModCtrl, key.Special(key.KeyUp))},
		{"grid alt shift right", 2332, key.Press(key.ModAlt|key.ModShift, key.Special(key.KeyRight))},
		{"grid alt delete", 2328, key.Press(key.ModAlt, key.Special(key.KeyDC))},
		{"grid ctrl alt page up", 2366, key.Press(key.ModCtrl|key.ModAlt, key.Special(key.KeyPPage))},
		{"grid unused index", 2309, key.Press(key.ModNone, key.Special(2309))},
		{"function key", key.KeyF(5), key.Press(key.ModNone, key.Special(key.KeyF(5)))},
		{"stray kitty end", codeKittyEnd, key.Press(key.ModNone, key.Special(codeKittyEnd))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t, script.New().Push(tt.code))
			if got := next(t, s); got != tt.want {
				t.Errorf("code %d = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestResize(t *testing.T) {
	b := script.New().SetSize(80, 24)
	s := open(t, b)

	b.Push(key.KeyResize)
	if got, want := next(t, s), (key.Resize{Width: 80, Height: 24}); got != want {
		t.Errorf("resize = %v, want %v", got, want)
	}

	b.SetSize(132, 43).Push(key.KeyResize)
	if got, want := next(t, s), (key.Resize{Width: 132, Height: 43}); got != want {
		t.Errorf("resize = %v, want %v", got, want)
	}
}

func TestResizeQueryFailureIsFatal(t *testing.T) {
	boom := errors.New("no window")
	s := New(script.New().SetSizeError(boom))
	defer s.Close()

	_, err := s.NextEvent()
	if !errors.Is(err, boom) {
		t.Fatalf("NextEvent() error = %v, want %v", err, boom)
	}
	if !IsFatal(err) {
		t.Error("size query failure should be fatal")
	}
}

func TestMouse(t *testing.T) {
	b := script.New().PushMouse(terminal.MouseState{
		DeviceID: 1,
		X:        3,
		Y:        4,
		Buttons:  terminal.Button1Pressed | terminal.ButtonCtrl | terminal.ButtonShift,
	}).Push(key.KeyMouse)
	s := open(t, b)

	want := key.Mouse{
		DeviceID:  1,
		X:         3,
		Y:         4,
		Buttons:   terminal.Button1Pressed,
		Modifiers: key.ModCtrl | key.ModShift,
	}
	if got := next(t, s); got != want {
		t.Errorf("mouse = %v, want %v", got, want)
	}
}

func TestMouseQueryFailureIsFatal(t *testing.T) {
	s := open(t, script.New().Push(key.KeyMouse))

	_, err := s.NextEvent()
	if !errors.Is(err, script.ErrNoMouseState) {
		t.Fatalf("NextEvent() error = %v, want %v", err, script.ErrNoMouseState)
	}
	if !IsFatal(err) {
		t.Error("mouse query failure should be fatal")
	}
}

func TestReadErrors(t *testing.T) {
	boom := errors.New("read failed")
	s := open(t, script.New().PushString("a").PushError(boom))

	next(t, s)
	_, err := s.NextEvent()
	if !errors.Is(err, boom) || !IsFatal(err) {
		t.Errorf("NextEvent() error = %v, want fatal %v", err, boom)
	}

	_, err = s.NextEvent()
	if !errors.Is(err, io.EOF) || !IsFatal(err) {
		t.Errorf("NextEvent() error = %v, want fatal io.EOF", err)
	}
}

func TestLearnedBindingsWin(t *testing.T) {
	b := script.New().
		SetTerminfo("kUP3", "\x1b[1;3A").
		Bind("\x1b[1;3A", 2350).
		SetTerminfo("kLFT5", "\x1b[1;5D").
		Bind("\x1b[1;5D", 560).
		Push(2350, 560)
	s := open(t, b)

	if got, want := next(t, s), key.Press(key.ModAlt, key.Special(key.KeyUp)); got != want {
		t.Errorf("code 2350 = %v, want %v", got, want)
	}
	if got, want := next(t, s), key.Press(key.ModCtrl, key.Special(key.KeyLeft)); got != want {
		t.Errorf("code 560 = %v, want %v", got, want)
	}
}

func TestErrors(t *testing.T) {
	err := &DecodeError{Value: 0xd800}
	if got, want := err.Error(), "decoding input: 0xD800 is not a valid scalar value"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	tests := []struct {
		err   error
		fatal bool
	}{
		{nil, false},
		{err, false},
		{io.EOF, true},
		{errors.New("backend"), true},
	}
	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.fatal {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.fatal)
		}
	}
}
