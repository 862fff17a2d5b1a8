package key

import (
	"fmt"
	"strings"
)

// Event is a single decoded terminal input event. The concrete types are
// KeyPress, KeyRelease, Resize, Mouse, PasteBegin and PasteEnd; all of them
// are plain comparable values.
type Event interface {
	fmt.Stringer
	isEvent()
}

// KeyPress is a key going down, or an auto-repeat when IsRepeat is set.
type KeyPress struct {
	Modifiers Modifier
	Key       KeyInput
	IsRepeat  bool
}

// KeyRelease is a key going up. Only the Kitty protocol reports releases.
type KeyRelease struct {
	Modifiers Modifier
	Key       KeyInput
}

// Resize reports the terminal's new size in cells.
type Resize struct {
	Width  int
	Height int
}

// Mouse reports a mouse event. Buttons holds the backend button mask with the
// modifier bits removed; those are reported in Modifiers instead.
type Mouse struct {
	DeviceID  uint16
	X         int
	Y         int
	Buttons   uint32
	Modifiers Modifier
}

// PasteBegin marks the start of bracketed paste content.
type PasteBegin struct{}

// PasteEnd marks the end of bracketed paste content.
type PasteEnd struct{}

func (KeyPress) isEvent()   {}
func (KeyRelease) isEvent() {}
func (Resize) isEvent()     {}
func (Mouse) isEvent()      {}
func (PasteBegin) isEvent() {}
func (PasteEnd) isEvent()   {}

// Press is shorthand for an unrepeated KeyPress.
func Press(mods Modifier, k KeyInput) KeyPress {
	return KeyPress{Modifiers: mods, Key: k}
}

// String returns a canonical form like "C-a", "A-S-Up" or "x".
func (e KeyPress) String() string {
	s := keyString(e.Modifiers, e.Key)
	if e.IsRepeat {
		s += " (repeat)"
	}
	return s
}

// Matches reports whether e is the same key press as other, ignoring
// repeat state.
func (e KeyPress) Matches(other KeyPress) bool {
	return e.Modifiers == other.Modifiers && e.Key == other.Key
}

// VimString returns a Vim-style representation like "<C-s>" or "a".
func (e KeyPress) VimString() string {
	if r, ok := e.Key.Rune(); ok && e.Modifiers == ModNone && r > ' ' && r != 0x7f {
		return string(r)
	}
	var parts []string
	if e.Modifiers.HasCtrl() {
		parts = append(parts, "C")
	}
	if e.Modifiers.HasAlt() {
		parts = append(parts, "A")
	}
	if e.Modifiers.HasShift() {
		parts = append(parts, "S")
	}
	var name string
	switch {
	case e.Key.IsCodepoint('\n'), e.Key.IsCodepoint('\r'):
		name = "CR"
	case e.Key.IsCodepoint(0x1b):
		name = "Esc"
	case e.Key.IsSpecial(KeyBackspace):
		name = "BS"
	case e.Key.IsSpecial(KeyDC):
		name = "Del"
	default:
		name = e.Key.String()
	}
	parts = append(parts, name)
	return "<" + strings.Join(parts, "-") + ">"
}

func (e KeyRelease) String() string {
	return keyString(e.Modifiers, e.Key) + " (release)"
}

func (e Resize) String() string {
	return fmt.Sprintf("Resize %dx%d", e.Width, e.Height)
}

func (e Mouse) String() string {
	s := fmt.Sprintf("Mouse #%d at %d,%d buttons=%#x", e.DeviceID, e.X, e.Y, e.Buttons)
	if e.Modifiers != ModNone {
		s += " " + e.Modifiers.String()
	}
	return s
}

func (PasteBegin) String() string { return "PasteBegin" }

func (PasteEnd) String() string { return "PasteEnd" }

func keyString(mods Modifier, k KeyInput) string {
	if mods == ModNone {
		return k.String()
	}
	return mods.ShortString() + "-" + k.String()
}
