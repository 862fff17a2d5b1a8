// Package key defines the values produced by the terminal input decoder.
//
// This package defines the fundamental types for representing input:
//
//   - Modifier: the set of held qualifier keys (Ctrl, Alt, Shift)
//   - KeyInput: a decoded code point, a special key code or a raw byte
//   - Event: KeyPress, KeyRelease, Resize, Mouse, PasteBegin, PasteEnd
//
// # Special Key Codes
//
// Special keys use curses numbering (KeyUp, KeyDC, KeyF(5), ...). Codes
// above KeyMax are assigned by the terminal backend to extended terminfo
// capabilities and private escape-sequence bindings; an unrecognized code is
// passed through unchanged as Special(code).
//
// # Key Specifications
//
// Parse accepts "Ctrl+C", "<C-q>", "Alt+Up" and similar strings and returns
// the KeyPress the decoder would produce for that key.
package key
