package key

import (
	"fmt"
	"strings"
)

// Special key codes. Values follow curses numbering so that codes coming from
// a terminal backend can be used as-is; everything below 256 is a byte or a
// decoded code point.
const (
	KeyCodeYes   = 0o400
	KeyBreak     = 0o401
	KeyDown      = 0o402
	KeyUp        = 0o403
	KeyLeft      = 0o404
	KeyRight     = 0o405
	KeyHome      = 0o406
	KeyBackspace = 0o407
	KeyF0        = 0o410

	KeyDL        = 0o510
	KeyIL        = 0o511
	KeyDC        = 0o512
	KeyIC        = 0o513
	KeyEIC       = 0o514
	KeyClear     = 0o515
	KeyEOS       = 0o516
	KeyEOL       = 0o517
	KeySF        = 0o520
	KeySR        = 0o521
	KeyNPage     = 0o522
	KeyPPage     = 0o523
	KeySTab      = 0o524
	KeyCTab      = 0o525
	KeyCATab     = 0o526
	KeyEnter     = 0o527
	KeySReset    = 0o530
	KeyReset     = 0o531
	KeyPrint     = 0o532
	KeyLL        = 0o533
	KeyA1        = 0o534
	KeyA3        = 0o535
	KeyB2        = 0o536
	KeyC1        = 0o537
	KeyC3        = 0o540
	KeyBTab      = 0o541
	KeyBeg       = 0o542
	KeyCancel    = 0o543
	KeyClose     = 0o544
	KeyCommand   = 0o545
	KeyCopy      = 0o546
	KeyCreate    = 0o547
	KeyEnd       = 0o550
	KeyExit      = 0o551
	KeyFind      = 0o552
	KeyHelp      = 0o553
	KeyMark      = 0o554
	KeyMessage   = 0o555
	KeyMove      = 0o556
	KeyNext      = 0o557
	KeyOpen      = 0o560
	KeyOptions   = 0o561
	KeyPrevious  = 0o562
	KeyRedo      = 0o563
	KeyReference = 0o564
	KeyRefresh   = 0o565
	KeyReplace   = 0o566
	KeyRestart   = 0o567
	KeyResume    = 0o570
	KeySave      = 0o571
	KeySBeg      = 0o572
	KeySCancel   = 0o573
	KeySCommand  = 0o574
	KeySCopy     = 0o575
	KeySCreate   = 0o576
	KeySDC       = 0o577
	KeySDL       = 0o600
	KeySelect    = 0o601
	KeySEnd      = 0o602
	KeySEOL      = 0o603
	KeySExit     = 0o604
	KeySFind     = 0o605
	KeySHelp     = 0o606
	KeySHome     = 0o607
	KeySIC       = 0o610
	KeySLeft     = 0o611
	KeySMessage  = 0o612
	KeySMove     = 0o613
	KeySNext     = 0o614
	KeySOptions  = 0o615
	KeySPrevious = 0o616
	KeySPrint    = 0o617
	KeySRedo     = 0o620
	KeySReplace  = 0o621
	KeySRight    = 0o622
	KeySResume   = 0o623
	KeySSave     = 0o624
	KeySSuspend  = 0o625
	KeySUndo     = 0o626
	KeySuspend   = 0o627
	KeyUndo      = 0o630
	KeyMouse     = 0o631
	KeyResize    = 0o632

	// KeyMax is the last code reserved for predefined keys. Codes above it are
	// handed out to extended terminfo capabilities and private bindings.
	KeyMax = 0o777
)

// KeyF returns the code of function key n.
func KeyF(n int) int {
	return KeyF0 + n
}

// InputKind identifies which variant a KeyInput holds.
type InputKind uint8

const (
	// InputNone is the zero KeyInput.
	InputNone InputKind = iota
	// InputCodepoint is a decoded Unicode scalar value.
	InputCodepoint
	// InputSpecial is a backend key code (>= 256).
	InputSpecial
	// InputByte is a raw byte that could not be decoded as UTF-8.
	InputByte
)

// KeyInput is the key carried by a key event: a code point, a special key
// code or a raw byte. KeyInput values are comparable.
type KeyInput struct {
	kind InputKind
	code int32
}

// Codepoint returns a KeyInput for a decoded character.
func Codepoint(r rune) KeyInput {
	return KeyInput{kind: InputCodepoint, code: r}
}

// Special returns a KeyInput for a backend key code.
func Special(code int) KeyInput {
	return KeyInput{kind: InputSpecial, code: int32(code)}
}

// Byte returns a KeyInput for a raw byte.
func Byte(b byte) KeyInput {
	return KeyInput{kind: InputByte, code: int32(b)}
}

// Kind reports which variant k holds.
func (k KeyInput) Kind() InputKind {
	return k.kind
}

// Rune returns the character and true for code point inputs.
func (k KeyInput) Rune() (rune, bool) {
	return k.code, k.kind == InputCodepoint
}

// Code returns the key code and true for special inputs.
func (k KeyInput) Code() (int, bool) {
	return int(k.code), k.kind == InputSpecial
}

// Byte returns the byte and true for raw byte inputs.
func (k KeyInput) Byte() (byte, bool) {
	return byte(k.code), k.kind == InputByte
}

// IsCodepoint reports whether k is the given character.
func (k KeyInput) IsCodepoint(r rune) bool {
	return k.kind == InputCodepoint && k.code == r
}

// IsSpecial reports whether k is the given special key.
func (k KeyInput) IsSpecial(code int) bool {
	return k.kind == InputSpecial && int(k.code) == code
}

// String returns a readable form: the character, the special key name or the
// byte in hex.
func (k KeyInput) String() string {
	switch k.kind {
	case InputCodepoint:
		switch k.code {
		case ' ':
			return "Space"
		case '\t':
			return "Tab"
		case '\n':
			return "Newline"
		case '\r':
			return "Return"
		case 0x1b:
			return "Escape"
		}
		if k.code < 0x20 || k.code == 0x7f {
			return fmt.Sprintf("U+%04X", k.code)
		}
		return string(k.code)
	case InputSpecial:
		return SpecialName(int(k.code))
	case InputByte:
		return fmt.Sprintf("0x%02X", k.code)
	default:
		return "None"
	}
}

// GoString implements fmt.GoStringer for debugging.
func (k KeyInput) GoString() string {
	switch k.kind {
	case InputCodepoint:
		return fmt.Sprintf("Codepoint(%q)", k.code)
	case InputSpecial:
		return fmt.Sprintf("Special(%s)", SpecialName(int(k.code)))
	case InputByte:
		return fmt.Sprintf("Byte(0x%02X)", k.code)
	default:
		return "KeyInput{}"
	}
}

// specialNames maps special key codes to display names.
var specialNames = map[int]string{
	KeyBreak:     "Break",
	KeyDown:      "Down",
	KeyUp:        "Up",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyBackspace: "Backspace",
	KeyDL:        "DeleteLine",
	KeyIL:        "InsertLine",
	KeyDC:        "Delete",
	KeyIC:        "Insert",
	KeyEIC:       "ExitInsert",
	KeyClear:     "Clear",
	KeyEOS:       "ClearEOS",
	KeyEOL:       "ClearEOL",
	KeySF:        "Shift-Down",
	KeySR:        "Shift-Up",
	KeyNPage:     "PageDown",
	KeyPPage:     "PageUp",
	KeySTab:      "SetTab",
	KeyCTab:      "ClearTab",
	KeyCATab:     "ClearAllTabs",
	KeyEnter:     "Enter",
	KeyPrint:     "Print",
	KeyA1:        "KP-UpperLeft",
	KeyA3:        "KP-UpperRight",
	KeyB2:        "KP-Center",
	KeyC1:        "KP-LowerLeft",
	KeyC3:        "KP-LowerRight",
	KeyBTab:      "BackTab",
	KeyBeg:       "Begin",
	KeyCancel:    "Cancel",
	KeyClose:     "Close",
	KeyCommand:   "Command",
	KeyCopy:      "Copy",
	KeyCreate:    "Create",
	KeyEnd:       "End",
	KeyExit:      "Exit",
	KeyFind:      "Find",
	KeyHelp:      "Help",
	KeyMark:      "Mark",
	KeyMessage:   "Message",
	KeyMove:      "Move",
	KeyNext:      "Next",
	KeyOpen:      "Open",
	KeyOptions:   "Options",
	KeyPrevious:  "Previous",
	KeyRedo:      "Redo",
	KeyReference: "Reference",
	KeyRefresh:   "Refresh",
	KeyReplace:   "Replace",
	KeyRestart:   "Restart",
	KeyResume:    "Resume",
	KeySave:      "Save",
	KeySBeg:      "Shift-Begin",
	KeySCancel:   "Shift-Cancel",
	KeySCommand:  "Shift-Command",
	KeySCopy:     "Shift-Copy",
	KeySCreate:   "Shift-Create",
	KeySDC:       "Shift-Delete",
	KeySDL:       "Shift-DeleteLine",
	KeySelect:    "Select",
	KeySEnd:      "Shift-End",
	KeySEOL:      "Shift-ClearEOL",
	KeySExit:     "Shift-Exit",
	KeySFind:     "Shift-Find",
	KeySHelp:     "Shift-Help",
	KeySHome:     "Shift-Home",
	KeySIC:       "Shift-Insert",
	KeySLeft:     "Shift-Left",
	KeySMessage:  "Shift-Message",
	KeySMove:     "Shift-Move",
	KeySNext:     "Shift-Next",
	KeySOptions:  "Shift-Options",
	KeySPrevious: "Shift-Previous",
	KeySPrint:    "Shift-Print",
	KeySRedo:     "Shift-Redo",
	KeySReplace:  "Shift-Replace",
	KeySRight:    "Shift-Right",
	KeySResume:   "Shift-Resume",
	KeySSave:     "Shift-Save",
	KeySSuspend:  "Shift-Suspend",
	KeySUndo:     "Shift-Undo",
	KeySuspend:   "Suspend",
	KeyUndo:      "Undo",
	KeyMouse:     "Mouse",
	KeyResize:    "Resize",
}

// SpecialName returns the display name of a special key code. Function keys
// are named F1..F63; unknown codes are rendered as "Key(n)".
func SpecialName(code int) string {
	if name, ok := specialNames[code]; ok {
		return name
	}
	if code > KeyF0 && code < KeyF0+64 {
		return fmt.Sprintf("F%d", code-KeyF0)
	}
	return fmt.Sprintf("Key(%d)", code)
}

// keyNameMap maps key names (lowercase) to KeyInput values.
var keyNameMap = map[string]KeyInput{
	"escape":    Codepoint(0x1b),
	"esc":       Codepoint(0x1b),
	"enter":     Codepoint('\n'),
	"return":    Codepoint('\n'),
	"cr":        Codepoint('\n'),
	"newline":   Codepoint('\n'),
	"tab":       Codepoint('\t'),
	"space":     Codepoint(' '),
	"backspace": Special(KeyBackspace),
	"bs":        Special(KeyBackspace),
	"delete":    Special(KeyDC),
	"del":       Special(KeyDC),
	"insert":    Special(KeyIC),
	"ins":       Special(KeyIC),
	"home":      Special(KeyHome),
	"end":       Special(KeyEnd),
	"pageup":    Special(KeyPPage),
	"pgup":      Special(KeyPPage),
	"pagedown":  Special(KeyNPage),
	"pgdn":      Special(KeyNPage),
	"up":        Special(KeyUp),
	"down":      Special(KeyDown),
	"left":      Special(KeyLeft),
	"right":     Special(KeyRight),
}

// KeyFromName returns the KeyInput for a given name (case-insensitive),
// including function keys "F1".."F12". The boolean is false if the name is
// not recognized.
func KeyFromName(name string) (KeyInput, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := keyNameMap[name]; ok {
		return k, true
	}
	var n int
	if _, err := fmt.Sscanf(name, "f%d", &n); err == nil && n >= 1 && n <= 63 && name == fmt.Sprintf("f%d", n) {
		return Special(KeyF(n)), true
	}
	return KeyInput{}, false
}
