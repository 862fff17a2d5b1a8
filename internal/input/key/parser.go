package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec        = errors.New("empty key specification")
	ErrInvalidSpec      = errors.New("invalid key specification")
	ErrUnmatchedBracket = errors.New("unmatched bracket in key specification")
)

// Parse parses a key specification string into the KeyPress the decoder
// produces for it.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Named keys: "Enter", "Escape", "Tab", "Backspace", "Space", "F5"
//   - With modifiers: "Ctrl+C", "Alt+Up", "Ctrl+Shift+z"
//   - Vim-style: "<C-q>", "<A-x>", "<S-Tab>", "<CR>", "<Esc>"
//
// Ctrl and Alt combinations with letters use the lowercase letter, matching
// what the control-character heuristics decode. Uppercase letters carry no
// implicit Shift: terminals deliver them as plain characters.
func Parse(spec string) (KeyPress, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return KeyPress{}, ErrEmptySpec
	}

	if len(spec) > 1 && strings.HasPrefix(spec, "<") {
		if !strings.HasSuffix(spec, ">") || len(spec) < 3 {
			return KeyPress{}, ErrUnmatchedBracket
		}
		return parseVimStyle(spec[1 : len(spec)-1])
	}

	// "+" alone is a character, not a separator
	if len(spec) > 1 && strings.Contains(spec, "+") {
		return parseModifierStyle(spec)
	}

	return parseKeyWithModifiers(spec, ModNone)
}

// parseVimStyle parses Vim-style notation like "C-s", "A-F4", "CR", "Esc"
func parseVimStyle(inner string) (KeyPress, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return KeyPress{}, ErrInvalidSpec
	}

	parts := strings.Split(inner, "-")
	// "<C-->" has an empty last part; the key is "-"
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = append(parts[:len(parts)-2], "-")
	}

	var mods Modifier
	keyPart := parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "c":
			mods = mods.With(ModCtrl)
		case "a", "m":
			mods = mods.With(ModAlt)
		case "s":
			mods = mods.With(ModShift)
		default:
			return KeyPress{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
	}

	return parseKeyWithModifiers(keyPart, mods)
}

// parseModifierStyle parses "Ctrl+S" style notation
func parseModifierStyle(spec string) (KeyPress, error) {
	parts := strings.Split(spec, "+")
	// "Ctrl++" ends in two empty parts; the key is "+"
	if len(parts) > 2 && parts[len(parts)-1] == "" && parts[len(parts)-2] == "" {
		parts = append(parts[:len(parts)-2], "+")
	}
	if len(parts) < 2 {
		return KeyPress{}, ErrInvalidSpec
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimSpace(p)
		mod := ModifierFromName(p)
		if mod == ModNone {
			return KeyPress{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}

	keyPart := strings.TrimSpace(parts[len(parts)-1])
	if keyPart == "" {
		return KeyPress{}, fmt.Errorf("%w: missing key in %q", ErrInvalidSpec, spec)
	}
	return parseKeyWithModifiers(keyPart, mods)
}

// parseKeyWithModifiers resolves the key part of a specification.
func parseKeyWithModifiers(keyPart string, mods Modifier) (KeyPress, error) {
	if k, ok := KeyFromName(keyPart); ok {
		// Shift+Tab is reported as back-tab and decoded to {Shift, Tab}
		return Press(mods, k), nil
	}

	runes := []rune(keyPart)
	if len(runes) == 1 {
		r := runes[0]
		if mods.HasCtrl() || mods.HasAlt() {
			r = unicode.ToLower(r)
		}
		return Press(mods, Codepoint(r)), nil
	}

	return KeyPress{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) KeyPress {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}

// ParseAll parses a list of specifications, stopping at the first error.
func ParseAll(specs []string) ([]KeyPress, error) {
	out := make([]KeyPress, 0, len(specs))
	for _, s := range specs {
		ev, err := Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", s, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
