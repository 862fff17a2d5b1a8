package main

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
	"github.com/tidwall/sjson"
	"golang.org/x/text/unicode/runenames"

	"github.com/dshills/terminput/internal/input/key"
)

// eventColumn is the display width reserved for the event name in text
// output.
const eventColumn = 28

// eventType names the event variant in JSON output.
func eventType(ev key.Event) string {
	switch ev.(type) {
	case key.KeyPress:
		return "press"
	case key.KeyRelease:
		return "release"
	case key.Resize:
		return "resize"
	case key.Mouse:
		return "mouse"
	case key.PasteBegin:
		return "paste-begin"
	case key.PasteEnd:
		return "paste-end"
	default:
		return "unknown"
	}
}

// keyDetail describes the key carried by a key event.
func keyDetail(k key.KeyInput) string {
	switch k.Kind() {
	case key.InputCodepoint:
		r, _ := k.Rune()
		name := runeName(r)
		if name == "" {
			return fmt.Sprintf("U+%04X", r)
		}
		return fmt.Sprintf("U+%04X %s", r, name)
	case key.InputSpecial:
		code, _ := k.Code()
		return fmt.Sprintf("code %d", code)
	case key.InputByte:
		b, _ := k.Byte()
		return fmt.Sprintf("undecodable byte 0x%02X", b)
	default:
		return ""
	}
}

// runeName returns the Unicode name of r. Ranges that the name table only
// labels, like "<CJK Ideograph>", get the derived name where Unicode defines
// one and no name otherwise.
func runeName(r rune) string {
	name := runenames.Name(r)
	if !strings.HasPrefix(name, "<") {
		return name
	}
	if strings.HasPrefix(name, "<CJK Ideograph") {
		return fmt.Sprintf("CJK UNIFIED IDEOGRAPH-%04X", r)
	}
	return ""
}

// pad right-pads s with spaces to width display columns.
func pad(s string, width int) string {
	if w := uniseg.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s + " "
}

// formatText renders one event as a text line without the line ending.
func formatText(n int, ev key.Event) string {
	line := fmt.Sprintf("%4d  %s", n, pad(ev.String(), eventColumn))
	switch e := ev.(type) {
	case key.KeyPress:
		line += keyDetail(e.Key)
	case key.KeyRelease:
		line += keyDetail(e.Key)
	}
	return strings.TrimRight(line, " ")
}

// formatJSON renders one event as a JSON object.
func formatJSON(n int, session string, ev key.Event) ([]byte, error) {
	fields := []any{
		"seq", n,
		"session", session,
		"type", eventType(ev),
		"event", ev.String(),
	}

	var mods key.Modifier
	switch e := ev.(type) {
	case key.KeyPress:
		mods = e.Modifiers
		fields = append(fields, "repeat", e.IsRepeat, "vim", e.VimString())
		fields = appendKey(fields, e.Key)
	case key.KeyRelease:
		mods = e.Modifiers
		fields = appendKey(fields, e.Key)
	case key.Resize:
		fields = append(fields, "width", e.Width, "height", e.Height)
	case key.Mouse:
		mods = e.Modifiers
		fields = append(fields,
			"device", e.DeviceID,
			"x", e.X,
			"y", e.Y,
			"buttons", e.Buttons)
	}
	if !mods.IsEmpty() {
		fields = append(fields, "modifiers", mods.String())
	}

	var (
		out []byte
		err error
	)
	for i := 0; err == nil && i+1 < len(fields); i += 2 {
		out, err = sjson.SetBytes(out, fields[i].(string), fields[i+1])
	}
	return out, err
}

func appendKey(fields []any, k key.KeyInput) []any {
	switch k.Kind() {
	case key.InputCodepoint:
		r, _ := k.Rune()
		fields = append(fields, "key.kind", "codepoint", "key.value", int(r))
		if name := runeName(r); name != "" {
			fields = append(fields, "key.name", name)
		}
	case key.InputSpecial:
		code, _ := k.Code()
		fields = append(fields, "key.kind", "special", "key.value", code, "key.name", k.String())
	case key.InputByte:
		b, _ := k.Byte()
		fields = append(fields, "key.kind", "byte", "key.value", int(b))
	}
	return fields
}

// formatErrorJSON renders a non-fatal decode error as a JSON object.
func formatErrorJSON(n int, session string, err error) ([]byte, error) {
	out, serr := sjson.SetBytes(nil, "seq", n)
	if serr == nil {
		out, serr = sjson.SetBytes(out, "session", session)
	}
	if serr == nil {
		out, serr = sjson.SetBytes(out, "type", "error")
	}
	if serr == nil {
		out, serr = sjson.SetBytes(out, "error", err.Error())
	}
	return out, serr
}
