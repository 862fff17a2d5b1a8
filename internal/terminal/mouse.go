package terminal

import (
	"github.com/dshills/terminput/internal/input/key"
)

// maxMouseReport bounds the body of an SGR report ("b;x;y" plus final).
const maxMouseReport = 32

// readMouseReport reads the body of an SGR mouse report whose "ESC [ <"
// prefix was just matched. A well-formed report updates t.mouse and yields
// key.KeyMouse. Anything else is pushed back and the escape byte is
// delivered on its own.
func (t *TTY) readMouseReport() (int, error) {
	body := make([]byte, 0, 16)
	for len(body) < maxMouseReport {
		b, ok := t.nextByte(t.escDelay)
		if !ok {
			break
		}
		body = append(body, b)
		if b == 'M' || b == 'm' {
			break
		}
	}

	ms, ok := parseSGRMouse(body)
	if !ok {
		t.logger.Debug().Bytes("body", body).Msg("malformed mouse report")
		t.unread(append([]byte("[<"), body...))
		return 0x1b, nil
	}
	t.mouse = ms
	return key.KeyMouse, nil
}

// maxSGRDigits bounds each numeric field of an SGR report.
const maxSGRDigits = 5

// parseSGRMouse decodes "b;x;yM" or "b;x;ym" into curses-style button bits
// with 0-based coordinates. A field longer than maxSGRDigits is rejected.
func parseSGRMouse(body []byte) (MouseState, bool) {
	if len(body) < 6 {
		return MouseState{}, false
	}
	final := body[len(body)-1]
	if final != 'M' && final != 'm' {
		return MouseState{}, false
	}

	var fields [3]int
	field, digits := 0, 0
	for _, c := range body[:len(body)-1] {
		switch {
		case c >= '0' && c <= '9':
			if digits == maxSGRDigits {
				return MouseState{}, false
			}
			fields[field] = fields[field]*10 + int(c-'0')
			digits++
		case c == ';':
			if digits == 0 || field == 2 {
				return MouseState{}, false
			}
			field++
			digits = 0
		default:
			return MouseState{}, false
		}
	}
	if field != 2 || digits == 0 {
		return MouseState{}, false
	}

	cb, x, y := fields[0], fields[1]-1, fields[2]-1
	if x < 0 || y < 0 {
		return MouseState{}, false
	}

	var buttons uint32
	if cb&4 != 0 {
		buttons |= ButtonShift
	}
	if cb&8 != 0 {
		buttons |= ButtonAlt
	}
	if cb&16 != 0 {
		buttons |= ButtonCtrl
	}

	motion := cb&32 != 0
	release := final == 'm'
	switch cb &^ (4 | 8 | 16 | 32) {
	case 0:
		buttons |= buttonBit(Button1Pressed, Button1Released, release)
	case 1:
		buttons |= buttonBit(Button2Pressed, Button2Released, release)
	case 2:
		buttons |= buttonBit(Button3Pressed, Button3Released, release)
	case 3:
		// no button held
	case 64:
		buttons |= Button4Pressed
	case 65:
		buttons |= Button5Pressed
	default:
		return MouseState{}, false
	}
	if motion {
		buttons |= ReportMousePosition
	}

	return MouseState{X: x, Y: y, Buttons: buttons}, true
}

func buttonBit(pressed, released uint32, release bool) uint32 {
	if release {
		return released
	}
	return pressed
}
