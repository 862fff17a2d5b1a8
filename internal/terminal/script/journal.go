package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/dshills/terminput/internal/terminal"
)

// Load builds a backend from a journal written by terminal.Recorder.
// Units, sizes, mouse states and read errors replay in order. Environment,
// terminfo and key bindings are restored so that negotiation reaches the same
// decisions it did live.
func Load(r io.Reader) (*Backend, error) {
	b := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)

	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		if !gjson.ValidBytes(raw) {
			return nil, fmt.Errorf("journal line %d: invalid JSON", line)
		}
		rec := gjson.ParseBytes(raw)

		switch kind := rec.Get("kind").String(); kind {
		case terminal.RecordUnit:
			b.Push(int(rec.Get("value").Int()))
		case terminal.RecordError:
			b.PushError(errors.New(rec.Get("message").String()))
		case terminal.RecordSize:
			b.PushSize(int(rec.Get("width").Int()), int(rec.Get("height").Int()))
		case terminal.RecordMouse:
			b.PushMouse(terminal.MouseState{
				DeviceID: uint16(rec.Get("device").Uint()),
				X:        int(rec.Get("x").Int()),
				Y:        int(rec.Get("y").Int()),
				Buttons:  uint32(rec.Get("buttons").Uint()),
			})
		case terminal.RecordEnv:
			b.SetEnv(rec.Get("name").String(), rec.Get("value").String())
		case terminal.RecordTerminfo:
			b.SetTerminfo(rec.Get("name").String(), rec.Get("value").String())
		case terminal.RecordKeyCode:
			b.Bind(rec.Get("seq").String(), int(rec.Get("code").Int()))
		default:
			return nil, fmt.Errorf("journal line %d: unknown record kind %q", line, kind)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return b, nil
}
