package terminal_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/terminput/internal/input/key"
	"github.com/dshills/terminput/internal/terminal"
	"github.com/dshills/terminput/internal/terminal/script"
)

func journalLines(t *testing.T, buf *bytes.Buffer) []gjson.Result {
	t.Helper()
	var lines []gjson.Result
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		if !gjson.Valid(l) {
			t.Fatalf("journal line %q is not valid JSON", l)
		}
		lines = append(lines, gjson.Parse(l))
	}
	return lines
}

func TestRecorderJournal(t *testing.T) {
	b := script.New().
		PushString("a").
		PushError(errors.New("boom")).
		SetSize(120, 40).
		SetEnv("TERM", "xterm").
		SetTerminfo("smkx", "\x1b[?1h").
		Bind("\x1b[A", key.KeyUp).
		PushMouse(terminal.MouseState{X: 3, Y: 4, Buttons: terminal.Button1Pressed})

	var buf bytes.Buffer
	r := terminal.NewRecorder(b, &buf)

	if u, err := r.ReadUnit(); err != nil || u != 'a' {
		t.Fatalf("ReadUnit() = %d, %v, want 'a'", u, err)
	}
	if _, err := r.ReadUnit(); err == nil {
		t.Fatal("ReadUnit() should fail with the scripted error")
	}
	_, _, _ = r.Size()
	_, _ = r.LookupEnv("TERM")
	_, _ = r.LookupEnv("COLORTERM")
	_, _ = r.TerminfoString("smkx")
	_, _ = r.TerminfoString("rmkx")
	_, _ = r.KeyCode("\x1b[A")
	_, _ = r.KeyCode("\x1b[B")
	_, _ = r.MouseState()

	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	lines := journalLines(t, &buf)
	wantKinds := []string{
		terminal.RecordUnit,
		terminal.RecordError,
		terminal.RecordSize,
		terminal.RecordEnv,
		terminal.RecordTerminfo,
		terminal.RecordKeyCode,
		terminal.RecordMouse,
	}
	if len(lines) != len(wantKinds) {
		t.Fatalf("journal has %d lines, want %d:\n%s", len(lines), len(wantKinds), buf.String())
	}
	for i, want := range wantKinds {
		if got := lines[i].Get("kind").String(); got != want {
			t.Errorf("line %d kind = %q, want %q", i, got, want)
		}
	}

	if v := lines[0].Get("value").Int(); v != 'a' {
		t.Errorf("unit value = %d, want %d", v, 'a')
	}
	if m := lines[1].Get("message").String(); m != "boom" {
		t.Errorf("error message = %q, want boom", m)
	}
	if w, h := lines[2].Get("width").Int(), lines[2].Get("height").Int(); w != 120 || h != 40 {
		t.Errorf("size = %dx%d, want 120x40", w, h)
	}
	if v := lines[4].Get("value").String(); v != "\x1b[?1h" {
		t.Errorf("terminfo value = %q", v)
	}
	if s, c := lines[5].Get("seq").String(), lines[5].Get("code").Int(); s != "\x1b[A" || c != key.KeyUp {
		t.Errorf("keycode = %q, %d, want ESC [ A, %d", s, c, key.KeyUp)
	}
	if x, y := lines[6].Get("x").Int(), lines[6].Get("y").Int(); x != 3 || y != 4 {
		t.Errorf("mouse = %d,%d, want 3,4", x, y)
	}
}

func TestRecorderSkipsUngottenUnits(t *testing.T) {
	b := script.New().PushString("x")
	var buf bytes.Buffer
	r := terminal.NewRecorder(b, &buf)

	if err := r.Unget(key.KeyResize); err != nil {
		t.Fatalf("Unget() error = %v", err)
	}
	if u, _ := r.ReadUnit(); u != key.KeyResize {
		t.Fatalf("ReadUnit() = %d, want KeyResize", u)
	}
	if u, _ := r.ReadUnit(); u != 'x' {
		t.Fatalf("ReadUnit() = %d, want 'x'", u)
	}

	lines := journalLines(t, &buf)
	if len(lines) != 1 || lines[0].Get("value").Int() != 'x' {
		t.Errorf("journal = %q, want only the 'x' unit", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrShortWrite }

func TestRecorderWriteError(t *testing.T) {
	r := terminal.NewRecorder(script.New().PushString("ab"), failingWriter{})

	for i := 0; i < 2; i++ {
		if _, err := r.ReadUnit(); err != nil {
			t.Fatalf("ReadUnit() error = %v", err)
		}
	}
	if !errors.Is(r.Err(), io.ErrShortWrite) {
		t.Errorf("Err() = %v, want io.ErrShortWrite", r.Err())
	}
}

func TestRecorderSkipsSessionEnd(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"interrupted", terminal.ErrInterrupted},
		{"closed", terminal.ErrClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := terminal.NewRecorder(script.New().PushString("a").PushError(tt.err), &buf)

			_, _ = r.ReadUnit()
			if _, err := r.ReadUnit(); !errors.Is(err, tt.err) {
				t.Fatalf("ReadUnit() error = %v, want %v", err, tt.err)
			}
			lines := journalLines(t, &buf)
			if len(lines) != 1 || lines[0].Get("kind").String() != terminal.RecordUnit {
				t.Errorf("journal = %q, want one unit record", buf.String())
			}
		})
	}
}
