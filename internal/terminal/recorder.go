package terminal

import (
	"errors"
	"io"

	"github.com/tidwall/sjson"
)

// Journal record kinds written by Recorder.
const (
	RecordUnit     = "unit"
	RecordSize     = "size"
	RecordMouse    = "mouse"
	RecordEnv      = "env"
	RecordTerminfo = "terminfo"
	RecordKeyCode  = "keycode"
	RecordError    = "error"
)

// Recorder is a Backend that forwards to another Backend and journals every
// answer it gets as one JSON object per line. The journal can be replayed
// with the script package.
type Recorder struct {
	Backend
	w     io.Writer
	err   error
	ungot int
}

// NewRecorder wraps b and writes its journal to w.
func NewRecorder(b Backend, w io.Writer) *Recorder {
	return &Recorder{Backend: b, w: w}
}

// Err returns the first error encountered writing the journal.
func (r *Recorder) Err() error {
	return r.err
}

// ReadUnit forwards to the wrapped backend and records the unit or error.
// Codes pushed back with Unget are not recorded; a replay pushes them again.
// Interrupting or closing the terminal is not recorded, so a replay ends at
// the end of the journal.
func (r *Recorder) ReadUnit() (int, error) {
	u, err := r.Backend.ReadUnit()
	if err == nil && r.ungot > 0 {
		r.ungot--
		return u, nil
	}
	if err != nil {
		if !endsSession(err) {
			r.record(RecordError, "message", err.Error())
		}
		return u, err
	}
	r.record(RecordUnit, "value", u)
	return u, nil
}

// Size forwards to the wrapped backend and records the answer.
func (r *Recorder) Size() (int, int, error) {
	w, h, err := r.Backend.Size()
	if err == nil {
		r.record(RecordSize, "width", w, "height", h)
	}
	return w, h, err
}

// MouseState forwards to the wrapped backend and records the answer.
func (r *Recorder) MouseState() (MouseState, error) {
	ms, err := r.Backend.MouseState()
	if err == nil {
		r.record(RecordMouse,
			"device", ms.DeviceID,
			"x", ms.X,
			"y", ms.Y,
			"buttons", ms.Buttons)
	}
	return ms, err
}

// LookupEnv forwards to the wrapped backend and records defined values.
func (r *Recorder) LookupEnv(name string) (string, bool) {
	v, ok := r.Backend.LookupEnv(name)
	if ok {
		r.record(RecordEnv, "name", name, "value", v)
	}
	return v, ok
}

// TerminfoString forwards to the wrapped backend and records found strings.
func (r *Recorder) TerminfoString(name string) (string, bool) {
	s, ok := r.Backend.TerminfoString(name)
	if ok {
		r.record(RecordTerminfo, "name", name, "value", s)
	}
	return s, ok
}

// KeyCode forwards to the wrapped backend and records bound sequences.
func (r *Recorder) KeyCode(seq string) (int, error) {
	code, err := r.Backend.KeyCode(seq)
	if err == nil {
		r.record(RecordKeyCode, "seq", seq, "code", code)
	}
	return code, err
}

// Unget forwards to the wrapped backend.
func (r *Recorder) Unget(code int) error {
	if err := r.Backend.Unget(code); err != nil {
		return err
	}
	r.ungot++
	return nil
}

// record appends one journal line. kv alternates field names and values.
func (r *Recorder) record(kind string, kv ...any) {
	if r.err != nil {
		return
	}
	line, err := sjson.SetBytes(nil, "kind", kind)
	for i := 0; err == nil && i+1 < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			err = errors.New("journal field name is not a string")
			break
		}
		line, err = sjson.SetBytes(line, name, kv[i+1])
	}
	if err != nil {
		r.err = err
		return
	}
	line = append(line, '\n')
	if _, err := r.w.Write(line); err != nil {
		r.err = err
	}
}

func endsSession(err error) bool {
	return errors.Is(err, ErrInterrupted) || errors.Is(err, ErrClosed)
}
