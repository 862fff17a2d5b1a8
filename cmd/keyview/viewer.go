package main

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"

	"github.com/dshills/terminput/internal/config"
	"github.com/dshills/terminput/internal/input/key"
	"github.com/dshills/terminput/internal/input/stream"
	"github.com/dshills/terminput/internal/terminal"
)

// defaultQuitKeys apply when the configuration names none.
var defaultQuitKeys = []key.KeyPress{
	key.MustParse("Ctrl+C"),
	key.MustParse("Ctrl+Q"),
}

// eventSource is the part of stream.Stream the viewer consumes.
type eventSource interface {
	NextEvent() (key.Event, error)
}

// viewer prints every event read from a source until a quit key, the end
// of the input or a fatal error.
type viewer struct {
	events  eventSource
	out     io.Writer
	format  string
	newline string
	quit    []key.KeyPress
	session string
	logger  zerolog.Logger

	count int
}

// run reads and prints events. Reaching the end of a replay, an interrupt or
// closing the terminal ends the run without error.
func (v *viewer) run() error {
	for {
		ev, err := v.events.NextEvent()
		if err != nil {
			if errors.Is(err, terminal.ErrInterrupted) {
				v.logger.Debug().Msg("interrupted")
				return nil
			}
			if errors.Is(err, io.EOF) || errors.Is(err, terminal.ErrClosed) {
				return nil
			}
			if stream.IsFatal(err) {
				return err
			}
			v.logger.Warn().Err(err).Msg("undecodable input")
			if werr := v.writeError(err); werr != nil {
				return werr
			}
			continue
		}

		if err := v.write(ev); err != nil {
			return err
		}
		if kp, ok := ev.(key.KeyPress); ok && v.isQuit(kp) {
			v.logger.Debug().Stringer("key", kp).Msg("quit key")
			return nil
		}
	}
}

func (v *viewer) isQuit(kp key.KeyPress) bool {
	return slices.ContainsFunc(v.quit, kp.Matches)
}

func (v *viewer) write(ev key.Event) error {
	v.count++
	var line []byte
	if v.format == config.FormatJSON {
		var err error
		if line, err = formatJSON(v.count, v.session, ev); err != nil {
			return fmt.Errorf("encoding event: %w", err)
		}
	} else {
		line = []byte(formatText(v.count, ev))
	}
	return v.writeLine(line)
}

func (v *viewer) writeError(decodeErr error) error {
	v.count++
	var line []byte
	if v.format == config.FormatJSON {
		var err error
		if line, err = formatErrorJSON(v.count, v.session, decodeErr); err != nil {
			return fmt.Errorf("encoding error: %w", err)
		}
	} else {
		line = fmt.Appendf(nil, "%4d  error: %v", v.count, decodeErr)
	}
	return v.writeLine(line)
}

func (v *viewer) writeLine(line []byte) error {
	line = append(line, v.newline...)
	if _, err := v.out.Write(line); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
