// Package stream decodes terminal input into key, mouse, resize and paste
// events.
//
// New negotiates with the terminal backend: it reserves the escape sequences
// of bracketed paste, XTerm modifyOtherKeys and the Kitty full keyboard mode
// and enables each protocol whose sequences it could reserve, learns
// modified navigation keys from terminfo and binds the remaining common
// encodings to private codes. NextEvent then reads one unit at a time,
// reassembles UTF-8 and translates the result through a fixed series of
// passes until an event is complete.
//
// A Stream must be closed to switch the enabled protocols off again:
//
//	s := stream.New(backend)
//	defer s.Close()
//	for {
//		ev, err := s.NextEvent()
//		if stream.IsFatal(err) {
//			return err
//		}
//		...
//	}
package stream

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/terminput/internal/input/key"
	"github.com/dshills/terminput/internal/terminal"
)

// Stream is a decoded view of a terminal's input. It is owned by a single
// consumer and is not safe for concurrent use, except for Close.
type Stream struct {
	backend terminal.Backend
	opts    options
	logger  zerolog.Logger

	guards []*Guard
	bound  map[int]key.Event

	utf8  utf8Decoder
	xterm xtermParser
	kitty kittyParser

	closeOnce sync.Once
	closeErr  error
}

// New negotiates input protocols with b and returns a stream over it. It
// never fails; anything the terminal does not support stays off. The first
// event is always a Resize.
func New(b terminal.Backend, opts ...Option) *Stream {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Stream{
		backend: b,
		opts:    o,
		logger:  o.logger.With().Str("component", "stream").Logger(),
	}
	s.negotiate()
	return s
}

// NextEvent blocks until the next complete event. Errors for which IsFatal
// is false leave the stream usable.
func (s *Stream) NextEvent() (key.Event, error) {
	for {
		unit, err := s.backend.ReadUnit()
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		var in key.KeyInput
		if unit < 256 {
			v, res := s.utf8.feed(byte(unit))
			switch res {
			case utf8More:
				continue
			case utf8Byte:
				return key.Press(key.ModNone, key.Byte(byte(unit))), nil
			case utf8Invalid:
				return nil, &DecodeError{Value: v}
			}
			in = key.Codepoint(rune(v))
		} else {
			in = key.Special(unit)
		}

		ev, err := s.translate(in)
		if err != nil {
			return nil, err
		}
		if ev != nil {
			return ev, nil
		}
	}
}

// Protocols returns the protocols currently enabled on the terminal.
func (s *Stream) Protocols() []Protocol {
	ps := make([]Protocol, len(s.guards))
	for i, g := range s.guards {
		ps[i] = g.Protocol()
	}
	return ps
}

// BoundKeys returns a copy of the key codes learned from terminfo and the
// events they produce.
func (s *Stream) BoundKeys() map[int]key.Event {
	return maps.Clone(s.bound)
}

// Close disables every enabled protocol. It is safe to call more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		for _, g := range s.guards {
			errs = append(errs, g.Release())
		}
		s.closeErr = errors.Join(errs...)
		if s.closeErr != nil {
			s.logger.Debug().Err(s.closeErr).Msg("protocol release failed")
		}
	})
	return s.closeErr
}
