package stream

import (
	"unicode/utf8"

	"github.com/dshills/terminput/internal/input/key"
)

// parseStep is a protocol parser's verdict on one input.
type parseStep uint8

const (
	parsePass     parseStep = iota // not consumed, keep translating
	parseConsumed                  // consumed, no event yet
	parseDropped                   // sequence complete but discarded
	parseDone                      // sequence complete, event ready
)

// accumLimit caps decimal and base-85 accumulators so that overlong input
// cannot wrap around into a plausible value.
const accumLimit = 1 << 24

type xtermState uint8

const (
	xtermOff xtermState = iota
	xtermMode
	xtermChar
)

// xtermParser decodes the tail of a modifyOtherKeys report,
// "ESC [ 27 ;" mode ";" char "~", after the entry code.
type xtermParser struct {
	state xtermState
	mode  uint32
	char  uint32
}

func (p *xtermParser) begin() {
	*p = xtermParser{state: xtermMode}
}

func (p *xtermParser) feed(in key.KeyInput) (key.Event, parseStep, error) {
	if p.state == xtermOff {
		return nil, parsePass, nil
	}
	r, ok := in.Rune()
	if !ok {
		p.state = xtermOff
		return nil, parsePass, nil
	}

	switch p.state {
	case xtermMode:
		switch {
		case r >= '0' && r <= '9':
			p.mode = accumulate(p.mode, 10, uint32(r-'0'))
			return nil, parseConsumed, nil
		case r == ';':
			p.state, p.char = xtermChar, 0
			return nil, parseConsumed, nil
		}
	case xtermChar:
		switch {
		case r >= '0' && r <= '9':
			p.char = accumulate(p.char, 10, uint32(r-'0'))
			return nil, parseConsumed, nil
		case r == '~':
			mode, char := p.mode, p.char
			p.state = xtermOff
			if mode == 0 {
				return nil, parseDropped, nil
			}
			if !utf8.ValidRune(rune(char)) {
				return nil, parseDone, &DecodeError{Value: char}
			}
			return key.Press(key.ModifierFromWire(mode-1), key.Codepoint(rune(char))), parseDone, nil
		}
	}

	p.state = xtermOff
	return nil, parsePass, nil
}

func accumulate(acc, base, digit uint32) uint32 {
	if acc >= accumLimit {
		return accumLimit
	}
	return min(acc*base+digit, accumLimit)
}
