package stream

import (
	"strings"

	"github.com/dshills/terminput/internal/input/key"
)

// kittyFallbackBase offsets key values without a table entry into a private
// special code range.
const kittyFallbackBase = 600

// kittyPunct extends the alphanumeric key alphabet with values 62 and up.
const kittyPunct = ".-:+=^!/*?&<>()[]{}@%$#"

type kittyState uint8

const (
	kittyOff kittyState = iota
	kittyType
	kittyModifiers
	kittyKey
)

type kittyKind uint8

const (
	kittyPress kittyKind = iota
	kittyRelease
	kittyRepeat
)

// kittyParser decodes "ESC _ K" type modifiers key... "ESC \" reports after
// the entry code.
type kittyParser struct {
	state kittyState
	kind  kittyKind
	mods  key.Modifier
	key   uint32
}

func (p *kittyParser) begin() {
	*p = kittyParser{state: kittyType}
}

func (p *kittyParser) feed(in key.KeyInput) (key.Event, parseStep) {
	if p.state == kittyOff {
		return nil, parsePass
	}

	if p.state == kittyKey && in.IsSpecial(codeKittyEnd) {
		p.state = kittyOff
		k := kittyKeyInput(p.key, p.mods)
		switch p.kind {
		case kittyRelease:
			return key.KeyRelease{Modifiers: p.mods, Key: k}, parseDone
		case kittyRepeat:
			return key.KeyPress{Modifiers: p.mods, Key: k, IsRepeat: true}, parseDone
		default:
			return key.Press(p.mods, k), parseDone
		}
	}

	r, ok := in.Rune()
	if !ok {
		p.state = kittyOff
		return nil, parsePass
	}

	switch p.state {
	case kittyType:
		switch r {
		case 'p':
			p.kind, p.state = kittyPress, kittyModifiers
			return nil, parseConsumed
		case 'r':
			p.kind, p.state = kittyRelease, kittyModifiers
			return nil, parseConsumed
		case 't':
			p.kind, p.state = kittyRepeat, kittyModifiers
			return nil, parseConsumed
		}
	case kittyModifiers:
		if v, ok := base64Value(r); ok {
			p.mods = key.ModifierFromWire(v)
			p.key, p.state = 0, kittyKey
			return nil, parseConsumed
		}
	case kittyKey:
		if v, ok := kittyKeyValue(r); ok {
			p.key = accumulate(p.key, 85, v)
			return nil, parseConsumed
		}
	}

	p.state = kittyOff
	return nil, parsePass
}

// base64Value decodes one character of the standard base64 alphabet.
func base64Value(r rune) (uint32, bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return uint32(r - 'A'), true
	case r >= 'a' && r <= 'z':
		return uint32(r-'a') + 26, true
	case r >= '0' && r <= '9':
		return uint32(r-'0') + 52, true
	case r == '+':
		return 62, true
	case r == '/':
		return 63, true
	}
	return 0, false
}

// kittyKeyValue decodes one character of the base-85 key alphabet.
func kittyKeyValue(r rune) (uint32, bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return uint32(r - 'A'), true
	case r >= 'a' && r <= 'z':
		return uint32(r-'a') + 26, true
	case r >= '0' && r <= '9':
		return uint32(r-'0') + 52, true
	}
	if r < 0x80 {
		if i := strings.IndexRune(kittyPunct, r); i >= 0 {
			return uint32(i) + 62, true
		}
	}
	return 0, false
}

// kittyUnshifted holds keys that only have a table entry without Shift.
var kittyUnshifted = map[uint32]rune{
	1:  '\'',
	2:  ',',
	3:  '-',
	4:  '.',
	5:  '/',
	16: ';',
	17: '=',
	44: '[',
	45: '\\',
	46: ']',
	47: '`',
}

// kittySpecial maps fixed key values to their input regardless of modifiers.
var kittySpecial = map[uint32]key.KeyInput{
	0:  key.Codepoint(' '),
	50: key.Codepoint(0x1b),
	51: key.Codepoint('\n'),
	52: key.Codepoint('\t'),
	53: key.Special(key.KeyBackspace),
	54: key.Special(key.KeyIC),
	55: key.Special(key.KeyDC),
	56: key.Special(key.KeyRight),
	57: key.Special(key.KeyLeft),
	58: key.Special(key.KeyDown),
	59: key.Special(key.KeyUp),
	60: key.Special(key.KeyPPage),
	61: key.Special(key.KeyNPage),
	62: key.Special(key.KeyHome),
	63: key.Special(key.KeyEnd),
}

// kittyKeyInput resolves an accumulated key value.
func kittyKeyInput(v uint32, mods key.Modifier) key.KeyInput {
	shift := mods.HasShift()

	if k, ok := kittySpecial[v]; ok {
		return k
	}
	if !shift {
		if r, ok := kittyUnshifted[v]; ok {
			return key.Codepoint(r)
		}
		if v >= 6 && v <= 15 {
			return key.Codepoint('0' + rune(v-6))
		}
	}

	switch {
	case v >= 18 && v <= 43:
		if shift {
			return key.Codepoint('A' + rune(v-18))
		}
		return key.Codepoint('a' + rune(v-18))
	case v >= 69 && v <= 80:
		return key.Special(key.KeyF(int(v - 68)))
	case v >= 150 && v <= 181:
		if shift {
			return key.Codepoint('А' + rune(v-150))
		}
		return key.Codepoint('а' + rune(v-150))
	case v == 182:
		if shift {
			return key.Codepoint('Ё')
		}
		return key.Codepoint('ё')
	}
	return key.Special(kittyFallbackBase + int(v))
}
