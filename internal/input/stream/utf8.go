package stream

import "unicode/utf8"

type utf8Result uint8

const (
	utf8More    utf8Result = iota // sequence incomplete
	utf8Rune                      // code point complete
	utf8Byte                      // byte cannot be decoded, pass it through
	utf8Invalid                   // complete but not a scalar value
)

// utf8Decoder reassembles code points from bytes fed one at a time.
type utf8Decoder struct {
	accum     uint32
	remaining int
}

// feed consumes one byte. For utf8Rune it returns the code point, for
// utf8Invalid the offending value.
//
// A byte that interrupts a sequence drops the partial sequence. An ASCII
// byte is then passed through as a raw byte; a lead byte starts a new
// sequence.
func (d *utf8Decoder) feed(b byte) (uint32, utf8Result) {
	if d.remaining > 0 && b>>6 != 0b10 {
		d.accum, d.remaining = 0, 0
		if b>>7 == 0 {
			return 0, utf8Byte
		}
	}
	if d.remaining > 0 {
		d.accum = d.accum<<6 | uint32(b&0x3f)
		d.remaining--
	} else {
		switch {
		case b>>7 == 0:
			d.accum, d.remaining = uint32(b), 0
		case b>>5 == 0b110:
			d.accum, d.remaining = uint32(b&0x1f), 1
		case b>>4 == 0b1110:
			d.accum, d.remaining = uint32(b&0x0f), 2
		case b>>3 == 0b11110:
			d.accum, d.remaining = uint32(b&0x07), 3
		default:
			return 0, utf8Byte
		}
	}

	if d.remaining > 0 {
		return 0, utf8More
	}
	v := d.accum
	d.accum = 0
	if !utf8.ValidRune(rune(v)) {
		return v, utf8Invalid
	}
	return v, utf8Rune
}
