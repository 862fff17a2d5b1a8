package stream

import (
	"errors"
	"fmt"
)

// ErrInvalidScalar is matched by every DecodeError.
var ErrInvalidScalar = errors.New("invalid unicode scalar value")

// DecodeError reports a reconstructed character value that is not a Unicode
// scalar value (a surrogate or a value above U+10FFFF). It is not fatal: the
// stream is ready for the next NextEvent call.
type DecodeError struct {
	Value uint32
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding input: 0x%X is not a valid scalar value", e.Value)
}

// Unwrap returns ErrInvalidScalar.
func (e *DecodeError) Unwrap() error {
	return ErrInvalidScalar
}

// IsFatal reports whether err ends the stream. Decode errors are recoverable;
// every other error comes from the terminal backend and is fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var de *DecodeError
	return !errors.As(err, &de)
}
