package stream

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultEscapeDelay is the escape delay set when the environment does not
// provide ESCDELAY.
const DefaultEscapeDelay = 25 * time.Millisecond

type options struct {
	logger          zerolog.Logger
	bracketedPaste  bool
	modifyOtherKeys bool
	kitty           bool
	escapeDelay     time.Duration
}

func defaultOptions() options {
	return options{
		logger:          zerolog.Nop(),
		bracketedPaste:  true,
		modifyOtherKeys: true,
		kitty:           true,
		escapeDelay:     DefaultEscapeDelay,
	}
}

// Option configures a Stream.
type Option func(*options)

// WithLogger sets the logger used for negotiation and protocol diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBracketedPaste allows or forbids enabling bracketed paste.
func WithBracketedPaste(on bool) Option {
	return func(o *options) {
		o.bracketedPaste = on
	}
}

// WithModifyOtherKeys allows or forbids enabling XTerm modifyOtherKeys.
func WithModifyOtherKeys(on bool) Option {
	return func(o *options) {
		o.modifyOtherKeys = on
	}
}

// WithKitty allows or forbids enabling the Kitty full keyboard mode.
func WithKitty(on bool) Option {
	return func(o *options) {
		o.kitty = on
	}
}

// WithEscapeDelay sets the escape delay used when ESCDELAY is not set.
func WithEscapeDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.escapeDelay = d
		}
	}
}
