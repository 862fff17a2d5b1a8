// Package logging builds the zerolog loggers used by terminput.
//
// The viewer owns the terminal while it runs, so console output is only
// used when a caller passes a stream to fall back on; otherwise logs go to
// the configured file or are discarded.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "TERMINPUT_LOG_LEVEL"
	EnvLogNoColor = "TERMINPUT_LOG_NOCOLOR"
	EnvLogFile    = "TERMINPUT_LOG_FILE"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config selects the log level, destination and formatting.
type Config struct {
	Level     string `toml:"level" yaml:"level"`
	File      string `toml:"file" yaml:"file"`
	NoColor   bool   `toml:"no_color" yaml:"no_color"`
	Timestamp bool   `toml:"timestamp" yaml:"timestamp"`
}

// DefaultConfig returns the settings for profile.
func DefaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: "debug", NoColor: true}
	default:
		return Config{Level: "info", Timestamp: true}
	}
}

// ApplyEnv overrides cfg from the TERMINPUT_LOG_* variables. Unparseable
// values are ignored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok {
		if _, valid := ParseLevel(v); valid {
			cfg.Level = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup(EnvLogNoColor); ok {
		if b, valid := parseBool(v); valid {
			cfg.NoColor = b
		}
	}
	if v, ok := lookup(EnvLogFile); ok {
		cfg.File = strings.TrimSpace(v)
	}
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// Open returns a logger for cfg and a function that releases its output.
// Output goes to cfg.File when set, to fallback when it is not nil, and is
// discarded otherwise.
func Open(cfg Config, fallback *os.File) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("opening log file: %w", err)
		}
		return New(cfg, f), f.Close, nil
	}
	if fallback != nil {
		return New(cfg, fallback), noop, nil
	}
	return zerolog.Nop(), noop, nil
}

// New returns a console logger writing to f. Colour is used only when f is
// a terminal and cfg allows it.
func New(cfg Config, f *os.File) zerolog.Logger {
	color := !cfg.NoColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	var out io.Writer
	if color {
		out = colorable.NewColorable(f)
	} else {
		out = colorable.NewNonColorable(f)
	}
	return NewWriter(cfg, out, color)
}

// NewWriter returns a console logger writing to w.
func NewWriter(cfg Config, w io.Writer, color bool) zerolog.Logger {
	level, ok := ParseLevel(cfg.Level)
	if !ok {
		level = zerolog.InfoLevel
	}
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: time.RFC3339,
	}
	ctx := zerolog.New(cw).Level(level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}
