// Package config loads terminput settings from a TOML or YAML file and the
// TERMINPUT_* environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/terminput/internal/input/key"
	"github.com/dshills/terminput/internal/input/stream"
	"github.com/dshills/terminput/internal/logging"
)

// Output formats for the event viewer.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the complete terminput configuration.
type Config struct {
	Input   Input          `toml:"input" yaml:"input"`
	Logging logging.Config `toml:"logging" yaml:"logging"`
	Viewer  Viewer         `toml:"viewer" yaml:"viewer"`
}

// Input controls capability negotiation.
type Input struct {
	// EscapeDelay is a Go duration string, used when ESCDELAY is unset.
	EscapeDelay     string `toml:"escape_delay" yaml:"escape_delay"`
	BracketedPaste  bool   `toml:"bracketed_paste" yaml:"bracketed_paste"`
	ModifyOtherKeys bool   `toml:"modify_other_keys" yaml:"modify_other_keys"`
	Kitty           bool   `toml:"kitty" yaml:"kitty"`
}

// Viewer controls the keyview command.
type Viewer struct {
	// QuitKeys are key specs such as "Ctrl+C" or "<C-q>".
	QuitKeys []string `toml:"quit_keys" yaml:"quit_keys"`
	Format   string   `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Input: Input{
			EscapeDelay:     stream.DefaultEscapeDelay.String(),
			BracketedPaste:  true,
			ModifyOtherKeys: true,
			Kitty:           true,
		},
		Logging: logging.DefaultConfig(logging.ProfileRuntime),
		Viewer: Viewer{
			QuitKeys: []string{"Ctrl+C", "Ctrl+Q"},
			Format:   FormatText,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "terminput", "config.toml"), nil
}

// Load reads path over the defaults. The format follows the extension
// (.toml, .yaml or .yml). A missing file or empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = parseTOML(path, data, &cfg)
	case ".yaml", ".yml":
		err = parseYAML(path, data, &cfg)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}

func parseTOML(path string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		pe := &ParseError{Path: path, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

func parseYAML(path string, data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Input.Delay(); err != nil {
		errs = append(errs, err)
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		errs = append(errs, invalid("logging.level", "unknown level %q", c.Logging.Level))
	}
	switch c.Viewer.Format {
	case FormatText, FormatJSON:
	default:
		errs = append(errs, invalid("viewer.format", "want %q or %q, got %q", FormatText, FormatJSON, c.Viewer.Format))
	}
	if _, err := c.Viewer.Keys(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Delay parses EscapeDelay.
func (in Input) Delay() (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(in.EscapeDelay))
	if err != nil {
		return 0, invalid("input.escape_delay", "%v", err)
	}
	if d < 0 {
		return 0, invalid("input.escape_delay", "negative delay %v", d)
	}
	return d, nil
}

// Keys parses QuitKeys.
func (v Viewer) Keys() ([]key.KeyPress, error) {
	keys, err := key.ParseAll(v.QuitKeys)
	if err != nil {
		return nil, invalid("viewer.quit_keys", "%v", err)
	}
	return keys, nil
}

// StreamOptions converts the input section to stream options. An invalid
// escape delay leaves the stream default in place.
func (c Config) StreamOptions() []stream.Option {
	opts := []stream.Option{
		stream.WithBracketedPaste(c.Input.BracketedPaste),
		stream.WithModifyOtherKeys(c.Input.ModifyOtherKeys),
		stream.WithKitty(c.Input.Kitty),
	}
	if d, err := c.Input.Delay(); err == nil {
		opts = append(opts, stream.WithEscapeDelay(d))
	}
	return opts
}
