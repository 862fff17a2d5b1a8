package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/terminput/internal/logging"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "TERMINPUT_"

const (
	EnvEscapeDelay     = EnvPrefix + "ESCAPE_DELAY"
	EnvBracketedPaste  = EnvPrefix + "BRACKETED_PASTE"
	EnvModifyOtherKeys = EnvPrefix + "MODIFY_OTHER_KEYS"
	EnvKitty           = EnvPrefix + "KITTY"
	EnvQuitKeys        = EnvPrefix + "QUIT_KEYS"
	EnvFormat          = EnvPrefix + "FORMAT"
)

// ApplyEnv overrides c from the environment. lookup is normally
// os.LookupEnv. Boolean values that do not parse are reported; the logging
// variables follow logging.ApplyEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	if v, ok := lookup(EnvEscapeDelay); ok {
		c.Input.EscapeDelay = strings.TrimSpace(v)
	}
	for name, dst := range map[string]*bool{
		EnvBracketedPaste:  &c.Input.BracketedPaste,
		EnvModifyOtherKeys: &c.Input.ModifyOtherKeys,
		EnvKitty:           &c.Input.Kitty,
	} {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		*dst = b
	}
	if v, ok := lookup(EnvQuitKeys); ok {
		c.Viewer.QuitKeys = splitList(v)
	}
	if v, ok := lookup(EnvFormat); ok {
		c.Viewer.Format = strings.ToLower(strings.TrimSpace(v))
	}

	logging.ApplyEnv(&c.Logging, lookup)
	return errors.Join(errs...)
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
