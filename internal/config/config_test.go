package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/terminput/internal/input/key"
	"github.com/dshills/terminput/internal/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if d, _ := cfg.Input.Delay(); d != 25*time.Millisecond {
		t.Errorf("default escape delay = %v, want 25ms", d)
	}
	if !cfg.Input.BracketedPaste || !cfg.Input.ModifyOtherKeys || !cfg.Input.Kitty {
		t.Errorf("protocols should default on, got %+v", cfg.Input)
	}
	keys, err := cfg.Viewer.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	want := []key.KeyPress{
		key.Press(key.ModCtrl, key.Codepoint('c')),
		key.Press(key.ModCtrl, key.Codepoint('q')),
	}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("quit keys = %v, want %v", keys, want)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[input]
escape_delay = "40ms"
kitty = false

[logging]
level = "debug"

[viewer]
quit_keys = ["<C-x>"]
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Input.EscapeDelay != "40ms" || cfg.Input.Kitty {
		t.Errorf("input = %+v", cfg.Input)
	}
	if !cfg.Input.BracketedPaste || !cfg.Input.ModifyOtherKeys {
		t.Errorf("unset settings should keep defaults, got %+v", cfg.Input)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Timestamp {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Viewer.Format != FormatJSON || len(cfg.Viewer.QuitKeys) != 1 {
		t.Errorf("viewer = %+v", cfg.Viewer)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
input:
  bracketed_paste: false
  modify_other_keys: false
viewer:
  quit_keys: [Ctrl+D]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Input.BracketedPaste || cfg.Input.ModifyOtherKeys || !cfg.Input.Kitty {
		t.Errorf("input = %+v", cfg.Input)
	}
	if len(cfg.Viewer.QuitKeys) != 1 || cfg.Viewer.QuitKeys[0] != "Ctrl+D" {
		t.Errorf("quit keys = %v", cfg.Viewer.QuitKeys)
	}
	if cfg.Viewer.Format != FormatText {
		t.Errorf("format = %q, want default", cfg.Viewer.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Input.EscapeDelay != Default().Input.EscapeDelay {
		t.Errorf("missing file should give defaults, got %+v", cfg)
	}
	if _, err := Load(""); err != nil {
		t.Errorf("Load(\"\") error = %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("toml syntax", func(t *testing.T) {
		path := writeFile(t, "bad.toml", "[input]\nkitty = \n")
		_, err := Load(path)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Load() error = %v, want *ParseError", err)
		}
		if pe.Path != path || pe.Line == 0 {
			t.Errorf("ParseError = %+v, want a line in %s", pe, path)
		}
	})

	t.Run("yaml type", func(t *testing.T) {
		path := writeFile(t, "bad.yml", "input:\n  kitty: [1, 2]\n")
		_, err := Load(path)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Load() error = %v, want *ParseError", err)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := writeFile(t, "config.ini", "kitty=false")
		if _, err := Load(path); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("Load() error = %v, want ErrUnknownFormat", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad delay", func(c *Config) { c.Input.EscapeDelay = "soon" }, "input.escape_delay"},
		{"negative delay", func(c *Config) { c.Input.EscapeDelay = "-5ms" }, "input.escape_delay"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Viewer.Format = "xml" }, "viewer.format"},
		{"bad quit key", func(c *Config) { c.Viewer.QuitKeys = []string{"Hyper+x"} }, "viewer.quit_keys"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("Validate() error = %v, want ErrInvalidValue", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvEscapeDelay:        "100ms",
		EnvKitty:              "false",
		EnvBracketedPaste:     "0",
		EnvQuitKeys:           "Ctrl+X, <C-g>,",
		EnvFormat:             "JSON",
		logging.EnvLogLevel:   "warn",
		logging.EnvLogFile:    "/tmp/terminput.log",
		logging.EnvLogNoColor: "1",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Input.EscapeDelay != "100ms" || cfg.Input.Kitty || cfg.Input.BracketedPaste || !cfg.Input.ModifyOtherKeys {
		t.Errorf("input = %+v", cfg.Input)
	}
	if got := cfg.Viewer.QuitKeys; len(got) != 2 || got[0] != "Ctrl+X" || got[1] != "<C-g>" {
		t.Errorf("quit keys = %q", got)
	}
	if cfg.Viewer.Format != FormatJSON {
		t.Errorf("format = %q", cfg.Viewer.Format)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.File != "/tmp/terminput.log" || !cfg.Logging.NoColor {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg = Default()
	err = cfg.ApplyEnv(envMap(map[string]string{EnvModifyOtherKeys: "sometimes"}))
	if err == nil || !strings.Contains(err.Error(), EnvModifyOtherKeys) {
		t.Errorf("ApplyEnv() error = %v, want mention of %s", err, EnvModifyOtherKeys)
	}
	if !cfg.Input.ModifyOtherKeys {
		t.Error("unparseable value should leave the setting unchanged")
	}
}

func TestStreamOptions(t *testing.T) {
	cfg := Default()
	if got := len(cfg.StreamOptions()); got != 4 {
		t.Errorf("len(StreamOptions()) = %d, want 4", got)
	}
	cfg.Input.EscapeDelay = "never"
	if got := len(cfg.StreamOptions()); got != 3 {
		t.Errorf("len(StreamOptions()) with bad delay = %d, want 3", got)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")
	path, err := DefaultPath()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("terminput", "config.toml")) {
		t.Errorf("DefaultPath() = %q", path)
	}
}
