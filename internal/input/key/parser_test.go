package key

import (
	"errors"
	"testing"
)

func TestParseSingleCharacter(t *testing.T) {
	tests := []struct {
		spec string
		want KeyPress
	}{
		{"a", Press(ModNone, Codepoint('a'))},
		{"A", Press(ModNone, Codepoint('A'))},
		{"1", Press(ModNone, Codepoint('1'))},
		{"@", Press(ModNone, Codepoint('@'))},
		{"+", Press(ModNone, Codepoint('+'))},
		{"<", Press(ModNone, Codepoint('<'))},
		{"ж", Press(ModNone, Codepoint('ж'))},
	}

	for _, tt := range tests {
		got, err := Parse(tt.spec)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestParseNamedKeys(t *testing.T) {
	tests := []struct {
		spec string
		want KeyInput
	}{
		{"Enter", Codepoint('\n')},
		{"escape", Codepoint(0x1b)},
		{"Tab", Codepoint('\t')},
		{"Space", Codepoint(' ')},
		{"Backspace", Special(KeyBackspace)},
		{"Delete", Special(KeyDC)},
		{"Up", Special(KeyUp)},
		{"PageDown", Special(KeyNPage)},
		{"F5", Special(KeyF(5))},
	}

	for _, tt := range tests {
		got, err := Parse(tt.spec)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.spec, err)
			continue
		}
		if got.Key != tt.want || got.Modifiers != ModNone {
			t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestParseModifierStyle(t *testing.T) {
	tests := []struct {
		spec string
		want KeyPress
	}{
		{"Ctrl+C", Press(ModCtrl, Codepoint('c'))},
		{"ctrl+q", Press(ModCtrl, Codepoint('q'))},
		{"Alt+Up", Press(ModAlt, Special(KeyUp))},
		{"Shift+Tab", Press(ModShift, Codepoint('\t'))},
		{"Ctrl+Shift+z", Press(ModCtrl|ModShift, Codepoint('z'))},
		{"Ctrl+Alt+Delete", Press(ModCtrl|ModAlt, Special(KeyDC))},
		{"Ctrl++", Press(ModCtrl, Codepoint('+'))},
		{"Ctrl+Space", Press(ModCtrl, Codepoint(' '))},
	}

	for _, tt := range tests {
		got, err := Parse(tt.spec)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestParseVimStyle(t *testing.T) {
	tests := []struct {
		spec string
		want KeyPress
	}{
		{"<C-q>", Press(ModCtrl, Codepoint('q'))},
		{"<C-Q>", Press(ModCtrl, Codepoint('q'))},
		{"<A-x>", Press(ModAlt, Codepoint('x'))},
		{"<M-x>", Press(ModAlt, Codepoint('x'))},
		{"<S-Tab>", Press(ModShift, Codepoint('\t'))},
		{"<CR>", Press(ModNone, Codepoint('\n'))},
		{"<Esc>", Press(ModNone, Codepoint(0x1b))},
		{"<C-->", Press(ModCtrl, Codepoint('-'))},
		{"<C-A-Del>", Press(ModCtrl|ModAlt, Special(KeyDC))},
	}

	for _, tt := range tests {
		got, err := Parse(tt.spec)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"<C-q", ErrUnmatchedBracket},
		{"<>", ErrUnmatchedBracket},
		{"<X-q>", ErrInvalidSpec},
		{"Hyper+q", ErrInvalidSpec},
		{"Ctrl+", ErrInvalidSpec},
		{"Ctrl+NotAKey", ErrInvalidSpec},
		{"abc", ErrInvalidSpec},
	}

	for _, tt := range tests {
		_, err := Parse(tt.spec)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Parse(%q) error = %v, want %v", tt.spec, err, tt.wantErr)
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on an invalid spec")
		}
	}()
	MustParse("Hyper+q")
}

func TestParseAll(t *testing.T) {
	got, err := ParseAll([]string{"Ctrl+C", "<C-q>"})
	if err != nil {
		t.Fatalf("ParseAll error = %v", err)
	}
	if len(got) != 2 || got[0] != Press(ModCtrl, Codepoint('c')) || got[1] != Press(ModCtrl, Codepoint('q')) {
		t.Errorf("ParseAll = %v", got)
	}

	if _, err := ParseAll([]string{"Ctrl+C", ""}); !errors.Is(err, ErrEmptySpec) {
		t.Errorf("ParseAll error = %v, want ErrEmptySpec", err)
	}
}
