package terminal

import (
	"errors"
	"sort"
	"strings"

	"github.com/dshills/terminput/internal/input/key"
)

// Keymap is a table of escape sequences folded into single key codes. Keys
// may overlap by prefix; matching picks the longest bound sequence.
//
// Keymap is not safe for concurrent use.
type Keymap struct {
	bindings map[string]int
	prefixes map[string]int // strict prefix -> number of bindings extending it
}

// NewKeymap creates an empty keymap.
func NewKeymap() *Keymap {
	return &Keymap{
		bindings: make(map[string]int),
		prefixes: make(map[string]int),
	}
}

// Len returns the number of bindings.
func (k *Keymap) Len() int {
	return len(k.bindings)
}

// Lookup returns the code bound to seq. A sequence that is not bound but
// overlaps a bound one by prefix in either direction reports ErrConflict.
func (k *Keymap) Lookup(seq string) (int, error) {
	if seq == "" {
		return 0, ErrNotDefined
	}
	if code, ok := k.bindings[seq]; ok {
		return code, nil
	}
	if k.prefixes[seq] > 0 {
		return 0, ErrConflict
	}
	for i := 1; i < len(seq); i++ {
		if _, ok := k.bindings[seq[:i]]; ok {
			return 0, ErrConflict
		}
	}
	return 0, ErrNotDefined
}

// Define binds seq to code, replacing any previous binding of seq.
func (k *Keymap) Define(seq string, code int) error {
	if seq == "" || code <= 0 {
		return ErrConflict
	}
	if _, ok := k.bindings[seq]; !ok {
		for i := 1; i < len(seq); i++ {
			k.prefixes[seq[:i]]++
		}
	}
	k.bindings[seq] = code
	return nil
}

// Match reports whether seq is bound (and to what) and whether a longer
// bound sequence starts with seq.
func (k *Keymap) Match(seq string) (code int, exact, more bool) {
	code, exact = k.bindings[seq]
	return code, exact, k.prefixes[seq] > 0
}

// terminfoKeys maps standard terminfo key capabilities to key codes.
var terminfoKeys = map[string]int{
	"kcud1": key.KeyDown,
	"kcuu1": key.KeyUp,
	"kcub1": key.KeyLeft,
	"kcuf1": key.KeyRight,
	"khome": key.KeyHome,
	"kbs":   key.KeyBackspace,
	"kdl1":  key.KeyDL,
	"kil1":  key.KeyIL,
	"kdch1": key.KeyDC,
	"kich1": key.KeyIC,
	"krmir": key.KeyEIC,
	"kclr":  key.KeyClear,
	"ked":   key.KeyEOS,
	"kel":   key.KeyEOL,
	"kind":  key.KeySF,
	"kri":   key.KeySR,
	"knp":   key.KeyNPage,
	"kpp":   key.KeyPPage,
	"khts":  key.KeySTab,
	"kctab": key.KeyCTab,
	"ktbc":  key.KeyCATab,
	"kent":  key.KeyEnter,
	"kprt":  key.KeyPrint,
	"kll":   key.KeyLL,
	"ka1":   key.KeyA1,
	"ka3":   key.KeyA3,
	"kb2":   key.KeyB2,
	"kc1":   key.KeyC1,
	"kc3":   key.KeyC3,
	"kcbt":  key.KeyBTab,
	"kbeg":  key.KeyBeg,
	"kcan":  key.KeyCancel,
	"kclo":  key.KeyClose,
	"kcmd":  key.KeyCommand,
	"kcpy":  key.KeyCopy,
	"kcrt":  key.KeyCreate,
	"kend":  key.KeyEnd,
	"kext":  key.KeyExit,
	"kfnd":  key.KeyFind,
	"khlp":  key.KeyHelp,
	"kmrk":  key.KeyMark,
	"kmsg":  key.KeyMessage,
	"kmov":  key.KeyMove,
	"knxt":  key.KeyNext,
	"kopn":  key.KeyOpen,
	"kopt":  key.KeyOptions,
	"kprv":  key.KeyPrevious,
	"krdo":  key.KeyRedo,
	"kref":  key.KeyReference,
	"krfr":  key.KeyRefresh,
	"krpl":  key.KeyReplace,
	"krst":  key.KeyRestart,
	"kres":  key.KeyResume,
	"ksav":  key.KeySave,
	"kBEG":  key.KeySBeg,
	"kCAN":  key.KeySCancel,
	"kCMD":  key.KeySCommand,
	"kCPY":  key.KeySCopy,
	"kCRT":  key.KeySCreate,
	"kDC":   key.KeySDC,
	"kDL":   key.KeySDL,
	"kslt":  key.KeySelect,
	"kEND":  key.KeySEnd,
	"kEOL":  key.KeySEOL,
	"kEXT":  key.KeySExit,
	"kFND":  key.KeySFind,
	"kHLP":  key.KeySHelp,
	"kHOM":  key.KeySHome,
	"kIC":   key.KeySIC,
	"kLFT":  key.KeySLeft,
	"kMSG":  key.KeySMessage,
	"kMOV":  key.KeySMove,
	"kNXT":  key.KeySNext,
	"kOPT":  key.KeySOptions,
	"kPRV":  key.KeySPrevious,
	"kPRT":  key.KeySPrint,
	"kRDO":  key.KeySRedo,
	"kRPL":  key.KeySReplace,
	"kRIT":  key.KeySRight,
	"kRES":  key.KeySResume,
	"kSAV":  key.KeySSave,
	"kSPD":  key.KeySSuspend,
	"kUND":  key.KeySUndo,
	"kspd":  key.KeySuspend,
	"kund":  key.KeyUndo,
}

// LoadKeys binds the key capabilities found in caps. Standard capabilities
// get their curses codes, function keys kf0..kf63 get KeyF(n), and
// extended capabilities whose names start with "k" receive codes above
// key.KeyMax in name order. Empty strings are skipped. It returns the number
// of bindings added.
func (k *Keymap) LoadKeys(caps map[string]string, extended []string) int {
	std := make([]string, 0, len(caps))
	for name := range caps {
		std = append(std, name)
	}
	sort.Strings(std)

	added := 0
	for _, name := range std {
		seq := caps[name]
		if seq == "" {
			continue
		}
		code, ok := terminfoKeys[name]
		if !ok {
			code, ok = functionKey(name)
		}
		if !ok {
			continue
		}
		if _, err := k.Lookup(seq); errors.Is(err, ErrNotDefined) {
			_ = k.Define(seq, code)
			added++
		}
	}

	names := make([]string, 0, len(extended))
	for _, name := range extended {
		if strings.HasPrefix(name, "k") && caps[name] != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	next := key.KeyMax + 1
	for _, name := range names {
		if _, err := k.Lookup(caps[name]); errors.Is(err, ErrNotDefined) {
			_ = k.Define(caps[name], next)
			added++
		}
		next++
	}
	return added
}

// functionKey parses "kf<n>" capability names.
func functionKey(name string) (int, bool) {
	if !strings.HasPrefix(name, "kf") || len(name) < 3 || len(name) > 4 {
		return 0, false
	}
	n := 0
	for _, c := range name[2:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n > 63 {
		return 0, false
	}
	return key.KeyF(n), true
}
