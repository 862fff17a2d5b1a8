package stream

import (
	"fmt"
	"sync"

	"github.com/dshills/terminput/internal/terminal"
)

// Protocol identifies an optional terminal input protocol.
type Protocol uint8

const (
	// BracketedPaste wraps pasted text in begin and end markers.
	BracketedPaste Protocol = iota + 1
	// ModifyOtherKeys is XTerm's modifyOtherKeys mode 2.
	ModifyOtherKeys
	// KittyFullMode is the Kitty full keyboard mode.
	KittyFullMode
)

func (p Protocol) String() string {
	switch p {
	case BracketedPaste:
		return "bracketed-paste"
	case ModifyOtherKeys:
		return "modify-other-keys"
	case KittyFullMode:
		return "kitty-full-mode"
	default:
		return fmt.Sprintf("Protocol(%d)", uint8(p))
	}
}

// Private key codes reserved for protocol sequences.
const (
	codePasteBegin = 2000
	codePasteEnd   = 2001
	codeXTermEntry = 2100
	codeKittyEntry = 2200
	codeKittyEnd   = 2201
)

type reservation struct {
	seq  string
	code int
}

// protocolSpec describes how to switch a protocol on and off.
type protocolSpec struct {
	protocol     Protocol
	reservations []reservation
	enable       string
	disable      string
}

var protocolSpecs = []protocolSpec{
	{
		protocol: BracketedPaste,
		reservations: []reservation{
			{"\x1b[200~", codePasteBegin},
			{"\x1b[201~", codePasteEnd},
		},
		enable:  "\x1b[?2004h",
		disable: "\x1b[?2004l",
	},
	{
		protocol: ModifyOtherKeys,
		reservations: []reservation{
			{"\x1b[27;", codeXTermEntry},
		},
		enable:  "\x1b[>4;2m",
		disable: "\x1b[>4n",
	},
	{
		protocol: KittyFullMode,
		reservations: []reservation{
			{"\x1b_K", codeKittyEntry},
			{"\x1b\\", codeKittyEnd},
		},
		enable:  "\x1b[?2017h",
		disable: "\x1b[?2017l",
	},
}

// Guard records that a protocol's enable sequence was sent. Release sends
// the matching disable sequence once.
type Guard struct {
	protocol Protocol
	disable  string
	backend  terminal.Backend

	once sync.Once
	err  error
}

// Protocol returns the protocol the guard holds.
func (g *Guard) Protocol() Protocol {
	return g.protocol
}

// Release writes the disable sequence. Later calls return the first result.
func (g *Guard) Release() error {
	g.once.Do(func() {
		if err := g.backend.WriteRaw([]byte(g.disable)); err != nil {
			g.err = fmt.Errorf("disabling %s: %w", g.protocol, err)
		}
	})
	return g.err
}
