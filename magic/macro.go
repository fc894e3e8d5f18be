package magic

import (
	"fmt"

	"github.com/neuroplastio/neio-keycore/keycode"
)

// Expansion is what a macro keycode types.
type Expansion struct {
	// Text is typed first, then Then is tapped.
	Text string
	Then []keycode.Keycode
	// Repeat replaces the remembered key after the macro. KC_NO leaves it.
	Repeat keycode.Keycode
	// CapsWord holds shift for the whole expansion while caps word is on.
	CapsWord bool
}

var expansions = map[keycode.Keycode]Expansion{
	keycode.M_THE:   {Text: "the", Repeat: keycode.KC_N, CapsWord: true},
	keycode.M_ION:   {Text: "on", Repeat: keycode.KC_S, CapsWord: true},
	keycode.M_MENT:  {Text: "ent", Repeat: keycode.KC_S, CapsWord: true},
	keycode.M_QUEN:  {Text: "uen", Repeat: keycode.KC_C, CapsWord: true},
	keycode.M_TMENT: {Text: "ment", Repeat: keycode.KC_S, CapsWord: true},
	keycode.M_UPDIR: {Text: "./", Repeat: keycode.UPDIR, CapsWord: true},

	keycode.M_INCLUDE: {Text: "include "},
	keycode.M_EQEQ:    {Text: "=="},
	keycode.M_NBSP:    {Text: "nbsp;"},
	keycode.UPDIR:     {Text: "../"},
	keycode.M_DOCSTR: {
		Text: `"""""`,
		Then: []keycode.Keycode{keycode.KC_LEFT, keycode.KC_LEFT, keycode.KC_LEFT},
	},
	keycode.M_MKGRVS: {
		Text: "``\n\n```",
		Then: []keycode.Keycode{keycode.KC_UP},
	},
	keycode.M_NOOP: {},
}

// Expand returns the expansion of a macro keycode.
func Expand(code keycode.Keycode) (Expansion, bool) {
	e, ok := expansions[code]
	return e, ok
}

// Tap is one key tap of an expansion.
type Tap struct {
	Code  keycode.Keycode
	Shift bool
}

// Taps converts the expansion into key taps on a US layout.
func (e Expansion) Taps() ([]Tap, error) {
	taps := make([]Tap, 0, len(e.Text)+len(e.Then))
	for _, r := range e.Text {
		code, shift, err := CharKey(r)
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", e.Text, err)
		}
		taps = append(taps, Tap{Code: code, Shift: shift})
	}
	for _, code := range e.Then {
		taps = append(taps, Tap{Code: code})
	}
	return taps, nil
}
