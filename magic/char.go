package magic

import (
	"fmt"

	"github.com/neuroplastio/neio-keycore/keycode"
)

var charKeys = map[rune]keycode.Keycode{
	'-':  keycode.KC_MINS,
	'=':  keycode.KC_EQL,
	'[':  keycode.KC_LBRC,
	']':  keycode.KC_RBRC,
	'\\': keycode.KC_BSLS,
	';':  keycode.KC_SCLN,
	'\'': keycode.KC_QUOT,
	',':  keycode.KC_COMM,
	'.':  keycode.KC_DOT,
	'/':  keycode.KC_SLSH,
	'`':  keycode.KC_GRV,

	' ':  keycode.KC_SPC,
	'\n': keycode.KC_ENT,
	'\t': keycode.KC_TAB,
}

var charKeysShifted = map[rune]keycode.Keycode{
	'_': keycode.KC_MINS,
	'+': keycode.KC_EQL,
	'{': keycode.KC_LBRC,
	'}': keycode.KC_RBRC,
	'|': keycode.KC_BSLS,
	':': keycode.KC_SCLN,
	'"': keycode.KC_QUOT,
	'<': keycode.KC_COMM,
	'>': keycode.KC_DOT,
	'?': keycode.KC_SLSH,
	'~': keycode.KC_GRV,

	'!': keycode.KC_1,
	'@': keycode.KC_2,
	'#': keycode.KC_3,
	'$': keycode.KC_4,
	'%': keycode.KC_5,
	'^': keycode.KC_6,
	'&': keycode.KC_7,
	'*': keycode.KC_8,
	'(': keycode.KC_9,
	')': keycode.KC_0,
}

// CharKey maps one ASCII character to a key on a US layout and reports
// whether it needs shift.
func CharKey(r rune) (keycode.Keycode, bool, error) {
	if code, ok := charKeys[r]; ok {
		return code, false, nil
	}
	if code, ok := charKeysShifted[r]; ok {
		return code, true, nil
	}
	switch {
	case r >= 'a' && r <= 'z':
		return keycode.KC_A + keycode.Keycode(r-'a'), false, nil
	case r >= 'A' && r <= 'Z':
		return keycode.KC_A + keycode.Keycode(r-'A'), true, nil
	case r == '0':
		return keycode.KC_0, false, nil
	case r >= '1' && r <= '9':
		return keycode.KC_1 + keycode.Keycode(r-'1'), false, nil
	}
	return keycode.KC_NO, false, fmt.Errorf("unsupported character: %q", r)
}
