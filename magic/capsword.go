package magic

import "github.com/neuroplastio/neio-keycore/keycode"

// CapsWordPress decides what a key press does to an active caps word.
// Letters continue it shifted, digits, deletion, underscore and the word
// macros continue it unshifted, anything else ends it.
func CapsWordPress(code keycode.Keycode) (continues bool, shifted bool) {
	switch {
	case code >= keycode.KC_A && code <= keycode.KC_Z:
		return true, true
	case code >= keycode.KC_1 && code <= keycode.KC_0:
		return true, false
	}
	switch code {
	case keycode.KC_BSPC, keycode.KC_DEL, keycode.KC_UNDS,
		keycode.M_THE, keycode.M_ION, keycode.M_MENT, keycode.M_QUEN, keycode.M_TMENT:
		return true, false
	}
	return false, false
}

// CapsWord tracks the caps word toggle.
type CapsWord struct {
	on bool
}

func (c *CapsWord) Toggle() bool {
	c.on = !c.on
	return c.on
}

func (c *CapsWord) On() bool {
	return c.on
}

// Press applies a key press and reports whether the key should get a weak
// shift. Modifiers and their one-shot keys never end caps word.
func (c *CapsWord) Press(code keycode.Keycode) bool {
	if !c.on || code.IsModifier() || code.IsOneShot() || code.IsLayer() {
		return false
	}
	continues, shifted := CapsWordPress(code)
	if !continues {
		c.on = false
		return false
	}
	return shifted
}
