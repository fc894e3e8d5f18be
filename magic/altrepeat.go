// Package magic holds the layout behaviour bound to the alternate repeat
// key: the alternate keycode table, the macros it can produce and the caps
// word rules.
package magic

import "github.com/neuroplastio/neio-keycore/keycode"

// AltRepeat returns the alternate of the last keycode given the mods that
// were active when it was pressed. KC_TRNS means no alternate.
func AltRepeat(code keycode.Keycode, mods uint8) keycode.Keycode {
	if mods == keycode.ModLAlt {
		switch code {
		case keycode.KC_U:
			return keycode.LALT(keycode.KC_O)
		case keycode.KC_O:
			return keycode.LALT(keycode.KC_U)
		case keycode.KC_N:
			return keycode.LALT(keycode.KC_I)
		case keycode.KC_I:
			return keycode.LALT(keycode.KC_N)
		}
		return keycode.KC_TRNS
	}
	if mods&^keycode.ModMaskShift != 0 {
		return keycode.KC_TRNS
	}
	shifted := mods&keycode.ModMaskShift != 0

	switch code {
	case keycode.KC_SPC, keycode.KC_ENT, keycode.KC_TAB:
		return keycode.M_THE

	// Vim search direction.
	case keycode.KC_N:
		if !shifted {
			return keycode.LSFT(keycode.KC_N)
		}
		return keycode.KC_N

	case keycode.KC_A:
		return keycode.KC_O
	case keycode.KC_O:
		return keycode.KC_A
	case keycode.KC_E:
		return keycode.KC_U
	case keycode.KC_U:
		return keycode.KC_E
	case keycode.KC_I:
		if !shifted {
			return keycode.M_ION
		}
		return keycode.KC_QUOT
	case keycode.KC_M:
		return keycode.M_MENT
	case keycode.KC_Q:
		return keycode.M_QUEN
	case keycode.KC_T:
		return keycode.M_TMENT

	case keycode.KC_C, keycode.KC_D, keycode.KC_G, keycode.KC_P:
		return keycode.KC_Y
	case keycode.KC_Y:
		return keycode.KC_P
	case keycode.KC_L, keycode.KC_S:
		return keycode.KC_K
	case keycode.KC_R:
		return keycode.KC_L

	case keycode.KC_DOT:
		if !shifted {
			return keycode.M_UPDIR
		}
		return keycode.M_NOOP
	case keycode.KC_HASH:
		return keycode.M_INCLUDE
	case keycode.KC_AMPR:
		return keycode.M_NBSP
	case keycode.KC_EQL:
		return keycode.M_EQEQ
	case keycode.KC_RBRC:
		return keycode.KC_SCLN
	case keycode.KC_COMM:
		if shifted {
			return keycode.KC_EQL
		}
		return keycode.M_NOOP
	case keycode.KC_QUOT:
		if shifted {
			return keycode.M_DOCSTR
		}
		return keycode.M_NOOP
	case keycode.KC_GRV:
		return keycode.M_MKGRVS
	case keycode.KC_LABK:
		return keycode.KC_MINS
	case keycode.KC_SLSH:
		return keycode.KC_SLSH

	case keycode.KC_PLUS, keycode.KC_MINS, keycode.KC_ASTR, keycode.KC_PERC,
		keycode.KC_PIPE, keycode.KC_CIRC, keycode.KC_TILD, keycode.KC_EXLM,
		keycode.KC_DLR, keycode.KC_RABK, keycode.KC_LPRN, keycode.KC_RPRN,
		keycode.KC_UNDS, keycode.KC_COLN:
		return keycode.KC_EQL

	case keycode.KC_F, keycode.KC_V, keycode.KC_X, keycode.KC_SCLN:
		return keycode.M_NOOP
	}
	if code >= keycode.KC_1 && code <= keycode.KC_0 {
		return keycode.M_NOOP
	}
	return keycode.KC_TRNS
}

// Repeater remembers the last key for the repeat and alternate repeat keys.
type Repeater struct {
	last keycode.Keycode
	mods uint8
}

// Remember records a key press. Repeat keys themselves must not be
// remembered.
func (r *Repeater) Remember(code keycode.Keycode, mods uint8) {
	r.last = code
	r.mods = mods
}

// SetLast replaces the remembered keycode and keeps the mods.
func (r *Repeater) SetLast(code keycode.Keycode) {
	r.last = code
}

func (r *Repeater) Last() (keycode.Keycode, uint8) {
	return r.last, r.mods
}

// Alternate returns the alternate of the remembered key.
func (r *Repeater) Alternate() keycode.Keycode {
	if r.last == keycode.KC_NO {
		return keycode.KC_TRNS
	}
	return AltRepeat(r.last, r.mods)
}

// AfterAlternate runs once the alternate repeat produced code. A vowel
// typed with no mods other than shift makes the next repeat type N, so
// "D * @" gives "dyn" and "O * @" gives "oan".
func (r *Repeater) AfterAlternate(code keycode.Keycode, mods uint8) {
	if mods&^keycode.ModMaskShift != 0 {
		return
	}
	switch code {
	case keycode.KC_A, keycode.KC_E, keycode.KC_I, keycode.KC_O, keycode.KC_U, keycode.KC_Y:
		r.last = keycode.KC_N
		r.mods = 0
	}
}
