// Package keycode defines the 16-bit keycodes processed by the engine.
//
// Values below 0x0100 are HID keyboard page usages plus the system and
// consumer pseudo keys. 0x0100-0x1FFF are modded keycodes: a basic key in the
// low byte and a five bit modifier mask in bits 8-12. Custom keycodes start at
// SafeRange and are laid out in fixed bands that the dispatcher routes on.
package keycode

import "fmt"

type Keycode uint16

const (
	KC_NO   Keycode = 0x0000
	KC_TRNS Keycode = 0x0001
)

// Basic keys.
const (
	KC_A Keycode = 0x04 + iota
	KC_B
	KC_C
	KC_D
	KC_E
	KC_F
	KC_G
	KC_H
	KC_I
	KC_J
	KC_K
	KC_L
	KC_M
	KC_N
	KC_O
	KC_P
	KC_Q
	KC_R
	KC_S
	KC_T
	KC_U
	KC_V
	KC_W
	KC_X
	KC_Y
	KC_Z
	KC_1
	KC_2
	KC_3
	KC_4
	KC_5
	KC_6
	KC_7
	KC_8
	KC_9
	KC_0
	KC_ENT
	KC_ESC
	KC_BSPC
	KC_TAB
	KC_SPC
	KC_MINS
	KC_EQL
	KC_LBRC
	KC_RBRC
	KC_BSLS
	KC_NUHS
	KC_SCLN
	KC_QUOT
	KC_GRV
	KC_COMM
	KC_DOT
	KC_SLSH
	KC_CAPS
	KC_F1
	KC_F2
	KC_F3
	KC_F4
	KC_F5
	KC_F6
	KC_F7
	KC_F8
	KC_F9
	KC_F10
	KC_F11
	KC_F12
	KC_PSCR
	KC_SCRL
	KC_PAUS
	KC_INS
	KC_HOME
	KC_PGUP
	KC_DEL
	KC_END
	KC_PGDN
	KC_RGHT
	KC_LEFT
	KC_DOWN
	KC_UP
	KC_NUM
)

const (
	KC_APP Keycode = 0x65
)

// System and consumer pseudo keys. They never appear in keyboard reports,
// the firmware translates them to extra reports.
const (
	KC_SYSTEM_POWER Keycode = 0xA5 + iota
	KC_SYSTEM_SLEEP
	KC_SYSTEM_WAKE
	KC_AUDIO_MUTE
	KC_AUDIO_VOL_UP
	KC_AUDIO_VOL_DOWN
	KC_MEDIA_NEXT_TRACK
	KC_MEDIA_PREV_TRACK
	KC_MEDIA_STOP
	KC_MEDIA_PLAY_PAUSE
	KC_MEDIA_SELECT
	KC_MEDIA_EJECT
	KC_MAIL
	KC_CALCULATOR
	KC_MY_COMPUTER
	KC_WWW_SEARCH
	KC_WWW_HOME
	KC_WWW_BACK
	KC_WWW_FORWARD
	KC_WWW_STOP
	KC_WWW_REFRESH
	KC_WWW_FAVORITES
	KC_MEDIA_FAST_FORWARD
	KC_MEDIA_REWIND
	KC_BRIGHTNESS_UP
	KC_BRIGHTNESS_DOWN
	KC_CONTROL_PANEL
	KC_ASSISTANT
	KC_MISSION_CONTROL
	KC_LAUNCHPAD
)

const (
	SystemMin   = KC_SYSTEM_POWER
	SystemMax   = KC_SYSTEM_WAKE
	ConsumerMin = KC_AUDIO_MUTE
	ConsumerMax = KC_LAUNCHPAD
)

// Modifier keys.
const (
	KC_LCTL Keycode = 0xE0 + iota
	KC_LSFT
	KC_LALT
	KC_LGUI
	KC_RCTL
	KC_RSFT
	KC_RALT
	KC_RGUI
)

// Modifier bit masks as they appear in the report modifier byte.
const (
	ModLCtrl  uint8 = 1 << 0
	ModLShift uint8 = 1 << 1
	ModLAlt   uint8 = 1 << 2
	ModLGui   uint8 = 1 << 3
	ModRCtrl  uint8 = 1 << 4
	ModRShift uint8 = 1 << 5
	ModRAlt   uint8 = 1 << 6
	ModRGui   uint8 = 1 << 7

	ModMaskShift = ModLShift | ModRShift
)

// Modded keycode flags. Bit 12 selects the right hand modifiers.
const (
	QK_LCTL Keycode = 0x0100
	QK_LSFT Keycode = 0x0200
	QK_LALT Keycode = 0x0400
	QK_LGUI Keycode = 0x0800
	QK_RMOD Keycode = 0x1000

	QK_MODS     Keycode = 0x0100
	QK_MODS_MAX Keycode = 0x1FFF
)

// Repeat and caps word keys handled by the firmware default action.
const (
	CW_TOGG Keycode = 0x7C73
	QK_REP  Keycode = 0x7C79
	QK_AREP Keycode = 0x7C7A

	MAGIC = QK_AREP
)

// SafeRange is the first keycode free for layout specific use.
const SafeRange Keycode = 0x7E40

const (
	NumLayers  = 11
	NumMods    = 8
	LayerMin   = SafeRange
	LayerMax   = LayerMin + NumLayers - 1
	OneShotMin = LayerMax + 1
	OneShotMax = OneShotMin + NumMods - 1
)

const (
	CLR_OSM Keycode = OneShotMax + 1 + iota
	UPDIR
	M_DOCSTR
	M_EQEQ
	M_INCLUDE
	M_ION
	M_MENT
	M_MKGRVS
	M_QUEN
	M_THE
	M_TMENT
	M_UPDIR
	M_NBSP
	M_NOOP
	TOGGLE_SUPPRESS
)

const (
	MacroMin = UPDIR
	MacroMax = M_NOOP
)

// EX_MO returns the momentary layer key for layer n.
func EX_MO(n uint8) Keycode {
	return LayerMin + Keycode(n)
}

// EX_OSM returns the one-shot key for a modifier keycode. Only the slot
// bits are used, so EX_OSM(KC_LSFT) and EX_OSM(KC_RSFT) differ.
func EX_OSM(mod Keycode) Keycode {
	return OneShotMin + (mod & 0x07)
}

// EX_MOD returns the modifier keycode for a one-shot slot.
func EX_MOD(slot uint8) Keycode {
	return KC_LCTL + Keycode(slot&0x07)
}

// ModBit returns the report bit of a modifier keycode.
func ModBit(mod Keycode) uint8 {
	return 1 << (mod & 0x07)
}

func (k Keycode) IsBasic() bool {
	return k <= 0xFF
}

func (k Keycode) IsModifier() bool {
	return k >= KC_LCTL && k <= KC_RGUI
}

// IsKey reports whether k occupies a key slot in keyboard reports.
func (k Keycode) IsKey() bool {
	return k >= KC_A && k < SystemMin || k > ConsumerMax && k < KC_LCTL
}

func (k Keycode) IsSystem() bool {
	return k >= SystemMin && k <= SystemMax
}

func (k Keycode) IsConsumer() bool {
	return k >= ConsumerMin && k <= ConsumerMax
}

func (k Keycode) IsModded() bool {
	return k >= QK_MODS && k <= QK_MODS_MAX
}

func (k Keycode) IsLayer() bool {
	return k >= LayerMin && k <= LayerMax
}

// Layer returns the layer selected by a layer key.
func (k Keycode) Layer() uint8 {
	return uint8(k - LayerMin)
}

func (k Keycode) IsOneShot() bool {
	return k >= OneShotMin && k <= OneShotMax
}

// Slot returns the modifier slot of a one-shot key.
func (k Keycode) Slot() uint8 {
	return uint8(k - OneShotMin)
}

func (k Keycode) IsMacro() bool {
	return k >= MacroMin && k <= MacroMax
}

// Basic strips the modifier flags of a modded keycode.
func (k Keycode) Basic() Keycode {
	if k.IsModded() {
		return k & 0xFF
	}
	return k
}

// Mods returns the report modifier mask encoded in a modded keycode.
func (k Keycode) Mods() uint8 {
	if !k.IsModded() {
		return 0
	}
	nibble := uint8((k >> 8) & 0x0F)
	if k&QK_RMOD != 0 {
		return nibble << 4
	}
	return nibble
}

// WithMods encodes a report modifier mask into a modded keycode. Masks that
// mix left and right modifiers are encoded as right hand.
func WithMods(mods uint8, k Keycode) Keycode {
	k = k.Basic()
	if mods == 0 {
		return k
	}
	if mods&0xF0 != 0 {
		return k | QK_RMOD | Keycode((mods>>4)|(mods&0x0F))<<8
	}
	return k | Keycode(mods)<<8
}

func LCTL(k Keycode) Keycode { return WithMods(ModLCtrl, k) }
func LSFT(k Keycode) Keycode { return WithMods(ModLShift, k) }
func LALT(k Keycode) Keycode { return WithMods(ModLAlt, k) }
func LGUI(k Keycode) Keycode { return WithMods(ModLGui, k) }
func RCS(k Keycode) Keycode  { return WithMods(ModRCtrl|ModRShift, k) }

// Shifted symbol aliases.
const (
	KC_EXLM = QK_LSFT | KC_1
	KC_AT   = QK_LSFT | KC_2
	KC_HASH = QK_LSFT | KC_3
	KC_DLR  = QK_LSFT | KC_4
	KC_PERC = QK_LSFT | KC_5
	KC_CIRC = QK_LSFT | KC_6
	KC_AMPR = QK_LSFT | KC_7
	KC_ASTR = QK_LSFT | KC_8
	KC_LPRN = QK_LSFT | KC_9
	KC_RPRN = QK_LSFT | KC_0
	KC_UNDS = QK_LSFT | KC_MINS
	KC_PLUS = QK_LSFT | KC_EQL
	KC_LCBR = QK_LSFT | KC_LBRC
	KC_RCBR = QK_LSFT | KC_RBRC
	KC_PIPE = QK_LSFT | KC_BSLS
	KC_COLN = QK_LSFT | KC_SCLN
	KC_DQUO = QK_LSFT | KC_QUOT
	KC_TILD = QK_LSFT | KC_GRV
	KC_LABK = QK_LSFT | KC_COMM
	KC_RABK = QK_LSFT | KC_DOT
	KC_QUES = QK_LSFT | KC_SLSH
)

func (k Keycode) String() string {
	switch {
	case k.IsLayer():
		return fmt.Sprintf("EX_MO(%d)", k.Layer())
	case k.IsOneShot():
		return fmt.Sprintf("EX_OSM(%s)", EX_MOD(k.Slot()))
	}
	if name, ok := names[k]; ok {
		return name
	}
	if k.IsModded() {
		return fmt.Sprintf("%s(%s)", modsName(k), k.Basic())
	}
	return fmt.Sprintf("0x%04X", uint16(k))
}

func modsName(k Keycode) string {
	prefix := "L"
	if k&QK_RMOD != 0 {
		prefix = "R"
	}
	switch k & 0x0F00 {
	case QK_LCTL:
		return prefix + "CTL"
	case QK_LSFT:
		return prefix + "SFT"
	case QK_LALT:
		return prefix + "ALT"
	case QK_LGUI:
		return prefix + "GUI"
	case QK_LCTL | QK_LSFT:
		return prefix + "CS"
	}
	return fmt.Sprintf("MOD_%02X", k.Mods())
}
