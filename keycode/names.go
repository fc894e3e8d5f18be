package keycode

import (
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

var (
	names  = make(map[Keycode]string)
	byName = make(map[string]Keycode)
)

func init() {
	basic := []struct {
		code  Keycode
		names []string
	}{
		{KC_NO, []string{"KC_NO", "XXXXXXX"}},
		{KC_TRNS, []string{"KC_TRNS", "KC_TRANSPARENT", "_______"}},
		{KC_ENT, []string{"KC_ENT", "KC_ENTER"}},
		{KC_ESC, []string{"KC_ESC", "KC_ESCAPE"}},
		{KC_BSPC, []string{"KC_BSPC", "KC_BACKSPACE"}},
		{KC_TAB, []string{"KC_TAB"}},
		{KC_SPC, []string{"KC_SPC", "KC_SPACE"}},
		{KC_MINS, []string{"KC_MINS", "KC_MINUS"}},
		{KC_EQL, []string{"KC_EQL", "KC_EQUAL"}},
		{KC_LBRC, []string{"KC_LBRC", "KC_LEFT_BRACKET"}},
		{KC_RBRC, []string{"KC_RBRC", "KC_RIGHT_BRACKET"}},
		{KC_BSLS, []string{"KC_BSLS", "KC_BACKSLASH"}},
		{KC_NUHS, []string{"KC_NUHS"}},
		{KC_SCLN, []string{"KC_SCLN", "KC_SEMICOLON"}},
		{KC_QUOT, []string{"KC_QUOT", "KC_QUOTE"}},
		{KC_GRV, []string{"KC_GRV", "KC_GRAVE"}},
		{KC_COMM, []string{"KC_COMM", "KC_COMMA"}},
		{KC_DOT, []string{"KC_DOT"}},
		{KC_SLSH, []string{"KC_SLSH", "KC_SLASH"}},
		{KC_CAPS, []string{"KC_CAPS", "KC_CAPS_LOCK"}},
		{KC_PSCR, []string{"KC_PSCR", "KC_PRINT_SCREEN"}},
		{KC_SCRL, []string{"KC_SCRL", "KC_SCROLL_LOCK"}},
		{KC_PAUS, []string{"KC_PAUS", "KC_PAUSE"}},
		{KC_INS, []string{"KC_INS", "KC_INSERT"}},
		{KC_HOME, []string{"KC_HOME"}},
		{KC_PGUP, []string{"KC_PGUP", "KC_PAGE_UP"}},
		{KC_DEL, []string{"KC_DEL", "KC_DELETE"}},
		{KC_END, []string{"KC_END"}},
		{KC_PGDN, []string{"KC_PGDN", "KC_PAGE_DOWN"}},
		{KC_RGHT, []string{"KC_RGHT", "KC_RIGHT"}},
		{KC_LEFT, []string{"KC_LEFT"}},
		{KC_DOWN, []string{"KC_DOWN"}},
		{KC_UP, []string{"KC_UP"}},
		{KC_NUM, []string{"KC_NUM", "KC_NUM_LOCK"}},
		{KC_APP, []string{"KC_APP", "KC_APPLICATION"}},

		{KC_SYSTEM_POWER, []string{"KC_PWR", "KC_SYSTEM_POWER"}},
		{KC_SYSTEM_SLEEP, []string{"KC_SLEP", "KC_SYSTEM_SLEEP"}},
		{KC_SYSTEM_WAKE, []string{"KC_WAKE", "KC_SYSTEM_WAKE"}},
		{KC_AUDIO_MUTE, []string{"KC_MUTE", "KC_AUDIO_MUTE"}},
		{KC_AUDIO_VOL_UP, []string{"KC_VOLU", "KC_AUDIO_VOL_UP"}},
		{KC_AUDIO_VOL_DOWN, []string{"KC_VOLD", "KC_AUDIO_VOL_DOWN"}},
		{KC_MEDIA_NEXT_TRACK, []string{"KC_MNXT", "KC_MEDIA_NEXT_TRACK"}},
		{KC_MEDIA_PREV_TRACK, []string{"KC_MPRV", "KC_MEDIA_PREV_TRACK"}},
		{KC_MEDIA_STOP, []string{"KC_MSTP", "KC_MEDIA_STOP"}},
		{KC_MEDIA_PLAY_PAUSE, []string{"KC_MPLY", "KC_MEDIA_PLAY_PAUSE"}},
		{KC_MEDIA_SELECT, []string{"KC_MSEL", "KC_MEDIA_SELECT"}},
		{KC_MEDIA_EJECT, []string{"KC_EJCT", "KC_MEDIA_EJECT"}},
		{KC_MAIL, []string{"KC_MAIL"}},
		{KC_CALCULATOR, []string{"KC_CALC", "KC_CALCULATOR"}},
		{KC_MY_COMPUTER, []string{"KC_MYCM", "KC_MY_COMPUTER"}},
		{KC_WWW_SEARCH, []string{"KC_WSCH", "KC_WWW_SEARCH"}},
		{KC_WWW_HOME, []string{"KC_WHOM", "KC_WWW_HOME"}},
		{KC_WWW_BACK, []string{"KC_WBAK", "KC_WWW_BACK"}},
		{KC_WWW_FORWARD, []string{"KC_WFWD", "KC_WWW_FORWARD"}},
		{KC_WWW_STOP, []string{"KC_WSTP", "KC_WWW_STOP"}},
		{KC_WWW_REFRESH, []string{"KC_WREF", "KC_WWW_REFRESH"}},
		{KC_WWW_FAVORITES, []string{"KC_WFAV", "KC_WWW_FAVORITES"}},
		{KC_MEDIA_FAST_FORWARD, []string{"KC_MFFD", "KC_MEDIA_FAST_FORWARD"}},
		{KC_MEDIA_REWIND, []string{"KC_MRWD", "KC_MEDIA_REWIND"}},
		{KC_BRIGHTNESS_UP, []string{"KC_BRIU", "KC_BRIGHTNESS_UP"}},
		{KC_BRIGHTNESS_DOWN, []string{"KC_BRID", "KC_BRIGHTNESS_DOWN"}},
		{KC_CONTROL_PANEL, []string{"KC_CPNL", "KC_CONTROL_PANEL"}},
		{KC_ASSISTANT, []string{"KC_ASST", "KC_ASSISTANT"}},
		{KC_MISSION_CONTROL, []string{"KC_MCTL", "KC_MISSION_CONTROL"}},
		{KC_LAUNCHPAD, []string{"KC_LPAD", "KC_LAUNCHPAD"}},

		{KC_LCTL, []string{"KC_LCTL", "KC_LEFT_CTRL"}},
		{KC_LSFT, []string{"KC_LSFT", "KC_LEFT_SHIFT"}},
		{KC_LALT, []string{"KC_LALT", "KC_LEFT_ALT"}},
		{KC_LGUI, []string{"KC_LGUI", "KC_LEFT_GUI"}},
		{KC_RCTL, []string{"KC_RCTL", "KC_RIGHT_CTRL"}},
		{KC_RSFT, []string{"KC_RSFT", "KC_RIGHT_SHIFT"}},
		{KC_RALT, []string{"KC_RALT", "KC_RIGHT_ALT"}},
		{KC_RGUI, []string{"KC_RGUI", "KC_RIGHT_GUI"}},

		{KC_EXLM, []string{"KC_EXLM"}},
		{KC_AT, []string{"KC_AT"}},
		{KC_HASH, []string{"KC_HASH"}},
		{KC_DLR, []string{"KC_DLR"}},
		{KC_PERC, []string{"KC_PERC"}},
		{KC_CIRC, []string{"KC_CIRC"}},
		{KC_AMPR, []string{"KC_AMPR"}},
		{KC_ASTR, []string{"KC_ASTR"}},
		{KC_LPRN, []string{"KC_LPRN"}},
		{KC_RPRN, []string{"KC_RPRN"}},
		{KC_UNDS, []string{"KC_UNDS"}},
		{KC_PLUS, []string{"KC_PLUS"}},
		{KC_LCBR, []string{"KC_LCBR"}},
		{KC_RCBR, []string{"KC_RCBR"}},
		{KC_PIPE, []string{"KC_PIPE"}},
		{KC_COLN, []string{"KC_COLN"}},
		{KC_DQUO, []string{"KC_DQUO"}},
		{KC_TILD, []string{"KC_TILD"}},
		{KC_LABK, []string{"KC_LABK"}},
		{KC_RABK, []string{"KC_RABK"}},
		{KC_QUES, []string{"KC_QUES"}},

		{CW_TOGG, []string{"CW_TOGG"}},
		{QK_REP, []string{"QK_REP", "QK_REPEAT_KEY"}},
		{QK_AREP, []string{"QK_AREP", "MAGIC"}},

		{CLR_OSM, []string{"CLR_OSM"}},
		{UPDIR, []string{"UPDIR"}},
		{M_DOCSTR, []string{"M_DOCSTR"}},
		{M_EQEQ, []string{"M_EQEQ"}},
		{M_INCLUDE, []string{"M_INCLUDE"}},
		{M_ION, []string{"M_ION"}},
		{M_MENT, []string{"M_MENT"}},
		{M_MKGRVS, []string{"M_MKGRVS"}},
		{M_QUEN, []string{"M_QUEN"}},
		{M_THE, []string{"M_THE"}},
		{M_TMENT, []string{"M_TMENT"}},
		{M_UPDIR, []string{"M_UPDIR"}},
		{M_NBSP, []string{"M_NBSP"}},
		{M_NOOP, []string{"M_NOOP"}},
		{TOGGLE_SUPPRESS, []string{"TOGGLE_SUPPRESS", "TG_SUPP"}},
	}
	for _, entry := range basic {
		register(entry.code, entry.names...)
	}
	for i := Keycode(0); i < 26; i++ {
		register(KC_A+i, "KC_"+string(rune('A'+i)))
	}
	for i := Keycode(0); i < 9; i++ {
		register(KC_1+i, "KC_"+string(rune('1'+i)))
	}
	register(KC_0, "KC_0")
	for i := Keycode(0); i < 12; i++ {
		register(KC_F1+i, "KC_F"+strconv.Itoa(int(i)+1))
	}
}

// register stores the first name as canonical, the rest as aliases.
func register(code Keycode, aliases ...string) {
	if _, ok := names[code]; !ok {
		names[code] = aliases[0]
	}
	for _, alias := range aliases {
		byName[alias] = code
	}
}

// NormalizeName maps user spellings such as "kc_a", "KcSpace" or
// "left-shift" to the screaming snake case used by the name table.
func NormalizeName(name string) string {
	return strcase.ToScreamingSnake(strings.TrimSpace(name))
}

// ByName resolves a keycode name. The KC_ prefix is optional.
func ByName(name string) (Keycode, bool) {
	upper := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for _, candidate := range []string{name, upper, NormalizeName(name)} {
		if code, ok := byName[candidate]; ok {
			return code, true
		}
		if code, ok := byName["KC_"+candidate]; ok {
			return code, true
		}
	}
	return KC_NO, false
}

// Name returns the canonical name of a keycode.
func Name(code Keycode) (string, bool) {
	name, ok := names[code]
	return name, ok
}
