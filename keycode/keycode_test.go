package keycode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanges(t *testing.T) {
	assert.Equal(t, Keycode(0x7E40), EX_MO(0))
	assert.Equal(t, LayerMax, EX_MO(10))
	assert.True(t, EX_MO(10).IsLayer())
	assert.False(t, EX_MO(11).IsLayer())
	assert.Equal(t, uint8(3), EX_MO(3).Layer())

	osm := EX_OSM(KC_LSFT)
	assert.True(t, osm.IsOneShot())
	assert.Equal(t, uint8(1), osm.Slot())
	assert.Equal(t, KC_LSFT, EX_MOD(osm.Slot()))
	assert.Equal(t, OneShotMax, EX_OSM(KC_RGUI))
	assert.Equal(t, OneShotMax+1, CLR_OSM)

	assert.True(t, M_THE.IsMacro())
	assert.False(t, TOGGLE_SUPPRESS.IsMacro())
	assert.False(t, CLR_OSM.IsMacro())
}

func TestModdedKeycodes(t *testing.T) {
	type testCase struct {
		code  Keycode
		value Keycode
		basic Keycode
		mods  uint8
		name  string
	}
	tests := []testCase{
		{code: LCTL(KC_C), value: 0x0106, basic: KC_C, mods: ModLCtrl, name: "LCTL(KC_C)"},
		{code: LALT(KC_LEFT), value: 0x0450, basic: KC_LEFT, mods: ModLAlt, name: "LALT(KC_LEFT)"},
		{code: RCS(KC_V), value: 0x1319, basic: KC_V, mods: ModRCtrl | ModRShift, name: "RCS(KC_V)"},
		{code: KC_EXLM, value: 0x021E, basic: KC_1, mods: ModLShift, name: "KC_EXLM"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.value, tc.code)
			assert.True(t, tc.code.IsModded())
			assert.Equal(t, tc.basic, tc.code.Basic())
			assert.Equal(t, tc.mods, tc.code.Mods())
			assert.Equal(t, tc.name, tc.code.String())
			assert.Equal(t, tc.code, WithMods(tc.mods, tc.basic))
		})
	}
}

func TestKeyClasses(t *testing.T) {
	assert.True(t, KC_A.IsKey())
	assert.True(t, KC_APP.IsKey())
	assert.False(t, KC_LSFT.IsKey())
	assert.True(t, KC_LSFT.IsModifier())
	assert.False(t, KC_AUDIO_MUTE.IsKey())
	assert.True(t, KC_AUDIO_MUTE.IsConsumer())
	assert.True(t, KC_SYSTEM_SLEEP.IsSystem())
	assert.Equal(t, uint8(ModRShift), ModBit(KC_RSFT))
}

func TestByName(t *testing.T) {
	type testCase struct {
		input    string
		expected Keycode
	}
	tests := []testCase{
		{input: "KC_A", expected: KC_A},
		{input: "a", expected: KC_A},
		{input: "kc_space", expected: KC_SPC},
		{input: "KcSpace", expected: KC_SPC},
		{input: "left-shift", expected: KC_LSFT},
		{input: "F11", expected: KC_F11},
		{input: "_______", expected: KC_TRNS},
		{input: "XXXXXXX", expected: KC_NO},
		{input: "MAGIC", expected: QK_AREP},
		{input: "M_THE", expected: M_THE},
		{input: "KC_VOLU", expected: KC_AUDIO_VOL_UP},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			code, ok := ByName(tc.input)
			require.True(t, ok)
			assert.Equal(t, tc.expected, code)
		})
	}

	_, ok := ByName("KC_BOGUS")
	assert.False(t, ok)
}

func TestStringFallbacks(t *testing.T) {
	assert.Equal(t, "EX_MO(4)", EX_MO(4).String())
	assert.Equal(t, "EX_OSM(KC_LCTL)", EX_OSM(KC_LCTL).String())
	assert.Equal(t, "KC_SCRL", KC_SCRL.String())
	assert.Equal(t, "0x7FFF", Keycode(0x7FFF).String())
}

func TestUsageTable(t *testing.T) {
	type testCase struct {
		usage    uint16
		expected Keycode
	}
	tests := []testCase{
		{usage: 0x81, expected: KC_SYSTEM_POWER},
		{usage: 0x83, expected: KC_SYSTEM_WAKE},
		{usage: 0xE2, expected: KC_AUDIO_MUTE},
		{usage: 0xE9, expected: KC_AUDIO_VOL_UP},
		{usage: 0xCD, expected: KC_MEDIA_PLAY_PAUSE},
		{usage: 0x6F, expected: KC_BRIGHTNESS_UP},
		{usage: 0x2A0, expected: KC_LAUNCHPAD},
		{usage: 0x0000, expected: KC_NO},
		{usage: 0x1234, expected: KC_NO},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, UsageToKeycode(tc.usage), "usage 0x%X", tc.usage)
	}

	for code := SystemMin; code <= ConsumerMax; code++ {
		usage, ok := KeycodeToUsage(code)
		require.True(t, ok, code.String())
		assert.Equal(t, code, UsageToKeycode(usage))
	}
	_, ok := KeycodeToUsage(KC_A)
	assert.False(t, ok)
}
