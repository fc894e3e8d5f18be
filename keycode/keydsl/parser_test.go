package keydsl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestCells(t *testing.T) {
	type testCase struct {
		input    string
		expected Cell
	}

	testCases := []testCase{
		{
			input:    `KC_A`,
			expected: Cell{Expr: &Expression{Identifier: "KC_A"}},
		},
		{
			input:    `7`,
			expected: Cell{Expr: &Expression{Number: ptr(7)}},
		},
		{
			input: `EX_MO(2)`,
			expected: Cell{Expr: &Expression{
				Identifier: "EX_MO",
				Arguments:  []*Argument{{Expr: &Expression{Number: ptr(2)}}},
			}},
		},
		{
			input: `LCTL( KC_C )`,
			expected: Cell{Expr: &Expression{
				Identifier: "LCTL",
				Arguments:  []*Argument{{Expr: &Expression{Identifier: "KC_C"}}},
			}},
		},
		{
			input: `MODS(LCTL|LSFT, A(KC_O))`,
			expected: Cell{Expr: &Expression{
				Identifier: "MODS",
				Arguments: []*Argument{
					{Mods: []string{"LCTL", "LSFT"}},
					{Expr: &Expression{
						Identifier: "A",
						Arguments:  []*Argument{{Expr: &Expression{Identifier: "KC_O"}}},
					}},
				},
			}},
		},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			actual, err := cellParser.ParseString("", tc.input, participle.Trace(buf))
			if !assert.NoError(t, err) {
				t.Log(buf.String())
				return
			}

			expectedJSON, err := json.Marshal(tc.expected)
			require.NoError(t, err)

			actualJSON, err := json.Marshal(actual)
			require.NoError(t, err)

			require.Equal(t, string(expectedJSON), string(actualJSON))
		})
	}
}

func TestCompile(t *testing.T) {
	layers := func(name string) (uint8, bool) {
		switch name {
		case "EXT":
			return 4, true
		case "NUM":
			return 1, true
		}
		return 0, false
	}

	type testCase struct {
		input    string
		expected keycode.Keycode
	}
	testCases := []testCase{
		{input: ``, expected: keycode.KC_NO},
		{input: `KC_A`, expected: keycode.KC_A},
		{input: `spc`, expected: keycode.KC_SPC},
		{input: `_______`, expected: keycode.KC_TRNS},
		{input: `0`, expected: keycode.KC_0},
		{input: `1`, expected: keycode.KC_1},
		{input: `EX_MO(2)`, expected: keycode.EX_MO(2)},
		{input: `EX_MO(EXT)`, expected: keycode.EX_MO(4)},
		{input: `MO(NUM)`, expected: keycode.EX_MO(1)},
		{input: `EX_OSM(KC_LSFT)`, expected: keycode.EX_OSM(keycode.KC_LSFT)},
		{input: `OSM(RALT)`, expected: keycode.EX_OSM(keycode.KC_RALT)},
		{input: `LCTL(KC_C)`, expected: keycode.LCTL(keycode.KC_C)},
		{input: `LALT(KC_LEFT)`, expected: keycode.LALT(keycode.KC_LEFT)},
		{input: `RCS(KC_V)`, expected: keycode.RCS(keycode.KC_V)},
		{input: `S(KC_N)`, expected: keycode.LSFT(keycode.KC_N)},
		{input: `C(S(KC_T))`, expected: keycode.WithMods(keycode.ModLCtrl|keycode.ModLShift, keycode.KC_T)},
		{input: `MODS(LCTL|LALT, KC_DEL)`, expected: keycode.WithMods(keycode.ModLCtrl|keycode.ModLAlt, keycode.KC_DEL)},
		{input: `MAGIC`, expected: keycode.QK_AREP},
		{input: `CLR_OSM`, expected: keycode.CLR_OSM},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			actual, err := Compile(tc.input, layers)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, input := range []string{
		`KC_BOGUS`,
		`EX_MO(11)`,
		`EX_MO(NOPE)`,
		`EX_OSM(KC_A)`,
		`LCTL(EX_MO(1))`,
		`LCTL(KC_A, KC_B)`,
		`FOO(KC_A)`,
		`12`,
		`LCTL(`,
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Compile(input, nil)
			assert.Error(t, err)
		})
	}
}
