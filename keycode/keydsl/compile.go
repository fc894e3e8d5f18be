// Package keydsl parses keymap cells into keycodes.
package keydsl

import (
	"fmt"
	"strings"

	"github.com/neuroplastio/neio-keycore/keycode"
)

// LayerResolver maps a layer name used in EX_MO(NAME) to its index.
type LayerResolver func(name string) (uint8, bool)

var modFunctions = map[string]uint8{
	"LCTL": keycode.ModLCtrl,
	"C":    keycode.ModLCtrl,
	"LSFT": keycode.ModLShift,
	"S":    keycode.ModLShift,
	"LALT": keycode.ModLAlt,
	"A":    keycode.ModLAlt,
	"LOPT": keycode.ModLAlt,
	"LGUI": keycode.ModLGui,
	"G":    keycode.ModLGui,
	"LCMD": keycode.ModLGui,
	"RCTL": keycode.ModRCtrl,
	"RSFT": keycode.ModRShift,
	"RALT": keycode.ModRAlt,
	"RGUI": keycode.ModRGui,
	"LCS":  keycode.ModLCtrl | keycode.ModLShift,
	"RCS":  keycode.ModRCtrl | keycode.ModRShift,
	"LCA":  keycode.ModLCtrl | keycode.ModLAlt,
	"LSA":  keycode.ModLShift | keycode.ModLAlt,
	"MEH":  keycode.ModLCtrl | keycode.ModLShift | keycode.ModLAlt,
	"HYPR": keycode.ModLCtrl | keycode.ModLShift | keycode.ModLAlt | keycode.ModLGui,
}

// Compile parses and resolves a keymap cell. An empty cell is KC_NO.
func Compile(s string, layers LayerResolver) (keycode.Keycode, error) {
	if strings.TrimSpace(s) == "" {
		return keycode.KC_NO, nil
	}
	cell, err := ParseCell(s)
	if err != nil {
		return keycode.KC_NO, fmt.Errorf("failed to parse %q: %w", s, err)
	}
	code, err := resolve(cell.Expr, layers)
	if err != nil {
		return keycode.KC_NO, fmt.Errorf("failed to resolve %q: %w", s, err)
	}
	return code, nil
}

func resolve(expr *Expression, layers LayerResolver) (keycode.Keycode, error) {
	if expr.Number != nil {
		return digit(*expr.Number)
	}
	if expr.Arguments == nil {
		code, ok := keycode.ByName(expr.Identifier)
		if !ok {
			return keycode.KC_NO, fmt.Errorf("unknown keycode %s", expr.Identifier)
		}
		return code, nil
	}
	name := strings.ToUpper(expr.Identifier)
	switch name {
	case "EX_MO", "MO":
		if err := arity(name, expr.Arguments, 1); err != nil {
			return keycode.KC_NO, err
		}
		layer, err := resolveLayer(expr.Arguments[0], layers)
		if err != nil {
			return keycode.KC_NO, err
		}
		return keycode.EX_MO(layer), nil
	case "EX_OSM", "OSM":
		if err := arity(name, expr.Arguments, 1); err != nil {
			return keycode.KC_NO, err
		}
		mod, err := resolveArgument(expr.Arguments[0], layers)
		if err != nil {
			return keycode.KC_NO, err
		}
		if !mod.IsModifier() {
			return keycode.KC_NO, fmt.Errorf("%s expects a modifier, got %s", name, mod)
		}
		return keycode.EX_OSM(mod), nil
	case "MODS":
		if err := arity(name, expr.Arguments, 2); err != nil {
			return keycode.KC_NO, err
		}
		mods, err := resolveMods(expr.Arguments[0])
		if err != nil {
			return keycode.KC_NO, err
		}
		code, err := resolveArgument(expr.Arguments[1], layers)
		if err != nil {
			return keycode.KC_NO, err
		}
		return modded(mods, code)
	}
	mods, ok := modFunctions[name]
	if !ok {
		return keycode.KC_NO, fmt.Errorf("unknown function %s", expr.Identifier)
	}
	if err := arity(name, expr.Arguments, 1); err != nil {
		return keycode.KC_NO, err
	}
	code, err := resolveArgument(expr.Arguments[0], layers)
	if err != nil {
		return keycode.KC_NO, err
	}
	return modded(mods, code)
}

func modded(mods uint8, code keycode.Keycode) (keycode.Keycode, error) {
	if !code.IsBasic() && !code.IsModded() {
		return keycode.KC_NO, fmt.Errorf("cannot apply modifiers to %s", code)
	}
	return keycode.WithMods(mods|code.Mods(), code), nil
}

func resolveArgument(arg *Argument, layers LayerResolver) (keycode.Keycode, error) {
	if arg.Expr == nil {
		return keycode.KC_NO, fmt.Errorf("unexpected modifier list %s", strings.Join(arg.Mods, "|"))
	}
	return resolve(arg.Expr, layers)
}

func resolveMods(arg *Argument) (uint8, error) {
	names := arg.Mods
	if arg.Expr != nil {
		if arg.Expr.Arguments != nil || arg.Expr.Number != nil {
			return 0, fmt.Errorf("expected modifier list")
		}
		names = []string{arg.Expr.Identifier}
	}
	var mods uint8
	for _, name := range names {
		code, ok := keycode.ByName(name)
		if !ok || !code.IsModifier() {
			return 0, fmt.Errorf("unknown modifier %s", name)
		}
		mods |= keycode.ModBit(code)
	}
	return mods, nil
}

func resolveLayer(arg *Argument, layers LayerResolver) (uint8, error) {
	if arg.Expr == nil || arg.Expr.Arguments != nil {
		return 0, fmt.Errorf("expected layer index or name")
	}
	if arg.Expr.Number != nil {
		n := *arg.Expr.Number
		if n < 0 || n >= keycode.NumLayers {
			return 0, fmt.Errorf("layer %d out of range", n)
		}
		return uint8(n), nil
	}
	if layers != nil {
		if layer, ok := layers(arg.Expr.Identifier); ok {
			return layer, nil
		}
	}
	return 0, fmt.Errorf("unknown layer %s", arg.Expr.Identifier)
}

func arity(name string, args []*Argument, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func digit(n int) (keycode.Keycode, error) {
	switch {
	case n == 0:
		return keycode.KC_0, nil
	case n >= 1 && n <= 9:
		return keycode.KC_1 + keycode.Keycode(n-1), nil
	}
	return keycode.KC_NO, fmt.Errorf("number %d is not a key", n)
}
