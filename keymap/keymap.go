// Package keymap maps matrix positions to keycodes per layer.
package keymap

import (
	"fmt"
	"strings"

	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/neuroplastio/neio-keycore/keycode/keydsl"
	"github.com/stoewer/go-strcase"
)

const (
	Rows = hidreport.MatrixRows
	Cols = hidreport.MatrixCols
)

type Layer struct {
	Name string
	Keys [Rows][Cols]keycode.Keycode
}

type Keymap struct {
	Name   string
	Layers []Layer

	index map[string]uint8
}

// LayerName normalizes a layer name for lookups, so "Magic Sturdy",
// "magicSturdy" and "_MAGIC_STURDY" are the same layer.
func LayerName(name string) string {
	return strcase.SnakeCase(strings.Trim(strings.TrimSpace(name), "_"))
}

// Lookup returns the keycode at a position. KC_TRNS falls through to the
// base layer and unknown layers resolve on the base layer.
func (k *Keymap) Lookup(layer uint8, row, col int) keycode.Keycode {
	if row < 0 || row >= Rows || col < 0 || col >= Cols || len(k.Layers) == 0 {
		return keycode.KC_NO
	}
	if int(layer) >= len(k.Layers) {
		layer = 0
	}
	code := k.Layers[layer].Keys[row][col]
	if code == keycode.KC_TRNS && layer != 0 {
		code = k.Layers[0].Keys[row][col]
	}
	return code
}

// LayerIndex resolves a layer by name.
func (k *Keymap) LayerIndex(name string) (uint8, bool) {
	i, ok := k.index[LayerName(name)]
	return i, ok
}

// Find returns the base layer position of code.
func (k *Keymap) Find(code keycode.Keycode) (row, col int, ok bool) {
	if len(k.Layers) == 0 {
		return 0, 0, false
	}
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if k.Layers[0].Keys[r][c] == code {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

type layerSource struct {
	Name string     `json:"name"`
	Keys [][]string `json:"keys"`
}

type keymapSource struct {
	Name   string        `json:"name"`
	Layers []layerSource `json:"layers"`
}

func compile(src keymapSource) (*Keymap, error) {
	if len(src.Layers) == 0 {
		return nil, fmt.Errorf("keymap has no layers")
	}
	if len(src.Layers) > keycode.NumLayers {
		return nil, fmt.Errorf("keymap has %d layers, at most %d are supported", len(src.Layers), keycode.NumLayers)
	}
	km := &Keymap{
		Name:   src.Name,
		Layers: make([]Layer, len(src.Layers)),
		index:  make(map[string]uint8, len(src.Layers)),
	}
	for i, layer := range src.Layers {
		name := LayerName(layer.Name)
		if name == "" {
			name = fmt.Sprintf("layer_%d", i)
		}
		if _, ok := km.index[name]; ok {
			return nil, fmt.Errorf("duplicate layer %q", layer.Name)
		}
		km.index[name] = uint8(i)
		km.Layers[i].Name = name
	}
	for i, layer := range src.Layers {
		if len(layer.Keys) > Rows {
			return nil, fmt.Errorf("layer %s has %d rows, matrix has %d", km.Layers[i].Name, len(layer.Keys), Rows)
		}
		for r, row := range layer.Keys {
			if len(row) > Cols {
				return nil, fmt.Errorf("layer %s row %d has %d keys, matrix has %d", km.Layers[i].Name, r, len(row), Cols)
			}
			for c, cell := range row {
				code, err := keydsl.Compile(cell, km.LayerIndex)
				if err != nil {
					return nil, fmt.Errorf("layer %s [%d,%d]: %w", km.Layers[i].Name, r, c, err)
				}
				km.Layers[i].Keys[r][c] = code
			}
		}
	}
	return km, nil
}
