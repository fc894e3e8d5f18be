package keymap

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
)

//go:embed cantor.md
var cantorMarkdown []byte

// Default returns the built-in Cantor layout.
func Default() *Keymap {
	km, err := LoadMarkdown(cantorMarkdown)
	if err != nil {
		panic(fmt.Errorf("failed to load default keymap: %w", err))
	}
	return km
}

// LoadYAML reads a keymap of the form
//
//	name: cantor
//	layers:
//	  - name: base
//	    keys:
//	      - ["KC_TAB", "KC_V", "EX_MO(num)"]
func LoadYAML(src []byte) (*Keymap, error) {
	var km keymapSource
	if err := yaml.Unmarshal(src, &km); err != nil {
		return nil, fmt.Errorf("failed to decode keymap: %w", err)
	}
	return compile(km)
}

// Load reads a keymap file, picking the format from its extension.
func Load(path string) (*Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keymap: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes keymap data named by path.
func Parse(path string, data []byte) (*Keymap, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return LoadMarkdown(data)
	case ".yaml", ".yml", ".json":
		return LoadYAML(data)
	}
	return nil, fmt.Errorf("unsupported keymap format %q", filepath.Ext(path))
}
