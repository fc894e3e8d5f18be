package keymap

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark-meta"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		meta.Meta,
	),
)

// LoadMarkdown reads a keymap document. The front matter may set the keymap
// name, every level two heading starts a layer, and the first table after
// it holds the layer: one body row per matrix row, one cell per column. The
// header row only labels columns. Pipes inside cells are escaped as \|.
func LoadMarkdown(src []byte) (*Keymap, error) {
	ctx := parser.NewContext()
	doc := markdown.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var km keymapSource
	if fm := meta.Get(ctx); fm != nil {
		if name, ok := fm["name"].(string); ok {
			km.Name = name
		}
	}

	var current *layerSource
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level != 2 {
				continue
			}
			km.Layers = append(km.Layers, layerSource{Name: string(n.Text(src))})
			current = &km.Layers[len(km.Layers)-1]
		case *east.Table:
			if current == nil {
				return nil, fmt.Errorf("table without a layer heading")
			}
			if current.Keys != nil {
				continue
			}
			current.Keys = tableRows(n, src)
		}
	}
	return compile(km)
}

func tableRows(table *east.Table, src []byte) [][]string {
	rows := [][]string{}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		if _, ok := row.(*east.TableRow); !ok {
			continue
		}
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			value := strings.ReplaceAll(string(cell.Text(src)), `\|`, "|")
			cells = append(cells, strings.TrimSpace(value))
		}
		rows = append(rows, cells)
	}
	return rows
}

// Markdown renders the keymap in the format read by LoadMarkdown.
func (k *Keymap) Markdown() []byte {
	var buf bytes.Buffer
	if k.Name != "" {
		fmt.Fprintf(&buf, "---\nname: %s\n---\n\n", k.Name)
	}
	for _, layer := range k.Layers {
		fmt.Fprintf(&buf, "## %s\n\n|", layer.Name)
		for c := 0; c < Cols; c++ {
			fmt.Fprintf(&buf, " %d |", c)
		}
		buf.WriteString("\n|")
		for c := 0; c < Cols; c++ {
			buf.WriteString(" --- |")
		}
		buf.WriteString("\n")
		for r := 0; r < Rows; r++ {
			buf.WriteString("|")
			for c := 0; c < Cols; c++ {
				fmt.Fprintf(&buf, " %s |", cellName(layer.Keys[r][c]))
			}
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

func cellName(code keycode.Keycode) string {
	return strings.ReplaceAll(code.String(), "|", `\|`)
}
