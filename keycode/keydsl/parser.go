package keydsl

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	ruleIdent      = lexer.SimpleRule{Name: "Ident", Pattern: `[A-Za-z_][\w]*`}
	ruleNumber     = lexer.SimpleRule{Name: "Number", Pattern: `\d+`}
	rulePunct      = lexer.SimpleRule{Name: "Punct", Pattern: `[(),|]`}
	ruleWhitespace = lexer.SimpleRule{Name: "Whitespace", Pattern: `[ \t]+`}
)

var cellLexer = lexer.MustSimple([]lexer.SimpleRule{
	ruleWhitespace,
	ruleNumber,
	ruleIdent,
	rulePunct,
})

var cellParser = participle.MustBuild[Cell](
	participle.Lexer(cellLexer),
	participle.UseLookahead(2),
	participle.Elide(ruleWhitespace.Name),
)

// Cell is a single keymap entry such as `KC_A`, `EX_MO(2)`,
// `EX_OSM(LSFT)` or `LCTL(KC_C)`.
type Cell struct {
	Expr *Expression `parser:"@@" json:"expr"`
}

type Expression struct {
	Number     *int        `parser:"@Number |" json:"number,omitempty"`
	Identifier string      `parser:"@Ident" json:"identifier,omitempty"`
	Arguments  []*Argument `parser:"('(' @@ (',' @@)* ')')?" json:"arguments,omitempty"`
}

type Argument struct {
	Mods []string    `parser:"@Ident ('|' @Ident)+ |" json:"mods,omitempty"`
	Expr *Expression `parser:"@@" json:"expr,omitempty"`
}

func ParseCell(s string) (*Cell, error) {
	return cellParser.ParseString("", s)
}
