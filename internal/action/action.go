// Package action parses and evaluates the result-construction expressions
// written in variant actions. The surface grammar keeps the text opaque;
// this package gives it meaning for both backends.
package action

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

type Expr struct {
	Left  *Additive `@@`
	Op    string    `( @("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *Additive `  @@ )?`
}

type Additive struct {
	Left *Multiplicative `@@`
	Ops  []*AddOp        `@@*`
}

type AddOp struct {
	Op    string          `@("+" | "-")`
	Right *Multiplicative `@@`
}

type Multiplicative struct {
	Left *Unary   `@@`
	Ops  []*MulOp `@@*`
}

type MulOp struct {
	Op    string `@("*" | "/" | "%")`
	Right *Unary `@@`
}

type Unary struct {
	Op    *string  `( @("-" | "!") )?`
	Value *Primary `@@`
}

type Primary struct {
	Float *float64 `  @Float`
	Int   *int     `| @Int`
	Str   *string  `| @String`
	Bool  *string  `| @("true" | "false")`
	Nil   bool     `| @"nil"`
	List  *List    `| @@`
	Ident *string  `| @Ident`
	Paren *Expr    `| "(" @@ ")"`
}

type List struct {
	Items []*Expr `"[" ( @@ ( "," @@ )* )? "]"`
}

var actionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Float", Pattern: `[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Operator", Pattern: `==|!=|<=|>=|[-+*/%!<>]`},
	{Name: "Punct", Pattern: `[\[\](),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[Expr](
	participle.Lexer(actionLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// Parse compiles one action's source text.
func Parse(text string) (*Expr, error) {
	return exprParser.ParseString("", text)
}
