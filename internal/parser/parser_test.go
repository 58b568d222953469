package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parsegen/internal/ast"
)

func parseClean(t *testing.T, source string) *ast.Grammar {
	t.Helper()
	grammar, parseErrors, scanErrors := ParseSource("test.grammar", source)
	require.Empty(t, scanErrors)
	require.Empty(t, parseErrors)
	require.NotNil(t, grammar)
	return grammar
}

func TestParseMinimalGrammar(t *testing.T) {
	grammar := parseClean(t, `
		grammar Calc {
			pub rule main -> int = n:integer -> { n };
		}
	`)

	assert.Equal(t, "Calc", grammar.Name.Value)
	assert.Nil(t, grammar.Inherits)
	require.Len(t, grammar.Rules, 1)

	rule := grammar.Rules[0]
	assert.True(t, rule.Public)
	assert.Equal(t, "main", rule.Name.Value)
	assert.Equal(t, "int", rule.Result.Text)
	require.Len(t, rule.Variants, 1)

	patterns := rule.Variants[0].Patterns
	require.Len(t, patterns, 1)
	call, ok := patterns[0].(*ast.RuleCall)
	require.True(t, ok)
	require.NotNil(t, call.Binding)
	assert.Equal(t, "n", call.Binding.Value)
	assert.Equal(t, "integer", call.Name.Value)
	assert.Equal(t, "n", rule.Variants[0].Action.Text)
}

func TestParseInheritanceAndUses(t *testing.T) {
	grammar := parseClean(t, `
		grammar Child : Parent {
			use fmt;
			use strconv;
			rule extra -> string = s:string -> { s };
		}
	`)

	require.NotNil(t, grammar.Inherits)
	assert.Equal(t, "Parent", grammar.Inherits.Value)
	require.Len(t, grammar.Uses, 2)
	assert.Equal(t, "fmt", grammar.Uses[0].Text)
	assert.Equal(t, "strconv", grammar.Uses[1].Text)
	assert.False(t, grammar.Rules[0].Public)
}

func TestParseRuleParams(t *testing.T) {
	grammar := parseClean(t, `
		grammar G {
			rule pair(sep: string, deep: bool) -> any = a:ident sep b:ident -> { [a, b] };
		}
	`)

	rule := grammar.Rules[0]
	require.Len(t, rule.Params, 2)
	assert.Equal(t, "sep", rule.Params[0].Name.Value)
	assert.Equal(t, "string", rule.Params[0].Type.Text)
	assert.Equal(t, "deep", rule.Params[1].Name.Value)
	assert.Equal(t, "bool", rule.Params[1].Type.Text)
}

func TestParseVariantsAndCut(t *testing.T) {
	grammar := parseClean(t, `
		grammar G {
			rule stmt -> any =
				  "let" => name:ident "=" value:expr -> { [name, value] }
				| e:expr -> { e }
				;
			rule expr -> int = n:integer -> { n };
		}
	`)

	rule := grammar.Rules[0]
	require.Len(t, rule.Variants, 2)

	first := rule.Variants[0].Patterns
	require.Len(t, first, 5)
	lit, ok := first[0].(*ast.Lit)
	require.True(t, ok)
	assert.Equal(t, "let", lit.Value)
	_, ok = first[1].(*ast.Cut)
	assert.True(t, ok)
}

func TestParsePostfixOperators(t *testing.T) {
	grammar := parseClean(t, `
		grammar G {
			rule r -> any = a:ident? b:ident* c:ident+ d:ident@range -> { [a, b, c, d, range] };
		}
	`)

	patterns := grammar.Rules[0].Variants[0].Patterns
	require.Len(t, patterns, 4)
	assert.IsType(t, &ast.Optional{}, patterns[0])
	assert.IsType(t, &ast.Repeat{}, patterns[1])
	assert.IsType(t, &ast.Plus{}, patterns[2])

	span, ok := patterns[3].(*ast.SpanBinding)
	require.True(t, ok)
	assert.Equal(t, "range", span.Name.Value)
	assert.IsType(t, &ast.RuleCall{}, span.Inner)
}

func TestParseDelimitedRegions(t *testing.T) {
	grammar := parseClean(t, `
		grammar G {
			rule r -> any = [ a:ident ] { b:ident } paren( c:ident ) -> { [a, b, c] };
		}
	`)

	patterns := grammar.Rules[0].Variants[0].Patterns
	require.Len(t, patterns, 3)

	bracket := patterns[0].(*ast.Delimited)
	assert.Equal(t, ast.Bracket, bracket.Kind)
	brace := patterns[1].(*ast.Delimited)
	assert.Equal(t, ast.Brace, brace.Kind)
	paren := patterns[2].(*ast.Delimited)
	assert.Equal(t, ast.Paren, paren.Kind)
	require.Len(t, paren.Inner, 1)
}

func TestParseGroupAlternatives(t *testing.T) {
	grammar := parseClean(t, `
		grammar G {
			rule r -> any = ( "a" x:ident | "b" ) -> { x };
		}
	`)

	group := grammar.Rules[0].Variants[0].Patterns[0].(*ast.Group)
	require.Len(t, group.Alts, 2)
	assert.Len(t, group.Alts[0], 2)
	assert.Len(t, group.Alts[1], 1)
}

func TestParseLookaheadAndRecover(t *testing.T) {
	grammar := parseClean(t, `
		grammar G {
			rule r -> any = peek("fn") not("end") item:recover(body, ";") -> { item };
			rule body -> any = x:ident -> { x };
		}
	`)

	patterns := grammar.Rules[0].Variants[0].Patterns
	require.Len(t, patterns, 3)

	peek := patterns[0].(*ast.Peek)
	assert.IsType(t, &ast.Lit{}, peek.Inner)
	assert.IsType(t, &ast.Not{}, patterns[1])

	rec := patterns[2].(*ast.Recover)
	require.NotNil(t, rec.Binding)
	assert.Equal(t, "item", rec.Binding.Value)
	call := rec.Body.(*ast.RuleCall)
	assert.Equal(t, "body", call.Name.Value)
	sync := rec.Sync.(*ast.Lit)
	assert.Equal(t, ";", sync.Value)
}

func TestParseRuleCallArguments(t *testing.T) {
	grammar := parseClean(t, `
		grammar G {
			rule r -> any = x:list(",", 2, true, -1) -> { x };
			rule list(sep: string, min: int, trail: bool, depth: int) -> any = i:ident -> { i };
		}
	`)

	call := grammar.Rules[0].Variants[0].Patterns[0].(*ast.RuleCall)
	require.Len(t, call.Args, 4)
	assert.Equal(t, ast.ArgString, call.Args[0].Kind)
	assert.Equal(t, ",", call.Args[0].Text)
	assert.Equal(t, ast.ArgInt, call.Args[1].Kind)
	assert.Equal(t, 2, call.Args[1].Int)
	assert.Equal(t, ast.ArgBool, call.Args[2].Kind)
	assert.True(t, call.Args[2].Truth)
	assert.Equal(t, -1, call.Args[3].Int)
	assert.Equal(t, "-1", call.Args[3].Text, "sign is part of the argument text")
}

func TestCallFollowedByGroupIsNotArguments(t *testing.T) {
	grammar := parseClean(t, `
		grammar G {
			rule r -> any = x:item ( "a" | "b" ) -> { x };
			rule item -> any = i:ident -> { i };
		}
	`)

	patterns := grammar.Rules[0].Variants[0].Patterns
	require.Len(t, patterns, 2)
	call := patterns[0].(*ast.RuleCall)
	assert.Empty(t, call.Args)
	assert.IsType(t, &ast.Group{}, patterns[1])
}

func TestActionWithNestedBraces(t *testing.T) {
	grammar := parseClean(t, `
		grammar G {
			rule r -> any = n:integer -> { [n, [1, 2]] };
		}
	`)

	assert.Equal(t, "[n, [1, 2]]", grammar.Rules[0].Variants[0].Action.Text)
}

func TestParseErrorRecovery(t *testing.T) {
	grammar, parseErrors, _ := ParseSource("test.grammar", `
		grammar G {
			rule broken -> int = n: -> { n };
			rule ok -> int = n:integer -> { n };
		}
	`)

	require.NotNil(t, grammar)
	assert.NotEmpty(t, parseErrors)

	// The parser recovers and still sees the following rule.
	assert.NotNil(t, grammar.Rule("ok"))
}

func TestParseErrorRecoveryPastActionBraces(t *testing.T) {
	grammar, parseErrors, _ := ParseSource("test.grammar", `
		grammar G {
			rule broken -> int = n: -> { [n, [1]] };
			rule after1 -> int = n:integer -> { n };
			pub rule after2 -> int = { x:ident } -> { 2 };
		}
	`)

	require.NotNil(t, grammar)
	assert.NotEmpty(t, parseErrors)

	// The nested action braces of the broken rule must be skipped whole;
	// both later rules survive.
	assert.NotNil(t, grammar.Rule("after1"))
	assert.NotNil(t, grammar.Rule("after2"))
}

func TestScanErrorSurfaces(t *testing.T) {
	_, _, scanErrors := ParseSource("test.grammar", "grammar G { rule r -> any = $ -> { 1 }; }")
	require.NotEmpty(t, scanErrors)
	assert.Contains(t, scanErrors[0].Message, "Unexpected character")
}

func TestPositionsAreTracked(t *testing.T) {
	grammar := parseClean(t, "grammar G {\n\trule r -> int = n:integer -> { n };\n}")

	rule := grammar.Rules[0]
	assert.Equal(t, 2, rule.Name.Pos.Line)
	assert.Equal(t, "test.grammar", rule.Name.Pos.Filename)
	assert.Greater(t, rule.Name.EndPos.Offset, rule.Name.Pos.Offset)
}
