package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parsegen/internal/ast"
	"parsegen/internal/parser"
)

func parse(t *testing.T, source string) *ast.Grammar {
	t.Helper()
	grammar, parseErrors, scanErrors := parser.ParseSource("test.grammar", source)
	require.Empty(t, scanErrors)
	require.Empty(t, parseErrors)
	require.NotNil(t, grammar)
	return grammar
}

// seq returns the pattern sequence of a rule's first variant.
func seq(t *testing.T, g *ast.Grammar, rule string) []ast.Pattern {
	t.Helper()
	r := g.Rule(rule)
	require.NotNil(t, r)
	require.NotEmpty(t, r.Variants)
	return r.Variants[0].Patterns
}

func TestFindCut(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule r -> any = "a" => "b" "c" -> { 1 };
			pub rule plain -> any = "a" "b" -> { 1 };
		}
	`)

	pre, post, ok := FindCut(seq(t, g, "r"))
	require.True(t, ok)
	assert.Len(t, pre, 1)
	assert.Len(t, post, 2)

	_, _, ok = FindCut(seq(t, g, "plain"))
	assert.False(t, ok)
}

func TestSplitLeftRecursive(t *testing.T) {
	g := parse(t, `
		grammar G {
			rule expr -> any =
				  expr "+" t:term -> { t }
				| expr "-" t:term -> { t }
				| t:term -> { t }
				;
		}
	`)

	recursive, base := SplitLeftRecursive("expr", g.Rule("expr").Variants)
	assert.Len(t, recursive, 2)
	require.Len(t, base, 1)
	assert.Equal(t, []string{"t"}, CollectBindings(base[0].Patterns))
}

func TestCollectBindings(t *testing.T) {
	g := parse(t, `
		grammar G {
			rule pair -> any = k:ident "=" v:integer -> { [k, v] };
			pub rule r -> any =
				a:ident b:integer? ( c:ident | "," d:ident ) not(e:ident)
				peek(f:ident) s:recover(pair, ";") ( q:ident )@here
				-> { [a, b, c, d, f, s, q, here] };
		}
	`)

	// Negative lookahead exposes nothing; a bound recover exposes only its
	// own name; a span binding precedes its inner bindings.
	assert.Equal(t,
		[]string{"a", "b", "c", "d", "f", "s", "here", "q"},
		CollectBindings(seq(t, g, "r")))
}

func TestCollectKeywords(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule r -> any =
				"fn arrow" ( "let" | x:ident ) "+" not("do") v:item("end")
				-> { [x, v] };
		}
	`)

	kws := CollectKeywords(g)
	assert.Equal(t, map[string]bool{
		"fn":    true,
		"arrow": true,
		"let":   true,
		"do":    true,
	}, kws)
	assert.False(t, kws["+"], "punctuation is not a keyword")
	assert.False(t, kws["end"], "rule arguments are values, not literals")
}

func TestIsNullable(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule r -> any =
				"a" b:thing? c:thing* d:thing paren(e:ident)
				peek("x") not("y") ( "p" | "q" )
				-> { [b, c, d, e] };
		}
	`)

	patterns := seq(t, g, "r")
	require.Len(t, patterns, 8)
	assert.False(t, IsNullable(patterns[0]), "literal")
	assert.True(t, IsNullable(patterns[1]), "optional")
	assert.True(t, IsNullable(patterns[2]), "repeat")
	assert.True(t, IsNullable(patterns[3]), "rule call is conservatively nullable")
	assert.False(t, IsNullable(patterns[4]), "delimited region")
	assert.True(t, IsNullable(patterns[5]), "peek")
	assert.True(t, IsNullable(patterns[6]), "not")
	assert.False(t, IsNullable(patterns[7]), "group with literal-led alternatives")

	assert.True(t, SequenceNullable(nil), "empty sequence")
	assert.False(t, SequenceNullable(patterns))
}

func TestSimplePeek(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule r -> any =
				"fn arrow" [ x:ident ] "+"? ( "one" y:ident ) ( "a" | "b" ) z:thing
				-> { [x, y, z] };
		}
	`)

	patterns := seq(t, g, "r")
	require.Len(t, patterns, 6)

	key, ok := SimplePeek(patterns[0])
	require.True(t, ok)
	assert.Equal(t, "fn", key.Token, "first piece of a multi-token literal")

	key, ok = SimplePeek(patterns[1])
	require.True(t, ok)
	assert.Equal(t, "[", key.Token)

	key, ok = SimplePeek(patterns[2])
	require.True(t, ok)
	assert.Equal(t, "+", key.Token, "optional peeks through to its inner pattern")

	key, ok = SimplePeek(patterns[3])
	require.True(t, ok)
	assert.Equal(t, "one", key.Token, "single-alternative group")

	_, ok = SimplePeek(patterns[4])
	assert.False(t, ok, "multi-alternative group has no single key")

	_, ok = SimplePeek(patterns[5])
	assert.False(t, ok, "rule calls yield no key")
}

func TestPeekKeyString(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule multi -> any = "fn arrow" x:ident -> { x };
			pub rule braced -> any = { x:ident } -> { x };
			pub rule called -> any = x:thing "a" -> { x };
		}
	`)

	key, ok := PeekKeyString(seq(t, g, "multi"))
	require.True(t, ok)
	assert.Equal(t, "fn arrow", key, "the full literal text keys dispatch")

	key, ok = PeekKeyString(seq(t, g, "braced"))
	require.True(t, ok)
	assert.Equal(t, "Brace", key)

	_, ok = PeekKeyString(seq(t, g, "called"))
	assert.False(t, ok)

	_, ok = PeekKeyString(nil)
	assert.False(t, ok)
}

func TestCyclesFindsIndirectAndDirect(t *testing.T) {
	g := parse(t, `
		grammar G {
			rule a -> any = b "x" -> { 1 };
			rule b -> any = c "y" -> { 1 };
			rule c -> any = a "z" -> { 1 };
			rule solo -> any =
				  solo "w" -> { 1 }
				| "v" -> { 2 }
				;
		}
	`)

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"solo"}}, Cycles(g))
}

func TestCyclesIgnoresNonLeadingCalls(t *testing.T) {
	g := parse(t, `
		grammar G {
			rule a -> any = "x" b -> { 1 };
			rule b -> any = "y" a -> { 1 };
		}
	`)

	assert.Empty(t, Cycles(g), "only the leading call position recurses before consuming input")
}

func TestShadowingIdenticalAndPrefix(t *testing.T) {
	g := parse(t, `
		grammar G {
			rule same -> any =
				  x:ident "!" -> { 1 }
				| y:ident "!" -> { 2 }
				;
			rule prefix -> any =
				  x:ident -> { x }
				| x:ident "!" -> { x }
				;
			rule fine -> any =
				  x:ident "!" -> { x }
				| x:ident -> { x }
				;
		}
	`)

	issues := Shadowing(g.Rule("same").Variants)
	require.Len(t, issues, 1)
	assert.Equal(t, "Alternative 1 and 2 are identical", issues[0].Message)
	assert.Equal(t, `y:ident "!"`, issues[0].Rendered)

	issues = Shadowing(g.Rule("prefix").Variants)
	require.Len(t, issues, 1)
	assert.Equal(t, "Alternative 1 shadows Alternative 2", issues[0].Message)
	assert.Equal(t, `x:ident "!"`, issues[0].Rendered)

	assert.Empty(t, Shadowing(g.Rule("fine").Variants), "longer alternative first is reachable")
}

func TestGroupShadowing(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule r -> any = ( "a" | "a" x:ident )? y:ident -> { [x, y] };
		}
	`)

	issues := GroupShadowing(seq(t, g, "r"))
	require.Len(t, issues, 1)
	assert.Equal(t, "Alternative 1 shadows Alternative 2", issues[0].Message)
}

func TestPatternEqualIgnoresBindings(t *testing.T) {
	g := parse(t, `
		grammar G {
			rule r -> any =
				  x:thing(2) -> { x }
				| y:thing(2) -> { y }
				;
		}
	`)

	variants := g.Rule("r").Variants
	assert.True(t, PatternEqual(variants[0].Patterns[0], variants[1].Patterns[0]))
	assert.Len(t, Shadowing(variants), 1)
}

func TestPatternEqualDistinguishesArgSign(t *testing.T) {
	g := parse(t, `
		grammar G {
			rule r -> any =
				  x:thing(-1) -> { x }
				| y:thing(1) -> { y }
				;
		}
	`)

	variants := g.Rule("r").Variants
	assert.False(t, PatternEqual(variants[0].Patterns[0], variants[1].Patterns[0]))
	assert.Empty(t, Shadowing(variants))
}

func TestLiteralPieces(t *testing.T) {
	pieces, err := LiteralPieces("fn arrow")
	require.NoError(t, err)
	assert.Equal(t, []string{"fn", "arrow"}, pieces)

	pieces, err = LiteralPieces("+=")
	require.NoError(t, err)
	assert.Equal(t, []string{"+", "="}, pieces)

	for _, bad := range []string{"", "(", "}", "true", "1x"} {
		_, err := LiteralPieces(bad)
		assert.Error(t, err, "literal %q", bad)
	}
}
