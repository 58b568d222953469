package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parsegen/internal/ast"
	"parsegen/internal/errors"
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

func messages(diags []errors.CompilerError) []string {
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, d.Message)
	}
	return msgs
}

func TestValidGrammarHasNoDiagnostics(t *testing.T) {
	g := parse(t, `
		grammar Calc {
			pub rule main -> int = e:expr eof -> { e };
			rule expr -> int =
				  a:expr "-" b:term -> { a - b }
				| t:term -> { t }
				;
			rule term -> int = n:integer -> { n };
		}
	`)

	assert.Empty(t, Check(g))
	assert.NoError(t, Validate(g))
}

func TestDuplicateRule(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule r -> int = n:integer -> { n };
			rule r -> int = n:integer -> { n + 1 };
		}
	`)

	diags := Check(g)
	require.NotEmpty(t, diags)
	assert.Equal(t, "Duplicate rule definition: 'r'", diags[0].Message)
	assert.Equal(t, errors.ErrorDuplicateRule, diags[0].Code)
	// Reported at the second definition.
	assert.Equal(t, 4, diags[0].Position.Line)
}

func TestUndefinedRule(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule main -> any = x:missing -> { x };
		}
	`)

	err := Validate(g)
	require.Error(t, err)
	assert.Equal(t, "Undefined rule: 'missing'", err.Error())
}

func TestUndefinedRuleSkippedUnderInheritance(t *testing.T) {
	g := parse(t, `
		grammar Child : Parent {
			pub rule main -> any = x:parent_rule -> { x };
		}
	`)

	assert.NoError(t, Validate(g))
}

func TestParameterNameCountsAsDefined(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule main -> any = x:wrap -> { x };
			rule wrap -> any = x:item -> { x };
			rule item -> any = i:ident -> { i };
		}
	`)
	assert.NoError(t, Validate(g))

	g = parse(t, `
		grammar G {
			pub rule main -> any = x:apply -> { x };
			rule apply -> any = x:inner -> { x };
			rule inner(elem: any) -> any = e:elem -> { e };
		}
	`)
	diags := Check(g)
	// 'elem' resolves as a parameter; 'inner' called without its argument.
	assert.Contains(t, messages(diags), "Rule 'inner' expects 1 argument(s), but got 0.")
	assert.NotContains(t, messages(diags), "Undefined rule: 'elem'")
}

func TestArgumentCount(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule main -> any = x:list(",", 2) -> { x };
			rule list(sep: string) -> any = i:ident -> { i };
		}
	`)

	err := Validate(g)
	require.Error(t, err)
	assert.Equal(t, "Rule 'list' expects 1 argument(s), but got 2.", err.Error())
}

func TestBuiltInRejectsArguments(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule main -> any = x:ident(1) -> { x };
		}
	`)

	err := Validate(g)
	require.Error(t, err)
	assert.Equal(t, "Built-in rule 'ident' does not accept arguments.", err.Error())
}

func TestIndirectLeftRecursion(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule a -> any = b:b -> { b };
			rule b -> any = a:a -> { a };
		}
	`)

	err := Validate(g)
	require.Error(t, err)
	assert.Equal(t, "Indirect left recursion detected (unsupported): a -> b -> a", err.Error())
}

func TestDirectLeftRecursionAllowed(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule expr -> int =
				  a:expr "+" b:expr -> { a + b }
				| n:integer -> { n }
				;
		}
	`)

	assert.NoError(t, Validate(g))
}

func TestIdenticalAlternatives(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule r -> any =
				  x:ident -> { x }
				| y:ident -> { y }
				;
		}
	`)

	err := Validate(g)
	require.Error(t, err)
	assert.Equal(t, "Alternative 1 and 2 are identical", err.Error())
}

func TestPrefixShadowing(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule r -> any =
				  x:ident -> { x }
				| x:ident "!" -> { x }
				;
		}
	`)

	err := Validate(g)
	require.Error(t, err)
	assert.Equal(t, "Alternative 1 shadows Alternative 2", err.Error())

	// The note carries the unreachable alternative in grammar syntax.
	diag := err.(errors.CompilerError)
	require.Len(t, diag.Notes, 1)
	assert.Equal(t, `unreachable alternative: x:ident "!"`, diag.Notes[0])
}

func TestShadowingInsideGroups(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule r -> any = ( "a" | "a" ) i:ident -> { i };
		}
	`)

	err := Validate(g)
	require.Error(t, err)
	assert.Equal(t, "Alternative 1 and 2 are identical", err.Error())
}

func TestBadLiteral(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule r -> any = "true" -> { 1 };
		}
	`)

	err := Validate(g)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorBadLiteral, err.(errors.CompilerError).Code)
}

func TestUnusedRuleWarning(t *testing.T) {
	g := parse(t, `
		grammar G {
			pub rule main -> int = n:integer -> { n };
			rule orphan -> int = n:integer -> { n };
			rule _scratch -> int = n:integer -> { n };
		}
	`)

	diags := Check(g)
	require.Len(t, diags, 1)
	assert.Equal(t, errors.Warning, diags[0].Level)
	assert.Equal(t, "Rule 'orphan' is never used", diags[0].Message)

	// Warnings do not fail validation.
	assert.NoError(t, Validate(g))
}
