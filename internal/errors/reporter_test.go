package errors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"parsegen/internal/ast"
)

func init() {
	color.NoColor = true
}

func span(line, column, offset, length int) ast.Span {
	return ast.Span{
		Start: ast.Position{Filename: "g.grammar", Offset: offset, Line: line, Column: column},
		End:   ast.Position{Filename: "g.grammar", Offset: offset + length, Line: line, Column: column + length},
	}
}

func TestFormatError(t *testing.T) {
	source := "grammar G {\n\trule dup -> int = n:integer -> { n };\n}"
	r := NewReporter("g.grammar", source)

	err := NewError(ErrorDuplicateRule, "Duplicate rule definition: 'dup'", span(2, 7, 18, 3))
	out := r.Format(err)

	assert.Contains(t, out, "error[E0001]: Duplicate rule definition: 'dup'")
	assert.Contains(t, out, "g.grammar:2:7")
	assert.Contains(t, out, "rule dup -> int")
	assert.Contains(t, out, "^^^")
}

func TestFormatWarningWithNoteAndHelp(t *testing.T) {
	r := NewReporter("g.grammar", "grammar G {}")

	err := NewWarning(WarnUnusedRule, "Rule 'x' is never used", span(1, 1, 0, 1)).
		WithNote("rules starting with '_' are exempt").
		WithHelp("remove the rule or reference it")
	out := r.Format(err)

	assert.Contains(t, out, "warning[W0001]")
	assert.Contains(t, out, "note: rules starting with '_' are exempt")
	assert.Contains(t, out, "help: remove the rule or reference it")
}

func TestMarkerClampedToLine(t *testing.T) {
	r := NewReporter("g.grammar", "short")

	err := NewError(ErrorSyntax, "boom", span(1, 3, 2, 50))
	out := r.Format(err)

	lines := strings.Split(out, "\n")
	for _, l := range lines {
		assert.LessOrEqual(t, strings.Count(l, "^"), 3)
	}
}

func TestHasErrors(t *testing.T) {
	warn := NewWarning(WarnUnusedRule, "unused", span(1, 1, 0, 1))
	err := NewError(ErrorSyntax, "bad", span(1, 1, 0, 1))

	assert.False(t, HasErrors([]CompilerError{warn}))
	assert.True(t, HasErrors([]CompilerError{warn, err}))
}
