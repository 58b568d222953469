package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, text string, env map[string]any) any {
	t.Helper()
	expr, err := Parse(text)
	require.NoError(t, err)
	v, err := Eval(expr, env)
	require.NoError(t, err)
	return v
}

func TestEvalLiterals(t *testing.T) {
	assert.Equal(t, 42, eval(t, "42", nil))
	assert.Equal(t, 2.5, eval(t, "2.5", nil))
	assert.Equal(t, "hi", eval(t, `"hi"`, nil))
	assert.Equal(t, true, eval(t, "true", nil))
	assert.Equal(t, false, eval(t, "false", nil))
	assert.Nil(t, eval(t, "nil", nil))
}

func TestEvalArithmeticPrecedence(t *testing.T) {
	assert.Equal(t, 14, eval(t, "2 + 3 * 4", nil))
	assert.Equal(t, 20, eval(t, "(2 + 3) * 4", nil))
	assert.Equal(t, 1, eval(t, "7 % 3", nil))
	assert.Equal(t, -5, eval(t, "-5", nil))
}

func TestEvalLeftAssociativity(t *testing.T) {
	assert.Equal(t, 5, eval(t, "10 - 2 - 3", nil))
	assert.Equal(t, 2, eval(t, "12 / 3 / 2", nil))
}

func TestEvalBindings(t *testing.T) {
	env := map[string]any{"a": 10, "name": "x"}
	assert.Equal(t, 11, eval(t, "a + 1", env))
	assert.Equal(t, "x!", eval(t, `name + "!"`, env))
}

func TestEvalUnboundName(t *testing.T) {
	expr, err := Parse("missing + 1")
	require.NoError(t, err)
	_, err = Eval(expr, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbound name 'missing'")
}

func TestEvalComparisons(t *testing.T) {
	assert.Equal(t, true, eval(t, "1 + 1 == 2", nil))
	assert.Equal(t, false, eval(t, "3 < 2", nil))
	assert.Equal(t, true, eval(t, `"a" != "b"`, nil))
}

func TestEvalNot(t *testing.T) {
	assert.Equal(t, false, eval(t, "!true", nil))
	assert.Equal(t, true, eval(t, "!nil", nil))
}

func TestEvalList(t *testing.T) {
	v := eval(t, `[1, "two", [3]]`, nil)
	list, ok := v.([]any)
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0])
	assert.Equal(t, "two", list[1])
	assert.Equal(t, []any{3}, list[2])

	assert.Equal(t, []any{}, eval(t, "[]", nil))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("1 +")
	assert.Error(t, err)
	_, err = Parse("")
	assert.Error(t, err)
}

func TestGoExprRendering(t *testing.T) {
	resolve := func(name string) string { return "env_" + name }

	expr, err := Parse("a + 1")
	require.NoError(t, err)
	assert.Equal(t, `runtime.MustBinOp("+", env_a, 1)`, GoExpr(expr, resolve))

	expr, err = Parse(`[x, "s"]`)
	require.NoError(t, err)
	assert.Equal(t, `[]any{env_x, "s"}`, GoExpr(expr, resolve))

	expr, err = Parse("a == b")
	require.NoError(t, err)
	assert.Equal(t, `runtime.MustCompare("==", env_a, env_b)`, GoExpr(expr, resolve))

	expr, err = Parse("-n")
	require.NoError(t, err)
	assert.Equal(t, "runtime.MustNegate(env_n)", GoExpr(expr, resolve))
}
