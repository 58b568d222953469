package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInIdent(t *testing.T) {
	s := mustStream(t, "foo 42")
	b, ok := LookupBuiltIn("ident")
	require.True(t, ok)

	v, err := b.Match(s)
	require.NoError(t, err)
	assert.Equal(t, "foo", v)

	_, err = b.Match(s)
	assert.Error(t, err)
}

func TestBuiltInIdentRefusesKeyword(t *testing.T) {
	s := mustStream(t, "end foo")
	s.SetKeywords([]string{"end"})
	b, _ := LookupBuiltIn("ident")

	_, err := b.Match(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyword 'end'")

	// The stream did not advance, so a literal match can still take the word.
	assert.Equal(t, "end", s.Peek().Text)

	s.Next()
	v, err := b.Match(s)
	require.NoError(t, err)
	assert.Equal(t, "foo", v)
}

func TestBuiltInInteger(t *testing.T) {
	s := mustStream(t, "42")
	b, _ := LookupBuiltIn("integer")

	v, err := b.Match(s)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestBuiltInFloatAcceptsInt(t *testing.T) {
	s := mustStream(t, "7 2.5")
	b, _ := LookupBuiltIn("float")

	v, err := b.Match(s)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	v, err = b.Match(s)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
}

func TestBuiltInBool(t *testing.T) {
	s := mustStream(t, "true nope")
	b, _ := LookupBuiltIn("lit_bool")

	v, err := b.Match(s)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = b.Match(s)
	assert.Error(t, err)
}

func TestBuiltInAnyAndEOF(t *testing.T) {
	s := mustStream(t, "x")
	anyB, _ := LookupBuiltIn("any")
	eofB, _ := LookupBuiltIn("eof")

	_, err := eofB.Match(s)
	assert.Error(t, err)

	v, err := anyB.Match(s)
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = eofB.Match(s)
	assert.NoError(t, err)

	_, err = anyB.Match(s)
	assert.Error(t, err)
}

func TestBinOpInt(t *testing.T) {
	v, err := BinOp("-", 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = BinOp("/", 1, 0)
	assert.Error(t, err)
}

func TestBinOpMixedNumeric(t *testing.T) {
	v, err := BinOp("*", 2, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestBinOpStringConcat(t *testing.T) {
	v, err := BinOp("+", "ab", "cd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", v)

	_, err = BinOp("-", "ab", "cd")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	v, err := Compare("<", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Compare("==", 2, 2.0)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Compare(">=", "b", "a")
	require.NoError(t, err)
	assert.Equal(t, true, v)
}
