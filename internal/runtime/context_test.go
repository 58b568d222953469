package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustStream(t *testing.T, input string) *Stream {
	t.Helper()
	toks, err := Tokenize(input)
	require.NoError(t, err)
	return NewStream(toks)
}

func TestAttemptRestoresOnFailure(t *testing.T) {
	s := mustStream(t, "a b c")
	ctx := NewContext()

	_, ok, err := Attempt(s, ctx, func(s *Stream, ctx *Context) (string, error) {
		s.Next()
		s.Next()
		return "", NewError(s.Peek(), "expected something")
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "a", s.Peek().Text)
}

func TestAttemptKeepsInputOnSuccess(t *testing.T) {
	s := mustStream(t, "a b")
	ctx := NewContext()

	v, ok, err := Attempt(s, ctx, func(s *Stream, ctx *Context) (string, error) {
		return s.Next().Text, nil
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, "b", s.Peek().Text)
}

func TestAttemptPropagatesFatal(t *testing.T) {
	s := mustStream(t, "a b")
	ctx := NewContext()

	_, _, err := Attempt(s, ctx, func(s *Stream, ctx *Context) (string, error) {
		s.Next()
		ctx.SetFatal(true)
		return "", NewError(s.Peek(), "committed failure")
	})
	require.Error(t, err)
	assert.True(t, ctx.Fatal())
	assert.Equal(t, "b", s.Peek().Text, "fatal failures keep the cursor")
}

func TestErrorNamesInnermostRule(t *testing.T) {
	s := mustStream(t, "a b")
	ctx := NewContext()

	ctx.EnterRule("outer_rule")
	ctx.EnterRule("test_rule")
	_, ok, err := Attempt(s, ctx, func(s *Stream, ctx *Context) (string, error) {
		s.Next()
		return "", NewError(s.Peek(), "expected something")
	})
	require.NoError(t, err)
	require.False(t, ok)
	ctx.ExitRule()
	ctx.ExitRule()

	best := ctx.TakeBestError()
	require.NotNil(t, best)
	assert.Equal(t, "Error in rule 'test_rule': expected something", best.Msg)
}

func TestDeepErrorWins(t *testing.T) {
	s := mustStream(t, "a b c")
	ctx := NewContext()

	// Shallow failure: no input consumed before failing.
	ctx.EnterRule("shallow")
	Attempt(s, ctx, func(s *Stream, ctx *Context) (any, error) {
		return nil, NewError(s.Peek(), "shallow miss")
	})
	ctx.ExitRule()

	// Deep failure: consumed two tokens first.
	ctx.EnterRule("deep")
	Attempt(s, ctx, func(s *Stream, ctx *Context) (any, error) {
		s.Next()
		s.Next()
		return nil, NewError(s.Peek(), "deep miss")
	})
	ctx.ExitRule()

	best := ctx.TakeBestError()
	require.NotNil(t, best)
	assert.Contains(t, best.Msg, "deep miss")
}

func TestDeepErrorNotReplacedByLaterDeep(t *testing.T) {
	s := mustStream(t, "a b c d")
	ctx := NewContext()

	ctx.EnterRule("first")
	Attempt(s, ctx, func(s *Stream, ctx *Context) (any, error) {
		s.Next()
		return nil, NewError(s.Peek(), "first deep")
	})
	ctx.ExitRule()

	ctx.EnterRule("second")
	Attempt(s, ctx, func(s *Stream, ctx *Context) (any, error) {
		s.Next()
		s.Next()
		s.Next()
		return nil, NewError(s.Peek(), "second deep")
	})
	ctx.ExitRule()

	best := ctx.TakeBestError()
	require.NotNil(t, best)
	assert.Contains(t, best.Msg, "first deep")
}

func TestAttemptRecoverNeverFatal(t *testing.T) {
	s := mustStream(t, "a b")
	ctx := NewContext()

	_, ok := AttemptRecover(s, ctx, func(s *Stream, ctx *Context) (string, error) {
		s.Next()
		ctx.SetFatal(true)
		return "", NewError(s.Peek(), "inner failure")
	})
	assert.False(t, ok)
	assert.False(t, ctx.Fatal())
	assert.Equal(t, "a", s.Peek().Text)
}

func TestPeekCheckRollsBack(t *testing.T) {
	s := mustStream(t, "a b")
	ctx := NewContext()

	v, err := PeekCheck(s, ctx, func(s *Stream, ctx *Context) (string, error) {
		return s.Next().Text, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "a", v)
	assert.Equal(t, "a", s.Peek().Text)
}

func TestNotCheck(t *testing.T) {
	s := mustStream(t, "a")
	ctx := NewContext()

	err := NotCheck(s, ctx, func(s *Stream, ctx *Context) error {
		_, e := s.Expect("b")
		return e
	})
	assert.NoError(t, err)

	err = NotCheck(s, ctx, func(s *Stream, ctx *Context) error {
		_, e := s.Expect("a")
		return e
	})
	assert.Error(t, err)
	assert.Equal(t, "a", s.Peek().Text)
}

func TestScopeStack(t *testing.T) {
	ctx := NewContext()

	ctx.Define("x")
	ctx.EnterScope()
	ctx.Define("y")
	assert.True(t, ctx.IsDefined("x"))
	assert.True(t, ctx.IsDefined("y"))

	ctx.ExitScope()
	assert.True(t, ctx.IsDefined("x"))
	assert.False(t, ctx.IsDefined("y"))
}

func TestAttemptRestoresScopes(t *testing.T) {
	s := mustStream(t, "a")
	ctx := NewContext()

	Attempt(s, ctx, func(s *Stream, ctx *Context) (any, error) {
		ctx.Define("tmp")
		return nil, NewError(s.Peek(), "fail")
	})
	assert.False(t, ctx.IsDefined("tmp"))
}

func TestSkipUntil(t *testing.T) {
	s := mustStream(t, "a b ; c")

	SkipUntil(s, func(s *Stream) bool { return s.PeekText(";") })
	assert.Equal(t, ";", s.Peek().Text)

	SkipUntil(s, func(s *Stream) bool { return s.PeekText("never") })
	assert.True(t, s.EOF())
}
