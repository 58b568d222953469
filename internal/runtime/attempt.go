package runtime

// Attempt runs fn speculatively. On success the consumed input is kept and
// (value, true, nil) is returned. On an ordinary failure all mutable state
// is restored, the error is recorded as a deepening candidate, and
// (zero, false, nil) signals "no match" so choice and loop control flow can
// continue. A fatal failure (a cut was passed inside fn) propagates
// immediately without restoring; the caller must treat it as final.
func Attempt[T any](s *Stream, ctx *Context, fn func(*Stream, *Context) (T, error)) (T, bool, error) {
	var zero T

	wasFatal := ctx.fatal
	ctx.fatal = false

	scopesSnap := ctx.Scopes.clone()
	ruleSnap := append([]string(nil), ctx.ruleStack...)
	posSnap := s.Pos()
	startOffset := s.Offset()

	val, err := fn(s, ctx)
	if err == nil {
		ctx.fatal = wasFatal
		return val, true, nil
	}

	if ctx.fatal {
		return zero, false, err
	}

	ctx.fatal = wasFatal
	// Record before restoring so the innermost rule context is still on the
	// stack when the error is annotated.
	ctx.RecordError(err, startOffset)
	ctx.Scopes = scopesSnap
	ctx.ruleStack = ruleSnap
	s.SetPos(posSnap)
	return zero, false, nil
}

// AttemptRecover is Attempt for recovery regions: inner failures are never
// treated as fatal, because the whole point of the region is to swallow the
// error and resynchronize.
func AttemptRecover[T any](s *Stream, ctx *Context, fn func(*Stream, *Context) (T, error)) (T, bool) {
	var zero T

	wasFatal := ctx.fatal
	ctx.fatal = false

	scopesSnap := ctx.Scopes.clone()
	ruleSnap := append([]string(nil), ctx.ruleStack...)
	posSnap := s.Pos()
	startOffset := s.Offset()

	val, err := fn(s, ctx)
	ctx.fatal = wasFatal
	if err == nil {
		return val, true
	}

	ctx.RecordError(err, startOffset)
	ctx.Scopes = scopesSnap
	ctx.ruleStack = ruleSnap
	s.SetPos(posSnap)
	return zero, false
}

// PeekCheck runs fn as positive lookahead: position and mutable context are
// always rolled back, success or not, but the value (and therefore the inner
// bindings) is surfaced along with any failure.
func PeekCheck[T any](s *Stream, ctx *Context, fn func(*Stream, *Context) (T, error)) (T, error) {
	wasFatal := ctx.fatal
	ctx.fatal = false

	scopesSnap := ctx.Scopes.clone()
	ruleSnap := append([]string(nil), ctx.ruleStack...)
	posSnap := s.Pos()

	val, err := fn(s, ctx)

	ctx.fatal = wasFatal
	ctx.Scopes = scopesSnap
	ctx.ruleStack = ruleSnap
	s.SetPos(posSnap)
	return val, err
}

// NotCheck runs fn as negative lookahead: consumption is always rolled back
// and the outcome is inverted. Inner success becomes an "unexpected match"
// failure; inner failure becomes a no-op success.
func NotCheck(s *Stream, ctx *Context, fn func(*Stream, *Context) error) error {
	wasFatal := ctx.fatal
	ctx.fatal = false

	scopesSnap := ctx.Scopes.clone()
	ruleSnap := append([]string(nil), ctx.ruleStack...)
	posSnap := s.Pos()
	startTok := s.Peek()

	err := fn(s, ctx)

	ctx.fatal = wasFatal
	ctx.Scopes = scopesSnap
	ctx.ruleStack = ruleSnap
	s.SetPos(posSnap)

	if err == nil {
		return NewError(startTok, "unexpected match")
	}
	return nil
}

// SkipUntil consumes tokens until the predicate holds for the current
// stream position or input is exhausted. The matching token itself is left
// unconsumed.
func SkipUntil(s *Stream, pred func(*Stream) bool) {
	for !s.EOF() && !pred(s) {
		s.Next()
	}
}
