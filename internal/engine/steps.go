package engine

import (
	"parsegen/internal/analysis"
	"parsegen/internal/ast"
	"parsegen/internal/plan"
	"parsegen/internal/runtime"
)

// runSteps executes a step sequence. A CutStep mid-sequence promotes every
// later failure to fatal.
func (e *Engine) runSteps(steps []plan.Step, s *runtime.Stream, ctx *runtime.Context, env map[string]any) error {
	committed := false
	for _, step := range steps {
		if _, isCut := step.(*plan.CutStep); isCut {
			committed = true
			continue
		}
		if _, err := e.runStep(step, s, ctx, env); err != nil {
			if committed {
				ctx.SetFatal(true)
			}
			return err
		}
	}
	return nil
}

func (e *Engine) runStep(step plan.Step, s *runtime.Stream, ctx *runtime.Context, env map[string]any) (any, error) {
	switch st := step.(type) {
	case *plan.LitStep:
		return e.runLit(st, s)
	case *plan.CallStep:
		return e.runCall(st, s, ctx, env)
	case *plan.ChoiceStep:
		// Names bound only in unmatched alternatives stay nil.
		bindNils(env, st.Bindings)
		return e.runChoice(st.Choice, s, ctx, env, false)
	case *plan.DelimStep:
		return e.runDelim(st, s, ctx, env)
	case *plan.OptStep:
		return e.runOpt(st, s, ctx, env)
	case *plan.RepStep:
		return nil, e.runLoop(st.Inner, st.Peek, st.Bindings, false, s, ctx, env)
	case *plan.PlusStep:
		return nil, e.runLoop(st.Inner, st.Peek, st.Bindings, true, s, ctx, env)
	case *plan.SpanStep:
		return e.runSpan(st, s, ctx, env)
	case *plan.RecoverStep:
		return e.runRecover(st, s, ctx, env)
	case *plan.PeekStep:
		return e.runPeek(st, s, ctx, env)
	case *plan.NotStep:
		return nil, runtime.NotCheck(s, ctx, func(s *runtime.Stream, ctx *runtime.Context) error {
			_, err := e.runStep(st.Inner, s, ctx, cloneEnv(env))
			return err
		})
	case *plan.CutStep:
		// Only reachable when a cut is the sole step of a wrapper; a bare
		// cut consumes nothing and always succeeds.
		return nil, nil
	}
	return nil, runtime.NewError(s.Peek(), "unhandled step")
}

func (e *Engine) runLit(lit *plan.LitStep, s *runtime.Stream) (any, error) {
	v, err := runtime.MatchLiteral(s, lit.Pieces...)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (e *Engine) runCall(call *plan.CallStep, s *runtime.Stream, ctx *runtime.Context, env map[string]any) (any, error) {
	var v any
	var err error

	switch call.Kind {
	case plan.CallBuiltin:
		v, err = runtime.MatchBuiltIn(call.Name, s)

	case plan.CallParam:
		v, err = e.matchParam(call.Name, s, env)

	default: // CallRule, CallInherited
		v, err = e.invoke(call.Name, s, ctx, argValues(call.Args))
	}

	if err != nil {
		return nil, err
	}
	if call.Binding != "" {
		env[call.Binding] = v
	}
	return v, nil
}

// matchParam matches an argument value against the input. Only string
// arguments are matchable: they behave like a literal written in the rule
// body.
func (e *Engine) matchParam(name string, s *runtime.Stream, env map[string]any) (any, error) {
	value, ok := env[name]
	if !ok {
		return nil, runtime.NewError(s.Peek(), "parameter '%s' is not bound", name)
	}
	return runtime.MatchParam(s, name, value)
}

func argValues(args []plan.Value) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		switch a.Kind {
		case ast.ArgInt:
			out[i] = a.Int
		case ast.ArgBool:
			out[i] = a.Bool
		default:
			out[i] = a.Str
		}
	}
	return out
}

func (e *Engine) runDelim(d *plan.DelimStep, s *runtime.Stream, ctx *runtime.Context, env map[string]any) (any, error) {
	if _, err := s.Expect(d.Open); err != nil {
		return nil, err
	}
	if err := e.runSteps(d.Inner, s, ctx, env); err != nil {
		return nil, err
	}
	if _, err := s.Expect(d.Close); err != nil {
		return nil, err
	}
	return nil, nil
}

func (e *Engine) runOpt(o *plan.OptStep, s *runtime.Stream, ctx *runtime.Context, env map[string]any) (any, error) {
	if o.Peek != nil && !s.PeekText(o.Peek.Token) {
		bindNils(env, o.Bindings)
		return nil, nil
	}

	scratch := cloneEnv(env)
	v, ok, err := runtime.Attempt(s, ctx, func(s *runtime.Stream, ctx *runtime.Context) (any, error) {
		return e.runStep(o.Inner, s, ctx, scratch)
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		bindNils(env, o.Bindings)
		return nil, nil
	}
	mergeBindings(env, scratch, o.Bindings)
	return v, nil
}

// runLoop drives Repeat and Plus: bindings collect into per-name slices, an
// iteration that consumes nothing ends the loop.
func (e *Engine) runLoop(inner plan.Step, peek *analysis.PeekKey, bindings []string, mandatory bool, s *runtime.Stream, ctx *runtime.Context, env map[string]any) error {
	collected := make(map[string][]any, len(bindings))
	for _, name := range bindings {
		collected[name] = []any{}
	}

	if mandatory {
		scratch := cloneEnv(env)
		if _, err := e.runStep(inner, s, ctx, scratch); err != nil {
			return err
		}
		for _, name := range bindings {
			collected[name] = append(collected[name], scratch[name])
		}
	}

	for {
		if peek != nil && !s.PeekText(peek.Token) {
			break
		}
		startPos := s.Pos()
		scratch := cloneEnv(env)
		_, ok, err := runtime.Attempt(s, ctx, func(s *runtime.Stream, ctx *runtime.Context) (any, error) {
			return e.runStep(inner, s, ctx, scratch)
		})
		if err != nil {
			return err
		}
		if !ok || s.Pos() == startPos {
			break
		}
		for _, name := range bindings {
			collected[name] = append(collected[name], scratch[name])
		}
	}

	for _, name := range bindings {
		env[name] = collected[name]
	}
	return nil
}

func (e *Engine) runSpan(sp *plan.SpanStep, s *runtime.Stream, ctx *runtime.Context, env map[string]any) (any, error) {
	start := s.Offset()
	v, err := e.runStep(sp.Inner, s, ctx, env)
	if err != nil {
		return nil, err
	}
	end := s.PrevEnd()
	if end < start {
		end = start
	}
	env[sp.Binding] = runtime.TextSpan{Start: start, End: end}
	return v, nil
}

func (e *Engine) runRecover(rc *plan.RecoverStep, s *runtime.Stream, ctx *runtime.Context, env map[string]any) (any, error) {
	scratch := cloneEnv(env)
	v, ok := runtime.AttemptRecover(s, ctx, func(s *runtime.Stream, ctx *runtime.Context) (any, error) {
		return e.runStep(rc.Body, s, ctx, scratch)
	})
	if !ok {
		runtime.SkipUntil(s, func(s *runtime.Stream) bool { return s.PeekText(rc.Sync) })
		bindNils(env, rc.Bindings)
		return nil, nil
	}

	if rc.Binding != "" {
		env[rc.Binding] = v
	} else {
		mergeBindings(env, scratch, rc.Bindings)
	}
	return v, nil
}

func (e *Engine) runPeek(p *plan.PeekStep, s *runtime.Stream, ctx *runtime.Context, env map[string]any) (any, error) {
	scratch := cloneEnv(env)
	v, err := runtime.PeekCheck(s, ctx, func(s *runtime.Stream, ctx *runtime.Context) (any, error) {
		return e.runStep(p.Inner, s, ctx, scratch)
	})
	if err != nil {
		return nil, err
	}
	for k, sv := range scratch {
		env[k] = sv
	}
	return v, nil
}

func bindNils(env map[string]any, names []string) {
	for _, name := range names {
		env[name] = nil
	}
}

func mergeBindings(env, scratch map[string]any, names []string) {
	for _, name := range names {
		env[name] = scratch[name]
	}
}
