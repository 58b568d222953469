// Package engine interprets a compiled Program directly against a token
// stream. It is the executable reference for the plan semantics; the Go
// source backend renders the same control flow as code.
package engine

import (
	"parsegen/internal/action"
	"parsegen/internal/plan"
	"parsegen/internal/runtime"
)

// Engine runs rules of one Program. A child grammar's engine resolves
// deferred calls through its parent engine.
type Engine struct {
	program *plan.Program
	parent  *Engine
}

func New(program *plan.Program) *Engine {
	return &Engine{program: program}
}

// NewChild builds an engine whose deferred (inherited) calls resolve against
// parent's rule set.
func NewChild(program *plan.Program, parent *Engine) *Engine {
	return &Engine{program: program, parent: parent}
}

// Parse tokenizes the input and runs the named rule against it. On failure
// the deepest recorded candidate error is returned, unless the parse ended
// in a committed (fatal) state, in which case the fatal error itself is the
// authoritative diagnostic.
func (e *Engine) Parse(ruleName, input string) (any, error) {
	tokens, err := runtime.Tokenize(input)
	if err != nil {
		return nil, err
	}

	s := runtime.NewStream(tokens)
	s.SetKeywords(e.keywords())
	ctx := runtime.NewContext()

	v, err := e.invoke(ruleName, s, ctx, nil)
	if err != nil {
		if ctx.Fatal() {
			return nil, err
		}
		if best := ctx.TakeBestError(); best != nil {
			if pe, ok := err.(*runtime.ParseError); !ok || best.Offset >= pe.Offset {
				return nil, best
			}
		}
		return nil, err
	}
	return v, nil
}

// keywords gathers the reserved words of this program and every ancestor,
// since inherited rules match their own grammar's literals.
func (e *Engine) keywords() []string {
	var words []string
	for cur := e; cur != nil; cur = cur.parent {
		words = append(words, cur.program.Keywords...)
	}
	return words
}

// invoke resolves a rule by name in this engine or its parent chain.
func (e *Engine) invoke(name string, s *runtime.Stream, ctx *runtime.Context, args []any) (any, error) {
	for cur := e; cur != nil; cur = cur.parent {
		if rule := cur.program.Rule(name); rule != nil {
			return cur.runRule(rule, s, ctx, args)
		}
	}
	return nil, runtime.NewError(s.Peek(), "rule '%s' is not defined", name)
}

func (e *Engine) runRule(rule *plan.RulePlan, s *runtime.Stream, ctx *runtime.Context, args []any) (any, error) {
	if len(args) != len(rule.Params) {
		return nil, runtime.NewError(s.Peek(),
			"rule '%s' expects %d argument(s), but got %d", rule.Name, len(rule.Params), len(args))
	}

	ctx.EnterRule(rule.Name)
	defer ctx.ExitRule()

	env := make(map[string]any, len(rule.Params))
	for i, p := range rule.Params {
		env[p] = args[i]
	}

	seed, err := e.runChoice(rule.Choice, s, ctx, env, true)
	if err != nil {
		return nil, err
	}

	if rule.LeftRecursive() {
		seed, err = e.runTails(rule, seed, s, ctx, env)
		if err != nil {
			return nil, err
		}
	}
	return seed, nil
}

// runTails grows a left-recursive seed: each iteration tries the
// continuation arms in order and folds the matched one into the seed. The
// loop stops when no arm matches or an iteration consumes nothing.
func (e *Engine) runTails(rule *plan.RulePlan, seed any, s *runtime.Stream, ctx *runtime.Context, outer map[string]any) (any, error) {
	for {
		progressed := false

		for _, tail := range rule.Tails {
			if tail.Peek != nil && !s.PeekText(tail.Peek.Token) {
				continue
			}

			startPos := s.Pos()
			env := cloneEnv(outer)
			if tail.SeedBinding != "" {
				env[tail.SeedBinding] = seed
			}

			result, ok, err := runtime.Attempt(s, ctx, func(s *runtime.Stream, ctx *runtime.Context) (any, error) {
				if err := e.runSteps(tail.Steps, s, ctx, env); err != nil {
					return nil, err
				}
				return action.Eval(tail.Action, env)
			})
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if s.Pos() == startPos {
				ctx.SetFatal(true)
				return nil, runtime.NewError(s.Peek(),
					"Left-recursive rule matched empty string (infinite loop detected)")
			}

			seed = result
			progressed = true
			break
		}

		if !progressed {
			return seed, nil
		}
	}
}

// runChoice tries arms in order. Unique arms commit on their peek token;
// arms with a cut commit at the cut; everything else is a full speculative
// attempt. When evalActions is false (inline groups) the matched arm's
// bindings merge into env instead of producing a value.
func (e *Engine) runChoice(choice *plan.ChoicePlan, s *runtime.Stream, ctx *runtime.Context, env map[string]any, evalActions bool) (any, error) {
	for _, arm := range choice.Arms {
		if arm.Peek != nil && !s.PeekText(arm.Peek.Token) {
			continue
		}

		if arm.Unique {
			// Committed: the first token cannot start any sibling.
			armEnv := cloneEnv(env)
			if err := e.runSteps(arm.Steps(), s, ctx, armEnv); err != nil {
				ctx.SetFatal(true)
				return nil, err
			}
			return e.finishArm(arm, armEnv, env, evalActions)
		}

		if arm.HasCut {
			armEnv := cloneEnv(env)
			_, ok, err := runtime.Attempt(s, ctx, func(s *runtime.Stream, ctx *runtime.Context) (any, error) {
				return nil, e.runSteps(arm.Pre, s, ctx, armEnv)
			})
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			// Past the cut: failure is no longer recoverable.
			if err := e.runSteps(arm.Post, s, ctx, armEnv); err != nil {
				ctx.SetFatal(true)
				return nil, err
			}
			return e.finishArm(arm, armEnv, env, evalActions)
		}

		armEnv := cloneEnv(env)
		_, ok, err := runtime.Attempt(s, ctx, func(s *runtime.Stream, ctx *runtime.Context) (any, error) {
			return nil, e.runSteps(arm.Steps(), s, ctx, armEnv)
		})
		if err != nil {
			return nil, err
		}
		if ok {
			return e.finishArm(arm, armEnv, env, evalActions)
		}
	}

	return nil, runtime.NewError(s.Peek(), "no alternative matched")
}

func (e *Engine) finishArm(arm *plan.Arm, armEnv, outer map[string]any, evalActions bool) (any, error) {
	if evalActions && arm.Action != nil {
		return action.Eval(arm.Action, armEnv)
	}
	for _, name := range arm.Bindings {
		outer[name] = armEnv[name]
	}
	return nil, nil
}

func cloneEnv(env map[string]any) map[string]any {
	clone := make(map[string]any, len(env))
	for k, v := range env {
		clone[k] = v
	}
	return clone
}
