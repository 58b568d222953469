package plan

import (
	"fmt"
	"sort"

	"parsegen/internal/action"
	"parsegen/internal/analysis"
	"parsegen/internal/ast"
	"parsegen/internal/errors"
	"parsegen/internal/runtime"
)

// Build compiles a validated grammar into a Program. Name resolution is
// closed here: every call site is classified once, so the backends never
// look names up at parse time.
func Build(g *ast.Grammar) (*Program, error) {
	b := &builder{
		grammar:  g,
		builtins: runtime.CatalogNames(),
	}

	program := &Program{Name: g.Name.Value}
	if g.Inherits != nil {
		program.Inherits = g.Inherits.Value
	}
	for _, use := range g.Uses {
		program.Uses = append(program.Uses, use.Text)
	}
	for kw := range analysis.CollectKeywords(g) {
		program.Keywords = append(program.Keywords, kw)
	}
	sort.Strings(program.Keywords)

	for _, rule := range g.Rules {
		rp, err := b.buildRule(rule)
		if err != nil {
			return nil, err
		}
		program.Rules = append(program.Rules, rp)
	}
	return program, nil
}

type builder struct {
	grammar  *ast.Grammar
	builtins map[string]bool
	params   map[string]bool // current rule's parameters
}

func (b *builder) buildRule(rule *ast.Rule) (*RulePlan, error) {
	b.params = make(map[string]bool, len(rule.Params))
	rp := &RulePlan{
		Name:   rule.Name.Value,
		Public: rule.Public,
		Result: rule.Result.Text,
	}
	for _, p := range rule.Params {
		rp.Params = append(rp.Params, p.Name.Value)
		b.params[p.Name.Value] = true
	}

	recursive, base := analysis.SplitLeftRecursive(rule.Name.Value, rule.Variants)
	if len(recursive) > 0 && len(base) == 0 {
		return nil, errors.NewError(errors.ErrorNoBaseVariant,
			"Left-recursive rule requires at least one non-recursive base variant.",
			rule.Name.Span())
	}

	choice, err := b.buildChoice(variantSequences(base), variantActions(base))
	if err != nil {
		return nil, err
	}
	rp.Choice = choice

	for _, v := range recursive {
		tail, err := b.buildTail(v)
		if err != nil {
			return nil, err
		}
		rp.Tails = append(rp.Tails, tail)
	}
	return rp, nil
}

func variantSequences(variants []*ast.Variant) [][]ast.Pattern {
	seqs := make([][]ast.Pattern, len(variants))
	for i, v := range variants {
		seqs[i] = v.Patterns
	}
	return seqs
}

func variantActions(variants []*ast.Variant) []*ast.Action {
	actions := make([]*ast.Action, len(variants))
	for i, v := range variants {
		actions[i] = &v.Action
	}
	return actions
}

// buildChoice compiles ordered alternatives with their dispatch hints. The
// actions slice is nil for inline groups.
func (b *builder) buildChoice(alts [][]ast.Pattern, actions []*ast.Action) (*ChoicePlan, error) {
	keys := make([]string, len(alts))
	hasKey := make([]bool, len(alts))
	tally := make(map[string]int)
	for i, seq := range alts {
		if len(seq) == 0 || analysis.IsNullable(seq[0]) {
			// A nullable lead can match without its key token, so the
			// alternative never participates in key dispatch.
			continue
		}
		if key, ok := analysis.PeekKeyString(seq); ok {
			keys[i] = key
			hasKey[i] = true
			tally[key]++
		}
	}

	choice := &ChoicePlan{}
	for i, seq := range alts {
		arm, err := b.buildArm(seq)
		if err != nil {
			return nil, err
		}
		arm.Unique = hasKey[i] && tally[keys[i]] == 1 && arm.Peek != nil

		if actions != nil {
			expr, err := parseAction(actions[i])
			if err != nil {
				return nil, err
			}
			arm.Action = expr
		}
		choice.Arms = append(choice.Arms, arm)
	}
	return choice, nil
}

func (b *builder) buildArm(seq []ast.Pattern) (*Arm, error) {
	arm := &Arm{Bindings: analysis.CollectBindings(seq)}

	if len(seq) > 0 && !analysis.IsNullable(seq[0]) {
		if key, ok := analysis.SimplePeek(seq[0]); ok {
			peek := key
			arm.Peek = &peek
		}
	}

	pre, post, hasCut := analysis.FindCut(seq)
	arm.HasCut = hasCut
	if !hasCut {
		// No commit point: the whole sequence runs speculatively.
		pre = seq
	}

	var err error
	if arm.Pre, err = b.buildSeq(pre); err != nil {
		return nil, err
	}
	if hasCut {
		if arm.Post, err = b.buildSeq(post); err != nil {
			return nil, err
		}
	}
	return arm, nil
}

func (b *builder) buildTail(v *ast.Variant) (*TailPlan, error) {
	seed := v.Patterns[0].(*ast.RuleCall)
	tail := &TailPlan{Bindings: analysis.CollectBindings(v.Patterns)}
	if seed.Binding != nil {
		tail.SeedBinding = seed.Binding.Value
	}

	rest := v.Patterns[1:]
	if len(rest) > 0 && !analysis.IsNullable(rest[0]) {
		if key, ok := analysis.SimplePeek(rest[0]); ok {
			peek := key
			tail.Peek = &peek
		}
	}

	var err error
	if tail.Steps, err = b.buildSeq(rest); err != nil {
		return nil, err
	}
	if tail.Action, err = parseAction(&v.Action); err != nil {
		return nil, err
	}
	return tail, nil
}

func (b *builder) buildSeq(seq []ast.Pattern) ([]Step, error) {
	var steps []Step
	for _, p := range seq {
		step, err := b.buildStep(p)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (b *builder) buildStep(p ast.Pattern) (Step, error) {
	switch n := p.(type) {
	case *ast.Cut:
		return &CutStep{}, nil

	case *ast.Lit:
		pieces, err := analysis.LiteralPieces(n.Value)
		if err != nil {
			return nil, errors.NewError(errors.ErrorBadLiteral, err.Error(), n.Span())
		}
		return &LitStep{Pieces: pieces}, nil

	case *ast.RuleCall:
		return b.buildCall(n)

	case *ast.Group:
		choice, err := b.buildChoice(n.Alts, nil)
		if err != nil {
			return nil, err
		}
		return &ChoiceStep{
			Choice:   choice,
			Bindings: analysis.CollectBindings([]ast.Pattern{n}),
		}, nil

	case *ast.Delimited:
		inner, err := b.buildSeq(n.Inner)
		if err != nil {
			return nil, err
		}
		return &DelimStep{Open: n.Kind.Open(), Close: n.Kind.Close(), Inner: inner}, nil

	case *ast.Optional:
		return b.buildCardinality(n.Inner, func(inner Step, peek *analysis.PeekKey, bindings []string) Step {
			return &OptStep{Inner: inner, Peek: peek, Bindings: bindings}
		})

	case *ast.Repeat:
		return b.buildCardinality(n.Inner, func(inner Step, peek *analysis.PeekKey, bindings []string) Step {
			return &RepStep{Inner: inner, Peek: peek, Bindings: bindings}
		})

	case *ast.Plus:
		return b.buildCardinality(n.Inner, func(inner Step, peek *analysis.PeekKey, bindings []string) Step {
			return &PlusStep{Inner: inner, Peek: peek, Bindings: bindings}
		})

	case *ast.SpanBinding:
		inner, err := b.buildStep(n.Inner)
		if err != nil {
			return nil, err
		}
		return &SpanStep{Binding: n.Name.Value, Inner: inner}, nil

	case *ast.Recover:
		return b.buildRecover(n)

	case *ast.Peek:
		inner, err := b.buildStep(n.Inner)
		if err != nil {
			return nil, err
		}
		return &PeekStep{Inner: inner}, nil

	case *ast.Not:
		inner, err := b.buildStep(n.Inner)
		if err != nil {
			return nil, err
		}
		return &NotStep{Inner: inner}, nil
	}
	return nil, fmt.Errorf("unhandled pattern %T", p)
}

func (b *builder) buildCardinality(inner ast.Pattern, wrap func(Step, *analysis.PeekKey, []string) Step) (Step, error) {
	step, err := b.buildStep(inner)
	if err != nil {
		return nil, err
	}
	var peek *analysis.PeekKey
	if key, ok := analysis.SimplePeek(inner); ok {
		peek = &key
	}
	return wrap(step, peek, analysis.CollectBindings([]ast.Pattern{inner})), nil
}

func (b *builder) buildCall(call *ast.RuleCall) (Step, error) {
	step := &CallStep{Name: call.Name.Value}
	if call.Binding != nil {
		step.Binding = call.Binding.Value
	}
	for _, arg := range call.Args {
		step.Args = append(step.Args, Value{
			Kind: arg.Kind,
			Str:  arg.Text,
			Int:  arg.Int,
			Bool: arg.Truth,
		})
	}

	name := call.Name.Value
	switch {
	case b.params[name]:
		step.Kind = CallParam
	case b.builtins[name]:
		step.Kind = CallBuiltin
	case b.grammar.Rule(name) != nil:
		step.Kind = CallRule
	case b.grammar.Inherits != nil:
		step.Kind = CallInherited
	default:
		return nil, errors.NewError(errors.ErrorUndefinedRule,
			fmt.Sprintf("Undefined rule: '%s'", name), call.Name.Span())
	}
	return step, nil
}

func (b *builder) buildRecover(rec *ast.Recover) (Step, error) {
	sync, ok := analysis.SimplePeek(rec.Sync)
	if !ok {
		return nil, errors.NewError(errors.ErrorBadRecoverSync,
			"Sync pattern in recover(...) must have a simple start token.", rec.Sync.Span())
	}

	body, err := b.buildStep(rec.Body)
	if err != nil {
		return nil, err
	}

	step := &RecoverStep{
		Body:     body,
		Bindings: analysis.CollectBindings([]ast.Pattern{rec.Body}),
		Sync:     sync.Token,
	}
	if rec.Binding != nil {
		step.Binding = rec.Binding.Value
		step.Bindings = []string{rec.Binding.Value}
	}
	return step, nil
}

func parseAction(a *ast.Action) (*action.Expr, error) {
	expr, err := action.Parse(a.Text)
	if err != nil {
		return nil, errors.NewError(errors.ErrorSyntax,
			fmt.Sprintf("invalid action expression: %s", err),
			ast.Span{Start: a.Pos, End: a.Pos})
	}
	return expr, nil
}
