// Package codegen renders a compiled Program as standalone Go source. The
// generated file contains one parse routine per rule plus exported wrappers
// for the public ones; all speculative control flow goes through the same
// runtime helpers the interpreting engine uses, so both backends share one
// set of semantics.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"parsegen/internal/action"
	"parsegen/internal/analysis"
	"parsegen/internal/ast"
	"parsegen/internal/plan"
)

// DefaultRuntimeImport is the import path of the runtime support package.
const DefaultRuntimeImport = "parsegen/internal/runtime"

// Options controls the shape of the generated file.
type Options struct {
	Package       string // package clause, "parser" when empty
	RuntimeImport string // runtime import path, DefaultRuntimeImport when empty
}

// Generate renders the program as a single Go source file.
func Generate(program *plan.Program, opts Options) (string, error) {
	if opts.Package == "" {
		opts.Package = "parser"
	}
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = DefaultRuntimeImport
	}

	e := &emitter{}
	e.line("// Code generated by parsegen from grammar %s. DO NOT EDIT.", program.Name)
	e.blank()
	e.line("package %s", opts.Package)
	e.blank()
	e.line("import (")
	e.in()
	e.line("runtime %q", opts.RuntimeImport)
	e.out()
	e.line(")")

	for _, use := range program.Uses {
		e.blank()
		e.line("// Prelude from a use declaration.")
		e.raw(use)
	}

	if len(program.Keywords) > 0 {
		e.hasKeywords = true
		e.blank()
		e.line("// keywords are the grammar's reserved words; ident refuses them.")
		e.line("var keywords = []string{%s}", quoteList(program.Keywords))
	}

	if needsInherited(program) {
		e.blank()
		e.line("// Inherited resolves rule calls deferred to a parent grammar. Populate it")
		e.line("// before the first parse when the grammar declares inheritance.")
		e.line("var Inherited = map[string]func(*runtime.Stream, *runtime.Context, []any) (any, error){}")
		e.blank()
		e.line("func callInherited(name string, s *runtime.Stream, ctx *runtime.Context, args []any) (any, error) {")
		e.in()
		e.line("if fn, ok := Inherited[name]; ok {")
		e.in()
		e.line("return fn(s, ctx, args)")
		e.out()
		e.line("}")
		e.line(`return nil, runtime.NewError(s.Peek(), "rule '%%s' is not defined", name)`)
		e.out()
		e.line("}")
	}

	for _, rule := range program.Rules {
		if rule.Public {
			e.blank()
			e.emitWrapper(rule)
		}
		e.blank()
		e.emitRule(rule)
	}

	return e.b.String(), nil
}

type emitter struct {
	b           strings.Builder
	indent      int
	tmp         int
	params      map[string]bool
	hasKeywords bool
}

func (e *emitter) line(format string, args ...any) {
	for i := 0; i < e.indent; i++ {
		e.b.WriteByte('\t')
	}
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

func (e *emitter) raw(text string) {
	e.b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		e.b.WriteByte('\n')
	}
}

func (e *emitter) blank()  { e.b.WriteByte('\n') }
func (e *emitter) in()     { e.indent++ }
func (e *emitter) out()    { e.indent-- }
func (e *emitter) next() int {
	n := e.tmp
	e.tmp++
	return n
}

// emitWrapper writes the exported entry point of a public rule: tokenize,
// run, surface the best recorded error unless the parse failed fatally.
func (e *emitter) emitWrapper(rule *plan.RulePlan) {
	name := exportName(rule.Name)
	var params, args strings.Builder
	for _, p := range rule.Params {
		fmt.Fprintf(&params, ", p_%s any", p)
		fmt.Fprintf(&args, ", p_%s", p)
	}

	e.line("// %s parses input starting at rule %q.", name, rule.Name)
	e.line("func %s(input string%s) (result any, err error) {", name, params.String())
	e.in()
	e.line("defer runtime.RecoverError(&err)")
	e.line("tokens, err := runtime.Tokenize(input)")
	e.line("if err != nil {")
	e.in()
	e.line("return nil, err")
	e.out()
	e.line("}")
	e.line("s := runtime.NewStream(tokens)")
	if e.hasKeywords {
		e.line("s.SetKeywords(keywords)")
	}
	e.line("ctx := runtime.NewContext()")
	e.line("v, err := parse_%s(s, ctx%s)", rule.Name, args.String())
	e.line("if err != nil {")
	e.in()
	e.line("if ctx.Fatal() {")
	e.in()
	e.line("return nil, err")
	e.out()
	e.line("}")
	e.line("if best := ctx.TakeBestError(); best != nil {")
	e.in()
	e.line("if pe, ok := err.(*runtime.ParseError); !ok || best.Offset >= pe.Offset {")
	e.in()
	e.line("return nil, best")
	e.out()
	e.line("}")
	e.out()
	e.line("}")
	e.line("return nil, err")
	e.out()
	e.line("}")
	e.line("return v, nil")
	e.out()
	e.line("}")
}

func (e *emitter) emitRule(rule *plan.RulePlan) {
	e.params = make(map[string]bool, len(rule.Params))
	var params strings.Builder
	for _, p := range rule.Params {
		e.params[p] = true
		fmt.Fprintf(&params, ", p_%s any", p)
	}

	e.line("func parse_%s(s *runtime.Stream, ctx *runtime.Context%s) (any, error) {", rule.Name, params.String())
	e.in()
	e.line("ctx.EnterRule(%q)", rule.Name)
	e.line("defer ctx.ExitRule()")
	e.blank()

	if !rule.LeftRecursive() {
		e.emitArms(rule.Choice)
		e.out()
		e.line("}")
		return
	}

	e.line("base := func(s *runtime.Stream, ctx *runtime.Context) (any, error) {")
	e.in()
	e.emitArms(rule.Choice)
	e.out()
	e.line("}")
	e.line("seed, err := base(s, ctx)")
	e.line("if err != nil {")
	e.in()
	e.line("return nil, err")
	e.out()
	e.line("}")
	e.blank()
	e.line("for {")
	e.in()
	e.line("progressed := false")
	for i, tail := range rule.Tails {
		e.blank()
		e.line("// continuation %d", i+1)
		e.emitTail(tail)
	}
	e.blank()
	e.line("if !progressed {")
	e.in()
	e.line("return seed, nil")
	e.out()
	e.line("}")
	e.out()
	e.line("}")
	e.out()
	e.line("}")
}

// emitArms writes a value-producing choice: each matched arm returns its
// action's value from the enclosing function.
func (e *emitter) emitArms(choice *plan.ChoicePlan) {
	for i, arm := range choice.Arms {
		if i > 0 {
			e.blank()
		}
		e.line("// alternative %d", i+1)
		e.emitArm(arm, "")
	}
	e.blank()
	e.line(`return nil, runtime.NewError(s.Peek(), "no alternative matched")`)
}

// emitArm writes one alternative. With matchedVar empty the arm returns its
// action value on success; otherwise it is an inline group arm that sets the
// flag, with its bindings reset to nil when the speculative run fails.
func (e *emitter) emitArm(arm *plan.Arm, matchedVar string) {
	valued := matchedVar == ""

	guard := ""
	if !valued {
		guard = "!" + matchedVar
	}
	if arm.Peek != nil {
		cond := fmt.Sprintf("s.PeekText(%q)", arm.Peek.Token)
		if guard != "" {
			guard += " && " + cond
		} else {
			guard = cond
		}
	}
	if guard == "" {
		e.line("{")
	} else {
		e.line("if %s {", guard)
	}
	e.in()

	if valued {
		e.declareVars(arm.Bindings)
	}

	n := e.next()
	switch {
	case arm.Unique:
		e.emitStepFn(fmt.Sprintf("arm%d", n), arm.Steps())
		e.line("if _, err := arm%d(s, ctx); err != nil {", n)
		e.in()
		e.line("ctx.SetFatal(true)")
		e.line("return nil, err")
		e.out()
		e.line("}")
		e.emitArmSuccess(arm, matchedVar)

	case arm.HasCut:
		e.emitStepFn(fmt.Sprintf("pre%d", n), arm.Pre)
		e.line("_, ok%d, err%d := runtime.Attempt(s, ctx, pre%d)", n, n, n)
		e.line("if err%d != nil {", n)
		e.in()
		e.line("return nil, err%d", n)
		e.out()
		e.line("}")
		e.line("if ok%d {", n)
		e.in()
		e.emitStepFn(fmt.Sprintf("post%d", n), arm.Post)
		e.line("if _, err := post%d(s, ctx); err != nil {", n)
		e.in()
		e.line("ctx.SetFatal(true)")
		e.line("return nil, err")
		e.out()
		e.line("}")
		e.emitArmSuccess(arm, matchedVar)
		e.out()
		e.line("}")
		if !valued {
			e.line("if !ok%d {", n)
			e.in()
			e.resetVars(arm.Bindings)
			e.out()
			e.line("}")
		}

	default:
		e.emitStepFn(fmt.Sprintf("arm%d", n), arm.Steps())
		e.line("_, ok%d, err%d := runtime.Attempt(s, ctx, arm%d)", n, n, n)
		e.line("if err%d != nil {", n)
		e.in()
		e.line("return nil, err%d", n)
		e.out()
		e.line("}")
		e.line("if ok%d {", n)
		e.in()
		e.emitArmSuccess(arm, matchedVar)
		e.out()
		e.line("}")
		if !valued {
			e.line("if !ok%d {", n)
			e.in()
			e.resetVars(arm.Bindings)
			e.out()
			e.line("}")
		}
	}

	e.out()
	e.line("}")
}

func (e *emitter) emitArmSuccess(arm *plan.Arm, matchedVar string) {
	if matchedVar != "" {
		e.line("%s = true", matchedVar)
		return
	}
	if arm.Action == nil {
		e.line("return nil, nil")
		return
	}
	e.line("return %s, nil", action.GoExpr(arm.Action, e.resolve))
}

func (e *emitter) emitTail(tail *plan.TailPlan) {
	guard := "!progressed"
	if tail.Peek != nil {
		guard += fmt.Sprintf(" && s.PeekText(%q)", tail.Peek.Token)
	}
	e.line("if %s {", guard)
	e.in()

	n := e.next()
	e.line("start%d := s.Pos()", n)

	names := tail.Bindings
	if tail.SeedBinding != "" && !contains(names, tail.SeedBinding) {
		names = append([]string{tail.SeedBinding}, names...)
	}
	e.declareVars(names)
	if tail.SeedBinding != "" {
		e.line("v_%s = seed", tail.SeedBinding)
	}

	result := "nil"
	if tail.Action != nil {
		result = action.GoExpr(tail.Action, e.resolve)
	}
	e.line("tail%d := func(s *runtime.Stream, ctx *runtime.Context) (any, error) {", n)
	e.in()
	e.emitSeq(tail.Steps, false)
	e.line("return %s, nil", result)
	e.out()
	e.line("}")
	e.line("res%d, ok%d, err%d := runtime.Attempt(s, ctx, tail%d)", n, n, n, n)
	e.line("if err%d != nil {", n)
	e.in()
	e.line("return nil, err%d", n)
	e.out()
	e.line("}")
	e.line("if ok%d {", n)
	e.in()
	e.line("if s.Pos() == start%d {", n)
	e.in()
	e.line("ctx.SetFatal(true)")
	e.line(`return nil, runtime.NewError(s.Peek(), "Left-recursive rule matched empty string (infinite loop detected)")`)
	e.out()
	e.line("}")
	e.line("seed = res%d", n)
	e.line("progressed = true")
	e.out()
	e.line("}")

	e.out()
	e.line("}")
}

// emitStepFn writes a named closure running a step sequence, the unit the
// runtime attempt helpers operate on.
func (e *emitter) emitStepFn(name string, steps []plan.Step) {
	e.line("%s := func(s *runtime.Stream, ctx *runtime.Context) (any, error) {", name)
	e.in()
	e.emitSeq(steps, false)
	e.line("return nil, nil")
	e.out()
	e.line("}")
}

// emitSeq writes a step sequence as statements. A cut flips the committed
// flag: every later failure sets the fatal state before returning.
func (e *emitter) emitSeq(steps []plan.Step, committed bool) {
	for _, step := range steps {
		if _, isCut := step.(*plan.CutStep); isCut {
			committed = true
			continue
		}
		e.emitStep(step, committed)
	}
}

func (e *emitter) emitStep(step plan.Step, committed bool) {
	switch st := step.(type) {
	case *plan.LitStep:
		e.line("if _, err := runtime.MatchLiteral(s, %s); err != nil {", quoteList(st.Pieces))
		e.emitFail(committed)

	case *plan.CallStep:
		e.emitCall(st, committed)

	case *plan.ChoiceStep:
		e.resetVars(st.Bindings)
		e.emitInlineChoice(st.Choice, committed)

	case *plan.DelimStep:
		e.line("if _, err := s.Expect(%q); err != nil {", st.Open)
		e.emitFail(committed)
		e.emitSeq(st.Inner, committed)
		e.line("if _, err := s.Expect(%q); err != nil {", st.Close)
		e.emitFail(committed)

	case *plan.OptStep:
		e.emitOpt(st, committed)

	case *plan.RepStep:
		e.emitLoop(st.Inner, st.Peek, st.Bindings, false, committed)

	case *plan.PlusStep:
		e.emitLoop(st.Inner, st.Peek, st.Bindings, true, committed)

	case *plan.SpanStep:
		n := e.next()
		e.line("spanStart%d := s.Offset()", n)
		e.emitStep(st.Inner, committed)
		e.line("spanEnd%d := s.PrevEnd()", n)
		e.line("if spanEnd%d < spanStart%d {", n, n)
		e.in()
		e.line("spanEnd%d = spanStart%d", n, n)
		e.out()
		e.line("}")
		e.line("v_%s = runtime.TextSpan{Start: spanStart%d, End: spanEnd%d}", st.Binding, n, n)

	case *plan.RecoverStep:
		e.emitRecover(st)

	case *plan.PeekStep:
		n := e.next()
		e.line("look%d := func(s *runtime.Stream, ctx *runtime.Context) (any, error) {", n)
		e.in()
		e.emitStep(st.Inner, false)
		e.line("return nil, nil")
		e.out()
		e.line("}")
		e.line("if _, err := runtime.PeekCheck(s, ctx, look%d); err != nil {", n)
		e.emitFail(committed)

	case *plan.NotStep:
		n := e.next()
		e.line("deny%d := func(s *runtime.Stream, ctx *runtime.Context) error {", n)
		e.in()
		e.line("_, err := func(s *runtime.Stream, ctx *runtime.Context) (any, error) {")
		e.in()
		e.emitStep(st.Inner, false)
		e.line("return nil, nil")
		e.out()
		e.line("}(s, ctx)")
		e.line("return err")
		e.out()
		e.line("}")
		e.line("if err := runtime.NotCheck(s, ctx, deny%d); err != nil {", n)
		e.emitFail(committed)

	case *plan.CutStep:
		// A cut wrapped alone inside another construct consumes nothing.
	}
}

// emitFail closes an `if err != nil {` opened by the caller.
func (e *emitter) emitFail(committed bool) {
	e.in()
	if committed {
		e.line("ctx.SetFatal(true)")
	}
	e.line("return nil, err")
	e.out()
	e.line("}")
}

func (e *emitter) emitCall(call *plan.CallStep, committed bool) {
	expr := e.callExpr(call)
	if call.Binding == "" {
		e.line("if _, err := %s; err != nil {", expr)
		e.emitFail(committed)
		return
	}
	n := e.next()
	e.line("res%d, err := %s", n, expr)
	e.line("if err != nil {")
	e.emitFail(committed)
	e.line("v_%s = res%d", call.Binding, n)
}

func (e *emitter) callExpr(call *plan.CallStep) string {
	switch call.Kind {
	case plan.CallBuiltin:
		return fmt.Sprintf("runtime.MatchBuiltIn(%q, s)", call.Name)
	case plan.CallParam:
		return fmt.Sprintf("runtime.MatchParam(s, %q, p_%s)", call.Name, call.Name)
	case plan.CallInherited:
		return fmt.Sprintf("callInherited(%q, s, ctx, []any{%s})", call.Name, argList(call.Args))
	default:
		args := argList(call.Args)
		if args != "" {
			args = ", " + args
		}
		return fmt.Sprintf("parse_%s(s, ctx%s)", call.Name, args)
	}
}

func (e *emitter) emitInlineChoice(choice *plan.ChoicePlan, committed bool) {
	n := e.next()
	matched := fmt.Sprintf("matched%d", n)
	e.line("%s := false", matched)
	for i, arm := range choice.Arms {
		e.line("// group alternative %d", i+1)
		e.emitArm(arm, matched)
	}
	e.line("if !%s {", matched)
	e.in()
	if committed {
		e.line("ctx.SetFatal(true)")
	}
	e.line(`return nil, runtime.NewError(s.Peek(), "no alternative matched")`)
	e.out()
	e.line("}")
}

func (e *emitter) emitOpt(opt *plan.OptStep, committed bool) {
	n := e.next()
	emitAttempt := func() {
		e.line("opt%d := func(s *runtime.Stream, ctx *runtime.Context) (any, error) {", n)
		e.in()
		e.emitStep(opt.Inner, false)
		e.line("return nil, nil")
		e.out()
		e.line("}")
		e.line("_, ok%d, err%d := runtime.Attempt(s, ctx, opt%d)", n, n, n)
		e.line("if err%d != nil {", n)
		e.in()
		if committed {
			e.line("ctx.SetFatal(true)")
		}
		e.line("return nil, err%d", n)
		e.out()
		e.line("}")
		e.line("if !ok%d {", n)
		e.in()
		e.resetVars(opt.Bindings)
		e.out()
		e.line("}")
	}

	if opt.Peek != nil {
		e.line("if s.PeekText(%q) {", opt.Peek.Token)
		e.in()
		emitAttempt()
		e.out()
		e.line("} else {")
		e.in()
		e.resetVars(opt.Bindings)
		e.out()
		e.line("}")
		return
	}
	emitAttempt()
}

func (e *emitter) emitLoop(inner plan.Step, peek *analysis.PeekKey, bindings []string, mandatory bool, committed bool) {
	n := e.next()
	for _, name := range bindings {
		e.line("coll%d_%s := []any{}", n, name)
	}

	if mandatory {
		e.emitStep(inner, committed)
		for _, name := range bindings {
			e.line("coll%d_%s = append(coll%d_%s, v_%s)", n, name, n, name, name)
		}
	}

	e.line("for {")
	e.in()
	if peek != nil {
		e.line("if !s.PeekText(%q) {", peek.Token)
		e.in()
		e.line("break")
		e.out()
		e.line("}")
	}
	e.line("start%d := s.Pos()", n)
	e.line("rep%d := func(s *runtime.Stream, ctx *runtime.Context) (any, error) {", n)
	e.in()
	e.emitStep(inner, false)
	e.line("return nil, nil")
	e.out()
	e.line("}")
	e.line("_, ok%d, err%d := runtime.Attempt(s, ctx, rep%d)", n, n, n)
	e.line("if err%d != nil {", n)
	e.in()
	if committed {
		e.line("ctx.SetFatal(true)")
	}
	e.line("return nil, err%d", n)
	e.out()
	e.line("}")
	e.line("if !ok%d || s.Pos() == start%d {", n, n)
	e.in()
	e.line("break")
	e.out()
	e.line("}")
	for _, name := range bindings {
		e.line("coll%d_%s = append(coll%d_%s, v_%s)", n, name, n, name, name)
	}
	e.out()
	e.line("}")
	for _, name := range bindings {
		e.line("v_%s = coll%d_%s", name, n, name)
	}
}

func (e *emitter) emitRecover(rc *plan.RecoverStep) {
	n := e.next()
	e.line("rec%d := func(s *runtime.Stream, ctx *runtime.Context) (any, error) {", n)
	e.in()
	e.emitBodyValue(rc.Body)
	e.out()
	e.line("}")
	e.line("res%d, ok%d := runtime.AttemptRecover(s, ctx, rec%d)", n, n, n)
	e.line("if !ok%d {", n)
	e.in()
	e.line("runtime.SkipUntil(s, func(s *runtime.Stream) bool { return s.PeekText(%q) })", rc.Sync)
	e.resetVars(rc.Bindings)
	e.line("_ = res%d", n)
	e.out()
	if rc.Binding != "" {
		e.line("} else {")
		e.in()
		e.line("v_%s = res%d", rc.Binding, n)
		e.out()
		e.line("}")
	} else {
		e.line("}")
		e.line("_ = res%d", n)
	}
}

// emitBodyValue writes a recover body closure's statements, returning the
// body's value for calls and literals and nil for everything else.
func (e *emitter) emitBodyValue(step plan.Step) {
	switch st := step.(type) {
	case *plan.CallStep:
		n := e.next()
		e.line("res%d, err := %s", n, e.callExpr(st))
		e.line("if err != nil {")
		e.emitFail(false)
		if st.Binding != "" {
			e.line("v_%s = res%d", st.Binding, n)
		}
		e.line("return res%d, nil", n)
	case *plan.LitStep:
		n := e.next()
		e.line("res%d, err := runtime.MatchLiteral(s, %s)", n, quoteList(st.Pieces))
		e.line("if err != nil {")
		e.emitFail(false)
		e.line("return res%d, nil", n)
	default:
		e.emitStep(step, false)
		e.line("return nil, nil")
	}
}

func (e *emitter) declareVars(names []string) {
	for _, name := range dedup(names) {
		e.line("var v_%s any", name)
		e.line("_ = v_%s", name)
	}
}

func (e *emitter) resetVars(names []string) {
	for _, name := range dedup(names) {
		e.line("v_%s = nil", name)
	}
}

// resolve maps an action name to the local holding it in generated code.
func (e *emitter) resolve(name string) string {
	if e.params[name] {
		return "p_" + name
	}
	return "v_" + name
}

func needsInherited(program *plan.Program) bool {
	found := false
	for _, rule := range program.Rules {
		for _, arm := range rule.Choice.Arms {
			walkSteps(arm.Steps(), func(st plan.Step) {
				if call, ok := st.(*plan.CallStep); ok && call.Kind == plan.CallInherited {
					found = true
				}
			})
		}
		for _, tail := range rule.Tails {
			walkSteps(tail.Steps, func(st plan.Step) {
				if call, ok := st.(*plan.CallStep); ok && call.Kind == plan.CallInherited {
					found = true
				}
			})
		}
	}
	return found
}

func walkSteps(steps []plan.Step, fn func(plan.Step)) {
	for _, step := range steps {
		fn(step)
		switch st := step.(type) {
		case *plan.ChoiceStep:
			for _, arm := range st.Choice.Arms {
				walkSteps(arm.Steps(), fn)
			}
		case *plan.DelimStep:
			walkSteps(st.Inner, fn)
		case *plan.OptStep:
			walkSteps([]plan.Step{st.Inner}, fn)
		case *plan.RepStep:
			walkSteps([]plan.Step{st.Inner}, fn)
		case *plan.PlusStep:
			walkSteps([]plan.Step{st.Inner}, fn)
		case *plan.SpanStep:
			walkSteps([]plan.Step{st.Inner}, fn)
		case *plan.RecoverStep:
			walkSteps([]plan.Step{st.Body}, fn)
		case *plan.PeekStep:
			walkSteps([]plan.Step{st.Inner}, fn)
		case *plan.NotStep:
			walkSteps([]plan.Step{st.Inner}, fn)
		}
	}
}

func exportName(rule string) string {
	var b strings.Builder
	b.WriteString("Parse")
	for _, part := range strings.Split(rule, "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return strings.Join(quoted, ", ")
}

func argList(args []plan.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch a.Kind {
		case ast.ArgInt:
			parts[i] = strconv.Itoa(a.Int)
		case ast.ArgBool:
			parts[i] = strconv.FormatBool(a.Bool)
		default:
			parts[i] = strconv.Quote(a.Str)
		}
	}
	return strings.Join(parts, ", ")
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
