// Package plan turns a validated grammar into an abstract control-flow
// program: per-rule dispatch structures over a small step vocabulary. The
// engine interprets a Program directly; codegen renders it as Go source.
package plan

import (
	"parsegen/internal/action"
	"parsegen/internal/analysis"
	"parsegen/internal/ast"
)

// Program is the compiled form of one grammar.
type Program struct {
	Name     string
	Inherits string // empty when the grammar stands alone
	Uses     []string
	Keywords []string // sorted bare-word literal pieces; reserved against ident
	Rules    []*RulePlan
}

// Rule returns the plan for a named rule, or nil.
func (p *Program) Rule(name string) *RulePlan {
	for _, r := range p.Rules {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// RulePlan is the control-flow plan of one rule: an ordered choice over the
// base alternatives, plus continuation arms when the rule is directly
// left-recursive.
type RulePlan struct {
	Name   string
	Public bool
	Params []string
	Result string
	Choice *ChoicePlan
	Tails  []*TailPlan
}

// LeftRecursive reports whether the rule carries continuation arms.
func (r *RulePlan) LeftRecursive() bool {
	return len(r.Tails) > 0
}

// ChoicePlan is an ordered choice. Arms are tried in declaration order;
// dispatch hints let the backends skip or commit early.
type ChoicePlan struct {
	Arms []*Arm
}

// Arm is one alternative of a choice.
//
// Unique arms start with a token no sibling can start with: the backend
// peeks, and once the token matches, the arm is committed and failure inside
// it is fatal. Arms with a cut run Pre speculatively and Post committed.
// Everything else runs as a full speculative attempt.
type Arm struct {
	Peek     *analysis.PeekKey // first expected token, nil when not derivable
	Unique   bool
	Pre      []Step
	Post     []Step // steps after the cut; empty when HasCut is false
	HasCut   bool
	Bindings []string
	Action   *action.Expr // nil for inline group arms
}

// Steps returns the arm's full step sequence.
func (a *Arm) Steps() []Step {
	if !a.HasCut {
		return a.Pre
	}
	steps := make([]Step, 0, len(a.Pre)+len(a.Post))
	steps = append(steps, a.Pre...)
	return append(steps, a.Post...)
}

// TailPlan is one left-recursive continuation: the leading self-call becomes
// the seed binding, the remaining steps run in a loop while input advances.
type TailPlan struct {
	SeedBinding string
	Steps       []Step
	Peek        *analysis.PeekKey
	Bindings    []string
	Action      *action.Expr
}

// CallKind classifies a resolved rule call.
type CallKind int

const (
	CallRule      CallKind = iota // locally defined rule
	CallBuiltin                   // built-in matcher
	CallParam                     // enclosing rule's parameter
	CallInherited                 // deferred to the parent grammar
)

// Value is a literal argument in a rule call.
type Value struct {
	Kind ast.ArgKind
	Str  string
	Int  int
	Bool bool
}

// Step is the closed vocabulary of plan operations.
type Step interface{ step() }

// LitStep matches the literal's constituent tokens; multi-piece literals
// require input adjacency.
type LitStep struct {
	Pieces []string
}

// CallStep invokes a resolved rule, built-in, or parameter.
type CallStep struct {
	Binding string // empty when unbound
	Name    string
	Kind    CallKind
	Args    []Value
}

// ChoiceStep is an inline ordered choice (a group pattern).
type ChoiceStep struct {
	Choice   *ChoicePlan
	Bindings []string
}

// DelimStep matches open delimiter, inner sequence, close delimiter as three
// sequential operations sharing the surrounding commit state.
type DelimStep struct {
	Open  string
	Close string
	Inner []Step
}

// OptStep runs Inner at most once; absent bindings stay nil.
type OptStep struct {
	Inner    Step
	Peek     *analysis.PeekKey
	Bindings []string
}

// RepStep runs Inner zero or more times, collecting bindings into slices.
type RepStep struct {
	Inner    Step
	Peek     *analysis.PeekKey
	Bindings []string
}

// PlusStep is RepStep with a mandatory first iteration.
type PlusStep struct {
	Inner    Step
	Peek     *analysis.PeekKey
	Bindings []string
}

// SpanStep binds the source text consumed by Inner.
type SpanStep struct {
	Binding string
	Inner   Step
}

// RecoverStep attempts Body; on failure it skips input up to the sync token
// and binds nil markers instead.
type RecoverStep struct {
	Binding  string // empty when the recover itself is unbound
	Body     Step
	Bindings []string // names escaping the region
	Sync     string   // sync pattern's start token
}

// PeekStep is positive lookahead: Inner runs and all consumption rolls back.
type PeekStep struct {
	Inner Step
}

// NotStep is negative lookahead.
type NotStep struct {
	Inner Step
}

// CutStep commits the enclosing alternative mid-sequence. Top-level cuts are
// compiled into the Pre/Post split; this step form survives only inside
// nested constructs.
type CutStep struct{}

func (*LitStep) step()     {}
func (*CallStep) step()    {}
func (*ChoiceStep) step()  {}
func (*DelimStep) step()   {}
func (*OptStep) step()     {}
func (*RepStep) step()     {}
func (*PlusStep) step()    {}
func (*SpanStep) step()    {}
func (*RecoverStep) step() {}
func (*PeekStep) step()    {}
func (*NotStep) step()     {}
func (*CutStep) step()     {}
