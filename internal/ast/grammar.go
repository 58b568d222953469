package ast

// Grammar is the semantic model of one grammar definition: an ordered list
// of rules plus the optional parent whose rules are implicitly visible.
// Example: "grammar Calc { rule main -> int = ... }"
type Grammar struct {
	Pos      Position
	EndPos   Position
	Name     Ident
	Inherits *Ident // nil unless "grammar Child : Parent"
	Uses     []Use
	Rules    []*Rule
}

// Rule returns the locally defined rule with the given name, or nil.
func (g *Grammar) Rule(name string) *Rule {
	for _, r := range g.Rules {
		if r.Name.Value == name {
			return r
		}
	}
	return nil
}

// Use is a host-level import carried through to the code backend. The core
// treats the text as opaque.
type Use struct {
	Pos  Position
	Text string
}

// Ident is a named reference or definition with its source location.
type Ident struct {
	Pos    Position
	EndPos Position
	Value  string
}

// Span returns the source range of the identifier.
func (i Ident) Span() Span {
	return Span{Start: i.Pos, End: i.EndPos}
}

// TypeRef is a result or parameter type as written in the grammar. Opaque
// to the core; backends interpret it.
type TypeRef struct {
	Pos  Position
	Text string
}

// Param is one declared rule parameter.
type Param struct {
	Name Ident
	Type TypeRef
}

// Rule is a named set of ordered alternatives. A rule with parameters is
// only invocable with exactly that many arguments.
type Rule struct {
	Pos      Position
	Public   bool
	Name     Ident
	Params   []Param
	Result   TypeRef
	Variants []*Variant
}

// Variant is one alternative: a match sequence plus an opaque
// result-construction action evaluated with the sequence's bindings in scope.
type Variant struct {
	Patterns []Pattern
	Action   Action
}

// Span covers the variant's whole match sequence.
func (v *Variant) Span() Span {
	if len(v.Patterns) == 0 {
		return Span{Start: v.Action.Pos, End: v.Action.Pos}
	}
	sp := v.Patterns[0].Span()
	return sp.Join(v.Patterns[len(v.Patterns)-1].Span())
}

// Action is the raw text of a variant's result expression.
type Action struct {
	Pos  Position
	Text string
}
