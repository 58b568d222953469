package ast

// Pattern is the closed sum type of grammar match constructs. Recursion in
// the tree is bounded by the nesting the grammar author wrote; cross-rule
// recursion happens only through named RuleCall references resolved against
// the rule table, never through direct pointers.
type Pattern interface {
	Span() Span
	pattern()
}

// Cut is a commit marker ("=>"): no input is consumed, but once passed,
// failure in the rest of the variant is no longer recoverable by trying
// sibling alternatives.
type Cut struct {
	Sp Span
}

// Lit matches a literal token or multi-token sequence. Multi-token literals
// match only when their constituent tokens are adjacent in the input.
type Lit struct {
	Sp    Span
	Value string
}

// RuleCall invokes a named rule (user-defined or built-in) and optionally
// binds its result.
type RuleCall struct {
	Sp      Span
	Binding *Ident
	Name    Ident
	Args    []Arg
}

// Arg is a literal argument to a parameterized rule call.
type Arg struct {
	Sp    Span
	Kind  ArgKind
	Text  string // source text; unquoted for strings
	Int   int    // valid when Kind == ArgInt
	Truth bool   // valid when Kind == ArgBool
}

type ArgKind int

const (
	ArgInt ArgKind = iota
	ArgString
	ArgBool
)

// Group is an inline ordered-alternative construct: "(a b | c)".
type Group struct {
	Sp   Span
	Alts [][]Pattern
}

// DelimKind identifies the fixed delimiter pair of a delimited sub-region.
type DelimKind int

const (
	Bracket DelimKind = iota // [ ... ]
	Brace                    // { ... }
	Paren                    // paren( ... )
)

// Open returns the opening delimiter token.
func (k DelimKind) Open() string {
	switch k {
	case Bracket:
		return "["
	case Brace:
		return "{"
	default:
		return "("
	}
}

// Close returns the closing delimiter token.
func (k DelimKind) Close() string {
	switch k {
	case Bracket:
		return "]"
	case Brace:
		return "}"
	default:
		return ")"
	}
}

func (k DelimKind) String() string {
	switch k {
	case Bracket:
		return "Bracket"
	case Brace:
		return "Brace"
	default:
		return "Paren"
	}
}

// Delimited matches its inner sequence between a fixed open/close delimiter
// pair.
type Delimited struct {
	Sp    Span
	Kind  DelimKind
	Inner []Pattern
}

// Optional matches its inner pattern zero or one time.
type Optional struct {
	Sp    Span
	Inner Pattern
}

// Repeat matches its inner pattern zero or more times.
type Repeat struct {
	Sp    Span
	Inner Pattern
}

// Plus matches its inner pattern one or more times.
type Plus struct {
	Sp    Span
	Inner Pattern
}

// SpanBinding binds the source range consumed by its inner pattern to a name.
type SpanBinding struct {
	Sp    Span
	Inner Pattern
	Name  Ident
}

// Recover attempts its body; on failure the error is discarded, input is
// skipped up to (not including) the first token where Sync would start, and
// an absent-value marker is bound instead.
type Recover struct {
	Sp      Span
	Binding *Ident
	Body    Pattern
	Sync    Pattern
}

// Peek is positive lookahead: runs its inner pattern and rolls back all
// consumption, surfacing success and the inner bindings.
type Peek struct {
	Sp    Span
	Inner Pattern
}

// Not is negative lookahead: succeeds, consuming nothing, iff its inner
// pattern fails. Exposes no bindings.
type Not struct {
	Sp    Span
	Inner Pattern
}

func (p *Cut) Span() Span         { return p.Sp }
func (p *Lit) Span() Span         { return p.Sp }
func (p *RuleCall) Span() Span    { return p.Sp }
func (p *Group) Span() Span       { return p.Sp }
func (p *Delimited) Span() Span   { return p.Sp }
func (p *Optional) Span() Span    { return p.Sp }
func (p *Repeat) Span() Span      { return p.Sp }
func (p *Plus) Span() Span        { return p.Sp }
func (p *SpanBinding) Span() Span { return p.Sp }
func (p *Recover) Span() Span     { return p.Sp }
func (p *Peek) Span() Span        { return p.Sp }
func (p *Not) Span() Span         { return p.Sp }

func (*Cut) pattern()         {}
func (*Lit) pattern()         {}
func (*RuleCall) pattern()    {}
func (*Group) pattern()       {}
func (*Delimited) pattern()   {}
func (*Optional) pattern()    {}
func (*Repeat) pattern()      {}
func (*Plus) pattern()        {}
func (*SpanBinding) pattern() {}
func (*Recover) pattern()     {}
func (*Peek) pattern()        {}
func (*Not) pattern()         {}
