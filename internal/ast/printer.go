package ast

import (
	"fmt"
	"strings"
)

// PatternString renders a pattern back into grammar-definition syntax. Used
// by diagnostics and tests; not guaranteed to preserve original spacing.
func PatternString(p Pattern) string {
	switch p := p.(type) {
	case *Cut:
		return "=>"
	case *Lit:
		return fmt.Sprintf("%q", p.Value)
	case *RuleCall:
		var b strings.Builder
		if p.Binding != nil {
			b.WriteString(p.Binding.Value)
			b.WriteString(":")
		}
		b.WriteString(p.Name.Value)
		if len(p.Args) > 0 {
			parts := make([]string, len(p.Args))
			for i, a := range p.Args {
				if a.Kind == ArgString {
					parts[i] = fmt.Sprintf("%q", a.Text)
				} else {
					parts[i] = a.Text
				}
			}
			b.WriteString("(" + strings.Join(parts, ", ") + ")")
		}
		return b.String()
	case *Group:
		alts := make([]string, len(p.Alts))
		for i, seq := range p.Alts {
			alts[i] = SequenceString(seq)
		}
		return "(" + strings.Join(alts, " | ") + ")"
	case *Delimited:
		inner := SequenceString(p.Inner)
		switch p.Kind {
		case Bracket:
			return "[" + inner + "]"
		case Brace:
			return "{" + inner + "}"
		default:
			return "paren(" + inner + ")"
		}
	case *Optional:
		return PatternString(p.Inner) + "?"
	case *Repeat:
		return PatternString(p.Inner) + "*"
	case *Plus:
		return PatternString(p.Inner) + "+"
	case *SpanBinding:
		return PatternString(p.Inner) + "@" + p.Name.Value
	case *Recover:
		prefix := ""
		if p.Binding != nil {
			prefix = p.Binding.Value + ":"
		}
		return prefix + "recover(" + PatternString(p.Body) + ", " + PatternString(p.Sync) + ")"
	case *Peek:
		return "peek(" + PatternString(p.Inner) + ")"
	case *Not:
		return "not(" + PatternString(p.Inner) + ")"
	}
	return "<unknown pattern>"
}

// SequenceString renders a space-joined pattern sequence.
func SequenceString(seq []Pattern) string {
	parts := make([]string, len(seq))
	for i, p := range seq {
		parts[i] = PatternString(p)
	}
	return strings.Join(parts, " ")
}
