package analysis

import "parsegen/internal/ast"

// PeekKey is the first input token that must be present for a pattern to
// start matching. It drives the fast "peek then commit" dispatch path; when
// no key is derivable the synthesizer falls back to a full speculative
// attempt, so this is an optimization, never a correctness mechanism.
type PeekKey struct {
	Token string
}

// SimplePeek derives the leading input token of a pattern when it is
// unambiguous. Multi-alternative groups, negative lookahead, cuts, and rule
// calls yield no key.
func SimplePeek(p ast.Pattern) (PeekKey, bool) {
	switch p := p.(type) {
	case *ast.Lit:
		pieces, err := LiteralPieces(p.Value)
		if err != nil || len(pieces) == 0 {
			return PeekKey{}, false
		}
		return PeekKey{Token: pieces[0]}, true
	case *ast.Delimited:
		return PeekKey{Token: p.Kind.Open()}, true
	case *ast.Optional:
		return SimplePeek(p.Inner)
	case *ast.Repeat:
		return SimplePeek(p.Inner)
	case *ast.Plus:
		return SimplePeek(p.Inner)
	case *ast.SpanBinding:
		return SimplePeek(p.Inner)
	case *ast.Recover:
		return SimplePeek(p.Body)
	case *ast.Peek:
		return SimplePeek(p.Inner)
	case *ast.Group:
		if len(p.Alts) == 1 && len(p.Alts[0]) > 0 {
			return SimplePeek(p.Alts[0][0])
		}
	}
	return PeekKey{}, false
}

// PeekKeyString produces the dispatch-uniqueness key of a pattern sequence:
// the full text of a leading literal, or the delimiter-kind name of a leading
// delimited region. Two sibling alternatives with the same key cannot be
// told apart by their first token alone.
func PeekKeyString(seq []ast.Pattern) (string, bool) {
	if len(seq) == 0 {
		return "", false
	}
	switch p := seq[0].(type) {
	case *ast.Lit:
		return p.Value, true
	case *ast.Delimited:
		return p.Kind.String(), true
	case *ast.Optional:
		return PeekKeyString([]ast.Pattern{p.Inner})
	case *ast.Repeat:
		return PeekKeyString([]ast.Pattern{p.Inner})
	case *ast.Plus:
		return PeekKeyString([]ast.Pattern{p.Inner})
	case *ast.SpanBinding:
		return PeekKeyString([]ast.Pattern{p.Inner})
	case *ast.Recover:
		return PeekKeyString([]ast.Pattern{p.Body})
	case *ast.Peek:
		return PeekKeyString([]ast.Pattern{p.Inner})
	case *ast.Group:
		if len(p.Alts) == 1 {
			return PeekKeyString(p.Alts[0])
		}
	}
	return "", false
}
