package analysis

import "parsegen/internal/ast"

// IsNullable reports whether a pattern can match the empty input. Rule calls
// are conservatively treated as nullable because their expansion is not
// inlined here; this keeps every peek-based skip safe. The fallback matters:
// skipping a nullable pattern on a failed peek would change what the grammar
// accepts, so peek optimizations are only applied to non-nullable patterns.
func IsNullable(p ast.Pattern) bool {
	switch p := p.(type) {
	case *ast.Cut:
		return true
	case *ast.Lit:
		return false
	case *ast.RuleCall:
		return true
	case *ast.Group:
		for _, alt := range p.Alts {
			if SequenceNullable(alt) {
				return true
			}
		}
		return false
	case *ast.Delimited:
		return false
	case *ast.Optional, *ast.Repeat, *ast.Recover, *ast.Peek, *ast.Not:
		return true
	case *ast.Plus:
		return IsNullable(p.Inner)
	case *ast.SpanBinding:
		return IsNullable(p.Inner)
	}
	return true
}

// SequenceNullable reports whether every pattern in the sequence is
// nullable. The empty sequence is nullable.
func SequenceNullable(seq []ast.Pattern) bool {
	for _, p := range seq {
		if !IsNullable(p) {
			return false
		}
	}
	return true
}
