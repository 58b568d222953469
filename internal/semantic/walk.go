package semantic

import "parsegen/internal/ast"

func walkCalls(patterns []ast.Pattern, fn func(*ast.RuleCall)) {
	walk(patterns, func(p ast.Pattern) {
		if call, ok := p.(*ast.RuleCall); ok {
			fn(call)
		}
	})
}

func walkLits(patterns []ast.Pattern, fn func(*ast.Lit)) {
	walk(patterns, func(p ast.Pattern) {
		if lit, ok := p.(*ast.Lit); ok {
			fn(lit)
		}
	})
}

// walk visits every pattern in the sequence, depth first.
func walk(patterns []ast.Pattern, fn func(ast.Pattern)) {
	for _, p := range patterns {
		walkPattern(p, fn)
	}
}

func walkPattern(p ast.Pattern, fn func(ast.Pattern)) {
	fn(p)
	switch n := p.(type) {
	case *ast.Group:
		for _, alt := range n.Alts {
			walk(alt, fn)
		}
	case *ast.Delimited:
		walk(n.Inner, fn)
	case *ast.Optional:
		walkPattern(n.Inner, fn)
	case *ast.Repeat:
		walkPattern(n.Inner, fn)
	case *ast.Plus:
		walkPattern(n.Inner, fn)
	case *ast.SpanBinding:
		walkPattern(n.Inner, fn)
	case *ast.Recover:
		walkPattern(n.Body, fn)
		walkPattern(n.Sync, fn)
	case *ast.Peek:
		walkPattern(n.Inner, fn)
	case *ast.Not:
		walkPattern(n.Inner, fn)
	}
}
